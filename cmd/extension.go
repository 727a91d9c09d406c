package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
)

// Environment variables carrying the global flags to extensions.
const (
	EnvConfig  = "SIMBOOKS_CONFIG"
	EnvRealm   = "SIMBOOKS_REALM"
	EnvVerbose = "SIMBOOKS_VERBOSE"
)

// extensionEnv returns the environment of an extension: the current one plus
// the global flags that were set.
func extensionEnv() []string {
	env := os.Environ()
	if *configFile != "" {
		env = append(env, EnvConfig+"="+*configFile)
	}
	if *realmFlag >= 0 {
		env = append(env, EnvRealm+"="+strconv.Itoa(*realmFlag))
	}
	return append(env, EnvVerbose+"="+strconv.FormatBool(*Verbose))
}

// RunExtension runs the sbk-<subcommand> executable found in the PATH with
// args. found is false when there is no such executable.
func RunExtension(subcommand string, args []string) (found bool, code int) {
	name := "sbk-" + subcommand
	path, err := exec.LookPath(name)
	if err != nil {
		if *Verbose {
			fmt.Fprintf(os.Stderr, "no extension %q: %v\n", name, err)
		}
		return false, 0
	}

	ext := exec.Command(path, args...)
	ext.Stdin, ext.Stdout, ext.Stderr = os.Stdin, os.Stdout, os.Stderr
	ext.Env = extensionEnv()

	err = ext.Run()
	var exit *exec.ExitError
	switch {
	case err == nil:
		return true, 0
	case errors.As(err, &exit):
		return true, exit.ExitCode()
	default:
		fmt.Fprintf(os.Stderr, "Error running extension %q: %v\n", name, err)
		return true, 1
	}
}
