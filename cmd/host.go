package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/simbooks/internal/logger"
	"github.com/etnz/simbooks/nativehost"
	"github.com/google/subcommands"
)

type hostCmd struct{}

func (*hostCmd) Name() string     { return "host" }
func (*hostCmd) Synopsis() string { return "run the browser native messaging helper" }
func (*hostCmd) Usage() string {
	return `sbk host

  Answers the browser extension native messages on stdin and stdout until the
  browser closes the connection. Logs go to stderr.
`
}

func (c *hostCmd) SetFlags(f *flag.FlagSet) {}

func (c *hostCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := open()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	l := a.logger
	if a.cfg.Log.Output == "stdout" {
		// stdout carries the messages
		l = logger.New(logger.Config{Level: a.cfg.Log.Level, Format: a.cfg.Log.Format, Output: "stderr"})
	}
	if err := nativehost.New(l).Serve(ctx, os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
