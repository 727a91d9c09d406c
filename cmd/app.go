// Package cmd implements the sbk command line.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/etnz/simbooks"
	"github.com/etnz/simbooks/internal/config"
	"github.com/etnz/simbooks/internal/logger"
	"github.com/etnz/simbooks/simco"
	"github.com/etnz/simbooks/store"
	"github.com/google/subcommands"
	"go.uber.org/zap"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&computeCmd{}, "statements")
	c.Register(&cogsCmd{}, "statements")
	c.Register(&valuationCmd{}, "statements")

	c.Register(&pricesCmd{}, "prices")

	c.Register(&hostCmd{}, "browser")
	c.Register(&topicCmd{}, "help")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var configFile = flag.String("config", "", "Path to the configuration file (default simbooks.toml in . or ~/.config/simbooks)")
var realmFlag = flag.Int("realm", -1, "Game realm, overrides the configuration")
var rawMarkdown = flag.Bool("md", false, "Print raw markdown instead of rendering it for the terminal")

// Verbose enables debug logs.
var Verbose = flag.Bool("v", false, "Log debug messages")

// app holds what a command needs to run, built from the configuration.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	store  simbooks.BlobStore
	close  func() error
}

// open loads the configuration and opens the price cache store.
func open() (*app, error) {
	var cfg *config.Config
	var err error
	if *configFile != "" {
		cfg, err = config.LoadFile(*configFile)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("cannot load configuration: %w", err)
	}
	if *realmFlag >= 0 {
		cfg.Realm = *realmFlag
	}

	lc := logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Output: cfg.Log.Output}
	if *Verbose {
		lc.Level = "debug"
	}
	l := logger.New(lc)

	s, closeStore, err := store.Open(cfg, l)
	if err != nil {
		return nil, err
	}
	return &app{cfg: cfg, logger: l, store: s, close: closeStore}, nil
}

// Close releases the store and flushes the logs.
func (a *app) Close() {
	if err := a.close(); err != nil {
		a.logger.Warn("cannot close price cache store", zap.Error(err))
	}
	_ = a.logger.Sync()
}

// context returns ctx carrying the app logger.
func (a *app) context(ctx context.Context) context.Context {
	return logger.WithContext(ctx, a.logger)
}

// prices returns the market price client.
func (a *app) prices() *simco.Client {
	p := a.cfg.Prices
	opts := []simco.Option{simco.WithLogger(a.logger)}
	if p.FailureThreshold > 0 {
		opts = append(opts, simco.WithBreaker(p.FailureThreshold, p.OpenTimeout))
	}
	if p.Timeout > 0 {
		opts = append(opts, simco.WithHTTPClient(newHTTPClient(p.Timeout)))
	}
	return simco.New(p.BaseURL, opts...)
}

func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

// printMarkdown prints md for the terminal, or raw with -md.
func printMarkdown(md string) {
	if *rawMarkdown {
		fmt.Print(md)
		return
	}
	out, err := glamour.Render(md, "auto")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error rendering markdown (printed raw): %v\n", err)
		fmt.Print(md)
		return
	}
	fmt.Print(strings.TrimLeft(out, "\n"))
}
