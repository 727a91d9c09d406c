package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/etnz/simbooks"
	"github.com/etnz/simbooks/date"
	"github.com/etnz/simbooks/renderer"
	"github.com/google/subcommands"
)

// pricesCmd inspects the price cache.
type pricesCmd struct {
	day  string
	days bool
}

func (*pricesCmd) Name() string     { return "prices" }
func (*pricesCmd) Synopsis() string { return "display the cached reference prices" }
func (*pricesCmd) Usage() string {
	return `sbk prices [-d <day>] [-days]

  Displays the reference prices cached under a financial day (defaults to the
  current one), or the list of cached days with -days.
`
}

func (c *pricesCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.day, "d", "", "Financial day to display (defaults to today)")
	f.BoolVar(&c.days, "days", false, "List the cached days")
}

func (c *pricesCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	day := date.FinancialToday()
	if c.day != "" {
		var err error
		if day, err = date.Parse(c.day); err != nil {
			fmt.Fprintf(os.Stderr, "Error: invalid -d: %v\n", err)
			return subcommands.ExitUsageError
		}
	}

	a, err := open()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	cache := simbooks.LoadPriceCache(a.context(ctx), a.store, a.logger)
	if c.days {
		var b strings.Builder
		b.WriteString("# Cached Days\n\n")
		for _, d := range cache.Days() {
			fmt.Fprintf(&b, "* %s: %d prices\n", d, len(cache.Entries(d)))
		}
		fmt.Fprintf(&b, "\nFinancial days start at %02d:00, %s time.\n", date.RolloverHour, date.Location())
		printMarkdown(b.String())
		return subcommands.ExitSuccess
	}
	printMarkdown(renderer.PricesMarkdown(day, cache.Entries(day)))
	return subcommands.ExitSuccess
}
