package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/simbooks"
	"github.com/etnz/simbooks/ingest"
	"github.com/etnz/simbooks/renderer"
	"github.com/google/subcommands"
)

type valuationCmd struct {
	snapshot string
}

func (*valuationCmd) Name() string     { return "valuation" }
func (*valuationCmd) Synopsis() string { return "value an inventory snapshot at market prices" }
func (*valuationCmd) Usage() string {
	return `sbk valuation -snapshot <snapshot.json>

  Values every item of the snapshot at the reference price of the previous
  financial day and displays the valuation allowance per item.
`
}

func (c *valuationCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.snapshot, "snapshot", "", "JSON file of the inventory snapshot")
}

func (c *valuationCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.snapshot == "" {
		fmt.Fprintln(os.Stderr, "Error: -snapshot is required")
		return subcommands.ExitUsageError
	}
	a, err := open()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	s, err := ingest.ReadSnapshotFile(c.snapshot)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading snapshot: %v\n", err)
		return subcommands.ExitUsageError
	}

	ctx = a.context(ctx)
	cache := simbooks.LoadPriceCache(ctx, a.store, a.logger)
	valuer := simbooks.NewValuer(a.prices(), cache, simbooks.WithLogger(a.logger))
	v, err := valuer.Value(ctx, a.cfg.Realm, s.Items, s.Baseline)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error valuing snapshot: %v\n", err)
		return subcommands.ExitFailure
	}
	simbooks.SavePriceCache(ctx, a.store, cache, a.logger)

	printMarkdown(renderer.ValuationMarkdown(v))
	return subcommands.ExitSuccess
}
