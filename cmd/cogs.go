package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/etnz/simbooks"
	"github.com/etnz/simbooks/renderer"
	"github.com/google/subcommands"
)

type cogsCmd struct {
	records recordFlags
}

func (*cogsCmd) Name() string     { return "cogs" }
func (*cogsCmd) Synopsis() string { return "replay resource movements and display the cost of goods sold" }
func (*cogsCmd) Usage() string {
	return `sbk cogs -mv <movements.csv> [-from <day>] [-to <day>]

  Replays the resource movements with a weighted average cost per resource
  and displays the cost of the units sold in the period.
`
}

func (c *cogsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.records.movements, "mv", "", "CSV file of resource movements")
	f.StringVar(&c.records.from, "from", "", "First financial day of the period (YYYY-MM-DD)")
	f.StringVar(&c.records.to, "to", "", "Last financial day of the period, included (YYYY-MM-DD)")
}

func (c *cogsCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := open()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	if c.records.movements == "" {
		fmt.Fprintln(os.Stderr, "Error: -mv is required")
		return subcommands.ExitUsageError
	}
	in, err := c.records.inputs(a.cfg.Realm)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading records: %v\n", err)
		return subcommands.ExitUsageError
	}

	res, err := simbooks.NewCostingEngine(a.logger).Cost(a.context(ctx), in.Movements, in.Window)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error costing movements: %v\n", err)
		return subcommands.ExitFailure
	}
	printMarkdown(renderer.CostingMarkdown(res))
	return subcommands.ExitSuccess
}
