package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/etnz/simbooks"
	"github.com/etnz/simbooks/renderer"
	"github.com/google/subcommands"
)

// computeCmd holds the flags for the 'compute' subcommand.
type computeCmd struct {
	records recordFlags
	html    string
	csv     string
}

func (*computeCmd) Name() string { return "compute" }
func (*computeCmd) Synopsis() string {
	return "compute the income, cash flow and valuation statements"
}
func (*computeCmd) Usage() string {
	return `sbk compute -tx <transactions.csv> [-mv <movements.csv>] [-snapshot <snapshot.json>] [-from <day>] [-to <day>] [-html <file>] [-csv <file>]

  Computes the income statement, the cash flow statement and the inventory
  valuation of the selected records, and prints them.

  Reference prices are fetched once per financial day and kept in the price
  cache configured for the realm.
`
}

func (c *computeCmd) SetFlags(f *flag.FlagSet) {
	c.records.SetFlags(f)
	f.StringVar(&c.html, "html", "", "Also write the statements as an HTML page to this file")
	f.StringVar(&c.csv, "csv", "", "Also write the statements as CSV to this file")
}

func (c *computeCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := open()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	defer a.Close()

	in, err := c.records.inputs(a.cfg.Realm)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading records: %v\n", err)
		return subcommands.ExitUsageError
	}

	engine := &simbooks.Engine{Prices: a.prices(), Store: a.store}
	report, err := engine.Compute(a.context(ctx), in)
	if errors.Is(err, simbooks.ErrEmptySelection) || errors.Is(err, simbooks.ErrInvalidCutoff) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error computing statements: %v\n", err)
		return subcommands.ExitFailure
	}

	doc := renderer.ReportMarkdown(report, in.Realm, in.Window)
	if c.html != "" {
		if err := writeFile(c.html, func(w io.Writer) error { return renderer.HTML(w, "Financial Statements", doc) }); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing HTML: %v\n", err)
			return subcommands.ExitFailure
		}
	}
	if c.csv != "" {
		if err := writeFile(c.csv, func(w io.Writer) error { return renderer.WriteCSV(w, renderer.ReportStatements(report)) }); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing CSV: %v\n", err)
			return subcommands.ExitFailure
		}
	}
	printMarkdown(doc)
	return subcommands.ExitSuccess
}

// writeFile creates name and writes it with fn.
func writeFile(name string, fn func(io.Writer) error) error {
	out, err := os.Create(name)
	if err != nil {
		return err
	}
	if err := fn(out); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
