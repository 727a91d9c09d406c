package cmd

import (
	"errors"
	"flag"
	"fmt"

	"github.com/etnz/simbooks"
	"github.com/etnz/simbooks/date"
	"github.com/etnz/simbooks/ingest"
)

// recordFlags selects the records a statement command works on.
type recordFlags struct {
	transactions string
	movements    string
	snapshot     string
	from, to     string
}

func (r *recordFlags) SetFlags(f *flag.FlagSet) {
	f.StringVar(&r.transactions, "tx", "", "CSV file of account transactions")
	f.StringVar(&r.movements, "mv", "", "CSV file of resource movements")
	f.StringVar(&r.snapshot, "snapshot", "", "JSON file of the inventory snapshot")
	f.StringVar(&r.from, "from", "", "First financial day of the period (YYYY-MM-DD)")
	f.StringVar(&r.to, "to", "", "Last financial day of the period, included (YYYY-MM-DD)")
}

// window converts the -from and -to financial days into a time window.
func (r *recordFlags) window() (simbooks.Window, error) {
	var w simbooks.Window
	if r.from != "" {
		d, err := date.Parse(r.from)
		if err != nil {
			return w, fmt.Errorf("invalid -from: %w", err)
		}
		w.From = date.FinancialStart(d)
	}
	if r.to != "" {
		d, err := date.Parse(r.to)
		if err != nil {
			return w, fmt.Errorf("invalid -to: %w", err)
		}
		w.To = date.FinancialStart(d.Add(1))
	}
	if !w.From.IsZero() && !w.To.IsZero() && !w.From.Before(w.To) {
		return w, fmt.Errorf("%w: -from %s is after -to %s", simbooks.ErrInvalidCutoff, r.from, r.to)
	}
	return w, nil
}

// inputs reads the selected records.
func (r *recordFlags) inputs(realm int) (simbooks.Inputs, error) {
	in := simbooks.Inputs{Realm: realm}
	if r.transactions == "" && r.movements == "" {
		return in, errors.New("at least one of -tx or -mv is required")
	}
	w, err := r.window()
	if err != nil {
		return in, err
	}
	in.Window = w

	if r.transactions != "" {
		if in.Transactions, err = ingest.ReadTransactionsFile(r.transactions); err != nil {
			return in, err
		}
	}
	if r.movements != "" {
		if in.Movements, err = ingest.ReadMovementsFile(r.movements); err != nil {
			return in, err
		}
	}
	if r.snapshot != "" {
		s, err := ingest.ReadSnapshotFile(r.snapshot)
		if err != nil {
			return in, err
		}
		in.Snapshot, in.Baseline = s.Items, s.Baseline
	}
	return in, nil
}
