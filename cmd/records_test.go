package cmd

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/etnz/simbooks"
	"github.com/etnz/simbooks/date"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordWindow(t *testing.T) {
	r := recordFlags{from: "2025-10-01", to: "2025-10-31"}
	w, err := r.window()
	require.NoError(t, err)

	// financial days start at 21:00 in Caracas, 01:00 UTC the next day.
	assert.Equal(t, time.Date(2025, 10, 2, 1, 0, 0, 0, time.UTC), w.From.UTC())
	assert.Equal(t, time.Date(2025, 11, 1, 1, 0, 0, 0, time.UTC), w.To.UTC())
	assert.Equal(t, date.New(2025, 10, 31), date.FinancialDay(w.To.Add(-time.Second)))

	single := recordFlags{from: "2025-10-05", to: "2025-10-05"}
	w, err = single.window()
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, w.To.Sub(w.From))

	open := recordFlags{}
	w, err = open.window()
	require.NoError(t, err)
	assert.True(t, w.From.IsZero() && w.To.IsZero())

	inverted := recordFlags{from: "2025-10-05", to: "2025-10-04"}
	_, err = inverted.window()
	assert.ErrorIs(t, err, simbooks.ErrInvalidCutoff)

	invalid := recordFlags{from: "yesterday"}
	_, err = invalid.window()
	assert.Error(t, err)
}

func TestRecordInputs(t *testing.T) {
	dir := t.TempDir()
	tx := filepath.Join(dir, "tx.csv")
	require.NoError(t, os.WriteFile(tx, []byte("timestamp,category,amount\n2025-10-03T12:00:00Z,market,100\n"), 0o644))
	snap := filepath.Join(dir, "snapshot.json")
	require.NoError(t, os.WriteFile(snap, []byte(`{"baseline": 4, "items": [{"kind": 1, "quality": 0, "quantity": 2}]}`), 0o644))

	r := recordFlags{transactions: tx, snapshot: snap}
	in, err := r.inputs(1)
	require.NoError(t, err)
	assert.Equal(t, 1, in.Realm)
	assert.Len(t, in.Transactions, 1)
	assert.Len(t, in.Snapshot, 1)
	assert.Equal(t, 4.0, in.Baseline)

	_, err = (&recordFlags{}).inputs(0)
	assert.Error(t, err)

	_, err = (&recordFlags{transactions: filepath.Join(dir, "missing.csv")}).inputs(0)
	assert.Error(t, err)
}
