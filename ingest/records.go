package ingest

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/etnz/simbooks"
	"github.com/shopspring/decimal"
)

// ReadTransactions reads account transactions.
//
// Required columns are timestamp, category and amount; description is optional.
func ReadTransactions(r io.Reader) ([]simbooks.Transaction, error) {
	t, err := newTable(r)
	if err != nil {
		return nil, err
	}
	if err := t.require("timestamp", "category", "amount"); err != nil {
		return nil, err
	}
	var txs []simbooks.Transaction
	for {
		ok, err := t.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return txs, nil
		}
		ts, err := t.timestamp("timestamp")
		if err != nil {
			return nil, err
		}
		amount, err := t.amount("amount")
		if err != nil {
			return nil, err
		}
		txs = append(txs, simbooks.Transaction{
			Time:        ts,
			Category:    t.get("category"),
			Description: t.get("description"),
			Amount:      amount,
		})
	}
}

// costColumns are the optional cost component columns of a movement.
var costColumns = []string{"labor", "administration", "third_party"}

// ReadMovements reads resource movements.
//
// Required columns are timestamp, category, resource and amount. The cost
// columns (labor, administration, third_party, material1 to material5) and
// the detail column (a JSON payload) are optional.
func ReadMovements(r io.Reader) ([]simbooks.Movement, error) {
	t, err := newTable(r)
	if err != nil {
		return nil, err
	}
	if err := t.require("timestamp", "category", "resource", "amount"); err != nil {
		return nil, err
	}
	var movements []simbooks.Movement
	for {
		ok, err := t.next()
		if err != nil {
			return nil, err
		}
		if !ok {
			return movements, nil
		}
		m, err := t.movement()
		if err != nil {
			return nil, err
		}
		movements = append(movements, m)
	}
}

func (t *table) movement() (simbooks.Movement, error) {
	ts, err := t.timestamp("timestamp")
	if err != nil {
		return simbooks.Movement{}, err
	}
	amount, err := t.amount("amount")
	if err != nil {
		return simbooks.Movement{}, err
	}
	var costs [3]float64
	for i, col := range costColumns {
		if costs[i], err = t.amount(col); err != nil {
			return simbooks.Movement{}, err
		}
	}
	m := simbooks.Movement{
		Time:     ts,
		Kind:     simbooks.ParseMovementKind(t.get("category")),
		Resource: t.get("resource"),
		Amount:   amount,
		Cost: simbooks.CostBreakdown{
			Labor:          costs[0],
			Administration: costs[1],
			ThirdParty:     costs[2],
		},
	}
	for i := range m.Cost.Materials {
		if m.Cost.Materials[i], err = t.amount("material" + strconv.Itoa(i+1)); err != nil {
			return simbooks.Movement{}, err
		}
	}
	if d := t.get("detail"); d != "" {
		if !json.Valid([]byte(d)) {
			return simbooks.Movement{}, fmt.Errorf("line %d: invalid detail payload", t.line)
		}
		m.Detail = json.RawMessage(d)
	}
	return m, nil
}

// Snapshot is an inventory snapshot with the allowance of the prior balance.
type Snapshot struct {
	Baseline float64
	Items    []simbooks.SnapshotItem
}

type jsonCost struct {
	Labor          decimal.Decimal   `json:"labor"`
	Administration decimal.Decimal   `json:"administration"`
	ThirdParty     decimal.Decimal   `json:"third_party"`
	Materials      []decimal.Decimal `json:"materials"`
}

type jsonItem struct {
	Kind     int             `json:"kind"`
	Quality  int             `json:"quality"`
	Quantity decimal.Decimal `json:"quantity"`
	Cost     jsonCost        `json:"cost"`
}

type jsonSnapshot struct {
	Baseline decimal.Decimal `json:"baseline"`
	Items    []jsonItem      `json:"items"`
}

// ReadSnapshot reads an inventory snapshot:
//
//	{"baseline": 120.5, "items": [{"kind": 1, "quality": 0, "quantity": 50, "cost": {"labor": 400, "materials": [100]}}]}
//
// Numbers may also be given as strings.
func ReadSnapshot(r io.Reader) (Snapshot, error) {
	var js jsonSnapshot
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&js); err != nil {
		return Snapshot{}, fmt.Errorf("invalid snapshot: %w", err)
	}
	s := Snapshot{Baseline: js.Baseline.InexactFloat64()}
	for i, it := range js.Items {
		if len(it.Cost.Materials) > simbooks.MaterialSlots {
			return Snapshot{}, fmt.Errorf("invalid snapshot: item %d has %d materials, at most %d", i, len(it.Cost.Materials), simbooks.MaterialSlots)
		}
		item := simbooks.SnapshotItem{
			Kind:     it.Kind,
			Quality:  it.Quality,
			Quantity: it.Quantity.InexactFloat64(),
			Cost: simbooks.CostBreakdown{
				Labor:          it.Cost.Labor.InexactFloat64(),
				Administration: it.Cost.Administration.InexactFloat64(),
				ThirdParty:     it.Cost.ThirdParty.InexactFloat64(),
			},
		}
		for j, m := range it.Cost.Materials {
			item.Cost.Materials[j] = m.InexactFloat64()
		}
		s.Items = append(s.Items, item)
	}
	return s, nil
}

// ReadTransactionsFile reads the transactions of the CSV file name.
func ReadTransactionsFile(name string) ([]simbooks.Transaction, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	txs, err := ReadTransactions(f)
	if err != nil {
		return nil, fmt.Errorf("cannot read transactions %q: %w", name, err)
	}
	return txs, nil
}

// ReadMovementsFile reads the movements of the CSV file name.
func ReadMovementsFile(name string) ([]simbooks.Movement, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	ms, err := ReadMovements(f)
	if err != nil {
		return nil, fmt.Errorf("cannot read movements %q: %w", name, err)
	}
	return ms, nil
}

// ReadSnapshotFile reads the JSON snapshot file name.
func ReadSnapshotFile(name string) (Snapshot, error) {
	f, err := os.Open(name)
	if err != nil {
		return Snapshot{}, err
	}
	defer f.Close()
	s, err := ReadSnapshot(f)
	if err != nil {
		return Snapshot{}, fmt.Errorf("cannot read snapshot %q: %w", name, err)
	}
	return s, nil
}
