package simbooks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/etnz/simbooks/date"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 22:00 in Caracas on 2025-10-17: the financial day is the 17th.
var evening = time.Date(2025, 10, 18, 2, 0, 0, 0, time.UTC)

// fakePrices serves fixed prices and records the requests.
type fakePrices struct {
	prices map[PriceRef]float64
	calls  []date.Date
}

func (f *fakePrices) VWAP(_ context.Context, _ int, ref PriceRef, on date.Date) (float64, error) {
	f.calls = append(f.calls, on)
	p, ok := f.prices[ref]
	if !ok {
		return 0, fmt.Errorf("%s: %w", ref.Key(), ErrNoPrice)
	}
	return p, nil
}

// fixedPrices returns the same price for every reference.
func fixedPrices(p float64) PriceSource {
	return PriceSourceFunc(func(context.Context, int, PriceRef, date.Date) (float64, error) { return p, nil })
}

// memStore is an in-memory BlobStore.
type memStore struct {
	blob    []byte
	loadErr error
	saveErr error
	saves   int
}

func (m *memStore) Load(context.Context) ([]byte, error) { return m.blob, m.loadErr }

func (m *memStore) Save(_ context.Context, b []byte) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.blob = b
	return nil
}

func TestValueSingleItem(t *testing.T) {
	prices := &fakePrices{prices: map[PriceRef]float64{{Kind: 1, Quality: 0}: 25}}
	v := NewValuer(prices, NewPriceCache(), WithClock(func() time.Time { return evening }))

	items := []SnapshotItem{{Kind: 1, Quality: 0, Quantity: 50, Cost: CostBreakdown{Labor: 1000}}}
	val, err := v.Value(context.Background(), 0, items, 0)
	require.NoError(t, err)

	require.Len(t, val.Items, 1)
	assert.InDelta(t, 1062.5, val.Liquidation, 1e-9)
	assert.InDelta(t, -62.5, val.TotalVA, 1e-9)
	assert.InDelta(t, -62.5, val.Delta, 1e-9)
	assert.Equal(t, []date.Date{date.New(2025, 10, 16)}, prices.calls)
}

func TestValueSkipsMissingPrice(t *testing.T) {
	prices := &fakePrices{prices: map[PriceRef]float64{
		{Kind: 1}: 10,
		{Kind: 3}: 4,
	}}
	v := NewValuer(prices, nil, WithClock(func() time.Time { return evening }))

	items := []SnapshotItem{
		{Kind: 1, Quantity: 10, Cost: CostBreakdown{Labor: 100}},
		{Kind: 2, Quantity: 5, Cost: CostBreakdown{Labor: 70}},
		{Kind: 3, Quantity: 10, Cost: CostBreakdown{Labor: 20}},
		{Kind: 4, Quantity: 0, Cost: CostBreakdown{Labor: 1e6}},
	}
	val, err := v.Value(context.Background(), 0, items, 5)
	require.NoError(t, err)

	// 100 - 85 + 20 - 34
	assert.InDelta(t, 1, val.TotalVA, 1e-9)
	assert.InDelta(t, -4, val.Delta, 1e-9)
	assert.InDelta(t, 120, val.CostValue, 1e-9)
	require.Len(t, val.Skipped, 1)
	assert.Equal(t, 2, val.Skipped[0].Kind)
	assert.Len(t, prices.calls, 3, "zero quantity items are not priced")
}

func TestValueUsesCache(t *testing.T) {
	cache := NewPriceCache()
	keys := CacheKeysAt(evening)
	cache.Record(keys.Read, PriceRef{Kind: 7, Quality: 1}.Key(), 3)

	prices := &fakePrices{}
	v := NewValuer(prices, cache, WithClock(func() time.Time { return evening }))
	val, err := v.Value(context.Background(), 0, []SnapshotItem{{Kind: 7, Quality: 1, Quantity: 1}}, 0)
	require.NoError(t, err)

	require.Len(t, val.Items, 1)
	assert.True(t, val.Items[0].Cached)
	assert.Equal(t, 3.0, val.Items[0].Price)
	assert.Empty(t, prices.calls)
}

func TestValueRecordsFetchedPrice(t *testing.T) {
	cache := NewPriceCache()
	prices := &fakePrices{prices: map[PriceRef]float64{{Kind: 7, Quality: 2}: 11}}
	v := NewValuer(prices, cache, WithClock(func() time.Time { return evening }))

	_, err := v.Value(context.Background(), 0, []SnapshotItem{{Kind: 7, Quality: 2, Quantity: 1}}, 0)
	require.NoError(t, err)

	// fetched as of the 16th, recorded under the 17th
	p, ok := cache.Lookup(date.New(2025, 10, 17), "7:2")
	assert.True(t, ok)
	assert.Equal(t, 11.0, p)
	_, ok = cache.Lookup(date.New(2025, 10, 16), "7:2")
	assert.False(t, ok)
	assert.True(t, cache.Dirty())
}

func TestValueCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewValuer(nil, nil).Value(ctx, 0, []SnapshotItem{{Kind: 1, Quantity: 1}}, 0)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCacheKeysAt(t *testing.T) {
	tests := []struct {
		now               time.Time
		read, write, asOf date.Date
	}{
		{evening, date.New(2025, 10, 17), date.New(2025, 10, 17), date.New(2025, 10, 16)},
		// 20:59 in Caracas: still the previous financial day
		{time.Date(2025, 10, 18, 0, 59, 0, 0, time.UTC), date.New(2025, 10, 16), date.New(2025, 10, 16), date.New(2025, 10, 15)},
		// 21:00 in Caracas: rollover
		{time.Date(2025, 10, 18, 1, 0, 0, 0, time.UTC), date.New(2025, 10, 17), date.New(2025, 10, 17), date.New(2025, 10, 16)},
	}
	for _, test := range tests {
		k := CacheKeysAt(test.now)
		assert.Equal(t, CacheKeys{Read: test.read, Write: test.write, AsOf: test.asOf}, k, test.now)
	}
}

func TestPriceCacheNeverOverwrites(t *testing.T) {
	c := NewPriceCache()
	day := date.New(2025, 10, 17)
	assert.True(t, c.Record(day, "1:0", 10))
	assert.False(t, c.Record(day, "1:0", 99))
	p, _ := c.Lookup(day, "1:0")
	assert.Equal(t, 10.0, p)
}

func TestPriceCacheBlob(t *testing.T) {
	c := NewPriceCache()
	c.Record(date.New(2025, 10, 17), "1:0", 10)
	c.Record(date.New(2025, 10, 16), "2:1", 2.5)

	blob, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, `{"2025-10-16":{"2:1":2.5},"2025-10-17":{"1:0":10}}`, string(blob))
	assert.Equal(t, []date.Date{date.New(2025, 10, 16), date.New(2025, 10, 17)}, c.Days())
}

func TestLoadPriceCacheFailures(t *testing.T) {
	ctx := context.Background()

	c := LoadPriceCache(ctx, &memStore{loadErr: errors.New("disk on fire")}, nil)
	assert.Empty(t, c.Days())

	c = LoadPriceCache(ctx, &memStore{blob: []byte("{not json")}, nil)
	assert.Empty(t, c.Days())

	c = LoadPriceCache(ctx, &memStore{blob: []byte(`{"2025-10-17":{"1:0":10}}`)}, nil)
	p, ok := c.Lookup(date.New(2025, 10, 17), "1:0")
	assert.True(t, ok)
	assert.Equal(t, 10.0, p)
	assert.False(t, c.Dirty())

	// null blobs are valid JSON and yield a usable cache
	for _, blob := range []string{`null`, `{"2025-10-17": null}`} {
		c = LoadPriceCache(ctx, &memStore{blob: []byte(blob)}, nil)
		assert.Empty(t, c.Days(), blob)
		assert.True(t, c.Record(date.New(2025, 10, 17), "1:0", 10), blob)
		p, ok = c.Lookup(date.New(2025, 10, 17), "1:0")
		assert.True(t, ok, blob)
		assert.Equal(t, 10.0, p, blob)
	}
}

func TestComputeWithNullCache(t *testing.T) {
	for _, blob := range []string{`null`, `{"2025-10-17": null}`} {
		t.Run(blob, func(t *testing.T) {
			store := &memStore{blob: []byte(blob)}
			e := &Engine{Prices: fixedPrices(25), Store: store, Now: func() time.Time { return evening }}
			in := Inputs{
				Transactions: []Transaction{{Time: evening, Category: "market", Amount: 10}},
				Snapshot:     []SnapshotItem{{Kind: 1, Quantity: 2, Cost: CostBreakdown{Labor: 100}}},
			}
			var r *Report
			var err error
			require.NotPanics(t, func() { r, err = e.Compute(context.Background(), in) })
			require.NoError(t, err)
			assert.Len(t, r.Values.Items, 1)
			assert.Equal(t, 1, store.saves)
		})
	}
}

func TestSavePriceCache(t *testing.T) {
	ctx := context.Background()
	s := &memStore{}

	c := NewPriceCache()
	SavePriceCache(ctx, s, c, nil)
	assert.Zero(t, s.saves, "clean cache is not saved")

	c.Record(date.New(2025, 10, 17), "1:0", 10)
	SavePriceCache(ctx, s, c, nil)
	assert.Equal(t, 1, s.saves)
	assert.False(t, c.Dirty())

	// save failures are dropped
	c.Record(date.New(2025, 10, 17), "2:0", 1)
	SavePriceCache(ctx, &memStore{saveErr: errors.New("read-only")}, c, nil)
	assert.True(t, c.Dirty())
}
