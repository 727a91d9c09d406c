package simbooks

import (
	"context"
	"time"

	"github.com/etnz/simbooks/date"
	"go.uber.org/zap"
)

// LiquidationDiscount is applied to the reference price to estimate what the
// inventory would fetch if sold now.
const LiquidationDiscount = 0.85

// PriceSource provides reference market prices.
//
// VWAP returns the volume-weighted average price of ref on the given day in
// realm, or an error (typically wrapping ErrNoPrice) when there is none.
type PriceSource interface {
	VWAP(ctx context.Context, realm int, ref PriceRef, on date.Date) (float64, error)
}

// PriceSourceFunc adapts a function to a PriceSource.
type PriceSourceFunc func(ctx context.Context, realm int, ref PriceRef, on date.Date) (float64, error)

func (f PriceSourceFunc) VWAP(ctx context.Context, realm int, ref PriceRef, on date.Date) (float64, error) {
	return f(ctx, realm, ref, on)
}

// ItemValuation is the valuation of one snapshot item.
type ItemValuation struct {
	Item        SnapshotItem
	Price       float64 // reference VWAP, before discount
	CostValue   float64
	Liquidation float64
	Allowance   float64 // CostValue - Liquidation
	Cached      bool    // price came from the cache
}

// Valuation is the inventory valuation allowance of a snapshot.
type Valuation struct {
	Keys        CacheKeys
	Items       []ItemValuation // valued items, in snapshot order
	Skipped     []SnapshotItem  // items without a reference price
	CostValue   float64
	Liquidation float64
	TotalVA     float64 // sum of the item allowances
	Baseline    float64 // allowance of the prior balance snapshot
	Delta       float64 // TotalVA - Baseline
}

// Valuer computes inventory valuation allowances.
type Valuer struct {
	prices PriceSource
	cache  *PriceCache
	now    func() time.Time
	logger *zap.Logger
}

// ValuerOption configures a Valuer.
type ValuerOption func(*Valuer)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) ValuerOption {
	return func(v *Valuer) { v.now = now }
}

// WithLogger sets the logger of the Valuer.
func WithLogger(l *zap.Logger) ValuerOption {
	return func(v *Valuer) {
		if l != nil {
			v.logger = l
		}
	}
}

// NewValuer returns a Valuer fetching from prices and memoizing into cache.
// A nil cache disables memoization.
func NewValuer(prices PriceSource, cache *PriceCache, opts ...ValuerOption) *Valuer {
	v := &Valuer{prices: prices, cache: cache, now: time.Now, logger: zap.NewNop()}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Value computes the valuation allowance of items in realm against baseline.
//
// Items with a zero quantity are ignored. Items without a reference price are
// skipped, they never abort the computation nor count as zero.
func (v *Valuer) Value(ctx context.Context, realm int, items []SnapshotItem, baseline float64) (Valuation, error) {
	keys := CacheKeysAt(v.now())
	val := Valuation{Keys: keys, Baseline: baseline}

	for _, item := range items {
		if item.Quantity == 0 {
			continue
		}
		if err := ctx.Err(); err != nil {
			return Valuation{}, err
		}
		ref := PriceRef{Kind: item.Kind, Quality: item.Quality}
		price, cached, ok := v.price(ctx, realm, ref, keys)
		if !ok {
			val.Skipped = append(val.Skipped, item)
			continue
		}
		iv := ItemValuation{
			Item:        item,
			Price:       price,
			CostValue:   item.Cost.Total(),
			Liquidation: item.Quantity * price * LiquidationDiscount,
			Cached:      cached,
		}
		iv.Allowance = iv.CostValue - iv.Liquidation
		val.Items = append(val.Items, iv)
		val.CostValue += iv.CostValue
		val.Liquidation += iv.Liquidation
		val.TotalVA += iv.Allowance
	}
	val.Delta = val.TotalVA - baseline

	v.logger.Debug("valuation done",
		zap.Int("realm", realm),
		zap.Stringer("as_of", keys.AsOf),
		zap.Int("valued", len(val.Items)),
		zap.Int("skipped", len(val.Skipped)),
		zap.Float64("total_va", val.TotalVA))
	return val, nil
}

// price returns the reference price of ref, from the cache when possible.
func (v *Valuer) price(ctx context.Context, realm int, ref PriceRef, keys CacheKeys) (price float64, cached, ok bool) {
	key := ref.Key()
	if v.cache != nil {
		if p, hit := v.cache.Lookup(keys.Read, key); hit {
			return p, true, true
		}
	}
	if v.prices == nil {
		return 0, false, false
	}
	p, err := v.prices.VWAP(ctx, realm, ref, keys.AsOf)
	if err != nil {
		v.logger.Debug("no reference price, item skipped",
			zap.String("ref", key), zap.Stringer("as_of", keys.AsOf), zap.Error(err))
		return 0, false, false
	}
	if v.cache != nil {
		v.cache.Record(keys.Write, key, p)
	}
	return p, false, true
}
