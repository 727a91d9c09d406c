package simbooks

import (
	"context"
	"fmt"
	"time"

	"github.com/etnz/simbooks/internal/logger"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Inputs is the record selection of one compute action.
type Inputs struct {
	Realm        int
	Window       Window
	Transactions []Transaction
	Movements    []Movement
	Snapshot     []SnapshotItem
	Baseline     float64 // valuation allowance of the prior balance snapshot
}

// Validate checks that in can be computed.
func (in Inputs) Validate() error {
	if len(in.Transactions) == 0 && len(in.Movements) == 0 {
		return ErrEmptySelection
	}
	w := in.Window
	if !w.From.IsZero() && !w.To.IsZero() && w.From.After(w.To) {
		return fmt.Errorf("%w: %s is after %s", ErrInvalidCutoff, w.From.Format(time.DateOnly), w.To.Format(time.DateOnly))
	}
	return nil
}

// Report holds the three statements of a compute action and the figures
// they were built from.
type Report struct {
	RunID     string
	Income    Statement
	CashFlow  Statement
	Valuation Statement

	COGS    float64
	TotalVA float64
	Delta   float64

	Sums         Sums
	Cash         CashFlows
	Costing      CostingResult
	Values       Valuation
	Figures      IncomeFigures
	FreightOut   float64
	Patents      float64
	Transactions int // transactions inside the window
}

// Engine runs compute actions.
//
// Prices and Store are optional: without Prices every snapshot item is
// skipped, without Store the price cache only lives for the action.
type Engine struct {
	Prices PriceSource
	Store  BlobStore
	Logger *zap.Logger
	Now    func() time.Time
}

// logger returns e.Logger, or the logger carried by ctx.
func (e *Engine) logger(ctx context.Context) *zap.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return logger.FromContext(ctx)
}

func (e *Engine) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

// Compute derives the income, cash-flow and valuation statements of in.
//
// The price cache is loaded once before valuation and saved once after it.
func (e *Engine) Compute(ctx context.Context, in Inputs) (*Report, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	runID := uuid.NewString()
	l := e.logger(ctx).With(zap.String("run_id", runID), zap.Int("realm", in.Realm))
	ctx = logger.WithContext(ctx, l)
	l.Debug("compute started",
		zap.Int("transactions", len(in.Transactions)),
		zap.Int("movements", len(in.Movements)),
		zap.Int("snapshot", len(in.Snapshot)))

	var txs []Transaction
	for _, tx := range in.Transactions {
		if in.Window.Contains(tx.Time) {
			txs = append(txs, tx)
		}
	}

	sums := NewClassifier(IncomeRules).Aggregate(txs)
	cash := AggregateCash(CashRules, txs)
	if cash.Unmatched > 0 {
		l.Debug("transactions without cash rule", zap.Int("count", cash.Unmatched))
	}

	costing, err := NewCostingEngine(l).Cost(ctx, in.Movements, in.Window)
	if err != nil {
		return nil, fmt.Errorf("could not cost movements: %w", err)
	}

	freight := FreightOut(in.Movements, in.Window)
	patents := PatentConversion(in.Movements, in.Window, func(m Movement, err error) {
		l.Debug("unreadable research detail", zap.String("resource", m.Resource), zap.Error(err))
	})

	cache := LoadPriceCache(ctx, e.Store, l)
	valuer := NewValuer(e.Prices, cache, WithClock(e.now), WithLogger(l))
	val, err := valuer.Value(ctx, in.Realm, in.Snapshot, in.Baseline)
	if err != nil {
		return nil, fmt.Errorf("could not value inventory: %w", err)
	}
	SavePriceCache(ctx, e.Store, cache, l)

	income := IncomeInputs{
		Sums:             sums,
		COGS:             costing.COGS,
		FreightOut:       freight,
		PatentConversion: patents,
		ValuationDelta:   val.Delta,
	}

	r := &Report{
		RunID:        runID,
		Income:       BuildIncome(income),
		CashFlow:     buildCashFlow(CashRules, cash),
		Valuation:    BuildValuation(val),
		COGS:         costing.COGS,
		TotalVA:      val.TotalVA,
		Delta:        val.Delta,
		Sums:         sums,
		Cash:         cash,
		Costing:      costing,
		Values:       val,
		Figures:      income.Figures(),
		FreightOut:   freight,
		Patents:      patents,
		Transactions: len(txs),
	}
	l.Info("compute done",
		zap.Float64("net_income", r.Figures.NetIncome),
		zap.Float64("cogs", r.COGS),
		zap.Float64("total_va", r.TotalVA),
		zap.Int("skipped_items", len(val.Skipped)))
	return r, nil
}
