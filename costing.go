package simbooks

import (
	"context"
	"slices"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// costState is the running weighted-average state of one resource.
// Both fields are never negative.
type costState struct {
	units float64
	cost  float64
}

// average returns the current unit cost, 0 when nothing is on hand.
func (s costState) average() float64 {
	if s.units > 0 {
		return s.cost / s.units
	}
	return 0
}

// acquire adds an inflow of units at the given total cost.
func (s *costState) acquire(units, cost float64) {
	s.units += units
	s.cost += cost
}

// dispose removes sold units at the current average cost and returns the
// realized cost. Selling everything (or more) resets the state to zero.
func (s *costState) dispose(units float64) float64 {
	realized := units * s.average()
	if units >= s.units {
		s.units, s.cost = 0, 0
		return realized
	}
	s.units -= units
	s.cost -= realized
	if s.cost < 0 {
		s.cost = 0
	}
	return realized
}

// ResourceCost is the final costing state of one resource.
type ResourceCost struct {
	Units    float64 // units on hand at the end of the replay
	Cost     float64 // accumulated cost of the units on hand
	Average  float64 // Cost / Units, 0 when Units is 0
	Realized float64 // cost of goods sold inside the window, positive
}

// CostingResult is the output of a costing replay.
type CostingResult struct {
	// COGS is the realized cost of goods sold inside the window, signed
	// negative for income statement use.
	COGS      float64
	Resources map[string]ResourceCost
}

// CostingEngine replays resource movements with weighted-average costing.
//
// Resources are independent: each one is sorted and folded on its own, and
// resources are folded concurrently. Nothing is kept between two calls.
type CostingEngine struct {
	logger *zap.Logger
	limit  int
}

// NewCostingEngine returns an engine logging to l (nil discards).
func NewCostingEngine(l *zap.Logger) *CostingEngine {
	if l == nil {
		l = zap.NewNop()
	}
	return &CostingEngine{logger: l, limit: 8}
}

// Cost replays movements and returns the COGS realized by sales inside w.
//
// Rows are grouped per resource and sorted chronologically inside the engine,
// the caller order does not matter. Rows outside w still move the running
// averages so that sales inside w are costed against the full history.
func (e *CostingEngine) Cost(ctx context.Context, movements []Movement, w Window) (CostingResult, error) {
	groups := groupByResource(movements)

	var mu sync.Mutex
	resources := make(map[string]ResourceCost, len(groups))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.limit)
	for name, rows := range groups {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			rc := replay(rows, w)
			mu.Lock()
			resources[name] = rc
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return CostingResult{}, err
	}

	// Sum in a fixed order so that repeated runs give the exact same figure.
	names := make([]string, 0, len(resources))
	for name := range resources {
		names = append(names, name)
	}
	slices.Sort(names)
	var cogs float64
	for _, name := range names {
		cogs += resources[name].Realized
	}

	e.logger.Debug("costing replay done",
		zap.Int("movements", len(movements)),
		zap.Int("resources", len(resources)),
		zap.Float64("cogs", cogs))

	return CostingResult{COGS: -cogs, Resources: resources}, nil
}

// groupByResource splits movements per resource name, skipping rows with no
// name, and sorts every group chronologically (stable on equal times).
func groupByResource(movements []Movement) map[string][]Movement {
	groups := make(map[string][]Movement)
	for _, m := range movements {
		name := strings.TrimSpace(m.Resource)
		if name == "" {
			continue
		}
		groups[name] = append(groups[name], m)
	}
	for _, rows := range groups {
		slices.SortStableFunc(rows, func(a, b Movement) int { return a.Time.Compare(b.Time) })
	}
	return groups
}

// replay folds one resource's sorted movements.
func replay(rows []Movement, w Window) ResourceCost {
	var s costState
	var realized float64
	for _, m := range rows {
		switch {
		case m.isInflow():
			s.acquire(m.Amount, m.Cost.Total())
		case m.isOutflow():
			r := s.dispose(-m.Amount)
			if w.Contains(m.Time) {
				realized += r
			}
		}
	}
	return ResourceCost{Units: s.units, Cost: s.cost, Average: s.average(), Realized: realized}
}
