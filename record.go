package simbooks

import (
	"encoding/json"
	"strings"
	"time"
)

// Transaction is one cash record of the company's account history.
//
// Amount is signed: positive when cash comes in, negative when it goes out.
type Transaction struct {
	Time        time.Time
	Category    string
	Description string
	Amount      float64
}

// MovementKind is the fixed vocabulary of resource movement categories.
type MovementKind int

const (
	Other MovementKind = iota
	Production
	MarketBuy
	MarketSell
	ContractBuy
	ContractSell
	Transport
	Research
)

func (k MovementKind) String() string {
	switch k {
	case Production:
		return "production"
	case MarketBuy:
		return "market buy"
	case MarketSell:
		return "market sell"
	case ContractBuy:
		return "contract buy"
	case ContractSell:
		return "contract sell"
	case Transport:
		return "transport"
	case Research:
		return "research"
	default:
		return "other"
	}
}

// ParseMovementKind maps a category label to its MovementKind.
// It is case insensitive and accepts '_' or '-' as word separators.
// Unknown labels are Other.
func ParseMovementKind(s string) MovementKind {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("_", " ", "-", " ").Replace(s)
	s = strings.Join(strings.Fields(s), " ")
	switch s {
	case "production":
		return Production
	case "market buy":
		return MarketBuy
	case "market sell":
		return MarketSell
	case "contract buy":
		return ContractBuy
	case "contract sell":
		return ContractSell
	case "transport":
		return Transport
	case "research":
		return Research
	default:
		return Other
	}
}

// MaterialSlots is the number of material cost components of a resource.
const MaterialSlots = 5

// CostBreakdown holds the cost components of a resource quantity.
// Missing components are zero.
type CostBreakdown struct {
	Labor          float64
	Administration float64
	ThirdParty     float64
	Materials      [MaterialSlots]float64
}

// Total returns the sum of all cost components.
func (c CostBreakdown) Total() float64 {
	total := c.Labor + c.Administration + c.ThirdParty
	for _, m := range c.Materials {
		total += m
	}
	return total
}

// Movement is one resource movement record.
//
// Amount is signed: positive for an inflow, negative for an outflow. Detail
// is an optional structured payload (e.g. the patents yielded by research).
type Movement struct {
	Time     time.Time
	Kind     MovementKind
	Resource string
	Amount   float64
	Cost     CostBreakdown
	Detail   json.RawMessage
}

// isInflow reports whether m acquires units at a cost.
func (m Movement) isInflow() bool {
	switch m.Kind {
	case Production, MarketBuy, ContractBuy:
		return m.Amount > 0
	}
	return false
}

// isOutflow reports whether m sells units.
func (m Movement) isOutflow() bool {
	switch m.Kind {
	case MarketSell, ContractSell:
		return m.Amount < 0
	}
	return false
}

// SnapshotItem is one line of the inventory currently held.
type SnapshotItem struct {
	Kind     int
	Quality  int
	Quantity float64
	Cost     CostBreakdown
}

// Window restricts the records that contribute to a statement.
// A zero bound is open.
type Window struct {
	From time.Time // inclusive
	To   time.Time // exclusive
}

// Contains reports whether t is inside the window.
func (w Window) Contains(t time.Time) bool {
	if !w.From.IsZero() && t.Before(w.From) {
		return false
	}
	if !w.To.IsZero() && !t.Before(w.To) {
		return false
	}
	return true
}
