package simbooks

// Separator markers used as Line items.
const (
	RuleThin   = "---"
	RuleDouble = "==="
)

// indent is prepended to detail items; subtotals are not indented.
const indent = "  "

// Line is one row of a statement.
//
// Section is set on the first row of a section and blank on the following
// ones. Item is an indented label, or one of RuleThin and RuleDouble. Value is
// nil on rows that carry no figure.
type Line struct {
	Section string
	Item    string
	Value   *float64
}

// IsRule reports whether l is a separator row.
func (l Line) IsRule() bool { return l.Item == RuleThin || l.Item == RuleDouble }

// Level returns the indentation depth of the item: 0 for subtotals and rules,
// 1 for detail items.
func (l Line) Level() int {
	n := 0
	for item := l.Item; len(item) >= len(indent) && item[:len(indent)] == indent; item = item[len(indent):] {
		n++
	}
	return n
}

// Statement is an ordered sequence of lines. Order is part of the output.
type Statement []Line

// Find returns the value of the first line whose trimmed item is label.
func (s Statement) Find(label string) (float64, bool) {
	for _, l := range s {
		if trimIndent(l.Item) == label && l.Value != nil {
			return *l.Value, true
		}
	}
	return 0, false
}

func trimIndent(s string) string {
	for len(s) >= len(indent) && s[:len(indent)] == indent {
		s = s[len(indent):]
	}
	return s
}

// builder appends lines to a statement, tracking the current section.
type builder struct {
	lines   Statement
	pending string // title of the section started but not yet written
}

// section starts a new section: its title goes on the next row.
func (b *builder) section(title string) { b.pending = title }

func (b *builder) add(item string, value *float64) {
	b.lines = append(b.lines, Line{Section: b.pending, Item: item, Value: value})
	b.pending = ""
}

// item adds an indented detail row.
func (b *builder) item(label string, v float64) { b.add(indent+label, &v) }

// total adds a subtotal row.
func (b *builder) total(label string, v float64) { b.add(label, &v) }

func (b *builder) thin()   { b.add(RuleThin, nil) }
func (b *builder) double() { b.add(RuleDouble, nil) }

// BuildValuation lays out the valuation delta statement of v.
func BuildValuation(v Valuation) Statement {
	var b builder
	b.section("Inventory Valuation")
	b.item("Cost Value", v.CostValue)
	b.item("Liquidation Value", v.Liquidation)
	b.thin()
	b.total("Valuation Allowance", v.TotalVA)
	b.item("Prior Allowance", v.Baseline)
	b.double()
	b.total("Allowance Change", v.Delta)
	b.item("Items Without Price", float64(len(v.Skipped)))
	return b.lines
}
