package simbooks

// CashActivity is the cash-flow statement section of a cash item.
type CashActivity int

const (
	Operating CashActivity = iota
	Investing
	Financing
)

// CashRule assigns matching transactions to a cash-flow item.
type CashRule struct {
	Activity CashActivity
	Item     string
	Match    func(Transaction) bool
}

func (m match) cash(a CashActivity, item string) CashRule {
	return CashRule{Activity: a, Item: item, Match: m.eval}
}

// otherOperating collects the transactions no cash rule matched.
const otherOperating = "Other Operating Cash Flows"

// CashRules is the cash-flow classification table.
//
// Unlike IncomeRules, cash rules partition the transactions: the first
// matching rule wins so that the statement reconciles with the cash moved.
// Items listed more than once share a single row, in first appearance order.
var CashRules = []CashRule{
	category("market", "contract").positive().cash(Operating, "Receipts from Sales"),
	category("market", "contract").negative().cash(Operating, "Payments for Purchases"),
	category("fees").cash(Operating, "Fees Paid"),
	category("construction").cash(Operating, "Construction Paid"),
	category("executive salaries").cash(Operating, "Executive Salaries and Royalties Paid"),
	category("executive training", "executive poaching").cash(Operating, "Executive Training and Poaching Paid"),
	category("interest").positive().cash(Operating, "Interest Received"),
	category("interest").negative().cash(Operating, "Interest Paid"),
	categoryOrKeyword("taxes", "taxes").cash(Operating, "Taxes Paid"),
	categoryOrKeyword("achievement", "achievement").cash(Operating, "Game Income Received"),
	categoryOrKeyword("donations", "donation").cash(Operating, "Donations Paid"),
	category("bonds").requiring("own bond").cash(Financing, "Own Bonds"),
	category("bonds").cash(Investing, "Bond Investment"),
	categoryOrKeyword("funding", "granted by the game", "game grant").cash(Financing, "Game-Granted Funds"),
}

// CashFlows holds the per item totals of a cash-flow statement.
type CashFlows struct {
	Items     map[string]float64
	Operating float64
	Investing float64
	Financing float64
	TotalCash float64
	Unmatched int // transactions that fell into other operating cash flows
}

// ClassifyCash returns the cash rule matching tx, and false when none does.
func ClassifyCash(rules []CashRule, tx Transaction) (CashRule, bool) {
	for _, r := range rules {
		if r.Match(tx) {
			return r, true
		}
	}
	return CashRule{}, false
}

// AggregateCash sums txs per cash item.
func AggregateCash(rules []CashRule, txs []Transaction) CashFlows {
	cf := CashFlows{Items: make(map[string]float64)}
	for _, tx := range txs {
		r, ok := ClassifyCash(rules, tx)
		if !ok {
			r = CashRule{Activity: Operating, Item: otherOperating}
			cf.Unmatched++
		}
		cf.Items[r.Item] += tx.Amount
		switch r.Activity {
		case Operating:
			cf.Operating += tx.Amount
		case Investing:
			cf.Investing += tx.Amount
		case Financing:
			cf.Financing += tx.Amount
		}
	}
	cf.TotalCash = cf.Operating + cf.Investing + cf.Financing
	return cf
}

// BuildCashFlow lays out the cash-flow statement of txs with CashRules.
func BuildCashFlow(txs []Transaction) Statement {
	return buildCashFlow(CashRules, AggregateCash(CashRules, txs))
}

func buildCashFlow(rules []CashRule, cf CashFlows) Statement {
	items := func(a CashActivity) []string {
		var out []string
		seen := make(map[string]bool)
		for _, r := range rules {
			if r.Activity == a && !seen[r.Item] {
				seen[r.Item] = true
				out = append(out, r.Item)
			}
		}
		if a == Operating {
			out = append(out, otherOperating)
		}
		return out
	}

	var b builder
	b.section("Operating Activities")
	for _, item := range items(Operating) {
		b.item(item, cf.Items[item])
	}
	b.thin()
	b.total("Net Cash from Operating Activities", cf.Operating)

	b.section("Investing Activities")
	for _, item := range items(Investing) {
		b.item(item, cf.Items[item])
	}
	b.thin()
	b.total("Net Cash from Investing Activities", cf.Investing)

	b.section("Financing Activities")
	for _, item := range items(Financing) {
		b.item(item, cf.Items[item])
	}
	b.thin()
	b.total("Net Cash from Financing Activities", cf.Financing)

	b.double()
	b.total("Total Change in Cash", cf.TotalCash)
	return b.lines
}
