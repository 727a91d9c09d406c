package simbooks

import "strings"

// Bucket names a statement aggregate a transaction can contribute to.
type Bucket string

const (
	Sales              Bucket = "sales"
	Fees               Bucket = "fees"
	Construction       Bucket = "construction"
	Salaries           Bucket = "salaries"
	ExecRoyalties      Bucket = "exec_royalties"
	Training           Bucket = "training"
	Poaching           Bucket = "poaching"
	InterestIncome     Bucket = "interest_income"
	InterestExpense    Bucket = "interest_expense"
	GameIncome         Bucket = "game_income"
	GainOnSale         Bucket = "gain_on_sale"
	AccountingOverhead Bucket = "accounting_overhead"
	Donations          Bucket = "donations"
	WriteOffs          Bucket = "write_offs"
	Defaults           Bucket = "defaults"
)

// Rule tags the transactions matching its predicate with a bucket.
type Rule struct {
	Bucket Bucket
	Match  func(Transaction) bool
}

// match is a declarative transaction predicate.
//
// A transaction matches when its category is one of categories OR its
// description contains one of keywords, AND its description contains one of
// requires (if any), AND none of excludes, AND its amount has the wanted sign.
// Comparisons are case insensitive.
type match struct {
	categories []string
	keywords   []string
	requires   []string
	excludes   []string
	sign       int // 1 for amount > 0, -1 for amount < 0, 0 for any
}

func (m match) eval(tx Transaction) bool {
	cat := normalize(tx.Category)
	desc := normalize(tx.Description)

	if !oneOf(cat, m.categories) && !containsAny(desc, m.keywords) {
		return false
	}
	if len(m.requires) > 0 && !containsAny(desc, m.requires) {
		return false
	}
	if containsAny(desc, m.excludes) {
		return false
	}
	switch {
	case m.sign > 0:
		return tx.Amount > 0
	case m.sign < 0:
		return tx.Amount < 0
	}
	return true
}

// category matches any of the given categories.
func category(c ...string) match { return match{categories: c} }

// categoryOrKeyword matches the category c or a description containing one of k.
func categoryOrKeyword(c string, k ...string) match {
	return match{categories: []string{c}, keywords: k}
}

func (m match) positive() match             { m.sign = 1; return m }
func (m match) negative() match             { m.sign = -1; return m }
func (m match) requiring(k ...string) match { m.requires = append(m.requires, k...); return m }
func (m match) without(k ...string) match   { m.excludes = append(m.excludes, k...); return m }
func (m match) rule(b Bucket) Rule          { return Rule{Bucket: b, Match: m.eval} }

// IncomeRules is the classification table of the income statement buckets.
//
// Rules are evaluated independently: a transaction contributes to every
// bucket whose rule matches. The executive salaries category is split between
// salaries and royalties by description before any summing.
var IncomeRules = []Rule{
	category("market", "contract").positive().rule(Sales),
	category("fees").rule(Fees),
	category("construction").rule(Construction),
	category("executive salaries").without("executive royalties").rule(Salaries),
	category("executive salaries").requiring("executive royalties").rule(ExecRoyalties),
	category("executive training").rule(Training),
	category("executive poaching").rule(Poaching),
	category("interest").positive().rule(InterestIncome),
	category("interest").negative().rule(InterestExpense),
	categoryOrKeyword("achievement", "achievement").rule(GameIncome),
	categoryOrKeyword("gain on sale", "gain on sale").rule(GainOnSale),
	categoryOrKeyword("taxes", "taxes").rule(AccountingOverhead),
	categoryOrKeyword("donations", "donation").rule(Donations),
	categoryOrKeyword("write-offs", "write-off", "write off").rule(WriteOffs),
	categoryOrKeyword("defaults", "default").rule(Defaults),
}

// Classifier assigns transactions to buckets with a rule table.
type Classifier struct {
	rules []Rule
}

// NewClassifier returns a Classifier over rules, IncomeRules when nil.
func NewClassifier(rules []Rule) *Classifier {
	if rules == nil {
		rules = IncomeRules
	}
	return &Classifier{rules: rules}
}

// Classify returns every bucket tx contributes to, in rule order.
func (c *Classifier) Classify(tx Transaction) []Bucket {
	var buckets []Bucket
	for _, r := range c.rules {
		if r.Match(tx) {
			buckets = append(buckets, r.Bucket)
		}
	}
	return buckets
}

// Sums holds one independent total per bucket.
type Sums map[Bucket]float64

// Get returns the total of b, zero when nothing contributed.
func (s Sums) Get(b Bucket) float64 { return s[b] }

// Aggregate sums the amounts of txs per bucket. Each bucket is an independent
// sum over the full set.
func (c *Classifier) Aggregate(txs []Transaction) Sums {
	sums := make(Sums, len(c.rules))
	for _, r := range c.rules {
		sums[r.Bucket] = 0
	}
	for _, tx := range txs {
		for _, b := range c.Classify(tx) {
			sums[b] += tx.Amount
		}
	}
	return sums
}

func normalize(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func oneOf(s string, set []string) bool {
	for _, v := range set {
		if s == v {
			return true
		}
	}
	return false
}

func containsAny(s string, keys []string) bool {
	for _, k := range keys {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
