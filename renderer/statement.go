package renderer

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/etnz/simbooks"
	"github.com/etnz/simbooks/date"
	md "github.com/nao1215/markdown"
)

// ruleCell is shown in the amount column of separator rows.
func ruleCell(item string) string {
	if item == simbooks.RuleDouble {
		return strings.Repeat("=", 12)
	}
	return strings.Repeat("-", 12)
}

// statementTable converts s into table rows. A section title gets a bold row
// of its own, followed by the lines of the section.
func statementTable(s simbooks.Statement) md.TableSet {
	table := md.TableSet{Header: []string{"", "Amount"}}
	for _, l := range s {
		if l.Section != "" {
			table.Rows = append(table.Rows, []string{md.Bold(l.Section), ""})
		}
		switch {
		case l.IsRule():
			table.Rows = append(table.Rows, []string{"", ruleCell(l.Item)})
		case l.Value == nil:
			table.Rows = append(table.Rows, []string{label(l.Item), ""})
		case strings.HasPrefix(l.Item, " "):
			table.Rows = append(table.Rows, []string{label(l.Item), FormatAmount(*l.Value)})
		default:
			// subtotals
			table.Rows = append(table.Rows, []string{md.Bold(l.Item), md.Bold(FormatAmount(*l.Value))})
		}
	}
	return table
}

// label keeps the indentation of detail items visible once rendered.
func label(item string) string {
	trimmed := strings.TrimLeft(item, " ")
	depth := (len(item) - len(trimmed)) / 2
	return strings.Repeat("&nbsp;&nbsp;", depth) + trimmed
}

// StatementMarkdown renders one statement under a level 2 title.
func StatementMarkdown(title string, s simbooks.Statement) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H2(title)
	doc.Table(statementTable(s))
	return doc.String()
}

// ReportMarkdown renders the three statements of a compute action.
func ReportMarkdown(r *simbooks.Report, realm int, w simbooks.Window) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)

	doc.H1("Financial Statements")
	doc.PlainText(fmt.Sprintf("Realm %d, %s, %d transactions.", realm, period(w), r.Transactions))

	doc.H2("Income Statement")
	doc.Table(statementTable(r.Income))

	doc.H2("Cash Flow Statement")
	doc.Table(statementTable(r.CashFlow))

	doc.H2("Inventory Valuation")
	doc.Table(statementTable(r.Valuation))

	if n := len(r.Values.Skipped); n > 0 {
		doc.PlainText(fmt.Sprintf("%d inventory items had no reference price and were left out of the valuation.", n))
	}
	return doc.String()
}

// period describes a reporting window in financial days.
func period(w simbooks.Window) string {
	from := date.FinancialDay(w.From)
	last := date.FinancialDay(w.To).Add(-1) // To is exclusive
	switch {
	case w.From.IsZero() && w.To.IsZero():
		return "full history"
	case w.To.IsZero():
		return "since " + from.String()
	case w.From.IsZero():
		return "until " + last.String()
	default:
		return fmt.Sprintf("from %s to %s", from, last)
	}
}

// CostingMarkdown renders the per resource state of a costing replay.
func CostingMarkdown(res simbooks.CostingResult) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1("Cost of Goods Sold")

	names := make([]string, 0, len(res.Resources))
	for name := range res.Resources {
		names = append(names, name)
	}
	sort.Strings(names)

	table := md.TableSet{Header: []string{"Resource", "Units", "Cost", "Average", "COGS"}}
	for _, name := range names {
		rc := res.Resources[name]
		table.Rows = append(table.Rows, []string{
			name,
			FormatNumber(rc.Units),
			FormatAmount(rc.Cost),
			FormatMoney(rc.Average, Currency),
			FormatAmount(-rc.Realized),
		})
	}
	table.Rows = append(table.Rows, []string{md.Bold("Total"), "", "", "", md.Bold(FormatAmount(res.COGS))})
	doc.Table(table)
	return doc.String()
}

// ValuationMarkdown renders the per item detail of a valuation.
func ValuationMarkdown(v simbooks.Valuation) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1("Inventory Valuation")
	doc.PlainText(fmt.Sprintf("Reference prices as of %s.", v.Keys.AsOf))

	table := md.TableSet{Header: []string{"Kind", "Quality", "Quantity", "Price", "Cost Value", "Liquidation", "Allowance"}}
	for _, iv := range v.Items {
		price := FormatMoney(iv.Price, Currency)
		if iv.Cached {
			price += " (cached)"
		}
		table.Rows = append(table.Rows, []string{
			fmt.Sprint(iv.Item.Kind),
			fmt.Sprint(iv.Item.Quality),
			FormatNumber(iv.Item.Quantity),
			price,
			FormatAmount(iv.CostValue),
			FormatAmount(iv.Liquidation),
			FormatAmount(iv.Allowance),
		})
	}
	doc.Table(table)

	if len(v.Skipped) > 0 {
		doc.H2("Items Without Price")
		skipped := md.TableSet{Header: []string{"Kind", "Quality", "Quantity"}}
		for _, it := range v.Skipped {
			skipped.Rows = append(skipped.Rows, []string{fmt.Sprint(it.Kind), fmt.Sprint(it.Quality), FormatNumber(it.Quantity)})
		}
		doc.Table(skipped)
	}

	doc.H2("Summary")
	doc.Table(statementTable(simbooks.BuildValuation(v)))
	return doc.String()
}

// PricesMarkdown renders the prices cached under day.
func PricesMarkdown(day date.Date, entries map[string]float64) string {
	var buf bytes.Buffer
	doc := md.NewMarkdown(&buf)
	doc.H1(fmt.Sprintf("Cached Prices of %s", day))
	if len(entries) == 0 {
		doc.PlainText("No price recorded.")
		return doc.String()
	}
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	table := md.TableSet{Header: []string{"Kind:Quality", "VWAP"}}
	for _, k := range keys {
		table.Rows = append(table.Rows, []string{k, FormatMoney(entries[k], Currency)})
	}
	doc.Table(table)
	return doc.String()
}
