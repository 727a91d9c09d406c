package renderer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/etnz/simbooks"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

const htmlHeader = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { font-family: sans-serif; max-width: 48em; margin: 2em auto; }
table { border-collapse: collapse; margin-bottom: 2em; }
td, th { padding: 0.2em 0.8em; }
td:last-child { text-align: right; font-variant-numeric: tabular-nums; }
</style>
</head>
<body>
`

const htmlFooter = `</body>
</html>
`

var converter = goldmark.New(
	goldmark.WithExtensions(extension.Table),
	goldmark.WithRendererOptions(html.WithUnsafe()),
)

// HTML converts a markdown document into a standalone HTML page.
func HTML(w io.Writer, title, markdown string) error {
	var body bytes.Buffer
	if err := converter.Convert([]byte(markdown), &body); err != nil {
		return fmt.Errorf("cannot convert markdown: %w", err)
	}
	if _, err := fmt.Fprintf(w, htmlHeader, title); err != nil {
		return err
	}
	if _, err := body.WriteTo(w); err != nil {
		return err
	}
	_, err := io.WriteString(w, htmlFooter)
	return err
}

// CSVHeader is the header row of statement exports.
var CSVHeader = []string{"statement", "section", "level", "item", "value"}

// WriteCSV writes the named statements as statement,section,level,item,value
// rows. Separator rows are kept with an empty value. Items are written without
// their indentation, level holds it: 1 for details, 0 for subtotals.
func WriteCSV(w io.Writer, statements []NamedStatement) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, ns := range statements {
		for _, l := range ns.Lines {
			value := ""
			if l.Value != nil {
				value = plain(*l.Value)
			}
			if err := cw.Write([]string{ns.Name, l.Section, strconv.Itoa(l.Level()), strings.TrimLeft(l.Item, " "), value}); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// NamedStatement pairs a statement with its export name.
type NamedStatement struct {
	Name  string
	Lines simbooks.Statement
}

// ReportStatements returns the statements of r in export order.
func ReportStatements(r *simbooks.Report) []NamedStatement {
	return []NamedStatement{
		{Name: "income", Lines: r.Income},
		{Name: "cash_flow", Lines: r.CashFlow},
		{Name: "valuation", Lines: r.Valuation},
	}
}
