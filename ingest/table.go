// Package ingest reads the game records exported as CSV and JSON.
package ingest

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/etnz/simbooks"
	"github.com/shopspring/decimal"
)

// table reads a CSV file with a header row, addressing fields by column name.
type table struct {
	reader  *csv.Reader
	columns map[string]int
	line    int
	record  []string
}

var bom = []byte{0xEF, 0xBB, 0xBF}

func newTable(r io.Reader) (*table, error) {
	br := bufio.NewReader(r)
	if head, _ := br.Peek(len(bom)); string(head) == string(bom) {
		_, _ = br.Discard(len(bom))
	}
	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.LazyQuotes = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("empty file: %w", simbooks.ErrMissingColumn)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}
	t := &table{reader: cr, columns: make(map[string]int, len(header)), line: 1}
	for i, h := range header {
		t.columns[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return t, nil
}

// require checks that every column in names is present.
func (t *table) require(names ...string) error {
	for _, n := range names {
		if _, ok := t.columns[n]; !ok {
			return fmt.Errorf("%w %q", simbooks.ErrMissingColumn, n)
		}
	}
	return nil
}

// next advances to the next non blank record. It returns false at the end.
func (t *table) next() (bool, error) {
	for {
		rec, err := t.reader.Read()
		if errors.Is(err, io.EOF) {
			return false, nil
		}
		t.line++
		if err != nil {
			return false, fmt.Errorf("line %d: %w", t.line, err)
		}
		if blank(rec) {
			continue
		}
		t.record = rec
		return true, nil
	}
}

func blank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

// get returns the trimmed field of column name, "" when absent.
func (t *table) get(name string) string {
	i, ok := t.columns[name]
	if !ok || i >= len(t.record) {
		return ""
	}
	return strings.TrimSpace(t.record[i])
}

// amount parses the decimal field of column name; blank is zero.
func (t *table) amount(name string) (float64, error) {
	s := strings.ReplaceAll(t.get(name), ",", "")
	if s == "" {
		return 0, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("line %d: invalid %s %q: %w", t.line, name, s, err)
	}
	return d.InexactFloat64(), nil
}

// timeLayouts are the accepted timestamp formats. Timestamps without a zone are UTC.
var timeLayouts = []string{time.RFC3339Nano, time.DateTime, "2006-01-02T15:04:05", time.DateOnly}

func (t *table) timestamp(name string) (time.Time, error) {
	s := t.get(name)
	for _, layout := range timeLayouts {
		if tm, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return tm, nil
		}
	}
	return time.Time{}, fmt.Errorf("line %d: invalid %s %q", t.line, name, s)
}
