package simbooks

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/PaesslerAG/jsonpath"
)

// patentValues is the fixed value of one patent per research resource.
var patentValues = map[string]float64{
	"plant research":       4_000,
	"energy research":      6_000,
	"mining research":      6_000,
	"electronics research": 10_000,
	"breeding research":    4_500,
	"chemistry research":   8_000,
	"software":             9_000,
	"automotive research":  12_000,
	"fashion research":     5_000,
	"aerospace research":   20_000,
	"materials research":   7_500,
	"recipes":              3_000,
}

// PatentValue returns the fixed value of one patent yielded by research on
// resource, 0 when the resource is not a known research field.
func PatentValue(resource string) float64 {
	return patentValues[normalize(resource)]
}

// patentYieldPath locates the patent count in a research detail payload.
const patentYieldPath = "$.patents"

// PatentYield extracts the number of patents declared by a research detail
// payload. ok is false when the payload declares none.
func PatentYield(detail json.RawMessage) (n float64, ok bool, err error) {
	if len(strings.TrimSpace(string(detail))) == 0 {
		return 0, false, nil
	}
	var jobj any
	if err := json.Unmarshal(detail, &jobj); err != nil {
		return 0, false, fmt.Errorf("invalid detail payload: %w", err)
	}
	if _, isObject := jobj.(map[string]any); !isObject {
		return 0, false, nil
	}
	jval, err := jsonpath.Get(patentYieldPath, jobj)
	if err != nil {
		// an unknown key is not an error, the payload simply declares no patent.
		return 0, false, nil
	}
	switch v := jval.(type) {
	case float64:
		return v, v != 0, nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false, fmt.Errorf("invalid patent count %q: %w", v, err)
		}
		return f, f != 0, nil
	case nil:
		return 0, false, nil
	default:
		return 0, false, fmt.Errorf("invalid patent count %v", jval)
	}
}

// PatentConversion returns the net value of the patents yielded by research
// movements inside w: yield times the patent value of the researched
// resource, minus the cost of the research row. Rows with an unreadable
// payload are skipped and reported through skip when not nil.
func PatentConversion(movements []Movement, w Window, skip func(Movement, error)) float64 {
	var total float64
	for _, m := range movements {
		if m.Kind != Research || !w.Contains(m.Time) {
			continue
		}
		n, ok, err := PatentYield(m.Detail)
		if err != nil {
			if skip != nil {
				skip(m, err)
			}
			continue
		}
		if !ok {
			continue
		}
		total += n*PatentValue(m.Resource) - m.Cost.Total()
	}
	return total
}

// FreightOut returns the cost of transport movements inside w, signed
// negative as an expense.
func FreightOut(movements []Movement, w Window) float64 {
	var total float64
	for _, m := range movements {
		if m.Kind == Transport && w.Contains(m.Time) {
			total += m.Cost.Total()
		}
	}
	return -total
}
