package ledger

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Number is a loosely typed numeric input. It accepts JSON numbers,
// numeric strings, booleans and null, coercing them the way a form
// submission would be read.
type Number struct {
	// Set is false when the field was absent.
	Set bool
	// Blank marks null, "" and false. Required fields treat these as
	// missing while 0 stays a real value.
	Blank bool
	// Value is NaN when the input cannot be read as a number.
	Value float64
}

// N wraps a plain float.
func N(v float64) Number { return Number{Set: true, Value: v} }

func (n *Number) UnmarshalJSON(b []byte) error {
	n.Set = true
	n.Blank = false
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		n.Blank, n.Value = true, 0
	case bytes.Equal(b, []byte("true")):
		n.Value = 1
	case bytes.Equal(b, []byte("false")):
		n.Blank, n.Value = true, 0
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		n.Value = parseNumeric(s)
		n.Blank = s == ""
	case len(b) > 0 && (b[0] == '{' || b[0] == '['):
		n.Value = math.NaN()
	default:
		v, err := strconv.ParseFloat(string(b), 64)
		if err != nil {
			return err
		}
		n.Value = v
	}
	return nil
}

func (n Number) MarshalJSON() ([]byte, error) {
	if !n.Set || n.Blank {
		return []byte("null"), nil
	}
	if math.IsNaN(n.Value) || math.IsInf(n.Value, 0) {
		return []byte("null"), nil
	}
	return json.Marshal(n.Value)
}

// valid reports a finite non-negative value.
func (n Number) valid() bool {
	return !math.IsNaN(n.Value) && !math.IsInf(n.Value, 0) && n.Value >= 0
}

// parseNumeric reads whitespace-trimmed decimal text. Empty text is 0 and
// anything else unreadable is NaN.
func parseNumeric(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if strings.ContainsAny(s, "_xXpP") || strings.EqualFold(strings.TrimLeft(s, "+-"), "nan") {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
