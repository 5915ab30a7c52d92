package evaluator

import (
	"math"
	"strconv"
)

// Threshold is the comparison bound for a check: either a parsed number (when
// the configured string parses as a finite number) or the original string.
// It is computed fresh on every evaluation from the current configuration
// value and never cached.
type Threshold struct {
	numeric bool
	number  float64
	text    string
}

// ParseThreshold resolves a raw configuration string into a Threshold.
// Strings that parse to NaN or an infinity are kept as strings, which
// enables string equality checks such as "production".
func ParseThreshold(raw string) Threshold {
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return Threshold{text: raw}
	}
	return Threshold{numeric: true, number: n, text: raw}
}

// NumberThreshold builds a numeric threshold directly.
func NumberThreshold(n float64) Threshold {
	return Threshold{numeric: true, number: n, text: strconv.FormatFloat(n, 'f', -1, 64)}
}

// StringThreshold builds a string threshold directly, bypassing numeric
// parsing.
func StringThreshold(s string) Threshold {
	return Threshold{text: s}
}

// IsNumeric reports whether the threshold parsed as a finite number.
func (t Threshold) IsNumeric() bool { return t.numeric }

// Number returns the parsed numeric value. Only meaningful when IsNumeric.
func (t Threshold) Number() float64 { return t.number }

// Text returns the original configuration string.
func (t Threshold) Text() string { return t.text }

// Value returns the resolved threshold as displayed: the parsed number when
// numeric, otherwise the original string.
func (t Threshold) Value() any {
	if t.numeric {
		return t.number
	}
	return t.text
}
