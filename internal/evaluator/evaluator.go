// Package evaluator compares a raw fact value against a resolved threshold
// under well-defined type-coercion and missing-data rules. Comparisons are
// type-strict and fail closed: anything not explicitly comparable evaluates
// to false.
package evaluator

import (
	"fmt"
	"strings"
)

// Operator names recognized by the evaluator. Any other name, including the
// empty string, evaluates to false.
const (
	OpGreaterThan          = "greaterThan"
	OpGreaterThanInclusive = "greaterThanInclusive"
	OpLessThan             = "lessThan"
	OpLessThanInclusive    = "lessThanInclusive"
	OpEqual                = "equal"
	OpNotEqual             = "notEqual"
)

// numericOperators maps operator names to pure predicates over a numeric
// fact value and a numeric threshold.
var numericOperators = map[string]func(value, threshold float64) bool{
	OpGreaterThan:          func(v, t float64) bool { return v > t },
	OpGreaterThanInclusive: func(v, t float64) bool { return v >= t },
	OpLessThan:             func(v, t float64) bool { return v < t },
	OpLessThanInclusive:    func(v, t float64) bool { return v <= t },
	OpEqual:                func(v, t float64) bool { return v == t },
	OpNotEqual:             func(v, t float64) bool { return v != t },
}

// stringOperators maps the equality-family operator names to predicates over
// a string fact value and a string threshold. Ordering operators are not
// defined for strings.
var stringOperators = map[string]func(value, threshold string) bool{
	OpEqual:    func(v, t string) bool { return v == t },
	OpNotEqual: func(v, t string) bool { return v != t },
}

// Operators returns the recognized operator names.
func Operators() []string {
	return []string{
		OpGreaterThan, OpGreaterThanInclusive,
		OpLessThan, OpLessThanInclusive,
		OpEqual, OpNotEqual,
	}
}

// Outcome is the result of one evaluation: the boolean check result and the
// fact value normalized for display.
type Outcome struct {
	Result       bool
	DisplayValue any
}

// Evaluate compares raw against threshold using the named operator.
//
// Coercion rules:
//   - numeric raw + numeric threshold: full operator table.
//   - string raw: equality family only. When the threshold parsed as a
//     number the types differ, so equal is always false and notEqual always
//     true.
//   - slices: never comparable, result is always false.
//   - nil (missing fact) and booleans: result is always false.
//   - anything else falls through to false.
func Evaluate(raw any, threshold Threshold, operator string) Outcome {
	display := Display(raw)

	switch v := raw.(type) {
	case nil, bool:
		return Outcome{Result: false, DisplayValue: display}
	case string:
		if threshold.IsNumeric() {
			// Type-strict comparison across types: only notEqual holds.
			return Outcome{Result: operator == OpNotEqual, DisplayValue: display}
		}
		pred, ok := stringOperators[operator]
		if !ok {
			return Outcome{Result: false, DisplayValue: display}
		}
		return Outcome{Result: pred(v, threshold.Text()), DisplayValue: display}
	}

	if isSlice(raw) {
		return Outcome{Result: false, DisplayValue: display}
	}

	if n, ok := toFloat64(raw); ok && threshold.IsNumeric() {
		pred, ok := numericOperators[operator]
		if !ok {
			return Outcome{Result: false, DisplayValue: display}
		}
		return Outcome{Result: pred(n, threshold.Number()), DisplayValue: display}
	}

	return Outcome{Result: false, DisplayValue: display}
}

// Display normalizes a raw fact value for presentation: slices become the
// comma-joined string of their elements (an empty slice stays as-is),
// numbers, strings and booleans pass through unchanged, and everything else
// falls back to its default string representation.
func Display(raw any) any {
	switch v := raw.(type) {
	case nil:
		return nil
	case bool, string:
		return v
	case []any:
		if len(v) == 0 {
			return v
		}
		parts := make([]string, len(v))
		for i, e := range v {
			parts[i] = fmt.Sprint(e)
		}
		return strings.Join(parts, ",")
	case []string:
		if len(v) == 0 {
			return v
		}
		return strings.Join(v, ",")
	}
	if n, ok := toFloat64(raw); ok {
		return n
	}
	return fmt.Sprint(raw)
}

func isSlice(v any) bool {
	switch v.(type) {
	case []any, []string:
		return true
	}
	return false
}

// toFloat64 widens the numeric types produced by YAML and JSON decoding.
func toFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}
