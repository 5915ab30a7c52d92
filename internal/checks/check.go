// Package checks provides the declarative model of a threshold check and
// its static validation rules.
package checks

import "fmt"

// Type is an advisory hint describing the expected fact shape. It is not
// enforced at evaluation time.
type Type string

const (
	TypeNumber     Type = "number"
	TypePercentage Type = "percentage"
	TypeBoolean    Type = "boolean"
)

// FactReference identifies which upstream integration produced a value and
// which field of its output to read.
type FactReference struct {
	// RetrieverID names the integration that produced the fact snapshot.
	RetrieverID string
	// FactKey names the field of the retriever's output to read.
	FactKey string
}

// Check is an immutable configuration record describing one threshold
// comparison rule. The threshold value and comparison operator are not part
// of the check itself: they are resolved per owning group from the
// configuration entries stored under the two annotation keys.
type Check struct {
	// ID uniquely identifies the check.
	ID string
	// Name and Description are display strings.
	Name        string
	Description string
	// Type hints at the expected fact shape.
	Type Type
	// FactReference locates the fact value to evaluate.
	FactReference FactReference
	// ThresholdAnnotationKey is the group configuration key holding the
	// threshold value as a string.
	ThresholdAnnotationKey string
	// OperatorAnnotationKey is the group configuration key holding the
	// comparison operator name. Several checks may share one operator key.
	OperatorAnnotationKey string
}

// ValidationResult reports whether a check satisfies the static invariants.
type ValidationResult struct {
	Valid   bool
	Message string
}

// Validate checks the static invariants: the fact reference has both elements
// non-empty and both annotation keys are non-empty. A check failing these is
// invalid and must be rejected before registration.
func (c Check) Validate() ValidationResult {
	if c.ID == "" {
		return ValidationResult{Message: "check id must not be empty"}
	}
	if c.FactReference.RetrieverID == "" || c.FactReference.FactKey == "" {
		return ValidationResult{
			Message: fmt.Sprintf("check %q: factReference must have a non-empty retriever id and fact key", c.ID),
		}
	}
	if c.ThresholdAnnotationKey == "" {
		return ValidationResult{
			Message: fmt.Sprintf("check %q: thresholdAnnotationKey must not be empty", c.ID),
		}
	}
	if c.OperatorAnnotationKey == "" {
		return ValidationResult{
			Message: fmt.Sprintf("check %q: operatorAnnotationKey must not be empty", c.ID),
		}
	}
	return ValidationResult{Valid: true}
}
