package runner

import (
	"fmt"

	"github.com/greenlightci/greenlight/internal/catalog"
)

// NotFoundError indicates that a component or owning-group reference did not
// resolve in the directory service.
type NotFoundError struct {
	Ref  catalog.Ref
	What string // "component" or "group"
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.What, e.Ref)
}

// InvalidConfigurationError indicates that a component cannot be checked as
// configured, e.g. it declares no owning group.
type InvalidConfigurationError struct {
	Ref    catalog.Ref
	Reason string
}

func (e *InvalidConfigurationError) Error() string {
	return fmt.Sprintf("component %s: %s", e.Ref, e.Reason)
}
