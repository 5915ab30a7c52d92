package checks

import "fmt"

// Registry holds the full set of registered checks in registration order.
// It is assembled once at process start and read-only afterwards.
type Registry struct {
	checks []Check
	index  map[string]int
}

// NewRegistry validates and registers the given checks. Invalid checks and
// duplicate ids are rejected.
func NewRegistry(cc ...Check) (*Registry, error) {
	r := &Registry{index: make(map[string]int, len(cc))}
	for _, c := range cc {
		if res := c.Validate(); !res.Valid {
			return nil, fmt.Errorf("invalid check: %s", res.Message)
		}
		if _, exists := r.index[c.ID]; exists {
			return nil, fmt.Errorf("duplicate check id %q", c.ID)
		}
		r.index[c.ID] = len(r.checks)
		r.checks = append(r.checks, c)
	}
	return r, nil
}

// Checks returns the full registered set, unfiltered, in registration order.
func (r *Registry) Checks() []Check {
	out := make([]Check, len(r.checks))
	copy(out, r.checks)
	return out
}

// Get returns the check with the given id.
func (r *Registry) Get(id string) (Check, bool) {
	i, ok := r.index[id]
	if !ok {
		return Check{}, false
	}
	return r.checks[i], true
}

// Select returns the subset of registered checks to run: all checks when ids
// is empty, otherwise the intersection by id. Registration order is
// preserved; unknown ids are ignored.
func (r *Registry) Select(ids []string) []Check {
	if len(ids) == 0 {
		return r.Checks()
	}
	requested := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		requested[id] = struct{}{}
	}
	var out []Check
	for _, c := range r.checks {
		if _, ok := requested[c.ID]; ok {
			out = append(out, c)
		}
	}
	return out
}
