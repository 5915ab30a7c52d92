// Package runner orchestrates check execution for a single component:
// resolving the component and its owning group, batching the fact fetch,
// and evaluating every selected check against the group's configuration.
package runner

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/greenlightci/greenlight/internal/catalog"
	"github.com/greenlightci/greenlight/internal/checks"
	"github.com/greenlightci/greenlight/internal/diag"
	"github.com/greenlightci/greenlight/internal/evaluator"
	"github.com/greenlightci/greenlight/internal/facts"
)

// FactView is a fact value normalized for display, annotated with the
// check's advisory metadata.
type FactView struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Description string `json:"description"`
	Value       any    `json:"value"`
}

// CheckResult is the outcome of evaluating one check for one component.
type CheckResult struct {
	Check checks.Check `json:"check"`
	// Facts holds the evaluated fact per retriever id.
	Facts  map[string]FactView `json:"facts"`
	Result bool                `json:"result"`
}

// Runner evaluates registered checks against components. All state is
// read-only after construction; a Runner is safe for concurrent use.
type Runner struct {
	registry *checks.Registry
	catalog  catalog.Catalog
	facts    facts.Store
	diag     diag.Sink
}

// New builds a Runner. A nil sink discards diagnostics.
func New(reg *checks.Registry, cat catalog.Catalog, store facts.Store, sink diag.Sink) *Runner {
	if sink == nil {
		sink = diag.Discard{}
	}
	return &Runner{registry: reg, catalog: cat, facts: store, diag: sink}
}

// Checks returns the full registered check set, unfiltered.
func (r *Runner) Checks() []checks.Check {
	return r.registry.Checks()
}

// RunChecks evaluates the selected checks for the component. With no
// checkIDs every registered check runs; otherwise only the intersection by
// id, in registration order. Facts are fetched once for the union of
// retriever ids and shared across all checks in the batch.
func (r *Runner) RunChecks(ctx context.Context, ref catalog.Ref, checkIDs ...string) ([]CheckResult, error) {
	component, err := r.catalog.GetByRef(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("resolving component %s: %w", ref, err)
	}
	if component == nil {
		return nil, &NotFoundError{Ref: ref, What: "component"}
	}

	if component.Spec.Group == "" {
		return nil, &InvalidConfigurationError{Ref: ref, Reason: "no owning group declared in spec"}
	}
	groupRef, err := catalog.ParseGroupRef(component.Spec.Group)
	if err != nil {
		return nil, &InvalidConfigurationError{Ref: ref, Reason: fmt.Sprintf("owning group ref: %v", err)}
	}

	group, err := r.catalog.GetByRef(ctx, groupRef)
	if err != nil {
		return nil, fmt.Errorf("resolving owning group %s: %w", groupRef, err)
	}
	if group == nil {
		return nil, &NotFoundError{Ref: groupRef, What: "group"}
	}

	selected := r.registry.Select(checkIDs)
	if len(selected) == 0 {
		return []CheckResult{}, nil
	}

	batch, err := r.facts.LatestByRetrievers(ctx, retrieverUnion(selected), ref)
	if err != nil {
		return nil, fmt.Errorf("fetching facts for %s: %w", ref, err)
	}

	// Per-check evaluation only reads the shared batch and group snapshot,
	// so the checks fan out without coordination.
	results := make([]CheckResult, len(selected))
	g, _ := errgroup.WithContext(ctx)
	for i, c := range selected {
		g.Go(func() error {
			results[i] = r.evaluateCheck(c, group, batch)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// retrieverUnion collects the distinct retriever ids of the selected checks,
// preserving first-seen order.
func retrieverUnion(selected []checks.Check) []string {
	seen := make(map[string]struct{}, len(selected))
	var ids []string
	for _, c := range selected {
		id := c.FactReference.RetrieverID
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

func (r *Runner) evaluateCheck(c checks.Check, group *catalog.Entity, batch facts.Batch) CheckResult {
	value, _ := batch.Value(c.FactReference.RetrieverID, c.FactReference.FactKey)

	result := CheckResult{Check: c}

	rawThreshold, ok := group.Annotation(c.ThresholdAnnotationKey)
	if !ok {
		// Fail-closed default, not an error: the group simply has no
		// threshold configured for this check.
		r.diag.Warnf("group %s has no threshold annotation %q; check %q evaluates to false",
			group.Ref(), c.ThresholdAnnotationKey, c.ID)
		result.Facts = factView(c, evaluator.Display(value))
		return result
	}

	operator, _ := group.Annotation(c.OperatorAnnotationKey)
	outcome := evaluator.Evaluate(value, evaluator.ParseThreshold(rawThreshold), operator)

	result.Result = outcome.Result
	result.Facts = factView(c, outcome.DisplayValue)
	return result
}

func factView(c checks.Check, display any) map[string]FactView {
	return map[string]FactView{
		c.FactReference.RetrieverID: {
			ID:          c.FactReference.FactKey,
			Type:        string(c.Type),
			Description: c.Description,
			Value:       display,
		},
	}
}
