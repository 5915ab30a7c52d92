package status

import (
	"context"
	"fmt"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/greenlightci/greenlight/internal/catalog"
	"github.com/greenlightci/greenlight/internal/diag"
	"github.com/greenlightci/greenlight/internal/runner"
)

// defaultCohortLimit bounds concurrent member lookups when no limit is set.
const defaultCohortLimit = 8

// Aggregator reduces a cohort of component refs to a single Decision for a
// quality-signal domain. Collaborator failures never escape as errors: every
// path that cannot produce a verdict resolves to gray with a reason.
type Aggregator struct {
	Catalog catalog.Catalog
	Runner  *runner.Runner
	Diag    diag.Sink
	// Limit caps concurrent member lookups. Zero means the default.
	Limit int
}

// BugStatus aggregates the cohort with the bug-tracker parameterization.
func (a *Aggregator) BugStatus(ctx context.Context, refs []catalog.Ref) Decision {
	return a.Aggregate(ctx, BugTracker, refs)
}

// QualityGateStatus aggregates the cohort with the quality-gate
// parameterization.
func (a *Aggregator) QualityGateStatus(ctx context.Context, refs []catalog.Ref) Decision {
	return a.Aggregate(ctx, QualityGate, refs)
}

// SecurityStatus aggregates the cohort with the security-scanner
// parameterization.
func (a *Aggregator) SecurityStatus(ctx context.Context, refs []catalog.Ref) Decision {
	return a.Aggregate(ctx, Security, refs)
}

// member is one component's settled outcome within a cohort evaluation.
type member struct {
	ref     catalog.Ref
	entity  *catalog.Entity
	results []runner.CheckResult
	err     error
}

// failed reports whether any evaluated check did not pass.
func (m *member) failed() bool {
	for _, r := range m.results {
		if !r.Result {
			return true
		}
	}
	return false
}

// failedCheck reports whether the named check did not pass. A check that was
// not evaluated for this member does not count as failing.
func (m *member) failedCheck(id string) bool {
	for _, r := range m.results {
		if r.Check.ID == id {
			return !r.Result
		}
	}
	return false
}

// Aggregate runs the domain's checks for every cohort member and reduces the
// outcomes with the domain's policy.
func (a *Aggregator) Aggregate(ctx context.Context, d Domain, refs []catalog.Ref) Decision {
	if len(refs) == 0 {
		return Gray("no components in cohort")
	}

	members := a.collect(ctx, d, refs)
	group := a.owningGroup(ctx, members)

	switch d.Policy {
	case PolicySimpleRatio:
		return a.simpleRatio(d, members, group)
	case PolicyDualRatio:
		return a.dualRatio(d, members, group)
	case PolicySeverityCount:
		return a.severityCount(d, members, group)
	default:
		return Gray("domain %q has unknown policy %q", d.Name, d.Policy)
	}
}

// collect settles every member lookup before any inspection happens: one
// member's failure must not prevent the others from being counted.
func (a *Aggregator) collect(ctx context.Context, d Domain, refs []catalog.Ref) []member {
	members := make([]member, len(refs))

	limit := a.Limit
	if limit <= 0 {
		limit = defaultCohortLimit
	}
	var g errgroup.Group
	g.SetLimit(limit)

	for i, ref := range refs {
		g.Go(func() error {
			m := member{ref: ref}
			m.entity, m.err = a.Catalog.GetByRef(ctx, ref)
			if m.err == nil && m.entity == nil {
				m.err = &runner.NotFoundError{Ref: ref, What: "component"}
			}
			if m.err == nil {
				m.results, m.err = a.Runner.RunChecks(ctx, ref, d.CheckIDs...)
				if m.err == nil && len(m.results) == 0 {
					m.err = fmt.Errorf("no registered checks for domain %q", d.Name)
				}
			}
			if m.err != nil && a.Diag != nil {
				a.Diag.Warnf("cohort member %s: %v", ref, m.err)
			}
			members[i] = m
			return nil
		})
	}
	// Closures always return nil; Wait only joins the fan-out.
	_ = g.Wait()
	return members
}

// owningGroup resolves the cohort's shared configuration carrier from the
// first member that declares one. Ratio thresholds fall back to defaults
// when no group resolves.
func (a *Aggregator) owningGroup(ctx context.Context, members []member) *catalog.Entity {
	for i := range members {
		m := &members[i]
		if m.err != nil || m.entity == nil || m.entity.Spec.Group == "" {
			continue
		}
		gref, err := catalog.ParseGroupRef(m.entity.Spec.Group)
		if err != nil {
			continue
		}
		group, err := a.Catalog.GetByRef(ctx, gref)
		if err == nil && group != nil {
			return group
		}
	}
	return nil
}

func (a *Aggregator) simpleRatio(d Domain, members []member, group *catalog.Entity) Decision {
	seen := make(map[string]struct{})
	var failures, total, missingKey int
	var firstErr error

	for i := range members {
		m := &members[i]
		if m.err != nil {
			if firstErr == nil {
				firstErr = m.err
			}
			if d.ErrorRule == ErrorsAsFailures {
				total++
				failures++
			}
			continue
		}
		// Components mapping to the same external project count once;
		// components lacking the sub-grouping key are excluded entirely.
		key, ok := m.entity.Annotation(d.DedupeAnnotation)
		if !ok || key == "" {
			missingKey++
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		total++
		if m.failed() {
			failures++
		}
	}

	if total == 0 {
		if firstErr != nil {
			return Gray("no cohort members could be evaluated: %v", firstErr)
		}
		if missingKey > 0 {
			return Gray("no cohort members carry the %q annotation", d.DedupeAnnotation)
		}
		return Gray("no data for %s status", d.Name)
	}

	red := annotationFloat(group, d.RedRatioAnnotation, DefaultRedRatio)
	return decideSimpleRatio(failures, total, red)
}

func (a *Aggregator) dualRatio(d Domain, members []member, group *catalog.Entity) Decision {
	var failures, total, errored int
	var firstErr error

	for i := range members {
		m := &members[i]
		if m.err != nil {
			errored++
			if firstErr == nil {
				firstErr = m.err
			}
			if d.ErrorRule == ErrorsAsFailures {
				total++
				failures++
			}
			continue
		}
		total++
		if m.failed() {
			failures++
		}
	}

	// A cohort with no evaluable members yields no verdict even when the
	// domain counts individual lookup errors as failures.
	if errored == len(members) {
		return Gray("no cohort members could be evaluated: %v", firstErr)
	}
	if total == 0 {
		return Gray("no data for %s status", d.Name)
	}

	red := annotationFloat(group, d.RedPercentAnnotation, DefaultRedPercent)
	yellow := annotationFloat(group, d.YellowPercentAnnotation, DefaultYellowPercent)
	return decideDualRatio(failures, total, red, yellow)
}

func (a *Aggregator) severityCount(d Domain, members []member, group *catalog.Entity) Decision {
	counts := make(map[string]int, len(d.CheckIDs))
	var total int
	var firstErr error

	for i := range members {
		m := &members[i]
		if m.err != nil {
			if firstErr == nil {
				firstErr = m.err
			}
			if d.ErrorRule == ErrorsAsFailures {
				total++
				for _, id := range d.CheckIDs {
					counts[id]++
				}
			}
			continue
		}
		total++
		for _, id := range d.CheckIDs {
			if m.failedCheck(id) {
				counts[id]++
			}
		}
	}

	if total == 0 {
		if firstErr != nil {
			return Gray("no cohort members could be evaluated: %v", firstErr)
		}
		return Gray("no data for %s status", d.Name)
	}

	tiers := make([]TierCount, 0, len(d.CheckIDs))
	for _, id := range d.CheckIDs {
		tiers = append(tiers, TierCount{
			Tier:     id,
			Critical: id == d.CriticalCheckID,
			Failures: counts[id],
		})
	}

	percent := annotationFloat(group, d.SeverityPercentAnnotation, DefaultSeverityPercent)
	if percent <= 0 || percent > 100 {
		percent = DefaultSeverityPercent
	}
	return decideSeverityCount(tiers, total, percent)
}

// annotationFloat reads a float threshold from the group's configuration,
// falling back to def when the group, the key, or the parse is missing.
func annotationFloat(group *catalog.Entity, key string, def float64) float64 {
	if group == nil || key == "" {
		return def
	}
	raw, ok := group.Annotation(key)
	if !ok {
		return def
	}
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return def
	}
	return n
}
