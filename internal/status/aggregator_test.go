package status

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/greenlightci/greenlight/internal/catalog"
	"github.com/greenlightci/greenlight/internal/checks"
	"github.com/greenlightci/greenlight/internal/facts"
	"github.com/greenlightci/greenlight/internal/runner"
)

// world is an in-memory catalog plus fact store with per-ref error
// injection, shared by the runner and the aggregator under test.
type world struct {
	entities map[string]*catalog.Entity
	facts    map[string]facts.Batch
	errOn    map[string]error
}

var (
	_ catalog.Catalog = (*world)(nil)
	_ facts.Store     = (*world)(nil)
)

func (w *world) GetByRef(_ context.Context, ref catalog.Ref) (*catalog.Entity, error) {
	if err := w.errOn[ref.String()]; err != nil {
		return nil, err
	}
	return w.entities[ref.String()], nil
}

func (w *world) LatestByRetrievers(_ context.Context, _ []string, ref catalog.Ref) (facts.Batch, error) {
	return w.facts[ref.String()], nil
}

func newWorld(groupAnnotations map[string]string) *world {
	annotations := map[string]string{
		"tech-insights.io/open-bugs-threshold":         "10",
		"tech-insights.io/open-bugs-operator":          "lessThanInclusive",
		"tech-insights.io/quality-gate-threshold":      "passed",
		"tech-insights.io/quality-gate-operator":       "equal",
		"tech-insights.io/security-critical-threshold": "0",
		"tech-insights.io/security-critical-operator":  "equal",
		"tech-insights.io/security-high-threshold":     "0",
		"tech-insights.io/security-high-operator":      "equal",
		"tech-insights.io/security-medium-threshold":   "0",
		"tech-insights.io/security-medium-operator":    "equal",
	}
	for k, v := range groupAnnotations {
		annotations[k] = v
	}
	return &world{
		entities: map[string]*catalog.Entity{
			"group:default/platform": {
				Kind: "group", Namespace: "default", Name: "platform",
				Annotations: annotations,
			},
		},
		facts: map[string]facts.Batch{},
		errOn: map[string]error{},
	}
}

// add registers a component in the platform group with the given facts.
// projectKey may be empty to omit the issue-tracker annotation.
func (w *world) add(name, projectKey string, factsByRetriever map[string]map[string]any) catalog.Ref {
	e := &catalog.Entity{
		Kind: "component", Namespace: "default", Name: name,
		Spec:        catalog.EntitySpec{Group: "platform"},
		Annotations: map[string]string{},
	}
	if projectKey != "" {
		e.Annotations["jira/project-key"] = projectKey
	}
	ref := e.Ref()
	w.entities[ref.String()] = e

	batch := facts.Batch{}
	for retriever, kv := range factsByRetriever {
		batch[retriever] = facts.RetrieverFacts{Facts: kv}
	}
	w.facts[ref.String()] = batch
	return ref
}

func bugFacts(open int) map[string]map[string]any {
	return map[string]map[string]any{"jira": {"openIssues": open}}
}

func gateFacts(status string) map[string]map[string]any {
	return map[string]map[string]any{"sonar": {"gate": status}}
}

func securityFacts(critical, high, medium int) map[string]map[string]any {
	return map[string]map[string]any{"snyk": {
		"critical": critical, "high": high, "medium": medium,
	}}
}

func newAggregator(t *testing.T, w *world) *Aggregator {
	t.Helper()
	reg, err := checks.NewRegistry(
		checks.Check{
			ID: "open-bugs", Type: checks.TypeNumber,
			FactReference:          checks.FactReference{RetrieverID: "jira", FactKey: "openIssues"},
			ThresholdAnnotationKey: "tech-insights.io/open-bugs-threshold",
			OperatorAnnotationKey:  "tech-insights.io/open-bugs-operator",
		},
		checks.Check{
			ID: "quality-gate", Type: checks.TypeBoolean,
			FactReference:          checks.FactReference{RetrieverID: "sonar", FactKey: "gate"},
			ThresholdAnnotationKey: "tech-insights.io/quality-gate-threshold",
			OperatorAnnotationKey:  "tech-insights.io/quality-gate-operator",
		},
		checks.Check{
			ID: "security-critical", Type: checks.TypeNumber,
			FactReference:          checks.FactReference{RetrieverID: "snyk", FactKey: "critical"},
			ThresholdAnnotationKey: "tech-insights.io/security-critical-threshold",
			OperatorAnnotationKey:  "tech-insights.io/security-critical-operator",
		},
		checks.Check{
			ID: "security-high", Type: checks.TypeNumber,
			FactReference:          checks.FactReference{RetrieverID: "snyk", FactKey: "high"},
			ThresholdAnnotationKey: "tech-insights.io/security-high-threshold",
			OperatorAnnotationKey:  "tech-insights.io/security-high-operator",
		},
		checks.Check{
			ID: "security-medium", Type: checks.TypeNumber,
			FactReference:          checks.FactReference{RetrieverID: "snyk", FactKey: "medium"},
			ThresholdAnnotationKey: "tech-insights.io/security-medium-threshold",
			OperatorAnnotationKey:  "tech-insights.io/security-medium-operator",
		},
	)
	require.NoError(t, err)

	return &Aggregator{
		Catalog: w,
		Runner:  runner.New(reg, w, w, nil),
	}
}

func TestAggregate_EmptyCohort(t *testing.T) {
	w := newWorld(nil)
	agg := newAggregator(t, w)

	d := agg.BugStatus(context.Background(), nil)
	require.Equal(t, ColorGray, d.Color)
	require.Equal(t, "no components in cohort", d.Reason)
}

func TestBugStatus(t *testing.T) {
	t.Run("dedupes members by project key", func(t *testing.T) {
		w := newWorld(nil)
		refs := []catalog.Ref{
			w.add("site-a", "WEB", bugFacts(3)),
			// Same project as site-a: counted once, first seen wins.
			w.add("site-b", "WEB", bugFacts(3)),
			w.add("billing", "BILL", bugFacts(40)),
		}
		agg := newAggregator(t, w)

		d := agg.BugStatus(context.Background(), refs)
		// Two distinct projects, one failing: 0.50 >= 0.33.
		require.Equal(t, ColorRed, d.Color)
		require.Contains(t, d.Reason, "1 of 2")
	})

	t.Run("members without the project annotation are excluded", func(t *testing.T) {
		w := newWorld(nil)
		refs := []catalog.Ref{
			w.add("site", "WEB", bugFacts(3)),
			w.add("untracked", "", bugFacts(99)),
		}
		agg := newAggregator(t, w)

		d := agg.BugStatus(context.Background(), refs)
		require.Equal(t, ColorGreen, d.Color)
		require.Contains(t, d.Reason, "0 of 1")
	})

	t.Run("gray when no member carries the annotation", func(t *testing.T) {
		w := newWorld(nil)
		refs := []catalog.Ref{w.add("untracked", "", bugFacts(1))}
		agg := newAggregator(t, w)

		d := agg.BugStatus(context.Background(), refs)
		require.Equal(t, ColorGray, d.Color)
		require.Contains(t, d.Reason, "jira/project-key")
	})

	t.Run("erroring members are excluded from the denominator", func(t *testing.T) {
		w := newWorld(nil)
		refs := []catalog.Ref{
			w.add("site-a", "WEB", bugFacts(3)),
			w.add("site-b", "BILL", bugFacts(3)),
			w.add("site-c", "SEARCH", bugFacts(3)),
		}
		w.errOn["component:default/site-c"] = errors.New("directory down")
		agg := newAggregator(t, w)

		d := agg.BugStatus(context.Background(), refs)
		require.Equal(t, ColorGreen, d.Color)
		require.Contains(t, d.Reason, "0 of 2")
	})

	t.Run("gray when every member errors", func(t *testing.T) {
		w := newWorld(nil)
		refs := []catalog.Ref{w.add("site", "WEB", bugFacts(3))}
		w.errOn["component:default/site"] = errors.New("directory down")
		agg := newAggregator(t, w)

		d := agg.BugStatus(context.Background(), refs)
		require.Equal(t, ColorGray, d.Color)
		require.Contains(t, d.Reason, "directory down")
	})

	t.Run("group annotation overrides the red ratio", func(t *testing.T) {
		w := newWorld(map[string]string{"tech-insights.io/open-bugs-red-ratio": "0.6"})
		refs := []catalog.Ref{
			w.add("site-a", "WEB", bugFacts(40)),
			w.add("site-b", "BILL", bugFacts(3)),
		}
		agg := newAggregator(t, w)

		d := agg.BugStatus(context.Background(), refs)
		// 0.50 < 0.60 with the override; default 0.33 would be red.
		require.Equal(t, ColorGreen, d.Color)
	})
}

func TestQualityGateStatus(t *testing.T) {
	t.Run("erroring members count as failures", func(t *testing.T) {
		w := newWorld(nil)
		refs := []catalog.Ref{
			w.add("site-a", "", gateFacts("passed")),
			w.add("site-b", "", gateFacts("passed")),
			w.add("site-c", "", gateFacts("passed")),
			w.add("site-d", "", gateFacts("failed")),
		}
		w.errOn["component:default/site-c"] = errors.New("directory down")
		agg := newAggregator(t, w)

		// Two of four failing once the error is counted: 50% is red.
		d := agg.QualityGateStatus(context.Background(), refs)
		require.Equal(t, ColorRed, d.Color)
	})

	t.Run("yellow between thresholds", func(t *testing.T) {
		w := newWorld(nil)
		refs := []catalog.Ref{
			w.add("site-a", "", gateFacts("passed")),
			w.add("site-b", "", gateFacts("passed")),
			w.add("site-c", "", gateFacts("passed")),
			w.add("site-d", "", gateFacts("failed")),
		}
		agg := newAggregator(t, w)

		d := agg.QualityGateStatus(context.Background(), refs)
		require.Equal(t, ColorYellow, d.Color)
	})

	t.Run("green when all gates pass", func(t *testing.T) {
		w := newWorld(nil)
		refs := []catalog.Ref{
			w.add("site-a", "", gateFacts("passed")),
			w.add("site-b", "", gateFacts("passed")),
		}
		agg := newAggregator(t, w)

		d := agg.QualityGateStatus(context.Background(), refs)
		require.Equal(t, ColorGreen, d.Color)
	})

	t.Run("gray when every member errors despite counting as failures", func(t *testing.T) {
		w := newWorld(nil)
		refs := []catalog.Ref{w.add("site", "", gateFacts("passed"))}
		w.errOn["component:default/site"] = errors.New("directory down")
		agg := newAggregator(t, w)

		d := agg.QualityGateStatus(context.Background(), refs)
		require.Equal(t, ColorGray, d.Color)
	})
}

func TestSecurityStatus(t *testing.T) {
	t.Run("green when every tier is clean", func(t *testing.T) {
		w := newWorld(nil)
		refs := []catalog.Ref{
			w.add("site-a", "", securityFacts(0, 0, 0)),
			w.add("site-b", "", securityFacts(0, 0, 0)),
		}
		agg := newAggregator(t, w)

		d := agg.SecurityStatus(context.Background(), refs)
		require.Equal(t, ColorGreen, d.Color)
	})

	t.Run("one critical finding forces red in a large cohort", func(t *testing.T) {
		w := newWorld(nil)
		refs := []catalog.Ref{w.add("site-a", "", securityFacts(1, 0, 0))}
		for _, name := range []string{"b", "c", "d", "e", "f", "g", "h", "i", "j"} {
			refs = append(refs, w.add("site-"+name, "", securityFacts(0, 0, 0)))
		}
		agg := newAggregator(t, w)

		d := agg.SecurityStatus(context.Background(), refs)
		require.Equal(t, ColorRed, d.Color)
		require.Contains(t, d.Reason, "security-critical")
	})

	t.Run("few medium findings are yellow", func(t *testing.T) {
		w := newWorld(nil)
		refs := []catalog.Ref{w.add("site-a", "", securityFacts(0, 0, 2))}
		for _, name := range []string{"b", "c", "d", "e", "f", "g", "h", "i", "j"} {
			refs = append(refs, w.add("site-"+name, "", securityFacts(0, 0, 0)))
		}
		agg := newAggregator(t, w)

		d := agg.SecurityStatus(context.Background(), refs)
		require.Equal(t, ColorYellow, d.Color)
	})

	t.Run("widespread high findings are red", func(t *testing.T) {
		w := newWorld(nil)
		var refs []catalog.Ref
		for _, name := range []string{"a", "b", "c", "d"} {
			refs = append(refs, w.add("site-"+name, "", securityFacts(0, 3, 0)))
		}
		agg := newAggregator(t, w)

		// 4 of 4 members failing the high tier exceeds the 33% limit.
		d := agg.SecurityStatus(context.Background(), refs)
		require.Equal(t, ColorRed, d.Color)
	})

	t.Run("erroring members are excluded", func(t *testing.T) {
		w := newWorld(nil)
		refs := []catalog.Ref{
			w.add("site-a", "", securityFacts(0, 0, 0)),
			w.add("site-b", "", securityFacts(0, 0, 0)),
		}
		w.errOn["component:default/site-b"] = errors.New("scanner down")
		agg := newAggregator(t, w)

		d := agg.SecurityStatus(context.Background(), refs)
		require.Equal(t, ColorGreen, d.Color)
	})
}

func TestAggregate_UnknownPolicy(t *testing.T) {
	w := newWorld(nil)
	refs := []catalog.Ref{w.add("site", "", bugFacts(0))}
	agg := newAggregator(t, w)

	d := agg.Aggregate(context.Background(), Domain{Name: "odd", Policy: "mystery", CheckIDs: []string{"open-bugs"}}, refs)
	require.Equal(t, ColorGray, d.Color)
	require.Contains(t, d.Reason, "mystery")
}
