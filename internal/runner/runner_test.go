package runner

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/greenlightci/greenlight/internal/catalog"
	"github.com/greenlightci/greenlight/internal/checks"
	"github.com/greenlightci/greenlight/internal/diag"
	"github.com/greenlightci/greenlight/internal/facts"
)

// fakeCatalog serves entities from a map keyed by stringified ref.
type fakeCatalog struct {
	entities map[string]*catalog.Entity
	err      error
}

var _ catalog.Catalog = (*fakeCatalog)(nil)

func (f *fakeCatalog) GetByRef(_ context.Context, ref catalog.Ref) (*catalog.Entity, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.entities[ref.String()], nil
}

// fakeStore returns a fixed batch and records how it was called.
type fakeStore struct {
	batch facts.Batch
	err   error

	calls         int
	gotRetrievers [][]string
}

var _ facts.Store = (*fakeStore)(nil)

func (f *fakeStore) LatestByRetrievers(_ context.Context, retrieverIDs []string, _ catalog.Ref) (facts.Batch, error) {
	f.calls++
	f.gotRetrievers = append(f.gotRetrievers, retrieverIDs)
	if f.err != nil {
		return nil, f.err
	}
	return f.batch, nil
}

func testCheck(id, retriever, factKey string) checks.Check {
	return checks.Check{
		ID:   id,
		Type: checks.TypeNumber,
		FactReference: checks.FactReference{
			RetrieverID: retriever,
			FactKey:     factKey,
		},
		ThresholdAnnotationKey: "tech-insights.io/" + id + "-threshold",
		OperatorAnnotationKey:  "tech-insights.io/" + id + "-operator",
	}
}

func testEntities(groupAnnotations map[string]string) map[string]*catalog.Entity {
	return map[string]*catalog.Entity{
		"component:default/website": {
			Kind:      "component",
			Namespace: "default",
			Name:      "website",
			Spec:      catalog.EntitySpec{Group: "platform"},
		},
		"group:default/platform": {
			Kind:        "group",
			Namespace:   "default",
			Name:        "platform",
			Annotations: groupAnnotations,
		},
	}
}

func mustRef(t *testing.T, s string) catalog.Ref {
	t.Helper()
	ref, err := catalog.ParseRef(s)
	require.NoError(t, err)
	return ref
}

func TestRunChecks(t *testing.T) {
	reg, err := checks.NewRegistry(
		testCheck("open-bugs", "jira", "openIssues"),
		testCheck("stale-bugs", "jira", "staleIssues"),
		testCheck("quality-gate", "sonar", "gatePassed"),
	)
	require.NoError(t, err)

	annotations := map[string]string{
		"tech-insights.io/open-bugs-threshold":    "10",
		"tech-insights.io/open-bugs-operator":     "lessThanInclusive",
		"tech-insights.io/stale-bugs-threshold":   "0",
		"tech-insights.io/stale-bugs-operator":    "equal",
		"tech-insights.io/quality-gate-threshold": "passed",
		"tech-insights.io/quality-gate-operator":  "equal",
	}

	newStore := func() *fakeStore {
		return &fakeStore{batch: facts.Batch{
			"jira": {Facts: map[string]any{
				"openIssues":  7,
				"staleIssues": 2,
			}},
			"sonar": {Facts: map[string]any{
				"gatePassed": "passed",
			}},
		}}
	}

	ref := mustRef(t, "website")

	t.Run("evaluates all registered checks", func(t *testing.T) {
		store := newStore()
		r := New(reg, &fakeCatalog{entities: testEntities(annotations)}, store, nil)

		results, err := r.RunChecks(context.Background(), ref)
		require.NoError(t, err)
		require.Len(t, results, 3)

		require.Equal(t, "open-bugs", results[0].Check.ID)
		require.True(t, results[0].Result)
		require.Equal(t, 7.0, results[0].Facts["jira"].Value)

		require.Equal(t, "stale-bugs", results[1].Check.ID)
		require.False(t, results[1].Result)

		require.Equal(t, "quality-gate", results[2].Check.ID)
		require.True(t, results[2].Result)
	})

	t.Run("fetches facts once for the retriever union", func(t *testing.T) {
		store := newStore()
		r := New(reg, &fakeCatalog{entities: testEntities(annotations)}, store, nil)

		_, err := r.RunChecks(context.Background(), ref)
		require.NoError(t, err)
		require.Equal(t, 1, store.calls)
		require.Equal(t, [][]string{{"jira", "sonar"}}, store.gotRetrievers)
	})

	t.Run("subset preserves registration order", func(t *testing.T) {
		store := newStore()
		r := New(reg, &fakeCatalog{entities: testEntities(annotations)}, store, nil)

		results, err := r.RunChecks(context.Background(), ref, "quality-gate", "open-bugs")
		require.NoError(t, err)
		require.Len(t, results, 2)
		require.Equal(t, "open-bugs", results[0].Check.ID)
		require.Equal(t, "quality-gate", results[1].Check.ID)
	})

	t.Run("unknown selection yields empty results without fetching", func(t *testing.T) {
		store := newStore()
		r := New(reg, &fakeCatalog{entities: testEntities(annotations)}, store, nil)

		results, err := r.RunChecks(context.Background(), ref, "nope")
		require.NoError(t, err)
		require.Empty(t, results)
		require.Zero(t, store.calls)
	})

	t.Run("missing fact evaluates to false", func(t *testing.T) {
		store := &fakeStore{batch: facts.Batch{}}
		r := New(reg, &fakeCatalog{entities: testEntities(annotations)}, store, nil)

		results, err := r.RunChecks(context.Background(), ref, "open-bugs")
		require.NoError(t, err)
		require.Len(t, results, 1)
		require.False(t, results[0].Result)
		require.Nil(t, results[0].Facts["jira"].Value)
	})
}

func TestRunChecks_Errors(t *testing.T) {
	reg, err := checks.NewRegistry(testCheck("open-bugs", "jira", "openIssues"))
	require.NoError(t, err)

	t.Run("component not found", func(t *testing.T) {
		r := New(reg, &fakeCatalog{entities: map[string]*catalog.Entity{}}, &fakeStore{}, nil)

		_, err := r.RunChecks(context.Background(), mustRef(t, "ghost"))
		var nf *NotFoundError
		require.ErrorAs(t, err, &nf)
		require.Equal(t, "component", nf.What)
		require.Equal(t, "ghost", nf.Ref.Name)
	})

	t.Run("component without owning group", func(t *testing.T) {
		entities := map[string]*catalog.Entity{
			"component:default/orphan": {Kind: "component", Namespace: "default", Name: "orphan"},
		}
		r := New(reg, &fakeCatalog{entities: entities}, &fakeStore{}, nil)

		_, err := r.RunChecks(context.Background(), mustRef(t, "orphan"))
		var ic *InvalidConfigurationError
		require.ErrorAs(t, err, &ic)
	})

	t.Run("owning group not found", func(t *testing.T) {
		entities := map[string]*catalog.Entity{
			"component:default/website": {
				Kind: "component", Namespace: "default", Name: "website",
				Spec: catalog.EntitySpec{Group: "nowhere"},
			},
		}
		r := New(reg, &fakeCatalog{entities: entities}, &fakeStore{}, nil)

		_, err := r.RunChecks(context.Background(), mustRef(t, "website"))
		var nf *NotFoundError
		require.ErrorAs(t, err, &nf)
		require.Equal(t, "group", nf.What)
	})

	t.Run("catalog failure is wrapped", func(t *testing.T) {
		boom := errors.New("directory down")
		r := New(reg, &fakeCatalog{err: boom}, &fakeStore{}, nil)

		_, err := r.RunChecks(context.Background(), mustRef(t, "website"))
		require.ErrorIs(t, err, boom)
	})

	t.Run("fact store failure is wrapped", func(t *testing.T) {
		boom := errors.New("facts down")
		r := New(reg, &fakeCatalog{entities: testEntities(nil)}, &fakeStore{err: boom}, nil)

		_, err := r.RunChecks(context.Background(), mustRef(t, "website"))
		require.ErrorIs(t, err, boom)
	})
}

func TestRunChecks_MissingAnnotations(t *testing.T) {
	reg, err := checks.NewRegistry(testCheck("open-bugs", "jira", "openIssues"))
	require.NoError(t, err)

	store := &fakeStore{batch: facts.Batch{
		"jira": {Facts: map[string]any{"openIssues": 7}},
	}}

	t.Run("missing threshold warns once and fails closed", func(t *testing.T) {
		capture := &diag.Capture{}
		r := New(reg, &fakeCatalog{entities: testEntities(map[string]string{})}, store, capture)

		results, err := r.RunChecks(context.Background(), mustRef(t, "website"))
		require.NoError(t, err)
		require.Len(t, results, 1)
		require.False(t, results[0].Result)
		require.Equal(t, 7.0, results[0].Facts["jira"].Value)

		warnings := capture.Warnings()
		require.Len(t, warnings, 1)
		require.Contains(t, warnings[0], "tech-insights.io/open-bugs-threshold")
	})

	t.Run("missing operator fails closed without warning", func(t *testing.T) {
		capture := &diag.Capture{}
		annotations := map[string]string{"tech-insights.io/open-bugs-threshold": "10"}
		r := New(reg, &fakeCatalog{entities: testEntities(annotations)}, store, capture)

		results, err := r.RunChecks(context.Background(), mustRef(t, "website"))
		require.NoError(t, err)
		require.False(t, results[0].Result)
		require.Empty(t, capture.Warnings())
	})
}
