package catalog

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseRef(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    Ref
		wantErr bool
	}{
		{"full ref", "component:default/website", Ref{"component", "default", "website"}, false},
		{"name only", "website", Ref{"component", "default", "website"}, false},
		{"namespace and name", "payments/website", Ref{"component", "payments", "website"}, false},
		{"kind and name", "group:platform", Ref{"group", "default", "platform"}, false},
		{"kind is lowercased", "Component:Default/website", Ref{"component", "default", "website"}, false},
		{"empty", "", Ref{}, true},
		{"empty kind", ":default/website", Ref{}, true},
		{"empty namespace", "component:/website", Ref{}, true},
		{"empty name", "component:default/", Ref{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseRef(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestParseGroupRef(t *testing.T) {
	t.Run("bare name defaults to group kind", func(t *testing.T) {
		ref, err := ParseGroupRef("platform")
		require.NoError(t, err)
		require.Equal(t, Ref{"group", "default", "platform"}, ref)
	})

	t.Run("explicit kind is kept", func(t *testing.T) {
		ref, err := ParseGroupRef("team:infra/platform")
		require.NoError(t, err)
		require.Equal(t, Ref{"team", "infra", "platform"}, ref)
	})
}

func TestRefString(t *testing.T) {
	ref, err := ParseRef("website")
	require.NoError(t, err)
	require.Equal(t, "component:default/website", ref.String())

	// String round-trips through ParseRef.
	again, err := ParseRef(ref.String())
	require.NoError(t, err)
	require.Equal(t, ref, again)
}

func TestEntityAnnotation(t *testing.T) {
	e := &Entity{
		Name: "website",
		Annotations: map[string]string{
			"jira/project-key": "WEB",
			"empty":            "",
		},
	}

	v, ok := e.Annotation("jira/project-key")
	require.True(t, ok)
	require.Equal(t, "WEB", v)

	// Present-but-empty differs from absent.
	v, ok = e.Annotation("empty")
	require.True(t, ok)
	require.Empty(t, v)

	_, ok = e.Annotation("missing")
	require.False(t, ok)

	var nilEntity *Entity
	_, ok = nilEntity.Annotation("anything")
	require.False(t, ok)
}

func TestEntityRef(t *testing.T) {
	e := &Entity{Kind: "Group", Name: "platform"}
	require.Equal(t, Ref{"group", "default", "platform"}, e.Ref())
}
