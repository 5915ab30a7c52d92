// Package catalog defines the contract for the component directory service:
// looking up a component or grouping entity by reference and reading the
// string-valued configuration entries attached to it.
package catalog

import (
	"context"
	"fmt"
	"strings"
)

// Default reference parts applied when a ref string omits them.
const (
	DefaultKind      = "component"
	DefaultNamespace = "default"

	// KindGroup is the entity kind that carries shared check configuration
	// for its member components.
	KindGroup = "group"
)

// Ref identifies an entity as kind:namespace/name.
type Ref struct {
	Kind      string
	Namespace string
	Name      string
}

// ParseRef parses a "kind:namespace/name" string. Kind defaults to
// "component" and namespace to "default" when omitted.
func ParseRef(s string) (Ref, error) {
	ref := Ref{Kind: DefaultKind, Namespace: DefaultNamespace}

	rest := s
	if kind, after, ok := strings.Cut(rest, ":"); ok {
		if kind == "" {
			return Ref{}, fmt.Errorf("invalid entity ref %q: empty kind", s)
		}
		ref.Kind = strings.ToLower(kind)
		rest = after
	}
	if ns, name, ok := strings.Cut(rest, "/"); ok {
		if ns == "" {
			return Ref{}, fmt.Errorf("invalid entity ref %q: empty namespace", s)
		}
		ref.Namespace = strings.ToLower(ns)
		rest = name
	}
	if rest == "" {
		return Ref{}, fmt.Errorf("invalid entity ref %q: empty name", s)
	}
	ref.Name = rest
	return ref, nil
}

// ParseGroupRef parses a ref string defaulting the kind to "group". Owning
// group references in component specs are commonly written without a kind.
func ParseGroupRef(s string) (Ref, error) {
	if !strings.Contains(s, ":") {
		s = KindGroup + ":" + s
	}
	return ParseRef(s)
}

func (r Ref) String() string {
	return fmt.Sprintf("%s:%s/%s", r.Kind, r.Namespace, r.Name)
}

// EntitySpec holds the specification fields the checks core reads.
type EntitySpec struct {
	// Group references the owning group entity. A component must declare a
	// group to be checkable.
	Group string `yaml:"group"`
}

// Entity is a directory entry: a component or a grouping.
type Entity struct {
	Kind        string            `yaml:"kind"`
	Namespace   string            `yaml:"namespace"`
	Name        string            `yaml:"name"`
	Spec        EntitySpec        `yaml:"spec"`
	Annotations map[string]string `yaml:"annotations"`
}

// Ref returns the entity's own reference.
func (e *Entity) Ref() Ref {
	ns := e.Namespace
	if ns == "" {
		ns = DefaultNamespace
	}
	return Ref{Kind: strings.ToLower(e.Kind), Namespace: ns, Name: e.Name}
}

// Annotation returns the configuration value stored under key, and whether
// it was present. Evaluation code goes through this accessor rather than
// indexing the map directly.
func (e *Entity) Annotation(key string) (string, bool) {
	if e == nil || e.Annotations == nil {
		return "", false
	}
	v, ok := e.Annotations[key]
	return v, ok
}

// Catalog is the directory service consumed by the check runner and the
// status aggregators. GetByRef returns (nil, nil) when the entity does not
// exist; a non-nil error indicates a collaborator failure.
type Catalog interface {
	GetByRef(ctx context.Context, ref Ref) (*Entity, error)
}
