// Package config loads checks.yaml documents: the registered check set plus
// optional per-domain policy overrides.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"gopkg.in/yaml.v3"

	"github.com/greenlightci/greenlight/internal/checks"
	"github.com/greenlightci/greenlight/internal/status"
	"github.com/greenlightci/greenlight/internal/validation"
)

// Config is a fully loaded checks.yaml document.
type Config struct {
	Registry *checks.Registry
	// Domains holds the built-in domains with any file overrides applied,
	// plus domains the file defines from scratch.
	Domains map[string]status.Domain
}

// SchemaError reports a document that failed JSON-schema validation.
type SchemaError struct {
	Path   string
	Issues []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s failed schema validation:\n  %s", e.Path, strings.Join(e.Issues, "\n  "))
}

// file mirrors the checks.yaml document shape.
type file struct {
	Checks  []checkSpec               `yaml:"checks"`
	Domains map[string]map[string]any `yaml:"domains"`
}

type checkSpec struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Type        string `yaml:"type"`
	// FactReference is the [retrieverId, factKey] pair.
	FactReference       []string `yaml:"factReference"`
	ThresholdAnnotation string   `yaml:"thresholdAnnotation"`
	OperatorAnnotation  string   `yaml:"operatorAnnotation"`
}

func (f *file) checkDefs() []checks.Check {
	defs := make([]checks.Check, 0, len(f.Checks))
	for _, cs := range f.Checks {
		var ref checks.FactReference
		if len(cs.FactReference) == 2 {
			ref = checks.FactReference{
				RetrieverID: cs.FactReference[0],
				FactKey:     cs.FactReference[1],
			}
		}
		defs = append(defs, checks.Check{
			ID:                     cs.ID,
			Name:                   cs.Name,
			Description:            cs.Description,
			Type:                   checks.Type(cs.Type),
			FactReference:          ref,
			ThresholdAnnotationKey: cs.ThresholdAnnotation,
			OperatorAnnotationKey:  cs.OperatorAnnotation,
		})
	}
	return defs
}

// DecodeChecks decodes check definitions from raw YAML without registry
// validation, so callers can report per-check validity themselves.
func DecodeChecks(data []byte) ([]checks.Check, error) {
	var doc file
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return doc.checkDefs(), nil
}

// Load reads, validates and decodes a checks.yaml file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return Parse(path, data)
}

// Parse validates and decodes raw checks.yaml bytes. The path is used only
// in error messages.
func Parse(path string, data []byte) (*Config, error) {
	if issues := validation.ValidateChecksBytes(data); len(issues) > 0 {
		return nil, &SchemaError{Path: path, Issues: issues}
	}

	var doc file
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	registry, err := checks.NewRegistry(doc.checkDefs()...)
	if err != nil {
		return nil, fmt.Errorf("building check registry: %w", err)
	}

	domains, err := mergeDomains(doc.Domains)
	if err != nil {
		return nil, err
	}

	return &Config{Registry: registry, Domains: domains}, nil
}

// mergeDomains overlays file-level overrides onto the built-in domains.
// Unknown domain names define new domains from scratch.
func mergeDomains(overrides map[string]map[string]any) (map[string]status.Domain, error) {
	domains := status.BuiltinDomains()
	for name, params := range overrides {
		d, ok := domains[name]
		if !ok {
			d = status.Domain{Name: name}
		}
		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			Result:      &d,
			ErrorUnused: true,
		})
		if err != nil {
			return nil, fmt.Errorf("domain %q: %w", name, err)
		}
		if err := decoder.Decode(params); err != nil {
			return nil, fmt.Errorf("domain %q: %w", name, err)
		}
		if d.Name == "" {
			d.Name = name
		}
		domains[name] = d
	}
	return domains, nil
}
