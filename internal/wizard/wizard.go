package wizard

import (
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
	"text/template"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/greenlightci/greenlight/internal/checks"
	"github.com/greenlightci/greenlight/internal/evaluator"
)

// CheckDraft holds all fields collected during the interactive wizard.
type CheckDraft struct {
	ID          string
	Name        string
	Description string
	Type        checks.Type
	Retriever   string
	FactKey     string
	// Operator and Threshold are example values for the catalog
	// annotations, not part of the check definition itself.
	Operator  string
	Threshold string
}

var idPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9-]*$`)

func validateID(s string) error {
	if s == "" {
		return fmt.Errorf("check id is required")
	}
	if !idPattern.MatchString(s) {
		return fmt.Errorf("check id must be kebab-case (lowercase letters, digits, hyphens)")
	}
	return nil
}

const checksYAMLTemplate = `# Add this entry to your checks.yaml.
checks:
  - id: {{ .ID }}
{{- if .Name }}
    name: {{ .Name }}
{{- end }}
{{- if .Description }}
    description: {{ .Description }}
{{- end }}
    type: {{ .Type }}
    factReference: [{{ .Retriever }}, {{ .FactKey }}]
    thresholdAnnotation: tech-insights.io/{{ .ID }}-threshold
    operatorAnnotation: tech-insights.io/{{ .ID }}-operator

# And annotate each participating component:
#   tech-insights.io/{{ .ID }}-threshold: "{{ .Threshold }}"
#   tech-insights.io/{{ .ID }}-operator: "{{ .Operator }}"
`

// RunCheckWizard runs an interactive huh form to collect a new check
// definition. If initialID is non-empty, it pre-populates the id field.
func RunCheckWizard(in io.Reader, out io.Writer, initialID string) (*CheckDraft, error) {
	var (
		id          = initialID
		name        string
		description string
		checkType   = string(checks.TypeNumber)
		retriever   string
		factKey     string
		operator    = evaluator.OpLessThanInclusive
		threshold   string
	)

	operatorOptions := make([]huh.Option[string], 0, len(evaluator.Operators()))
	for _, op := range evaluator.Operators() {
		operatorOptions = append(operatorOptions, huh.NewOption(op, op))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Check id").
				Description("A kebab-case identifier for the check").
				Placeholder("open-bugs").
				Value(&id).
				Validate(func(s string) error {
					return validateID(strings.TrimSpace(s))
				}),
			huh.NewInput().
				Title("Display name").
				Placeholder("Open bugs").
				Value(&name),
			huh.NewInput().
				Title("Description").
				Placeholder("What does this check verify?").
				Value(&description),
			huh.NewSelect[string]().
				Title("Value type").
				Options(
					huh.NewOption("number", string(checks.TypeNumber)),
					huh.NewOption("percentage", string(checks.TypePercentage)),
					huh.NewOption("boolean", string(checks.TypeBoolean)),
				).
				Value(&checkType),
			huh.NewInput().
				Title("Retriever id").
				Description("Which fact retriever produces the value").
				Placeholder("jira").
				Value(&retriever).
				Validate(required("retriever id")),
			huh.NewInput().
				Title("Fact key").
				Description("The key within the retriever's facts").
				Placeholder("openIssues").
				Value(&factKey).
				Validate(required("fact key")),
			huh.NewSelect[string]().
				Title("Example operator").
				Description("Suggested operator annotation for components").
				Options(operatorOptions...).
				Value(&operator),
			huh.NewInput().
				Title("Example threshold").
				Placeholder("10").
				Value(&threshold),
		),
	).
		WithInput(in).
		WithOutput(out)

	// Use accessible mode for non-TTY input (e.g., tests, piped input).
	if f, ok := in.(*os.File); !ok || !term.IsTerminal(int(f.Fd())) {
		form = form.WithAccessible(true)
	}

	if err := form.Run(); err != nil {
		return nil, fmt.Errorf("wizard failed: %w", err)
	}

	return &CheckDraft{
		ID:          strings.TrimSpace(id),
		Name:        strings.TrimSpace(name),
		Description: strings.TrimSpace(description),
		Type:        checks.Type(checkType),
		Retriever:   strings.TrimSpace(retriever),
		FactKey:     strings.TrimSpace(factKey),
		Operator:    operator,
		Threshold:   strings.TrimSpace(threshold),
	}, nil
}

// GenerateChecksYAML renders a checks.yaml entry from the draft.
func GenerateChecksYAML(draft *CheckDraft) (string, error) {
	tmpl, err := template.New("checksyaml").Parse(checksYAMLTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf strings.Builder
	if err := tmpl.Execute(&buf, draft); err != nil {
		return "", fmt.Errorf("failed to render template: %w", err)
	}
	return buf.String(), nil
}

func required(what string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", what)
		}
		return nil
	}
}
