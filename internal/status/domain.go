package status

// PolicyKind selects the reduction applied to a cohort.
type PolicyKind string

const (
	PolicySimpleRatio   PolicyKind = "simple-ratio"
	PolicyDualRatio     PolicyKind = "dual-ratio"
	PolicySeverityCount PolicyKind = "severity-count"
)

// ErrorRule controls how a member whose lookup fails is counted. The source
// domains genuinely differ here, so the rule is per-domain data rather than
// a single unified behavior.
type ErrorRule string

const (
	// ErrorsExcluded drops erroring members from the denominator.
	ErrorsExcluded ErrorRule = "exclude"
	// ErrorsAsFailures counts erroring members as failing.
	ErrorsAsFailures ErrorRule = "count-as-failure"
)

// Domain parameterizes the shared aggregation loop for one quality-signal
// domain: which checks to run per member, which policy reduces the counts,
// and which group annotations carry the ratio thresholds.
type Domain struct {
	Name      string     `mapstructure:"name"`
	Policy    PolicyKind `mapstructure:"policy"`
	ErrorRule ErrorRule  `mapstructure:"errors"`

	// CheckIDs are the registered checks run per member. Severity-count
	// domains list their tiers here in decreasing severity.
	CheckIDs []string `mapstructure:"checks"`

	// CriticalCheckID names the tier whose failures force red regardless of
	// count. Severity-count only.
	CriticalCheckID string `mapstructure:"criticalCheck"`

	// DedupeAnnotation names the sub-grouping key annotation: members with
	// the same value count once, members lacking it are excluded entirely.
	// Simple-ratio only.
	DedupeAnnotation string `mapstructure:"dedupeAnnotation"`

	// Group annotation keys for the policy thresholds. Absent or unparsable
	// values fall back to the package defaults.
	RedRatioAnnotation        string `mapstructure:"redRatioAnnotation"`
	RedPercentAnnotation      string `mapstructure:"redPercentAnnotation"`
	YellowPercentAnnotation   string `mapstructure:"yellowPercentAnnotation"`
	SeverityPercentAnnotation string `mapstructure:"severityPercentAnnotation"`
}

// Built-in domain parameterizations.
var (
	// BugTracker reduces one bug-count check per external issue-tracker
	// project to red/green.
	BugTracker = Domain{
		Name:               "bugs",
		Policy:             PolicySimpleRatio,
		ErrorRule:          ErrorsExcluded,
		CheckIDs:           []string{"open-bugs"},
		DedupeAnnotation:   "jira/project-key",
		RedRatioAnnotation: "tech-insights.io/open-bugs-red-ratio",
	}

	// QualityGate reduces the pipeline quality-gate check to
	// red/yellow/green. Members whose lookup fails count as failing.
	QualityGate = Domain{
		Name:                    "quality-gate",
		Policy:                  PolicyDualRatio,
		ErrorRule:               ErrorsAsFailures,
		CheckIDs:                []string{"quality-gate"},
		RedPercentAnnotation:    "tech-insights.io/quality-gate-red-percent",
		YellowPercentAnnotation: "tech-insights.io/quality-gate-yellow-percent",
	}

	// Security reduces the critical/high/medium scanner checks with the
	// severity-count policy. Any critical failure forces red.
	Security = Domain{
		Name:                      "security",
		Policy:                    PolicySeverityCount,
		ErrorRule:                 ErrorsExcluded,
		CheckIDs:                  []string{"security-critical", "security-high", "security-medium"},
		CriticalCheckID:           "security-critical",
		SeverityPercentAnnotation: "tech-insights.io/security-red-percent",
	}
)

// BuiltinDomains returns the built-in parameterizations keyed by name.
func BuiltinDomains() map[string]Domain {
	return map[string]Domain{
		BugTracker.Name:  BugTracker,
		QualityGate.Name: QualityGate,
		Security.Name:    Security,
	}
}
