// Package status reduces per-component pass/fail cohorts to a four-valued
// traffic-light decision. The ratio and count policies used by the different
// quality-signal domains share one parametrized module; each domain supplies
// its thresholds and tie-break rules rather than its own copy of the loop.
package status

import "fmt"

// Color is the four-valued outcome of an aggregation policy.
type Color string

const (
	ColorGreen  Color = "green"
	ColorYellow Color = "yellow"
	ColorRed    Color = "red"
	// ColorGray means no verdict could be computed: empty cohort, missing
	// configuration, or a collaborator error. It is never a passing result.
	ColorGray Color = "gray"
)

// Decision is a status color plus a human-readable reason.
type Decision struct {
	Color  Color  `json:"color"`
	Reason string `json:"reason"`
}

// Gray builds a no-verdict decision.
func Gray(format string, args ...any) Decision {
	return Decision{Color: ColorGray, Reason: fmt.Sprintf(format, args...)}
}

// Default thresholds applied when the owning group's configuration does not
// specify one, or the configured value does not parse.
const (
	DefaultRedRatio        = 0.33
	DefaultRedPercent      = 50.0
	DefaultYellowPercent   = 25.0
	DefaultSeverityPercent = 33.0
)

// decideSimpleRatio is the red/green policy for single-signal domains:
// red when failures/total reaches redRatio (inclusive). There is no yellow
// tier. The caller is responsible for deduplication and for excluding
// members without data; total must be > 0.
func decideSimpleRatio(failures, total int, redRatio float64) Decision {
	ratio := float64(failures) / float64(total)
	if ratio >= redRatio {
		return Decision{
			Color:  ColorRed,
			Reason: fmt.Sprintf("%d of %d members failing (ratio %.2f >= %.2f)", failures, total, ratio, redRatio),
		}
	}
	return Decision{
		Color:  ColorGreen,
		Reason: fmt.Sprintf("%d of %d members failing (ratio %.2f < %.2f)", failures, total, ratio, redRatio),
	}
}

// decideDualRatio is the red/yellow/green percentage policy: red at or above
// redPercent, yellow at or above yellowPercent, green below both.
func decideDualRatio(failures, total int, redPercent, yellowPercent float64) Decision {
	pct := float64(failures) / float64(total) * 100
	switch {
	case pct >= redPercent:
		return Decision{
			Color:  ColorRed,
			Reason: fmt.Sprintf("%d of %d members failing (%.0f%% >= %.0f%%)", failures, total, pct, redPercent),
		}
	case pct >= yellowPercent:
		return Decision{
			Color:  ColorYellow,
			Reason: fmt.Sprintf("%d of %d members failing (%.0f%% >= %.0f%%)", failures, total, pct, yellowPercent),
		}
	default:
		return Decision{
			Color:  ColorGreen,
			Reason: fmt.Sprintf("%d of %d members failing (%.0f%% < %.0f%%)", failures, total, pct, yellowPercent),
		}
	}
}

// TierCount is the cohort-wide failure count for one severity tier.
type TierCount struct {
	Tier     string
	Critical bool
	Failures int
}

// decideSeverityCount is the multi-tier policy for domains with several
// independent checks of increasing severity. Green only when every tier has
// zero failures across the whole cohort. Red when the critical tier has any
// failure regardless of count, or when any tier's failure count exceeds
// total/(100/percent). Otherwise yellow.
func decideSeverityCount(tiers []TierCount, total int, percent float64) Decision {
	allClean := true
	for _, t := range tiers {
		if t.Failures > 0 {
			allClean = false
			break
		}
	}
	if allClean {
		return Decision{
			Color:  ColorGreen,
			Reason: fmt.Sprintf("no findings in any severity tier across %d members", total),
		}
	}

	limit := float64(total) / (100 / percent)
	for _, t := range tiers {
		if t.Critical && t.Failures > 0 {
			return Decision{
				Color:  ColorRed,
				Reason: fmt.Sprintf("%d members failing the %s tier", t.Failures, t.Tier),
			}
		}
	}
	for _, t := range tiers {
		if float64(t.Failures) > limit {
			return Decision{
				Color:  ColorRed,
				Reason: fmt.Sprintf("%d members failing the %s tier (limit %.1f at %.0f%%)", t.Failures, t.Tier, limit, percent),
			}
		}
	}
	return Decision{
		Color:  ColorYellow,
		Reason: fmt.Sprintf("non-critical findings within the %.0f%% limit across %d members", percent, total),
	}
}
