package main

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/greenlightci/greenlight/internal/catalog"
	"github.com/greenlightci/greenlight/internal/spinner"
	"github.com/greenlightci/greenlight/internal/status"
)

func newStatusCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status <component-ref>...",
		Short: "Aggregate a cohort of components into a traffic-light status",
		Long: `Aggregate a cohort of components into a single traffic-light status for a
quality-signal domain.

The domain's checks run against every component; the domain's policy reduces
the outcomes to red, yellow, green, or gray, e.g.

  greenlight status --domain bugs website billing search
  greenlight status --domain security component:default/website`,
		Args:          cobra.MinimumNArgs(1),
		RunE:          runStatus,
		SilenceErrors: true,
	}
	cmd.Flags().String("config", "", "Path to the checks.yaml document")
	cmd.Flags().String("snapshot", "", "Path to the catalog/facts snapshot")
	cmd.Flags().String("domain", "", "Quality-signal domain (bugs, quality-gate, security, or a configured domain)")
	cmd.Flags().String("format", "text", "Output format: text | json")
	_ = cmd.MarkFlagRequired("domain")
	return cmd
}

func runStatus(cmd *cobra.Command, args []string) error {
	refs := make([]catalog.Ref, 0, len(args))
	for _, arg := range args {
		ref, err := catalog.ParseRef(arg)
		if err != nil {
			return err
		}
		refs = append(refs, ref)
	}

	env, err := loadEnvironment(cmd)
	if err != nil {
		return err
	}

	name, _ := cmd.Flags().GetString("domain")
	domain, ok := env.cfg.Domains[name]
	if !ok {
		known := make([]string, 0, len(env.cfg.Domains))
		for k := range env.cfg.Domains {
			known = append(known, k)
		}
		sort.Strings(known)
		return fmt.Errorf("unknown domain %q (configured: %s)", name, strings.Join(known, ", "))
	}

	agg := &status.Aggregator{
		Catalog: env.snap,
		Runner:  env.runner,
		Diag:    stderrSink{w: cmd.ErrOrStderr()},
		Limit:   env.settings.Concurrency,
	}

	stop := spinner.StartIfTTY(cmd.ErrOrStderr(), fmt.Sprintf("evaluating %d cohort members", len(refs)))
	decision := agg.Aggregate(cmd.Context(), domain, refs)
	stop()

	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "json":
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(decision); err != nil {
			return err
		}
	case "text":
		if decision.Reason != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "%s status: %s (%s)\n", domain.Name, decision.Color, decision.Reason)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "%s status: %s\n", domain.Name, decision.Color)
		}
	default:
		return fmt.Errorf("unknown format %q (want text or json)", format)
	}

	if decision.Color == status.ColorRed {
		return &CheckFailureError{
			Message: fmt.Sprintf("%s status is red", domain.Name),
		}
	}
	return nil
}
