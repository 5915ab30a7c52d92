package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/greenlightci/greenlight/internal/config"
	"github.com/greenlightci/greenlight/internal/validation"
)

func newValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <checks.yaml>",
		Short: "Validate a checks document",
		Long: `Validate a checks document against the schema, then statically validate
each check definition (non-empty id, complete fact reference, both
annotation keys).`,
		Args:          cobra.ExactArgs(1),
		RunE:          runValidate,
		SilenceErrors: true,
	}
	cmd.Flags().String("format", "text", "Output format: text | json")
	return cmd
}

type validateReportJSON struct {
	Path         string            `json:"path"`
	SchemaIssues []string          `json:"schemaIssues,omitempty"`
	Checks       []checkStatusJSON `json:"checks,omitempty"`
	Valid        bool              `json:"valid"`
}

type checkStatusJSON struct {
	ID      string `json:"id"`
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
}

func runValidate(cmd *cobra.Command, args []string) error {
	path := args[0]
	report := validateReportJSON{Path: path, Valid: true}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading checks file: %w", err)
	}

	report.SchemaIssues = validation.ValidateChecksBytes(data)
	if len(report.SchemaIssues) > 0 {
		report.Valid = false
	}

	// Static validation still runs when the YAML parses, so one pass
	// reports both schema and per-check problems.
	defs, err := config.DecodeChecks(data)
	if err == nil {
		for _, c := range defs {
			vr := c.Validate()
			report.Checks = append(report.Checks, checkStatusJSON{
				ID:      c.ID,
				Valid:   vr.Valid,
				Message: vr.Message,
			})
			if !vr.Valid {
				report.Valid = false
			}
		}
	}

	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "json":
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	case "text":
		printValidateReport(cmd, report)
	default:
		return fmt.Errorf("unknown format %q (want text or json)", format)
	}

	if !report.Valid {
		return fmt.Errorf("%s is not a valid checks document", path)
	}
	return nil
}

func printValidateReport(cmd *cobra.Command, report validateReportJSON) {
	out := cmd.OutOrStdout()
	if len(report.SchemaIssues) > 0 {
		fmt.Fprintf(out, "Schema issues in %s:\n", report.Path)
		for _, issue := range report.SchemaIssues {
			fmt.Fprintf(out, "  %s\n", issue)
		}
		return
	}
	for _, c := range report.Checks {
		if c.Valid {
			fmt.Fprintf(out, "%s: ok\n", c.ID)
		} else {
			fmt.Fprintf(out, "%s: INVALID (%s)\n", c.ID, c.Message)
		}
	}
	if report.Valid {
		fmt.Fprintf(out, "%s is valid\n", report.Path)
	}
}
