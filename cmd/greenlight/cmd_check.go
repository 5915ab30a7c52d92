package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"

	"github.com/greenlightci/greenlight/internal/catalog"
)

func newCheckCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <component-ref>",
		Short: "Run threshold checks against a component",
		Long: `Run threshold checks against a single component.

The component's latest facts are read from the snapshot and compared against
the thresholds the component declares in its catalog annotations, e.g.

  greenlight check component:default/website
  greenlight check website --checks open-bugs,quality-gate`,
		Args:          cobra.ExactArgs(1),
		RunE:          runCheck,
		SilenceErrors: true,
	}
	cmd.Flags().String("config", "", "Path to the checks.yaml document")
	cmd.Flags().String("snapshot", "", "Path to the catalog/facts snapshot")
	cmd.Flags().StringSlice("checks", nil, "Run only these check ids (default all)")
	cmd.Flags().String("format", "text", "Output format: text | json")
	return cmd
}

type checkResultJSON struct {
	ID     string `json:"id"`
	Name   string `json:"name,omitempty"`
	Fact   string `json:"fact"`
	Value  any    `json:"value"`
	Result bool   `json:"result"`
}

func runCheck(cmd *cobra.Command, args []string) error {
	ref, err := catalog.ParseRef(args[0])
	if err != nil {
		return err
	}

	env, err := loadEnvironment(cmd)
	if err != nil {
		return err
	}

	ids, _ := cmd.Flags().GetStringSlice("checks")
	results, err := env.runner.RunChecks(cmd.Context(), ref, ids...)
	if err != nil {
		return err
	}

	rows := make([]checkResultJSON, 0, len(results))
	failed := 0
	for _, r := range results {
		fact := fmt.Sprintf("%s/%s", r.Check.FactReference.RetrieverID, r.Check.FactReference.FactKey)
		var value any
		if fv, ok := r.Facts[r.Check.FactReference.RetrieverID]; ok {
			value = fv.Value
		}
		rows = append(rows, checkResultJSON{
			ID:     r.Check.ID,
			Name:   r.Check.Name,
			Fact:   fact,
			Value:  value,
			Result: r.Result,
		})
		if !r.Result {
			failed++
		}
	}

	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "json":
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		if err := enc.Encode(rows); err != nil {
			return err
		}
	case "text":
		printCheckTable(cmd, ref, rows)
	default:
		return fmt.Errorf("unknown format %q (want text or json)", format)
	}

	if failed > 0 {
		return &CheckFailureError{
			Message: fmt.Sprintf("%d of %d checks failed for %s", failed, len(rows), ref),
		}
	}
	return nil
}

func printCheckTable(cmd *cobra.Command, ref catalog.Ref, rows []checkResultJSON) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Checks for %s\n\n", ref)

	if len(rows) == 0 {
		fmt.Fprintln(out, "No checks selected.")
		return
	}

	idWidth, factWidth, valueWidth := len("CHECK"), len("FACT"), len("VALUE")
	for _, row := range rows {
		idWidth = max(idWidth, runewidth.StringWidth(row.ID))
		factWidth = max(factWidth, runewidth.StringWidth(row.Fact))
		valueWidth = max(valueWidth, runewidth.StringWidth(fmt.Sprint(row.Value)))
	}

	fmt.Fprintf(out, "%s  %s  %s  %s\n",
		padRight("CHECK", idWidth),
		padRight("FACT", factWidth),
		padRight("VALUE", valueWidth),
		"RESULT",
	)
	for _, row := range rows {
		verdict := "pass"
		if !row.Result {
			verdict = "FAIL"
		}
		fmt.Fprintf(out, "%s  %s  %s  %s\n",
			padRight(row.ID, idWidth),
			padRight(row.Fact, factWidth),
			padRight(fmt.Sprint(row.Value), valueWidth),
			verdict,
		)
	}
}

func padRight(s string, width int) string {
	sw := runewidth.StringWidth(s)
	if sw >= width {
		return s
	}
	return s + strings.Repeat(" ", width-sw)
}
