package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

func newChecksCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "checks",
		Short:         "List the registered checks",
		Args:          cobra.NoArgs,
		RunE:          runChecks,
		SilenceErrors: true,
	}
	cmd.Flags().String("config", "", "Path to the checks.yaml document")
	cmd.Flags().String("format", "text", "Output format: text | json")
	return cmd
}

func runChecks(cmd *cobra.Command, args []string) error {
	cfg, err := loadChecksConfig(cmd)
	if err != nil {
		return err
	}

	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "json":
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(cfg.Registry.Checks())
	case "text":
		out := cmd.OutOrStdout()
		for _, c := range cfg.Registry.Checks() {
			fmt.Fprintf(out, "%s\n", c.ID)
			if c.Name != "" {
				fmt.Fprintf(out, "  name:      %s\n", c.Name)
			}
			if c.Description != "" {
				fmt.Fprintf(out, "  about:     %s\n", c.Description)
			}
			fmt.Fprintf(out, "  type:      %s\n", c.Type)
			fmt.Fprintf(out, "  fact:      %s/%s\n", c.FactReference.RetrieverID, c.FactReference.FactKey)
			fmt.Fprintf(out, "  threshold: %s\n", c.ThresholdAnnotationKey)
			fmt.Fprintf(out, "  operator:  %s\n", c.OperatorAnnotationKey)
		}
		return nil
	default:
		return fmt.Errorf("unknown format %q (want text or json)", format)
	}
}
