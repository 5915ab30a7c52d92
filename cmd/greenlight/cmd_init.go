package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/greenlightci/greenlight/internal/wizard"
)

func newInitCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "init [check-id]",
		Short: "Scaffold a new check definition interactively",
		Long: `Scaffold a new check definition through a guided wizard.

Collects the check's id, fact reference and annotation conventions, then
renders a checks.yaml entry. By default the entry is printed to stdout;
use --output to append it to a file instead.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, args, output)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Append the rendered entry to this file")

	return cmd
}

func runInit(cmd *cobra.Command, args []string, output string) error {
	initialID := ""
	if len(args) > 0 {
		initialID = args[0]
	}

	draft, err := wizard.RunCheckWizard(cmd.InOrStdin(), cmd.OutOrStdout(), initialID)
	if err != nil {
		return err
	}

	content, err := wizard.GenerateChecksYAML(draft)
	if err != nil {
		return fmt.Errorf("failed to render checks.yaml entry: %w", err)
	}

	if output == "" {
		fmt.Fprint(cmd.OutOrStdout(), content)
		return nil
	}

	f, err := os.OpenFile(output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", output, err)
	}
	defer f.Close()

	if _, err := f.WriteString(content); err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Appended %s entry to %s\n", draft.ID, output)
	return nil
}
