package main

import (
	"log/slog"

	"github.com/spf13/cobra"
)

var version = "dev"

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "greenlight",
		Short: "Greenlight - threshold checks and traffic-light status for catalog components",
		Long: `Greenlight evaluates threshold checks against component facts and reduces
cohorts of components to a single red/yellow/green/gray status.

Checks compare a component's latest facts against thresholds the component
declares in its catalog annotations. Status aggregation runs a domain's
checks across a cohort and applies the domain's policy to the outcomes.`,
		Version:      version,
		SilenceUsage: true,
	}

	debugLogging := cmd.PersistentFlags().Bool("debug", false, "Enable debug logging")
	cmd.PersistentFlags().String("settings", "", "Settings file (default .greenlight.yaml if present)")
	cmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if *debugLogging {
			slog.SetLogLoggerLevel(slog.LevelDebug)
		}
	}

	cmd.AddCommand(newCheckCommand())
	cmd.AddCommand(newStatusCommand())
	cmd.AddCommand(newChecksCommand())
	cmd.AddCommand(newValidateCommand())
	cmd.AddCommand(newInitCommand())

	return cmd
}

func execute() error {
	rootCmd := newRootCommand()
	return rootCmd.Execute()
}
