package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/greenlightci/greenlight/internal/config"
	"github.com/greenlightci/greenlight/internal/diag"
	"github.com/greenlightci/greenlight/internal/runner"
	"github.com/greenlightci/greenlight/internal/snapshot"
)

// environment bundles the loaded collaborators a command needs: check
// definitions, the snapshot backing catalog and facts, and a wired runner.
type environment struct {
	settings *config.Settings
	cfg      *config.Config
	snap     *snapshot.Snapshot
	runner   *runner.Runner
}

// stderrSink surfaces evaluation warnings to the user.
type stderrSink struct {
	w io.Writer
}

func (s stderrSink) Warnf(format string, args ...any) {
	fmt.Fprintf(s.w, "warning: "+format+"\n", args...)
}

var _ diag.Sink = stderrSink{}

// loadChecksConfig resolves settings and loads just the checks document, for
// commands that never touch a snapshot.
func loadChecksConfig(cmd *cobra.Command) (*config.Config, error) {
	settingsPath, _ := cmd.Flags().GetString("settings")
	settings, err := config.LoadSettings(settingsPath)
	if err != nil {
		return nil, err
	}

	configPath, _ := cmd.Flags().GetString("config")
	if configPath == "" {
		configPath = settings.ChecksFile
	}
	return config.Load(configPath)
}

// loadEnvironment resolves settings, then loads the checks document and
// snapshot named by flags (falling back to settings defaults).
func loadEnvironment(cmd *cobra.Command) (*environment, error) {
	settingsPath, _ := cmd.Flags().GetString("settings")
	settings, err := config.LoadSettings(settingsPath)
	if err != nil {
		return nil, err
	}

	configPath, _ := cmd.Flags().GetString("config")
	if configPath == "" {
		configPath = settings.ChecksFile
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	snapshotPath, _ := cmd.Flags().GetString("snapshot")
	if snapshotPath == "" {
		snapshotPath = settings.SnapshotFile
	}
	snap, err := snapshot.Load(snapshotPath)
	if err != nil {
		return nil, err
	}

	sink := stderrSink{w: cmd.ErrOrStderr()}
	return &environment{
		settings: settings,
		cfg:      cfg,
		snap:     snap,
		runner:   runner.New(cfg.Registry, snap, snap, sink),
	}, nil
}
