package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

// Settings are the CLI-level defaults: where to find the checks document and
// snapshot when flags don't say. Resolved from an optional .greenlight.yaml
// plus GREENLIGHT_* environment variables.
type Settings struct {
	ChecksFile   string `mapstructure:"checksFile"`
	SnapshotFile string `mapstructure:"snapshotFile"`
	Concurrency  int    `mapstructure:"concurrency"`
}

// LoadSettings resolves CLI settings. When path is empty, a .greenlight.yaml
// in the working directory is used if present; a missing file is not an
// error.
func LoadSettings(path string) (*Settings, error) {
	// A fresh viper instance per call avoids shared global state.
	v := viper.New()
	v.SetDefault("checksFile", "checks.yaml")
	v.SetDefault("snapshotFile", "snapshot.yaml")
	v.SetDefault("concurrency", 8)
	v.SetEnvPrefix("GREENLIGHT")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading settings file %s: %w", path, err)
		}
	} else {
		v.SetConfigName(".greenlight")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading settings: %w", err)
			}
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("decoding settings: %w", err)
	}
	return &s, nil
}
