// Package config loads user defaults for hunk's flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config holds defaults for the search command. Values use the same syntax as
// the corresponding flags.
type Config struct {
	MatchFields string `mapstructure:"match_fields" yaml:"match_fields"`
	PrintFields string `mapstructure:"print_fields" yaml:"print_fields"`
	InvalidUTF8 string `mapstructure:"invalid_utf8" yaml:"invalid_utf8"`
}

// Built-in defaults, used when neither config file, environment nor flags
// set a value.
const (
	DefaultMatchFields = "diff"
	DefaultPrintFields = "patch_header"
	DefaultInvalidUTF8 = "strict"
)

// Load reads config.yaml from the user config directory. A missing file is
// not an error. Environment variables HUNK_MATCH_FIELDS, HUNK_PRINT_FIELDS
// and HUNK_INVALID_UTF8 override file values.
func Load() (*Config, error) {
	dir, err := configDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get config dir: %w", err)
	}
	return LoadFrom(dir)
}

// LoadFrom is Load with an explicit directory to search for config.yaml.
func LoadFrom(dirs ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	for _, dir := range dirs {
		v.AddConfigPath(dir)
	}

	v.SetDefault("match_fields", DefaultMatchFields)
	v.SetDefault("print_fields", DefaultPrintFields)
	v.SetDefault("invalid_utf8", DefaultInvalidUTF8)

	v.SetEnvPrefix("hunk")
	v.AutomaticEnv()

	// Read config file (optional - won't error if missing)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

func configDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "hunk"), nil
}

// GetConfigPath returns the path where the config file should be located
func GetConfigPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Exists returns true if a config file exists
func Exists() bool {
	path, err := GetConfigPath()
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}
