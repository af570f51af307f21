// Package config provides configuration loading and management for dicomstack.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mrsinham/dicomstack/internal/dicom"
	"github.com/mrsinham/dicomstack/internal/util"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	Log    LogConfig    `yaml:"log"`
	Load   LoadSection  `yaml:"load"`
	Export ExportConfig `yaml:"export"`
}

// LogConfig controls where log records go and how the file is rotated.
type LogConfig struct {
	// File enables a rotating log file next to stdout when non-empty
	File string `yaml:"file"`

	// Level is one of debug, info, warn, error
	Level string `yaml:"level"`

	MaxSizeMB  int  `yaml:"max_size_mb"`
	MaxAgeDays int  `yaml:"max_age_days"`
	MaxBackups int  `yaml:"max_backups"`
	Compress   bool `yaml:"compress"`
}

// LoadSection controls file discovery and slice ordering.
type LoadSection struct {
	Extensions []string `yaml:"extensions"`

	// OrderBySliceLocation prefers PrimaryKey when true, FallbackKey otherwise
	OrderBySliceLocation bool `yaml:"order_by_slice_location"`

	PrimaryKey  string `yaml:"primary_key"`
	FallbackKey string `yaml:"fallback_key"`

	// MaxVolumeSize caps the assembled volume, e.g. "2GB"; empty disables it
	MaxVolumeSize string `yaml:"max_volume_size"`
}

// ExportConfig holds defaults for the export command.
type ExportConfig struct {
	Colormap string `yaml:"colormap"`
	StepMS   int    `yaml:"step_ms"`
	Scale    int    `yaml:"scale"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Level:      "info",
			MaxSizeMB:  10,
			MaxAgeDays: 7,
			MaxBackups: 3,
			Compress:   true,
		},
		Load: LoadSection{
			Extensions:           []string{".dcm"},
			OrderBySliceLocation: true,
			PrimaryKey:           "SliceLocation",
			FallbackKey:          "InstanceNumber",
		},
		Export: ExportConfig{
			Colormap: "gray",
			StepMS:   100,
			Scale:    1,
		},
	}
}

// LoadConfig loads configuration from a YAML file. The file must exist.
// Keys absent from the file keep their default values.
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

var validLevels = []string{"debug", "info", "warn", "error"}

// Validate checks every section and reports the first problem found.
func (c *Config) Validate() error {
	if !isValidLevel(c.Log.Level) {
		return fmt.Errorf("log.level: invalid level %q (valid: %s)", c.Log.Level, strings.Join(validLevels, ", "))
	}
	if c.Log.MaxSizeMB < 0 || c.Log.MaxAgeDays < 0 || c.Log.MaxBackups < 0 {
		return fmt.Errorf("log: rotation settings must be >= 0")
	}

	if _, err := util.GetTagByName(c.Load.PrimaryKey); err != nil {
		return fmt.Errorf("load.primary_key: %w", err)
	}
	if _, err := util.GetTagByName(c.Load.FallbackKey); err != nil {
		return fmt.Errorf("load.fallback_key: %w", err)
	}
	if strings.EqualFold(c.Load.PrimaryKey, c.Load.FallbackKey) {
		return fmt.Errorf("load: primary_key and fallback_key must differ, both are %q", c.Load.PrimaryKey)
	}
	if _, err := util.ParseSize(c.Load.MaxVolumeSize); err != nil {
		return fmt.Errorf("load.max_volume_size: %w", err)
	}

	if c.Export.Scale < 1 {
		return fmt.Errorf("export.scale must be >= 1, got %d", c.Export.Scale)
	}
	if c.Export.StepMS < 1 {
		return fmt.Errorf("export.step_ms must be >= 1, got %d", c.Export.StepMS)
	}
	return nil
}

func isValidLevel(level string) bool {
	for _, l := range validLevels {
		if strings.EqualFold(level, l) {
			return true
		}
	}
	return false
}

// ToLoadOptions converts the load section into assembler options. The
// config must have passed Validate.
func (c *Config) ToLoadOptions(logger *slog.Logger) (dicom.LoadOptions, error) {
	primary, err := util.GetTagByName(c.Load.PrimaryKey)
	if err != nil {
		return dicom.LoadOptions{}, fmt.Errorf("load.primary_key: %w", err)
	}
	fallback, err := util.GetTagByName(c.Load.FallbackKey)
	if err != nil {
		return dicom.LoadOptions{}, fmt.Errorf("load.fallback_key: %w", err)
	}
	maxBytes, err := util.ParseSize(c.Load.MaxVolumeSize)
	if err != nil {
		return dicom.LoadOptions{}, fmt.Errorf("load.max_volume_size: %w", err)
	}

	return dicom.LoadOptions{
		PreferFallbackKey: !c.Load.OrderBySliceLocation,
		PrimaryKey:        primary.Tag,
		FallbackKey:       fallback.Tag,
		Extensions:        c.Load.Extensions,
		MaxVolumeBytes:    maxBytes,
		Logger:            logger,
	}, nil
}
