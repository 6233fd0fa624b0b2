// Package config handles assetprep configuration loading and management.
package config

import (
	"errors"
	"fmt"

	"github.com/Faultbox/assetprep/internal/export"
	"github.com/Faultbox/assetprep/internal/issues"
	"github.com/Faultbox/assetprep/internal/logger"
)

// FileName is the config file name searched for in the working directory
// and the user config directory.
const FileName = "assetprep.yaml"

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid config")

// Config holds all assetprep settings.
type Config struct {
	Logging  LoggingConfig  `yaml:"logging"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Rules    issues.Rules   `yaml:"rules"`
	Export   export.Options `yaml:"export"`
	Naming   NamingConfig   `yaml:"naming"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level      string `yaml:"level"`
	LogFile    string `yaml:"log_file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// File returns the rotation settings for the log file.
func (l LoggingConfig) File() logger.FileConfig {
	return logger.FileConfig{
		Path:       l.LogFile,
		MaxSizeMB:  l.MaxSizeMB,
		MaxBackups: l.MaxBackups,
		MaxAgeDays: l.MaxAgeDays,
		Compress:   l.Compress,
	}
}

// AnalysisConfig holds scan settings.
type AnalysisConfig struct {
	Workers int `yaml:"workers"` // Concurrent host reads, below 2 is serial
	// AutoAdvisory makes "fix" also apply advisory remedies.
	AutoAdvisory bool `yaml:"auto_advisory"`
}

// NamingConfig holds the labels used for assets whose names sanitize to
// nothing.
type NamingConfig struct {
	FallbackPrefix string `yaml:"fallback_prefix"`
	ObjectPrefix   string `yaml:"object_prefix"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	file := logger.DefaultFileConfig("")
	return &Config{
		Logging: LoggingConfig{
			Level:      "info",
			LogFile:    "",
			MaxSizeMB:  file.MaxSizeMB,
			MaxBackups: file.MaxBackups,
			MaxAgeDays: file.MaxAgeDays,
			Compress:   file.Compress,
		},
		Analysis: AnalysisConfig{
			Workers: 4,
		},
		Rules: issues.Rules{
			PolygonBudget: 50000,
			MaxUVChannels: 1,
			RequireSuffix: true,
		},
		Export: export.DefaultOptions(),
		Naming: NamingConfig{
			FallbackPrefix: "Material",
			ObjectPrefix:   "Object",
		},
	}
}

// Validate checks values a config file or flag may have set out of range.
func (c *Config) Validate() error {
	if _, err := logger.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("%w: logging.level: %v", ErrInvalidConfig, err)
	}
	if c.Analysis.Workers < 0 {
		return fmt.Errorf("%w: analysis.workers must not be negative", ErrInvalidConfig)
	}
	if c.Rules.PolygonBudget < 0 || c.Rules.MaxUVChannels < 0 {
		return fmt.Errorf("%w: rules must not be negative", ErrInvalidConfig)
	}
	if err := c.Export.Validate(); err != nil {
		return fmt.Errorf("%w: export: %w", ErrInvalidConfig, err)
	}
	return nil
}
