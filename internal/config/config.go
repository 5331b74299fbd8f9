// Package config provides Viper-based configuration loading for the
// skirmish engine and its demo binary.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is the log output format: "json" or "console".
	Format string `mapstructure:"format"`
}

// RulesConfig holds combat-rule settings and content locations.
type RulesConfig struct {
	// ArchetypeDir is an optional directory of archetype YAML files
	// layered over the compiled-in defaults.
	ArchetypeDir string `mapstructure:"archetype_dir"`
	// ConditionDir is an optional directory of condition YAML files
	// layered over the compiled-in defaults.
	ConditionDir string `mapstructure:"condition_dir"`
	// GridWidth and GridHeight size the demo battlefield in cells.
	GridWidth  int `mapstructure:"grid_width"`
	GridHeight int `mapstructure:"grid_height"`
	// MaxRounds caps an auto-played encounter before it is called off.
	MaxRounds int `mapstructure:"max_rounds"`
}

// AIConfig holds tactical-AI settings.
type AIConfig struct {
	// Enabled drives both sides with the planner when true.
	Enabled bool `mapstructure:"enabled"`
	// LogReasoning emits each decision's reasoning trail at info level.
	LogReasoning bool `mapstructure:"log_reasoning"`
}

// Config is the top-level application configuration.
type Config struct {
	Logging LoggingConfig `mapstructure:"logging"`
	Rules   RulesConfig   `mapstructure:"rules"`
	AI      AIConfig      `mapstructure:"ai"`
}

// Validate checks all configuration invariants.
//
// Postcondition: Returns nil if configuration is valid, or an error
// describing all violations.
func (c Config) Validate() error {
	var errs []string

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		errs = append(errs, fmt.Sprintf("logging.level must be one of [debug, info, warn, error], got %q", c.Logging.Level))
	}
	validFormats := map[string]bool{"json": true, "console": true}
	if !validFormats[c.Logging.Format] {
		errs = append(errs, fmt.Sprintf("logging.format must be one of [json, console], got %q", c.Logging.Format))
	}

	if c.Rules.GridWidth < 1 {
		errs = append(errs, fmt.Sprintf("rules.grid_width must be >= 1, got %d", c.Rules.GridWidth))
	}
	if c.Rules.GridHeight < 1 {
		errs = append(errs, fmt.Sprintf("rules.grid_height must be >= 1, got %d", c.Rules.GridHeight))
	}
	if c.Rules.MaxRounds < 1 {
		errs = append(errs, fmt.Sprintf("rules.max_rounds must be >= 1, got %d", c.Rules.MaxRounds))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Load reads configuration from the given file path, applies
// environment variable overrides, and validates the result. An empty
// path loads defaults plus environment overrides only.
//
// Postcondition: Returns a valid Config or a non-nil error.
func Load(path string) (Config, error) {
	v := viper.New()

	// Environment variable overrides with SKIRMISH_ prefix
	v.SetEnvPrefix("SKIRMISH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
	}
	return LoadFromViper(v)
}

// LoadFromViper builds a Config from an already-configured Viper
// instance.
//
// Precondition: v must be non-nil.
// Postcondition: Returns a valid Config or a non-nil error.
func LoadFromViper(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("rules.archetype_dir", "")
	v.SetDefault("rules.condition_dir", "")
	v.SetDefault("rules.grid_width", 12)
	v.SetDefault("rules.grid_height", 12)
	v.SetDefault("rules.max_rounds", 50)

	v.SetDefault("ai.enabled", true)
	v.SetDefault("ai.log_reasoning", true)
}
