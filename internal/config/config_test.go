package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancegreer/tactics/internal/config"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, 12, cfg.Rules.GridWidth)
	assert.Equal(t, 50, cfg.Rules.MaxRounds)
	assert.True(t, cfg.AI.Enabled)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "skirmish.yaml")
	doc := `
logging:
  level: debug
  format: json
rules:
  grid_width: 20
  grid_height: 10
ai:
  log_reasoning: false
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, 20, cfg.Rules.GridWidth)
	assert.Equal(t, 10, cfg.Rules.GridHeight)
	assert.Equal(t, 50, cfg.Rules.MaxRounds, "unset keys keep defaults")
	assert.False(t, cfg.AI.LogReasoning)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SKIRMISH_LOGGING_LEVEL", "warn")
	t.Setenv("SKIRMISH_RULES_MAX_ROUNDS", "5")

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, 5, cfg.Rules.MaxRounds)
}

func TestValidate_AggregatesViolations(t *testing.T) {
	cfg := config.Config{
		Logging: config.LoggingConfig{Level: "loud", Format: "xml"},
		Rules:   config.RulesConfig{GridWidth: 0, GridHeight: 8, MaxRounds: 0},
	}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logging.level")
	assert.Contains(t, err.Error(), "logging.format")
	assert.Contains(t, err.Error(), "rules.grid_width")
	assert.Contains(t, err.Error(), "rules.max_rounds")
}

func TestLoad_RejectsInvalidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("logging:\n  level: silly\n"), 0o644))
	_, err := config.Load(path)
	assert.Error(t, err)
}
