package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/vr-engine/generic"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()

	require.NoError(t, cfg.Validate())
	assert.Equal(t, "nearest", cfg.Rules.Rounding)
	assert.Equal(t, "business", cfg.Rules.Basis)
	assert.True(t, cfg.Rules.ProportionalTermination)
	assert.Equal(t, "VR_MENSAL_RESULT.csv", cfg.Paths.TechnicalFile)
	assert.Equal(t, "vr.events", cfg.RabbitMQ.Exchange)

	rules, err := cfg.Rules.ToRules()
	require.NoError(t, err)
	assert.Equal(t, "0.8", rules.EmployerPct.String())
	assert.Equal(t, "0.2", rules.EmployeePct.String())
}

func TestValidate_RejectsBadRules(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(*Config)
		field string
	}{
		{"rounding", func(c *Config) { c.Rules.Rounding = "half-up" }, "Config.Rules.Rounding"},
		{"basis", func(c *Config) { c.Rules.Basis = "weekly" }, "Config.Rules.Basis"},
		{"share not numeric", func(c *Config) { c.Rules.EmployerShare = "eighty" }, "Config.Rules.EmployerShare"},
		{"shares do not sum to one", func(c *Config) { c.Rules.EmployerShare = "0.70" }, "shares"},
		{"log level", func(c *Config) { c.Logging.Level = "loud" }, "Config.Logging.Level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.edit(cfg)

			err := cfg.Validate()

			require.Error(t, err)
			assert.ErrorIs(t, err, generic.ErrInvalidConfiguration)
			var cfgErr *generic.ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.field, cfgErr.Field)
		})
	}
}

func TestLoad_FileAndEnvironment(t *testing.T) {
	// GIVEN: A config file choosing floor rounding and an env override for the basis
	// WHEN: Loading
	// THEN: Both are applied on top of the defaults

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "config"), 0o755))
	yaml := "rules:\n  rounding: floor\n  period_label: \"05/2025\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config", "vr-test.yaml"), []byte(yaml), 0o644))

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("VR_RULES_BASIS", "calendar")

	cfg, err := Load("vr-test")
	require.NoError(t, err)

	assert.Equal(t, "floor", cfg.Rules.Rounding)
	assert.Equal(t, "calendar", cfg.Rules.Basis)
	assert.Equal(t, "05/2025", cfg.Rules.PeriodLabel)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoad_InvalidEnvironmentValueFailsFast(t *testing.T) {
	t.Setenv("VR_RULES_ROUNDING", "sometimes")

	_, err := Load("does-not-exist")

	assert.ErrorIs(t, err, generic.ErrInvalidConfiguration)
}
