package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 8190, cfg.Server.Port)
	assert.Equal(t, int32(10), cfg.Database.MaxConns)
	assert.Equal(t, 5*time.Second, cfg.Database.AcquireTimeout())
	assert.Equal(t, 2400, cfg.Memory.MaxContextTokens)
	assert.Equal(t, "30 3 * * *", cfg.Retention.Schedule)
	assert.Equal(t, 180*24*time.Hour, cfg.Retention.MaxAge())
	assert.False(t, cfg.Retention.Enabled)

	assert.NoError(t, Validate(cfg))
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	require.NoError(t, err)

	assert.Equal(t, 8190, cfg.Server.Port)
	assert.NotEmpty(t, cfg.DataDir)
	assert.NotEmpty(t, cfg.Logging.File)
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recall.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"server": {"port": 9999},
		"database": {"max_conns": 4},
		"memory": {"max_context_tokens": 1200}
	}`), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, int32(4), cfg.Database.MaxConns)
	assert.Equal(t, 1200, cfg.Memory.MaxContextTokens)

	// Untouched sections keep defaults.
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "recall.json")
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"bad port", func(c *Config) { c.Server.Port = 0 }},
		{"zero max conns", func(c *Config) { c.Database.MaxConns = 0 }},
		{"min above max", func(c *Config) { c.Database.MinConns = 99 }},
		{"zero acquire timeout", func(c *Config) { c.Database.AcquireTimeoutSeconds = 0 }},
		{"zero context tokens", func(c *Config) { c.Memory.MaxContextTokens = 0 }},
		{"zero candidate limit", func(c *Config) { c.Memory.CandidateLimit = 0 }},
		{"bad log level", func(c *Config) { c.Logging.Level = "loud" }},
		{"retention without age", func(c *Config) {
			c.Retention.Enabled = true
			c.Retention.MaxAgeDays = 0
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			assert.Error(t, Validate(cfg))
		})
	}
}

func TestGetConfigPath(t *testing.T) {
	explicit := NewLoader("/tmp/custom.json")
	assert.Equal(t, "/tmp/custom.json", explicit.GetConfigPath())

	implicit := NewLoader("")
	assert.Contains(t, implicit.GetConfigPath(), ".recall")
}
