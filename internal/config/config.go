// Package config defines and loads the application configuration.
package config

import "time"

// Config is the main recall configuration.
type Config struct {
	Database  DatabaseConfig  `json:"database" mapstructure:"database"`
	Server    ServerConfig    `json:"server" mapstructure:"server"`
	Logging   LoggingConfig   `json:"logging" mapstructure:"logging"`
	Memory    MemoryConfig    `json:"memory" mapstructure:"memory"`
	Retention RetentionConfig `json:"retention" mapstructure:"retention"`

	// DataDir holds logs and local state.
	DataDir string `json:"data_dir" mapstructure:"data_dir"`
}

// DatabaseConfig holds connection pool settings. URL is optional: when empty
// the pool resolves it from the documented environment variables.
type DatabaseConfig struct {
	URL                   string `json:"url" mapstructure:"url"`
	MaxConns              int32  `json:"max_conns" mapstructure:"max_conns"`
	MinConns              int32  `json:"min_conns" mapstructure:"min_conns"`
	AcquireTimeoutSeconds int    `json:"acquire_timeout_seconds" mapstructure:"acquire_timeout_seconds"`
}

// AcquireTimeout returns the acquisition timeout as a duration.
func (d DatabaseConfig) AcquireTimeout() time.Duration {
	return time.Duration(d.AcquireTimeoutSeconds) * time.Second
}

// ServerConfig holds the HTTP surface settings.
type ServerConfig struct {
	Host string `json:"host" mapstructure:"host"`
	Port int    `json:"port" mapstructure:"port"`
}

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level     string `json:"level" mapstructure:"level"`
	File      string `json:"file" mapstructure:"file"`
	Console   bool   `json:"console" mapstructure:"console"`
	Pretty    bool   `json:"pretty" mapstructure:"pretty"`
	Redaction bool   `json:"redaction" mapstructure:"redaction"`
}

// MemoryConfig holds retrieval tuning knobs.
type MemoryConfig struct {
	MaxContextTokens   int    `json:"max_context_tokens" mapstructure:"max_context_tokens"`
	CandidateLimit     int    `json:"candidate_limit" mapstructure:"candidate_limit"`
	MinPrimaryResults  int    `json:"min_primary_results" mapstructure:"min_primary_results"`
	RelatedPerCategory int    `json:"related_per_category" mapstructure:"related_per_category"`
	TaxonomyPath       string `json:"taxonomy_path" mapstructure:"taxonomy_path"`
	FallbackMaxPerUser int    `json:"fallback_max_per_user" mapstructure:"fallback_max_per_user"`
}

// RetentionConfig holds the retention sweeper settings.
type RetentionConfig struct {
	Enabled    bool   `json:"enabled" mapstructure:"enabled"`
	Schedule   string `json:"schedule" mapstructure:"schedule"`
	MaxAgeDays int    `json:"max_age_days" mapstructure:"max_age_days"`
	MaxUsage   int    `json:"max_usage" mapstructure:"max_usage"`
}

// MaxAge returns the retention age as a duration.
func (r RetentionConfig) MaxAge() time.Duration {
	return time.Duration(r.MaxAgeDays) * 24 * time.Hour
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			MaxConns:              10,
			MinConns:              1,
			AcquireTimeoutSeconds: 5,
		},
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8190,
		},
		Logging: LoggingConfig{
			Level:     "info",
			Console:   true,
			Pretty:    true,
			Redaction: true,
		},
		Memory: MemoryConfig{
			MaxContextTokens:   2400,
			CandidateLimit:     15,
			MinPrimaryResults:  10,
			RelatedPerCategory: 5,
			FallbackMaxPerUser: 500,
		},
		Retention: RetentionConfig{
			Enabled:    false,
			Schedule:   "30 3 * * *",
			MaxAgeDays: 180,
			MaxUsage:   0,
		},
	}
}
