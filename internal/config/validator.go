package config

import "fmt"

// Validate checks config consistency. It does not verify that the database is
// reachable; the service degrades at runtime instead.
func Validate(cfg *Config) error {
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", cfg.Server.Port)
	}
	if cfg.Database.MaxConns < 1 {
		return fmt.Errorf("database max_conns must be at least 1, got %d", cfg.Database.MaxConns)
	}
	if cfg.Database.MinConns < 0 || cfg.Database.MinConns > cfg.Database.MaxConns {
		return fmt.Errorf("database min_conns must be between 0 and max_conns, got %d", cfg.Database.MinConns)
	}
	if cfg.Database.AcquireTimeoutSeconds < 1 {
		return fmt.Errorf("database acquire_timeout_seconds must be at least 1, got %d", cfg.Database.AcquireTimeoutSeconds)
	}
	if cfg.Memory.MaxContextTokens < 1 {
		return fmt.Errorf("memory max_context_tokens must be positive, got %d", cfg.Memory.MaxContextTokens)
	}
	if cfg.Memory.CandidateLimit < 1 {
		return fmt.Errorf("memory candidate_limit must be positive, got %d", cfg.Memory.CandidateLimit)
	}
	if cfg.Retention.Enabled {
		if cfg.Retention.MaxAgeDays < 1 {
			return fmt.Errorf("retention max_age_days must be positive, got %d", cfg.Retention.MaxAgeDays)
		}
		if cfg.Retention.MaxUsage < 0 {
			return fmt.Errorf("retention max_usage must not be negative, got %d", cfg.Retention.MaxUsage)
		}
	}
	switch cfg.Logging.Level {
	case "", "trace", "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return fmt.Errorf("invalid logging level: %q", cfg.Logging.Level)
	}
	return nil
}
