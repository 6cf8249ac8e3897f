package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// SweeperConfig configures the retention sweeper.
type SweeperConfig struct {
	// Schedule is a standard 5-field cron expression. Defaults to 03:30 daily.
	Schedule string
	// MaxAge is how old a record must be before it is prune-eligible.
	MaxAge time.Duration
	// MaxUsage is the highest usage_frequency still considered unused.
	MaxUsage int
	Logger   zerolog.Logger
}

// Sweeper periodically removes old, never-used memories so stale context does
// not accumulate forever. Pruning is best-effort maintenance: failures are
// logged and the next run retries.
type Sweeper struct {
	svc    *Service
	cfg    SweeperConfig
	cron   *cron.Cron
	logger zerolog.Logger
}

// NewSweeper validates the schedule and builds the sweeper without starting it.
func NewSweeper(svc *Service, cfg SweeperConfig) (*Sweeper, error) {
	if cfg.Schedule == "" {
		cfg.Schedule = "30 3 * * *"
	}
	if cfg.MaxAge <= 0 {
		cfg.MaxAge = 180 * 24 * time.Hour
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	if _, err := parser.Parse(cfg.Schedule); err != nil {
		return nil, fmt.Errorf("invalid retention schedule %q: %w", cfg.Schedule, err)
	}

	return &Sweeper{
		svc:    svc,
		cfg:    cfg,
		cron:   cron.New(),
		logger: cfg.Logger,
	}, nil
}

// Start schedules the sweep.
func (s *Sweeper) Start() error {
	if _, err := s.cron.AddFunc(s.cfg.Schedule, s.sweep); err != nil {
		return fmt.Errorf("failed to schedule retention sweep: %w", err)
	}
	s.cron.Start()
	s.logger.Info().
		Str("schedule", s.cfg.Schedule).
		Dur("max_age", s.cfg.MaxAge).
		Msg("Retention sweeper started")
	return nil
}

// Stop halts scheduling and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Sweeper) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	removed, err := s.svc.Prune(ctx, s.cfg.MaxAge, s.cfg.MaxUsage)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Retention sweep failed")
		return
	}
	if removed > 0 {
		s.logger.Info().Int64("removed", removed).Msg("Retention sweep completed")
	}
}
