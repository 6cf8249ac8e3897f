package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/quietmind/recall/internal/config"
	"github.com/quietmind/recall/internal/logger"
	"github.com/quietmind/recall/internal/server"
	"github.com/quietmind/recall/pkg/memory"
	"github.com/quietmind/recall/pkg/taxonomy"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the memory service",
	Long: `Run the memory service in the foreground. The service connects to the
database resolved from config or environment; when no database is
reachable it serves from an in-memory fallback and reports degraded
status.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	appLogger, err := logger.New(logger.Config{
		Level:     cfg.Logging.Level,
		File:      cfg.Logging.File,
		Console:   cfg.Logging.Console,
		Pretty:    cfg.Logging.Pretty,
		Redaction: cfg.Logging.Redaction,
	})
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer appLogger.Close()
	log := appLogger.Zerolog()

	tax, watcher, err := loadTaxonomy(cfg, log)
	if err != nil {
		return err
	}
	if watcher != nil {
		defer watcher.Stop()
	}

	pool := memory.NewPool(memory.PoolConfig{
		URL:            cfg.Database.URL,
		MaxConns:       cfg.Database.MaxConns,
		MinConns:       cfg.Database.MinConns,
		AcquireTimeout: cfg.Database.AcquireTimeout(),
		Logger:         log,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	svc, err := memory.NewService(ctx, memory.ServiceConfig{
		Pool:               pool,
		Taxonomy:           tax,
		Logger:             log,
		CandidateLimit:     cfg.Memory.CandidateLimit,
		MinPrimaryResults:  cfg.Memory.MinPrimaryResults,
		RelatedPerCategory: cfg.Memory.RelatedPerCategory,
		FallbackMaxPerUser: cfg.Memory.FallbackMaxPerUser,
	})
	cancel()
	if err != nil {
		return fmt.Errorf("failed to create memory service: %w", err)
	}
	defer svc.Close()

	var sweeper *memory.Sweeper
	if cfg.Retention.Enabled {
		sweeper, err = memory.NewSweeper(svc, memory.SweeperConfig{
			Schedule: cfg.Retention.Schedule,
			MaxAge:   cfg.Retention.MaxAge(),
			MaxUsage: cfg.Retention.MaxUsage,
			Logger:   log,
		})
		if err != nil {
			return fmt.Errorf("failed to create retention sweeper: %w", err)
		}
		if err := sweeper.Start(); err != nil {
			return fmt.Errorf("failed to start retention sweeper: %w", err)
		}
		defer sweeper.Stop()
	}

	srv, err := server.New(server.Options{
		Host: cfg.Server.Host,
		Port: cfg.Server.Port,
	}, svc, log)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info().Str("signal", sig.String()).Msg("Shutdown signal received")
		if err := srv.Stop(); err != nil {
			log.Error().Err(err).Msg("Server shutdown failed")
		}
	case err := <-errCh:
		if err != nil {
			return err
		}
	}

	return nil
}

// loadTaxonomy builds the category taxonomy: defaults, optionally replaced by
// a configured file and kept fresh by a file watcher.
func loadTaxonomy(cfg *config.Config, log zerolog.Logger) (*taxonomy.Taxonomy, *taxonomy.Watcher, error) {
	tax := taxonomy.Default()
	if cfg.Memory.TaxonomyPath == "" {
		return tax, nil, nil
	}

	loaded, err := taxonomy.LoadFile(cfg.Memory.TaxonomyPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load taxonomy file: %w", err)
	}
	tax.Replace(loaded)

	watcher, err := taxonomy.NewWatcher(tax, cfg.Memory.TaxonomyPath, log)
	if err != nil {
		log.Warn().Err(err).Msg("Taxonomy watcher unavailable, hot reload disabled")
		return tax, nil, nil
	}
	return tax, watcher, nil
}
