package memory

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// connStringEnvVars is the documented resolution order for the database URL.
var connStringEnvVars = []string{
	"DATABASE_URL",
	"RECALL_DATABASE_URL",
	"POSTGRES_URL",
	"PG_CONNECTION_STRING",
}

// localHostnames never require SSL.
var localHostnames = map[string]bool{
	"localhost": true,
	"127.0.0.1": true,
	"::1":       true,
}

// PoolConfig configures the connection pool.
type PoolConfig struct {
	// URL overrides environment resolution when set.
	URL            string
	MaxConns       int32
	MinConns       int32
	AcquireTimeout time.Duration
	Logger         zerolog.Logger
}

// Pool is a lazily-initialized pooled handle to the durable store. It is
// explicitly constructed and injected, never a process-wide global; tests
// build isolated instances against disposable databases.
type Pool struct {
	cfg  PoolConfig
	pool *pgxpool.Pool
	mu   sync.Mutex
}

// ResolveDatabaseURL walks the documented environment variable list and
// returns the first non-empty value. Absence of all candidates is
// ErrNoConnString.
func ResolveDatabaseURL() (string, error) {
	for _, name := range connStringEnvVars {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w (checked %s)", ErrNoConnString, strings.Join(connStringEnvVars, ", "))
}

// NewPool creates an uninitialized pool. The first Initialize call connects.
func NewPool(cfg PoolConfig) *Pool {
	if cfg.MaxConns <= 0 {
		cfg.MaxConns = 10
	}
	if cfg.AcquireTimeout <= 0 {
		cfg.AcquireTimeout = 5 * time.Second
	}
	return &Pool{cfg: cfg}
}

// Initialize connects the pool. Idempotent: subsequent calls are no-ops.
// Returns ErrNoConnString (wrapped) when no connection string is available.
func (p *Pool) Initialize(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.pool != nil {
		return nil
	}

	connString := p.cfg.URL
	if connString == "" {
		resolved, err := ResolveDatabaseURL()
		if err != nil {
			return err
		}
		connString = resolved
	}

	connString, err := applySSLMode(connString)
	if err != nil {
		return fmt.Errorf("invalid connection string: %w", err)
	}

	poolCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return fmt.Errorf("failed to parse connection string: %w", err)
	}
	poolCfg.MaxConns = p.cfg.MaxConns
	poolCfg.MinConns = p.cfg.MinConns

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}

	p.pool = pool
	p.cfg.Logger.Info().
		Int32("max_conns", p.cfg.MaxConns).
		Str("host", poolCfg.ConnConfig.Host).
		Msg("Connection pool initialized")
	return nil
}

// applySSLMode infers the SSL requirement when the connection string does not
// state one: local hostnames disable SSL, everything else requires it.
func applySSLMode(connString string) (string, error) {
	u, err := url.Parse(connString)
	if err != nil {
		return "", err
	}

	q := u.Query()
	if q.Get("sslmode") != "" {
		return connString, nil
	}

	host := u.Hostname()
	if localHostnames[host] || strings.HasSuffix(host, ".local") {
		q.Set("sslmode", "disable")
	} else {
		q.Set("sslmode", "require")
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// WithTx acquires a connection, runs fn inside a transaction and commits,
// rolling back on error. Write-side callers propagate failures.
func (p *Pool) WithTx(ctx context.Context, fn func(pgx.Tx) error) error {
	pool, err := p.active()
	if err != nil {
		return err
	}

	acquireCtx, cancel := context.WithTimeout(ctx, p.cfg.AcquireTimeout)
	defer cancel()

	conn, err := pool.Acquire(acquireCtx)
	if err != nil {
		return p.acquireError(err)
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			p.cfg.Logger.Warn().Err(rbErr).Msg("Transaction rollback failed")
		}
		return err
	}
	return tx.Commit(ctx)
}

// AcquireRead returns a single pooled connection for a read path. The caller
// must Release it. Acquisition failures are retryable/degradable.
func (p *Pool) AcquireRead(ctx context.Context) (*pgxpool.Conn, error) {
	pool, err := p.active()
	if err != nil {
		return nil, err
	}

	acquireCtx, cancel := context.WithTimeout(ctx, p.cfg.AcquireTimeout)
	defer cancel()

	conn, err := pool.Acquire(acquireCtx)
	if err != nil {
		return nil, p.acquireError(err)
	}
	return conn, nil
}

// Health pings the store over a pooled connection.
func (p *Pool) Health(ctx context.Context) error {
	pool, err := p.active()
	if err != nil {
		return err
	}
	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("health ping failed: %w", err)
	}
	return nil
}

// Stat returns a pool usage snapshot, or nil before initialization.
func (p *Pool) Stat() *PoolStats {
	p.mu.Lock()
	pool := p.pool
	p.mu.Unlock()
	if pool == nil {
		return nil
	}
	st := pool.Stat()
	return &PoolStats{
		TotalConns:    st.TotalConns(),
		IdleConns:     st.IdleConns(),
		AcquiredConns: st.AcquiredConns(),
		MaxConns:      st.MaxConns(),
	}
}

// Initialized reports whether the pool has connected.
func (p *Pool) Initialized() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pool != nil
}

// Close drains and closes the pool.
func (p *Pool) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pool != nil {
		p.pool.Close()
		p.pool = nil
	}
}

func (p *Pool) active() (*pgxpool.Pool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pool == nil {
		return nil, ErrNotInitialized
	}
	return p.pool, nil
}

func (p *Pool) acquireError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrPoolTimeout, err)
	}
	return fmt.Errorf("failed to acquire connection: %w", err)
}
