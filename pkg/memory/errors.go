package memory

import "errors"

// Error taxonomy. Callers classify with errors.Is.
var (
	// ErrNoConnString means no database URL was found in any of the
	// documented environment variables. Fatal at initialization; the caller
	// may catch it to switch into degraded mode.
	ErrNoConnString = errors.New("no database connection string configured")

	// ErrNotInitialized means a pool operation ran before Initialize.
	ErrNotInitialized = errors.New("connection pool not initialized")

	// ErrPoolTimeout means connection acquisition timed out or the pool is
	// exhausted. Retryable: read paths degrade to empty results, write paths
	// propagate it.
	ErrPoolTimeout = errors.New("connection pool acquisition timed out")

	// ErrQueryFailed wraps read-side query errors. Logged and treated as an
	// empty result for the affected category only.
	ErrQueryFailed = errors.New("query failed")

	// ErrNotFound means the referenced record does not exist.
	ErrNotFound = errors.New("memory record not found")
)
