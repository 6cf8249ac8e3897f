package server

// storeRequest is the body of POST /v1/memory/store.
type storeRequest struct {
	UserID   string         `json:"user_id"`
	Content  string         `json:"content"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// storeResponse mirrors memory.StoreResult with a top-level success flag.
type storeResponse struct {
	Success  bool   `json:"success"`
	ID       string `json:"id,omitempty"`
	Category string `json:"category,omitempty"`
	Degraded bool   `json:"degraded"`
	Error    string `json:"error,omitempty"`
}

// retrieveRequest is the body of POST /v1/memory/retrieve.
type retrieveRequest struct {
	UserID    string `json:"user_id"`
	Query     string `json:"query"`
	MaxTokens int    `json:"max_tokens,omitempty"`
}

type retrieveResponse struct {
	Success      bool   `json:"success"`
	ContextFound bool   `json:"context_found"`
	Memories     string `json:"memories"`
	MemoryCount  int    `json:"memory_count"`
	TotalTokens  int    `json:"total_tokens"`
	Category     string `json:"category,omitempty"`
	Degraded     bool   `json:"degraded"`
	Error        string `json:"error,omitempty"`
}

type statsResponse struct {
	Success    bool           `json:"success"`
	UserID     string         `json:"user_id"`
	Categories map[string]int `json:"categories"`
	Error      string         `json:"error,omitempty"`
}

type healthResponse struct {
	Success     bool       `json:"success"`
	Status      string     `json:"status"`
	Initialized bool       `json:"initialized"`
	Degraded    bool       `json:"degraded"`
	Pool        *poolStats `json:"pool,omitempty"`
	Uptime      float64    `json:"uptime_seconds"`
	Timestamp   int64      `json:"timestamp"`
}

type poolStats struct {
	TotalConns    int32 `json:"total_conns"`
	AcquiredConns int32 `json:"acquired_conns"`
	IdleConns     int32 `json:"idle_conns"`
	MaxConns      int32 `json:"max_conns"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}
