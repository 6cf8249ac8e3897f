package server

import (
	"net/http"
	"time"
)

func (s *Server) handleStore(w http.ResponseWriter, r *http.Request) {
	var req storeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result := s.service.Store(r.Context(), req.UserID, req.Content, req.Metadata)

	resp := storeResponse{
		Success:  result.Success,
		ID:       result.ID,
		Category: result.Category,
		Degraded: result.Degraded,
		Error:    result.Error,
	}

	status := http.StatusOK
	if !result.Success {
		status = http.StatusBadRequest
	}
	writeJSON(w, status, resp)
}

func (s *Server) handleRetrieve(w http.ResponseWriter, r *http.Request) {
	var req retrieveRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result := s.service.Retrieve(r.Context(), req.UserID, req.Query, req.MaxTokens)

	writeJSON(w, http.StatusOK, retrieveResponse{
		Success:      true,
		ContextFound: result.ContextFound,
		Memories:     result.Memories,
		MemoryCount:  result.MemoryCount,
		TotalTokens:  result.TotalTokens,
		Category:     result.Category,
		Degraded:     result.Degraded,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}

	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "user_id query parameter is required"})
		return
	}

	counts, err := s.service.Stats(r.Context(), userID)
	if err != nil {
		s.logger.Warn().Err(err).Str("user", userID).Msg("Stats query failed")
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to read stats"})
		return
	}

	writeJSON(w, http.StatusOK, statsResponse{
		Success:    true,
		UserID:     userID,
		Categories: counts,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}

	health := s.service.Health(r.Context())

	resp := healthResponse{
		Success:     true,
		Status:      health.Status,
		Initialized: health.Initialized,
		Degraded:    health.Degraded,
		Uptime:      time.Since(s.startTime).Seconds(),
		Timestamp:   time.Now().UnixMilli(),
	}
	if health.Pool != nil {
		resp.Pool = &poolStats{
			TotalConns:    health.Pool.TotalConns,
			AcquiredConns: health.Pool.AcquiredConns,
			IdleConns:     health.Pool.IdleConns,
			MaxConns:      health.Pool.MaxConns,
		}
	}

	status := http.StatusOK
	if health.Status == "unhealthy" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}
