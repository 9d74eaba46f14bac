package main

import (
	"context"
	"net/http"
	"time"

	"smsbridge/internal/constants"
)

type healthResponse struct {
	Status    string    `json:"status"`
	Channel   string    `json:"channel"`
	Store     string    `json:"store"`
	Timestamp time.Time `json:"timestamp"`
}

// handleHealth reports 200 while the message store answers a ping and 503
// otherwise. An unreachable store is invisible to channel callers, who only
// ever see an empty inbox.
func (s *Server) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), constants.DefaultHealthCheckTimeoutSec*time.Second)
		defer cancel()

		resp := healthResponse{
			Status:    "ok",
			Channel:   s.channel.Name(),
			Store:     "ok",
			Timestamp: s.now().UTC(),
		}
		status := http.StatusOK

		if s.store != nil {
			if err := s.store.Ping(ctx); err != nil {
				s.logger.WithError(err).Warn("Message store health check failed")
				resp.Status = "degraded"
				resp.Store = "unavailable"
				status = http.StatusServiceUnavailable
			}
		}

		s.writeJSON(w, r, status, resp)
	}
}
