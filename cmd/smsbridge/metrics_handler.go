package main

import (
	"encoding/json"
	"net/http"

	apperrors "smsbridge/internal/errors"
	"smsbridge/internal/metrics"
	"smsbridge/internal/service"
	"smsbridge/internal/tracing"

	"github.com/sirupsen/logrus"
)

// handleMetrics serves an uncached snapshot of the in-memory registry.
func (s *Server) handleMetrics() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snapshot := metrics.GetAllMetrics()

		body, err := json.MarshalIndent(snapshot, "", "  ")
		if err != nil {
			s.writeError(w, r, apperrors.Wrap(err, apperrors.ErrCodeInternalError, "failed to encode metrics snapshot"))
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(append(body, '\n')); err != nil {
			s.logger.WithError(err).Debug("Metrics client went away")
			return
		}

		s.logger.WithFields(logrus.Fields{
			service.LogFieldRequestID: tracing.GetRequestID(r.Context()),
			service.LogFieldCount:     len(snapshot.Counters) + len(snapshot.Timers) + len(snapshot.Gauges),
		}).Debug("Served metrics snapshot")
	}
}
