package main

import (
	"encoding/json"
	"io"
	"net/http"

	"smsbridge/internal/constants"
	apperrors "smsbridge/internal/errors"
	"smsbridge/internal/models"
	"smsbridge/internal/service"
	"smsbridge/internal/tracing"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// handleChannelCall serves one method call per POST.
func (s *Server) handleChannelCall() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := mux.Vars(r)["channel"]
		if name != s.channel.Name() {
			s.writeError(w, r, apperrors.NewNotFoundError("channel", name))
			return
		}

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, constants.MaxChannelRequestBytes))
		if err != nil {
			s.writeError(w, r, apperrors.NewValidationError("body", "request body is unreadable or too large"))
			return
		}

		if err := s.verifyChannelRequest(r, body); err != nil {
			s.writeError(w, r, apperrors.NewAuthError(err.Error()))
			return
		}

		var call models.MethodCall
		if err := json.Unmarshal(body, &call); err != nil {
			s.writeError(w, r, apperrors.NewValidationError("body", "malformed method call"))
			return
		}

		resp := s.channel.Handle(r.Context(), call.Method)
		envelope := resp.Envelope()
		envelope.ID = call.ID

		status := http.StatusOK
		if resp.Kind == models.ResponseError {
			status = http.StatusInternalServerError
		}
		s.writeJSON(w, r, status, envelope)
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	requestID := tracing.GetRequestID(r.Context())
	status := apperrors.HTTPStatusCode(err)

	apperrors.WrapLogger(s.logger).LogWarn(err, "Request failed", logrus.Fields{
		service.LogFieldRequestID:  requestID,
		service.LogFieldStatusCode: status,
		service.LogFieldURL:        r.URL.Path,
	})

	s.writeJSON(w, r, status, apperrors.ToHTTPResponse(err, requestID))
}

func (s *Server) writeJSON(w http.ResponseWriter, r *http.Request, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.WithFields(logrus.Fields{
			service.LogFieldRequestID: tracing.GetRequestID(r.Context()),
			"error":                   err,
		}).Error("Failed to encode response")
	}
}
