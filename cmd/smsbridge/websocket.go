package main

import (
	"context"
	"net/http"
	"time"

	"smsbridge/internal/constants"
	apperrors "smsbridge/internal/errors"
	"smsbridge/internal/models"
	"smsbridge/internal/service"
	"smsbridge/internal/tracing"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// handleChannelSocket upgrades to a WebSocket carrying one method call per
// text frame. The upgrade request itself is signed over an empty body.
func (s *Server) handleChannelSocket() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := mux.Vars(r)["channel"]
		if name != s.channel.Name() {
			s.writeError(w, r, apperrors.NewNotFoundError("channel", name))
			return
		}

		if err := s.verifyChannelRequest(r, nil); err != nil {
			s.writeError(w, r, apperrors.NewAuthError(err.Error()))
			return
		}

		// Server read/write timeouts would otherwise cut long-lived sessions.
		rc := http.NewResponseController(w)
		_ = rc.SetReadDeadline(time.Time{})
		_ = rc.SetWriteDeadline(time.Time{})

		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			s.logger.WithError(err).Warn("WebSocket upgrade failed")
			return
		}
		defer conn.CloseNow()
		conn.SetReadLimit(constants.MaxChannelRequestBytes)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()
		go func() {
			select {
			case <-s.done:
				conn.Close(websocket.StatusGoingAway, "server shutting down")
				cancel()
			case <-ctx.Done():
			}
		}()

		s.serveSocket(ctx, conn)
	}
}

// serveSocket answers frames strictly in arrival order until the peer
// closes, a frame cannot be decoded, or ctx ends.
func (s *Server) serveSocket(ctx context.Context, conn *websocket.Conn) {
	logger := s.logger.WithFields(logrus.Fields{
		service.LogFieldRequestID: tracing.GetRequestID(ctx),
		service.LogFieldChannel:   s.channel.Name(),
	})

	for {
		var call models.MethodCall
		if err := wsjson.Read(ctx, conn, &call); err != nil {
			switch {
			case isClientClose(err):
				logger.Debug("WebSocket closed by client")
			case ctx.Err() != nil:
				logger.Debug("WebSocket session ended")
			default:
				logger.WithError(err).Warn("Failed to read WebSocket frame")
			}
			return
		}

		envelope := s.channel.Handle(ctx, call.Method).Envelope()
		envelope.ID = call.ID
		if envelope.ID == "" {
			envelope.ID = uuid.NewString()
		}

		if err := wsjson.Write(ctx, conn, envelope); err != nil {
			logger.WithError(err).Warn("Failed to write WebSocket frame")
			return
		}
	}
}

func isClientClose(err error) bool {
	switch websocket.CloseStatus(err) {
	case websocket.StatusNormalClosure, websocket.StatusGoingAway:
		return true
	}
	return false
}
