package main

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"smsbridge/internal/constants"
	"smsbridge/internal/middleware"
	"smsbridge/internal/models"
	"smsbridge/internal/security"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

// ChannelHandler answers method calls addressed to one named channel.
type ChannelHandler interface {
	Name() string
	Handle(ctx context.Context, method string) models.CommandResponse
}

// HealthChecker reports whether the message store is reachable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// ConfigProvider returns the configuration currently in effect.
type ConfigProvider func() *models.Config

type Server struct {
	router  *mux.Router
	logger  *logrus.Logger
	config  ConfigProvider
	channel ChannelHandler
	store   HealthChecker
	keys    security.KeyCache
	now     func() time.Time
	server  *http.Server

	done     chan struct{}
	doneOnce sync.Once
}

func NewServer(config ConfigProvider, channel ChannelHandler, store HealthChecker, logger *logrus.Logger) *Server {
	s := &Server{
		router:  mux.NewRouter(),
		logger:  logger,
		config:  config,
		channel: channel,
		store:   store,
		now:     time.Now,
		done:    make(chan struct{}),
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(middleware.ObservabilityMiddleware(s.logger))
	s.router.Use(middleware.DetailedLoggingMiddleware(s.logger, middleware.DefaultDetailedLoggingConfig()))

	s.router.HandleFunc("/health", s.handleHealth()).Methods(http.MethodGet)
	s.router.HandleFunc("/metrics", s.handleMetrics()).Methods(http.MethodGet)

	// Registered on the root router so a wrong HTTP method yields 405.
	s.router.Handle("/channels/{channel}", middleware.ChannelObservabilityMiddleware(s.logger, "http")(s.handleChannelCall())).
		Methods(http.MethodPost)

	if s.config().Channel.WebSocketEnabled {
		s.router.Handle("/channels/{channel}/ws", middleware.ChannelObservabilityMiddleware(s.logger, "websocket")(s.handleChannelSocket())).
			Methods(http.MethodGet)
	}
}

func (s *Server) Start() error {
	cfg := s.config().Server
	port := cfg.Port
	if port == 0 {
		port = constants.DefaultServerPort
	}

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.router,
		ReadTimeout:  secondsOr(cfg.ReadTimeoutSec, constants.DefaultServerReadTimeoutSec),
		WriteTimeout: secondsOr(cfg.WriteTimeoutSec, constants.DefaultServerWriteTimeoutSec),
		IdleTimeout:  secondsOr(cfg.IdleTimeoutSec, constants.DefaultServerIdleTimeoutSec),
	}

	s.logger.Infof("Starting server on port %d", port)
	return s.server.ListenAndServe()
}

// Shutdown stops accepting requests and tells open WebSocket sessions to end.
func (s *Server) Shutdown(ctx context.Context) error {
	s.doneOnce.Do(func() { close(s.done) })
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func secondsOr(value, fallback int) time.Duration {
	if value <= 0 {
		value = fallback
	}
	return time.Duration(value) * time.Second
}
