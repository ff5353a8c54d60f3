// Package server exposes the assistant over HTTP: an OpenAI-compatible
// completions endpoint plus a health probe, with bearer authentication on
// everything except the probe.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tlum/assistant-backend/completion"
	"github.com/tlum/assistant-backend/logging"
)

// Options configure a Server.
type Options struct {
	// ChunkSize is the character count per streamed content slice.
	ChunkSize int
	Logger    logging.Logger
}

// Server is the HTTP front of the assistant. It owns routing, auth, and the
// wire encoding; the orchestrator owns everything behind that.
type Server struct {
	orchestrator *completion.Orchestrator
	serviceKey   string
	chunkSize    int
	logger       logging.Logger

	httpServer *http.Server
}

// New builds a server around an orchestrator. serviceKey is the bearer token
// every completions call must present.
func New(addr string, serviceKey string, orch *completion.Orchestrator, optFns ...func(o *Options)) *Server {
	opts := Options{
		ChunkSize: completion.DefaultChunkSize,
		Logger:    logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	s := &Server{
		orchestrator: orch,
		serviceKey:   serviceKey,
		chunkSize:    opts.ChunkSize,
		logger:       opts.Logger,
	}
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Routes builds the router. Exposed so tests can drive the handler directly.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.requestLogging)

	r.Get("/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		r.Use(s.requireBearer)
		r.Post("/v1/chat/completions", s.handleCompletions)
	})

	return r
}

// ListenAndServe blocks until the server stops. http.ErrServerClosed is
// reported as a clean exit.
func (s *Server) ListenAndServe() error {
	s.logger.Info("server.listening", "addr", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests within the context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
