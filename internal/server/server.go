// Package server exposes the dashboard's HTTP API: module listing and
// invocation, the generated tool catalog and the conversational agent.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/adpulse/adpulse/internal/agent"
	"github.com/adpulse/adpulse/internal/modules"
)

// Server is the HTTP boundary over the module service and the agent.
type Server struct {
	svc     *modules.Service
	catalog *agent.Catalog
	orch    *agent.Orchestrator
	log     *zap.Logger
	server  *http.Server
}

// New builds the server on port.
func New(port int, svc *modules.Service, catalog *agent.Catalog, orch *agent.Orchestrator, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Server{
		svc:     svc,
		catalog: catalog,
		orch:    orch,
		log:     log,
	}
	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/modules", s.handleListModules)
	mux.HandleFunc("POST /api/modules/{id}/run", s.handleRunModule)
	mux.HandleFunc("GET /api/tools", s.handleTools)
	mux.HandleFunc("POST /api/agent/ask", s.handleAsk)

	return corsMiddleware(mux)
}

// ListenAndServe blocks serving the API until Shutdown.
func (s *Server) ListenAndServe() error {
	s.log.Info("http server listening", zap.String("addr", s.server.Addr))
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// Shutdown drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
