package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/viant/hitl/service/approval"
	"github.com/viant/hitl/service/hub"
	"github.com/viant/hitl/service/stats"
)

// Server exposes the approval engine over HTTP and WebSocket.
type Server struct {
	approvals *approval.Service
	hub       *hub.Service
	tracker   *stats.Tracker
	router    *mux.Router
	http      *http.Server
	addr      string
}

// New creates a server bound to the supplied approval manager and hub.
func New(approvals *approval.Service, notifications *hub.Service, options ...Option) *Server {
	s := &Server{
		approvals: approvals,
		hub:       notifications,
		addr:      ":8080",
	}
	for _, option := range options {
		option(s)
	}
	s.router = mux.NewRouter()
	s.registerRoutes()
	s.http = &http.Server{
		Addr:         s.addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
	return s
}

func (s *Server) registerRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/approvals", s.handleCreate).Methods(http.MethodPost)
	api.HandleFunc("/approvals", s.handleList).Methods(http.MethodGet)
	api.HandleFunc("/approvals/{id}", s.handleGet).Methods(http.MethodGet)
	api.HandleFunc("/approvals/{id}/approve", s.handleApprove).Methods(http.MethodPost)
	api.HandleFunc("/approvals/{id}/reject", s.handleReject).Methods(http.MethodPost)
	api.HandleFunc("/approvals/{id}/cancel", s.handleCancel).Methods(http.MethodPost)
	api.HandleFunc("/stats", s.handleStats).Methods(http.MethodGet)

	s.router.HandleFunc("/ws", s.handleWebSocket)
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
}

// Handler returns the root http.Handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe starts serving and blocks until the server stops.
func (s *Server) ListenAndServe() error {
	return s.http.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}
