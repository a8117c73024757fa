package server

import "github.com/viant/hitl/service/stats"

// Option customises the server.
type Option func(*Server)

// WithAddr overrides the listen address, default ":8080".
func WithAddr(addr string) Option {
	return func(s *Server) {
		s.addr = addr
	}
}

// WithStats attaches a stats tracker backing the /api/stats endpoint.
func WithStats(tracker *stats.Tracker) Option {
	return func(s *Server) {
		s.tracker = tracker
	}
}
