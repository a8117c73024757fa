package fs

import (
	"github.com/viant/afs"

	"github.com/viant/hitl/service/store"
)

type Option func(*Service)

// WithFS overrides the afs service (e.g. to point at the mem:// scheme in
// tests).
func WithFS(fs afs.Service) Option {
	return func(s *Service) { s.fs = fs }
}

// WithFeedBuffer sets the per-subscriber change-feed buffer size.
func WithFeedBuffer(size int) Option {
	return func(s *Service) { s.feed = store.NewFeed(size) }
}
