package memory

import "github.com/viant/hitl/service/store"

type Option func(*Service)

// WithFeedBuffer sets the per-subscriber change-feed buffer size.
func WithFeedBuffer(size int) Option {
	return func(s *Service) { s.feed = store.NewFeed(size) }
}
