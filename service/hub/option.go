package hub

type Option func(*Service)

// WithObserverBuffer sets the per-observer event buffer size.
func WithObserverBuffer(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.buffer = size
		}
	}
}
