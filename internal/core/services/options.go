package services

import "time"

// ServiceOption configures the shared parts of a service.
type ServiceOption func(*BaseService)

// WithClock overrides the service clock.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *BaseService) {
		s.now = now
	}
}

func applyOptions(base *BaseService, options []ServiceOption) {
	for _, option := range options {
		option(base)
	}
}
