package caplock

import (
	"github.com/rs/zerolog"
	"github.com/viant/caplock/event"
	"github.com/viant/caplock/journal"
	"github.com/viant/caplock/messaging"
	"github.com/viant/caplock/policy"
	"github.com/viant/caplock/registry"
)

// Option customises the runtime Service.
type Option func(s *Service)

// WithConfig sets the runtime configuration.
func WithConfig(config *Config) Option {
	return func(s *Service) {
		s.config = config
	}
}

// WithPolicy sets the violation-surfacing policy, overriding the
// configured mode (and carrying a FatalFunc, which Config cannot).
func WithPolicy(p *policy.Policy) Option {
	return func(s *Service) {
		s.policy = p
	}
}

// WithRegistry sets the allocation registry.
func WithRegistry(service *registry.Service) Option {
	return func(s *Service) {
		s.registry = service
	}
}

// WithQueue sets the provenance event queue.
func WithQueue(queue messaging.Queue[event.Event]) Option {
	return func(s *Service) {
		s.queue = queue
	}
}

// WithJournal sets the audit journal, overriding the configured URL.
func WithJournal(j *journal.Journal) Option {
	return func(s *Service) {
		s.journal = j
	}
}

// WithLogger sets the runtime logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
		s.loggerSet = true
	}
}
