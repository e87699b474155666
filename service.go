package caplock

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/rs/zerolog"
	"github.com/viant/caplock/event"
	"github.com/viant/caplock/gate"
	"github.com/viant/caplock/internal/clock"
	"github.com/viant/caplock/journal"
	"github.com/viant/caplock/messaging"
	"github.com/viant/caplock/messaging/memory"
	"github.com/viant/caplock/model/allocation"
	"github.com/viant/caplock/observability"
	"github.com/viant/caplock/policy"
	"github.com/viant/caplock/registry"
	"github.com/viant/caplock/tracing"
)

// ErrLockdown is returned by Register while the runtime refuses new
// registrations after a violation detected under the deny policy.
var ErrLockdown = errors.New("caplock: runtime in lockdown after violation")

// Service is the runtime façade. It wraps the pure registry with policy,
// observability and provenance event emission, and owns the boundary gate
// handed to untrusted code.
type Service struct {
	config    *Config
	policy    *policy.Policy
	logger    zerolog.Logger
	loggerSet bool
	registry  *registry.Service
	queue     messaging.Queue[event.Event]
	publisher *event.Publisher
	journal   *journal.Journal
	listener  *event.Listener
	gate      *gate.Gate
	lockdown  atomic.Bool
}

// New creates a runtime Service. Without options it runs with the package
// defaults: fatal violation policy, in-memory event queue, no journal.
func New(options ...Option) (*Service, error) {
	ret := &Service{}
	for _, option := range options {
		option(ret)
	}
	if err := ret.init(); err != nil {
		return nil, err
	}
	return ret, nil
}

func (s *Service) init() error {
	if s.config == nil {
		s.config = DefaultConfig()
	}
	if err := s.config.Validate(); err != nil {
		return err
	}
	if !s.loggerSet {
		s.logger = observability.InitLogger("caplock")
	}
	if s.policy == nil {
		s.policy = policy.FromConfig(&s.config.Policy)
	}
	if s.registry == nil {
		s.registry = registry.New()
	}
	if s.queue == nil {
		queueConfig := memory.DefaultConfig()
		if s.config.Events.Buffer > 0 {
			queueConfig.Buffer = s.config.Events.Buffer
		}
		s.queue = memory.NewQueue[event.Event](queueConfig)
	}
	s.publisher = event.NewPublisher(s.queue)
	if s.journal == nil && s.config.Journal.URL != "" {
		j, err := journal.New(s.config.Journal.URL)
		if err != nil {
			return err
		}
		s.journal = j
	}
	if s.journal != nil {
		s.listener = event.NewListener(s.queue, s.journal.Handler())
		s.listener.Start()
	}
	if s.config.Tracing.Enabled {
		if err := tracing.Init("caplock", "1.0", s.config.Tracing.OutputFile); err != nil {
			return fmt.Errorf("failed to initialise tracing: %w", err)
		}
	}
	s.gate = gate.New(revokerFunc(func(ctx context.Context, addr allocation.Address) error {
		return s.revoke(ctx, addr, event.SourceGate)
	}))
	return nil
}

type revokerFunc func(ctx context.Context, addr allocation.Address) error

func (f revokerFunc) Revoke(ctx context.Context, addr allocation.Address) error {
	return f(ctx, addr)
}

// Gate returns the boundary adapter; it is the only value the untrusted
// side should ever be handed.
func (s *Service) Gate() *gate.Gate { return s.gate }

// Registry exposes the underlying table, mainly for external triggers that
// implement their own revocation source.
func (s *Service) Registry() *registry.Service { return s.registry }

// Journal returns the audit journal, or nil when disabled.
func (s *Service) Journal() *journal.Journal { return s.journal }

// Register tracks a new allocation and returns its capability handle.
// While the runtime is in lockdown (deny policy after a violation) it
// refuses with ErrLockdown.
func (s *Service) Register(ctx context.Context, addr allocation.Address, size uint64) (allocation.Handle, error) {
	ctx, span := tracing.StartSpan(ctx, "registry.register")
	var err error
	defer func() { tracing.EndSpan(span, err) }()

	if s.lockdown.Load() {
		err = fmt.Errorf("register of %v refused: %w", addr, ErrLockdown)
		return allocation.Handle{}, err
	}
	var handle allocation.Handle
	if handle, err = s.registry.Register(ctx, addr, size); err != nil {
		s.logger.Warn().Stringer("address", addr).Err(err).Msg("register rejected")
		return allocation.Handle{}, err
	}
	observability.RecordRegistration()
	s.logger.Info().
		Stringer("address", addr).
		Uint64("size", size).
		Uint64("tag", uint64(handle.Tag)).
		Msg("allocation registered")
	s.publish(ctx, &event.Event{
		Kind:    event.KindRegistered,
		Source:  event.SourceTrusted,
		Address: addr,
		Tag:     handle.Tag,
		Size:    size,
	})
	return handle, nil
}

// Check validates a capability handle. A failed check is a detected
// security violation: it is logged, counted, journaled and then surfaced
// according to the effective policy - a per-call policy in ctx wins over
// the service policy. Under the deny policy a violation also locks down
// new registrations.
func (s *Service) Check(ctx context.Context, handle allocation.Handle) error {
	ctx, span := tracing.StartSpan(ctx, "registry.check")
	var err error
	defer func() { tracing.EndSpan(span, err) }()

	started := clock.Now()
	if err = s.registry.Check(ctx, handle); err == nil {
		observability.RecordCheck("ok")
		return nil
	}
	observability.RecordCheck(kindLabel(err))

	effective := policy.FromContext(ctx)
	if effective == nil {
		effective = s.policy
	}
	logEvent := s.logger.Error().
		Stringer("address", handle.Address).
		Uint64("tag", uint64(handle.Tag)).
		Str("kind", kindLabel(err)).
		Dur("elapsed", clock.Since(started))
	ev := &event.Event{
		Kind:    event.KindViolation,
		Address: handle.Address,
		Tag:     handle.Tag,
		Reason:  kindLabel(err),
	}
	if violation, ok := registry.AsViolation(err); ok {
		logEvent = logEvent.Str("incident", violation.Incident)
		ev.Incident = violation.Incident
	}
	logEvent.Msg("SECURITY VIOLATION: stale capability presented")
	s.publish(ctx, ev)
	if effective.EffectiveMode() == policy.ModeDeny {
		s.lockdown.Store(true)
	}
	// escalation runs last so fatal handling cannot skip the reporting above
	err = effective.Escalate(err)
	return err
}

// Revoke is the trusted-side revocation: unlike the gate it reports the
// outcome kinds (UnknownAddress, DoubleRevoke) back to the caller.
func (s *Service) Revoke(ctx context.Context, addr allocation.Address) error {
	return s.revoke(ctx, addr, event.SourceTrusted)
}

func (s *Service) revoke(ctx context.Context, addr allocation.Address, source event.Source) error {
	ctx, span := tracing.StartSpan(ctx, "registry.revoke")
	var err error
	defer func() { tracing.EndSpan(span, err) }()

	if err = s.registry.Revoke(ctx, addr); err != nil {
		s.logger.Debug().Stringer("address", addr).Str("source", string(source)).Err(err).
			Msg("revoke without effect")
		return err
	}
	observability.RecordRevocation(string(source))
	s.logger.Warn().
		Stringer("address", addr).
		Str("source", string(source)).
		Msg("allocation revoked")
	s.publish(ctx, &event.Event{
		Kind:    event.KindRevoked,
		Source:  source,
		Address: addr,
	})
	return nil
}

// Remove untracks an allocation on legitimate free.
func (s *Service) Remove(ctx context.Context, addr allocation.Address) error {
	ctx, span := tracing.StartSpan(ctx, "registry.remove")
	var err error
	defer func() { tracing.EndSpan(span, err) }()

	if err = s.registry.Remove(ctx, addr); err != nil {
		return err
	}
	observability.RecordRemoval()
	s.logger.Info().Stringer("address", addr).Msg("allocation removed")
	s.publish(ctx, &event.Event{
		Kind:    event.KindRemoved,
		Source:  event.SourceTrusted,
		Address: addr,
	})
	return nil
}

// Lockdown reports whether the runtime is refusing new registrations.
func (s *Service) Lockdown() bool { return s.lockdown.Load() }

// ClearLockdown re-enables registrations after a deny-mode violation has
// been investigated.
func (s *Service) ClearLockdown() { s.lockdown.Store(false) }

// Shutdown stops event delivery. The registry itself carries no resources
// beyond process memory, so there is nothing else to release.
func (s *Service) Shutdown() {
	if s.listener != nil {
		s.listener.Stop()
	}
}

// publish hands an event to the queue bounded by the configured timeout;
// a full queue drops the event with a log line rather than stalling the
// registry caller.
func (s *Service) publish(ctx context.Context, ev *event.Event) {
	timeout := s.config.Events.PublishTimeout()
	if timeout <= 0 {
		timeout = DefaultConfig().Events.PublishTimeout()
	}
	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()
	if err := s.publisher.Publish(pubCtx, ev); err != nil {
		s.logger.Warn().Str("kind", string(ev.Kind)).Err(err).Msg("provenance event dropped")
	}
}

func kindLabel(err error) string {
	switch {
	case errors.Is(err, registry.ErrUnknownAddress):
		return "unknown_address"
	case errors.Is(err, registry.ErrTagMismatch):
		return "tag_mismatch"
	case errors.Is(err, registry.ErrRevoked):
		return "revoked"
	default:
		return "error"
	}
}
