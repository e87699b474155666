// Package registry implements the authoritative address -> allocation table
// of the provenance runtime. The registry owns all mutation of allocation
// state; every other component either feeds it (gate, shim) or observes it
// (events, journal).
package registry

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/viant/caplock/internal/clock"
	"github.com/viant/caplock/internal/tagger"
	"github.com/viant/caplock/model/allocation"
)

// Service is an in-memory, thread-safe allocation table. Register, Check,
// Revoke and Remove are atomic with respect to each other; the mutex is
// held only for the table lookup/mutation, never across I/O, so a revoke
// that completes before a check begins is always observed by that check.
type Service struct {
	mu      sync.RWMutex
	entries map[allocation.Address]*allocation.Metadata
	nextTag func() allocation.Tag
}

// Option customises a registry.
type Option func(s *Service)

// WithTagSource overrides the process-wide tag source. Tags are then unique
// only per source; intended for tests that need deterministic values.
func WithTagSource(next func() allocation.Tag) Option {
	return func(s *Service) {
		s.nextTag = next
	}
}

// New creates an empty registry issuing tags from the process-wide source.
func New(options ...Option) *Service {
	ret := &Service{
		entries: map[allocation.Address]*allocation.Metadata{},
		nextTag: tagger.Next,
	}
	for _, option := range options {
		option(ret)
	}
	return ret
}

// Register tracks a new allocation at addr and returns the capability
// handle bound to its freshly issued tag. A live entry at addr is caller
// misuse (ErrDoubleRegister); a revoked entry is treated as address reuse
// and replaced, leaving every handle issued for the prior entry permanently
// stale.
func (s *Service) Register(_ context.Context, addr allocation.Address, size uint64) (allocation.Handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.entries[addr]; ok && existing.Valid {
		return allocation.Handle{}, fmt.Errorf("address %v already live with tag %d: %w",
			addr, existing.Tag, ErrDoubleRegister)
	}

	meta := &allocation.Metadata{
		Address:      addr,
		Size:         size,
		Tag:          s.nextTag(),
		Valid:        true,
		RegisteredAt: clock.Now(),
	}
	s.entries[addr] = meta
	return meta.Handle(), nil
}

// Revoke terminally invalidates the entry at addr. It deliberately takes no
// tag: the untrusted side of the boundary can only ever name an address.
// Revoking an untracked address reports ErrUnknownAddress; revoking an
// already-invalid entry reports ErrDoubleRevoke and changes nothing.
func (s *Service) Revoke(_ context.Context, addr allocation.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	meta, ok := s.entries[addr]
	if !ok {
		return fmt.Errorf("revoke of %v: %w", addr, ErrUnknownAddress)
	}
	if !meta.Valid {
		return fmt.Errorf("revoke of %v (tag %d): %w", addr, meta.Tag, ErrDoubleRevoke)
	}
	meta.Valid = false
	return nil
}

// Check validates a capability handle. It succeeds only when the handle's
// address maps to a live entry whose tag equals the handle's tag. Any
// failure is returned as a *Violation wrapping the failure kind - the
// caller is presenting a capability the registry does not stand behind.
func (s *Service) Check(_ context.Context, handle allocation.Handle) error {
	s.mu.RLock()
	meta, ok := s.entries[handle.Address]
	var actual allocation.Tag
	var valid bool
	if ok {
		actual, valid = meta.Tag, meta.Valid
	}
	s.mu.RUnlock()

	switch {
	case !ok:
		return s.violation(handle, allocation.TagNone, ErrUnknownAddress)
	case actual != handle.Tag:
		return s.violation(handle, actual, ErrTagMismatch)
	case !valid:
		return s.violation(handle, actual, ErrRevoked)
	}
	return nil
}

// Remove unconditionally deletes the entry at addr, used when the owning
// allocation is legitimately freed. Handles issued for the entry fail any
// later check with ErrUnknownAddress (or ErrTagMismatch once the address
// is reused).
func (s *Service) Remove(_ context.Context, addr allocation.Address) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[addr]; !ok {
		return fmt.Errorf("remove of %v: %w", addr, ErrUnknownAddress)
	}
	delete(s.entries, addr)
	return nil
}

// Lookup returns a copy of the metadata tracked at addr. The copy keeps
// callers from mutating allocation state outside the registry's lock.
func (s *Service) Lookup(_ context.Context, addr allocation.Address) (allocation.Metadata, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	meta, ok := s.entries[addr]
	if !ok {
		return allocation.Metadata{}, false
	}
	return *meta, true
}

// Len returns the number of tracked entries, live or revoked.
func (s *Service) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *Service) violation(handle allocation.Handle, actual allocation.Tag, kind error) *Violation {
	return &Violation{
		Incident:  uuid.New().String(),
		Handle:    handle,
		ActualTag: actual,
		Err:       kind,
	}
}
