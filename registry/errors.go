package registry

import (
	"errors"
	"fmt"

	"github.com/viant/caplock/model/allocation"
)

// Sentinel errors for every failure kind the registry reports. Using
// sentinel variables allows callers to reliably detect conditions via
// errors.Is/As instead of brittle string comparisons.

var (
	// ErrUnknownAddress is returned when the address is not currently tracked.
	ErrUnknownAddress = errors.New("registry: unknown address")

	// ErrTagMismatch is returned when the address is tracked under a
	// different tag - a stale handle whose address was reused after the
	// original entry was removed.
	ErrTagMismatch = errors.New("registry: tag mismatch")

	// ErrRevoked is returned when the handle's tag matches but the entry
	// has been invalidated.
	ErrRevoked = errors.New("registry: revoked")

	// ErrDoubleRegister indicates Register was called for an address that
	// already has a live entry. Caller misuse, not a detected attack.
	ErrDoubleRegister = errors.New("registry: double register")

	// ErrDoubleRevoke indicates Revoke was called on an already-invalid
	// entry. Informational; the revocation remains terminal either way.
	ErrDoubleRevoke = errors.New("registry: double revoke")
)

// Violation is the error returned by failed checks. A failed check is a
// security violation, not ordinary misuse: it means trusted code presented
// a capability the registry no longer (or never did) stand behind. The
// incident id correlates the violation across log, journal and metrics.
type Violation struct {
	Incident string
	Handle   allocation.Handle
	// ActualTag is the tag currently live at the address, TagNone when the
	// address is untracked.
	ActualTag allocation.Tag
	Err       error
}

// Error implements the error interface.
func (v *Violation) Error() string {
	return fmt.Sprintf("security violation %s: handle %v (live tag %d): %v",
		v.Incident, v.Handle, v.ActualTag, v.Err)
}

// Unwrap exposes the failure kind for errors.Is.
func (v *Violation) Unwrap() error { return v.Err }

// AsViolation returns the *Violation wrapped in err, if any.
func AsViolation(err error) (*Violation, bool) {
	var violation *Violation
	if errors.As(err, &violation) {
		return violation, true
	}
	return nil, false
}
