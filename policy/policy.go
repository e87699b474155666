// Package policy decides how detected security violations surface to the
// trusted caller. It is deliberately decoupled from the registry - the
// registry only detects; a nil *Policy keeps the default "fatal" behaviour.
package policy

import (
	"context"
)

// Violation-surfacing modes.
const (
	ModeReport = "report" // return the violation error to the caller
	ModeFatal  = "fatal"  // escalate through FatalFunc (default)
	ModeDeny   = "deny"   // return the error and lock down new registrations
)

// FatalFunc escalates a violation that must not be swallowed. The default
// panics, mirroring the fail-stop behaviour the runtime exists to provide.
type FatalFunc func(err error)

// Policy carries the violation-surfacing settings for a runtime instance
// or, via context, for a single call.
type Policy struct {
	Mode  string // report / fatal / deny (default = fatal)
	Fatal FatalFunc
}

// Config is the declarative, serialisable part of a Policy.
type Config struct {
	Mode string `json:"mode,omitempty" yaml:"mode,omitempty"`
}

// ToConfig converts a runtime Policy into a persistable Config.
func ToConfig(p *Policy) *Config {
	if p == nil {
		return nil
	}
	return &Config{Mode: p.Mode}
}

// FromConfig converts a stored Config back to a runtime Policy (without
// FatalFunc).
func FromConfig(c *Config) *Policy {
	if c == nil {
		return nil
	}
	return &Policy{Mode: c.Mode}
}

// EffectiveMode normalises the mode, treating nil or empty as ModeFatal.
func (p *Policy) EffectiveMode() string {
	if p == nil || p.Mode == "" {
		return ModeFatal
	}
	return p.Mode
}

// Escalate applies the policy to a detected violation. It returns the error
// the caller should see; under ModeFatal the configured FatalFunc fires
// first (default: panic), so loud reporting cannot be skipped by accident.
func (p *Policy) Escalate(err error) error {
	if err == nil {
		return nil
	}
	if p.EffectiveMode() != ModeFatal {
		return err
	}
	fatal := panicFatal
	if p != nil && p.Fatal != nil {
		fatal = p.Fatal
	}
	fatal(err)
	return err
}

func panicFatal(err error) {
	panic(err)
}

type ctxKeyT struct{}

var ctxKey ctxKeyT

// WithPolicy embeds a per-call policy override in ctx.
func WithPolicy(ctx context.Context, p *Policy) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxKey, p)
}

// FromContext extracts the policy override, or nil.
func FromContext(ctx context.Context) *Policy {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxKey).(*Policy); ok {
		return v
	}
	return nil
}
