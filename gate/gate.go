// Package gate is the boundary-facing entry point of the runtime: the one
// operation untrusted code may invoke, with nothing but a bare address.
// The threat model accepts that foreign code can already corrupt or free
// memory it can address; the gate's job is only to make later trusted use
// of a stale capability observably fail.
package gate

import (
	"context"

	"github.com/viant/caplock/model/allocation"
)

// Revoker terminally invalidates the allocation tracked at addr. The
// registry implements it; so does the Service façade. The gate is one
// possible trigger - an allocator shim or compiler-inserted check is just
// another caller of the same contract.
type Revoker interface {
	Revoke(ctx context.Context, addr allocation.Address) error
}

// Gate adapts a Revoker to the trust boundary.
type Gate struct {
	revoker Revoker
}

// New creates a gate over the supplied revoker.
func New(revoker Revoker) *Gate {
	return &Gate{revoker: revoker}
}

// Revoke invalidates whatever is tracked at base. It returns nothing:
// the untrusted caller must not be able to distinguish a fresh revocation
// from an already-revoked or untracked address, as that would leak registry
// state beyond what the caller already holds.
func (g *Gate) Revoke(ctx context.Context, base uint64) {
	_ = g.revoker.Revoke(ctx, allocation.Address(base))
}
