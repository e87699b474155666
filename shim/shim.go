// Package shim models compiler-inserted instrumentation on the trusted side
// of the boundary: allocation, access and free sites call into the same
// registry contract the revocation gate feeds. It carries no state of its
// own - it exists so instrumented code never touches the registry directly.
package shim

import (
	"context"

	"github.com/viant/caplock/model/allocation"
)

// Runtime is the slice of the trusted-side API the instrumentation needs.
type Runtime interface {
	Register(ctx context.Context, addr allocation.Address, size uint64) (allocation.Handle, error)
	Check(ctx context.Context, handle allocation.Handle) error
	Remove(ctx context.Context, addr allocation.Address) error
}

// Instrumentor is the per-call-site adapter.
type Instrumentor struct {
	runtime Runtime
}

// New creates an instrumentor over the supplied runtime.
func New(runtime Runtime) *Instrumentor {
	return &Instrumentor{runtime: runtime}
}

// Alloc instruments an allocation site: the new memory is registered and
// the issued capability handle becomes the allocation's provenance.
func (i *Instrumentor) Alloc(ctx context.Context, base uint64, size uint64) (allocation.Handle, error) {
	return i.runtime.Register(ctx, allocation.Address(base), size)
}

// Write instruments a mutating access: the handle must still be the live
// capability for its address or the access is rejected.
func (i *Instrumentor) Write(ctx context.Context, handle allocation.Handle) error {
	return i.runtime.Check(ctx, handle)
}

// Free instruments a deallocation site: the handle is validated, then the
// entry is removed so every copy of the handle goes permanently stale.
func (i *Instrumentor) Free(ctx context.Context, handle allocation.Handle) error {
	if err := i.runtime.Check(ctx, handle); err != nil {
		return err
	}
	return i.runtime.Remove(ctx, handle.Address)
}
