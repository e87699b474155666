package gate

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/caplock/internal/tagger"
	"github.com/viant/caplock/model/allocation"
	"github.com/viant/caplock/registry"
)

func TestGateRevokesByBareAddress(t *testing.T) {
	ctx := context.Background()
	service := registry.New(registry.WithTagSource(tagger.New().Next))
	boundary := New(service)

	handle, err := service.Register(ctx, 0x1000, 8)
	require.NoError(t, err)

	// the untrusted side holds only the numeric address, never the tag
	boundary.Revoke(ctx, 0x1000)

	err = service.Check(ctx, handle)
	assert.True(t, errors.Is(err, registry.ErrRevoked))
}

func TestGateLeaksNoRegistryState(t *testing.T) {
	ctx := context.Background()
	service := registry.New(registry.WithTagSource(tagger.New().Next))
	boundary := New(service)

	_, err := service.Register(ctx, 0x1000, 8)
	require.NoError(t, err)

	// fresh revoke, duplicate revoke and untracked address are all
	// indistinguishable to the caller
	boundary.Revoke(ctx, 0x1000)
	boundary.Revoke(ctx, 0x1000)
	boundary.Revoke(ctx, 0xdead)
}

type recordingRevoker struct {
	calls []allocation.Address
}

func (r *recordingRevoker) Revoke(_ context.Context, addr allocation.Address) error {
	r.calls = append(r.calls, addr)
	return errors.New("swallowed")
}

func TestGateForwardsToAnyRevoker(t *testing.T) {
	revoker := &recordingRevoker{}
	boundary := New(revoker)

	boundary.Revoke(context.Background(), 0x2000)
	assert.Equal(t, []allocation.Address{0x2000}, revoker.calls)
}
