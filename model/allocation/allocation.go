package allocation

import (
	"fmt"
	"time"
)

// Tag is a process-unique identifier bound to a single allocation lifetime.
// A tag is issued exactly once and never reused; revocation retires the tag
// permanently.
type Tag uint64

// TagNone is the zero value; it is never issued for a live allocation.
const TagNone Tag = 0

// Address is the opaque numeric key of an allocation's base address. The
// runtime performs no pointer arithmetic with it; it is only a lookup key.
type Address uint64

func (a Address) String() string {
	return fmt.Sprintf("0x%x", uint64(a))
}

// Metadata describes a tracked allocation. It exists only while the
// allocation is registered; mutation is owned by the registry.
type Metadata struct {
	Address      Address   `json:"address" yaml:"address"`
	Size         uint64    `json:"size" yaml:"size"`
	Tag          Tag       `json:"tag" yaml:"tag"`
	Valid        bool      `json:"valid" yaml:"valid"`
	RegisteredAt time.Time `json:"registeredAt" yaml:"registeredAt"`
}

// Contains reports whether addr falls within the allocation's byte range.
// The registry itself keys strictly on base addresses; this helper is for
// callers that need to resolve an interior pointer to its base.
func (m *Metadata) Contains(addr Address) bool {
	if m == nil {
		return false
	}
	return addr >= m.Address && uint64(addr) < uint64(m.Address)+m.Size
}

// Handle returns the capability handle bound to the allocation's current tag.
func (m *Metadata) Handle() Handle {
	return Handle{Address: m.Address, Tag: m.Tag}
}

// Handle is the capability presented by trusted code to assert valid access:
// an address plus the tag issued when the allocation was registered. It is
// immutable once issued and safe to copy across the trust boundary - the
// address alone is enough to revoke, but never enough to pass a check.
type Handle struct {
	Address Address `json:"address" yaml:"address"`
	Tag     Tag     `json:"tag" yaml:"tag"`
}

func (h Handle) String() string {
	return fmt.Sprintf("%v#%d", h.Address, h.Tag)
}
