// Package event defines the provenance events emitted on every allocation
// lifecycle transition, with a publisher/listener pair over the messaging
// queue so consumers stay decoupled from the registry.
package event

import (
	"time"

	"github.com/viant/caplock/model/allocation"
)

// Kind enumerates lifecycle transitions.
type Kind string

const (
	KindRegistered Kind = "registered"
	KindRevoked    Kind = "revoked"
	KindRemoved    Kind = "removed"
	KindViolation  Kind = "violation"
)

// Source names the trigger of a transition; the registry contract does not
// assume any particular one.
type Source string

const (
	SourceTrusted Source = "trusted"
	SourceGate    Source = "gate"
	SourceShim    Source = "shim"
)

// Event is a single provenance record.
type Event struct {
	ID         string             `json:"id"`
	Kind       Kind               `json:"kind"`
	Source     Source             `json:"source,omitempty"`
	Address    allocation.Address `json:"address"`
	Tag        allocation.Tag     `json:"tag,omitempty"`
	Size       uint64             `json:"size,omitempty"`
	Incident   string             `json:"incident,omitempty"`
	Reason     string             `json:"reason,omitempty"`
	OccurredAt time.Time          `json:"occurredAt"`
}
