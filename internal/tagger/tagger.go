// Package tagger issues allocation tags. It lives under `internal` because
// callers should not rely on how tags are produced - only that two calls
// never return the same value for the lifetime of the issuing source.
package tagger

import (
	"sync/atomic"

	"github.com/viant/caplock/model/allocation"
)

// Source issues monotonically increasing, never-reused tags and is safe for
// concurrent callers. The zero value is ready to use; the first tag issued
// is 1 so that allocation.TagNone is never handed out.
type Source struct {
	last atomic.Uint64
}

// Next returns the next tag. It has no failure mode.
func (s *Source) Next() allocation.Tag {
	return allocation.Tag(s.last.Add(1))
}

// New returns an independent tag source, used by tests that need
// deterministic tag values.
func New() *Source {
	return &Source{}
}

var defaultSource = New()

// NextFunc issues from the process-wide source. It is a variable so tests
// can stub tag issue.
var NextFunc = defaultSource.Next

// Next issues a tag from the process-wide source, keeping tags unique
// across every registry in the process.
func Next() allocation.Tag { return NextFunc() }
