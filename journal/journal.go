// Package journal persists provenance events as an append-only audit trail.
// Records are JSON documents written through viant/afs, so the journal can
// target any afs scheme (file, mem, embed, cloud storage).
package journal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/option"
	"github.com/viant/afs/url"
	"github.com/viant/caplock/event"
)

// Journal is an append-only store of provenance events, one document per
// event keyed by event id.
type Journal struct {
	baseURL string
	fs      afs.Service
}

// New creates a journal rooted at baseURL.
func New(baseURL string) (*Journal, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("journal base URL cannot be empty")
	}
	fs := afs.New()
	ctx := context.Background()
	if exists, _ := fs.Exists(ctx, baseURL); !exists {
		if err := fs.Create(ctx, baseURL, file.DefaultDirOsMode, true); err != nil {
			return nil, fmt.Errorf("failed to create journal location %s: %w", baseURL, err)
		}
	}
	return &Journal{
		baseURL: url.Normalize(baseURL, file.Scheme),
		fs:      fs,
	}, nil
}

// Append writes one event record. Events carry their own identity and
// timestamp, so records are immutable once written.
func (j *Journal) Append(ctx context.Context, ev *event.Event) error {
	if ev == nil || ev.ID == "" {
		return fmt.Errorf("journal: event without id")
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event %s: %w", ev.ID, err)
	}
	recordURL := url.Join(j.baseURL, ev.ID+".json")
	if err := j.fs.Upload(ctx, recordURL, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write journal record %s: %w", recordURL, err)
	}
	return nil
}

// List returns every journaled event ordered by occurrence time.
func (j *Journal) List(ctx context.Context) ([]*event.Event, error) {
	objects, err := j.fs.List(ctx, j.baseURL, option.NewRecursive(true))
	if err != nil {
		return nil, fmt.Errorf("failed to list journal records: %w", err)
	}

	var events []*event.Event
	for _, object := range objects {
		if object.IsDir() || !strings.HasSuffix(object.Name(), ".json") {
			continue
		}
		data, err := j.fs.Download(ctx, object)
		if err != nil {
			return nil, fmt.Errorf("failed to read journal record %s: %w", object.URL(), err)
		}
		ev := &event.Event{}
		if err := json.Unmarshal(data, ev); err != nil {
			return nil, fmt.Errorf("failed to unmarshal journal record %s: %w", object.URL(), err)
		}
		events = append(events, ev)
	}
	sort.Slice(events, func(i, k int) bool {
		return events[i].OccurredAt.Before(events[k].OccurredAt)
	})
	return events, nil
}

// Handler adapts the journal to the event listener signature.
func (j *Journal) Handler() func(*event.Event) error {
	return func(ev *event.Event) error {
		return j.Append(context.Background(), ev)
	}
}
