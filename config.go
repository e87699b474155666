package caplock

import (
	"context"
	"fmt"
	"time"

	"github.com/viant/afs"
	"github.com/viant/caplock/policy"
	"gopkg.in/yaml.v3"
)

// Config is a serialisable representation of the runtime configuration. It
// can be populated from YAML or JSON; the zero-value is useful - all nested
// fields inherit their package defaults.
type Config struct {
	Policy  policy.Config `json:"policy" yaml:"policy"`
	Events  EventsConfig  `json:"events" yaml:"events"`
	Journal JournalConfig `json:"journal" yaml:"journal"`
	Tracing TracingConfig `json:"tracing" yaml:"tracing"`
}

// EventsConfig controls provenance event delivery.
type EventsConfig struct {
	// Buffer is the event queue capacity.
	Buffer int `json:"buffer" yaml:"buffer"`
	// PublishTimeoutMs bounds how long a registry operation waits on a
	// full queue before dropping the event; the registry must never stall
	// behind a slow consumer.
	PublishTimeoutMs int `json:"publishTimeoutMs" yaml:"publishTimeoutMs"`
}

// PublishTimeout returns the publish bound as a duration.
func (e *EventsConfig) PublishTimeout() time.Duration {
	return time.Duration(e.PublishTimeoutMs) * time.Millisecond
}

// JournalConfig locates the audit journal; an empty URL disables it.
type JournalConfig struct {
	URL string `json:"url,omitempty" yaml:"url,omitempty"`
}

// TracingConfig controls OpenTelemetry span export.
type TracingConfig struct {
	Enabled bool `json:"enabled,omitempty" yaml:"enabled,omitempty"`
	// OutputFile receives exported spans; empty means stdout.
	OutputFile string `json:"outputFile,omitempty" yaml:"outputFile,omitempty"`
}

// DefaultConfig returns a Config populated with the package defaults:
// fatal violation policy, a 256-slot event buffer and a 50ms publish bound.
func DefaultConfig() *Config {
	return &Config{
		Policy: policy.Config{Mode: policy.ModeFatal},
		Events: EventsConfig{
			Buffer:           256,
			PublishTimeoutMs: 50,
		},
	}
}

// Validate returns an aggregated error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	switch c.Policy.Mode {
	case "", policy.ModeReport, policy.ModeFatal, policy.ModeDeny:
	default:
		return fmt.Errorf("policy.mode must be one of report|fatal|deny, got %q", c.Policy.Mode)
	}
	if c.Events.Buffer < 0 {
		return fmt.Errorf("events.buffer must be >= 0")
	}
	if c.Events.PublishTimeoutMs < 0 {
		return fmt.Errorf("events.publishTimeoutMs must be >= 0")
	}
	return nil
}

// LoadConfig reads a YAML config from any afs URL, layered over the
// package defaults.
func LoadConfig(ctx context.Context, URL string) (*Config, error) {
	fs := afs.New()
	data, err := fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", URL, err)
	}
	ret := DefaultConfig()
	if err := yaml.Unmarshal(data, ret); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", URL, err)
	}
	if err := ret.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", URL, err)
	}
	return ret, nil
}
