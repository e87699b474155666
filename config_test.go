package caplock_test

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
	_ "github.com/viant/afs/mem"
	"github.com/viant/caplock"
	"github.com/viant/caplock/policy"
)

func TestLoadConfig(t *testing.T) {
	ctx := context.Background()
	URL := fmt.Sprintf("mem://localhost/config/%d/caplock.yaml", time.Now().UnixNano())

	data := `
policy:
  mode: report
events:
  buffer: 32
  publishTimeoutMs: 10
journal:
  url: mem://localhost/journal
`
	fs := afs.New()
	require.NoError(t, fs.Upload(ctx, URL, file.DefaultFileOsMode, strings.NewReader(data)))

	config, err := caplock.LoadConfig(ctx, URL)
	require.NoError(t, err)
	assert.Equal(t, policy.ModeReport, config.Policy.Mode)
	assert.Equal(t, 32, config.Events.Buffer)
	assert.Equal(t, 10*time.Millisecond, config.Events.PublishTimeout())
	assert.Equal(t, "mem://localhost/journal", config.Journal.URL)
}

func TestLoadConfigInvalid(t *testing.T) {
	ctx := context.Background()
	URL := fmt.Sprintf("mem://localhost/config/%d/bad.yaml", time.Now().UnixNano())

	fs := afs.New()
	require.NoError(t, fs.Upload(ctx, URL, file.DefaultFileOsMode,
		strings.NewReader("policy:\n  mode: shrug\n")))

	_, err := caplock.LoadConfig(ctx, URL)
	assert.Error(t, err)

	_, err = caplock.LoadConfig(ctx, "mem://localhost/config/missing.yaml")
	assert.Error(t, err)
}
