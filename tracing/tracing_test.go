package tracing

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
)

func TestSpanLifecycle(t *testing.T) {
	var buf bytes.Buffer
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(&buf))
	require.NoError(t, err)
	require.NoError(t, InitWithExporter("caplock-test", "0.0.1", exporter))

	ctx, span := StartSpan(context.Background(), "registry.check")
	require.NotNil(t, span)

	span.WithAttributes(map[string]string{"address": "0x1000"})

	fromCtx, ok := SpanFromContext(ctx)
	assert.True(t, ok)
	assert.NotNil(t, fromCtx)

	EndSpan(span, errors.New("revoked"))
	assert.NotZero(t, buf.Len(), "span should be exported")
}

func TestNilSpanIsSafe(t *testing.T) {
	var span *Span
	assert.Nil(t, span.WithAttributes(map[string]string{"k": "v"}))
	span.SetStatus(nil)
	EndSpan(span, nil)
}

func TestInitWithNilExporter(t *testing.T) {
	assert.NoError(t, InitWithExporter("caplock-test", "0.0.1", nil))
}
