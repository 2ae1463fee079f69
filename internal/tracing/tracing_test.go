package tracing

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewProviderDisabledByDefault(t *testing.T) {
	p, err := NewProvider(Config{})
	require.NoError(t, err)
	require.False(t, p.Enabled())
	require.NotNil(t, p.Tracer())
	require.NoError(t, p.Shutdown(context.Background()))
}

func TestNewProviderStdout(t *testing.T) {
	var buf bytes.Buffer
	p, err := NewProvider(Config{Exporter: "stdout", Writer: &buf})
	require.NoError(t, err)
	require.True(t, p.Enabled())

	_, span := p.Tracer().Start(context.Background(), "scan")
	span.End()
	require.NoError(t, p.Shutdown(context.Background()))
	require.Contains(t, buf.String(), `"Name": "scan"`)
}

func TestNewProviderRejectsUnknownExporter(t *testing.T) {
	_, err := NewProvider(Config{Exporter: "zipkin"})
	require.Error(t, err)
}

func TestNilProviderIsSafe(t *testing.T) {
	var p *Provider
	require.False(t, p.Enabled())
	require.NotNil(t, p.Tracer())
	require.NoError(t, p.Shutdown(context.Background()))
}
