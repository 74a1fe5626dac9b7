package telemetry

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSetup_DisabledIsNoop(t *testing.T) {
	shutdown := Setup(context.Background(), Config{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, shutdown(context.Background()))
}

func TestSetup_WithoutExporter(t *testing.T) {
	shutdown := Setup(context.Background(), Config{Enabled: true, SampleRatio: 1}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, shutdown(context.Background()))
}

func TestClampRatio(t *testing.T) {
	require.Equal(t, 0.0, clampRatio(0))
	require.Equal(t, 0.0, clampRatio(-0.5))
	require.Equal(t, 1.0, clampRatio(3))
	require.Equal(t, 0.5, clampRatio(0.5))
}
