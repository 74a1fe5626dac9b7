package bootstrap

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/vita/internal/infra/config"
)

func TestApp_RunStopsOnCancelAndFlushesTracing(t *testing.T) {
	cfg := &config.Config{HTTP: config.HTTPConfig{Address: "127.0.0.1:0"}}
	server := &http.Server{Addr: cfg.HTTP.Address, Handler: http.NotFoundHandler()}
	flushed := make(chan struct{}, 1)
	app := NewApp(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), server, func(context.Context) error {
		flushed <- struct{}{}
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not stop")
	}
	require.Len(t, flushed, 1)
}

func TestApp_RunReturnsListenError(t *testing.T) {
	cfg := &config.Config{HTTP: config.HTTPConfig{Address: "bad-address"}}
	server := &http.Server{Addr: cfg.HTTP.Address, Handler: http.NotFoundHandler()}
	app := NewApp(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), server, nil)

	require.Error(t, app.Run(context.Background()))
}
