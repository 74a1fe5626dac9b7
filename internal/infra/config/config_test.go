package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http:
  address: ":9090"
auth:
  secret: from-file
dailyLog:
  timezone: Asia/Tokyo
coach:
  historyLimit: 20
`), 0o600))

	t.Setenv("CONFIG_PATH", path)
	t.Setenv("AUTH_SECRET", "from-env")
	t.Setenv("HTTP_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("VALKEY_ENABLED", "false")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, ":9090", cfg.HTTP.Address)
	require.Equal(t, "from-env", cfg.Auth.Secret)
	require.Equal(t, 20, cfg.Coach.HistoryLimit)
	require.Equal(t, 3000, cfg.Coach.MaxContextTokens)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.HTTP.AllowedOrigins)
	require.Equal(t, 15*time.Minute, cfg.Auth.TokenTTL)

	loc, err := cfg.DailyLog.Location()
	require.NoError(t, err)
	require.Equal(t, "Asia/Tokyo", loc.String())
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{"defaults with secret", func(*Config) {}, true},
		{"missing secret", func(c *Config) { c.Auth.Secret = "" }, false},
		{"bad timezone", func(c *Config) { c.DailyLog.Timezone = "Mars/Olympus" }, false},
		{"valkey without addr", func(c *Config) { c.Valkey.Enabled = true; c.Valkey.Addr = "" }, false},
		{"bad sample ratio", func(c *Config) { c.Telemetry.SampleRatio = 2 }, false},
		{"zero rate limit", func(c *Config) { c.HTTP.RateLimit.RequestsPerMinute = 0 }, false},
		{"metrics path", func(c *Config) { c.Metrics.Path = "metrics" }, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := defaultConfig()
			cfg.Auth.Secret = "secret"
			tc.mutate(cfg)
			err := cfg.Validate()
			if tc.ok {
				require.NoError(t, err)
			} else {
				require.Error(t, err)
			}
		})
	}
}

func TestLoad_SampleRatioZeroIsKept(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("auth:\n  secret: s\ntelemetry:\n  sampleRatio: 0\n"), 0o600))
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 0.0, cfg.Telemetry.SampleRatio)

	require.NoError(t, os.WriteFile(path, []byte("auth:\n  secret: s\n"), 0o600))
	cfg, err = Load()
	require.NoError(t, err)
	require.Equal(t, 0.1, cfg.Telemetry.SampleRatio)
}
