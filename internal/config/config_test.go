package config

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, DefaultPort, cfg.Server.Port)
	assert.Equal(t, DefaultMetricsPath, cfg.Server.Path)
	assert.Equal(t, DefaultSamplingInterval, cfg.Sampling.Interval)
	assert.Equal(t, slog.LevelError, cfg.Log.Level)
	assert.False(t, cfg.Export.OTELEnabled())
	assert.False(t, cfg.Settings.InternalMetrics.Enabled)
	assert.Equal(t, DefaultInternalMetricsPath, cfg.Settings.InternalMetrics.Path)
	assert.Equal(t, ":8080", cfg.Server.Addr())
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
		check   func(t *testing.T, cfg *Config)
	}{
		{
			name: "full",
			yaml: `
server:
  port: 9100
  path: /scrape
sampling:
  interval: 2s
log:
  level: debug
export:
  otel:
    enabled: true
    transport: http
    interval: 30s
    headers:
      x-api-key: secret
settings:
  internal_metrics:
    enabled: true
`,
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 9100, cfg.Server.Port)
				assert.Equal(t, "/scrape", cfg.Server.Path)
				assert.Equal(t, 2*time.Second, cfg.Sampling.Interval)
				assert.Equal(t, slog.LevelDebug, cfg.Log.Level)

				require.True(t, cfg.Export.OTELEnabled())
				otel := cfg.Export.OTEL
				assert.Equal(t, "http", otel.Transport)
				assert.Equal(t, "localhost:4318", otel.GetEndpoint())
				assert.Equal(t, 30*time.Second, otel.Interval)
				assert.Equal(t, "secret", otel.Headers["x-api-key"])
				assert.Equal(t, DefaultServiceName, otel.Resource["service.name"])

				assert.True(t, cfg.Settings.InternalMetrics.Enabled)
				assert.Equal(t, DefaultInternalMetricsPath, cfg.Settings.InternalMetrics.Path)
			},
		},
		{
			name: "bare seconds interval",
			yaml: "sampling:\n  interval: 7\n",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, 7*time.Second, cfg.Sampling.Interval)
			},
		},
		{
			name: "empty file uses defaults",
			yaml: "",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, Default(), cfg)
			},
		},
		{
			name: "otel grpc defaults",
			yaml: "export:\n  otel:\n    enabled: true\n",
			check: func(t *testing.T, cfg *Config) {
				assert.Equal(t, "grpc", cfg.Export.OTEL.Transport)
				assert.Equal(t, "localhost:4317", cfg.Export.OTEL.GetEndpoint())
				assert.Equal(t, DefaultOTELPushInterval, cfg.Export.OTEL.Interval)
			},
		},
		{
			name:    "invalid port",
			yaml:    "server:\n  port: 70000\n",
			wantErr: "invalid port",
		},
		{
			name:    "invalid interval",
			yaml:    "sampling:\n  interval: soon\n",
			wantErr: "invalid interval",
		},
		{
			name:    "negative interval",
			yaml:    "sampling:\n  interval: -1s\n",
			wantErr: "cannot be negative",
		},
		{
			name:    "invalid log level",
			yaml:    "log:\n  level: loud\n",
			wantErr: "invalid log level",
		},
		{
			name:    "invalid transport",
			yaml:    "export:\n  otel:\n    enabled: true\n    transport: udp\n",
			wantErr: "invalid transport",
		},
		{
			name:    "relative path",
			yaml:    "server:\n  path: metrics\n",
			wantErr: "invalid server path",
		},
		{
			name:    "conflicting internal path",
			yaml:    "settings:\n  internal_metrics:\n    enabled: true\n    path: /metrics\n",
			wantErr: "conflicts with server path",
		},
		{
			name:    "malformed yaml",
			yaml:    "server: [",
			wantErr: "failed to parse YAML",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, t.TempDir(), tt.yaml)

			cfg, err := Load(path)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestLoad_EmptyPath(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestParseInterval(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{in: "5", want: 5 * time.Second},
		{in: "5s", want: 5 * time.Second},
		{in: "250ms", want: 250 * time.Millisecond},
		{in: " 1m ", want: time.Minute},
		{in: "", want: 0},
		{in: "five", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseInterval(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{in: "", want: slog.LevelError},
		{in: "debug", want: slog.LevelDebug},
		{in: "TRACE", want: slog.LevelDebug},
		{in: "Info", want: slog.LevelInfo},
		{in: "warning", want: slog.LevelWarn},
		{in: "error", want: slog.LevelError},
		{in: "verbose", want: slog.LevelError, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLogLevel(tt.in)
			assert.Equal(t, tt.want, got)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "log:\n  level: error\n")

	w := NewWatcher(path, slog.New(slog.DiscardHandler))
	w.debounce = 10 * time.Millisecond

	var (
		mu     sync.Mutex
		levels []slog.Level
	)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- w.Watch(ctx, func(cfg *Config) {
			mu.Lock()
			defer mu.Unlock()
			levels = append(levels, cfg.Log.Level)
		})
	}()

	// Keep rewriting until the watcher is registered and observes a change.
	require.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte("log:\n  level: debug\n"), 0o644)
		mu.Lock()
		defer mu.Unlock()
		return len(levels) > 0 && levels[len(levels)-1] == slog.LevelDebug
	}, 3*time.Second, 50*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

func TestWatcher_IgnoresInvalidReload(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "log:\n  level: error\n")

	w := NewWatcher(path, slog.New(slog.DiscardHandler))
	called := false
	w.reload(func(*Config) { called = true })
	assert.True(t, called)

	require.NoError(t, os.WriteFile(path, []byte("log:\n  level: loud\n"), 0o644))
	called = false
	w.reload(func(*Config) { called = true })
	assert.False(t, called)
}
