package monitor

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/harshdoesdev/instance-monitor/internal/metric"
	"github.com/harshdoesdev/instance-monitor/internal/sampler"
	"github.com/harshdoesdev/instance-monitor/internal/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// countingSampler returns a fixed snapshot and counts calls.
type countingSampler struct {
	snap  sampler.Snapshot
	err   error
	calls atomic.Int64
}

func (s *countingSampler) Sample(ctx context.Context) (sampler.Snapshot, error) {
	s.calls.Add(1)
	return s.snap, s.err
}

func TestMonitor_Setup(t *testing.T) {
	reg := metric.NewRegistry()
	m := New(time.Second, reg, &countingSampler{}, WithLogger(discardLogger()))

	require.NoError(t, m.Setup("h1"))

	out, err := reg.Export()
	require.NoError(t, err)
	assert.Equal(t, "cpu_usage{instance=\"h1\"} 0\nmemory_usage{instance=\"h1\"} 0\n", out)
}

func TestMonitor_SetupUnknownInstance(t *testing.T) {
	reg := metric.NewRegistry()
	m := New(time.Second, reg, &countingSampler{}, WithLogger(discardLogger()))

	require.NoError(t, m.Setup(""))

	for _, s := range reg.Snapshot() {
		assert.Equal(t, []metric.Label{{Key: InstanceLabel, Value: sampler.UnknownInstance}}, s.Labels)
	}
}

func TestMonitor_Run(t *testing.T) {
	reg := metric.NewRegistry()
	s := &countingSampler{snap: sampler.Snapshot{
		CPUBusyPercent: 12.4,
		MemoryUsed:     6000000000,
		MemoryTotal:    16000000000,
	}}
	m := New(10*time.Millisecond, reg, s,
		WithLogger(discardLogger()),
		WithTelemetry(telemetry.New()),
	)
	require.NoError(t, m.Setup("h1"))

	ctx, cancel := context.WithCancel(context.Background())
	m.Run(ctx)

	require.Eventually(t, func() bool {
		return s.calls.Load() >= 3
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	m.Wait()

	out, err := reg.Export()
	require.NoError(t, err)
	assert.Equal(t, "cpu_usage{instance=\"h1\"} 12.4\nmemory_usage{instance=\"h1\"} 37.5\n", out)

	// No further samples after shutdown.
	calls := s.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, calls, s.calls.Load())
}

func TestMonitor_FirstSampleIsImmediate(t *testing.T) {
	reg := metric.NewRegistry()
	s := &countingSampler{snap: sampler.Snapshot{CPUBusyPercent: 1}}
	m := New(time.Hour, reg, s, WithLogger(discardLogger()))
	require.NoError(t, m.Setup("h1"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	m.Run(ctx)

	require.Eventually(t, func() bool {
		return s.calls.Load() == 1
	}, time.Second, 5*time.Millisecond)
}

func TestMonitor_ZeroTotalMemory(t *testing.T) {
	reg := metric.NewRegistry()
	s := &countingSampler{snap: sampler.Snapshot{CPUBusyPercent: 3, MemoryUsed: 10, MemoryTotal: 0}}
	m := New(time.Hour, reg, s, WithLogger(discardLogger()))
	require.NoError(t, m.Setup("h1"))

	m.collect(context.Background())

	out, err := reg.Export()
	require.NoError(t, err)
	assert.Contains(t, out, "memory_usage{instance=\"h1\"} 0\n")
}

func TestMonitor_UnregisteredUpdatesAreDropped(t *testing.T) {
	var buf bytes.Buffer
	var mu sync.Mutex
	logger := slog.New(slog.NewTextHandler(&lockedWriter{w: &buf, mu: &mu}, nil))

	reg := metric.NewRegistry()
	s := &countingSampler{snap: sampler.Snapshot{CPUBusyPercent: 50}}
	m := New(5*time.Millisecond, reg, s, WithLogger(logger))

	ctx, cancel := context.WithCancel(context.Background())
	m.Run(ctx)

	require.Eventually(t, func() bool {
		return s.calls.Load() >= 3
	}, 2*time.Second, 5*time.Millisecond)
	cancel()
	m.Wait()

	assert.Equal(t, 0, reg.Len(), "updates must never create metrics")
	mu.Lock()
	defer mu.Unlock()
	assert.Contains(t, buf.String(), "failed to update metric")
}

func TestMonitor_SamplerErrorKeepsLastValue(t *testing.T) {
	reg := metric.NewRegistry()
	s := &countingSampler{snap: sampler.Snapshot{CPUBusyPercent: 20, MemoryUsed: 1, MemoryTotal: 4}}
	m := New(time.Hour, reg, s, WithLogger(discardLogger()))
	require.NoError(t, m.Setup("h1"))

	m.collect(context.Background())
	s.err = errors.New("read /proc/stat: permission denied")
	s.snap = sampler.Snapshot{}
	m.collect(context.Background())

	out, err := reg.Export()
	require.NoError(t, err)
	assert.Equal(t, "cpu_usage{instance=\"h1\"} 20\nmemory_usage{instance=\"h1\"} 25\n", out)
}

func TestNew_DefaultInterval(t *testing.T) {
	m := New(0, metric.NewRegistry(), &countingSampler{})
	assert.Equal(t, DefaultInterval, m.interval)
}

type lockedWriter struct {
	w  io.Writer
	mu *sync.Mutex
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
