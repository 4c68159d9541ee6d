package monitor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/harshdoesdev/instance-monitor/internal/metric"
	"github.com/harshdoesdev/instance-monitor/internal/sampler"
	"github.com/harshdoesdev/instance-monitor/internal/telemetry"
)

// Built-in gauge names.
const (
	CPUUsage    = "cpu_usage"
	MemoryUsage = "memory_usage"

	InstanceLabel = "instance"
)

// DefaultInterval is the sampling interval used when none is configured.
const DefaultInterval = 5 * time.Second

// Monitor periodically samples the host and pushes the results into a registry.
type Monitor struct {
	interval  time.Duration
	registry  *metric.Registry
	sampler   sampler.Sampler
	telemetry *telemetry.Telemetry
	logger    *slog.Logger
	wg        sync.WaitGroup
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithTelemetry records sample and update outcomes.
func WithTelemetry(t *telemetry.Telemetry) Option {
	return func(m *Monitor) {
		m.telemetry = t
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(m *Monitor) {
		m.logger = logger
	}
}

// New creates a monitor. A non-positive interval falls back to DefaultInterval.
func New(interval time.Duration, registry *metric.Registry, s sampler.Sampler, opts ...Option) *Monitor {
	if interval <= 0 {
		interval = DefaultInterval
	}

	m := &Monitor{
		interval: interval,
		registry: registry,
		sampler:  s,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Setup registers the built-in gauges and labels them with the instance
// address. Registration is idempotent; only invalid input fails.
func (m *Monitor) Setup(instance string) error {
	if instance == "" {
		instance = sampler.UnknownInstance
	}

	for _, name := range []string{CPUUsage, MemoryUsage} {
		if err := m.registry.Register(name, metric.KindGauge); err != nil {
			return err
		}
		if err := m.registry.AddLabel(name, InstanceLabel, instance); err != nil {
			return err
		}
		m.logger.Info("registered metric", "name", name, "type", metric.KindGauge, InstanceLabel, instance)
	}
	return nil
}

// Run starts the sampling loop in a background goroutine.
// The loop exits when ctx is cancelled.
func (m *Monitor) Run(ctx context.Context) {
	m.wg.Go(func() {
		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		m.logger.Info("starting sampling loop", "interval", m.interval)

		// Immediate first collection
		m.collect(ctx)

		for {
			select {
			case <-ctx.Done():
				m.logger.Info("sampling loop shutdown complete")
				return
			case <-ticker.C:
				m.collect(ctx)
			}
		}
	})
}

// Wait blocks until the sampling goroutine exits.
func (m *Monitor) Wait() {
	m.wg.Wait()
}

// collect takes one snapshot and updates the built-in gauges.
func (m *Monitor) collect(ctx context.Context) {
	start := time.Now()
	snap, err := m.sampler.Sample(ctx)
	m.telemetry.ObserveSample(time.Since(start), err)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		m.logger.Warn("failed to sample host", "error", err)
		return
	}

	m.update(CPUUsage, snap.CPUBusyPercent)
	m.update(MemoryUsage, snap.MemoryPercent())

	m.logger.Debug("sample",
		CPUUsage, snap.CPUBusyPercent,
		MemoryUsage, snap.MemoryPercent(),
		"took", time.Since(start),
	)
}

// update pushes a value, logging and dropping any registry error.
func (m *Monitor) update(name string, value float64) {
	if err := m.registry.Update(name, value); err != nil {
		m.telemetry.UpdateFailed(name)
		m.logger.Error("failed to update metric", "name", name, "error", err)
	}
}
