package exporter

import (
	"context"
	"log/slog"
	"time"

	"github.com/harshdoesdev/instance-monitor/internal/config"
	"github.com/harshdoesdev/instance-monitor/internal/metric"
	otelmetric "go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

const meterName = "github.com/harshdoesdev/instance-monitor"

// OTELExporter pushes registry gauges to an OTEL collector.
type OTELExporter struct {
	config        *config.OTELExportConfig
	meterProvider *sdkmetric.MeterProvider
	meter         otelmetric.Meter
	registry      *metric.Registry
	instruments   map[string]otelmetric.Float64ObservableGauge
	registration  otelmetric.Registration
	logger        *slog.Logger
}

// NewOTELExporter creates a new OTEL exporter for every metric currently in
// the registry. Metrics registered later are not exported.
func NewOTELExporter(ctx context.Context, cfg *config.OTELExportConfig, registry *metric.Registry) (*OTELExporter, error) {
	res, err := createOTELResource(ctx, cfg.Resource)
	if err != nil {
		return nil, err
	}

	meterProvider, err := createMeterProvider(ctx, cfg, res)
	if err != nil {
		return nil, err
	}

	e := newOTELExporter(cfg, meterProvider, registry, slog.Default())
	if err := registerOTELInstruments(e); err != nil {
		_ = meterProvider.Shutdown(ctx)
		return nil, err
	}

	return e, nil
}

func newOTELExporter(
	cfg *config.OTELExportConfig,
	meterProvider *sdkmetric.MeterProvider,
	registry *metric.Registry,
	logger *slog.Logger,
) *OTELExporter {
	return &OTELExporter{
		config:        cfg,
		meterProvider: meterProvider,
		meter:         meterProvider.Meter(meterName),
		registry:      registry,
		logger:        logger,
	}
}

// Start blocks until ctx is cancelled, then flushes and shuts down.
// The periodic reader handles pushing in the background.
func (e *OTELExporter) Start(ctx context.Context) error {
	e.logger.Info("starting otel exporter",
		"endpoint", e.config.GetEndpoint(),
		"transport", e.config.Transport,
		"push_interval", e.config.Interval,
	)

	<-ctx.Done()
	return e.Stop()
}

// Stop gracefully stops the exporter.
func (e *OTELExporter) Stop() error {
	e.logger.Info("shutting down otel exporter")

	if e.registration != nil {
		if err := e.registration.Unregister(); err != nil {
			e.logger.Warn("failed to unregister otel callback", "error", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return e.meterProvider.Shutdown(ctx)
}
