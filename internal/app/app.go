package app

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"

	"github.com/harshdoesdev/instance-monitor/internal/config"
	"github.com/harshdoesdev/instance-monitor/internal/exporter"
	"github.com/harshdoesdev/instance-monitor/internal/metric"
	"github.com/harshdoesdev/instance-monitor/internal/monitor"
	"github.com/harshdoesdev/instance-monitor/internal/sampler"
	"github.com/harshdoesdev/instance-monitor/internal/server"
	"github.com/harshdoesdev/instance-monitor/internal/telemetry"
)

// App holds initialized application components.
type App struct {
	Config       *config.Config
	Registry     *metric.Registry
	Monitor      *monitor.Monitor
	Server       *server.Server
	OTELExporter *exporter.OTELExporter
	Telemetry    *telemetry.Telemetry

	logger *slog.Logger
}

// Option overrides a default collaborator.
type Option func(*options)

type options struct {
	sampler  sampler.Sampler
	instance string
	logger   *slog.Logger
}

// WithSampler replaces the host sampler.
func WithSampler(s sampler.Sampler) Option {
	return func(o *options) {
		o.sampler = s
	}
}

// WithInstance sets the instance label instead of resolving it.
func WithInstance(instance string) Option {
	return func(o *options) {
		o.instance = instance
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// New initializes the application from a resolved configuration.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*App, error) {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.sampler == nil {
		o.sampler = sampler.NewHost(ctx)
	}
	if o.instance == "" {
		o.instance = sampler.InstanceLabel(ctx)
	}

	registry := metric.NewRegistry()

	var tel *telemetry.Telemetry
	internalPath := ""
	if cfg.Settings.InternalMetrics.Enabled {
		tel = telemetry.New()
		internalPath = cfg.Settings.InternalMetrics.Path
	}

	mon := monitor.New(cfg.Sampling.Interval, registry, o.sampler,
		monitor.WithLogger(o.logger),
		monitor.WithTelemetry(tel),
	)
	if err := mon.Setup(o.instance); err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}

	srv := server.New(cfg.Server.Addr(), cfg.Server.Path, registry, o.logger,
		server.WithTelemetry(tel, internalPath),
	)

	// Create OTEL exporter if enabled
	var otelExporter *exporter.OTELExporter
	if cfg.Export.OTELEnabled() {
		var err error
		otelExporter, err = exporter.NewOTELExporter(ctx, cfg.Export.OTEL, registry)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTEL exporter: %w", err)
		}
	}

	return &App{
		Config:       cfg,
		Registry:     registry,
		Monitor:      mon,
		Server:       srv,
		OTELExporter: otelExporter,
		Telemetry:    tel,
		logger:       o.logger,
	}, nil
}

// Run starts the sampling loop and exporters and blocks until ctx is
// cancelled or an exporter fails.
func (a *App) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.Config.Server.Addr())
	if err != nil {
		return fmt.Errorf("%w: %w", server.ErrBind, err)
	}
	return a.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (a *App) Serve(ctx context.Context, ln net.Listener) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.Monitor.Run(runCtx)

	var wg sync.WaitGroup
	errChan := make(chan error, 2)

	wg.Go(func() {
		if err := a.Server.Serve(runCtx, ln); err != nil {
			errChan <- fmt.Errorf("http server: %w", err)
		}
	})

	if a.OTELExporter != nil {
		wg.Go(func() {
			if err := a.OTELExporter.Start(runCtx); err != nil {
				errChan <- fmt.Errorf("otel exporter: %w", err)
			}
		})
	}

	a.logger.Debug("--- Application Running ---")

	var runErr error
	select {
	case runErr = <-errChan:
		a.logger.Error("exporter error", "error", runErr)
	case <-ctx.Done():
	}

	a.logger.Debug("--- Shutdown Initiated ---")
	cancel()
	wg.Wait()
	a.Monitor.Wait()

	return runErr
}
