package exporter

import (
	"context"
	"fmt"

	"github.com/harshdoesdev/instance-monitor/internal/metric"
	"go.opentelemetry.io/otel/attribute"
	otelmetric "go.opentelemetry.io/otel/metric"
)

// registerOTELInstruments creates one observable gauge per registered metric.
func registerOTELInstruments(e *OTELExporter) error {
	instruments := make(map[string]otelmetric.Float64ObservableGauge)
	observables := make([]otelmetric.Observable, 0, e.registry.Len())

	for _, s := range e.registry.Snapshot() {
		switch s.Kind {
		case metric.KindGauge:
			gauge, err := e.meter.Float64ObservableGauge(s.Name)
			if err != nil {
				return fmt.Errorf("failed to create gauge %q: %w", s.Name, err)
			}
			instruments[s.Name] = gauge
			observables = append(observables, gauge)
		default:
			return fmt.Errorf("unsupported metric kind %q for %q", s.Kind, s.Name)
		}

		e.logger.Info("registered otel metric",
			"name", s.Name,
			"type", s.Kind,
			"attributes", len(s.Labels))
	}

	e.instruments = instruments

	if len(observables) == 0 {
		return nil
	}

	// Register callback
	reg, err := e.meter.RegisterCallback(
		func(ctx context.Context, observer otelmetric.Observer) error {
			e.logger.Debug("otel push", "metrics", len(e.instruments))

			for _, s := range e.registry.Snapshot() {
				gauge, ok := e.instruments[s.Name]
				if !ok {
					continue
				}
				observer.ObserveFloat64(gauge, s.Value,
					otelmetric.WithAttributes(labelAttributes(s.Labels)...))
			}
			return nil
		},
		observables...,
	)
	if err != nil {
		return fmt.Errorf("failed to register callback: %w", err)
	}
	e.registration = reg

	return nil
}

// labelAttributes converts labels to attributes. OTEL attribute sets keep
// the last value for a repeated key.
func labelAttributes(labels []metric.Label) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(labels))
	for _, l := range labels {
		attrs = append(attrs, attribute.String(l.Key, l.Value))
	}
	return attrs
}
