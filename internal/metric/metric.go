package metric

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

var (
	// ErrNotFound is returned when an operation references an unregistered metric.
	ErrNotFound = errors.New("metric not found")

	// ErrInvalidInput is returned when a registration or label is malformed.
	ErrInvalidInput = errors.New("invalid input")

	// ErrRenderFailure is returned when exposition text cannot be produced.
	ErrRenderFailure = errors.New("failed to render metrics")
)

// Kind defines the semantic type of a metric.
type Kind string

const (
	KindGauge Kind = "gauge"
)

// Valid reports whether the kind is supported by the registry.
func (k Kind) Valid() bool {
	switch k {
	case KindGauge:
		return true
	default:
		return false
	}
}

// Label is a single key/value pair attached to a metric.
type Label struct {
	Key   string
	Value string
}

// Metric is a named, labeled, timestamped measurement owned by a Registry.
// Name and kind are fixed at construction; everything else is guarded by mu.
type Metric struct {
	name string
	kind Kind

	mu         sync.RWMutex
	value      float64
	labels     []Label
	observedAt time.Time
}

func newMetric(name string, kind Kind) *Metric {
	return &Metric{
		name:       name,
		kind:       kind,
		observedAt: time.Now(),
	}
}

// set applies a new observation according to the metric kind.
func (m *Metric) set(v float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.kind {
	case KindGauge:
		m.value = v
	default:
		return fmt.Errorf("%w: unsupported kind %q for metric %q", ErrInvalidInput, m.kind, m.name)
	}
	m.observedAt = time.Now()
	return nil
}

func (m *Metric) addLabel(key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.labels = append(m.labels, Label{Key: key, Value: value})
}

// sample copies the mutable state under a single read lock.
func (m *Metric) sample() Sample {
	m.mu.RLock()
	defer m.mu.RUnlock()

	labels := make([]Label, len(m.labels))
	copy(labels, m.labels)

	return Sample{
		Name:       m.name,
		Kind:       m.kind,
		Labels:     labels,
		Value:      m.value,
		ObservedAt: m.observedAt,
	}
}

// Sample is a point-in-time copy of one metric.
type Sample struct {
	Name       string
	Kind       Kind
	Labels     []Label
	Value      float64
	ObservedAt time.Time
}
