package metric

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// Registry is a concurrent set of metrics keyed by name.
//
// The registry lock only guards the name index. Each metric carries its own
// lock, so updates to one metric never wait on reads of another and Export
// holds at most one metric lock at a time. Export and Snapshot walk metrics
// in registration order.
type Registry struct {
	mu      sync.RWMutex
	metrics map[string]*Metric
	order   []*Metric
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		metrics: make(map[string]*Metric),
	}
}

// Register creates a metric with value 0 and no labels.
// Registering a name that already exists is a no-op.
func (r *Registry) Register(name string, kind Kind) error {
	if name == "" {
		return fmt.Errorf("%w: metric name cannot be empty", ErrInvalidInput)
	}
	if !kind.Valid() {
		return fmt.Errorf("%w: unsupported metric kind %q for %q", ErrInvalidInput, kind, name)
	}

	r.mu.RLock()
	_, exists := r.metrics[name]
	r.mu.RUnlock()
	if exists {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Re-check under the write lock; another goroutine may have won.
	if _, exists := r.metrics[name]; exists {
		return nil
	}

	m := newMetric(name, kind)
	r.metrics[name] = m
	r.order = append(r.order, m)
	return nil
}

// AddLabel appends a label pair to a registered metric.
func (r *Registry) AddLabel(name, key, value string) error {
	if key == "" {
		return fmt.Errorf("%w: label key cannot be empty", ErrInvalidInput)
	}

	m, err := r.lookup(name)
	if err != nil {
		return err
	}

	m.addLabel(key, value)
	return nil
}

// Update sets the value of a registered metric and refreshes its timestamp.
func (r *Registry) Update(name string, value float64) error {
	m, err := r.lookup(name)
	if err != nil {
		return err
	}
	return m.set(value)
}

// Export renders all metrics as exposition text.
func (r *Registry) Export() (string, error) {
	var b strings.Builder
	if err := r.Write(&b); err != nil {
		return "", err
	}
	return b.String(), nil
}

// Write renders all metrics as exposition text to w.
// Each metric is read atomically; the set as a whole is not.
func (r *Registry) Write(w io.Writer) error {
	metrics := r.list()

	lines := make([]string, 0, len(metrics))
	for _, m := range metrics {
		lines = append(lines, formatLine(m.sample()))
	}

	if _, err := io.WriteString(w, strings.Join(lines, "\n")+"\n"); err != nil {
		return fmt.Errorf("%w: %w", ErrRenderFailure, err)
	}
	return nil
}

// Snapshot returns a copy of every metric in registration order.
func (r *Registry) Snapshot() []Sample {
	metrics := r.list()

	samples := make([]Sample, 0, len(metrics))
	for _, m := range metrics {
		samples = append(samples, m.sample())
	}
	return samples
}

// Len returns the number of registered metrics.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

func (r *Registry) lookup(name string) (*Metric, error) {
	r.mu.RLock()
	m, exists := r.metrics[name]
	r.mu.RUnlock()

	if !exists {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return m, nil
}

// list copies the ordered index so rendering runs without the registry lock.
func (r *Registry) list() []*Metric {
	r.mu.RLock()
	defer r.mu.RUnlock()

	metrics := make([]*Metric, len(r.order))
	copy(metrics, r.order)
	return metrics
}
