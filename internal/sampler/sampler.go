// Package sampler reads host CPU and memory utilization.
package sampler

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
)

// Snapshot is a single reading of global host utilization.
type Snapshot struct {
	CPUBusyPercent float64
	MemoryUsed     uint64
	MemoryTotal    uint64
}

// MemoryPercent returns used memory as a percentage of total.
func (s Snapshot) MemoryPercent() float64 {
	return MemoryPercent(s.MemoryUsed, s.MemoryTotal)
}

// MemoryPercent returns 100*used/total, or 0 when total is 0.
func MemoryPercent(used, total uint64) float64 {
	if total == 0 {
		return 0
	}
	return float64(used) / float64(total) * 100
}

// Sampler produces host utilization snapshots. Implementations may block.
type Sampler interface {
	Sample(ctx context.Context) (Snapshot, error)
}

// SamplerFunc adapts a function to the Sampler interface.
type SamplerFunc func(ctx context.Context) (Snapshot, error)

// Sample calls f(ctx).
func (f SamplerFunc) Sample(ctx context.Context) (Snapshot, error) {
	return f(ctx)
}

// Host samples the machine the process runs on.
type Host struct{}

// NewHost creates a host sampler and primes the CPU baseline, so the first
// Sample reports utilization since construction rather than since boot.
func NewHost(ctx context.Context) *Host {
	_, _ = cpu.PercentWithContext(ctx, 0, false)
	return &Host{}
}

// Sample reads global CPU busy percent since the previous call and
// current virtual memory usage.
func (h *Host) Sample(ctx context.Context) (Snapshot, error) {
	percents, err := cpu.PercentWithContext(ctx, 0, false)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to read cpu percent: %w", err)
	}
	if len(percents) == 0 {
		return Snapshot{}, fmt.Errorf("failed to read cpu percent: no data")
	}

	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("failed to read virtual memory: %w", err)
	}

	return Snapshot{
		CPUBusyPercent: percents[0],
		MemoryUsed:     vm.Used,
		MemoryTotal:    vm.Total,
	}, nil
}
