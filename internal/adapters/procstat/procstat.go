// Package procstat reports host CPU usage alongside each luminance sample.
package procstat

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v4/cpu"
)

// Monitor implements ports.CPUMonitor with gopsutil.
type Monitor struct {
	percent func(ctx context.Context) ([]float64, error)
}

// NewMonitor returns a monitor over all CPUs combined.
func NewMonitor() *Monitor {
	return &Monitor{percent: func(ctx context.Context) ([]float64, error) {
		// zero interval compares against the previous call
		return cpu.PercentWithContext(ctx, 0, false)
	}}
}

// CPUPercent returns combined CPU usage in [0,100] since the previous call.
func (m *Monitor) CPUPercent(ctx context.Context) (float64, error) {
	values, err := m.percent(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read cpu usage: %w", err)
	}
	if len(values) == 0 {
		return 0, fmt.Errorf("failed to read cpu usage: no values")
	}
	return clamp(values[0]), nil
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	}
	return v
}
