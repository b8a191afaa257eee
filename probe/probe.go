// Package probe samples local hardware utilization for carbon audits.
package probe

import (
	"context"
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"

	"greensentry/estimator"
)

// Probe supplies utilization samples. Implementations must return
// percentages in [0,100]; the estimator rejects anything else.
type Probe interface {
	Sample(ctx context.Context) (estimator.LocalAuditSample, error)
}

// Hardware reads real CPU and memory utilization from the local machine.
// CPU is sampled over Interval, so Sample blocks for that long.
type Hardware struct {
	Interval time.Duration
}

// NewHardware creates a probe with the given CPU sampling interval.
// An interval of 1s gives a stable reading; shorter intervals are noisier.
func NewHardware(interval time.Duration) *Hardware {
	if interval <= 0 {
		interval = time.Second
	}
	return &Hardware{Interval: interval}
}

// Sample reads CPU and RAM utilization. Failures wrap
// estimator.ErrUpstreamUnavailable so callers can surface them as text
// without retrying here.
func (h *Hardware) Sample(ctx context.Context) (estimator.LocalAuditSample, error) {
	percents, err := cpu.PercentWithContext(ctx, h.Interval, false)
	if err != nil {
		return estimator.LocalAuditSample{}, fmt.Errorf("%w: cpu probe failed: %v", estimator.ErrUpstreamUnavailable, err)
	}
	if len(percents) == 0 {
		return estimator.LocalAuditSample{}, fmt.Errorf("%w: cpu probe returned no readings", estimator.ErrUpstreamUnavailable)
	}

	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return estimator.LocalAuditSample{}, fmt.Errorf("%w: memory probe failed: %v", estimator.ErrUpstreamUnavailable, err)
	}

	return estimator.LocalAuditSample{
		CPUPercent: percents[0],
		RAMPercent: vm.UsedPercent,
	}, nil
}
