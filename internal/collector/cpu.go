// CPU usage collector: gathers overall and per-core CPU utilization.
// Uses gopsutil for cross-platform CPU metrics.
package collector

import (
	"context"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"

	"github.com/rocks-app/agent/internal/models"
)

// CPUCollector collects CPU usage metrics.
type CPUCollector struct {
	interval time.Duration
}

// NewCPUCollector creates a new CPU collector. The overall measurement
// blocks for interval; values <= 0 default to one second.
func NewCPUCollector(interval time.Duration) *CPUCollector {
	if interval <= 0 {
		interval = time.Second
	}
	return &CPUCollector{interval: interval}
}

// Category returns the collector category.
func (c *CPUCollector) Category() models.Category { return models.CategoryCPU }

// Collect gathers overall and per-core usage plus core counts.
func (c *CPUCollector) Collect(ctx context.Context) (interface{}, error) {
	overall, err := cpu.PercentWithContext(ctx, c.interval, false)
	if err != nil {
		return nil, err
	}

	// Per-core usage (since the previous per-core call)
	cores, err := cpu.PercentWithContext(ctx, 0, true)
	if err != nil {
		cores = nil
	}

	physical, err := cpu.CountsWithContext(ctx, false)
	if err != nil {
		physical = 0
	}
	logical, err := cpu.CountsWithContext(ctx, true)
	if err != nil {
		logical = 0
	}

	result := models.CPURecord{
		PerCorePercent: make([]float64, 0, len(cores)),
		PhysicalCores:  physical,
		LogicalCores:   logical,
	}
	if len(overall) > 0 {
		result.TotalPercent = round(overall[0], 1)
	}
	for _, p := range cores {
		result.PerCorePercent = append(result.PerCorePercent, round(p, 1))
	}

	return result, nil
}

// Fallback returns an all-zero CPU record.
func (c *CPUCollector) Fallback() interface{} {
	return models.CPURecord{PerCorePercent: []float64{}}
}
