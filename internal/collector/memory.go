// RAM usage collector: gathers total, available and used memory.
// Uses gopsutil for cross-platform memory metrics.
package collector

import (
	"context"

	"github.com/shirou/gopsutil/v3/mem"

	"github.com/rocks-app/agent/internal/models"
)

// MemoryCollector collects RAM usage metrics.
type MemoryCollector struct{}

// NewMemoryCollector creates a new memory collector.
func NewMemoryCollector() *MemoryCollector {
	return &MemoryCollector{}
}

// Category returns the collector category.
func (c *MemoryCollector) Category() models.Category { return models.CategoryRAM }

// Collect gathers memory usage in GB, rounded to one decimal.
func (c *MemoryCollector) Collect(ctx context.Context) (interface{}, error) {
	v, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return nil, err
	}
	return models.RAMRecord{
		TotalGB:     round(float64(v.Total)/bytesPerGB, 1),
		AvailableGB: round(float64(v.Available)/bytesPerGB, 1),
		UsedGB:      round(float64(v.Used)/bytesPerGB, 1),
		Percent:     round(v.UsedPercent, 1),
	}, nil
}

// Fallback returns an all-zero RAM record.
func (c *MemoryCollector) Fallback() interface{} { return models.RAMRecord{} }
