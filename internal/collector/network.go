// Network I/O collector: gathers cumulative sent/received counters.
// Uses gopsutil for cross-platform network metrics.
package collector

import (
	"context"
	"errors"

	"github.com/shirou/gopsutil/v3/net"

	"github.com/rocks-app/agent/internal/models"
)

// NetworkCollector collects cumulative network I/O since boot.
type NetworkCollector struct{}

// NewNetworkCollector creates a new network collector.
func NewNetworkCollector() *NetworkCollector {
	return &NetworkCollector{}
}

// Category returns the collector category.
func (c *NetworkCollector) Category() models.Category { return models.CategoryNetwork }

// Collect gathers total bytes sent/received across all interfaces, in MB
// rounded to two decimals.
func (c *NetworkCollector) Collect(ctx context.Context) (interface{}, error) {
	counters, err := net.IOCountersWithContext(ctx, false)
	if err != nil {
		return nil, err
	}
	if len(counters) == 0 {
		return nil, errors.New("no network counters reported")
	}

	return models.NetworkRecord{
		SentMB:     round(float64(counters[0].BytesSent)/bytesPerMB, 2),
		ReceivedMB: round(float64(counters[0].BytesRecv)/bytesPerMB, 2),
	}, nil
}

// Fallback returns an all-zero network record.
func (c *NetworkCollector) Fallback() interface{} { return models.NetworkRecord{} }
