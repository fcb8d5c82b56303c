// Top N processes collector: gathers the most CPU-intensive processes.
// Uses gopsutil for cross-platform process listing.
package collector

import (
	"context"
	"sort"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/rocks-app/agent/internal/models"
)

// DefaultTopProcesses is the number of processes reported by default.
const DefaultTopProcesses = 5

// ProcessCollector collects the top N processes by CPU usage.
type ProcessCollector struct {
	topN int
}

// NewProcessCollector creates a new process collector that returns the top N
// processes sorted by CPU usage descending. n <= 0 selects DefaultTopProcesses.
func NewProcessCollector(n int) *ProcessCollector {
	if n <= 0 {
		n = DefaultTopProcesses
	}
	return &ProcessCollector{topN: n}
}

// Category returns the collector category.
func (c *ProcessCollector) Category() models.Category { return models.CategoryProcesses }

// Collect gathers the top N processes with non-zero CPU usage.
// Processes that exit or deny access during iteration are skipped.
func (c *ProcessCollector) Collect(ctx context.Context) (interface{}, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}

	var records []models.ProcessRecord
	for _, p := range procs {
		cpuPct, err := p.CPUPercentWithContext(ctx)
		if err != nil || cpuPct <= 0 {
			continue
		}
		name, err := p.NameWithContext(ctx)
		if err != nil {
			continue
		}
		memInfo, err := p.MemoryInfoWithContext(ctx)
		if err != nil || memInfo == nil {
			continue
		}

		records = append(records, models.ProcessRecord{
			Name:       name,
			CPUPercent: round(cpuPct, 1),
			MemoryMB:   round(float64(memInfo.RSS)/bytesPerMB, 1),
		})
	}

	return topProcesses(records, c.topN), nil
}

// Fallback returns an empty process list.
func (c *ProcessCollector) Fallback() interface{} { return []models.ProcessRecord{} }

// topProcesses sorts by CPU descending, keeping iteration order for ties,
// and returns at most n entries. Entries with zero CPU are dropped.
func topProcesses(records []models.ProcessRecord, n int) []models.ProcessRecord {
	out := make([]models.ProcessRecord, 0, len(records))
	for _, r := range records {
		if r.CPUPercent > 0 {
			out = append(out, r)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CPUPercent > out[j].CPUPercent
	})

	if len(out) > n {
		out = out[:n]
	}
	return out
}
