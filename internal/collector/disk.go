// Disk usage collector: gathers usage of a single mount root.
// Uses gopsutil for cross-platform disk metrics.
package collector

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/shirou/gopsutil/v3/disk"

	"github.com/rocks-app/agent/internal/models"
)

// DiskCollector collects disk usage for a fixed mount root.
type DiskCollector struct {
	path string
}

// NewDiskCollector creates a new disk collector for path.
// An empty path selects DefaultDiskPath().
func NewDiskCollector(path string) *DiskCollector {
	if path == "" {
		path = DefaultDiskPath()
	}
	return &DiskCollector{path: path}
}

// DefaultDiskPath returns the system root: "/" or the Windows system drive.
func DefaultDiskPath() string {
	if runtime.GOOS == "windows" {
		drive := os.Getenv("SystemDrive")
		if drive == "" {
			drive = "C:"
		}
		return drive + `\`
	}
	return "/"
}

// Category returns the collector category.
func (c *DiskCollector) Category() models.Category { return models.CategoryDisk }

// Collect gathers total/used/free space in GB and the used percentage.
func (c *DiskCollector) Collect(ctx context.Context) (interface{}, error) {
	usage, err := disk.UsageWithContext(ctx, c.path)
	if err != nil {
		return nil, err
	}
	return diskRecord(usage.Total, usage.Used, usage.Free)
}

func diskRecord(total, used, free uint64) (models.DiskRecord, error) {
	// Some virtual mounts report 0 size
	if total == 0 {
		return models.DiskRecord{}, fmt.Errorf("mount reports zero size")
	}
	return models.DiskRecord{
		TotalGB: round(float64(total)/bytesPerGB, 1),
		UsedGB:  round(float64(used)/bytesPerGB, 1),
		FreeGB:  round(float64(free)/bytesPerGB, 1),
		Percent: round(float64(used)/float64(total)*100, 1),
	}, nil
}

// Fallback returns an all-zero disk record.
func (c *DiskCollector) Fallback() interface{} { return models.DiskRecord{} }
