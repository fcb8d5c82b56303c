package collector

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/rocks-app/agent/internal/models"
)

// Options configures the built-in collectors.
type Options struct {
	CPUInterval  time.Duration
	DiskPath     string
	TopProcesses int
}

// IdentitySource supplies the machine identity attached to snapshots.
type IdentitySource interface {
	Resolve(ctx context.Context) models.MachineIdentity
}

// Sampler assembles MetricSnapshots from the registry's collectors.
type Sampler struct {
	registry *Registry
	identity IdentitySource
	logger   *zap.Logger
	now      func() time.Time
}

// NewSampler creates a Sampler over registry, stamping snapshots with the
// identity from src.
func NewSampler(registry *Registry, src IdentitySource, logger *zap.Logger) *Sampler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Sampler{
		registry: registry,
		identity: src,
		logger:   logger.Named("sampler"),
		now:      time.Now,
	}
}

// Collect samples only the enabled categories and assembles a snapshot
// with the machine identity and an ISO-8601 timestamp.
// Category failures never surface here; an error means the snapshot
// itself could not be built (cancelled context or an unexpected panic).
func (s *Sampler) Collect(ctx context.Context, status models.MonitoredStatus) (snap models.MetricSnapshot, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%w: assembling snapshot: %v", ErrUnexpected, rec)
		}
	}()

	if err := ctx.Err(); err != nil {
		return models.MetricSnapshot{}, err
	}

	categories := status.Categories()
	results := s.registry.CollectAll(ctx, categories)
	if err := ctx.Err(); err != nil {
		return models.MetricSnapshot{}, err
	}

	snap = assembleSnapshot(results)
	snap.Timestamp = s.now().Format(time.RFC3339)
	snap.MachineInfo.MachineIdentity = s.identity.Resolve(ctx)

	s.logger.Debug("Collected metrics",
		zap.Int("categories", len(categories)),
		zap.String("timestamp", snap.Timestamp))
	return snap, nil
}

// assembleSnapshot maps collector results into a MetricSnapshot.
func assembleSnapshot(results map[models.Category]interface{}) models.MetricSnapshot {
	var snapshot models.MetricSnapshot

	if data, ok := results[models.CategoryCPU]; ok {
		if rec, ok := data.(models.CPURecord); ok {
			snapshot.CPU = &rec
		}
	}

	if data, ok := results[models.CategoryRAM]; ok {
		if rec, ok := data.(models.RAMRecord); ok {
			snapshot.RAM = &rec
		}
	}

	if data, ok := results[models.CategoryDisk]; ok {
		if rec, ok := data.(models.DiskRecord); ok {
			snapshot.Disk = &rec
		}
	}

	if data, ok := results[models.CategoryNetwork]; ok {
		if rec, ok := data.(models.NetworkRecord); ok {
			snapshot.Network = &rec
		}
	}

	if data, ok := results[models.CategoryTemperature]; ok {
		if rec, ok := data.(models.TemperatureRecord); ok {
			snapshot.Temperature = &rec
		}
	}

	if data, ok := results[models.CategoryProcesses]; ok {
		if procs, ok := data.([]models.ProcessRecord); ok {
			snapshot.Processes = &procs
		}
	}

	return snapshot
}
