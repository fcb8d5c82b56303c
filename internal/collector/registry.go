// Package collector provides a registry for managing metric collectors.
// Collectors are registered at startup; the sampler asks the registry to
// run the collectors of the enabled categories concurrently.
package collector

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/rocks-app/agent/internal/models"
)

// ErrUnexpected marks a failure the collectors could not absorb.
var ErrUnexpected = errors.New("unexpected collection failure")

// Registry manages all registered collectors and orchestrates concurrent collection.
type Registry struct {
	collectors map[models.Category]Collector
	logger     *zap.Logger
}

// NewRegistry creates a new collector registry with the given logger.
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		collectors: make(map[models.Category]Collector),
		logger:     logger,
	}
}

// NewDefaultRegistry registers the built-in collector of every category.
func NewDefaultRegistry(opts Options, logger *zap.Logger) *Registry {
	r := NewRegistry(logger)
	r.Register(NewCPUCollector(opts.CPUInterval))
	r.Register(NewMemoryCollector())
	r.Register(NewDiskCollector(opts.DiskPath))
	r.Register(NewNetworkCollector())
	r.Register(NewTemperatureCollector(logger))
	r.Register(NewProcessCollector(opts.TopProcesses))
	return r
}

// Register adds a collector, replacing any collector of the same category.
func (r *Registry) Register(c Collector) {
	r.collectors[c.Category()] = c
	r.logger.Debug("Registered collector", zap.String("category", string(c.Category())))
}

// Sample runs the collector of one category. Any failure, including a
// panic, is logged and the collector's fallback record is returned.
// Returns nil only for a category with no registered collector.
func (r *Registry) Sample(ctx context.Context, category models.Category) interface{} {
	c, ok := r.collectors[category]
	if !ok {
		r.logger.Warn("No collector registered", zap.String("category", string(category)))
		return nil
	}

	data, err := runCollector(ctx, c)
	if err != nil {
		r.logger.Error("Collection failed, using fallback",
			zap.String("category", string(category)),
			zap.Error(err))
		return c.Fallback()
	}
	return data
}

// CollectAll samples the given categories concurrently and returns a map
// of category -> record. Failed collectors contribute their fallback.
func (r *Registry) CollectAll(ctx context.Context, categories []models.Category) map[models.Category]interface{} {
	results := make(map[models.Category]interface{}, len(categories))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, category := range categories {
		wg.Add(1)
		go func(cat models.Category) {
			defer wg.Done()
			data := r.Sample(ctx, cat)
			if data == nil {
				return
			}
			mu.Lock()
			results[cat] = data
			mu.Unlock()
		}(category)
	}

	wg.Wait()
	return results
}

// runCollector converts a panic inside a collector into an error.
func runCollector(ctx context.Context, c Collector) (data interface{}, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			data = nil
			err = fmt.Errorf("%w: %v", ErrUnexpected, rec)
		}
	}()
	return c.Collect(ctx)
}
