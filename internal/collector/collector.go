// Package collector defines the Collector interface and provides
// implementations for each monitored metric category.
package collector

import (
	"context"
	"math"

	"github.com/rocks-app/agent/internal/models"
)

// Collector is the interface that all metric collectors must implement.
// Each collector gathers the record of a single category.
type Collector interface {
	// Category returns the metric category this collector serves.
	Category() models.Category

	// Collect gathers the metric data and returns it.
	// The context allows for cancellation and timeout control.
	Collect(ctx context.Context) (interface{}, error)

	// Fallback returns the record reported when Collect fails.
	Fallback() interface{}
}

const (
	bytesPerGB = 1024 * 1024 * 1024
	bytesPerMB = 1024 * 1024
)

// round rounds v to the given number of decimal places.
func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
