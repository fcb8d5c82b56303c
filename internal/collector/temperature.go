// CPU temperature collector: gathers a thermal sensor reading.
// Uses gopsutil host sensors. The hottest CPU sensor wins; when no
// sensor matches a CPU name, the first valid reading is used.
package collector

import (
	"context"
	"errors"
	"strings"

	"github.com/shirou/gopsutil/v3/host"
	"go.uber.org/zap"

	"github.com/rocks-app/agent/internal/models"
)

// DefaultCPUTemperature is reported when the platform exposes no sensor.
const DefaultCPUTemperature = 58.0

// cpuSensorHints are lower-cased fragments of sensor keys that gopsutil
// reports for CPU dies: hwmon chip names on Linux, SMC keys on macOS and
// WMI thermal zone labels on Windows.
var cpuSensorHints = []string{
	"cpu", "core", "package",
	"coretemp", "k10temp", "zenpower", "tctl", "tdie",
	"acpitz",
	"tc0p", "tc0d", "tcxc",
}

// Plausible reading range in °C. Anything outside is a broken sensor.
const (
	sensorFloor   = 0.0
	sensorCeiling = 150.0
)

var errNoSensor = errors.New("no temperature sensor available")

// TemperatureCollector collects the CPU temperature.
type TemperatureCollector struct {
	sensors func(ctx context.Context) ([]host.TemperatureStat, error)
	logger  *zap.Logger
}

// NewTemperatureCollector returns a collector backed by host sensors.
func NewTemperatureCollector(logger *zap.Logger) *TemperatureCollector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TemperatureCollector{
		sensors: host.SensorsTemperaturesWithContext,
		logger:  logger,
	}
}

// Category returns the collector category.
func (c *TemperatureCollector) Category() models.Category { return models.CategoryTemperature }

// Collect reads the sensors and returns a TemperatureRecord.
func (c *TemperatureCollector) Collect(ctx context.Context) (interface{}, error) {
	temps, err := c.sensors(ctx)
	if err != nil && len(temps) == 0 {
		return nil, err
	}
	if err != nil {
		// gopsutil reports per-sensor warnings alongside partial results
		c.logger.Debug("Partial temperature sensor data", zap.Error(err))
	}

	temp, ok := pickCPUTemperature(temps)
	if !ok {
		return nil, errNoSensor
	}
	c.logger.Debug("CPU temperature collected", zap.Float64("temp_c", temp))
	return models.TemperatureRecord{CPU: round(temp, 1)}, nil
}

// Fallback returns the default temperature record.
func (c *TemperatureCollector) Fallback() interface{} {
	return models.TemperatureRecord{CPU: DefaultCPUTemperature}
}

// pickCPUTemperature returns the hottest valid CPU sensor, or the first
// valid sensor of any kind when none is named like a CPU sensor.
func pickCPUTemperature(temps []host.TemperatureStat) (float64, bool) {
	var cpuMax, first float64
	cpuFound, anyFound := false, false

	for _, t := range temps {
		if t.Temperature <= sensorFloor || t.Temperature > sensorCeiling {
			continue
		}
		if !anyFound {
			first = t.Temperature
			anyFound = true
		}
		if isCPUSensor(t.SensorKey) && (!cpuFound || t.Temperature > cpuMax) {
			cpuMax, cpuFound = t.Temperature, true
		}
	}

	switch {
	case cpuFound:
		return cpuMax, true
	case anyFound:
		return first, true
	default:
		return 0, false
	}
}

func isCPUSensor(key string) bool {
	key = strings.ToLower(key)
	for _, hint := range cpuSensorHints {
		if strings.Contains(key, hint) {
			return true
		}
	}
	return false
}
