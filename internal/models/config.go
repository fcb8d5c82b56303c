package models

// Update frequency bounds, in seconds.
const (
	MinUpdateFrequency     = 1
	MaxUpdateFrequency     = 10
	DefaultUpdateFrequency = 1
)

// Category identifies one metric category that can be monitored.
type Category string

const (
	CategoryCPU         Category = "cpu"
	CategoryRAM         Category = "ram"
	CategoryDisk        Category = "disco"
	CategoryNetwork     Category = "rede"
	CategoryTemperature Category = "temperatura"
	CategoryProcesses   Category = "processos"
)

// AllCategories lists every category in a stable order.
var AllCategories = []Category{
	CategoryCPU,
	CategoryRAM,
	CategoryDisk,
	CategoryNetwork,
	CategoryTemperature,
	CategoryProcesses,
}

// MonitoredStatus holds the enabled flag of each category.
// An omitted flag is false.
type MonitoredStatus struct {
	CPU         bool `json:"cpu" yaml:"cpu"`
	RAM         bool `json:"ram" yaml:"ram"`
	Disk        bool `json:"disco" yaml:"disco"`
	Network     bool `json:"rede" yaml:"rede"`
	Temperature bool `json:"temperatura" yaml:"temperatura"`
	Processes   bool `json:"processos" yaml:"processos"`
}

// Enabled reports whether the given category is switched on.
func (s MonitoredStatus) Enabled(c Category) bool {
	switch c {
	case CategoryCPU:
		return s.CPU
	case CategoryRAM:
		return s.RAM
	case CategoryDisk:
		return s.Disk
	case CategoryNetwork:
		return s.Network
	case CategoryTemperature:
		return s.Temperature
	case CategoryProcesses:
		return s.Processes
	default:
		return false
	}
}

// Categories returns the enabled categories in AllCategories order.
func (s MonitoredStatus) Categories() []Category {
	var out []Category
	for _, c := range AllCategories {
		if s.Enabled(c) {
			out = append(out, c)
		}
	}
	return out
}

// MonitoringConfig is the per-machine monitoring configuration chosen by
// the user. It is supplied by the outer layer and validated once with
// Normalize.
type MonitoringConfig struct {
	MachineName     string          `json:"machine_name" yaml:"machine_name"`
	MonitoredStatus MonitoredStatus `json:"monitored_status" yaml:"monitored_status"`
	// UpdateFrequency is the sampling period in seconds. Zero means "not set"
	// and becomes DefaultUpdateFrequency.
	UpdateFrequency int  `json:"update_frequency" yaml:"update_frequency"`
	Notifications   bool `json:"notifications" yaml:"notifications"`
	StartWithOS     bool `json:"start_with_os" yaml:"start_with_os"`
}

// Normalize returns a copy with defaults applied and the update frequency
// clamped to [MinUpdateFrequency, MaxUpdateFrequency].
func (c MonitoringConfig) Normalize() MonitoringConfig {
	switch {
	case c.UpdateFrequency == 0:
		c.UpdateFrequency = DefaultUpdateFrequency
	case c.UpdateFrequency < MinUpdateFrequency:
		c.UpdateFrequency = MinUpdateFrequency
	case c.UpdateFrequency > MaxUpdateFrequency:
		c.UpdateFrequency = MaxUpdateFrequency
	}
	return c
}
