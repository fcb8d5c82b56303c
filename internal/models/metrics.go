// Package models defines the data structures shared across the agent.
// Snapshot structures are serialized to JSON with the field names the
// collector expects; they are transmitted via PUT /api/maquina/status.
package models

import "encoding/json"

// MachineIdentity is the hardware/OS fingerprint of this host.
type MachineIdentity struct {
	Hostname        string `json:"hostname"`
	MACAddress      string `json:"mac_address"`
	OperatingSystem string `json:"operating_system"`
}

// SnapshotMachineInfo is the identity block attached to every snapshot.
// Type carries the session's machine type ("pc" or "server").
type SnapshotMachineInfo struct {
	MachineIdentity
	Type string `json:"type,omitempty"`
}

// MarshalJSON repeats the MAC address under "mac", the key older
// collector versions read.
func (m SnapshotMachineInfo) MarshalJSON() ([]byte, error) {
	type plain SnapshotMachineInfo
	return json.Marshal(struct {
		plain
		MAC string `json:"mac"`
	}{plain(m), m.MACAddress})
}

// MetricSnapshot represents a single point-in-time collection of the
// enabled metric categories. Categories that were not requested are nil
// and omitted from the payload. Processes is a pointer so that an enabled
// category with no busy process still serializes as an empty list.
type MetricSnapshot struct {
	Timestamp   string              `json:"timestamp"`
	CPU         *CPURecord          `json:"cpu,omitempty"`
	RAM         *RAMRecord          `json:"ram,omitempty"`
	Disk        *DiskRecord         `json:"disco,omitempty"`
	Network     *NetworkRecord      `json:"rede,omitempty"`
	Temperature *TemperatureRecord  `json:"temperatura,omitempty"`
	Processes   *[]ProcessRecord    `json:"top_5_processos_cpu,omitempty"`
	MachineInfo SnapshotMachineInfo `json:"machine_info"`
}

// CPURecord holds overall and per-core utilization plus core counts.
type CPURecord struct {
	TotalPercent   float64   `json:"percentual_total"`
	PerCorePercent []float64 `json:"percentual_por_nucleo"`
	PhysicalCores  int       `json:"nucleos_fisicos"`
	LogicalCores   int       `json:"nucleos_logicos"`
}

// RAMRecord holds memory usage in gigabytes, rounded to one decimal.
type RAMRecord struct {
	TotalGB     float64 `json:"total_gb"`
	AvailableGB float64 `json:"disponivel_gb"`
	UsedGB      float64 `json:"usado_gb"`
	Percent     float64 `json:"percentual"`
}

// DiskRecord holds usage of the monitored mount root.
type DiskRecord struct {
	TotalGB float64 `json:"total_gb"`
	UsedGB  float64 `json:"usado_gb"`
	FreeGB  float64 `json:"livre_gb"`
	Percent float64 `json:"percentual"`
}

// NetworkRecord holds cumulative traffic counters in megabytes.
type NetworkRecord struct {
	SentMB     float64 `json:"bytes_enviados_mb"`
	ReceivedMB float64 `json:"bytes_recebidos_mb"`
}

// TemperatureRecord holds the CPU temperature in degrees Celsius.
type TemperatureRecord struct {
	CPU float64 `json:"cpu"`
}

// ProcessRecord represents a single process's resource usage.
type ProcessRecord struct {
	Name       string  `json:"nome"`
	CPUPercent float64 `json:"cpu_percent"`
	MemoryMB   float64 `json:"memoria_mb"`
}
