package auth

import "github.com/rocks-app/agent/internal/models"

// ConfigPayload is the body of POST /api/update_confg_maquina.
type ConfigPayload struct {
	Data ConfigData `json:"data"`
}

// ConfigData carries the machine configuration with the collector's
// field names.
type ConfigData struct {
	Name          string      `json:"Nome"`
	MAC           string      `json:"MAC"`
	Type          string      `json:"type"`
	Notifications bool        `json:"Notificar"`
	Frequency     int         `json:"Frequency"`
	StartWithOS   bool        `json:"iniciarSO"`
	Status        StatusFlags `json:"status"`
}

// StatusFlags is the wire form of models.MonitoredStatus.
type StatusFlags struct {
	Disk        bool `json:"DISCO"`
	Network     bool `json:"REDE"`
	RAM         bool `json:"RAM"`
	Temperature bool `json:"TEMPERATURA"`
	Processes   bool `json:"PROCESSO"`
	CPU         bool `json:"CPU"`
}

// BuildConfigPayload maps cfg to the collector's configuration payload.
// cfg is normalized first, so an unset frequency is sent as 1.
func BuildConfigPayload(cfg models.MonitoringConfig, macAddress, machineType string) ConfigPayload {
	cfg = cfg.Normalize()
	s := cfg.MonitoredStatus
	return ConfigPayload{
		Data: ConfigData{
			Name:          cfg.MachineName,
			MAC:           macAddress,
			Type:          machineType,
			Notifications: cfg.Notifications,
			Frequency:     cfg.UpdateFrequency,
			StartWithOS:   cfg.StartWithOS,
			Status: StatusFlags{
				Disk:        s.Disk,
				Network:     s.Network,
				RAM:         s.RAM,
				Temperature: s.Temperature,
				Processes:   s.Processes,
				CPU:         s.CPU,
			},
		},
	}
}

// statusPayload wraps a snapshot for PUT /api/maquina/status.
type statusPayload struct {
	Data models.MetricSnapshot `json:"data"`
}
