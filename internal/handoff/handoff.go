// Package handoff persists the last submitted machine configuration so a
// separately launched monitor process can pick it up. The file is the
// contract between the process that configures the machine and the one
// that monitors it:
//
//	{
//	  "timestamp": "...",
//	  "machine_info": {"hostname", "mac_address", "operating_system", "type"},
//	  "configuration": {"machine_name", "monitored_status", "update_frequency",
//	                    "notifications", "start_with_os"}
//	}
package handoff

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rocks-app/agent/internal/fileutil"
	"github.com/rocks-app/agent/internal/models"
)

// DefaultFileName is the handoff file name inside the data directory.
const DefaultFileName = "configuracao_maquina.json"

// ErrInvalidStructure is returned when the file has no configuration.
var ErrInvalidStructure = errors.New("invalid configuration structure")

// Document is the content of the handoff file.
type Document struct {
	Timestamp     string                     `json:"timestamp"`
	MachineInfo   models.SnapshotMachineInfo `json:"machine_info"`
	Configuration *models.MonitoringConfig   `json:"configuration"`
}

// Store reads and writes the handoff file.
type Store struct {
	path   string
	logger *zap.Logger
	mu     sync.Mutex
	now    func() time.Time
}

// NewStore creates a Store for the file at path.
func NewStore(path string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		path:   path,
		logger: logger.Named("handoff"),
		now:    time.Now,
	}
}

// Path returns the handoff file location.
func (s *Store) Path() string { return s.path }

// Save writes cfg together with the machine identity and type, replacing
// any previous file.
func (s *Store) Save(cfg models.MonitoringConfig, info models.MachineIdentity, machineType string) error {
	cfg = cfg.Normalize()
	doc := Document{
		Timestamp: s.now().Format(time.RFC3339),
		MachineInfo: models.SnapshotMachineInfo{
			MachineIdentity: info,
			Type:            machineType,
		},
		Configuration: &cfg,
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding machine config: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := fileutil.WriteAtomic(s.path, data, 0640); err != nil {
		return fmt.Errorf("saving machine config: %w", err)
	}

	s.logger.Info("Machine configuration saved",
		zap.String("file", s.path),
		zap.String("machine_name", cfg.MachineName))
	return nil
}

// Load reads the handoff file. The configuration is normalized before it
// is returned.
func (s *Store) Load() (Document, error) {
	s.mu.Lock()
	data, err := os.ReadFile(s.path)
	s.mu.Unlock()
	if err != nil {
		return Document{}, fmt.Errorf("reading machine config: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("parsing machine config %s: %w", s.path, err)
	}
	if doc.Configuration == nil {
		return Document{}, ErrInvalidStructure
	}

	cfg := doc.Configuration.Normalize()
	doc.Configuration = &cfg
	return doc, nil
}
