// Package session persists the agent's login session to a local JSON file
// so that it survives process restarts and can be shared with a separately
// launched monitor process.
//
// Writers within one process serialize on the Store's mutex and the file
// is replaced atomically. Concurrent writers in different processes are
// not coordinated: the last writer wins.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"go.uber.org/zap"

	"github.com/rocks-app/agent/internal/fileutil"
	"github.com/rocks-app/agent/internal/models"
)

// DefaultMachineType is used when the server does not report one.
const DefaultMachineType = "pc"

// Session is the persisted authentication state.
type Session struct {
	AuthToken   *string                 `json:"auth_token"`
	MachineType string                  `json:"machine_type"`
	MachineInfo *models.MachineIdentity `json:"machine_info"`
}

// IsAuthenticated reports whether a token is present.
func (s Session) IsAuthenticated() bool {
	return s.AuthToken != nil
}

// Store reads and writes a Session file.
type Store struct {
	path   string
	logger *zap.Logger
	mu     sync.Mutex
}

// NewStore creates a Store backed by the file at path.
func NewStore(path string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		path:   path,
		logger: logger.Named("session"),
	}
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// Load reads the session file. A missing file yields an empty session;
// an unreadable or corrupt file is logged and also yields an empty session.
func (s *Store) Load() Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	empty := Session{MachineType: DefaultMachineType}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Error("Failed to read session file",
				zap.String("file", s.path),
				zap.Error(err))
		}
		return empty
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		s.logger.Error("Failed to parse session file, ignoring it",
			zap.String("file", s.path),
			zap.Error(err))
		return empty
	}

	if sess.AuthToken != nil && *sess.AuthToken == "" {
		sess.AuthToken = nil
	}
	if sess.MachineType == "" {
		sess.MachineType = DefaultMachineType
	}
	s.logger.Debug("Session loaded",
		zap.Bool("authenticated", sess.IsAuthenticated()),
		zap.String("machine_type", sess.MachineType))
	return sess
}

// Save overwrites the session file with sess under the store's lock.
func (s *Store) Save(sess Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling session: %w", err)
	}
	if err := fileutil.WriteAtomic(s.path, data, 0600); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}
