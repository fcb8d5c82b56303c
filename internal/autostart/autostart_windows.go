//go:build windows

package autostart

import (
	"errors"
	"fmt"
	"time"

	"golang.org/x/sys/windows/registry"
	"golang.org/x/sys/windows/svc"
	"golang.org/x/sys/windows/svc/mgr"
)

const (
	serviceName    = "RocksAgent"
	serviceDisplay = "Rocks Monitoring Agent"
	serviceDesc    = "Rocks monitoring agent - collects and reports system metrics"

	runKeyPath = `Software\Microsoft\Windows\CurrentVersion\Run`
)

// NewWithMode returns a Manager for the given mode. SystemMode uses the
// Service Control Manager.
func NewWithMode(mode Mode) Manager {
	if mode == UserMode {
		return &runKeyManager{}
	}
	return &serviceManager{}
}

// runKeyManager registers the command under the current user's Run key.
type runKeyManager struct{}

func (r *runKeyManager) ServiceName() string { return serviceName }

func (r *runKeyManager) IsInstalled() (bool, error) {
	k, err := registry.OpenKey(registry.CURRENT_USER, runKeyPath, registry.QUERY_VALUE)
	if err != nil {
		return false, fmt.Errorf("opening Run key: %w", err)
	}
	defer k.Close()

	if _, _, err := k.GetStringValue(serviceName); err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("reading Run key: %w", err)
	}
	return true, nil
}

func (r *runKeyManager) Install(execPath string, args []string) error {
	k, _, err := registry.CreateKey(registry.CURRENT_USER, runKeyPath, registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("opening Run key: %w", err)
	}
	defer k.Close()

	if err := k.SetStringValue(serviceName, CommandLine(execPath, args)); err != nil {
		return fmt.Errorf("writing Run key: %w", err)
	}
	return nil
}

func (r *runKeyManager) Uninstall() error {
	k, err := registry.OpenKey(registry.CURRENT_USER, runKeyPath, registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("opening Run key: %w", err)
	}
	defer k.Close()

	if err := k.DeleteValue(serviceName); err != nil && !errors.Is(err, registry.ErrNotExist) {
		return fmt.Errorf("deleting Run key value: %w", err)
	}
	return nil
}

// serviceManager installs the agent as a Windows service.
type serviceManager struct{}

func (w *serviceManager) ServiceName() string { return serviceName }

func (w *serviceManager) IsInstalled() (bool, error) {
	m, err := mgr.Connect()
	if err != nil {
		return false, fmt.Errorf("connecting to SCM: %w", err)
	}
	defer m.Disconnect()

	s, err := m.OpenService(serviceName)
	if err != nil {
		return false, nil
	}
	s.Close()
	return true, nil
}

// Install creates the service and starts it immediately.
func (w *serviceManager) Install(execPath string, args []string) error {
	m, err := mgr.Connect()
	if err != nil {
		return fmt.Errorf("connecting to SCM: %w", err)
	}
	defer m.Disconnect()

	s, err := m.CreateService(serviceName, execPath, mgr.Config{
		DisplayName: serviceDisplay,
		Description: serviceDesc,
		StartType:   mgr.StartAutomatic,
	}, args...)
	if err != nil {
		return fmt.Errorf("creating service: %w", err)
	}
	defer s.Close()

	if err := s.Start(); err != nil {
		return fmt.Errorf("starting service: %w", err)
	}
	return nil
}

// Uninstall stops and deletes the service.
func (w *serviceManager) Uninstall() error {
	m, err := mgr.Connect()
	if err != nil {
		return fmt.Errorf("connecting to SCM: %w", err)
	}
	defer m.Disconnect()

	s, err := m.OpenService(serviceName)
	if err != nil {
		return fmt.Errorf("opening service: %w", err)
	}
	defer s.Close()

	_, _ = s.Control(svc.Stop)
	time.Sleep(2 * time.Second)

	if err := s.Delete(); err != nil {
		return fmt.Errorf("deleting service: %w", err)
	}
	return nil
}
