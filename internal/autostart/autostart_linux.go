//go:build linux

package autostart

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

const (
	serviceName    = "rocks-agent"
	systemUnitPath = "/etc/systemd/system/rocks-agent.service"
)

// unitTemplate is the systemd unit written during installation.
// {execStart} is replaced with the full command line and {wantedBy} with
// the install target.
const unitTemplate = `[Unit]
Description=Rocks Monitoring Agent
After=network-online.target
Wants=network-online.target

[Service]
Type=simple
ExecStart={execStart}
Restart=on-failure
RestartSec=10
SyslogIdentifier=rocks-agent

[Install]
WantedBy={wantedBy}
`

// linuxManager implements Manager using systemd. In UserMode the unit
// lives under the user's systemd directory and is driven with --user.
type linuxManager struct {
	mode     Mode
	unitPath string
}

// NewWithMode returns a Manager for the given mode: a user unit driven
// with systemctl --user, or a system unit.
func NewWithMode(mode Mode) Manager {
	m := &linuxManager{mode: mode, unitPath: systemUnitPath}
	if mode == UserMode {
		configDir, err := os.UserConfigDir()
		if err != nil {
			home, _ := os.UserHomeDir()
			configDir = filepath.Join(home, ".config")
		}
		m.unitPath = filepath.Join(configDir, "systemd", "user", serviceName+".service")
	}
	return m
}

// ServiceName returns the systemd unit name.
func (l *linuxManager) ServiceName() string { return serviceName }

// IsInstalled checks whether the unit file exists.
func (l *linuxManager) IsInstalled() (bool, error) {
	_, err := os.Stat(l.unitPath)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking unit file: %w", err)
	}
	return true, nil
}

// Install writes the unit file, reloads the daemon and enables the unit.
func (l *linuxManager) Install(execPath string, args []string) error {
	if err := os.MkdirAll(filepath.Dir(l.unitPath), 0755); err != nil {
		return fmt.Errorf("creating unit directory: %w", err)
	}

	unit := renderUnit(l.mode, execPath, args)
	if err := os.WriteFile(l.unitPath, []byte(unit), 0644); err != nil {
		return fmt.Errorf("writing unit file: %w", err)
	}

	for _, args := range [][]string{{"daemon-reload"}, {"enable", serviceName}} {
		if err := l.systemctl(args...).Run(); err != nil {
			return fmt.Errorf("running systemctl %s: %w", strings.Join(args, " "), err)
		}
	}
	return nil
}

// Uninstall disables and removes the unit.
func (l *linuxManager) Uninstall() error {
	// Best-effort; the unit may already be inactive.
	_ = l.systemctl("disable", serviceName).Run()

	if err := os.Remove(l.unitPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing unit file: %w", err)
	}

	_ = l.systemctl("daemon-reload").Run()
	return nil
}

func (l *linuxManager) systemctl(args ...string) *exec.Cmd {
	if l.mode == UserMode {
		args = append([]string{"--user"}, args...)
	}
	return exec.Command("systemctl", args...)
}

func renderUnit(mode Mode, execPath string, args []string) string {
	wantedBy := "multi-user.target"
	if mode == UserMode {
		wantedBy = "default.target"
	}
	unit := strings.ReplaceAll(unitTemplate, "{execStart}", CommandLine(execPath, args))
	return strings.ReplaceAll(unit, "{wantedBy}", wantedBy)
}
