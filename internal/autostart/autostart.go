// Package autostart registers the agent's monitor command to start with
// the operating system. UserMode registers it for the current user only
// and needs no elevation; SystemMode installs a machine-wide service.
package autostart

import (
	"fmt"
	"strings"
)

// Mode determines whether the registration is system-wide or per-user.
type Mode int

const (
	SystemMode Mode = iota // System-wide service (requires root/admin)
	UserMode               // Per-user login item
)

func (m Mode) String() string {
	if m == UserMode {
		return "user"
	}
	return "system"
}

// Manager provides platform-specific autostart registration.
type Manager interface {
	IsInstalled() (bool, error)
	Install(execPath string, args []string) error
	Uninstall() error
	ServiceName() string
}

// Apply brings the registration in line with enabled: it installs when
// enabled and missing, and uninstalls when disabled and present.
// It reports whether anything changed.
func Apply(m Manager, enabled bool, execPath string, args []string) (bool, error) {
	installed, err := m.IsInstalled()
	if err != nil {
		return false, err
	}

	switch {
	case enabled && !installed:
		if err := m.Install(execPath, args); err != nil {
			return false, fmt.Errorf("registering %s: %w", m.ServiceName(), err)
		}
		return true, nil
	case !enabled && installed:
		if err := m.Uninstall(); err != nil {
			return false, fmt.Errorf("removing %s: %w", m.ServiceName(), err)
		}
		return true, nil
	default:
		return false, nil
	}
}

// CommandLine joins execPath and args into one command line, quoting
// every part that contains a space or a quote.
func CommandLine(execPath string, args []string) string {
	parts := make([]string, 0, len(args)+1)
	for _, p := range append([]string{execPath}, args...) {
		parts = append(parts, quote(p))
	}
	return strings.Join(parts, " ")
}

func quote(s string) string {
	if s != "" && !strings.ContainsAny(s, " \t\"") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}
