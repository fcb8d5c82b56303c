//go:build !windows

package config

import (
	"os"
	"path/filepath"
)

// defaultDataDir is $XDG_CONFIG_HOME/rocks on Linux and
// ~/Library/Application Support/rocks on macOS.
func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "rocks")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".rocks")
}

func configSearchPaths() []string {
	home, _ := os.UserHomeDir()
	return []string{
		"rocks-agent.yaml",
		PersistedPath(),
		filepath.Join(home, ".rocks", "agent.yaml"),
		"/etc/rocks/agent.yaml",
	}
}
