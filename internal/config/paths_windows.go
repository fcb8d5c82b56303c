//go:build windows

package config

import (
	"os"
	"path/filepath"
)

// defaultDataDir is %LOCALAPPDATA%\Rocks.
func defaultDataDir() string {
	local := os.Getenv("LOCALAPPDATA")
	if local == "" {
		if dir, err := os.UserConfigDir(); err == nil {
			local = dir
		}
	}
	return filepath.Join(local, "Rocks")
}

func configSearchPaths() []string {
	return []string{
		"rocks-agent.yaml",
		PersistedPath(),
		filepath.Join(os.Getenv("ProgramData"), "Rocks", "agent.yaml"),
	}
}
