// Package config handles agent configuration loaded from YAML files,
// .env files and environment variables.
// Precedence: CLI flags > environment (including .env) > config file >
// embedded config > defaults.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/rocks-app/agent/internal/fileutil"
)

// Environment variables read by the agent.
const (
	EnvAPIURL   = "ROCKS_API_URL"
	EnvLogLevel = "ROCKS_LOG_LEVEL"
	EnvDataDir  = "ROCKS_DATA_DIR"
)

// PersistedFileName is the config file written into the data directory
// for processes started by the OS, which do not share the working
// directory or environment of the command that registered them.
const PersistedFileName = "agent.yaml"

// envFiles are the .env candidates loaded, in order, before environment
// overrides are applied. Variables already set in the process win.
var envFiles = []string{
	".env",
	"rocks-agent.env",
}

// Duration is a wrapper around time.Duration that supports YAML
// strings like "10s" or "1m30s".
type Duration struct {
	time.Duration
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("unsupported duration format: %v", value.Kind)
	}
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	d.Duration = parsed
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return d.Duration.String(), nil
}

// Config holds all agent configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Collection CollectionConfig `yaml:"collection"`
	Storage    StorageConfig    `yaml:"storage"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// ServerConfig holds collector connection settings.
type ServerConfig struct {
	URL     string   `yaml:"url"`
	Timeout Duration `yaml:"timeout"`
}

// CollectionConfig holds sampling settings. An empty DiskPath selects
// the system root.
type CollectionConfig struct {
	TopProcesses      int      `yaml:"top_processes"`
	CPUSampleInterval Duration `yaml:"cpu_sample_interval"`
	DiskPath          string   `yaml:"disk_path"`
}

// StorageConfig holds the locations of the files shared between agent
// processes. Relative paths are resolved against DataDir.
type StorageConfig struct {
	StateFile         string `yaml:"state_file"`
	MachineConfigFile string `yaml:"machine_config_file"`
}

// LoggingConfig holds logging settings. A relative File is resolved
// against DataDir.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			URL:     "http://localhost:8000",
			Timeout: Duration{10 * time.Second},
		},
		Collection: CollectionConfig{
			TopProcesses:      5,
			CPUSampleInterval: Duration{1 * time.Second},
		},
		Storage: StorageConfig{
			StateFile:         "auth_state.json",
			MachineConfigFile: "configuracao_maquina.json",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// CLIOverrides holds values from command-line flags.
// Empty strings are treated as "not set" and skipped.
type CLIOverrides struct {
	URL      string
	LogLevel string
}

// Locate searches standard config file paths and returns the first one found.
// Returns empty string if no config file exists.
func Locate() string {
	for _, p := range configSearchPaths() {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// DataDir returns the per-user directory holding the session, the
// machine config and the persisted agent config. ROCKS_DATA_DIR
// overrides the platform default.
func DataDir() string {
	if dir := os.Getenv(EnvDataDir); dir != "" {
		if abs, err := filepath.Abs(dir); err == nil {
			return abs
		}
		return dir
	}
	return defaultDataDir()
}

// PersistedPath returns where WriteConfig output is kept for processes
// started by the OS.
func PersistedPath() string {
	return filepath.Join(DataDir(), PersistedFileName)
}

// LoadLayered loads configuration with the full precedence chain.
//
// An optional configPath argument controls external-file discovery:
//   - omitted        → auto-discover via Locate()
//   - explicit value → use that path ("" means no external file)
func LoadLayered(cli CLIOverrides, embedded []byte, configPath ...string) (*Config, error) {
	cfg := DefaultConfig()

	if len(embedded) > 0 {
		if err := yaml.Unmarshal(embedded, cfg); err != nil {
			return nil, fmt.Errorf("parsing embedded config: %w", err)
		}
	}

	var filePath string
	if len(configPath) > 0 {
		filePath = configPath[0]
	} else {
		filePath = Locate()
	}
	if filePath != "" {
		data, err := os.ReadFile(filePath)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config file %s: %w", filePath, err)
			}
		case !os.IsNotExist(err):
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	loadEnvFiles()
	applyEnvOverrides(cfg)

	if cli.URL != "" {
		cfg.Server.URL = cli.URL
	}
	if cli.LogLevel != "" {
		cfg.Logging.Level = cli.LogLevel
	}

	cfg.resolvePaths(DataDir())
	return cfg, nil
}

// resolvePaths anchors relative file locations at base so that every
// process sees the same files whatever its working directory.
func (c *Config) resolvePaths(base string) {
	for _, p := range []*string{&c.Storage.StateFile, &c.Storage.MachineConfigFile, &c.Logging.File} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(base, *p)
		}
	}
}

// WriteConfig serializes the config to a YAML file at the given path,
// replacing it atomically. Parent directories are created if needed.
func WriteConfig(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := fileutil.WriteAtomic(path, data, 0640); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// loadEnvFiles loads every .env candidate that exists.
func loadEnvFiles() {
	for _, f := range envFiles {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		_ = godotenv.Load(f)
	}
}

func applyEnvOverrides(cfg *Config) {
	if u := os.Getenv(EnvAPIURL); u != "" {
		cfg.Server.URL = u
	}
	if level := os.Getenv(EnvLogLevel); level != "" {
		cfg.Logging.Level = level
	}
}

// Validate checks that the configuration can be used to reach the
// collector.
func (c *Config) Validate() error {
	if c.Server.URL == "" {
		return fmt.Errorf("server URL is required")
	}
	u, err := url.Parse(c.Server.URL)
	if err != nil {
		return fmt.Errorf("invalid server URL %q: %w", c.Server.URL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("server URL must use http or https (got: %s)", c.Server.URL)
	}
	if u.Host == "" {
		return fmt.Errorf("server URL has no host (got: %s)", c.Server.URL)
	}
	if c.Server.Timeout.Duration <= 0 {
		return fmt.Errorf("server timeout must be positive")
	}
	if c.Collection.TopProcesses <= 0 {
		return fmt.Errorf("collection.top_processes must be positive")
	}
	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Logging.Level)
	}
	return nil
}
