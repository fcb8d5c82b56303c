// Package main is the entry point for the Rocks monitoring agent.
// It wires configuration, logging and the agent components behind a set
// of cobra commands, and runs the monitor either as a Windows service or
// as a foreground process.
package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/rocks-app/agent/internal/autostart"
	"github.com/rocks-app/agent/internal/config"
)

// version is set at build time via -ldflags.
var version = "dev"

// rootOptions holds the persistent flags and the state built from them
// before any subcommand runs.
type rootOptions struct {
	configPath string
	apiURL     string
	logLevel   string

	cfg    *config.Config
	logger *zap.Logger
	app    *app

	// autostart builds the start-with-OS manager; nil selects the
	// platform implementation.
	autostart func(autostart.Mode) autostart.Manager
}

func main() {
	opts := &rootOptions{}
	err := newRootCmd(opts).ExecuteContext(context.Background())
	if opts.logger != nil {
		_ = opts.logger.Sync()
	}
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd(opts *rootOptions) *cobra.Command {
	root := &cobra.Command{
		Use:           "rocks-agent",
		Short:         "Rocks machine monitoring agent",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.init(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "path to the agent configuration file (default: search standard locations)")
	flags.StringVar(&opts.apiURL, "api-url", "", "collector base URL (overrides "+config.EnvAPIURL+")")
	flags.StringVar(&opts.logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(
		newLoginCmd(opts),
		newLogoutCmd(opts),
		newStatusCmd(opts),
		newConfigureCmd(opts),
		newMonitorCmd(opts),
		newSnapshotCmd(opts),
		newMachineCmd(opts),
		newHealthCmd(opts),
		newVersionCmd(),
	)
	return root
}

// init loads the configuration, builds the logger and wires the agent.
func (o *rootOptions) init(cmd *cobra.Command) error {
	cli := config.CLIOverrides{URL: o.apiURL, LogLevel: o.logLevel}

	var (
		cfg *config.Config
		err error
	)
	if cmd.Flags().Changed("config") {
		cfg, err = config.LoadLayered(cli, embeddedConfig, o.configPath)
	} else {
		cfg, err = config.LoadLayered(cli, embeddedConfig)
		o.configPath = config.Locate()
	}
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	o.cfg = cfg
	o.logger = initLogger(cfg)
	o.app = newApp(cfg, o.logger)

	o.logger.Debug("Configuration loaded",
		zap.String("version", version),
		zap.String("server", cfg.Server.URL),
		zap.String("config_file", o.configPath))
	return nil
}

// initLogger creates a zap logger based on the configuration.
// It writes human-readable output to stderr, keeping stdout for command
// output, and structured JSON to the log file when one is configured.
func initLogger(cfg *config.Config) *zap.Logger {
	var level zapcore.Level
	switch cfg.Logging.Level {
	case "debug":
		level = zapcore.DebugLevel
	case "warn":
		level = zapcore.WarnLevel
	case "error":
		level = zapcore.ErrorLevel
	default:
		level = zapcore.InfoLevel
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "time"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	consoleCore := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(os.Stderr),
		level,
	)

	cores := []zapcore.Core{consoleCore}

	if cfg.Logging.File != "" {
		_ = os.MkdirAll(filepath.Dir(cfg.Logging.File), 0750)
		file, err := os.OpenFile(cfg.Logging.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0640)
		if err == nil {
			fileCore := zapcore.NewCore(
				zapcore.NewJSONEncoder(encoderConfig),
				zapcore.AddSync(file),
				level,
			)
			cores = append(cores, fileCore)
		}
	}

	return zap.New(zapcore.NewTee(cores...))
}
