package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/rocks-app/agent/internal/autostart"
	"github.com/rocks-app/agent/internal/config"
	"github.com/rocks-app/agent/internal/models"
	"github.com/rocks-app/agent/internal/scheduler"
	"github.com/rocks-app/agent/internal/service"
	"github.com/rocks-app/agent/internal/transport"
)

func newLoginCmd(opts *rootOptions) *cobra.Command {
	var email, password string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in to the collector and persist the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			if password == "" {
				p, err := readPassword(cmd.ErrOrStderr())
				if err != nil {
					return err
				}
				password = p
			}

			res := opts.app.gateway.Authenticate(cmd.Context(), email, password)
			if !res.Success {
				return resultError("login failed", res)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in (machine type: %s)\n", opts.app.gateway.MachineType())
			return nil
		},
	}
	cmd.Flags().StringVar(&email, "email", "", "account e-mail")
	cmd.Flags().StringVar(&password, "password", "", "account password (prompted when omitted)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

// readPassword prompts on the terminal with echo disabled.
func readPassword(prompt io.Writer) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("no terminal available for the password prompt (use --password)")
	}
	fmt.Fprint(prompt, "Password: ")
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(prompt)
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return string(b), nil
}

func newLogoutCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Discard the persisted session token",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.app.gateway.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

func newStatusCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show session and machine information",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := opts.app
			info := a.gateway.MachineInfo(cmd.Context())
			out := cmd.OutOrStdout()

			fmt.Fprintf(out, "Server:        %s\n", a.cfg.Server.URL)
			fmt.Fprintf(out, "Authenticated: %t\n", a.gateway.IsAuthenticated())
			fmt.Fprintf(out, "Machine type:  %s\n", a.gateway.MachineType())
			fmt.Fprintf(out, "Hostname:      %s\n", info.Hostname)
			fmt.Fprintf(out, "MAC address:   %s\n", info.MACAddress)
			fmt.Fprintf(out, "OS:            %s\n", info.OperatingSystem)

			doc, err := a.handoff.Load()
			if err != nil {
				fmt.Fprintf(out, "Machine config: none (%s)\n", a.handoff.Path())
				return nil
			}
			c := doc.Configuration
			fmt.Fprintf(out, "Machine config: %q every %ds, categories %v (saved %s)\n",
				c.MachineName, c.UpdateFrequency, c.MonitoredStatus.Categories(), doc.Timestamp)
			return nil
		},
	}
}

func newConfigureCmd(opts *rootOptions) *cobra.Command {
	var (
		cfg        models.MonitoringConfig
		categories []string
		system     bool
	)
	cmd := &cobra.Command{
		Use:   "configure",
		Short: "Send the machine configuration to the collector and save it for the monitor",
		RunE: func(cmd *cobra.Command, args []string) error {
			status, err := parseCategories(categories)
			if err != nil {
				return err
			}
			cfg.MonitoredStatus = status
			cfg = cfg.Normalize()

			a := opts.app
			ctx := cmd.Context()
			res := a.gateway.UpdateConfig(ctx, cfg)
			if !res.Success {
				return resultError("configuration update failed", res)
			}

			if err := a.handoff.Save(cfg, a.gateway.MachineInfo(ctx), a.gateway.MachineType()); err != nil {
				return err
			}
			mode := autostart.UserMode
			if system {
				mode = autostart.SystemMode
			}
			if err := applyAutostart(opts, cfg.StartWithOS, mode); err != nil {
				a.logger.Warn("Failed to update start-with-OS registration", zap.Error(err))
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Configuration saved to %s\n", a.handoff.Path())
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&cfg.MachineName, "name", "", "machine name shown by the collector")
	flags.StringSliceVar(&categories, "categories", nil,
		"categories to monitor: "+joinCategories(models.AllCategories)+" or all")
	flags.IntVar(&cfg.UpdateFrequency, "frequency", models.DefaultUpdateFrequency,
		fmt.Sprintf("update frequency in seconds (%d-%d)", models.MinUpdateFrequency, models.MaxUpdateFrequency))
	flags.BoolVar(&cfg.Notifications, "notifications", false, "enable collector notifications")
	flags.BoolVar(&cfg.StartWithOS, "start-with-os", false, "start the monitor when the user logs in")
	flags.BoolVar(&system, "system", false, "with --start-with-os, install a machine-wide service instead (needs root/admin)")
	return cmd
}

// applyAutostart registers or removes "rocks-agent monitor" at login.
// The registered process starts with another working directory and
// environment, so the effective configuration, with its absolute file
// locations, is persisted first and passed with --config.
func applyAutostart(opts *rootOptions, enabled bool, mode autostart.Mode) error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("locating executable: %w", err)
	}

	var args []string
	if enabled {
		path := config.PersistedPath()
		if err := config.WriteConfig(opts.cfg, path); err != nil {
			return err
		}
		args = []string{"monitor", "--config", path}
	}

	newManager := opts.autostart
	if newManager == nil {
		newManager = autostart.NewWithMode
	}
	m := newManager(mode)
	changed, err := autostart.Apply(m, enabled, exe, args)
	if err != nil {
		return err
	}
	if changed {
		opts.logger.Info("Start-with-OS registration updated",
			zap.Bool("enabled", enabled),
			zap.Stringer("mode", mode),
			zap.String("name", m.ServiceName()))
	}
	return nil
}

func newMonitorCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "monitor",
		Short: "Run the background monitor with the saved machine configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			a := opts.app
			doc, err := a.handoff.Load()
			if err != nil {
				return fmt.Errorf("loading machine config: %w", err)
			}
			cfg := *doc.Configuration

			if service.IsWindowsService() {
				a.logger.Info("Running as Windows service")
				return service.New(a.logger, func(ctx context.Context) error {
					return runMonitor(ctx, a, cfg)
				}).Run()
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runMonitor(ctx, a, cfg)
		},
	}
}

// runMonitor runs the scheduling loop until ctx is cancelled, logging
// its events.
func runMonitor(ctx context.Context, a *app, cfg models.MonitoringConfig) error {
	m := scheduler.New(a.sampler(), a.gateway, a.logger)

	logged := make(chan struct{})
	go func() {
		defer close(logged)
		for e := range m.Events() {
			logEvent(a.logger, e)
			if e.Type == scheduler.EventStopped {
				return
			}
		}
	}()

	err := m.Start(ctx, cfg)
	select {
	case <-logged:
	case <-time.After(time.Second):
	}
	return err
}

func logEvent(logger *zap.Logger, e scheduler.Event) {
	fields := []zap.Field{zap.Stringer("event", e.Type)}
	if e.Message != "" {
		fields = append(fields, zap.String("detail", e.Message))
	}
	switch e.Type {
	case scheduler.EventError:
		logger.Error("Monitor event", fields...)
	case scheduler.EventDataSent, scheduler.EventSendFailed, scheduler.EventSkipped:
		logger.Debug("Monitor event", fields...)
	default:
		logger.Info("Monitor event", fields...)
	}
}

func newSnapshotCmd(opts *rootOptions) *cobra.Command {
	var categories []string
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Collect one snapshot and print it as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(categories) == 0 {
				categories = []string{"all"}
			}
			status, err := parseCategories(categories)
			if err != nil {
				return err
			}

			a := opts.app
			snap, err := a.sampler().Collect(cmd.Context(), status)
			if err != nil {
				return err
			}
			snap.MachineInfo.Type = a.gateway.MachineType()
			return printJSON(cmd.OutOrStdout(), snap)
		},
	}
	cmd.Flags().StringSliceVar(&categories, "categories", nil,
		"categories to collect: "+joinCategories(models.AllCategories)+" or all (default all)")
	return cmd
}

func newMachineCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "machine",
		Short: "Fetch this machine's configuration from the collector",
		RunE: func(cmd *cobra.Command, args []string) error {
			res := opts.app.gateway.GetConfig(cmd.Context())
			if !res.Success {
				return resultError("fetching machine config failed", res)
			}
			return printJSON(cmd.OutOrStdout(), res.Data)
		},
	}
}

func newHealthCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the collector is reachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			res := opts.app.gateway.Health(cmd.Context())
			if !res.Success {
				return resultError("health check failed", res)
			}
			status, _ := res.Object()["status"].(string)
			if status == "" {
				status = "ok"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", opts.cfg.Server.URL, status)
			return nil
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version and exit",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "rocks-agent %s\n", version)
		},
	}
}

// parseCategories turns category names into a MonitoredStatus. "all"
// enables every category.
func parseCategories(names []string) (models.MonitoredStatus, error) {
	var s models.MonitoredStatus
	for _, raw := range names {
		name := strings.ToLower(strings.TrimSpace(raw))
		switch models.Category(name) {
		case models.CategoryCPU:
			s.CPU = true
		case models.CategoryRAM:
			s.RAM = true
		case models.CategoryDisk:
			s.Disk = true
		case models.CategoryNetwork:
			s.Network = true
		case models.CategoryTemperature:
			s.Temperature = true
		case models.CategoryProcesses:
			s.Processes = true
		default:
			if name != "all" {
				return models.MonitoredStatus{}, fmt.Errorf("unknown category %q", raw)
			}
			s = models.MonitoredStatus{CPU: true, RAM: true, Disk: true, Network: true, Temperature: true, Processes: true}
		}
	}
	return s, nil
}

func joinCategories(cs []models.Category) string {
	names := make([]string, len(cs))
	for i, c := range cs {
		names[i] = string(c)
	}
	return strings.Join(names, ", ")
}

func resultError(action string, res transport.Result) error {
	if res.StatusCode != 0 {
		return fmt.Errorf("%s: %s (HTTP %d)", action, res.Error, res.StatusCode)
	}
	return fmt.Errorf("%s: %s", action, res.Error)
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
