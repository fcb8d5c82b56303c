//go:build darwin

package autostart

import (
	"fmt"
	"html"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

const serviceLabel = "com.rocks.agent"

const plistTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
    <key>Label</key>
    <string>com.rocks.agent</string>
    <key>ProgramArguments</key>
    <array>
{programArguments}
    </array>
    <key>RunAtLoad</key>
    <true/>
    <key>StandardOutPath</key>
    <string>{logDir}/rocks-agent.stdout.log</string>
    <key>StandardErrorPath</key>
    <string>{logDir}/rocks-agent.stderr.log</string>
</dict>
</plist>
`

type darwinManager struct {
	mode      Mode
	plistPath string
	logDir    string
}

// NewWithMode returns a Manager for the given mode.
func NewWithMode(mode Mode) Manager {
	m := &darwinManager{mode: mode}
	if mode == UserMode {
		home, _ := os.UserHomeDir()
		m.plistPath = filepath.Join(home, "Library", "LaunchAgents", serviceLabel+".plist")
		m.logDir = filepath.Join(home, "Library", "Logs", "Rocks")
	} else {
		m.plistPath = filepath.Join("/Library/LaunchDaemons", serviceLabel+".plist")
		m.logDir = "/var/log"
	}
	return m
}

func (d *darwinManager) ServiceName() string { return serviceLabel }

func (d *darwinManager) IsInstalled() (bool, error) {
	_, err := os.Stat(d.plistPath)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking plist file: %w", err)
	}
	return true, nil
}

func (d *darwinManager) Install(execPath string, args []string) error {
	if err := os.MkdirAll(d.logDir, 0755); err != nil {
		return fmt.Errorf("creating log directory: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(d.plistPath), 0755); err != nil {
		return fmt.Errorf("creating plist directory: %w", err)
	}

	plist := renderPlist(execPath, args, d.logDir)
	if err := os.WriteFile(d.plistPath, []byte(plist), 0644); err != nil {
		return fmt.Errorf("creating plist: %w", err)
	}
	if err := exec.Command("launchctl", "load", "-w", d.plistPath).Run(); err != nil {
		return fmt.Errorf("loading plist: %w", err)
	}
	return nil
}

func (d *darwinManager) Uninstall() error {
	_ = exec.Command("launchctl", "unload", d.plistPath).Run()
	if err := os.Remove(d.plistPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing plist: %w", err)
	}
	return nil
}

func renderPlist(execPath string, args []string, logDir string) string {
	var b strings.Builder
	for i, a := range append([]string{execPath}, args...) {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("        <string>" + html.EscapeString(a) + "</string>")
	}
	plist := strings.ReplaceAll(plistTemplate, "{programArguments}", b.String())
	return strings.ReplaceAll(plist, "{logDir}", html.EscapeString(logDir))
}
