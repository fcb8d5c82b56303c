//go:build !linux && !darwin && !windows

package autostart

import (
	"errors"
	"runtime"
)

var errUnsupported = errors.New("autostart is not supported on " + runtime.GOOS)

type unsupportedManager struct{}

// NewWithMode returns a Manager that reports autostart as unsupported.
func NewWithMode(Mode) Manager { return unsupportedManager{} }

func (unsupportedManager) ServiceName() string            { return "rocks-agent" }
func (unsupportedManager) IsInstalled() (bool, error)     { return false, nil }
func (unsupportedManager) Install(string, []string) error { return errUnsupported }
func (unsupportedManager) Uninstall() error               { return nil }
