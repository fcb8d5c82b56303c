//go:build !windows

// Package service provides a stub implementation for non-Windows platforms.
// On macOS and Linux the monitor runs as a foreground process.
package service

import (
	"context"

	"go.uber.org/zap"
)

// Name is the service name used on Windows.
const Name = "RocksAgent"

// MonitorService runs the monitor directly.
type MonitorService struct {
	logger *zap.Logger
	run    func(ctx context.Context) error
}

// New creates a stub service wrapper for non-Windows platforms.
func New(logger *zap.Logger, run func(ctx context.Context) error) *MonitorService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MonitorService{
		logger: logger,
		run:    run,
	}
}

// IsWindowsService always returns false on non-Windows platforms.
func IsWindowsService() bool {
	return false
}

// Run executes the monitor directly.
func (s *MonitorService) Run() error {
	return s.run(context.Background())
}
