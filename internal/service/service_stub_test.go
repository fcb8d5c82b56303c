//go:build !windows

package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap/zaptest"
)

func TestMonitorService_Run(t *testing.T) {
	boom := errors.New("boom")
	called := false
	s := New(zaptest.NewLogger(t), func(ctx context.Context) error {
		called = true
		return boom
	})

	if IsWindowsService() {
		t.Error("IsWindowsService() = true on a non-Windows platform")
	}
	if err := s.Run(); !errors.Is(err, boom) {
		t.Errorf("Run() error = %v, want boom", err)
	}
	if !called {
		t.Error("run function not called")
	}
}
