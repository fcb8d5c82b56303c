//go:build windows

// Package service runs the monitor under the Windows Service Control
// Manager. From a terminal the monitor runs in the foreground instead.
package service

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sys/windows/svc"
)

// Name is the service name registered with the SCM.
const Name = "RocksAgent"

// stopTimeout bounds how long a stop request waits for the monitor.
const stopTimeout = 15 * time.Second

// MonitorService implements svc.Handler around a blocking run function.
type MonitorService struct {
	logger *zap.Logger
	run    func(ctx context.Context) error
}

// New creates a service wrapper. run is called with a context that is
// cancelled when the SCM asks the service to stop.
func New(logger *zap.Logger, run func(ctx context.Context) error) *MonitorService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MonitorService{
		logger: logger.Named("service"),
		run:    run,
	}
}

// IsWindowsService checks if the process is running as a Windows service.
func IsWindowsService() bool {
	isService, err := svc.IsWindowsService()
	if err != nil {
		return false
	}
	return isService
}

// Run starts the service control loop.
func (s *MonitorService) Run() error {
	return svc.Run(Name, s)
}

// Execute implements svc.Handler.
func (s *MonitorService) Execute(args []string, r <-chan svc.ChangeRequest, changes chan<- svc.Status) (ssec bool, errno uint32) {
	changes <- svc.Status{State: svc.StartPending}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- s.run(ctx) }()

	changes <- svc.Status{
		State:   svc.Running,
		Accepts: svc.AcceptStop | svc.AcceptShutdown,
	}
	s.logger.Info("Windows service started")

	for {
		select {
		case err := <-done:
			if err != nil {
				s.logger.Error("Monitor exited with error", zap.Error(err))
				return true, 1
			}
			return false, 0
		case c := <-r:
			switch c.Cmd {
			case svc.Interrogate:
				changes <- c.CurrentStatus
			case svc.Stop, svc.Shutdown:
				s.logger.Info("Windows service stopping")
				changes <- svc.Status{State: svc.StopPending}
				cancel()
				select {
				case <-done:
				case <-time.After(stopTimeout):
					s.logger.Warn("Monitor did not stop in time")
				}
				return false, 0
			default:
				s.logger.Warn("Unexpected service control request",
					zap.Uint32("cmd", uint32(c.Cmd)))
			}
		}
	}
}
