// Package scheduler implements the background monitor: a single
// cooperative loop that samples the enabled metric categories every
// update_frequency seconds and submits each snapshot to the collector.
//
// The loop never aborts because of a failed submission or a missing
// session. Only a failure to build the snapshot ends it. Progress is
// reported on the Events channel.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/rocks-app/agent/internal/models"
	"github.com/rocks-app/agent/internal/transport"
)

// ErrAlreadyRunning is returned by Start when the loop is not idle.
var ErrAlreadyRunning = errors.New("monitor already running")

const eventBufferSize = 64

// Sampler builds a snapshot of the enabled categories.
type Sampler interface {
	Collect(ctx context.Context, status models.MonitoredStatus) (models.MetricSnapshot, error)
}

// Submitter sends snapshots on behalf of the current session.
type Submitter interface {
	IsAuthenticated() bool
	MachineType() string
	SubmitMetrics(ctx context.Context, snap models.MetricSnapshot) transport.Result
}

// State is the lifecycle state of a Monitor.
type State int32

const (
	StateIdle State = iota
	StateRunning
	StateStopping
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	default:
		return "unknown"
	}
}

// Monitor drives the sample and submit cycle.
type Monitor struct {
	sampler   Sampler
	submitter Submitter
	logger    *zap.Logger

	state  atomic.Int32
	stop   atomic.Bool
	events chan Event

	sleep func(ctx context.Context, d time.Duration) error
	now   func() time.Time
}

// New creates an idle Monitor.
func New(sampler Sampler, submitter Submitter, logger *zap.Logger) *Monitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		sampler:   sampler,
		submitter: submitter,
		logger:    logger.Named("monitor"),
		events:    make(chan Event, eventBufferSize),
		sleep:     sleepContext,
		now:       time.Now,
	}
}

// Events returns the channel on which lifecycle events are published.
// Events are dropped when nobody keeps up with the channel.
func (m *Monitor) Events() <-chan Event { return m.events }

// State returns the current lifecycle state.
func (m *Monitor) State() State { return State(m.state.Load()) }

// Start runs the loop until Stop is called, ctx is cancelled or a
// snapshot cannot be built. It blocks for the life of the loop and
// returns nil on a normal exit. A Stop that arrives before the loop is
// running ends it at the first sleep boundary.
func (m *Monitor) Start(ctx context.Context, cfg models.MonitoringConfig) error {
	if !m.state.CompareAndSwap(int32(StateIdle), int32(StateRunning)) {
		return ErrAlreadyRunning
	}
	if m.stop.Load() {
		m.state.Store(int32(StateStopping))
	}

	cfg = cfg.Normalize()
	interval := time.Duration(cfg.UpdateFrequency) * time.Second

	m.logger.Info("Monitor started",
		zap.String("machine_name", cfg.MachineName),
		zap.Duration("interval", interval),
		zap.Int("categories", len(cfg.MonitoredStatus.Categories())))
	m.publish(EventStarted, "", nil)

	err := m.run(ctx, cfg, interval)

	m.stop.Store(false)
	m.state.Store(int32(StateIdle))
	m.logger.Info("Monitor stopped")
	m.publish(EventStopped, "", nil)
	return err
}

// Stop asks the loop to exit. It takes effect once the current sleep
// ends; an in-flight cycle always completes.
func (m *Monitor) Stop() {
	m.stop.Store(true)
	m.state.CompareAndSwap(int32(StateRunning), int32(StateStopping))
}

func (m *Monitor) run(ctx context.Context, cfg models.MonitoringConfig, interval time.Duration) error {
	for {
		if err := m.sleep(ctx, interval); err != nil {
			return nil
		}
		if m.stop.Load() {
			return nil
		}

		snap, err := m.sampler.Collect(ctx, cfg.MonitoredStatus)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			m.logger.Error("Failed to collect metrics, stopping monitor", zap.Error(err))
			m.publish(EventError, err.Error(), err)
			return fmt.Errorf("collecting metrics: %w", err)
		}

		m.submit(ctx, snap)
	}
}

// submit sends one snapshot. Failures are reported and never returned.
func (m *Monitor) submit(ctx context.Context, snap models.MetricSnapshot) {
	if !m.submitter.IsAuthenticated() {
		m.logger.Warn("No auth token available, skipping submission")
		m.publish(EventSkipped, "no auth token available", nil)
		return
	}

	snap.MachineInfo.Type = m.submitter.MachineType()

	res := m.submitter.SubmitMetrics(ctx, snap)
	if !res.Success {
		m.logger.Warn("Failed to send metrics",
			zap.String("error", res.Error),
			zap.Int("status", res.StatusCode),
			zap.Stringer("kind", res.Kind))
		m.publish(EventSendFailed, res.Error, nil)
		return
	}

	m.logger.Debug("Metrics sent", zap.String("timestamp", snap.Timestamp))
	m.publish(EventDataSent, snap.Timestamp, nil)
}

func (m *Monitor) publish(t EventType, msg string, err error) {
	select {
	case m.events <- Event{Type: t, Time: m.now(), Message: msg, Err: err}:
	default:
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
