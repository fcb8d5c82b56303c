package scheduler

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/rocks-app/agent/internal/models"
	"github.com/rocks-app/agent/internal/transport"
)

type fakeSampler struct {
	mu       sync.Mutex
	calls    int
	statuses []models.MonitoredStatus
	err      error
}

func (f *fakeSampler) Collect(_ context.Context, status models.MonitoredStatus) (models.MetricSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.statuses = append(f.statuses, status)
	if f.err != nil {
		return models.MetricSnapshot{}, f.err
	}
	return models.MetricSnapshot{Timestamp: "2026-10-19T12:00:00Z"}, nil
}

type fakeSubmitter struct {
	mu            sync.Mutex
	authenticated bool
	machineType   string
	result        transport.Result
	sent          []models.MetricSnapshot
}

func (f *fakeSubmitter) IsAuthenticated() bool { return f.authenticated }
func (f *fakeSubmitter) MachineType() string   { return f.machineType }

func (f *fakeSubmitter) SubmitMetrics(_ context.Context, snap models.MetricSnapshot) transport.Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, snap)
	return f.result
}

// stopAfter returns a sleep func that calls m.Stop on sleep number n and
// records every requested duration.
func stopAfter(m *Monitor, n int, durations *[]time.Duration) func(context.Context, time.Duration) error {
	calls := 0
	return func(_ context.Context, d time.Duration) error {
		calls++
		*durations = append(*durations, d)
		if calls == n {
			m.Stop()
		}
		return nil
	}
}

func drain(m *Monitor) []EventType {
	var out []EventType
	for {
		select {
		case e := <-m.Events():
			out = append(out, e.Type)
		default:
			return out
		}
	}
}

func TestMonitor_StopAfterOneInterval(t *testing.T) {
	sampler := &fakeSampler{}
	submitter := &fakeSubmitter{authenticated: true, machineType: "server", result: transport.Result{Success: true}}
	m := New(sampler, submitter, zaptest.NewLogger(t))

	var durations []time.Duration
	m.sleep = stopAfter(m, 2, &durations)

	cfg := models.MonitoringConfig{MonitoredStatus: models.MonitoredStatus{CPU: true}, UpdateFrequency: 5}
	if err := m.Start(context.Background(), cfg); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	if sampler.calls != 1 || len(submitter.sent) != 1 {
		t.Errorf("cycles: collect=%d submit=%d, want 1 and 1", sampler.calls, len(submitter.sent))
	}
	if !sampler.statuses[0].CPU || sampler.statuses[0].RAM {
		t.Errorf("collected status = %+v", sampler.statuses[0])
	}
	if durations[0] != 5*time.Second {
		t.Errorf("sleep = %v, want 5s", durations[0])
	}
	if got := submitter.sent[0].MachineInfo.Type; got != "server" {
		t.Errorf("snapshot machine type = %q, want server", got)
	}
	want := []EventType{EventStarted, EventDataSent, EventStopped}
	if got := drain(m); !reflect.DeepEqual(got, want) {
		t.Errorf("events = %v, want %v", got, want)
	}
	if m.State() != StateIdle {
		t.Errorf("State() = %v, want idle", m.State())
	}
}

func TestMonitor_SkipsWithoutToken(t *testing.T) {
	sampler := &fakeSampler{}
	submitter := &fakeSubmitter{}
	m := New(sampler, submitter, zaptest.NewLogger(t))
	var durations []time.Duration
	m.sleep = stopAfter(m, 3, &durations)

	if err := m.Start(context.Background(), models.MonitoringConfig{}); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	if sampler.calls != 2 {
		t.Errorf("collect calls = %d, want 2", sampler.calls)
	}
	if len(submitter.sent) != 0 {
		t.Errorf("submitted %d snapshots without a token", len(submitter.sent))
	}
	if durations[0] != time.Second {
		t.Errorf("default interval = %v, want 1s", durations[0])
	}
	want := []EventType{EventStarted, EventSkipped, EventSkipped, EventStopped}
	if got := drain(m); !reflect.DeepEqual(got, want) {
		t.Errorf("events = %v, want %v", got, want)
	}
}

func TestMonitor_ContinuesAfterSendFailure(t *testing.T) {
	sampler := &fakeSampler{}
	submitter := &fakeSubmitter{
		authenticated: true,
		result:        transport.Failure(transport.KindConnection, "connection refused", 0),
	}
	m := New(sampler, submitter, zaptest.NewLogger(t))
	var durations []time.Duration
	m.sleep = stopAfter(m, 4, &durations)

	if err := m.Start(context.Background(), models.MonitoringConfig{UpdateFrequency: 2}); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	if len(submitter.sent) != 3 {
		t.Errorf("submit calls = %d, want 3", len(submitter.sent))
	}
	want := []EventType{EventStarted, EventSendFailed, EventSendFailed, EventSendFailed, EventStopped}
	if got := drain(m); !reflect.DeepEqual(got, want) {
		t.Errorf("events = %v, want %v", got, want)
	}
}

func TestMonitor_CollectErrorEndsLoop(t *testing.T) {
	boom := errors.New("boom")
	sampler := &fakeSampler{err: boom}
	submitter := &fakeSubmitter{authenticated: true}
	m := New(sampler, submitter, zaptest.NewLogger(t))
	m.sleep = func(context.Context, time.Duration) error { return nil }

	err := m.Start(context.Background(), models.MonitoringConfig{})
	if !errors.Is(err, boom) {
		t.Fatalf("Start() error = %v, want boom", err)
	}
	if sampler.calls != 1 || len(submitter.sent) != 0 {
		t.Errorf("collect=%d submit=%d, want 1 and 0", sampler.calls, len(submitter.sent))
	}
	want := []EventType{EventStarted, EventError, EventStopped}
	if got := drain(m); !reflect.DeepEqual(got, want) {
		t.Errorf("events = %v, want %v", got, want)
	}
}

func TestMonitor_ContextCancel(t *testing.T) {
	m := New(&fakeSampler{}, &fakeSubmitter{}, zaptest.NewLogger(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := m.Start(ctx, models.MonitoringConfig{}); err != nil {
		t.Errorf("Start() with cancelled context error = %v, want nil", err)
	}
}

func TestMonitor_AlreadyRunning(t *testing.T) {
	m := New(&fakeSampler{}, &fakeSubmitter{}, zaptest.NewLogger(t))
	entered := make(chan struct{})
	m.sleep = func(ctx context.Context, _ time.Duration) error {
		close(entered)
		<-ctx.Done()
		return ctx.Err()
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- m.Start(ctx, models.MonitoringConfig{}) }()

	<-entered
	if err := m.Start(context.Background(), models.MonitoringConfig{}); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Start() error = %v, want ErrAlreadyRunning", err)
	}
	if m.State() != StateRunning {
		t.Errorf("State() = %v, want running", m.State())
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Start() error = %v", err)
	}
}

func TestMonitor_StopBeforeLoopRuns(t *testing.T) {
	sampler := &fakeSampler{}
	submitter := &fakeSubmitter{authenticated: true, result: transport.Result{Success: true}}
	m := New(sampler, submitter, zaptest.NewLogger(t))

	var during State
	m.sleep = func(context.Context, time.Duration) error {
		during = m.State()
		return nil
	}

	m.Stop()
	if err := m.Start(context.Background(), models.MonitoringConfig{}); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if sampler.calls != 0 {
		t.Errorf("collect calls = %d, want 0 after an early Stop", sampler.calls)
	}
	if during != StateStopping {
		t.Errorf("State() while sleeping = %v, want stopping", during)
	}
	if m.State() != StateIdle {
		t.Errorf("State() = %v, want idle", m.State())
	}

	// The flag is consumed: the next run goes on until stopped again.
	var durations []time.Duration
	m.sleep = stopAfter(m, 2, &durations)
	if err := m.Start(context.Background(), models.MonitoringConfig{}); err != nil {
		t.Fatalf("second Start() error = %v", err)
	}
	if sampler.calls != 1 {
		t.Errorf("collect calls = %d, want 1", sampler.calls)
	}
}

func TestSleepContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := sleepContext(ctx, time.Hour); !errors.Is(err, context.Canceled) {
		t.Errorf("sleepContext() = %v, want context.Canceled", err)
	}
	if err := sleepContext(context.Background(), time.Millisecond); err != nil {
		t.Errorf("sleepContext() = %v, want nil", err)
	}
}
