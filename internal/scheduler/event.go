package scheduler

import "time"

// EventType identifies a monitor lifecycle event.
type EventType int

const (
	EventStarted EventType = iota
	EventDataSent
	EventSendFailed
	EventSkipped
	EventError
	EventStopped
)

func (t EventType) String() string {
	switch t {
	case EventStarted:
		return "started"
	case EventDataSent:
		return "data_sent"
	case EventSendFailed:
		return "send_failed"
	case EventSkipped:
		return "skipped"
	case EventError:
		return "error"
	case EventStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Event is published by a Monitor. Message carries the snapshot
// timestamp for EventDataSent and the error text for failures.
type Event struct {
	Type    EventType
	Time    time.Time
	Message string
	Err     error
}
