package sequencer

import "github.com/nvlled/photocage/lib/photo"

type EventKind int

const (
	EventCountdown EventKind = iota
	EventCaptured
	EventFailed
	EventDone
	EventReset
)

func (kind EventKind) String() string {
	switch kind {
	case EventCountdown:
		return "countdown"
	case EventCaptured:
		return "captured"
	case EventFailed:
		return "failed"
	case EventDone:
		return "done"
	case EventReset:
		return "reset"
	}
	return "invalid-event"
}

type Event struct {
	Kind    EventKind
	Session string

	// EventCountdown, EventReset
	Countdown int

	// EventCaptured
	Index int
	Frame photo.Frame

	// EventFailed
	Err error
}
