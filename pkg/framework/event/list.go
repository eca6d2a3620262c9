package event

import "errors"

// ErrListFull is returned when a List has no room left.
var ErrListFull = errors.New("event: list full")

// List is a preallocated, time-ordered event list. It serves as the host's
// input list for a block and as the sink for outbound events.
type List struct {
	events []Event
}

// NewList creates a list that holds up to capacity events without allocating.
func NewList(capacity int) *List {
	if capacity < 0 {
		capacity = 0
	}
	return &List{events: make([]Event, 0, capacity)}
}

// Len returns the number of events.
func (l *List) Len() int { return len(l.events) }

// At returns the i-th event.
func (l *List) At(i int) Event { return l.events[i] }

// Add inserts e after every event with the same or an earlier time.
func (l *List) Add(e Event) error {
	if len(l.events) == cap(l.events) {
		return ErrListFull
	}
	i := len(l.events)
	for i > 0 && l.events[i-1].Time > e.Time {
		i--
	}
	l.events = append(l.events, Event{})
	copy(l.events[i+1:], l.events[i:])
	l.events[i] = e
	return nil
}

// TryPush implements OutputEvents.
func (l *List) TryPush(e Event) bool {
	return l.Add(e) == nil
}

// Clear removes all events and keeps the storage.
func (l *List) Clear() {
	l.events = l.events[:0]
}

// Events returns the underlying slice. It is valid until the next mutation.
func (l *List) Events() []Event {
	return l.events
}

// Slice adapts a plain slice to InputEvents. The caller keeps it time-ordered.
type Slice []Event

// Len returns the number of events.
func (s Slice) Len() int { return len(s) }

// At returns the i-th event.
func (s Slice) At(i int) Event { return s[i] }

// Discard is an OutputEvents that accepts and drops everything.
var Discard OutputEvents = discard{}

type discard struct{}

func (discard) TryPush(Event) bool { return true }
