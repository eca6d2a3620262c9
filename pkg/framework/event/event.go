// Package event carries parameter changes between the control side, the
// audio side and the host.
package event

// Kind identifies what an Event does.
type Kind uint8

const (
	// ParamValue sets a parameter to Value.
	ParamValue Kind = iota
	// GestureBegin marks the start of a continuous user edit.
	GestureBegin
	// GestureEnd marks the end of a continuous user edit.
	GestureEnd
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	switch k {
	case ParamValue:
		return "value"
	case GestureBegin:
		return "gesture-begin"
	case GestureEnd:
		return "gesture-end"
	default:
		return "unknown"
	}
}

// Event is a parameter message. Time is the frame offset inside the current
// block and is ignored for control-side traffic.
type Event struct {
	Time    uint32
	Kind    Kind
	ParamID uint32
	Value   float64
}

// Value creates a value-change event.
func Value(time, id uint32, v float64) Event {
	return Event{Time: time, Kind: ParamValue, ParamID: id, Value: v}
}

// Begin creates a gesture-begin event.
func Begin(time, id uint32) Event {
	return Event{Time: time, Kind: GestureBegin, ParamID: id}
}

// End creates a gesture-end event.
func End(time, id uint32) Event {
	return Event{Time: time, Kind: GestureEnd, ParamID: id}
}

// InputEvents is a read-only, time-ordered sequence of events for one block.
type InputEvents interface {
	Len() int
	At(i int) Event
}

// OutputEvents accepts events destined for the host.
type OutputEvents interface {
	TryPush(e Event) bool
}
