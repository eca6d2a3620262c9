package echo

import (
	"fmt"

	"github.com/justyntemme/goecho/pkg/framework/event"
	"github.com/justyntemme/goecho/pkg/framework/param"
)

// Control side. Everything here runs on the control goroutine.

func (s *Session) checkID(id uint32) error {
	if id >= uint32(NumParams) {
		return fmt.Errorf("%w: %d", param.ErrInvalidID, id)
	}
	return nil
}

// BeginGesture marks the start of a continuous edit of id. The marker reaches
// the host before any value set during the gesture.
func (s *Session) BeginGesture(id uint32) error {
	if err := s.checkID(id); err != nil {
		return err
	}
	g := &s.gestures[id]
	if g.active {
		return nil
	}
	s.flush()
	g.active = true
	if g.endPending {
		// The previous end never left, so the host sees one gesture.
		g.endPending = false
	} else {
		g.beginPending = true
	}
	s.flush()
	return nil
}

// SetParam records a control edit of id and queues it for the audio side.
// An edit the FIFO cannot take stays pending and is retried by Tick.
func (s *Session) SetParam(id uint32, value float64) error {
	v, ok := s.sanitize(id, value)
	if !ok {
		return fmt.Errorf("%w: %d", param.ErrInvalidID, id)
	}
	s.mirror.Edit(id, float32(v))
	s.flush()
	return nil
}

// EndGesture marks the end of a continuous edit of id. The marker is queued
// after the last value of the gesture.
func (s *Session) EndGesture(id uint32) error {
	if err := s.checkID(id); err != nil {
		return err
	}
	g := &s.gestures[id]
	if !g.active {
		return nil
	}
	g.active = false
	g.endPending = true
	s.flush()
	return nil
}

// IsGestureActive reports whether a gesture on id is open.
func (s *Session) IsGestureActive(id uint32) bool {
	return id < uint32(NumParams) && s.gestures[id].active
}

// Tick is the periodic control-thread callback. It retries queued edits and
// gesture markers and adopts values the audio side published. It reports
// whether any control-visible value changed because of host automation.
func (s *Session) Tick() bool {
	s.flush()
	return s.mirror.SyncAudioToMain()
}

// ParamValue returns the control-side value of id: a pending edit if there is
// one, otherwise the latest value published by the audio side.
func (s *Session) ParamValue(id uint32) (float64, bool) {
	v, ok := s.mirror.Value(id)
	return float64(v), ok
}

// SyncAudioToMain adopts every value the audio side published since the last call.
func (s *Session) SyncAudioToMain() bool {
	return s.mirror.SyncAudioToMain()
}

// PendingEdits returns the number of edits waiting for room in the FIFO.
func (s *Session) PendingEdits() int {
	return s.mirror.PendingCount()
}

// deliverValue pushes one pending value, preceded by its gesture begin marker.
func (s *Session) deliverValue(id uint32, v float32) bool {
	g := &s.gestures[id]
	if g.beginPending {
		if !s.push(event.Begin(0, id)) {
			return false
		}
		g.beginPending = false
	}
	return s.push(event.Value(0, id, float64(v)))
}

// flush queues everything pending, keeping per-parameter order
// begin, value, end.
func (s *Session) flush() int {
	n := s.mirror.Deliver(s.deliver)

	for i := range s.gestures {
		id := uint32(i)
		g := &s.gestures[i]
		if s.mirror.IsPending(id) {
			continue
		}
		if g.beginPending {
			if !s.push(event.Begin(0, id)) {
				continue
			}
			g.beginPending = false
			n++
		}
		if g.endPending {
			if !s.push(event.End(0, id)) {
				continue
			}
			g.endPending = false
			n++
		}
	}
	return n
}

func (s *Session) push(e event.Event) bool {
	if err := s.fifo.Push(e); err != nil {
		s.log.Debug("%s for param %d deferred: %v (%d dropped)", e.Kind, e.ParamID, err, s.fifo.Dropped())
		return false
	}
	return true
}
