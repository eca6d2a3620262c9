package param

import (
	"math"
	"sync/atomic"
)

// Pending is a control-side value tagged with whether it still has to be
// delivered to the audio side.
type Pending struct {
	Value   float32
	Changed bool
}

// Set stores v and tags it for delivery.
func (p *Pending) Set(v float32) {
	p.Value = v
	p.Changed = true
}

// Take returns the value and clears the tag. ok is false when nothing was pending.
func (p *Pending) Take() (v float32, ok bool) {
	if !p.Changed {
		return p.Value, false
	}
	p.Changed = false
	return p.Value, true
}

// SharedValue publishes a float32 from one goroutine to another without locks.
type SharedValue struct {
	bits  atomic.Uint32
	dirty atomic.Bool
}

// Publish stores v and marks it unread.
func (s *SharedValue) Publish(v float32) {
	s.bits.Store(math.Float32bits(v))
	s.dirty.Store(true)
}

// Load returns the last published value.
func (s *SharedValue) Load() float32 {
	return math.Float32frombits(s.bits.Load())
}

// Collect returns the last published value if it has not been collected yet.
func (s *SharedValue) Collect() (float32, bool) {
	if !s.dirty.Swap(false) {
		return 0, false
	}
	return s.Load(), true
}

// Mirror keeps the control-owned and audio-owned copies of every parameter.
//
// The control goroutine owns the Pending values and the audio goroutine owns
// the audio values and their changed tags. The only shared state is the
// SharedValue array the audio side publishes host-originated changes into.
type Mirror struct {
	main []Pending

	audio        []float32
	audioChanged []bool

	published []SharedValue
}

// NewMirror creates a mirror with both sides set to defaults.
func NewMirror(defaults []float32) *Mirror {
	m := &Mirror{
		main:         make([]Pending, len(defaults)),
		audio:        make([]float32, len(defaults)),
		audioChanged: make([]bool, len(defaults)),
		published:    make([]SharedValue, len(defaults)),
	}
	for i, v := range defaults {
		m.main[i].Value = v
		m.audio[i] = v
		m.published[i].bits.Store(math.Float32bits(v))
	}
	return m
}

// Len returns the number of mirrored parameters.
func (m *Mirror) Len() int { return len(m.main) }

func (m *Mirror) valid(id uint32) bool { return id < uint32(len(m.main)) }

// Control side

// Edit records a control-side change that has to reach the audio side.
func (m *Mirror) Edit(id uint32, v float32) bool {
	if !m.valid(id) {
		return false
	}
	m.main[id].Set(v)
	return true
}

// Value returns the control-side view of a parameter. A pending edit wins,
// otherwise any newly published audio value is adopted first.
func (m *Mirror) Value(id uint32) (float32, bool) {
	if !m.valid(id) {
		return 0, false
	}
	if !m.main[id].Changed {
		if v, ok := m.published[id].Collect(); ok {
			m.main[id].Value = v
		}
	}
	return m.main[id].Value, true
}

// IsPending reports whether a control edit has not been delivered yet.
func (m *Mirror) IsPending(id uint32) bool {
	return m.valid(id) && m.main[id].Changed
}

// PendingCount returns the number of undelivered control edits.
func (m *Mirror) PendingCount() int {
	n := 0
	for i := range m.main {
		if m.main[i].Changed {
			n++
		}
	}
	return n
}

// Deliver hands every pending edit to send in index order. Edits for which
// send returns false stay pending. A delivered edit supersedes any audio value
// published before the send, so that value is discarded. A value published
// during or after the send is kept.
func (m *Mirror) Deliver(send func(id uint32, v float32) bool) int {
	delivered := 0
	for i := range m.main {
		p := &m.main[i]
		if !p.Changed {
			continue
		}
		m.published[i].dirty.Store(false)
		if !send(uint32(i), p.Value) {
			continue
		}
		p.Changed = false
		delivered++
	}
	return delivered
}

// SyncAudioToMain adopts every published audio value that has no pending
// control edit and reports whether anything changed.
func (m *Mirror) SyncAudioToMain() bool {
	changed := false
	for i := range m.main {
		if m.main[i].Changed {
			continue
		}
		if v, ok := m.published[i].Collect(); ok {
			if m.main[i].Value != v {
				changed = true
			}
			m.main[i].Value = v
		}
	}
	return changed
}

// MainValues copies the control-side values into dst, growing it if needed.
func (m *Mirror) MainValues(dst []float32) []float32 {
	if cap(dst) < len(m.main) {
		dst = make([]float32, len(m.main))
	}
	dst = dst[:len(m.main)]
	for i := range m.main {
		dst[i] = m.main[i].Value
	}
	return dst
}

// LoadMain replaces all control-side values and marks every one pending.
func (m *Mirror) LoadMain(values []float32) bool {
	if len(values) != len(m.main) {
		return false
	}
	for i, v := range values {
		m.main[i].Set(v)
	}
	return true
}

// Audio side

// Audio returns the audio-side value. id must be valid.
func (m *Mirror) Audio(id uint32) float32 {
	return m.audio[id]
}

// SetAudio stores an audio-side value. Changes that originate on the audio
// side (host automation) pass publish=true so the control side learns about them.
func (m *Mirror) SetAudio(id uint32, v float32, publish bool) bool {
	if !m.valid(id) {
		return false
	}
	m.audio[id] = v
	if publish {
		m.audioChanged[id] = true
	}
	return true
}

// Publish pushes tagged audio values to the control side.
func (m *Mirror) Publish() int {
	n := 0
	for i, changed := range m.audioChanged {
		if !changed {
			continue
		}
		m.published[i].Publish(m.audio[i])
		m.audioChanged[i] = false
		n++
	}
	return n
}
