package event

import (
	"errors"
	"sync/atomic"
)

// DefaultCapacity is the FIFO size used when none is configured.
const DefaultCapacity = 256

// ErrFIFOFull is returned by Push when every slot holds an unread event.
var ErrFIFOFull = errors.New("event: fifo full")

// Consumer receives drained events.
type Consumer interface {
	ConsumeEvent(e Event)
}

// ConsumerFunc adapts a function to Consumer.
type ConsumerFunc func(e Event)

// ConsumeEvent calls f(e).
func (f ConsumerFunc) ConsumeEvent(e Event) { f(e) }

// FIFO is a lock-free single-producer/single-consumer ring of events.
//
// Exactly one goroutine may call Push and exactly one goroutine may call
// Drain. Cursors increase monotonically and are masked on access.
// The producer writes the slot before storing the write cursor and the
// consumer loads the write cursor before reading slots; sync/atomic
// operations are sequentially consistent, so a slot's payload is visible to
// the consumer once the cursor covering it is.
//
// Overflow policy is reject-newest: a push into a full ring fails with
// ErrFIFOFull, leaves the queued events untouched and counts the drop.
type FIFO struct {
	slots []Event
	mask  uint32

	write atomic.Uint32
	read  atomic.Uint32

	dropped atomic.Uint64
}

// NewFIFO creates a FIFO holding at least capacity events, rounded up to a
// power of two.
func NewFIFO(capacity int) *FIFO {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if capacity > 1<<30 {
		capacity = 1 << 30
	}
	size := nextPowerOf2(uint32(capacity))
	return &FIFO{
		slots: make([]Event, size),
		mask:  size - 1,
	}
}

// Push enqueues e. Producer only.
func (f *FIFO) Push(e Event) error {
	w := f.write.Load()
	r := f.read.Load()
	if w-r >= uint32(len(f.slots)) {
		f.dropped.Add(1)
		return ErrFIFOFull
	}
	f.slots[w&f.mask] = e
	f.write.Store(w + 1)
	return nil
}

// Drain hands every queued event to c in order and releases the slots once
// the batch is done. Consumer only. Returns the number of events drained.
func (f *FIFO) Drain(c Consumer) int {
	r := f.read.Load()
	w := f.write.Load()
	n := 0
	for r != w {
		c.ConsumeEvent(f.slots[r&f.mask])
		r++
		n++
	}
	if n > 0 {
		f.read.Store(r)
	}
	return n
}

// Len returns the number of queued events. It is exact only when called from
// the producer or consumer with the other side idle.
func (f *FIFO) Len() int {
	return int(f.write.Load() - f.read.Load())
}

// Cap returns the slot count.
func (f *FIFO) Cap() int {
	return len(f.slots)
}

// Dropped returns the number of rejected pushes.
func (f *FIFO) Dropped() uint64 {
	return f.dropped.Load()
}

// nextPowerOf2 rounds up to the next power of 2
func nextPowerOf2(n uint32) uint32 {
	if n == 0 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	return n + 1
}
