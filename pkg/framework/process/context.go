// Package process provides the per-block render context and the
// sample-accurate event walker.
package process

import (
	"errors"
	"fmt"

	"github.com/justyntemme/goecho/pkg/framework/event"
)

// ErrShortBuffer is returned by Validate when a channel holds fewer samples than Frames.
var ErrShortBuffer = errors.New("process: buffer shorter than frame count")

// Context is everything a render call receives for one block
type Context struct {
	Input      [][]float32
	Output     [][]float32
	Frames     uint32
	SampleRate float64

	// InEvents is time-ordered; OutEvents receives host-bound events.
	InEvents  event.InputEvents
	OutEvents event.OutputEvents
}

// NumSamples returns the number of samples to process
func (c *Context) NumSamples() int {
	return int(c.Frames)
}

// NumInputChannels returns the number of input channels
func (c *Context) NumInputChannels() int {
	return len(c.Input)
}

// NumOutputChannels returns the number of output channels
func (c *Context) NumOutputChannels() int {
	return len(c.Output)
}

// Validate checks that every channel holds at least Frames samples and that
// at least channels inputs and outputs are present.
func (c *Context) Validate(channels int) error {
	if len(c.Input) < channels || len(c.Output) < channels {
		return fmt.Errorf("process: need %d channels, have %d in / %d out", channels, len(c.Input), len(c.Output))
	}
	for ch := 0; ch < channels; ch++ {
		if len(c.Input[ch]) < int(c.Frames) || len(c.Output[ch]) < int(c.Frames) {
			return fmt.Errorf("%w: channel %d", ErrShortBuffer, ch)
		}
	}
	return nil
}

// PassThrough copies input to output (for bypass)
func (c *Context) PassThrough() {
	numChannels := c.NumInputChannels()
	if c.NumOutputChannels() < numChannels {
		numChannels = c.NumOutputChannels()
	}

	for ch := 0; ch < numChannels; ch++ {
		copy(c.Output[ch][:c.Frames], c.Input[ch][:c.Frames])
	}
}

// Clear zeros the output buffers
func (c *Context) Clear() {
	for ch := range c.Output {
		out := c.Output[ch]
		if int(c.Frames) < len(out) {
			out = out[:c.Frames]
		}
		for i := range out {
			out[i] = 0
		}
	}
}

// InputEventCount returns the number of inbound events, zero when none were given.
func (c *Context) InputEventCount() int {
	if c.InEvents == nil {
		return 0
	}
	return c.InEvents.Len()
}

// PushOutput forwards e to the host, reporting false when it was not accepted.
func (c *Context) PushOutput(e event.Event) bool {
	if c.OutEvents == nil {
		return false
	}
	return c.OutEvents.TryPush(e)
}
