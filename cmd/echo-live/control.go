package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/justyntemme/goecho/pkg/echo"
	"github.com/justyntemme/goecho/pkg/host"
)

// errQuit stops the session without reporting a failure.
var errQuit = errors.New("quit")

const (
	tickInterval = 30 * time.Millisecond
	// A keyboard or MIDI gesture ends after this long without a new value.
	gestureIdle = 300 * time.Millisecond
	// Keyboard step as a fraction of the parameter range.
	keyStep = 0.02
	// MIDI controllers ccBase..ccBase+NumParams-1 map to the parameters.
	ccBase = 20
)

type inputKind int

const (
	inputKey inputKind = iota
	inputCC
	inputNote
)

// input is one user action from the keyboard or a MIDI port.
type input struct {
	kind  inputKind
	key   byte
	cc    uint8
	value uint8
}

// parseMIDI decodes a raw channel message. Only control changes and
// note-ons are of interest.
func parseMIDI(data []byte) (input, bool) {
	if len(data) < 3 {
		return input{}, false
	}
	switch data[0] & 0xF0 {
	case 0xB0:
		return input{kind: inputCC, cc: data[1] & 0x7F, value: data[2] & 0x7F}, true
	case 0x90:
		if data[2] == 0 {
			return input{}, false
		}
		return input{kind: inputNote, value: data[2] & 0x7F}, true
	}
	return input{}, false
}

// controller is the control goroutine. It is the only caller of the
// session's control-side methods.
type controller struct {
	s         *echo.Session
	h         *host.Host
	src       *stream
	out       io.Writer
	now       func() time.Time
	selected  uint32
	touched   [echo.NumParams]time.Time
	deviceErr func() error
}

func newController(s *echo.Session, h *host.Host, src *stream, out io.Writer) *controller {
	return &controller{s: s, h: h, src: src, out: out, now: time.Now}
}

// run handles inputs and ticks until ctx ends or the user quits.
func (c *controller) run(ctx context.Context, inputs <-chan input) (err error) {
	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()
	defer func() {
		if endErr := c.endAll(); endErr != nil {
			err = errors.Join(err, endErr)
		}
	}()

	c.draw()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case in := <-inputs:
			if err := c.handle(in); err != nil {
				return err
			}
		case <-ticker.C:
			if err := c.tick(); err != nil {
				return err
			}
			if c.deviceErr != nil {
				if err := c.deviceErr(); err != nil {
					return fmt.Errorf("audio device: %w", err)
				}
			}
			c.draw()
		}
	}
}

func (c *controller) handle(in input) error {
	switch in.kind {
	case inputCC:
		if in.cc < ccBase || in.cc >= ccBase+uint8(echo.NumParams) {
			return nil
		}
		id := uint32(in.cc - ccBase)
		return c.setNormalized(id, float64(in.value)/127)
	case inputNote:
		c.trigger()
		return nil
	}

	switch k := in.key; {
	case k >= '1' && k < '1'+byte(echo.NumParams):
		c.selected = uint32(k - '1')
	case k == '+' || k == '=':
		return c.nudge(keyStep)
	case k == '-' || k == '_':
		return c.nudge(-keyStep)
	case k == 'r':
		p, _ := c.s.Parameters().Get(c.selected)
		return c.edit(c.selected, p.DefaultValue)
	case k == ' ':
		c.trigger()
	case k == 'q' || k == 3:
		return errQuit
	}
	return nil
}

func (c *controller) trigger() {
	if c.src != nil {
		c.src.trigger()
	}
}

func (c *controller) nudge(step float64) error {
	p, _ := c.s.Parameters().Get(c.selected)
	v, _ := c.s.ParamValue(c.selected)
	n := min(max(p.Normalize(v)+step, 0), 1)
	return c.edit(c.selected, p.Denormalize(n))
}

func (c *controller) setNormalized(id uint32, n float64) error {
	p, ok := c.s.Parameters().Get(id)
	if !ok {
		return nil
	}
	return c.edit(id, p.Denormalize(n))
}

// edit sets id inside a gesture, opening one if needed.
func (c *controller) edit(id uint32, plain float64) error {
	if !c.s.IsGestureActive(id) {
		if err := c.s.BeginGesture(id); err != nil {
			return err
		}
	}
	c.touched[id] = c.now()
	return c.s.SetParam(id, plain)
}

// tick closes idle gestures and runs the session's periodic work.
func (c *controller) tick() error {
	now := c.now()
	for id := uint32(0); id < uint32(echo.NumParams); id++ {
		if c.s.IsGestureActive(id) && now.Sub(c.touched[id]) >= gestureIdle {
			if err := c.s.EndGesture(id); err != nil {
				return fmt.Errorf("end gesture %d: %w", id, err)
			}
		}
	}
	c.h.Tick()
	return nil
}

// endAll closes every open gesture, continuing past failures.
func (c *controller) endAll() error {
	var errs []error
	for id := uint32(0); id < uint32(echo.NumParams); id++ {
		if c.s.IsGestureActive(id) {
			if err := c.s.EndGesture(id); err != nil {
				errs = append(errs, fmt.Errorf("end gesture %d: %w", id, err))
			}
		}
	}
	c.h.Tick()
	return errors.Join(errs...)
}

func (c *controller) draw() {
	if c.out != nil {
		fmt.Fprintf(c.out, "\r%s\x1b[K", c.status())
	}
}

// status is the one-line view of every parameter, the selected one
// in brackets.
func (c *controller) status() string {
	params, err := c.h.Params()
	if err != nil {
		return err.Error()
	}
	var b strings.Builder
	for i, p := range params {
		if i > 0 {
			b.WriteString("  ")
		}
		name := p.ShortName
		if name == "" {
			name = p.Name
		}
		if p.ID == c.selected {
			fmt.Fprintf(&b, "[%d %s %s]", i+1, name, p.Text)
		} else {
			fmt.Fprintf(&b, "%d %s %s", i+1, name, p.Text)
		}
	}
	if d := c.s.Dropped(); d > 0 {
		fmt.Fprintf(&b, "  (deferred %d)", d)
	}
	return b.String()
}
