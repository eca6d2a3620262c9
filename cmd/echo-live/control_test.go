package main

import (
	"bytes"
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justyntemme/goecho/pkg/echo"
	"github.com/justyntemme/goecho/pkg/framework/debug"
	"github.com/justyntemme/goecho/pkg/framework/event"
	"github.com/justyntemme/goecho/pkg/host"
)

func openTestHost(t *testing.T) (*host.Host, *echo.Session) {
	t.Helper()
	opts := host.DefaultOptions()
	opts.Logger = debug.New(io.Discard, "", 0)
	opts.Record = true
	h, err := host.Open(echo.ID, opts)
	require.NoError(t, err)
	t.Cleanup(func() { h.Close() })
	return h, h.Plugin().(*echo.Session)
}

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestController(t *testing.T) (*controller, *host.Host, *echo.Session, *fakeClock) {
	h, s := openTestHost(t)
	clock := &fakeClock{t: time.Unix(0, 0)}
	c := newController(s, h, nil, nil)
	c.now = clock.now
	return c, h, s, clock
}

func key(k byte) input { return input{kind: inputKey, key: k} }

func TestParseMIDI(t *testing.T) {
	in, ok := parseMIDI([]byte{0xB3, 21, 64})
	require.True(t, ok)
	assert.Equal(t, input{kind: inputCC, cc: 21, value: 64}, in)

	in, ok = parseMIDI([]byte{0x90, 60, 100})
	require.True(t, ok)
	assert.Equal(t, inputNote, in.kind)

	_, ok = parseMIDI([]byte{0x90, 60, 0})
	assert.False(t, ok, "note-on with zero velocity is a note-off")
	_, ok = parseMIDI([]byte{0x80, 60, 0})
	assert.False(t, ok)
	_, ok = parseMIDI([]byte{0xB0, 20})
	assert.False(t, ok)
}

func TestControllerKeys(t *testing.T) {
	c, _, s, _ := newTestController(t)

	require.NoError(t, c.handle(key('4')))
	assert.Equal(t, echo.ParamMix, c.selected)

	require.NoError(t, c.handle(key('+')))
	v, _ := s.ParamValue(echo.ParamMix)
	assert.InDelta(t, 0.32, v, 1e-6)
	assert.True(t, s.IsGestureActive(echo.ParamMix))

	require.NoError(t, c.handle(key('-')))
	require.NoError(t, c.handle(key('-')))
	v, _ = s.ParamValue(echo.ParamMix)
	assert.InDelta(t, 0.28, v, 1e-6)

	require.NoError(t, c.handle(key('r')))
	v, _ = s.ParamValue(echo.ParamMix)
	assert.InDelta(t, 0.3, v, 1e-6)

	require.NoError(t, c.handle(key('9')))
	assert.Equal(t, echo.ParamMix, c.selected, "out of range selection is ignored")

	assert.ErrorIs(t, c.handle(key('q')), errQuit)
	assert.ErrorIs(t, c.handle(key(3)), errQuit)
}

func TestControllerClampsAtRange(t *testing.T) {
	c, _, s, _ := newTestController(t)
	require.NoError(t, c.handle(key('2')))
	for i := 0; i < 60; i++ {
		require.NoError(t, c.handle(key('+')))
	}
	v, _ := s.ParamValue(echo.ParamFeedback)
	assert.Equal(t, 1.0, v)
}

func TestControllerMIDI(t *testing.T) {
	c, _, s, _ := newTestController(t)

	require.NoError(t, c.handle(input{kind: inputCC, cc: ccBase + uint8(echo.ParamFeedback), value: 127}))
	v, _ := s.ParamValue(echo.ParamFeedback)
	assert.Equal(t, 1.0, v)

	require.NoError(t, c.handle(input{kind: inputCC, cc: ccBase, value: 0}))
	v, _ = s.ParamValue(echo.ParamTime)
	assert.Equal(t, 1.0, v)

	require.NoError(t, c.handle(input{kind: inputCC, cc: 7, value: 10}))
	require.NoError(t, c.handle(input{kind: inputNote, value: 100}))
}

func TestControllerGestureIdle(t *testing.T) {
	c, h, s, clock := newTestController(t)
	in := [][]float32{make([]float32, 64), make([]float32, 64)}
	out := [][]float32{make([]float32, 64), make([]float32, 64)}

	require.NoError(t, c.handle(key('+')))
	clock.advance(100 * time.Millisecond)
	require.NoError(t, c.handle(key('+')))
	require.NoError(t, c.tick())
	assert.True(t, s.IsGestureActive(echo.ParamTime))

	clock.advance(gestureIdle)
	require.NoError(t, c.tick())
	assert.False(t, s.IsGestureActive(echo.ParamTime))

	_, err := h.Process(in, out, 64)
	require.NoError(t, err)

	var kinds []event.Kind
	for _, r := range h.Recorded() {
		kinds = append(kinds, r.Kind)
	}
	assert.Equal(t, []event.Kind{event.GestureBegin, event.ParamValue, event.ParamValue, event.GestureEnd}, kinds)
}

func TestControllerEndAll(t *testing.T) {
	c, h, s, _ := newTestController(t)
	require.NoError(t, c.handle(key('+')))
	require.NoError(t, c.handle(key('2')))
	require.NoError(t, c.handle(key('+')))
	require.True(t, s.IsGestureActive(echo.ParamTime))
	require.True(t, s.IsGestureActive(echo.ParamFeedback))

	require.NoError(t, c.endAll())
	assert.False(t, s.IsGestureActive(echo.ParamTime))
	assert.False(t, s.IsGestureActive(echo.ParamFeedback))
	require.NoError(t, c.endAll(), "ending with no open gestures")

	in := [][]float32{make([]float32, 64), make([]float32, 64)}
	out := [][]float32{make([]float32, 64), make([]float32, 64)}
	_, err := h.Process(in, out, 64)
	require.NoError(t, err)

	ends := 0
	for _, r := range h.Recorded() {
		if r.Kind == event.GestureEnd {
			ends++
		}
	}
	assert.Equal(t, 2, ends)
}

func TestControllerStatus(t *testing.T) {
	c, _, _, _ := newTestController(t)
	var buf bytes.Buffer
	c.out = &buf
	c.selected = echo.ParamFeedback

	c.draw()
	line := buf.String()
	assert.Contains(t, line, "1 Time 300.0 ms")
	assert.Contains(t, line, "[2 Feedback 50%]")
	assert.Contains(t, line, "6 Depth 0%")
}

func TestControllerRun(t *testing.T) {
	c, _, s, _ := newTestController(t)
	inputs := make(chan input, 4)
	inputs <- key('+')
	inputs <- key('q')

	err := c.run(context.Background(), inputs)
	assert.ErrorIs(t, err, errQuit)
	assert.False(t, s.IsGestureActive(echo.ParamTime), "quitting closes open gestures")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, c.run(ctx, make(chan input)), context.Canceled)
}
