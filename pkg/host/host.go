// Package host drives a plugin the way an audio host does: it activates the
// plugin, feeds it blocks with sample-accurate automation, collects the
// automation the plugin emits and runs its main-thread callback.
package host

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/justyntemme/goecho/pkg/framework/bus"
	"github.com/justyntemme/goecho/pkg/framework/debug"
	"github.com/justyntemme/goecho/pkg/framework/event"
	"github.com/justyntemme/goecho/pkg/framework/param"
	"github.com/justyntemme/goecho/pkg/framework/process"
	"github.com/justyntemme/goecho/pkg/plugin"
)

var (
	// ErrUnsupported is returned when the plugin lacks a needed extension.
	ErrUnsupported = errors.New("host: extension not supported")
	// ErrBlockSize is returned when a block does not fit the activation.
	ErrBlockSize = errors.New("host: invalid block size")
	// ErrClosed is returned after Close.
	ErrClosed = errors.New("host: closed")
)

// Options configure a Host
type Options struct {
	SampleRate float64
	MinFrames  uint32
	MaxFrames  uint32

	// EventCapacity bounds the inbound and outbound events of one block.
	EventCapacity int

	// Record keeps every outbound event for Recorded.
	Record bool

	// Profiler, when set, times every Process call.
	Profiler *debug.RenderProfiler

	Logger *debug.Logger
}

// DefaultOptions returns 48 kHz with blocks of up to 512 frames.
func DefaultOptions() Options {
	return Options{
		SampleRate:    48000,
		MinFrames:     1,
		MaxFrames:     512,
		EventCapacity: 256,
	}
}

// Point is one automation value at an absolute frame position.
type Point struct {
	Frame uint64
	Param uint32
	Value float64
}

// Recorded is an outbound event at the absolute frame position of its block.
type Recorded struct {
	Frame uint64
	event.Event
}

// Host owns one activated plugin instance
type Host struct {
	handle plugin.Handle
	p      plugin.Plugin
	ext    plugin.Extensions
	opts   Options
	log    *debug.Logger

	ctx      process.Context
	in       *event.List
	out      *event.List
	timeline []Point
	recorded []Recorded
	position uint64
	closed   bool
}

// Open creates the plugin registered under id and attaches a host to it.
func Open(id string, opts Options) (*Host, error) {
	h, err := plugin.Create(id)
	if err != nil {
		return nil, err
	}
	host, err := New(h, opts)
	if err != nil {
		plugin.Release(h)
		return nil, err
	}
	return host, nil
}

// New activates the plugin behind handle and starts processing. The host
// takes ownership of the handle and releases it in Close.
func New(handle plugin.Handle, opts Options) (*Host, error) {
	p, err := plugin.Lookup(handle)
	if err != nil {
		return nil, err
	}
	if opts.EventCapacity <= 0 {
		opts.EventCapacity = DefaultOptions().EventCapacity
	}
	log := opts.Logger
	if log == nil {
		log = debug.Default()
	}

	h := &Host{
		handle: handle,
		p:      p,
		ext:    plugin.QueryExtensions(p),
		opts:   opts,
		log:    log.With("host"),
		in:     event.NewList(opts.EventCapacity),
		out:    event.NewList(opts.EventCapacity),
	}
	if h.ext.AudioPorts != nil {
		if n := h.ext.AudioPorts.Count(bus.DirectionOutput); n == 0 {
			return nil, fmt.Errorf("%w: plugin has no audio output", ErrUnsupported)
		}
	}

	if err := p.Activate(opts.SampleRate, opts.MinFrames, opts.MaxFrames); err != nil {
		return nil, fmt.Errorf("host: activate %s: %w", p.Descriptor().ID, err)
	}
	if err := p.StartProcessing(); err != nil {
		p.Deactivate()
		return nil, fmt.Errorf("host: start %s: %w", p.Descriptor().ID, err)
	}

	h.ctx = process.Context{
		SampleRate: opts.SampleRate,
		InEvents:   h.in,
		OutEvents:  h.out,
	}
	h.log.Info("hosting %s %s at %.0f Hz", p.Descriptor().Name, p.Descriptor().Version, opts.SampleRate)
	return h, nil
}

// Plugin returns the hosted plugin
func (h *Host) Plugin() plugin.Plugin { return h.p }

// Handle returns the handle of the hosted plugin
func (h *Host) Handle() plugin.Handle { return h.handle }

// Extensions returns the extensions resolved at attach time
func (h *Host) Extensions() plugin.Extensions { return h.ext }

// Position returns the number of frames rendered so far
func (h *Host) Position() uint64 { return h.position }

// Automate adds points to the automation timeline. Points in the past are
// applied at the start of the next block.
func (h *Host) Automate(points ...Point) {
	h.timeline = append(h.timeline, points...)
	sort.SliceStable(h.timeline, func(i, j int) bool {
		return h.timeline[i].Frame < h.timeline[j].Frame
	})
}

// PendingAutomation returns the number of timeline points not yet delivered.
func (h *Host) PendingAutomation() int { return len(h.timeline) }

// Process renders frames samples from input into output. Automation due in
// the block is delivered with its offset inside the block.
func (h *Host) Process(input, output [][]float32, frames uint32) (plugin.Status, error) {
	if h.closed {
		return plugin.StatusError, ErrClosed
	}
	if frames == 0 || frames > h.opts.MaxFrames {
		return plugin.StatusError, fmt.Errorf("%w: %d frames, max %d", ErrBlockSize, frames, h.opts.MaxFrames)
	}

	h.in.Clear()
	h.out.Clear()
	end := h.position + uint64(frames)
	due := 0
	for _, pt := range h.timeline {
		if pt.Frame >= end {
			break
		}
		var offset uint32
		if pt.Frame > h.position {
			offset = uint32(pt.Frame - h.position)
		}
		if err := h.in.Add(event.Value(offset, pt.Param, pt.Value)); err != nil {
			// Deliver the rest with the next block
			break
		}
		due++
	}
	h.timeline = h.timeline[due:]

	h.ctx.Input = input
	h.ctx.Output = output
	h.ctx.Frames = frames

	var stop func()
	if h.opts.Profiler != nil {
		stop = h.opts.Profiler.Block(frames)
	}
	status := h.p.Process(&h.ctx)
	if stop != nil {
		stop()
	}

	if h.opts.Record {
		for _, e := range h.out.Events() {
			h.recorded = append(h.recorded, Recorded{Frame: h.position + uint64(e.Time), Event: e})
		}
	}
	h.position = end

	if status == plugin.StatusError {
		return status, fmt.Errorf("host: %s failed to process %d frames at %d", h.p.Descriptor().ID, frames, h.position-uint64(frames))
	}
	return status, nil
}

// Outbound returns the events the plugin emitted during the last Process.
func (h *Host) Outbound() []event.Event {
	return h.out.Events()
}

// Recorded returns every outbound event since the host was created. Only
// populated when Options.Record is set.
func (h *Host) Recorded() []Recorded {
	return h.recorded
}

// Tick runs the plugin's main-thread callback.
func (h *Host) Tick() {
	h.p.OnMainThread()
}

// Flush applies events while processing is stopped, e.g. before the first
// block. Outbound events go to the recording.
func (h *Host) Flush(points ...Point) error {
	if h.ext.Params == nil {
		return ErrUnsupported
	}
	in := make(event.Slice, 0, len(points))
	for _, pt := range points {
		in = append(in, event.Value(0, pt.Param, pt.Value))
	}
	h.out.Clear()
	h.p.StopProcessing()
	h.ext.Params.Flush(in, h.out)
	if err := h.p.StartProcessing(); err != nil {
		return fmt.Errorf("host: restart: %w", err)
	}
	if h.opts.Record {
		for _, e := range h.out.Events() {
			h.recorded = append(h.recorded, Recorded{Frame: h.position, Event: e})
		}
	}
	return nil
}

// ParamInfo describes one parameter with its current value.
type ParamInfo struct {
	param.Info
	Value float64
	Text  string
}

// Params lists every parameter the plugin exposes.
func (h *Host) Params() ([]ParamInfo, error) {
	if h.ext.Params == nil {
		return nil, ErrUnsupported
	}
	count := h.ext.Params.Count()
	infos := make([]ParamInfo, 0, count)
	for i := 0; i < count; i++ {
		info, ok := h.ext.Params.Info(i)
		if !ok {
			continue
		}
		v, _ := h.ext.Params.Value(info.ID)
		text, _ := h.ext.Params.ValueToText(info.ID, v)
		infos = append(infos, ParamInfo{Info: info, Value: v, Text: text})
	}
	return infos, nil
}

// ParamByName finds a parameter id by its name or short name.
func (h *Host) ParamByName(name string) (uint32, bool) {
	infos, err := h.Params()
	if err != nil {
		return 0, false
	}
	for _, info := range infos {
		if info.Name == name || info.ShortName == name {
			return info.ID, true
		}
	}
	return 0, false
}

// SaveState writes the plugin state.
func (h *Host) SaveState(w io.Writer) error {
	if h.ext.State == nil {
		return ErrUnsupported
	}
	return h.ext.State.Save(w)
}

// LoadState restores the plugin state.
func (h *Host) LoadState(r io.Reader) error {
	if h.ext.State == nil {
		return ErrUnsupported
	}
	return h.ext.State.Load(r)
}

// TailSamples returns the plugin's tail, zero when it does not report one.
func (h *Host) TailSamples() uint32 {
	if h.ext.Tail == nil {
		return 0
	}
	return h.ext.Tail.TailSamples()
}

// Close stops the plugin and releases its handle.
func (h *Host) Close() error {
	if h.closed {
		return ErrClosed
	}
	h.closed = true
	h.p.StopProcessing()
	h.p.Deactivate()
	if err := plugin.Release(h.handle); err != nil {
		return fmt.Errorf("host: release: %w", err)
	}
	h.log.Debug("closed after %d frames", h.position)
	return nil
}
