package echo

import (
	"math"

	"github.com/justyntemme/goecho/pkg/dsp/delay"
	"github.com/justyntemme/goecho/pkg/dsp/filter"
	"github.com/justyntemme/goecho/pkg/dsp/modulation"
	"github.com/justyntemme/goecho/pkg/framework/event"
	"github.com/justyntemme/goecho/pkg/framework/param"
	"github.com/justyntemme/goecho/pkg/framework/process"
)

// renderer holds everything the audio goroutine owns. It consumes drained
// FIFO events and receives the spans of each block from process.Walk.
type renderer struct {
	mirror *param.Mirror
	params *param.Registry

	ramps [NumParams]param.RampedValue

	modDepthMs float64
	maxDelayMs float64
	sampleRate float64

	echo   *delay.Echo
	tone   *filter.Onepole
	lfo    *modulation.Quadrature
	lfoCos []float32
	lfoSin []float32

	// Current block
	in     [][]float32
	out    [][]float32
	events event.OutputEvents
}

func (r *renderer) init(s *Session) {
	r.mirror = s.mirror
	r.params = s.Parameters()
	r.modDepthMs = s.cfg.ModDepthMs
	r.maxDelayMs = s.cfg.MaxDelayMs
	for id := range r.ramps {
		r.ramps[id].SetDuration(s.cfg.RampMs)
		r.ramps[id].Init(r.mirror.Audio(uint32(id)), 1)
	}
}

func (r *renderer) allocate(sampleRate float64, maxFrames int) {
	r.sampleRate = sampleRate
	r.echo = delay.NewEcho(r.maxDelayMs+r.modDepthMs, sampleRate)
	r.tone = filter.NewOnepole(2)
	r.lfo = modulation.NewQuadrature()
	r.lfoCos = make([]float32, maxFrames)
	r.lfoSin = make([]float32, maxFrames)
	for id := range r.ramps {
		r.ramps[id].Init(r.mirror.Audio(uint32(id)), maxFrames)
	}
	r.syncCoefficients()
}

func (r *renderer) release() {
	r.sampleRate = 0
	r.echo = nil
	r.tone = nil
	r.lfo = nil
	r.lfoCos = nil
	r.lfoSin = nil
	for id := range r.ramps {
		r.ramps[id].Init(r.ramps[id].Target(), 1)
	}
}

func (r *renderer) reset() {
	r.echo.Reset()
	r.tone.Reset()
	r.lfo.Reset()
	for id := range r.ramps {
		r.ramps[id].Reset(r.ramps[id].Target())
	}
	r.syncCoefficients()
}

// syncCoefficients recomputes filter and LFO coefficients from the current ramp values.
func (r *renderer) syncCoefficients() {
	r.tone.SetCutoff(float64(r.ramps[ParamToneFreq].Current()), r.sampleRate)
	r.lfo.SetFrequency(float64(r.ramps[ParamModFreq].Current()), r.sampleRate)
}

func (r *renderer) begin(ctx *process.Context) {
	r.in = ctx.Input
	r.out = ctx.Output
	r.events = ctx.OutEvents
}

func (r *renderer) end() {
	r.in = nil
	r.out = nil
	r.events = nil
}

func (r *renderer) emit(e event.Event) {
	if r.events != nil {
		r.events.TryPush(e)
	}
}

// set stores an audio value and retargets its ramp. id must be valid.
func (r *renderer) set(id uint32, v float32, publish bool) {
	r.mirror.SetAudio(id, v, publish)
	r.ramps[id].Retarget(v, r.sampleRate)
}

// ConsumeEvent applies a control-side edit and forwards it to the host at
// the start of the block.
func (r *renderer) ConsumeEvent(e event.Event) {
	if e.ParamID >= uint32(NumParams) {
		return
	}
	switch e.Kind {
	case event.ParamValue:
		r.set(e.ParamID, float32(e.Value), false)
		r.emit(event.Value(0, e.ParamID, e.Value))
	case event.GestureBegin:
		r.emit(event.Begin(0, e.ParamID))
	case event.GestureEnd:
		r.emit(event.End(0, e.ParamID))
	}
}

// ApplyEvent applies a host automation event.
func (r *renderer) ApplyEvent(e event.Event) {
	if e.Kind != event.ParamValue || math.IsNaN(e.Value) {
		return
	}
	p, ok := r.params.Get(e.ParamID)
	if !ok {
		return
	}
	r.set(e.ParamID, float32(p.Clamp(e.Value)), true)
}

// RenderSpan renders frames [start, end) of the current block.
func (r *renderer) RenderSpan(start, end uint32) {
	n := int(end - start)
	sr := r.sampleRate

	toneActive := r.ramps[ParamToneFreq].IsSmoothing()
	modActive := r.ramps[ParamModFreq].IsSmoothing()

	times := r.ramps[ParamTime].FillBuffer(n)
	feedback := r.ramps[ParamFeedback].FillBuffer(n)
	tone := r.ramps[ParamToneFreq].FillBuffer(n)
	mix := r.ramps[ParamMix].FillBuffer(n)
	modFreq := r.ramps[ParamModFreq].FillBuffer(n)
	modAmount := r.ramps[ParamModAmount].FillBuffer(n)

	cosBuf := r.lfoCos[:n]
	sinBuf := r.lfoSin[:n]
	if modActive {
		for i := range cosBuf {
			r.lfo.SetFrequency(float64(modFreq[i]), sr)
			cosBuf[i], sinBuf[i] = r.lfo.Next()
		}
	} else {
		r.lfo.Fill(cosBuf, sinBuf)
	}

	msToSamples := sr * 0.001
	depth := r.modDepthMs * msToSamples * 0.5

	inL, inR := r.in[0][start:end], r.in[1][start:end]
	outL, outR := r.out[0][start:end], r.out[1][start:end]

	for i := 0; i < n; i++ {
		if toneActive {
			r.tone.SetCutoff(float64(tone[i]), sr)
		}

		// Offset in [0, depth] so modulation never shortens the delay
		base := float64(times[i]) * msToSamples
		mod := depth * float64(modAmount[i])
		delayL := base + mod*(1+float64(cosBuf[i]))
		delayR := base + mod*(1+float64(sinBuf[i]))

		wetL, wetR := r.echo.Read(delayL, delayR)
		wetL = r.tone.Tick(wetL, 0)
		wetR = r.tone.Tick(wetR, 1)

		dryL, dryR := inL[i], inR[i]
		m := mix[i]
		outL[i] = dryL + m*(wetL-dryL)
		outR[i] = dryR + m*(wetR-dryR)

		r.echo.Feed(dryL, dryR, wetL, wetR, feedback[i])
	}
}
