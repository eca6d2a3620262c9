package echo

import (
	"bytes"
	"io"
	"math"
	"testing"

	"github.com/justyntemme/goecho/pkg/framework/debug"
	"github.com/justyntemme/goecho/pkg/framework/event"
	"github.com/justyntemme/goecho/pkg/framework/param"
	"github.com/justyntemme/goecho/pkg/framework/process"
	"github.com/justyntemme/goecho/pkg/framework/state"
	"github.com/justyntemme/goecho/pkg/plugin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testRate      = 48000.0
	testMaxFrames = 512
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Logger = debug.New(io.Discard, "", 0)
	return cfg
}

func newActiveSession(t *testing.T, cfg Config) *Session {
	t.Helper()
	s, err := New(cfg)
	require.NoError(t, err)
	require.NoError(t, s.Init())
	require.NoError(t, s.Activate(testRate, 1, testMaxFrames))
	t.Cleanup(s.Destroy)
	return s
}

type block struct {
	ctx *process.Context
	out *event.List
}

func newBlock(frames int) *block {
	b := &block{out: event.NewList(64)}
	b.ctx = &process.Context{
		Input:      [][]float32{make([]float32, frames), make([]float32, frames)},
		Output:     [][]float32{make([]float32, frames), make([]float32, frames)},
		Frames:     uint32(frames),
		SampleRate: testRate,
		OutEvents:  b.out,
	}
	return b
}

func (b *block) run(t *testing.T, s *Session, in event.InputEvents) {
	t.Helper()
	b.out.Clear()
	b.ctx.InEvents = in
	require.Equal(t, plugin.StatusContinue, s.Process(b.ctx))
}

func TestParameterTable(t *testing.T) {
	params := Parameters()
	require.Len(t, params, NumParams)

	for i, p := range params {
		assert.Equal(t, uint32(i), p.ID)
		assert.GreaterOrEqual(t, p.DefaultValue, p.Min, p.Name)
		assert.LessOrEqual(t, p.DefaultValue, p.Max, p.Name)
		assert.True(t, p.Info().Automatable(), p.Name)
	}

	assert.Equal(t, "Delay Time", params[ParamTime].Name)
	assert.Equal(t, 300.0, params[ParamTime].DefaultValue)
	assert.Equal(t, 10000.0, params[ParamToneFreq].DefaultValue)
	assert.Equal(t, 0.0, params[ParamModAmount].DefaultValue)
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, DefaultConfig().Validate())

	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"SmallFIFO", func(c *Config) { c.FIFOCapacity = 1 }},
		{"ZeroRamp", func(c *Config) { c.RampMs = 0 }},
		{"NaNRamp", func(c *Config) { c.RampMs = math.NaN() }},
		{"NegativeDepth", func(c *Config) { c.ModDepthMs = -1 }},
		{"ShortDelayLine", func(c *Config) { c.MaxDelayMs = 100 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidConfig)

			_, err := New(cfg)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestLifecycle(t *testing.T) {
	s, err := New(testConfig())
	require.NoError(t, err)

	b := newBlock(64)
	assert.Equal(t, plugin.StatusError, s.Process(b.ctx), "inactive session")
	assert.ErrorIs(t, s.StartProcessing(), ErrNotActive)

	require.NoError(t, s.Activate(testRate, 1, 64))
	require.NoError(t, s.StartProcessing())
	assert.Equal(t, plugin.StatusContinue, s.Process(b.ctx))

	t.Run("RejectsOversizedBlock", func(t *testing.T) {
		big := newBlock(65)
		assert.Equal(t, plugin.StatusError, s.Process(big.ctx))
	})

	t.Run("RejectsShortBuffers", func(t *testing.T) {
		short := newBlock(32)
		short.ctx.Frames = 48
		assert.Equal(t, plugin.StatusError, s.Process(short.ctx))
	})

	t.Run("RejectsMono", func(t *testing.T) {
		mono := newBlock(32)
		mono.ctx.Input = mono.ctx.Input[:1]
		assert.Equal(t, plugin.StatusError, s.Process(mono.ctx))
	})

	s.StopProcessing()
	s.Deactivate()
	assert.False(t, s.IsActive())
	assert.Equal(t, plugin.StatusError, s.Process(b.ctx))
	s.Destroy()
}

func TestImpulseResponse(t *testing.T) {
	tests := []struct {
		name     string
		feedback float64
	}{
		{"NoFeedback", 0},
		{"HalfFeedback", 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newActiveSession(t, testConfig())
			require.NoError(t, s.SetParam(ParamTime, 10))
			require.NoError(t, s.SetParam(ParamFeedback, tt.feedback))
			require.NoError(t, s.SetParam(ParamToneFreq, 20000))
			require.NoError(t, s.SetParam(ParamMix, 1))
			require.NoError(t, s.SetParam(ParamModAmount, 0))

			s.Flush(nil, nil)
			s.Reset()

			const total = 1536
			out := make([]float32, 0, total)
			b := newBlock(256)
			for len(out) < total {
				for ch := range b.ctx.Input {
					clear(b.ctx.Input[ch])
				}
				if len(out) == 0 {
					b.ctx.Input[0][0] = 1
					b.ctx.Input[1][0] = 1
				}
				b.run(t, s, nil)
				out = append(out, b.ctx.Output[0]...)
			}

			delay := int(10 * testRate / 1000)
			b0 := math.Sin(math.Pi * 20000 / testRate)
			first := (1 + tt.feedback) * b0

			assert.InDelta(t, 0, out[delay-1], 1e-6, "nothing before the first repeat")
			assert.InDelta(t, first, out[delay], 1e-4)

			if tt.feedback > 0 {
				// Later repeats decay by the feedback factor.
				ratio := float64(out[2*delay]) / float64(out[delay])
				assert.InDelta(t, tt.feedback*b0, ratio, 0.05)
			}
		})
	}
}

func TestControlEditsReachAudio(t *testing.T) {
	s := newActiveSession(t, testConfig())
	b := newBlock(128)

	require.NoError(t, s.SetParam(ParamMix, 0.8))
	v, ok := s.ParamValue(ParamMix)
	require.True(t, ok)
	assert.InDelta(t, 0.8, v, 1e-6)
	assert.Zero(t, s.PendingEdits())

	b.run(t, s, nil)

	events := b.out.Events()
	require.Len(t, events, 1)
	assert.Equal(t, event.ParamValue, events[0].Kind)
	assert.Equal(t, ParamMix, events[0].ParamID)
	assert.Equal(t, uint32(0), events[0].Time)
	assert.InDelta(t, 0.8, events[0].Value, 1e-6)

	assert.True(t, s.r.ramps[ParamMix].IsSmoothing())
	assert.InDelta(t, 0.8, s.r.ramps[ParamMix].Target(), 1e-6)

	t.Run("Clamped", func(t *testing.T) {
		require.NoError(t, s.SetParam(ParamFeedback, 3))
		v, _ := s.ParamValue(ParamFeedback)
		assert.Equal(t, 1.0, v)
	})

	t.Run("InvalidID", func(t *testing.T) {
		assert.ErrorIs(t, s.SetParam(99, 1), param.ErrInvalidID)
		assert.ErrorIs(t, s.BeginGesture(99), param.ErrInvalidID)
		assert.ErrorIs(t, s.EndGesture(99), param.ErrInvalidID)
		_, ok := s.ParamValue(99)
		assert.False(t, ok)
	})
}

func TestGestureBracketing(t *testing.T) {
	s := newActiveSession(t, testConfig())
	b := newBlock(64)

	require.NoError(t, s.BeginGesture(ParamTime))
	assert.True(t, s.IsGestureActive(ParamTime))
	require.NoError(t, s.SetParam(ParamTime, 100))
	require.NoError(t, s.SetParam(ParamTime, 200))
	require.NoError(t, s.EndGesture(ParamTime))
	assert.False(t, s.IsGestureActive(ParamTime))

	b.run(t, s, nil)

	kinds := make([]event.Kind, 0, 4)
	for _, e := range b.out.Events() {
		assert.Equal(t, ParamTime, e.ParamID)
		kinds = append(kinds, e.Kind)
	}
	assert.Equal(t, []event.Kind{event.GestureBegin, event.ParamValue, event.ParamValue, event.GestureEnd}, kinds)
	assert.Equal(t, 200.0, b.out.Events()[2].Value)
}

func TestFIFOOverflowRetry(t *testing.T) {
	cfg := testConfig()
	cfg.FIFOCapacity = 2
	s := newActiveSession(t, cfg)
	b := newBlock(64)

	require.NoError(t, s.BeginGesture(ParamMix))
	require.NoError(t, s.SetParam(ParamMix, 0.1))
	require.NoError(t, s.SetParam(ParamToneFreq, 1000))
	require.NoError(t, s.EndGesture(ParamMix))
	require.NoError(t, s.SetParam(ParamModAmount, 0.5))

	assert.Equal(t, 2, s.PendingEdits())
	assert.NotZero(t, s.Dropped())

	v, _ := s.ParamValue(ParamToneFreq)
	assert.Equal(t, 1000.0, v, "pending edits are visible on the control side")

	b.run(t, s, nil)
	assert.Equal(t, []event.Event{event.Begin(0, ParamMix), event.Value(0, ParamMix, float64(float32(0.1)))}, b.out.Events())

	// Two slots free: the two values go, the end marker waits.
	s.Tick()
	assert.Zero(t, s.PendingEdits())
	b.run(t, s, nil)
	assert.Equal(t, []event.Event{
		event.Value(0, ParamToneFreq, 1000),
		event.Value(0, ParamModAmount, 0.5),
	}, b.out.Events())

	s.Tick()
	b.run(t, s, nil)
	assert.Equal(t, []event.Event{event.End(0, ParamMix)}, b.out.Events())
}

func TestHostAutomation(t *testing.T) {
	s := newActiveSession(t, testConfig())
	b := newBlock(128)

	in := event.Slice{
		event.Value(10, ParamFeedback, 0.9),
		event.Value(40, ParamMix, 5),
		event.Value(50, 42, 1),
		event.Begin(60, ParamMix),
	}
	b.run(t, s, in)

	assert.Empty(t, b.out.Events(), "host events are not echoed back")
	assert.True(t, s.Tick())

	fb, _ := s.ParamValue(ParamFeedback)
	assert.InDelta(t, 0.9, fb, 1e-6)
	mix, _ := s.ParamValue(ParamMix)
	assert.Equal(t, 1.0, mix, "host values are clamped")

	assert.False(t, s.Tick(), "nothing new after collecting")

	t.Run("PendingEditWins", func(t *testing.T) {
		cfg := testConfig()
		cfg.FIFOCapacity = 2
		s := newActiveSession(t, cfg)
		require.NoError(t, s.SetParam(ParamTime, 10))
		require.NoError(t, s.SetParam(ParamFeedback, 0.1))
		require.NoError(t, s.SetParam(ParamMix, 0.2))
		require.Equal(t, 1, s.PendingEdits())

		b := newBlock(64)
		b.run(t, s, event.Slice{event.Value(0, ParamMix, 0.7)})

		mix, _ := s.ParamValue(ParamMix)
		assert.InDelta(t, 0.2, mix, 1e-6)

		s.Tick()
		mix, _ = s.ParamValue(ParamMix)
		assert.InDelta(t, 0.2, mix, 1e-6, "delivered edit replaces the older host value")

		b.run(t, s, nil)
		assert.InDelta(t, 0.2, s.r.ramps[ParamMix].Target(), 1e-6)
	})
}

func TestStateRoundTrip(t *testing.T) {
	s := newActiveSession(t, testConfig())
	b := newBlock(64)

	require.NoError(t, s.SetParam(ParamTime, 123.5))
	require.NoError(t, s.SetParam(ParamModFreq, 2.25))
	b.run(t, s, event.Slice{event.Value(0, ParamFeedback, 0.75)})

	var buf bytes.Buffer
	require.NoError(t, s.Save(&buf))
	require.Equal(t, NumParams*4, buf.Len())
	saved := buf.Bytes()

	values, err := state.NewManagerCount(NumParams).Decode(saved)
	require.NoError(t, err)
	assert.Equal(t, float32(123.5), values[ParamTime])
	assert.Equal(t, float32(0.75), values[ParamFeedback], "save adopts audio-side changes")

	other := newActiveSession(t, testConfig())
	require.NoError(t, other.Load(bytes.NewReader(saved)))
	assert.Zero(t, other.PendingEdits())
	assert.Equal(t, NumParams, other.fifo.Len(), "every value is queued")

	var again bytes.Buffer
	require.NoError(t, other.Save(&again))
	assert.Equal(t, saved, again.Bytes(), "bit-exact round trip")

	other.Tick()
	b.run(t, other, nil)
	assert.Equal(t, float32(123.5), other.r.ramps[ParamTime].Target())

	t.Run("Malformed", func(t *testing.T) {
		err := other.Load(bytes.NewReader(saved[:7]))
		assert.ErrorIs(t, err, state.ErrStateSize)

		v, _ := other.ParamValue(ParamTime)
		assert.Equal(t, 123.5, v, "prior values kept")
	})

	t.Run("Sanitized", func(t *testing.T) {
		bad := make([]float32, NumParams)
		for i := range bad {
			bad[i] = float32(math.NaN())
		}
		bad[ParamMix] = 7
		data, err := state.NewManagerCount(NumParams).Encode(bad)
		require.NoError(t, err)

		require.NoError(t, other.Load(bytes.NewReader(data)))
		v, _ := other.ParamValue(ParamTime)
		assert.Equal(t, 300.0, v)
		v, _ = other.ParamValue(ParamMix)
		assert.Equal(t, 1.0, v)
	})
}

func TestDenseAutomationStaysFinite(t *testing.T) {
	cfg := testConfig()
	cfg.RampMs = 5
	s := newActiveSession(t, cfg)
	require.NoError(t, s.SetParam(ParamFeedback, 0.95))
	require.NoError(t, s.SetParam(ParamModAmount, 1))

	analyzer := debug.NewAudioAnalyzer()
	b := newBlock(testMaxFrames)
	in := event.NewList(64)

	phase := 0.0
	for blockIndex := 0; blockIndex < 200; blockIndex++ {
		for i := range b.ctx.Input[0] {
			x := float32(0.5 * math.Sin(phase))
			phase += 2 * math.Pi * 440 / testRate
			b.ctx.Input[0][i] = x
			b.ctx.Input[1][i] = -x
		}

		in.Clear()
		for k := uint32(0); k < 32; k++ {
			id := k % uint32(NumParams)
			p, _ := s.Parameters().Get(id)
			frac := math.Mod(float64(blockIndex*32+int(k))*0.37, 1)
			require.NoError(t, in.Add(event.Value(k*16, id, p.Denormalize(frac))))
		}
		b.run(t, s, in)

		for ch := range b.ctx.Output {
			result := analyzer.Analyze(b.ctx.Output[ch])
			require.True(t, result.Finite(), "block %d channel %d: %s", blockIndex, ch, result)
		}
		if blockIndex%10 == 0 {
			s.Tick()
		}
	}
}

func TestExtensions(t *testing.T) {
	h, err := plugin.Create(ID)
	require.NoError(t, err)
	defer plugin.Release(h)

	p, err := plugin.Lookup(h)
	require.NoError(t, err)
	assert.True(t, p.Descriptor().HasFeature("delay"))

	ext := plugin.QueryExtensions(p)
	require.NotNil(t, ext.Params)
	require.NotNil(t, ext.State)
	require.NotNil(t, ext.AudioPorts)
	require.NotNil(t, ext.Tail)

	t.Run("Params", func(t *testing.T) {
		assert.Equal(t, NumParams, ext.Params.Count())

		info, ok := ext.Params.Info(int(ParamToneFreq))
		require.True(t, ok)
		assert.Equal(t, "Delay Tone", info.Name)
		assert.Equal(t, 500.0, info.Min)
		assert.Equal(t, 20000.0, info.Max)

		_, ok = ext.Params.Info(-1)
		assert.False(t, ok)
		_, ok = ext.Params.Info(NumParams)
		assert.False(t, ok)

		text, ok := ext.Params.ValueToText(ParamTime, 250)
		require.True(t, ok)
		assert.Equal(t, "250.0 ms", text)

		v, ok := ext.Params.TextToValue(ParamToneFreq, "2 kHz")
		require.True(t, ok)
		assert.Equal(t, 2000.0, v)

		_, ok = ext.Params.TextToValue(ParamToneFreq, "loud")
		assert.False(t, ok)
	})

	t.Run("FlushAppliesEvents", func(t *testing.T) {
		out := event.NewList(8)
		ext.Params.Flush(event.Slice{event.Value(0, ParamMix, 0.6)}, out)
		v, ok := ext.Params.Value(ParamMix)
		require.True(t, ok)
		assert.InDelta(t, 0.6, v, 1e-6)
		assert.Zero(t, out.Len())
	})

	t.Run("AudioPorts", func(t *testing.T) {
		in, ok := ext.AudioPorts.Get(0, 0)
		require.True(t, ok)
		assert.Equal(t, "Audio Input", in.Name)
		assert.Equal(t, uint32(2), uint32(in.ChannelCount))
	})

	t.Run("Tail", func(t *testing.T) {
		require.NoError(t, p.Activate(testRate, 1, 256))
		defer p.Deactivate()
		assert.Equal(t, uint32(2000*testRate/1000), ext.Tail.TailSamples())
	})
}
