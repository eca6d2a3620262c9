// Package echo implements the stereo echo plugin.
//
// A Session owns all state of one plugin instance. Control-thread methods
// (SetParam, BeginGesture, EndGesture, Tick, ParamValue, Save, Load) must be
// called from one goroutine. Process runs on the audio goroutine. The two
// sides share only the event FIFO and the published parameter cells.
package echo

import (
	"fmt"
	"math"

	"github.com/justyntemme/goecho/pkg/framework/bus"
	"github.com/justyntemme/goecho/pkg/framework/debug"
	"github.com/justyntemme/goecho/pkg/framework/event"
	"github.com/justyntemme/goecho/pkg/framework/param"
	fwplugin "github.com/justyntemme/goecho/pkg/framework/plugin"
	"github.com/justyntemme/goecho/pkg/framework/process"
	"github.com/justyntemme/goecho/pkg/plugin"
)

// ErrNotActive is returned by operations that need an activated session.
var ErrNotActive = fwplugin.ErrNotActive

// Session is one echo plugin instance
type Session struct {
	*fwplugin.Base

	cfg    Config
	log    *debug.Logger
	fifo   *event.FIFO
	mirror *param.Mirror

	// Audio side
	r renderer

	// Control side
	gestures [NumParams]gesture
	deliver  func(id uint32, v float32) bool
	scratch  []float32

	params    *paramsExtension
	destroyed bool
}

// gesture tracks gesture markers that could not be queued yet.
type gesture struct {
	active       bool
	beginPending bool
	endPending   bool
}

// New creates a session. It is not active until Activate succeeds.
func New(cfg Config) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	base, err := fwplugin.NewBase(Descriptor,
		bus.NewStereoConfiguration("Audio Input", "Audio Output"),
		Parameters()...)
	if err != nil {
		return nil, err
	}

	log := cfg.Logger
	if log == nil {
		log = debug.Default()
	}

	s := &Session{
		Base:   base,
		cfg:    cfg,
		log:    log.With("echo"),
		fifo:   event.NewFIFO(cfg.FIFOCapacity),
		mirror: param.NewMirror(base.Parameters().Defaults()),
	}
	s.deliver = s.deliverValue
	s.r.init(s)
	s.params = &paramsExtension{s: s}
	return s, nil
}

// NewPlugin creates a session with the default configuration.
func NewPlugin() plugin.Plugin {
	s, err := New(DefaultConfig())
	if err != nil {
		// DefaultConfig always validates
		panic(err)
	}
	return s
}

// Factory creates echo plugins for plugin.Create.
var Factory = plugin.FactoryFunc{
	Info:        Descriptor,
	Constructor: NewPlugin,
}

func init() {
	if err := plugin.RegisterFactory(Factory); err != nil {
		panic(err)
	}
}

// Config returns the configuration the session was built with.
func (s *Session) Config() Config { return s.cfg }

// Descriptor returns plugin metadata
func (s *Session) Descriptor() fwplugin.Info { return s.Info }

// Init is called once after creation
func (s *Session) Init() error {
	s.log.Debug("init: %d parameters, fifo %d slots", s.Parameters().Count(), s.fifo.Cap())
	return nil
}

// Destroy deactivates and drops all buffers
func (s *Session) Destroy() {
	if s.destroyed {
		return
	}
	if s.IsActive() {
		s.Deactivate()
	}
	s.destroyed = true
	s.log.Debug("destroyed")
}

// Activate allocates the delay line and scratch buffers for the configuration.
func (s *Session) Activate(sampleRate float64, minFrames, maxFrames uint32) error {
	if err := s.Base.Activate(sampleRate, minFrames, maxFrames); err != nil {
		return err
	}
	s.r.allocate(sampleRate, int(maxFrames))
	s.log.Info("activated: %.0f Hz, %d-%d frames, delay line %d samples",
		sampleRate, minFrames, maxFrames, s.r.echo.Size())
	return nil
}

// Deactivate frees processing resources.
func (s *Session) Deactivate() {
	if !s.IsActive() {
		return
	}
	s.Base.Deactivate()
	s.r.release()
	s.log.Debug("deactivated")
}

// StartProcessing enters the processing state.
func (s *Session) StartProcessing() error {
	if err := s.Base.StartProcessing(); err != nil {
		return fmt.Errorf("echo: start processing: %w", err)
	}
	return nil
}

// Reset clears the delay line, filter and LFO and ends any running ramp.
func (s *Session) Reset() {
	if !s.IsActive() {
		return
	}
	s.r.reset()
}

// Process renders one block. The render path does not allocate, lock or log.
func (s *Session) Process(ctx *process.Context) plugin.Status {
	if !s.IsActive() || ctx == nil {
		return plugin.StatusError
	}
	if ctx.Frames > s.MaxFrames() || ctx.Validate(2) != nil {
		return plugin.StatusError
	}

	s.r.begin(ctx)
	s.fifo.Drain(&s.r)
	process.Walk(ctx.Frames, ctx.InEvents, &s.r)
	s.mirror.Publish()
	s.r.end()

	return plugin.StatusContinue
}

// OnMainThread runs the periodic control-thread work.
func (s *Session) OnMainThread() {
	s.Tick()
}

// Extension returns the capability registered under id, or nil.
func (s *Session) Extension(id string) any {
	switch id {
	case plugin.ExtensionParams:
		return s.params
	case plugin.ExtensionState:
		return s
	case plugin.ExtensionAudioPorts:
		return s.Buses()
	case plugin.ExtensionTail:
		return s
	default:
		return nil
	}
}

// TailSamples returns how long the echo keeps ringing once the input stops.
func (s *Session) TailSamples() uint32 {
	fb, _ := s.ParamValue(ParamFeedback)
	if fb >= 1 {
		return math.MaxUint32
	}
	sr := s.SampleRate()
	if sr <= 0 {
		return 0
	}
	return uint32(math.Ceil(s.cfg.MaxDelayMs * sr / 1000))
}

// Dropped returns the number of control edits the FIFO rejected so far.
func (s *Session) Dropped() uint64 {
	return s.fifo.Dropped()
}

// sanitize clamps v into the parameter range, replacing NaN with the default.
func (s *Session) sanitize(id uint32, v float64) (float64, bool) {
	p, ok := s.Parameters().Get(id)
	if !ok {
		return 0, false
	}
	if math.IsNaN(v) {
		return p.DefaultValue, true
	}
	return p.Clamp(v), true
}

var (
	_ plugin.Plugin        = (*Session)(nil)
	_ plugin.TailExtension = (*Session)(nil)
)
