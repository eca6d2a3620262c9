// Command echo-render runs the echo plugin offline over a generated test
// signal and writes the result as a 32-bit float WAV file.
//
// Usage:
//
//	echo-render -out echo.wav -signal impulse -seconds 4 -automation moves.yaml
//	echo-render -set "Delay Time=420" -set "Tone=3 kHz" -state-out preset.bin
package main

import (
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/justyntemme/goecho/pkg/dsp/analysis"
	"github.com/justyntemme/goecho/pkg/echo"
	"github.com/justyntemme/goecho/pkg/framework/debug"
	"github.com/justyntemme/goecho/pkg/framework/event"
	"github.com/justyntemme/goecho/pkg/host"
	"github.com/justyntemme/goecho/pkg/plugin"
)

type options struct {
	out        string
	automation string
	stateIn    string
	stateOut   string
	signal     string
	logLevel   string
	seconds    float64
	rate       float64
	block      int
	seed       int64
	profile    bool
	events     bool
	sets       setFlags
}

// setFlags collects repeated -set name=value flags.
type setFlags []string

func (s *setFlags) String() string { return strings.Join(*s, ", ") }

func (s *setFlags) Set(v string) error {
	if !strings.Contains(v, "=") {
		return fmt.Errorf("expected name=value, got %q", v)
	}
	*s = append(*s, v)
	return nil
}

func parseFlags(args []string) (options, error) {
	var opts options
	fs := flag.NewFlagSet("echo-render", flag.ContinueOnError)
	fs.StringVar(&opts.out, "out", "echo.wav", "output WAV file")
	fs.StringVar(&opts.automation, "automation", "", "YAML automation script")
	fs.StringVar(&opts.stateIn, "state-in", "", "load plugin state before rendering")
	fs.StringVar(&opts.stateOut, "state-out", "", "save plugin state after rendering")
	fs.StringVar(&opts.signal, "signal", "impulse", "test signal: impulse, noise, sine, silence")
	fs.StringVar(&opts.logLevel, "log", "info", "log level: debug, info, warn, error, off")
	fs.Float64Var(&opts.seconds, "seconds", 4, "length of the input signal")
	fs.Float64Var(&opts.rate, "rate", 48000, "sample rate")
	fs.IntVar(&opts.block, "block", 256, "render block size")
	fs.Int64Var(&opts.seed, "seed", 1, "noise seed")
	fs.BoolVar(&opts.profile, "profile", false, "print render timing")
	fs.BoolVar(&opts.events, "events", false, "print every outbound automation event")
	fs.Var(&opts.sets, "set", "initial parameter value as name=value (repeatable)")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}

	if opts.seconds <= 0 || opts.rate <= 0 || opts.block <= 0 {
		return opts, fmt.Errorf("seconds, rate and block must be positive")
	}
	return opts, nil
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}

	log := debug.New(os.Stderr, "echo-render", debug.FlagLevel|debug.FlagPrefix)
	level, err := debug.ParseLevel(opts.logLevel)
	if err != nil {
		log.Fatal("%v", err)
	}
	log.SetLevel(level)

	if err := run(opts, log, os.Stdout); err != nil {
		log.Fatal("%v", err)
	}
}

func run(opts options, log *debug.Logger, report io.Writer) error {
	cfg := echo.DefaultConfig()
	cfg.Logger = log
	session, err := echo.New(cfg)
	if err != nil {
		return err
	}
	if err := session.Init(); err != nil {
		return err
	}

	hopts := host.DefaultOptions()
	hopts.SampleRate = opts.rate
	hopts.MaxFrames = uint32(opts.block)
	hopts.Record = true
	hopts.Logger = log
	if opts.profile {
		hopts.Profiler = debug.NewRenderProfiler(opts.rate)
	}

	handle := plugin.Register(session)
	h, err := host.New(handle, hopts)
	if err != nil {
		plugin.Release(handle)
		return err
	}
	defer h.Close()

	if opts.stateIn != "" {
		if err := loadState(h, opts.stateIn); err != nil {
			return err
		}
		log.Info("loaded state from %s", opts.stateIn)
	}

	script := &Script{}
	if opts.automation != "" {
		if script, err = LoadScript(opts.automation); err != nil {
			return err
		}
	}
	if err := script.applySets(opts.sets); err != nil {
		return err
	}

	res := resolver{h: h}
	initial, err := script.Initial(res)
	if err != nil {
		return err
	}
	if err := h.Flush(initial...); err != nil {
		return err
	}
	points, err := script.Points(res, opts.rate)
	if err != nil {
		return err
	}
	h.Automate(points...)

	gestures, err := newGesturePlayer(session, res, script.Gestures, opts.rate)
	if err != nil {
		return err
	}

	gen, err := newGenerator(opts.signal, opts.rate, opts.seed)
	if err != nil {
		return err
	}

	rendered, err := render(h, gen, gestures, opts)
	if err != nil {
		return err
	}

	if err := saveWAV(opts.out, int(opts.rate), rendered); err != nil {
		return err
	}
	log.Info("wrote %s: %.2f s", opts.out, float64(len(rendered)/2)/opts.rate)

	if opts.stateOut != "" {
		if err := saveState(h, opts.stateOut); err != nil {
			return err
		}
		log.Info("saved state to %s", opts.stateOut)
	}

	return writeReport(report, h, session, rendered, hopts.Profiler, opts.events)
}

// render runs the input signal plus the plugin tail through the host.
func render(h *host.Host, gen generator, gestures *gesturePlayer, opts options) ([]float32, error) {
	block := opts.block
	inputFrames := int(math.Round(opts.seconds * opts.rate))
	tail := int(min(h.TailSamples(), uint32(10*opts.rate)))
	total := inputFrames + tail

	in := [][]float32{make([]float32, block), make([]float32, block)}
	out := [][]float32{make([]float32, block), make([]float32, block)}
	rendered := make([]float32, 0, total*2)

	// Control-thread tick every ~30 ms of audio
	tickEvery := max(1, int(math.Round(0.03*opts.rate/float64(block))))

	var silent generator = silence{}
	for n, blockIndex := 0, 0; n < total; blockIndex++ {
		frames := min(block, total-n)
		if n < inputFrames {
			gen.Fill(in[0][:frames], in[1][:frames])
		} else {
			silent.Fill(in[0][:frames], in[1][:frames])
		}

		if err := gestures.step(h.Position()); err != nil {
			return nil, err
		}
		if _, err := h.Process(in, out, uint32(frames)); err != nil {
			return nil, err
		}
		rendered = interleave(rendered, out, frames)
		n += frames

		if blockIndex%tickEvery == 0 {
			h.Tick()
		}
	}
	if err := gestures.finish(); err != nil {
		return nil, err
	}
	h.Tick()
	return rendered, nil
}

func (s *Script) applySets(sets []string) error {
	if len(sets) == 0 {
		return nil
	}
	if s.Params == nil {
		s.Params = make(map[string]Value, len(sets))
	}
	for _, kv := range sets {
		name, text, _ := strings.Cut(kv, "=")
		name, text = strings.TrimSpace(name), strings.TrimSpace(text)
		if name == "" {
			return fmt.Errorf("-set %q: empty name", kv)
		}
		if f, err := strconv.ParseFloat(text, 64); err == nil {
			s.Params[name] = Value{Number: f}
		} else {
			s.Params[name] = Value{Text: text, IsText: true}
		}
	}
	return nil
}

func loadState(h *host.Host, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return h.LoadState(f)
}

func saveState(h *host.Host, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := h.SaveState(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func saveWAV(path string, sampleRate int, interleaved []float32) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := writeWAV(f, sampleRate, 2, interleaved); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeReport(w io.Writer, h *host.Host, s *echo.Session, rendered []float32, prof *debug.RenderProfiler, listEvents bool) error {
	params, err := h.Params()
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "Parameters:")
	for _, p := range params {
		fmt.Fprintf(w, "  %-12s %s\n", p.Name, p.Text)
	}

	rec := h.Recorded()
	counts := map[event.Kind]int{}
	for _, r := range rec {
		counts[r.Kind]++
	}
	fmt.Fprintf(w, "Outbound automation: %d values, %d gesture begins, %d gesture ends\n",
		counts[event.ParamValue], counts[event.GestureBegin], counts[event.GestureEnd])
	if listEvents {
		for _, r := range rec {
			fmt.Fprintf(w, "  %8d  %-13s param %d  %g\n", r.Frame, r.Kind, r.ParamID, r.Value)
		}
	}
	if d := s.Dropped(); d > 0 {
		fmt.Fprintf(w, "Control edits deferred by a full queue: %d\n", d)
	}

	result := debug.NewAudioAnalyzer().Analyze(rendered)
	fmt.Fprintf(w, "Output: %s\n", result)

	stereo := analysis.NewStereoMeter()
	stereo.ProcessInterleaved(rendered)
	fmt.Fprintf(w, "Stereo: %s\n", stereo)

	if prof != nil {
		fmt.Fprint(w, prof.AudioReport())
	}
	if !result.Finite() {
		return fmt.Errorf("output contains %d NaN and %d Inf samples", result.NaNCount, result.InfCount)
	}
	return nil
}
