// Command echo-live plays the echo plugin on the default audio device and
// edits its parameters from the keyboard or a MIDI controller.
//
// Keys: 1-6 select a parameter, +/- adjust it, r restores its default,
// space fires a noise burst, q quits. MIDI CC 20-25 set the parameters
// directly and any note-on fires a burst.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/justyntemme/goecho/pkg/echo"
	"github.com/justyntemme/goecho/pkg/framework/debug"
	"github.com/justyntemme/goecho/pkg/host"
	"github.com/justyntemme/goecho/pkg/plugin"
)

// output is a running audio device.
type output interface {
	Err() error
	Close() error
}

type options struct {
	rate     float64
	block    int
	latency  time.Duration
	midiPort int
	pulse    float64
	state    string
	logFile  string
	logLevel string
}

func parseFlags(args []string) (options, error) {
	var opts options
	fs := flag.NewFlagSet("echo-live", flag.ContinueOnError)
	fs.Float64Var(&opts.rate, "rate", 48000, "sample rate")
	fs.IntVar(&opts.block, "block", 256, "render block size")
	fs.DurationVar(&opts.latency, "latency", 40*time.Millisecond, "audio device buffer")
	fs.IntVar(&opts.midiPort, "midi", -1, "MIDI input port, -1 disables")
	fs.Float64Var(&opts.pulse, "pulse", 1.5, "seconds between automatic noise bursts, 0 disables")
	fs.StringVar(&opts.state, "state", "", "state file loaded at start and saved on exit")
	fs.StringVar(&opts.logFile, "log-file", "", "write the log here instead of stderr")
	fs.StringVar(&opts.logLevel, "log", "warn", "log level: debug, info, warn, error, off")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if opts.rate <= 0 || opts.block <= 0 || opts.latency <= 0 || opts.pulse < 0 {
		return opts, fmt.Errorf("rate, block and latency must be positive and pulse not negative")
	}
	return opts, nil
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}

	log := debug.New(os.Stderr, "echo-live", debug.FlagLevel|debug.FlagPrefix)
	if opts.logFile != "" {
		fileLog, closer, err := debug.NewFileLogger(opts.logFile, "echo-live", debug.DefaultFlags)
		if err != nil {
			log.Fatal("%v", err)
		}
		defer closer.Close()
		log = fileLog
	}
	level, err := debug.ParseLevel(opts.logLevel)
	if err != nil {
		log.Fatal("%v", err)
	}
	log.SetLevel(level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts, log); err != nil {
		log.Error("%v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options, log *debug.Logger) error {
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
	hopts.Logger = log

	handle := plugin.Register(session)
	h, err := host.New(handle, hopts)
	if err != nil {
		plugin.Release(handle)
		return err
	}
	defer h.Close()

	if opts.state != "" {
		if err := loadState(h, opts.state); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}

	src := newStream(h, opts.block, opts.rate, opts.pulse, time.Now().UnixNano())
	out, err := openOutput(int(opts.rate), src, opts.latency)
	if err != nil {
		return err
	}

	restore := rawTerminal(log)
	inputs := make(chan input, 64)
	go readKeys(os.Stdin, inputs)

	c := newController(session, h, src, os.Stdout)
	c.deviceErr = out.Err

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return listenMIDI(gctx, opts.midiPort, inputs, log) })
	g.Go(func() error { return c.run(gctx, inputs) })
	err = g.Wait()

	restore()
	fmt.Fprintln(os.Stdout)

	// The device goroutine must stop before the plugin is deactivated.
	if cerr := out.Close(); cerr != nil {
		log.Warn("audio: close: %v", cerr)
	}
	log.Info("played %.1f s", float64(src.Frames())/opts.rate)

	if opts.state != "" {
		if serr := saveState(h, opts.state); serr != nil {
			return serr
		}
	}
	if errors.Is(err, errQuit) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
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

var _ io.Reader = (*stream)(nil)
