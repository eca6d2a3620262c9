//go:build !headless

package main

import (
	"context"
	"fmt"

	"gitlab.com/gomidi/midi"
	"gitlab.com/gomidi/rtmididrv"

	"github.com/justyntemme/goecho/pkg/framework/debug"
)

// listenMIDI forwards control changes and note-ons from MIDI input port
// until ctx ends. A negative port disables MIDI.
func listenMIDI(ctx context.Context, port int, inputs chan<- input, log *debug.Logger) error {
	if port < 0 {
		return nil
	}
	drv, err := rtmididrv.New()
	if err != nil {
		return fmt.Errorf("midi: driver: %w", err)
	}
	defer func() {
		if err := drv.Close(); err != nil {
			log.Warn("midi: close driver: %v", err)
		}
	}()

	ins, err := drv.Ins()
	if err != nil {
		return fmt.Errorf("midi: list inputs: %w", err)
	}
	if port >= len(ins) {
		log.Warn("midi: input %d not found (%d available)", port, len(ins))
		return nil
	}
	in := ins[port]
	if err := open(in, inputs); err != nil {
		return err
	}
	log.Info("midi: listening on %s", in.String())
	defer func() {
		if err := in.StopListening(); err != nil {
			log.Warn("midi: stop listening: %v", err)
		}
		if err := in.Close(); err != nil {
			log.Warn("midi: close %s: %v", in.String(), err)
		}
	}()

	<-ctx.Done()
	return nil
}

func open(in midi.In, inputs chan<- input) error {
	if err := in.Open(); err != nil {
		return fmt.Errorf("midi: open %s: %w", in.String(), err)
	}
	err := in.SetListener(func(data []byte, deltaMicroseconds int64) {
		msg, ok := parseMIDI(data)
		if !ok {
			return
		}
		select {
		case inputs <- msg:
		default:
			// The control loop is behind; a later controller value follows.
		}
	})
	if err != nil {
		in.Close()
		return fmt.Errorf("midi: listen %s: %w", in.String(), err)
	}
	return nil
}
