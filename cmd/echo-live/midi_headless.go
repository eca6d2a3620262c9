//go:build headless

package main

import (
	"context"

	"github.com/justyntemme/goecho/pkg/framework/debug"
)

// listenMIDI is unavailable in headless builds.
func listenMIDI(ctx context.Context, port int, inputs chan<- input, log *debug.Logger) error {
	if port >= 0 {
		log.Warn("midi: not available in headless builds")
	}
	return nil
}
