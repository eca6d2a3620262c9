//go:build !headless

package main

import (
	"fmt"
	"io"
	"time"

	"github.com/ebitengine/oto/v3"
)

type otoOutput struct {
	ctx    *oto.Context
	player *oto.Player
}

// openOutput starts playing src, interleaved float32 stereo, on the default
// audio device.
func openOutput(sampleRate int, src io.Reader, latency time.Duration) (output, error) {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
		BufferSize:   latency,
	})
	if err != nil {
		return nil, fmt.Errorf("audio: %w", err)
	}
	<-ready

	player := ctx.NewPlayer(src)
	player.Play()
	return &otoOutput{ctx: ctx, player: player}, nil
}

func (o *otoOutput) Err() error {
	return o.player.Err()
}

func (o *otoOutput) Close() error {
	return o.player.Close()
}
