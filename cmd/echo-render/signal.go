package main

import (
	"fmt"
	"math"
	"math/rand"
)

// generator fills stereo test input block by block.
type generator interface {
	Fill(left, right []float32)
}

func newGenerator(kind string, sampleRate float64, seed int64) (generator, error) {
	switch kind {
	case "impulse":
		// One click every second
		return &impulseTrain{period: int(sampleRate)}, nil
	case "noise":
		// 50 ms bursts every 750 ms
		return &noiseBursts{
			rng:    rand.New(rand.NewSource(seed)),
			on:     int(0.05 * sampleRate),
			period: int(0.75 * sampleRate),
		}, nil
	case "sine":
		return &sine{step: 2 * math.Pi * 440 / sampleRate}, nil
	case "silence":
		return silence{}, nil
	default:
		return nil, fmt.Errorf("unknown signal %q (impulse, noise, sine, silence)", kind)
	}
}

type impulseTrain struct {
	period int
	pos    int
}

func (g *impulseTrain) Fill(left, right []float32) {
	for i := range left {
		var v float32
		if g.pos == 0 {
			v = 1
		}
		left[i], right[i] = v, v
		g.pos++
		if g.pos >= g.period {
			g.pos = 0
		}
	}
}

type noiseBursts struct {
	rng        *rand.Rand
	on, period int
	pos        int
}

func (g *noiseBursts) Fill(left, right []float32) {
	for i := range left {
		var l, r float32
		if g.pos < g.on {
			l = float32(g.rng.Float64()*2-1) * 0.5
			r = float32(g.rng.Float64()*2-1) * 0.5
		}
		left[i], right[i] = l, r
		g.pos++
		if g.pos >= g.period {
			g.pos = 0
		}
	}
}

type sine struct {
	phase, step float64
}

func (g *sine) Fill(left, right []float32) {
	for i := range left {
		v := float32(0.5 * math.Sin(g.phase))
		left[i], right[i] = v, v
		g.phase += g.step
		if g.phase > 2*math.Pi {
			g.phase -= 2 * math.Pi
		}
	}
}

type silence struct{}

func (silence) Fill(left, right []float32) {
	clear(left)
	clear(right)
}
