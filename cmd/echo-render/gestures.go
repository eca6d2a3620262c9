package main

import (
	"fmt"
	"math"

	"github.com/justyntemme/goecho/pkg/echo"
)

// gesturePlayer replays control-surface drags between render blocks, the
// way a UI thread would: begin, one value per block, end.
type gesturePlayer struct {
	s      *echo.Session
	queue  []*drag
	active []*drag
}

type drag struct {
	frame  uint64
	id     uint32
	values []float64
	next   int
}

func newGesturePlayer(s *echo.Session, r resolver, gestures []Gesture, sampleRate float64) (*gesturePlayer, error) {
	g := &gesturePlayer{s: s}
	for i, gs := range gestures {
		id, err := r.id(gs.Param)
		if err != nil {
			return nil, fmt.Errorf("gestures[%d]: %w", i, err)
		}
		g.queue = append(g.queue, &drag{
			frame:  uint64(math.Round(gs.At * sampleRate)),
			id:     id,
			values: gs.Values,
		})
	}
	return g, nil
}

// step starts due drags and advances the running ones by one value.
// A drag whose values are exhausted ends on the following step.
func (g *gesturePlayer) step(position uint64) error {
	for len(g.queue) > 0 && g.queue[0].frame <= position {
		d := g.queue[0]
		g.queue = g.queue[1:]
		if err := g.s.BeginGesture(d.id); err != nil {
			return err
		}
		g.active = append(g.active, d)
	}

	kept := g.active[:0]
	for _, d := range g.active {
		if d.next < len(d.values) {
			if err := g.s.SetParam(d.id, d.values[d.next]); err != nil {
				return err
			}
			d.next++
			kept = append(kept, d)
			continue
		}
		if err := g.s.EndGesture(d.id); err != nil {
			return err
		}
	}
	g.active = kept
	return nil
}

// finish ends every drag still in progress.
func (g *gesturePlayer) finish() error {
	for _, d := range g.active {
		if err := g.s.EndGesture(d.id); err != nil {
			return err
		}
	}
	g.active = nil
	return nil
}

// done reports whether every drag has started and ended.
func (g *gesturePlayer) done() bool {
	return len(g.queue) == 0 && len(g.active) == 0
}
