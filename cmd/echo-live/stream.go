package main

import (
	"encoding/binary"
	"math"
	"math/rand"
	"sync/atomic"

	"github.com/justyntemme/goecho/pkg/host"
)

// stream renders the plugin block by block for the audio device. Read runs
// on the device goroutine; trigger may be called from anywhere.
type stream struct {
	h       *host.Host
	frames  int
	in, out [][]float32
	buf     []byte
	pending []byte

	rng        *rand.Rand
	burst      int // frames per noise burst
	burstLeft  int
	pulse      int // frames between automatic bursts, 0 disables
	sincePulse int

	triggered atomic.Bool
	rendered  atomic.Uint64
}

func newStream(h *host.Host, frames int, sampleRate, pulseSeconds float64, seed int64) *stream {
	return &stream{
		h:      h,
		frames: frames,
		in:     [][]float32{make([]float32, frames), make([]float32, frames)},
		out:    [][]float32{make([]float32, frames), make([]float32, frames)},
		buf:    make([]byte, 0, frames*2*4),
		rng:    rand.New(rand.NewSource(seed)),
		burst:  max(1, int(0.03*sampleRate)),
		pulse:  int(pulseSeconds * sampleRate),
	}
}

// trigger fires a noise burst at the start of the next block.
func (s *stream) trigger() {
	s.triggered.Store(true)
}

// Frames returns the number of frames rendered so far.
func (s *stream) Frames() uint64 {
	return s.rendered.Load()
}

// Read fills p with interleaved little-endian float32 stereo frames.
func (s *stream) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		if len(s.pending) == 0 {
			if err := s.render(); err != nil {
				return n, err
			}
		}
		c := copy(p[n:], s.pending)
		s.pending = s.pending[c:]
		n += c
	}
	return n, nil
}

func (s *stream) render() error {
	s.fillInput()
	if _, err := s.h.Process(s.in, s.out, uint32(s.frames)); err != nil {
		return err
	}

	buf := s.buf[:0]
	for i := 0; i < s.frames; i++ {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(s.out[0][i]))
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(s.out[1][i]))
	}
	s.pending = buf
	s.rendered.Add(uint64(s.frames))
	return nil
}

func (s *stream) fillInput() {
	if s.triggered.Swap(false) {
		s.burstLeft = s.burst
	}
	left, right := s.in[0], s.in[1]
	for i := range left {
		if s.pulse > 0 {
			if s.sincePulse == 0 {
				s.burstLeft = s.burst
			}
			s.sincePulse++
			if s.sincePulse >= s.pulse {
				s.sincePulse = 0
			}
		}
		if s.burstLeft == 0 {
			left[i], right[i] = 0, 0
			continue
		}
		env := float32(s.burstLeft) / float32(s.burst)
		left[i] = float32(s.rng.Float64()*2-1) * 0.5 * env
		right[i] = float32(s.rng.Float64()*2-1) * 0.5 * env
		s.burstLeft--
	}
}
