package modulation

import "math"

// Quadrature is a coupled-form sine/cosine oscillator:
//
//	cos -= k*sin
//	sin += k*cos
//
// with k = 2*sin(pi*f/fs). It needs no trig per sample. Amplitude drifts
// very slowly over long runs, which is accepted for modulation use.
type Quadrature struct {
	cos, sin float64
	k        float64
}

// NewQuadrature creates an oscillator at phase zero (cos=1, sin=0).
func NewQuadrature() *Quadrature {
	q := &Quadrature{}
	q.Reset()
	return q
}

// SetFrequency recomputes the rotation coefficient. f is clamped to [0, fs/2].
func (q *Quadrature) SetFrequency(f, fs float64) {
	if fs <= 0 {
		return
	}
	if f < 0 {
		f = 0
	} else if f > fs/2 {
		f = fs / 2
	}
	q.k = 2 * math.Sin(math.Pi*f/fs)
}

// K returns the rotation coefficient.
func (q *Quadrature) K() float64 { return q.k }

// Next returns the current cos/sin pair and advances one sample.
func (q *Quadrature) Next() (c, s float32) {
	c, s = float32(q.cos), float32(q.sin)
	q.cos -= q.k * q.sin
	q.sin += q.k * q.cos
	return c, s
}

// Fill writes consecutive cos/sin values, min(len(cosBuf), len(sinBuf)) of them.
func (q *Quadrature) Fill(cosBuf, sinBuf []float32) {
	n := len(cosBuf)
	if len(sinBuf) < n {
		n = len(sinBuf)
	}
	c, s, k := q.cos, q.sin, q.k
	for i := 0; i < n; i++ {
		cosBuf[i] = float32(c)
		sinBuf[i] = float32(s)
		c -= k * s
		s += k * c
	}
	q.cos, q.sin = c, s
}

// Reset returns to phase zero.
func (q *Quadrature) Reset() {
	q.cos = 1
	q.sin = 0
}
