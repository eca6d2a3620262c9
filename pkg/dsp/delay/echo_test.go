package delay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEchoSize(t *testing.T) {
	assert.Equal(t, 96002, EchoSize(2000, 48000))
	assert.Equal(t, 88202, EchoSize(2000, 44100))
	assert.Equal(t, 4, EchoSize(0, 48000))

	e := NewEcho(2000, 48000)
	assert.Equal(t, 96002, e.Size())
	assert.Equal(t, 96000.0, e.MaxDelay())
}

func TestEchoImpulse(t *testing.T) {
	for _, fb := range []float32{0, 0.25, 0.5, 0.9} {
		const sampleRate = 1000.0
		const delayMs = 25.0
		d := delayMs * sampleRate / 1000 // 25 samples

		e := NewEcho(100, sampleRate)
		total := 4*int(d) + 1
		out := make([]float32, total)
		for n := 0; n < total; n++ {
			in := float32(0)
			if n == 0 {
				in = 1
			}
			wetL, wetR := e.Read(d, d)
			e.Feed(in, in, wetL, wetR, fb)
			require.Equal(t, wetL, wetR)
			out[n] = wetL
		}

		want := 1 + fb
		for k := 1; k <= 4; k++ {
			idx := k * int(d)
			if idx >= total {
				break
			}
			assert.InDelta(t, want, out[idx], 1e-6, "fb=%v repeat %d", fb, k)
			want *= fb
		}
		for n, v := range out {
			if n%int(d) != 0 || n == 0 {
				assert.Zero(t, v, "fb=%v sample %d", fb, n)
			}
		}
	}
}

func TestEchoFractionalRead(t *testing.T) {
	e := NewEchoSize(16)
	e.Write(0, 0)
	e.Write(1, 10)
	e.Write(2, 20)

	l, r := e.Read(1, 1)
	assert.Equal(t, float32(2), l)
	assert.Equal(t, float32(20), r)

	l, r = e.Read(1.5, 2)
	assert.InDelta(t, 1.5, l, 1e-6)
	assert.InDelta(t, 10, r, 1e-6)

	l, _ = e.Read(2.25, 1)
	assert.InDelta(t, 0.75, l, 1e-6)
}

func TestEchoWrapAndClamp(t *testing.T) {
	e := NewEchoSize(8)
	for i := 0; i < 11; i++ {
		e.Write(float32(i), -float32(i))
	}
	l, r := e.Read(1, 3)
	assert.Equal(t, float32(10), l)
	assert.Equal(t, float32(-8), r)

	// delays outside [1, size-2] are clamped
	l, _ = e.Read(0, 1)
	assert.Equal(t, float32(10), l)
	l, _ = e.Read(1000, 1)
	assert.Equal(t, float32(5), l)
	l, _ = e.Read(-3, 1)
	assert.Equal(t, float32(10), l)
}

func TestEchoReset(t *testing.T) {
	e := NewEchoSize(8)
	for i := 0; i < 5; i++ {
		e.Write(1, 1)
	}
	e.Reset()
	l, r := e.Read(1, 1)
	assert.Zero(t, l)
	assert.Zero(t, r)

	// cursor restarts at slot 0: the first write is one sample back and
	// every older slot reads as silence
	e.Write(7, 7)
	l, _ = e.Read(1, 1)
	assert.Equal(t, float32(7), l)
	l, _ = e.Read(6, 1)
	assert.Zero(t, l)
}

func BenchmarkEcho(b *testing.B) {
	e := NewEcho(2000, 48000)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		wetL, wetR := e.Read(14400.3, 14410.7)
		e.Feed(0.5, -0.5, wetL, wetR, 0.5)
	}
}
