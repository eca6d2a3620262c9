package param

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder(t *testing.T) {
	p := New(0, "Delay Time").
		ShortName("Time").
		Range(1, 2000).
		Default(300).
		Unit("ms").
		Formatter(TimeFormatter, TimeParser).
		Build()

	assert.Equal(t, "Time", p.ShortName)
	assert.Equal(t, 300.0, p.DefaultValue)
	assert.True(t, p.Info().Automatable())
	assert.Equal(t, "300.0 ms", p.FormatValue(300))
	assert.Equal(t, "2.00 s", p.FormatValue(2000))

	v, err := p.ParseValue("1.5 s")
	require.NoError(t, err)
	assert.Equal(t, 1500.0, v)

	v, err = p.ParseValue("5000")
	require.NoError(t, err)
	assert.Equal(t, 2000.0, v, "parsed values are clamped")

	_, err = p.ParseValue("soon")
	assert.Error(t, err)
}

func TestBuilderClampsDefault(t *testing.T) {
	p := New(0, "Mix").Range(0, 1).Default(3).Build()
	assert.Equal(t, 1.0, p.DefaultValue)

	ro := New(1, "Meter").ReadOnly().Build()
	assert.False(t, ro.Info().Automatable())
}

func TestDefaultFormatting(t *testing.T) {
	p := New(0, "Feedback").Build()
	assert.Equal(t, "0.50", p.FormatValue(0.5))

	hz := New(1, "Rate").Range(0, 5).Unit("Hz").Build()
	assert.Equal(t, "1.00 Hz", hz.FormatValue(1))
	v, err := hz.ParseValue(" 2.5 Hz ")
	require.NoError(t, err)
	assert.Equal(t, 2.5, v)
}

func TestNormalize(t *testing.T) {
	p := New(0, "Tone").Range(500, 20000).Build()
	assert.Equal(t, 0.0, p.Normalize(100))
	assert.Equal(t, 1.0, p.Normalize(30000))
	assert.InDelta(t, 0.5, p.Normalize(10250), 1e-12)
	assert.InDelta(t, 10250, p.Denormalize(0.5), 1e-9)
}

func TestRegistry(t *testing.T) {
	t.Run("DenseIDs", func(t *testing.T) {
		r, err := NewRegistry(
			New(0, "A").Build(),
			New(1, "B").Range(0, 10).Default(4).Build(),
		)
		require.NoError(t, err)
		assert.Equal(t, 2, r.Count())

		p, ok := r.Get(1)
		require.True(t, ok)
		assert.Equal(t, "B", p.Name)

		_, ok = r.Get(2)
		assert.False(t, ok)

		assert.Equal(t, []float32{0, 4}, r.Defaults())
		assert.Len(t, r.All(), 2)
	})

	t.Run("Gap", func(t *testing.T) {
		_, err := NewRegistry(New(1, "A").Build())
		assert.True(t, errors.Is(err, ErrInvalidID))
	})

	t.Run("Duplicate", func(t *testing.T) {
		_, err := NewRegistry(New(0, "A").Build(), New(0, "B").Build())
		assert.True(t, errors.Is(err, ErrDuplicateID))
	})
}

func TestFormatters(t *testing.T) {
	assert.Equal(t, "10.00 kHz", FrequencyFormatter(10000))
	assert.Equal(t, "1.00 Hz", FrequencyFormatter(1))
	assert.Equal(t, "30%", FractionFormatter(0.3))

	hz, err := FrequencyParser("2.5 kHz")
	require.NoError(t, err)
	assert.Equal(t, 2500.0, hz)

	f, err := FractionParser("25%")
	require.NoError(t, err)
	assert.Equal(t, 0.25, f)

	f, err = FractionParser("0.7")
	require.NoError(t, err)
	assert.Equal(t, 0.7, f)

	ms, err := TimeParser("250 ms")
	require.NoError(t, err)
	assert.Equal(t, 250.0, ms)
}
