package plugin

import (
	"errors"
	"testing"

	"github.com/justyntemme/goecho/pkg/framework/bus"
	"github.com/justyntemme/goecho/pkg/framework/param"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testInfo() Info {
	return Info{
		ID:       "com.example.test",
		Name:     "Test",
		Version:  "1.0.0",
		Features: []string{FeatureAudioEffect, FeatureStereo},
	}
}

func TestInfoValidate(t *testing.T) {
	assert.NoError(t, testInfo().Validate())

	tests := []Info{
		{ID: "com.example.x"},
		{ID: "nodots", Name: "X"},
		{ID: "com.example. x", Name: "X"},
	}
	for _, info := range tests {
		assert.Error(t, info.Validate(), "%+v", info)
	}

	assert.True(t, testInfo().HasFeature(FeatureStereo))
	assert.False(t, testInfo().HasFeature(FeatureDelay))
}

func TestBase(t *testing.T) {
	b, err := NewBase(testInfo(), nil,
		param.New(0, "Gain").Build(),
		param.New(1, "Mix").Build(),
	)
	require.NoError(t, err)

	assert.Equal(t, 2, b.Parameters().Count())
	assert.Equal(t, 8, b.State().Size())
	assert.Equal(t, 2, b.Buses().MainChannels(bus.DirectionInput))

	t.Run("Lifecycle", func(t *testing.T) {
		assert.ErrorIs(t, b.StartProcessing(), ErrNotActive)

		require.NoError(t, b.Activate(48000, 1, 512))
		assert.True(t, b.IsActive())
		assert.Equal(t, uint32(512), b.MaxFrames())
		assert.ErrorIs(t, b.Activate(48000, 1, 512), ErrAlreadyActive)

		require.NoError(t, b.StartProcessing())
		assert.True(t, b.IsProcessing())

		b.Deactivate()
		assert.False(t, b.IsActive())
		assert.False(t, b.IsProcessing())
	})

	t.Run("InvalidActivation", func(t *testing.T) {
		for _, tc := range []struct {
			sr       float64
			min, max uint32
		}{
			{0, 1, 512},
			{-1, 1, 512},
			{48000, 1, 0},
			{48000, 64, 32},
		} {
			err := b.Activate(tc.sr, tc.min, tc.max)
			assert.True(t, errors.Is(err, ErrInvalidActivation), "%+v", tc)
		}
		assert.False(t, b.IsActive())
	})
}

func TestNewBaseErrors(t *testing.T) {
	_, err := NewBase(Info{}, nil)
	assert.Error(t, err)

	_, err = NewBase(testInfo(), nil, param.New(3, "Gap").Build())
	assert.ErrorIs(t, err, param.ErrInvalidID)
}
