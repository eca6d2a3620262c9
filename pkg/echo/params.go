package echo

import (
	"github.com/justyntemme/goecho/pkg/framework/param"
	"github.com/justyntemme/goecho/pkg/framework/plugin"
)

// Parameter IDs
const (
	ParamTime uint32 = iota
	ParamFeedback
	ParamToneFreq
	ParamMix
	ParamModFreq
	ParamModAmount

	NumParams = int(ParamModAmount) + 1
)

// MaxTimeMs is the upper bound of the Time parameter.
const MaxTimeMs = 2000.0

// ID is the plugin identifier the factory registers under.
const ID = "com.goecho.echo"

// Descriptor describes the echo plugin
var Descriptor = plugin.Info{
	ID:          ID,
	Name:        "Echo",
	Vendor:      "goecho",
	Version:     "1.0.0",
	Description: "Stereo delay with feedback, tone filter and modulated delay time",
	URL:         "https://github.com/justyntemme/goecho",
	Features:    []string{plugin.FeatureAudioEffect, plugin.FeatureStereo, plugin.FeatureDelay},
}

// Parameters builds the fixed parameter table. Each call returns fresh parameters.
func Parameters() []*param.Parameter {
	return []*param.Parameter{
		param.New(ParamTime, "Delay Time").
			ShortName("Time").
			Range(1, MaxTimeMs).
			Default(300).
			Unit("ms").
			Formatter(param.TimeFormatter, param.TimeParser).
			Build(),

		param.New(ParamFeedback, "Feedback").
			Range(0, 1).
			Default(0.5).
			Formatter(param.FractionFormatter, param.FractionParser).
			Build(),

		param.New(ParamToneFreq, "Delay Tone").
			ShortName("Tone").
			Range(500, 20000).
			Default(10000).
			Unit("Hz").
			Formatter(param.FrequencyFormatter, param.FrequencyParser).
			Build(),

		param.New(ParamMix, "Mix").
			Range(0, 1).
			Default(0.3).
			Formatter(param.FractionFormatter, param.FractionParser).
			Build(),

		param.New(ParamModFreq, "Mod Freq").
			ShortName("Rate").
			Range(0, 5).
			Default(1).
			Unit("Hz").
			Formatter(param.FrequencyFormatter, param.FrequencyParser).
			Build(),

		param.New(ParamModAmount, "Mod Amount").
			ShortName("Depth").
			Range(0, 1).
			Default(0).
			Formatter(param.FractionFormatter, param.FractionParser).
			Build(),
	}
}
