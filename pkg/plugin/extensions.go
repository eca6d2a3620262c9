package plugin

import (
	"io"

	"github.com/justyntemme/goecho/pkg/framework/bus"
	"github.com/justyntemme/goecho/pkg/framework/event"
	"github.com/justyntemme/goecho/pkg/framework/param"
)

// Extension identifiers accepted by Plugin.Extension.
const (
	ExtensionParams     = "params"
	ExtensionState      = "state"
	ExtensionAudioPorts = "audio-ports"
	ExtensionTail       = "tail"
)

// ParamsExtension exposes parameter metadata, values and text conversion.
type ParamsExtension interface {
	Count() int
	Info(index int) (param.Info, bool)
	Value(id uint32) (float64, bool)
	ValueToText(id uint32, value float64) (string, bool)
	TextToValue(id uint32, text string) (float64, bool)

	// Flush applies in and emits pending outbound events while the plugin
	// is not processing.
	Flush(in event.InputEvents, out event.OutputEvents)
}

// StateExtension saves and restores the parameter state blob.
type StateExtension interface {
	Save(w io.Writer) error
	Load(r io.Reader) error
}

// AudioPortsExtension describes the audio ports.
type AudioPortsExtension interface {
	Count(direction bus.Direction) int
	Get(direction bus.Direction, index int) (bus.Info, bool)
}

// TailExtension reports how many samples the plugin keeps producing after its input goes silent.
type TailExtension interface {
	TailSamples() uint32
}

// Extensions is the set of capabilities a host resolved for one plugin.
// Missing capabilities are nil.
type Extensions struct {
	Params     ParamsExtension
	State      StateExtension
	AudioPorts AudioPortsExtension
	Tail       TailExtension
}

// QueryExtensions asks p for every known extension once.
func QueryExtensions(p Plugin) Extensions {
	var ext Extensions
	ext.Params, _ = p.Extension(ExtensionParams).(ParamsExtension)
	ext.State, _ = p.Extension(ExtensionState).(StateExtension)
	ext.AudioPorts, _ = p.Extension(ExtensionAudioPorts).(AudioPortsExtension)
	ext.Tail, _ = p.Extension(ExtensionTail).(TailExtension)
	return ext
}
