// Package plugin provides the host-facing plugin contract: the lifecycle
// interface, optional capability extensions, the factory and opaque handles.
package plugin

import (
	"github.com/justyntemme/goecho/pkg/framework/plugin"
	"github.com/justyntemme/goecho/pkg/framework/process"
)

// Status is the result of a render call.
type Status int

const (
	// StatusError means the block could not be rendered.
	StatusError Status = iota
	// StatusContinue means the plugin keeps producing output.
	StatusContinue
	// StatusContinueIfNotQuiet lets the host put the plugin to sleep once its output is silent.
	StatusContinueIfNotQuiet
	// StatusTail means the plugin is ringing out and can be stopped after TailSamples.
	StatusTail
	// StatusSleep means the plugin has nothing to do until new input arrives.
	StatusSleep
)

// String returns the string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusError:
		return "error"
	case StatusContinue:
		return "continue"
	case StatusContinueIfNotQuiet:
		return "continue-if-not-quiet"
	case StatusTail:
		return "tail"
	case StatusSleep:
		return "sleep"
	default:
		return "unknown"
	}
}

// Plugin is the main interface that plugins implement
type Plugin interface {
	// Descriptor returns plugin metadata
	Descriptor() plugin.Info

	// Init is called once after creation, on the main thread.
	Init() error

	// Destroy releases everything the plugin holds.
	Destroy()

	// Activate allocates processing resources for the given configuration.
	Activate(sampleRate float64, minFrames, maxFrames uint32) error

	// Deactivate frees processing resources.
	Deactivate()

	// StartProcessing is called on the audio thread before the first Process.
	StartProcessing() error

	// StopProcessing is called on the audio thread after the last Process.
	StopProcessing()

	// Reset clears all signal state without changing parameters.
	Reset()

	// Process renders one block - ZERO ALLOCATIONS!
	Process(ctx *process.Context) Status

	// Extension returns the capability registered under id, or nil.
	Extension(id string) any

	// OnMainThread is the periodic control-thread callback.
	OnMainThread()
}
