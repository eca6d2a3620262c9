// Package bus describes a plugin's audio ports.
package bus

// Direction represents the bus direction
type Direction int32

const (
	// DirectionInput represents input bus
	DirectionInput Direction = 0
	// DirectionOutput represents output bus
	DirectionOutput Direction = 1
)

// String returns the string representation of the direction.
func (d Direction) String() string {
	if d == DirectionOutput {
		return "output"
	}
	return "input"
}

// Info contains bus configuration
type Info struct {
	ID           uint32
	Name         string
	Direction    Direction
	ChannelCount int32
	IsMain       bool
	// InPlacePair is the ID of the port on the other side that may share a
	// buffer with this one for in-place processing, or NoPair.
	InPlacePair uint32
}

// NoPair marks a port without an in-place partner.
const NoPair = ^uint32(0)

// Configuration manages audio buses
type Configuration struct {
	audioBuses []Info
}

// NewStereoConfiguration creates a standard stereo I/O configuration with one
// main input and one main output that may be processed in place.
func NewStereoConfiguration(inputName, outputName string) *Configuration {
	return &Configuration{
		audioBuses: []Info{
			{
				ID:           0,
				Name:         inputName,
				Direction:    DirectionInput,
				ChannelCount: 2,
				IsMain:       true,
				InPlacePair:  0,
			},
			{
				ID:           0,
				Name:         outputName,
				Direction:    DirectionOutput,
				ChannelCount: 2,
				IsMain:       true,
				InPlacePair:  0,
			},
		},
	}
}

// Count returns the number of buses in a direction
func (c *Configuration) Count(direction Direction) int {
	count := 0
	for _, bus := range c.audioBuses {
		if bus.Direction == direction {
			count++
		}
	}
	return count
}

// Get returns information about a specific bus
func (c *Configuration) Get(direction Direction, index int) (Info, bool) {
	busIndex := 0
	for _, bus := range c.audioBuses {
		if bus.Direction != direction {
			continue
		}
		if busIndex == index {
			return bus, true
		}
		busIndex++
	}
	return Info{}, false
}

// MainChannels returns the channel count of the main bus in a direction, zero if none.
func (c *Configuration) MainChannels(direction Direction) int {
	for _, bus := range c.audioBuses {
		if bus.Direction == direction && bus.IsMain {
			return int(bus.ChannelCount)
		}
	}
	return 0
}
