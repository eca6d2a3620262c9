// Package plugin provides the descriptor and lifecycle bookkeeping shared by
// plugin implementations.
package plugin

import (
	"fmt"
	"slices"
	"strings"
)

// Feature tags a descriptor with what kind of processor it is.
const (
	FeatureAudioEffect = "audio-effect"
	FeatureStereo      = "stereo"
	FeatureDelay       = "delay"
)

// Info contains plugin metadata
type Info struct {
	ID          string // Unique plugin identifier in reverse-domain form (e.g., "com.example.myplugin")
	Name        string // Display name
	Vendor      string // Company/developer name
	Version     string // Semantic version (e.g., "1.0.0")
	Description string
	URL         string
	Features    []string
}

// Validate checks the fields a host relies on.
func (i Info) Validate() error {
	if i.Name == "" {
		return fmt.Errorf("plugin info: empty name")
	}
	if i.ID == "" || !strings.Contains(i.ID, ".") || strings.ContainsAny(i.ID, " \t\n") {
		return fmt.Errorf("plugin info: id %q is not a reverse-domain identifier", i.ID)
	}
	return nil
}

// HasFeature reports whether the descriptor lists feature.
func (i Info) HasFeature(feature string) bool {
	return slices.Contains(i.Features, feature)
}
