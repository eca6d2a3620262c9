package plugin

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/justyntemme/goecho/pkg/framework/plugin"
)

// ErrUnknownPlugin is returned by Create for an id no factory was registered under.
var ErrUnknownPlugin = errors.New("plugin: unknown plugin id")

// Factory creates plugin instances of one kind.
type Factory interface {
	Descriptor() plugin.Info
	New() Plugin
}

// FactoryFunc adapts a descriptor and constructor to Factory.
type FactoryFunc struct {
	Info        plugin.Info
	Constructor func() Plugin
}

// Descriptor returns the descriptor.
func (f FactoryFunc) Descriptor() plugin.Info { return f.Info }

// New calls the constructor.
func (f FactoryFunc) New() Plugin { return f.Constructor() }

var (
	factories   = make(map[string]Factory)
	factoriesMu sync.RWMutex
)

// RegisterFactory makes f available to Create under its descriptor id.
func RegisterFactory(f Factory) error {
	info := f.Descriptor()
	if err := info.Validate(); err != nil {
		return err
	}

	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	if _, exists := factories[info.ID]; exists {
		return fmt.Errorf("plugin: factory %q already registered", info.ID)
	}
	factories[info.ID] = f
	return nil
}

// Descriptors lists every registered plugin, sorted by id.
func Descriptors() []plugin.Info {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()

	infos := make([]plugin.Info, 0, len(factories))
	for _, f := range factories {
		infos = append(infos, f.Descriptor())
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos
}

// Create instantiates and initializes the plugin registered under id and
// returns a handle to it.
func Create(id string) (Handle, error) {
	factoriesMu.RLock()
	f, ok := factories[id]
	factoriesMu.RUnlock()
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownPlugin, id)
	}

	p := f.New()
	if err := p.Init(); err != nil {
		p.Destroy()
		return 0, fmt.Errorf("plugin %s: init: %w", id, err)
	}
	return Register(p), nil
}
