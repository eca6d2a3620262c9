package plugin

import (
	"errors"
	"fmt"
	"sync"
)

// ErrBadHandle is returned for handles that were never issued or were released.
var ErrBadHandle = errors.New("plugin: bad handle")

// Handle is an opaque reference to a live plugin instance.
type Handle uintptr

var (
	// Live instances indexed by handle
	instances   = make(map[Handle]Plugin)
	instancesMu sync.RWMutex
	nextHandle  Handle = 1
)

// Register makes p reachable through a new handle.
func Register(p Plugin) Handle {
	instancesMu.Lock()
	defer instancesMu.Unlock()
	h := nextHandle
	nextHandle++
	instances[h] = p
	return h
}

// Lookup resolves h to its plugin.
func Lookup(h Handle) (Plugin, error) {
	instancesMu.RLock()
	defer instancesMu.RUnlock()

	if h == 0 {
		return nil, ErrBadHandle
	}
	p, ok := instances[h]
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrBadHandle, h)
	}
	return p, nil
}

// Release destroys the plugin behind h and invalidates the handle.
func Release(h Handle) error {
	instancesMu.Lock()
	p, ok := instances[h]
	delete(instances, h)
	instancesMu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %d", ErrBadHandle, h)
	}
	p.Destroy()
	return nil
}

// Live returns the number of registered instances.
func Live() int {
	instancesMu.RLock()
	defer instancesMu.RUnlock()
	return len(instances)
}
