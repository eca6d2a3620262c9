// Package state encodes plugin parameter state as a flat blob of
// little-endian IEEE-754 float32 values in parameter index order.
package state

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/justyntemme/goecho/pkg/framework/param"
)

// ErrStateSize is returned when a blob does not hold exactly one float per parameter.
var ErrStateSize = errors.New("state: unexpected state size")

// Manager handles plugin state saving and loading
type Manager struct {
	count int
}

// NewManager creates a state manager for the parameters in registry
func NewManager(registry *param.Registry) *Manager {
	return &Manager{count: registry.Count()}
}

// NewManagerCount creates a state manager for count parameters
func NewManagerCount(count int) *Manager {
	return &Manager{count: count}
}

// Size returns the blob size in bytes.
func (m *Manager) Size() int {
	return m.count * 4
}

// Save writes values to w. len(values) must equal the parameter count.
func (m *Manager) Save(w io.Writer, values []float32) error {
	if len(values) != m.count {
		return fmt.Errorf("%w: have %d values, want %d", ErrStateSize, len(values), m.count)
	}
	return binary.Write(w, binary.LittleEndian, values)
}

// Load reads exactly one blob from r. A short blob or trailing bytes fail
// with ErrStateSize and no values are returned.
func (m *Manager) Load(r io.Reader) ([]float32, error) {
	data, err := io.ReadAll(io.LimitReader(r, int64(m.Size())+1))
	if err != nil {
		return nil, fmt.Errorf("state: read: %w", err)
	}
	return m.Decode(data)
}

// Encode returns the blob for values.
func (m *Manager) Encode(values []float32) ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(m.Size())
	if err := m.Save(&buf, values); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode parses a blob.
func (m *Manager) Decode(data []byte) ([]float32, error) {
	if len(data) != m.Size() {
		return nil, fmt.Errorf("%w: %d bytes, want %d", ErrStateSize, len(data), m.Size())
	}
	values := make([]float32, m.count)
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, values); err != nil {
		return nil, fmt.Errorf("state: decode: %w", err)
	}
	return values, nil
}
