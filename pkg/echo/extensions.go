package echo

import (
	"fmt"
	"io"
	"math"

	"github.com/justyntemme/goecho/pkg/framework/bus"
	"github.com/justyntemme/goecho/pkg/framework/event"
	"github.com/justyntemme/goecho/pkg/framework/param"
	"github.com/justyntemme/goecho/pkg/framework/process"
	"github.com/justyntemme/goecho/pkg/plugin"
)

// Save writes the parameter state blob. Values the audio side changed are
// adopted first.
func (s *Session) Save(w io.Writer) error {
	s.mirror.SyncAudioToMain()
	s.scratch = s.mirror.MainValues(s.scratch)
	if err := s.State().Save(w, s.scratch); err != nil {
		return fmt.Errorf("echo: save state: %w", err)
	}
	return nil
}

// Load reads a parameter state blob and queues every value for the audio
// side. A malformed blob leaves the current values untouched.
func (s *Session) Load(r io.Reader) error {
	values, err := s.State().Load(r)
	if err != nil {
		s.log.Warn("state load rejected: %v", err)
		return fmt.Errorf("echo: load state: %w", err)
	}
	for i, v := range values {
		p, _ := s.Parameters().Get(uint32(i))
		if math.IsNaN(float64(v)) {
			values[i] = float32(p.DefaultValue)
			continue
		}
		values[i] = float32(p.Clamp(float64(v)))
	}
	s.mirror.LoadMain(values)
	s.flush()
	s.log.Debug("state loaded, %d edits waiting for the fifo", s.mirror.PendingCount())
	return nil
}

// Flush delivers pending control edits and applies in while the session is
// not processing. Outbound events go to out.
func (s *Session) Flush(in event.InputEvents, out event.OutputEvents) {
	if s.IsProcessing() {
		return
	}
	s.flush()
	s.r.events = out
	s.fifo.Drain(&s.r)
	process.Walk(0, in, &s.r)
	s.mirror.Publish()
	s.r.events = nil
}

type paramsExtension struct {
	s *Session
}

func (e *paramsExtension) Count() int {
	return e.s.Parameters().Count()
}

func (e *paramsExtension) Info(index int) (param.Info, bool) {
	if index < 0 {
		return param.Info{}, false
	}
	p, ok := e.s.Parameters().Get(uint32(index))
	if !ok {
		return param.Info{}, false
	}
	return p.Info(), true
}

func (e *paramsExtension) Value(id uint32) (float64, bool) {
	return e.s.ParamValue(id)
}

func (e *paramsExtension) ValueToText(id uint32, value float64) (string, bool) {
	p, ok := e.s.Parameters().Get(id)
	if !ok {
		return "", false
	}
	return p.FormatValue(value), true
}

func (e *paramsExtension) TextToValue(id uint32, text string) (float64, bool) {
	p, ok := e.s.Parameters().Get(id)
	if !ok {
		return 0, false
	}
	v, err := p.ParseValue(text)
	if err != nil {
		return 0, false
	}
	return v, true
}

func (e *paramsExtension) Flush(in event.InputEvents, out event.OutputEvents) {
	e.s.Flush(in, out)
}

var (
	_ plugin.ParamsExtension     = (*paramsExtension)(nil)
	_ plugin.StateExtension      = (*Session)(nil)
	_ plugin.AudioPortsExtension = (*bus.Configuration)(nil)
)
