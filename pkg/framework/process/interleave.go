package process

import "github.com/justyntemme/goecho/pkg/framework/event"

// SpanHandler receives the pieces of a block split at event boundaries.
type SpanHandler interface {
	// ApplyEvent is called for each event before the span starting at its time.
	ApplyEvent(e event.Event)
	// RenderSpan renders frames [start, end). end > start always holds.
	RenderSpan(start, end uint32)
}

// Walk splits a block of frames at the times of the given events.
//
// Every event whose time is at or before the cursor is applied, then the
// frames up to the next event time (or the block end) are rendered as one
// span. Events out of order or in the past take effect at the cursor.
// Events timed at or past the block end are applied after the last span,
// so a zero-frame block only applies events. Returns the number of spans.
func Walk(frames uint32, events event.InputEvents, h SpanHandler) int {
	n := 0
	if events != nil {
		n = events.Len()
	}

	i := 0
	spans := 0
	for cursor := uint32(0); cursor < frames; {
		for i < n {
			e := events.At(i)
			if e.Time > cursor {
				break
			}
			h.ApplyEvent(e)
			i++
		}

		next := frames
		if i < n {
			if t := events.At(i).Time; t < frames {
				next = t
			}
		}

		h.RenderSpan(cursor, next)
		spans++
		cursor = next
	}

	for ; i < n; i++ {
		h.ApplyEvent(events.At(i))
	}
	return spans
}
