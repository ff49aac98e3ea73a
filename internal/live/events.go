package live

import "sync"

// EventKind identifies one of the recognized live transcription events.
// The string value doubles as the wire discriminator in the "type" field
// of inbound frames.
type EventKind string

const (
	EventOpen          EventKind = "Open"
	EventTranscript    EventKind = "Results"
	EventMetadata      EventKind = "Metadata"
	EventSpeechStarted EventKind = "SpeechStarted"
	EventUtteranceEnd  EventKind = "UtteranceEnd"
	EventClose         EventKind = "Close"
	EventError         EventKind = "Error"
	EventUnhandled     EventKind = "Unhandled"
)

// valid reports whether k is a member of the closed event set.
func (k EventKind) valid() bool {
	switch k {
	case EventOpen, EventTranscript, EventMetadata, EventSpeechStarted,
		EventUtteranceEnd, EventClose, EventError, EventUnhandled:
		return true
	}
	return false
}

// Event is the sum type over all dispatched payloads. Concrete types are
// the *Response structs in responses.go.
type Event interface {
	Kind() EventKind
}

// Handler receives a dispatched event plus the extra context captured at
// Start. Handlers run synchronously on the dispatching goroutine and must
// not block.
type Handler func(ev Event, extra map[string]any)

// dispatcher maps event kinds to ordered subscriber lists. Registration
// may happen while a session is active, so reads and writes are guarded.
type dispatcher struct {
	mu       sync.RWMutex
	handlers map[EventKind][]Handler
}

func newDispatcher() *dispatcher {
	return &dispatcher{
		handlers: make(map[EventKind][]Handler),
	}
}

// on appends a handler for kind. Unknown kinds and nil handlers are
// ignored.
func (d *dispatcher) on(kind EventKind, h Handler) {
	if !kind.valid() || h == nil {
		return
	}
	d.mu.Lock()
	d.handlers[kind] = append(d.handlers[kind], h)
	d.mu.Unlock()
}

// emit invokes every handler registered for the event's kind, in
// registration order.
func (d *dispatcher) emit(ev Event, extra map[string]any) {
	d.mu.RLock()
	handlers := d.handlers[ev.Kind()]
	d.mu.RUnlock()

	for _, h := range handlers {
		h(ev, extra)
	}
}
