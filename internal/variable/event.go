package variable

import "github.com/vk/scriptvars/internal/reactive"

// Event is a named zero-payload signal.
type Event struct {
	*reactive.Event
	name string
}

// NewEvent creates an Event with no subscribers.
func NewEvent(name string) *Event {
	return &Event{Event: reactive.NewEvent(), name: name}
}

func (e *Event) Name() string { return e.name }
