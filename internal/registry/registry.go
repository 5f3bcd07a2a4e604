package registry

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/vk/scriptvars/internal/variable"
)

var (
	// ErrNilEntry is returned when a nil variable or event is added.
	ErrNilEntry = errors.New("registry: nil entry")
	// ErrEmptyName is returned when an entry has an empty name.
	ErrEmptyName = errors.New("registry: empty name")
	// ErrDuplicateName is returned when the name is already taken by an
	// entry of the same kind.
	ErrDuplicateName = errors.New("registry: duplicate name")
)

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the logger for warnings and persistence failures.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) { r.logger = logger }
}

// WithClock overrides the clock used to stamp saved documents.
func WithClock(now func() time.Time) Option {
	return func(r *Registry) { r.now = now }
}

// Registry is an ordered, named collection of variables and events.
type Registry struct {
	name   string
	logger *slog.Logger
	now    func() time.Time

	entries []variable.Entry
	byName  map[string]variable.Entry
	events  []*variable.Event
	byEvent map[string]*variable.Event
}

// New creates an empty registry. name becomes the container name of saved
// documents.
func New(name string, opts ...Option) *Registry {
	r := &Registry{
		name:    name,
		logger:  slog.Default(),
		now:     time.Now,
		byName:  make(map[string]variable.Entry),
		byEvent: make(map[string]*variable.Event),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Name returns the container name.
func (r *Registry) Name() string { return r.name }

// Logger returns the registry's logger.
func (r *Registry) Logger() *slog.Logger { return r.logger }

// Add appends a variable.
func (r *Registry) Add(e variable.Entry) error {
	if e == nil {
		return ErrNilEntry
	}
	name := e.Name()
	if name == "" {
		return ErrEmptyName
	}
	if _, exists := r.byName[name]; exists {
		return fmt.Errorf("%w: variable %q in %q", ErrDuplicateName, name, r.name)
	}
	r.entries = append(r.entries, e)
	r.byName[name] = e
	return nil
}

// AddEvent appends an event. Events and variables have separate namespaces.
func (r *Registry) AddEvent(e *variable.Event) error {
	if e == nil {
		return ErrNilEntry
	}
	name := e.Name()
	if name == "" {
		return ErrEmptyName
	}
	if _, exists := r.byEvent[name]; exists {
		return fmt.Errorf("%w: event %q in %q", ErrDuplicateName, name, r.name)
	}
	r.events = append(r.events, e)
	r.byEvent[name] = e
	return nil
}

// Remove drops the named variable. It reports whether one was removed.
// Subscriptions on the removed variable are left to their owners.
func (r *Registry) Remove(name string) bool {
	if _, ok := r.byName[name]; !ok {
		return false
	}
	delete(r.byName, name)
	for i, e := range r.entries {
		if e.Name() == name {
			r.entries = append(r.entries[:i:i], r.entries[i+1:]...)
			break
		}
	}
	return true
}

// RemoveEvent drops the named event.
func (r *Registry) RemoveEvent(name string) bool {
	if _, ok := r.byEvent[name]; !ok {
		return false
	}
	delete(r.byEvent, name)
	for i, e := range r.events {
		if e.Name() == name {
			r.events = append(r.events[:i:i], r.events[i+1:]...)
			break
		}
	}
	return true
}

// Clear drops every variable and event.
func (r *Registry) Clear() {
	r.entries = nil
	r.events = nil
	r.byName = make(map[string]variable.Entry)
	r.byEvent = make(map[string]*variable.Event)
}

// GetByName returns the named variable.
func (r *Registry) GetByName(name string) (variable.Entry, bool) {
	e, ok := r.byName[name]
	return e, ok
}

// Lookup returns the named variable as T. It reports false both when the
// name is absent and when the variable is of another type.
//
//	score, ok := registry.Lookup[*variable.Int](reg, "Score")
func Lookup[T variable.Entry](r *Registry, name string) (T, bool) {
	var zero T
	e, ok := r.byName[name]
	if !ok {
		return zero, false
	}
	typed, ok := e.(T)
	if !ok {
		return zero, false
	}
	return typed, true
}

// EventByName returns the named event.
func (r *Registry) EventByName(name string) (*variable.Event, bool) {
	e, ok := r.byEvent[name]
	return e, ok
}

// Entries returns the variables in insertion order. The slice is a copy.
func (r *Registry) Entries() []variable.Entry {
	return append([]variable.Entry(nil), r.entries...)
}

// Events returns the events in insertion order. The slice is a copy.
func (r *Registry) Events() []*variable.Event {
	return append([]*variable.Event(nil), r.events...)
}

// Len returns the number of variables.
func (r *Registry) Len() int { return len(r.entries) }

// ResetAll resets every variable that has a reset, in order.
func (r *Registry) ResetAll() {
	for _, e := range r.Entries() {
		if !e.HasReset() {
			continue
		}
		e.Reset()
	}
}

// RaiseAll raises every variable, in order.
func (r *Registry) RaiseAll() {
	for _, e := range r.Entries() {
		e.Raise()
	}
}

// RaiseAllEvents signals every event, in order.
func (r *Registry) RaiseAllEvents() {
	for _, e := range r.Events() {
		e.Signal()
	}
}
