package reactive

// Event is a Value without payload: observers react to the occurrence.
type Event struct {
	subs subscriberList
}

// NewEvent returns an Event with no subscribers.
func NewEvent() *Event {
	return &Event{}
}

// Signal notifies every subscriber once.
func (e *Event) Signal() {
	e.subs.notify()
}

// Raise is Signal under the name bulk operations use.
func (e *Event) Raise() {
	e.Signal()
}

// Subscribe registers fn to run on every Signal.
func (e *Event) Subscribe(fn func()) Subscription {
	return e.subs.add(fn)
}

// Unsubscribe removes the callback registered under h; it is idempotent.
func (e *Event) Unsubscribe(h Subscription) {
	e.subs.remove(h)
}

// SubscriberCount reports the number of active subscriptions.
func (e *Event) SubscriberCount() int {
	return e.subs.len()
}
