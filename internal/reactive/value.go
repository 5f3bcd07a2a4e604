package reactive

// Value holds one value of type T and notifies subscribers on every write.
type Value[T any] struct {
	value T
	subs  subscriberList
}

// New returns a Value holding initial. Creating a Value never notifies.
func New[T any](initial T) *Value[T] {
	return &Value[T]{value: initial}
}

// Get returns the current value.
func (v *Value[T]) Get() T {
	return v.value
}

// Set stores nv and notifies every subscriber once. There is no equality
// check: writing the current value notifies as well, and consumers rely on
// that to force a re-sync.
func (v *Value[T]) Set(nv T) {
	v.value = nv
	v.subs.notify()
}

// Raise notifies subscribers without touching the value.
func (v *Value[T]) Raise() {
	v.subs.notify()
}

// Subscribe registers fn. Callbacks receive no payload and re-read the value
// through Get.
func (v *Value[T]) Subscribe(fn func()) Subscription {
	return v.subs.add(fn)
}

// Unsubscribe removes the callback registered under h. Unknown or already
// removed handles are ignored.
func (v *Value[T]) Unsubscribe(h Subscription) {
	v.subs.remove(h)
}

// SubscriberCount reports the number of active subscriptions.
func (v *Value[T]) SubscriberCount() int {
	return v.subs.len()
}
