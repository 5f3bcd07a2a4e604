package reactive

// Subscription identifies one registered callback. The zero value is never
// handed out, so it is safe to use as "not subscribed".
type Subscription uint64

type subscriber struct {
	id Subscription
	fn func()
}

// subscriberList is an ordered callback list shared by Value and Event.
type subscriberList struct {
	next Subscription
	subs []subscriber
}

func (l *subscriberList) add(fn func()) Subscription {
	l.next++
	l.subs = append(l.subs, subscriber{id: l.next, fn: fn})
	return l.next
}

func (l *subscriberList) remove(h Subscription) {
	for i, s := range l.subs {
		if s.id == h {
			// Copy so that a snapshot taken by an in-flight notify keeps its view.
			subs := make([]subscriber, 0, len(l.subs)-1)
			subs = append(subs, l.subs[:i]...)
			l.subs = append(subs, l.subs[i+1:]...)
			return
		}
	}
}

// notify invokes a snapshot of the current subscribers. Subscriptions added
// or removed by a callback take effect from the next notification.
func (l *subscriberList) notify() {
	snapshot := l.subs
	for _, s := range snapshot {
		s.fn()
	}
}

func (l *subscriberList) len() int {
	return len(l.subs)
}
