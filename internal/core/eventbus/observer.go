package eventbus

import "sync/atomic"

// Observer watches the bus itself rather than a single event. Any field may
// be nil.
type Observer struct {
	// Published runs after an event is buffered for dispatch.
	Published func(event Event, payload any)
	// Dropped runs when the buffer is full and the event is discarded.
	Dropped func(event Event, payload any)
	// Subscribed runs after a subscriber is added.
	Subscribed func(event Event)
	// Panicked runs when a subscriber panics. A panic inside Panicked is
	// swallowed.
	Panicked func(event Event, payload any, recovered any)
}

// observers is a copy-on-write list; readers never lock.
type observers struct {
	list atomic.Pointer[[]Observer]
}

func (o *observers) add(obs Observer) {
	for {
		old := o.list.Load()
		var next []Observer
		if old != nil {
			next = append(next, *old...)
		}
		next = append(next, obs)
		if o.list.CompareAndSwap(old, &next) {
			return
		}
	}
}

func (o *observers) each(fn func(Observer)) {
	list := o.list.Load()
	if list == nil {
		return
	}
	for _, obs := range *list {
		fn(obs)
	}
}

// Observe attaches obs to the bus.
func (bus *EventBus) Observe(obs Observer) {
	bus.observers.add(obs)
}

func (bus *EventBus) send(event Event, payload any) {
	select {
	case bus.ch <- envelope{event: event, payload: payload}:
		bus.observers.each(func(obs Observer) {
			if obs.Published != nil {
				obs.Published(event, payload)
			}
		})
	default:
		bus.observers.each(func(obs Observer) {
			if obs.Dropped != nil {
				obs.Dropped(event, payload)
			}
		})
	}
}

func (bus *EventBus) notifySubscribed(event Event) {
	bus.observers.each(func(obs Observer) {
		if obs.Subscribed != nil {
			obs.Subscribed(event)
		}
	})
}

func (bus *EventBus) notifyPanicked(event Event, payload any, recovered any) {
	bus.observers.each(func(obs Observer) {
		if obs.Panicked == nil {
			return
		}
		defer func() { _ = recover() }()
		obs.Panicked(event, payload, recovered)
	})
}
