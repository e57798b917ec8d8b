package game

import "github.com/benbjohnson/immutable"

// Event is a transient record appended by actions. Consumers read the log
// once per frame and then clear it.
type Event interface {
	Time() float64
}

// EventBase can be embedded to satisfy Event.
type EventBase struct {
	Timestamp float64
}

func (e EventBase) Time() float64 { return e.Timestamp }

// AddEvent appends e to the event log.
func (s State) AddEvent(e Event) State {
	s.events = s.events.Append(e)
	return s
}

// ClearEvents empties the event log.
func (s State) ClearEvents() State {
	if s.events.Len() == 0 {
		return s
	}
	s.events = immutable.NewList[Event]()
	return s
}

// Events returns the log in append order.
func (s State) Events() []Event {
	out := make([]Event, 0, s.events.Len())
	itr := s.events.Iterator()
	for !itr.Done() {
		_, e := itr.Next()
		out = append(out, e)
	}
	return out
}

// EventsOf returns the logged events of type T in append order.
func EventsOf[T Event](s State) []T {
	var out []T
	itr := s.events.Iterator()
	for !itr.Done() {
		_, e := itr.Next()
		if t, ok := e.(T); ok {
			out = append(out, t)
		}
	}
	return out
}
