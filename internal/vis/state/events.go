package state

import (
	"fmt"
	"sync"
)

// Event is one line of the event log.
type Event struct {
	At   float64 // simulated seconds
	Text string
}

func (e Event) String() string {
	return fmt.Sprintf("%7.2fs  %s", e.At, e.Text)
}

// EventLog keeps the most recent events in a fixed-size ring.
type EventLog struct {
	mu     sync.Mutex
	events []Event
	next   int
	full   bool
}

// NewEventLog creates a log holding at most capacity events.
func NewEventLog(capacity int) *EventLog {
	if capacity < 1 {
		capacity = 1
	}
	return &EventLog{events: make([]Event, capacity)}
}

// Add appends an event, evicting the oldest when full.
func (l *EventLog) Add(at float64, format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.events[l.next] = Event{At: at, Text: fmt.Sprintf(format, args...)}
	l.next = (l.next + 1) % len(l.events)
	if l.next == 0 {
		l.full = true
	}
}

// Len returns the number of stored events.
func (l *EventLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.full {
		return len(l.events)
	}
	return l.next
}

// Recent returns up to n events, oldest first.
func (l *EventLog) Recent(n int) []Event {
	l.mu.Lock()
	defer l.mu.Unlock()

	size := l.next
	if l.full {
		size = len(l.events)
	}
	if n > size {
		n = size
	}
	out := make([]Event, 0, n)
	for i := n; i > 0; i-- {
		idx := (l.next - i + len(l.events)) % len(l.events)
		out = append(out, l.events[idx])
	}
	return out
}
