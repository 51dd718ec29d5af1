package events

// Window is a fixed-capacity FIFO of the most recent events. When full, the
// oldest event is evicted to make room. Window is not safe for concurrent
// use; its owner serialises access.
type Window struct {
	items []Event
	cap   int
	head  int // index of the oldest element
	count int // number of elements currently stored
}

// NewWindow creates a Window holding at most capacity events.
// Capacity is clamped to at least 1.
func NewWindow(capacity int) *Window {
	if capacity < 1 {
		capacity = 1
	}
	return &Window{
		items: make([]Event, capacity),
		cap:   capacity,
	}
}

// Add appends an event and reports whether an older event was evicted.
func (w *Window) Add(e Event) (evicted bool) {
	if w.count == w.cap {
		w.items[w.head] = e
		w.head = (w.head + 1) % w.cap
		return true
	}
	w.items[(w.head+w.count)%w.cap] = e
	w.count++
	return false
}

// Len returns the number of events currently held.
func (w *Window) Len() int { return w.count }

// Cap returns the capacity of the window.
func (w *Window) Cap() int { return w.cap }

// List returns the events in arrival order (oldest first), or nil when empty.
func (w *Window) List() []Event {
	if w.count == 0 {
		return nil
	}
	result := make([]Event, w.count)
	for i := 0; i < w.count; i++ {
		result[i] = w.items[(w.head+i)%w.cap]
	}
	return result
}

// ErrorRatePct returns the percentage of held events that are Errored,
// recomputed from scratch. An empty window has a rate of 0.
func (w *Window) ErrorRatePct() float64 {
	if w.count == 0 {
		return 0
	}
	errored := 0
	for i := 0; i < w.count; i++ {
		if w.items[(w.head+i)%w.cap].Errored() {
			errored++
		}
	}
	return float64(errored) / float64(w.count) * 100
}
