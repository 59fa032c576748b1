package dom

// Listener handles a dispatched event.
type Listener func(*Event)

// Event is passed to listeners during dispatch.
type Event struct {
	// Type is the event name without the "on" prefix (e.g. "click").
	Type string

	// Target is the element the event was dispatched on.
	Target *Element

	// CurrentTarget is the element whose listener is running.
	CurrentTarget *Element

	// Detail carries event-specific data.
	Detail any

	// Bubbles controls whether the event propagates to ancestors.
	Bubbles bool

	stopped bool
}

// StopPropagation prevents the event from reaching further ancestors.
func (ev *Event) StopPropagation() {
	ev.stopped = true
}

type listenerEntry struct {
	fn Listener
}

// AddEventListener registers fn for events of the given type and returns a
// function that removes it.
func (e *Element) AddEventListener(eventType string, fn Listener) (remove func()) {
	if fn == nil {
		return func() {}
	}
	entry := &listenerEntry{fn: fn}

	e.doc.mu.Lock()
	if e.listeners == nil {
		e.listeners = make(map[string][]*listenerEntry)
	}
	e.listeners[eventType] = append(e.listeners[eventType], entry)
	e.doc.mu.Unlock()

	return func() {
		e.doc.mu.Lock()
		defer e.doc.mu.Unlock()
		list := e.listeners[eventType]
		for i, l := range list {
			if l == entry {
				e.listeners[eventType] = append(list[:i], list[i+1:]...)
				return
			}
		}
	}
}

// ListenerCount returns the number of listeners registered for eventType.
func (e *Element) ListenerCount(eventType string) int {
	e.doc.mu.Lock()
	defer e.doc.mu.Unlock()
	return len(e.listeners[eventType])
}

// Dispatch delivers ev to the element's listeners and, when ev.Bubbles is
// set, to each ancestor's listeners. It returns the number of listeners
// invoked.
func (e *Element) Dispatch(ev *Event) int {
	if ev == nil {
		return 0
	}
	ev.Target = e

	invoked := 0
	for cur := e; cur != nil; {
		cur.doc.mu.Lock()
		entries := append([]*listenerEntry(nil), cur.listeners[ev.Type]...)
		next := cur.parent
		cur.doc.mu.Unlock()

		ev.CurrentTarget = cur
		for _, l := range entries {
			l.fn(ev)
			invoked++
		}
		if !ev.Bubbles || ev.stopped {
			break
		}
		cur = next
	}
	return invoked
}
