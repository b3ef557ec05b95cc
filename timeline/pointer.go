package timeline

import "sync"

type PointerKind int

const (
	PointerMove PointerKind = iota
	PointerUp
)

// PointerEvent is a global pointer movement. X is in the same unit the
// track width was measured in.
type PointerEvent struct {
	Kind PointerKind
	X    float64
}

type Listener func(PointerEvent)

type listenerEntry struct {
	id int
	fn Listener
}

// PointerBus delivers pointer events to the listeners of in-flight
// gestures. Each Listen hands back a release func that is safe to call more
// than once.
type PointerBus struct {
	mu        sync.Mutex
	nextID    int
	listeners []listenerEntry
}

func NewPointerBus() *PointerBus {
	return &PointerBus{}
}

func (b *PointerBus) Listen(fn Listener) (release func()) {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.listeners = append(b.listeners, listenerEntry{id: id, fn: fn})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(id) })
	}
}

func (b *PointerBus) remove(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, l := range b.listeners {
		if l.id == id {
			b.listeners = append(b.listeners[:i], b.listeners[i+1:]...)
			return
		}
	}
}

// Dispatch calls the listeners registered at the time of the call, in
// registration order. Listeners may release themselves while running.
func (b *PointerBus) Dispatch(ev PointerEvent) {
	b.mu.Lock()
	snapshot := make([]listenerEntry, len(b.listeners))
	copy(snapshot, b.listeners)
	b.mu.Unlock()

	for _, l := range snapshot {
		l.fn(ev)
	}
}

// Len is the number of live listeners.
func (b *PointerBus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.listeners)
}
