// Package event provides the publish/subscribe channel through which the
// editor notifies rendering and UI collaborators.
//
// Events are delivered synchronously, in subscription order, after the
// mutation they describe has been committed. Handlers must not assume any
// particular goroutine; the editor core itself is single-threaded.
//
//	bus := event.NewBus()
//	sub := bus.Subscribe(event.BlockSelected, func(e event.Event) {
//	    fmt.Println("selected", e.Target)
//	})
//	defer sub.Cancel()
package event

import (
	"slices"
	"sync"
)

// Name identifies an event kind.
type Name string

// User-facing notifications.
const (
	Notification Name = "notification"
)

// Node type registry events. Target is the *nodetype.NodeType.
const (
	NodeAdded   Name = "nodeadded"
	NodeChanged Name = "nodechanged"
	NodeRemoved Name = "noderemoved"
)

// Tree session events. Target is the *session.Tree.
const (
	TreeAdded    Name = "treeadded"
	TreeSelected Name = "treeselected"
	TreeRemoved  Name = "treeremoved"
)

// Block events. Target is the *graph.Block.
const (
	BlockSelected   Name = "blockselected"
	BlockDeselected Name = "blockdeselected"
	BlockChanged    Name = "blockchanged"
)

// Scene events consumed by rendering collaborators.
const (
	BlockAdded        Name = "blockadded"
	BlockRemoved      Name = "blockremoved"
	ConnectionAdded   Name = "connectionadded"
	ConnectionRemoved Name = "connectionremoved"
	Redraw            Name = "redraw"
)

// Level is the severity of a notification.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Event is a single notification delivered to subscribers.
type Event struct {
	Name   Name
	Target any

	// Notification payload.
	Level   Level
	Message string

	// Change payload (blockchanged).
	OldValues any
	NewValues any
}

// Handler receives published events.
type Handler func(Event)

// Publisher is the write side of the bus. Components that only emit events
// depend on this interface rather than on *Bus.
type Publisher interface {
	Publish(Event)
}

// Nop discards every event.
var Nop Publisher = nopPublisher{}

type nopPublisher struct{}

func (nopPublisher) Publish(Event) {}

type subscriber struct {
	id      uint64
	handler Handler
}

// Bus is an in-process event bus. The zero value is not usable; use NewBus.
// Bus is safe for concurrent use.
type Bus struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[Name][]subscriber
	all    []subscriber
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[Name][]subscriber)}
}

// Subscription is the handle returned by Subscribe.
type Subscription struct {
	bus  *Bus
	name Name
	id   uint64
	any  bool
}

// Cancel removes the subscription. Calling it more than once is harmless.
func (s Subscription) Cancel() {
	if s.bus == nil {
		return
	}
	s.bus.unsubscribe(s)
}

// Subscribe registers h for events named name.
func (b *Bus) Subscribe(name Name, h Handler) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	b.subs[name] = append(b.subs[name], subscriber{id: b.nextID, handler: h})
	return Subscription{bus: b, name: name, id: b.nextID}
}

// SubscribeAll registers h for every event regardless of name.
func (b *Bus) SubscribeAll(h Handler) Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	b.all = append(b.all, subscriber{id: b.nextID, handler: h})
	return Subscription{bus: b, id: b.nextID, any: true}
}

func (b *Bus) unsubscribe(s Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	match := func(sub subscriber) bool { return sub.id == s.id }
	if s.any {
		b.all = slices.DeleteFunc(b.all, match)
		return
	}
	b.subs[s.name] = slices.DeleteFunc(b.subs[s.name], match)
	if len(b.subs[s.name]) == 0 {
		delete(b.subs, s.name)
	}
}

// Publish delivers e to every handler subscribed to e.Name, then to the
// catch-all handlers. The handler list is copied before delivery so handlers
// may subscribe or cancel without deadlocking.
func (b *Bus) Publish(e Event) {
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.subs[e.Name])+len(b.all))
	for _, s := range b.subs[e.Name] {
		handlers = append(handlers, s.handler)
	}
	for _, s := range b.all {
		handlers = append(handlers, s.handler)
	}
	b.mu.RUnlock()

	for _, h := range handlers {
		h(e)
	}
}

// Recorder collects every published event. It is handy for tests and for
// collaborators that batch UI updates.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// Publish implements Publisher.
func (r *Recorder) Publish(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.events)
}

// Named returns the recorded events with the given name.
func (r *Recorder) Named(name Name) []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Event
	for _, e := range r.events {
		if e.Name == name {
			out = append(out, e)
		}
	}
	return out
}

// Reset discards recorded events.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}
