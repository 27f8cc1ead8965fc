// Package scene defines the rendering collaborator the editor drives, and a
// headless implementation used by the CLI, the HTTP server and tests.
package scene

import (
	"sync"

	"github.com/matzehuels/bteditor/pkg/event"
	"github.com/matzehuels/bteditor/pkg/graph"
)

// Viewport is the camera over a tree: pan offset and zoom scale.
type Viewport struct {
	X    float64 `json:"x" bson:"x"`
	Y    float64 `json:"y" bson:"y"`
	Zoom float64 `json:"zoom" bson:"zoom"`
}

// DefaultViewport is the camera of a freshly reset tree.
var DefaultViewport = Viewport{Zoom: 1}

// Scene is what the editor needs from a renderer. Block and connection
// changes reach the scene through the event bus; Repopulate is called when
// the whole graph is replaced, as on a tree switch.
type Scene interface {
	// Repopulate clears the scene and draws the given graph.
	Repopulate(blocks []*graph.Block, conns []*graph.Connection)
	Viewport() Viewport
	SetViewport(Viewport)
	// Size returns the canvas size in pixels.
	Size() (width, height float64)
}

// Headless is an in-memory Scene. It mirrors the displayed blocks and
// connections by listening to the bus, so it can answer what a real
// renderer would currently show. Headless is safe for concurrent use.
type Headless struct {
	mu            sync.RWMutex
	width, height float64
	viewport      Viewport
	blocks        map[*graph.Block]struct{}
	conns         map[*graph.Connection]struct{}
	redraws       int
	subs          []event.Subscription
}

// NewHeadless creates a headless scene of the given canvas size.
func NewHeadless(width, height float64) *Headless {
	return &Headless{
		width:    width,
		height:   height,
		viewport: DefaultViewport,
		blocks:   make(map[*graph.Block]struct{}),
		conns:    make(map[*graph.Connection]struct{}),
	}
}

// Attach subscribes the scene to the scene events of bus.
func (h *Headless) Attach(bus *event.Bus) {
	h.subs = append(h.subs,
		bus.Subscribe(event.BlockAdded, func(e event.Event) {
			h.mu.Lock()
			h.blocks[e.Target.(*graph.Block)] = struct{}{}
			h.mu.Unlock()
		}),
		bus.Subscribe(event.BlockRemoved, func(e event.Event) {
			h.mu.Lock()
			delete(h.blocks, e.Target.(*graph.Block))
			h.mu.Unlock()
		}),
		bus.Subscribe(event.ConnectionAdded, func(e event.Event) {
			h.mu.Lock()
			h.conns[e.Target.(*graph.Connection)] = struct{}{}
			h.mu.Unlock()
		}),
		// The event carries a copy; the removed connection itself is the
		// one left with no endpoints.
		bus.Subscribe(event.ConnectionRemoved, func(event.Event) {
			h.mu.Lock()
			for c := range h.conns {
				if c.Source == nil && c.Target == nil {
					delete(h.conns, c)
				}
			}
			h.mu.Unlock()
		}),
		bus.Subscribe(event.Redraw, func(event.Event) {
			h.mu.Lock()
			h.redraws++
			h.mu.Unlock()
		}),
	)
}

// Detach cancels the bus subscriptions made by Attach.
func (h *Headless) Detach() {
	for _, s := range h.subs {
		s.Cancel()
	}
	h.subs = nil
}

// Repopulate implements Scene.
func (h *Headless) Repopulate(blocks []*graph.Block, conns []*graph.Connection) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.blocks = make(map[*graph.Block]struct{}, len(blocks))
	for _, b := range blocks {
		h.blocks[b] = struct{}{}
	}
	h.conns = make(map[*graph.Connection]struct{}, len(conns))
	for _, c := range conns {
		h.conns[c] = struct{}{}
	}
	h.redraws++
}

// Viewport implements Scene.
func (h *Headless) Viewport() Viewport {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.viewport
}

// SetViewport implements Scene.
func (h *Headless) SetViewport(v Viewport) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.viewport = v
}

// Size implements Scene.
func (h *Headless) Size() (float64, float64) { return h.width, h.height }

// BlockCount returns the number of blocks currently drawn.
func (h *Headless) BlockCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.blocks)
}

// ConnectionCount returns the number of connections currently drawn.
func (h *Headless) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// Shows reports whether b is currently drawn.
func (h *Headless) Shows(b *graph.Block) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.blocks[b]
	return ok
}

// Redraws returns how many times the scene was redrawn or repopulated.
func (h *Headless) Redraws() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.redraws
}
