// Package session manages the set of trees in an editing project and which
// of them is active.
//
// # Architecture
//
// Only the active tree lives in the [graph.Store]. Every other tree is
// parked as a [graph.State] plus the viewport it was last shown with.
// Switching trees hands the live graph back to its [Tree] record, loads the
// target's graph into the store, and asks the scene to repopulate:
//
//	sess := session.New(reg, store, scn, bus)
//	t1 := sess.CreateTree()
//	t2 := sess.CreateTree()
//	if err := sess.SwitchTo(t1.ID); err != nil {
//	    // UNKNOWN_TREE
//	}
//
// # Identity
//
// A tree's ID is the ID of the root block it was created with and never
// changes, even when [Session.Reset] replaces the root. [Tree.RootID]
// tracks the current root.
//
// # Last Tree
//
// Removing the only remaining tree is allowed; the session immediately
// creates and activates a fresh one, so there is always an active tree once
// the first has been created.
package session

import (
	"slices"

	"github.com/matzehuels/bteditor/pkg/errors"
	"github.com/matzehuels/bteditor/pkg/event"
	"github.com/matzehuels/bteditor/pkg/graph"
	"github.com/matzehuels/bteditor/pkg/nodetype"
	"github.com/matzehuels/bteditor/pkg/scene"
)

// Tree is one independently switchable behavior tree.
type Tree struct {
	ID       string
	Viewport scene.Viewport

	rootID string
	parked graph.State
}

// RootID returns the ID of the tree's current root block, or "" after a
// full reset.
func (t *Tree) RootID() string { return t.rootID }

// Session holds every tree of a project and routes the active one through
// the store. Session is not safe for concurrent use.
type Session struct {
	reg    *nodetype.Registry
	store  *graph.Store
	scene  scene.Scene
	pub    event.Publisher
	trees  []*Tree
	active *Tree
}

// New creates a session with no trees. Call CreateTree before using the
// store.
func New(reg *nodetype.Registry, store *graph.Store, scn scene.Scene, pub event.Publisher) *Session {
	if pub == nil {
		pub = event.Nop
	}
	return &Session{reg: reg, store: store, scene: scn, pub: pub}
}

// Store returns the store holding the active tree.
func (s *Session) Store() *graph.Store { return s.store }

// Scene returns the scene collaborator.
func (s *Session) Scene() scene.Scene { return s.scene }

// Active returns the active tree, or nil before the first CreateTree.
func (s *Session) Active() *Tree { return s.active }

// Trees returns the trees in creation order.
func (s *Session) Trees() []*Tree { return slices.Clone(s.trees) }

// Tree returns the tree with the given ID.
func (s *Session) Tree(id string) (*Tree, bool) {
	i := s.index(id)
	if i < 0 {
		return nil, false
	}
	return s.trees[i], true
}

func (s *Session) index(id string) int {
	return slices.IndexFunc(s.trees, func(t *Tree) bool { return t.ID == id })
}

func (s *Session) rootType() *nodetype.NodeType {
	t, ok := s.reg.Get(nodetype.RootName)
	if !ok {
		rt := nodetype.Root()
		return &rt
	}
	return t
}

// CreateTree adds a tree holding a single root block at the origin, makes
// it active, selects its root and centers the viewport.
func (s *Session) CreateTree() *Tree {
	root := graph.NewBlock(s.rootType())
	t := &Tree{
		ID:       root.ID,
		Viewport: scene.DefaultViewport,
		rootID:   root.ID,
		parked:   graph.State{Blocks: []*graph.Block{root}},
	}
	s.trees = append(s.trees, t)
	s.pub.Publish(event.Event{Name: event.TreeAdded, Target: t})

	s.activate(t)
	s.store.Select(root)
	s.Center()
	return t
}

// SwitchTo makes the tree with the given ID active. The current tree's
// graph, selection and viewport are parked in its record first. It fails
// with UNKNOWN_TREE, leaving everything unchanged, if no such tree exists.
func (s *Session) SwitchTo(id string) error {
	i := s.index(id)
	if i < 0 {
		return errors.New(errors.ErrCodeUnknownTree, "Trying to select an invalid tree.")
	}
	s.activate(s.trees[i])
	return nil
}

func (s *Session) activate(t *Tree) {
	if s.active != nil {
		s.active.parked = s.store.Detach()
		s.active.Viewport = s.scene.Viewport()
	}

	s.store.Load(t.parked)
	t.parked = graph.State{}
	s.active = t

	s.scene.Repopulate(s.store.Blocks(), s.store.Connections())
	s.scene.SetViewport(t.Viewport)
	s.pub.Publish(event.Event{Name: event.TreeSelected, Target: t})
}

// RemoveTree removes the tree with the given ID. If it was active, the
// previous tree becomes active, or the new first tree when the removed one
// was first; removing the last tree creates a fresh one. It fails with
// UNKNOWN_TREE if no such tree exists.
func (s *Session) RemoveTree(id string) error {
	i := s.index(id)
	if i < 0 {
		return errors.New(errors.ErrCodeUnknownTree, "Trying to remove an invalid tree.")
	}
	t := s.trees[i]
	s.trees = slices.Delete(s.trees, i, i+1)

	if t == s.active {
		t.parked = s.store.Detach()
		s.active = nil
		switch {
		case len(s.trees) == 0:
			s.CreateTree()
		case i > 0:
			s.activate(s.trees[i-1])
		default:
			s.activate(s.trees[0])
		}
	}

	s.pub.Publish(event.Event{Name: event.TreeRemoved, Target: t})
	return nil
}

// Clear removes every tree without creating a replacement. The session is
// left without an active tree until the next CreateTree.
func (s *Session) Clear() {
	if s.active != nil {
		s.active.parked = s.store.Detach()
		s.active = nil
	}
	removed := s.trees
	s.trees = nil
	s.scene.Repopulate(nil, nil)
	for _, t := range removed {
		s.pub.Publish(event.Event{Name: event.TreeRemoved, Target: t})
	}
}

// Reset clears the active tree's blocks and connections and resets the
// viewport. Unless clearAll is set a fresh root block is inserted and
// selected. The tree keeps its ID.
func (s *Session) Reset(clearAll bool) {
	if s.active == nil {
		s.CreateTree()
		if clearAll {
			s.Reset(true)
		}
		return
	}

	s.store.Clear()
	s.scene.Repopulate(nil, nil)
	s.scene.SetViewport(scene.Viewport{Zoom: 1})
	s.active.rootID = ""
	if !clearAll {
		root := s.store.AddBlock(s.rootType(), 0, 0)
		s.active.rootID = root.ID
	}
}

// Replace resets the active tree and calls fill to populate it. If fill
// fails, the tree gets back the graph, root and viewport it had before and
// the scene is rebuilt from them.
func (s *Session) Replace(fill func() error) error {
	if s.active == nil {
		s.CreateTree()
	}
	t := s.active
	saved, rootID, view := s.store.Detach(), t.rootID, s.scene.Viewport()

	s.Reset(false)
	if err := fill(); err != nil {
		s.store.Detach()
		s.store.Load(saved)
		t.rootID = rootID
		s.scene.Repopulate(s.store.Blocks(), s.store.Connections())
		s.scene.SetViewport(view)
		return err
	}
	return nil
}

// Center moves the camera to the middle of the canvas, keeping the zoom.
func (s *Session) Center() {
	w, h := s.scene.Size()
	v := s.scene.Viewport()
	v.X, v.Y = w/2, h/2
	s.scene.SetViewport(v)
}

// =============================================================================
// Whole-project access
// =============================================================================

// Graph returns the graph of t. For the active tree it reflects the live
// store; for a parked tree it is the parked state. The slices are copies;
// the blocks are shared.
func (s *Session) Graph(t *Tree) graph.State {
	if t == s.active {
		return graph.State{
			Blocks:      s.store.Blocks(),
			Connections: s.store.Connections(),
			Selection:   s.store.Selected(),
		}
	}
	return graph.State{
		Blocks:      slices.Clone(t.parked.Blocks),
		Connections: slices.Clone(t.parked.Connections),
		Selection:   slices.Clone(t.parked.Selection),
	}
}

// Root returns the current root block of t, or nil.
func (s *Session) Root(t *Tree) *graph.Block {
	for _, b := range s.Graph(t).Blocks {
		if b.ID == t.rootID {
			return b
		}
	}
	return nil
}

// Title returns the display title of t: its root block's title.
func (s *Session) Title(t *Tree) string {
	if r := s.Root(t); r != nil {
		return r.Title
	}
	return ""
}

// Each calls fn with every tree and a store holding its graph, in creation
// order. The active tree gets the live store. A parked tree gets a scratch
// store that publishes nothing; changes fn makes to it are parked again
// afterwards.
func (s *Session) Each(fn func(t *Tree, store *graph.Store)) {
	for _, t := range s.Trees() {
		if t == s.active {
			fn(t, s.store)
			continue
		}
		scratch := graph.NewStore(nil)
		scratch.Load(t.parked)
		fn(t, scratch)
		t.parked = scratch.Detach()
	}
}
