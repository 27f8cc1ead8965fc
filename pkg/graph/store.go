package graph

import (
	"math"
	"slices"

	"github.com/matzehuels/bteditor/pkg/errors"
	"github.com/matzehuels/bteditor/pkg/event"
	"github.com/matzehuels/bteditor/pkg/nodetype"
)

// State is the complete graph of one tree: its blocks in insertion order,
// its connections in insertion order, and its selection in selection order.
// A State detached from a Store shares block pointers with it; it is a
// hand-over, not a copy.
type State struct {
	Blocks      []*Block
	Connections []*Connection
	Selection   []*Block
}

// Store owns the blocks, connections and selection of the active tree.
//
// Every mutation is validated before anything is changed and publishes its
// events after it has been applied. Store is not safe for concurrent use.
type Store struct {
	blocks      []*Block
	byID        map[string]*Block
	connections []*Connection
	selection   []*Block
	pub         event.Publisher
}

// NewStore creates an empty store publishing to pub. A nil pub discards
// events.
func NewStore(pub event.Publisher) *Store {
	if pub == nil {
		pub = event.Nop
	}
	return &Store{byID: make(map[string]*Block), pub: pub}
}

func (s *Store) publish(name event.Name, target any) {
	s.pub.Publish(event.Event{Name: name, Target: target})
}

// =============================================================================
// Lookups
// =============================================================================

// Root returns the first root-category block, or nil.
func (s *Store) Root() *Block {
	for _, b := range s.blocks {
		if b.IsRoot() {
			return b
		}
	}
	return nil
}

// Block returns the block with the given ID.
func (s *Store) Block(id string) (*Block, bool) {
	b, ok := s.byID[id]
	return b, ok
}

// Contains reports whether b belongs to the store.
func (s *Store) Contains(b *Block) bool {
	return b != nil && s.byID[b.ID] == b
}

// Blocks returns the blocks in insertion order.
func (s *Store) Blocks() []*Block { return slices.Clone(s.blocks) }

// Connections returns the connections in insertion order.
func (s *Store) Connections() []*Connection { return slices.Clone(s.connections) }

// Selected returns the selected blocks in selection order.
func (s *Store) Selected() []*Block { return slices.Clone(s.selection) }

// Len returns the number of blocks.
func (s *Store) Len() int { return len(s.blocks) }

// BlocksOfType returns the blocks whose type is name, in insertion order.
// It scans every block.
func (s *Store) BlocksOfType(name string) []*Block {
	var out []*Block
	for _, b := range s.blocks {
		if b.Type == name {
			out = append(out, b)
		}
	}
	return out
}

// =============================================================================
// Blocks
// =============================================================================

// AddBlock creates a block of type t at (x, y), inserts it, clears the
// selection and selects the new block.
func (s *Store) AddBlock(t *nodetype.NodeType, x, y float64) *Block {
	b := NewBlock(t)
	b.X, b.Y = x, y
	s.Insert(b)
	s.DeselectAll()
	s.Select(b)
	return b
}

// Insert adds a detached block without touching the selection. Inserting a
// block that is already present is a no-op.
func (s *Store) Insert(b *Block) {
	if s.Contains(b) {
		return
	}
	b.Selected = false
	s.blocks = append(s.blocks, b)
	s.byID[b.ID] = b
	s.publish(event.BlockAdded, b)
}

// RemoveBlock removes b from the store. Its incoming connection is removed
// first, then its outgoing connections in reverse order. Other blocks are
// never removed. Removing a block the store does not hold is a no-op.
func (s *Store) RemoveBlock(b *Block) {
	if !s.Contains(b) {
		return
	}
	s.Deselect(b)
	if b.in != nil {
		s.RemoveConnection(b.in)
	}
	for i := len(b.out) - 1; i >= 0; i-- {
		s.RemoveConnection(b.out[i])
	}
	s.blocks = slices.DeleteFunc(s.blocks, func(x *Block) bool { return x == b })
	delete(s.byID, b.ID)
	s.publish(event.BlockRemoved, b)
}

// EditBlock replaces the title, description and properties of b and
// publishes blockchanged carrying the old and new values. The block keeps
// its own copy of t.Properties.
func (s *Store) EditBlock(b *Block, t Template) {
	old := b.Template()
	b.Title = t.Title
	b.Description = t.Description
	b.Properties = t.Properties.Clone()
	s.pub.Publish(event.Event{
		Name:      event.BlockChanged,
		Target:    b,
		OldValues: old,
		NewValues: t,
	})
}

// =============================================================================
// Connections
// =============================================================================

// CanConnect reports whether a connection source→target would keep the
// tree well formed, without changing anything. The error has code
// INVALID_CONNECTION.
func CanConnect(source, target *Block) error {
	switch {
	case source == nil || target == nil:
		return errors.New(errors.ErrCodeInvalidConnection, "connection needs both a parent and a child")
	case source == target:
		return errors.New(errors.ErrCodeInvalidConnection, "block %q cannot be connected to itself", source.Title)
	case target.IsRoot():
		return errors.New(errors.ErrCodeInvalidConnection, "a root block cannot have a parent")
	case target.in != nil:
		return errors.New(errors.ErrCodeInvalidConnection, "block %q already has a parent", target.Title)
	}

	switch limit := source.Category.MaxChildren(); {
	case limit == 0:
		return errors.New(errors.ErrCodeInvalidConnection, "%s block %q cannot have children", source.Category, source.Title)
	case limit > 0 && len(source.out) >= limit:
		return errors.New(errors.ErrCodeInvalidConnection, "%s block %q already has a child", source.Category, source.Title)
	}

	if IsAncestor(target, source) {
		return errors.New(errors.ErrCodeInvalidConnection, "connecting %q to %q would create a cycle", source.Title, target.Title)
	}
	return nil
}

// AddConnection connects source (parent) to target (child). The connection
// is appended to the source's children and becomes the target's only
// incoming connection. Both blocks must belong to the store.
func (s *Store) AddConnection(source, target *Block) (*Connection, error) {
	if err := CanConnect(source, target); err != nil {
		return nil, err
	}
	if !s.Contains(source) || !s.Contains(target) {
		return nil, errors.New(errors.ErrCodeUnknownBlock, "both blocks must belong to the active tree")
	}

	c := &Connection{Source: source, Target: target}
	source.out = append(source.out, c)
	target.in = c
	s.connections = append(s.connections, c)
	s.publish(event.ConnectionAdded, c)
	return c, nil
}

// RemoveConnection detaches c from both endpoints and drops it from the
// store. Either endpoint may already be nil; a nil connection is a no-op.
// The connectionremoved event carries the endpoints as they were.
func (s *Store) RemoveConnection(c *Connection) {
	if c == nil {
		return
	}
	removed := *c
	if src := c.Source; src != nil {
		src.out = slices.DeleteFunc(src.out, func(x *Connection) bool { return x == c })
		c.Source = nil
	}
	if dst := c.Target; dst != nil {
		if dst.in == c {
			dst.in = nil
		}
		c.Target = nil
	}
	n := len(s.connections)
	s.connections = slices.DeleteFunc(s.connections, func(x *Connection) bool { return x == c })
	if len(s.connections) != n {
		s.publish(event.ConnectionRemoved, &removed)
	}
}

// SortChildren reorders the outgoing connections of b by cmp applied to
// their targets. The sort is stable, so equal children keep their order.
func (s *Store) SortChildren(b *Block, cmp func(x, y *Block) int) {
	slices.SortStableFunc(b.out, func(x, y *Connection) int {
		if x.Target == nil || y.Target == nil {
			return 0
		}
		return cmp(x.Target, y.Target)
	})
}

// =============================================================================
// Selection
// =============================================================================

// Select marks b selected. Selecting a selected block is a no-op.
func (s *Store) Select(b *Block) {
	if b == nil || b.Selected {
		return
	}
	b.Selected = true
	s.selection = append(s.selection, b)
	s.publish(event.BlockSelected, b)
}

// Deselect clears b's selection. Deselecting an unselected block is a no-op.
func (s *Store) Deselect(b *Block) {
	if b == nil || !b.Selected {
		return
	}
	b.Selected = false
	s.selection = slices.DeleteFunc(s.selection, func(x *Block) bool { return x == b })
	s.publish(event.BlockDeselected, b)
}

// SelectAll selects every block in insertion order.
func (s *Store) SelectAll() {
	for _, b := range s.Blocks() {
		s.Select(b)
	}
}

// DeselectAll deselects every selected block, most recent first.
func (s *Store) DeselectAll() {
	for i := len(s.selection) - 1; i >= 0; i-- {
		s.Deselect(s.selection[i])
	}
}

// InvertSelection toggles the selection of the given blocks, or of every
// block when none are given.
func (s *Store) InvertSelection(blocks ...*Block) {
	if len(blocks) == 0 {
		blocks = s.Blocks()
	}
	for _, b := range blocks {
		if b.Selected {
			s.Deselect(b)
		} else {
			s.Select(b)
		}
	}
}

// =============================================================================
// Positions
// =============================================================================

// Snap moves each block down to the nearest multiple of the grid steps.
// With no blocks given every block in the store is snapped. A step that is
// not positive leaves that axis untouched.
func (s *Store) Snap(stepX, stepY float64, blocks ...*Block) {
	if len(blocks) == 0 {
		blocks = s.blocks
	}
	for _, b := range blocks {
		b.X = snapTo(b.X, stepX)
		b.Y = snapTo(b.Y, stepY)
	}
	s.publish(event.Redraw, nil)
}

// Redraw asks the scene to redraw after positions were changed directly.
func (s *Store) Redraw() { s.publish(event.Redraw, nil) }

func snapTo(v, step float64) float64 {
	if step <= 0 {
		return v
	}
	return math.Floor(v/step) * step
}

// =============================================================================
// Hand-over
// =============================================================================

// Detach removes and returns the whole graph, leaving the store empty. No
// per-block events are published; the caller decides how the scene is
// rebuilt.
func (s *Store) Detach() State {
	st := State{Blocks: s.blocks, Connections: s.connections, Selection: s.selection}
	s.blocks, s.connections, s.selection = nil, nil, nil
	s.byID = make(map[string]*Block)
	return st
}

// Load replaces the store content with st. Like Detach it publishes no
// per-block events.
func (s *Store) Load(st State) {
	s.blocks = slices.Clone(st.Blocks)
	s.connections = slices.Clone(st.Connections)
	s.selection = slices.Clone(st.Selection)
	s.byID = make(map[string]*Block, len(s.blocks))
	for _, b := range s.blocks {
		s.byID[b.ID] = b
	}
}

// Clear drops every block and connection and publishes a single redraw.
func (s *Store) Clear() {
	for _, b := range s.blocks {
		b.in, b.out, b.Selected = nil, nil, false
	}
	s.Detach()
	s.publish(event.Redraw, nil)
}
