// Package clipboard implements copy, cut, paste and duplicate of block
// selections.
//
// The buffer holds references to the copied blocks plus the connections
// that ran between them when they were copied. Paste clones every buffered
// block and reconnects the clones through an original→clone map, so only
// the internal topology of the copied selection is reproduced; edges to
// blocks outside the selection are dropped.
package clipboard

import (
	"github.com/matzehuels/bteditor/pkg/graph"
)

// DefaultOffset is how far a pasted clone is moved from its original.
const DefaultOffset = 50

type edge struct {
	source, target *graph.Block
}

// Buffer is the content of a clipboard.
type Buffer struct {
	blocks []*graph.Block
	edges  []edge
}

// Len returns the number of buffered blocks.
func (b Buffer) Len() int { return len(b.blocks) }

// Blocks returns the buffered blocks in copy order.
func (b Buffer) Blocks() []*graph.Block {
	out := make([]*graph.Block, len(b.blocks))
	copy(out, b.blocks)
	return out
}

// Clipboard copies and pastes within the tree held by a store.
type Clipboard struct {
	buf Buffer

	// OffsetX and OffsetY shift pasted clones away from their originals.
	OffsetX, OffsetY float64
	// SnapX and SnapY are the grid steps pasted clones are snapped to.
	SnapX, SnapY float64
}

// New creates an empty clipboard with the default paste offset and no grid.
func New() *Clipboard {
	return &Clipboard{OffsetX: DefaultOffset, OffsetY: DefaultOffset}
}

// Buffer returns the current buffer.
func (c *Clipboard) Buffer() Buffer { return c.buf }

// Restore replaces the buffer.
func (c *Clipboard) Restore(b Buffer) { c.buf = b }

// Drop removes every buffered block of the named type together with the
// buffered connections touching it and returns how many blocks it removed.
func (c *Clipboard) Drop(typeName string) int {
	var kept Buffer
	gone := make(map[*graph.Block]bool)
	for _, b := range c.buf.blocks {
		if b.Type == typeName {
			gone[b] = true
			continue
		}
		kept.blocks = append(kept.blocks, b)
	}
	if len(gone) == 0 {
		return 0
	}
	for _, e := range c.buf.edges {
		if !gone[e.source] && !gone[e.target] {
			kept.edges = append(kept.edges, e)
		}
	}
	c.buf = kept
	return len(gone)
}

// capture buffers the selected non-root blocks of store together with the
// connections between them.
func capture(store *graph.Store) Buffer {
	var buf Buffer
	in := make(map[*graph.Block]bool)
	for _, b := range store.Selected() {
		if b.IsRoot() {
			continue
		}
		buf.blocks = append(buf.blocks, b)
		in[b] = true
	}
	for _, b := range buf.blocks {
		for _, child := range b.Children() {
			if in[child] {
				buf.edges = append(buf.edges, edge{source: b, target: child})
			}
		}
	}
	return buf
}

// Copy buffers every selected block except root blocks.
func (c *Clipboard) Copy(store *graph.Store) {
	c.buf = capture(store)
}

// Cut buffers the selection like Copy, removes the buffered blocks from the
// store and clears the selection.
func (c *Clipboard) Cut(store *graph.Store) {
	c.buf = capture(store)
	for _, b := range c.buf.blocks {
		store.RemoveBlock(b)
	}
	store.DeselectAll()
}

// Paste inserts a clone of every buffered block, shifted by the offset,
// and recreates the connections that ran between buffered blocks. The
// clones replace the selection and are snapped to the grid. It returns the
// clones in buffer order.
func (c *Clipboard) Paste(store *graph.Store) []*graph.Block {
	if len(c.buf.blocks) == 0 {
		return nil
	}

	clones := make([]*graph.Block, len(c.buf.blocks))
	cloneOf := make(map[*graph.Block]*graph.Block, len(c.buf.blocks))
	for i, b := range c.buf.blocks {
		clone := b.Clone()
		clone.X += c.OffsetX
		clone.Y += c.OffsetY
		store.Insert(clone)
		clones[i] = clone
		cloneOf[b] = clone
	}

	for _, e := range c.buf.edges {
		// Buffered edges were valid between the originals, and the
		// clones start unconnected, so this cannot fail.
		_, _ = store.AddConnection(cloneOf[e.source], cloneOf[e.target])
	}

	store.DeselectAll()
	for _, clone := range clones {
		store.Select(clone)
	}
	store.Snap(c.SnapX, c.SnapY, clones...)
	return clones
}

// Duplicate copies and pastes the selection without disturbing the buffer
// set by an earlier Copy or Cut.
func (c *Clipboard) Duplicate(store *graph.Store) []*graph.Block {
	saved := c.buf
	c.Copy(store)
	clones := c.Paste(store)
	c.buf = saved
	return clones
}
