package editor

import (
	"slices"

	"github.com/matzehuels/bteditor/pkg/errors"
	"github.com/matzehuels/bteditor/pkg/graph"
)

// =============================================================================
// Lookups
// =============================================================================

// Root returns the root block of the active tree.
func (e *Editor) Root() *graph.Block { return e.store.Root() }

// Block returns the block of the active tree with the given ID.
func (e *Editor) Block(id string) (*graph.Block, bool) { return e.store.Block(id) }

func (e *Editor) lookup(id string) (*graph.Block, error) {
	if b, ok := e.store.Block(id); ok {
		return b, nil
	}
	return nil, errors.New(errors.ErrCodeUnknownBlock, "no block %q in the active tree", id)
}

// =============================================================================
// Blocks
// =============================================================================

// AddBlock creates a block of the named type at (x, y) in the active tree
// and makes it the only selected block.
func (e *Editor) AddBlock(typeName string, x, y float64) (*graph.Block, error) {
	t, err := e.reg.MustGet(typeName)
	if err != nil {
		return nil, e.fail(typeName, err)
	}
	if t.Builtin {
		return nil, e.fail(typeName, errors.New(errors.ErrCodeInvalidInput, "a tree has exactly one %s block", t.Name))
	}
	return e.store.AddBlock(t, x, y), nil
}

// EditBlock replaces the title, description and properties of a block.
func (e *Editor) EditBlock(id string, t graph.Template) error {
	b, err := e.lookup(id)
	if err != nil {
		return e.fail(id, err)
	}
	e.store.EditBlock(b, t)
	return nil
}

// RemoveBlock removes one block and its connections. Unknown IDs and root
// blocks are ignored; it reports whether a block was removed.
func (e *Editor) RemoveBlock(id string) bool {
	b, ok := e.store.Block(id)
	if !ok || b.IsRoot() {
		return false
	}
	e.store.RemoveBlock(b)
	return true
}

// Remove deletes every selected block except the root. The selection is
// cleared afterwards; a selected root stays selected.
func (e *Editor) Remove() {
	var root *graph.Block
	for _, b := range e.store.Selected() {
		if b.IsRoot() {
			root = b
			continue
		}
		e.store.RemoveBlock(b)
	}
	e.store.DeselectAll()
	if root != nil {
		e.store.Select(root)
	}
}

// =============================================================================
// Connections
// =============================================================================

// Connect adds a connection from the parent block to the child block.
func (e *Editor) Connect(parentID, childID string) (*graph.Connection, error) {
	parent, err := e.lookup(parentID)
	if err != nil {
		return nil, e.fail(parentID, err)
	}
	child, err := e.lookup(childID)
	if err != nil {
		return nil, e.fail(childID, err)
	}
	c, err := e.store.AddConnection(parent, child)
	if err != nil {
		return nil, e.fail(child.ID, err)
	}
	return c, nil
}

// Disconnect removes the incoming connection of a block. It reports whether
// there was one.
func (e *Editor) Disconnect(childID string) bool {
	b, ok := e.store.Block(childID)
	if !ok || b.In() == nil {
		return false
	}
	e.store.RemoveConnection(b.In())
	return true
}

// RemoveConnections detaches the selected blocks from their parents and
// children.
func (e *Editor) RemoveConnections() {
	e.RemoveInConnections()
	e.RemoveOutConnections()
}

// RemoveInConnections detaches the selected blocks from their parents.
func (e *Editor) RemoveInConnections() {
	for _, b := range e.store.Selected() {
		e.store.RemoveConnection(b.In())
	}
}

// RemoveOutConnections detaches the selected blocks from their children,
// last child first.
func (e *Editor) RemoveOutConnections() {
	for _, b := range e.store.Selected() {
		for _, c := range slices.Backward(b.Out()) {
			e.store.RemoveConnection(c)
		}
	}
}

// =============================================================================
// Selection
// =============================================================================

// Select adds the given blocks to the selection.
func (e *Editor) Select(ids ...string) error {
	blocks, err := e.lookupAll(ids)
	if err != nil {
		return e.fail(ids, err)
	}
	for _, b := range blocks {
		e.store.Select(b)
	}
	return nil
}

// Deselect removes the given blocks from the selection.
func (e *Editor) Deselect(ids ...string) error {
	blocks, err := e.lookupAll(ids)
	if err != nil {
		return e.fail(ids, err)
	}
	for _, b := range blocks {
		e.store.Deselect(b)
	}
	return nil
}

// SelectAll selects every block of the active tree.
func (e *Editor) SelectAll() { e.store.SelectAll() }

// DeselectAll clears the selection.
func (e *Editor) DeselectAll() { e.store.DeselectAll() }

// InvertSelection toggles the given blocks, or every block when no IDs are
// given.
func (e *Editor) InvertSelection(ids ...string) error {
	blocks, err := e.lookupAll(ids)
	if err != nil {
		return e.fail(ids, err)
	}
	e.store.InvertSelection(blocks...)
	return nil
}

// Selected returns the selected blocks in selection order.
func (e *Editor) Selected() []*graph.Block { return e.store.Selected() }

// lookupAll resolves every ID before anything is changed.
func (e *Editor) lookupAll(ids []string) ([]*graph.Block, error) {
	blocks := make([]*graph.Block, 0, len(ids))
	for _, id := range ids {
		b, err := e.lookup(id)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}
	return blocks, nil
}

// =============================================================================
// Positions
// =============================================================================

// Snap moves the given blocks, or every block when no IDs are given, down
// onto the configured grid.
func (e *Editor) Snap(ids ...string) error {
	blocks, err := e.lookupAll(ids)
	if err != nil {
		return e.fail(ids, err)
	}
	e.store.Snap(e.opts.SnapX, e.opts.SnapY, blocks...)
	return nil
}

// Move places a block at (x, y) without snapping.
func (e *Editor) Move(id string, x, y float64) error {
	b, err := e.lookup(id)
	if err != nil {
		return e.fail(id, err)
	}
	b.X, b.Y = x, y
	e.store.Redraw()
	return nil
}

// Organize lays out the active tree from its root. With orderByIndex false
// siblings are first reordered by their current vertical position.
func (e *Editor) Organize(orderByIndex bool) {
	e.organizer.Organize(e.store.Root(), orderByIndex)
}

// =============================================================================
// Clipboard
// =============================================================================

// Copy puts the selected blocks, except the root, on the clipboard.
func (e *Editor) Copy() { e.clip.Copy(e.store) }

// Cut moves the selected blocks, except the root, to the clipboard.
func (e *Editor) Cut() { e.clip.Cut(e.store) }

// Paste inserts clones of the clipboard blocks and selects them.
func (e *Editor) Paste() []*graph.Block { return e.clip.Paste(e.store) }

// Duplicate clones the selection without touching the clipboard.
func (e *Editor) Duplicate() []*graph.Block { return e.clip.Duplicate(e.store) }
