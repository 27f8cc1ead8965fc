package editor

import (
	"slices"
	"time"

	"github.com/matzehuels/bteditor/pkg/event"
	"github.com/matzehuels/bteditor/pkg/graph"
	"github.com/matzehuels/bteditor/pkg/nodetype"
	"github.com/matzehuels/bteditor/pkg/session"
)

// =============================================================================
// Node types
// =============================================================================

// RegisterNode adds a user-defined node type and publishes nodeadded.
func (e *Editor) RegisterNode(t nodetype.NodeType) (_ *nodetype.NodeType, err error) {
	defer track("register_node", time.Now(), &err)

	t.Builtin = false
	stored, err := e.reg.Register(t)
	if err != nil {
		return nil, e.fail(t.Name, err)
	}
	e.log.Debug("node type registered", "name", stored.Name, "category", stored.Category)
	e.bus.Publish(event.Event{Name: event.NodeAdded, Target: stored})
	return stored, nil
}

// LoadCatalog registers every type of c that is not registered yet and
// returns the names it skipped.
func (e *Editor) LoadCatalog(c nodetype.Catalog) (skipped []string, err error) {
	for _, n := range c.Nodes {
		if e.reg.Has(n.Name) {
			skipped = append(skipped, n.Name)
			continue
		}
		if _, err := e.RegisterNode(n); err != nil {
			return skipped, err
		}
	}
	return skipped, nil
}

// EditNode renames a node type and retitles it. Blocks of that type in
// every tree and in the clipboard follow the new name; a block's title is replaced only while it
// still shows the old title or the old name, so titles set by hand survive.
// The new block title is newTitle, or newName when newTitle is empty.
//
// If newName is taken by another type nothing changes and a single error
// notification is published.
func (e *Editor) EditNode(oldName, newName, newTitle string) (err error) {
	defer track("edit_node", time.Now(), &err)

	before, err := e.reg.Rename(oldName, newName, newTitle)
	if err != nil {
		return e.fail(newName, err)
	}

	title := newTitle
	if title == "" {
		title = newName
	}
	retype := func(blocks []*graph.Block) {
		for _, b := range blocks {
			if b.Type != oldName {
				continue
			}
			b.Type = newName
			if b.Title == before.Title || b.Title == oldName {
				b.Title = title
			}
		}
	}
	e.session.Each(func(_ *session.Tree, store *graph.Store) {
		retype(store.BlocksOfType(oldName))
	})
	// Cut blocks live only in the clipboard.
	retype(e.clip.Buffer().Blocks())
	e.store.Redraw()

	t, _ := e.reg.Get(newName)
	e.log.Debug("node type renamed", "from", oldName, "to", newName)
	e.bus.Publish(event.Event{
		Name:      event.NodeChanged,
		Target:    t,
		OldValues: before,
		NewValues: *t,
	})
	return nil
}

// RemoveNode deselects everything, removes every block of the named type
// from every tree along with its connections and drops such blocks from the
// clipboard. Then it removes the type and publishes noderemoved. It returns
// the number of blocks removed from trees. Unknown and built-in types are
// left alone.
func (e *Editor) RemoveNode(name string) int {
	t, ok := e.reg.Get(name)
	if !ok || t.Builtin {
		return 0
	}

	e.store.DeselectAll()
	removed := 0
	e.session.Each(func(_ *session.Tree, store *graph.Store) {
		blocks := store.BlocksOfType(name)
		for _, b := range slices.Backward(blocks) {
			store.RemoveBlock(b)
			removed++
		}
	})

	e.clip.Drop(name)

	e.reg.Remove(name)
	e.log.Debug("node type removed", "name", name, "blocks", removed)
	e.bus.Publish(event.Event{Name: event.NodeRemoved, Target: t})
	return removed
}

// Nodes returns the registered node types in registration order.
func (e *Editor) Nodes() []*nodetype.NodeType { return e.reg.List() }
