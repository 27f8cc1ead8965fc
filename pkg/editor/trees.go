package editor

import (
	"github.com/matzehuels/bteditor/pkg/observability"
	"github.com/matzehuels/bteditor/pkg/session"
)

// =============================================================================
// Trees
// =============================================================================

// CreateTree adds a tree holding only a root block and makes it active.
func (e *Editor) CreateTree() *session.Tree {
	t := e.session.CreateTree()
	e.log.Debug("tree created", "id", t.ID)
	observability.Editor().OnTreeCount(len(e.session.Trees()))
	return t
}

// SelectTree makes the tree with the given ID active.
func (e *Editor) SelectTree(id string) error {
	if err := e.session.SwitchTo(id); err != nil {
		return e.fail(id, err)
	}
	e.log.Debug("tree selected", "id", id)
	return nil
}

// RemoveTree removes the tree with the given ID. Removing the last tree
// leaves a fresh empty one active.
func (e *Editor) RemoveTree(id string) error {
	if err := e.session.RemoveTree(id); err != nil {
		return e.fail(id, err)
	}
	e.log.Debug("tree removed", "id", id)
	observability.Editor().OnTreeCount(len(e.session.Trees()))
	return nil
}

// Reset clears the active tree. Unless clearAll is set a fresh root block
// is added.
func (e *Editor) Reset(clearAll bool) { e.session.Reset(clearAll) }

// Trees returns every tree in creation order.
func (e *Editor) Trees() []*session.Tree { return e.session.Trees() }

// ActiveTree returns the active tree.
func (e *Editor) ActiveTree() *session.Tree { return e.session.Active() }

// TreeTitle returns the title of a tree, which is its root block's title.
func (e *Editor) TreeTitle(t *session.Tree) string { return e.session.Title(t) }
