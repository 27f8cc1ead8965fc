package editor

import (
	"bytes"
	"io"
	"time"

	"github.com/matzehuels/bteditor/pkg/document"
	"github.com/matzehuels/bteditor/pkg/errors"
	"github.com/matzehuels/bteditor/pkg/event"
)

// =============================================================================
// Import
// =============================================================================

// ImportDocument replaces the active tree with d: the tree is reset, the
// document's tree is attached under a fresh root block, unknown node types
// are registered and the result is laid out. An invalid document is
// rejected before anything changes.
func (e *Editor) ImportDocument(d *document.Document) (err error) {
	defer track("import", time.Now(), &err)

	if err := document.Validate(d, e.reg); err != nil {
		return e.fail("document", err)
	}
	if err := e.importInto(d); err != nil {
		return e.fail(d.Name, err)
	}
	e.log.Debug("document imported", "name", d.Name, "nodes", d.Root.Count())
	return nil
}

// importInto resets the active tree and imports an already validated
// document into it. If the import still fails, the tree is put back and
// the types it registered are removed again.
func (e *Editor) importInto(d *document.Document) error {
	known := make(map[string]bool)
	for _, t := range e.reg.List() {
		known[t.Name] = true
	}

	err := e.session.Replace(func() error {
		_, err := e.codec.Import(e.store, d)
		return err
	})
	if err != nil {
		for _, t := range e.reg.List() {
			if !known[t.Name] {
				e.reg.Remove(t.Name)
				e.bus.Publish(event.Event{Name: event.NodeRemoved, Target: t})
			}
		}
		return errors.Wrap(errors.ErrCodeInternal, err, "import %q", d.Name)
	}
	e.Organize(true)
	return nil
}

// Import decodes a document in format f from r and imports it.
func (e *Editor) Import(r io.Reader, f document.Format) error {
	d, err := document.Read(r, f)
	if err != nil {
		return e.fail("document", err)
	}
	return e.ImportDocument(d)
}

// ImportJSON imports a JSON document.
func (e *Editor) ImportJSON(data []byte) error {
	return e.Import(bytes.NewReader(data), document.FormatJSON)
}

// ImportFile imports a document file, picking the format from its
// extension.
func (e *Editor) ImportFile(path string) error {
	d, err := document.ReadFile(path)
	if err != nil {
		return e.fail(path, err)
	}
	return e.ImportDocument(d)
}

// =============================================================================
// Export
// =============================================================================

// ExportDocument returns the document of the active tree. A tree that was
// cleared without a new root exports as an empty document.
func (e *Editor) ExportDocument() *document.Document {
	root := e.store.Root()
	if root == nil {
		return &document.Document{Scripts: []string{}}
	}
	return document.Export(root)
}

// Export writes the active tree's document to w in format f.
func (e *Editor) Export(w io.Writer, f document.Format) error {
	return document.Write(w, e.ExportDocument(), f)
}

// ExportJSON returns the active tree's document as indented JSON.
func (e *Editor) ExportJSON() ([]byte, error) {
	return document.Marshal(e.ExportDocument())
}

// ExportTree returns the document of any tree, active or parked.
func (e *Editor) ExportTree(id string) (*document.Document, error) {
	t, ok := e.session.Tree(id)
	if !ok {
		return nil, e.fail(id, errors.New(errors.ErrCodeUnknownTree, "Trying to export an invalid tree."))
	}
	root := e.session.Root(t)
	if root == nil {
		return &document.Document{Scripts: []string{}}, nil
	}
	return document.Export(root), nil
}
