package document

import (
	"slices"

	"github.com/matzehuels/bteditor/pkg/errors"
	"github.com/matzehuels/bteditor/pkg/event"
	"github.com/matzehuels/bteditor/pkg/graph"
	"github.com/matzehuels/bteditor/pkg/nodetype"
)

// ScriptsProperty is the root block property holding the document's script
// references.
const ScriptsProperty = "scripts"

// Codec converts between documents and the live graph.
type Codec struct {
	reg *nodetype.Registry
	pub event.Publisher
}

// NewCodec creates a codec that resolves and registers node types in reg
// and publishes nodeadded for types it registers on the fly.
func NewCodec(reg *nodetype.Registry, pub event.Publisher) *Codec {
	if pub == nil {
		pub = event.Nop
	}
	return &Codec{reg: reg, pub: pub}
}

// =============================================================================
// Import
// =============================================================================

// ImportNode instantiates n and its descendants in store and returns the
// block created for n. Unknown types are registered first, with the
// "control" tag read as the composite category; module nodes use their path
// as type name. When parent is non-nil the new block becomes its last
// child. Each block gets a fresh ID.
//
// ImportNode does not validate; call Validate first to keep a failed
// import from leaving a partial graph.
func (c *Codec) ImportNode(store *graph.Store, n *Node, parent *graph.Block) (*graph.Block, error) {
	name := n.Key()
	t, ok := c.reg.Get(name)
	if !ok {
		var err error
		t, err = c.reg.Register(nodetype.NodeType{
			Name:     name,
			Title:    name,
			Category: nodetype.FromDocumentTag(n.Type),
		})
		if err != nil {
			return nil, err
		}
		c.pub.Publish(event.Event{Name: event.NodeAdded, Target: t})
	}

	b := store.AddBlock(t, 0, 0)
	b.Title = n.Title
	b.Description = n.Description
	b.Properties = graph.Properties(n.Parameters).Clone()

	if parent != nil {
		if _, err := store.AddConnection(parent, b); err != nil {
			return nil, err
		}
	}

	for _, child := range n.Kids() {
		if _, err := c.ImportNode(store, child, b); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// Import validates d and attaches its tree under the root block of store,
// which must hold a freshly reset tree. The root block takes the
// document's name as title, its description, and its scripts.
func (c *Codec) Import(store *graph.Store, d *Document) (*graph.Block, error) {
	if err := Validate(d, c.reg); err != nil {
		return nil, err
	}
	root := store.Root()
	if root == nil {
		return nil, errors.New(errors.ErrCodeInternal, "active tree has no root block")
	}
	if root.OutDegree() > 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "the tree root already has a child; reset the tree before importing")
	}

	var top *graph.Block
	if d.Root != nil {
		var err error
		if top, err = c.ImportNode(store, d.Root, nil); err != nil {
			return nil, err
		}
		if _, err := store.AddConnection(root, top); err != nil {
			return nil, err
		}
	}

	root.Title = d.Name
	root.Description = d.Description
	if root.Properties == nil {
		root.Properties = graph.Properties{}
	}
	root.Properties[ScriptsProperty] = slices.Clone(d.Scripts)
	return top, nil
}

// =============================================================================
// Export
// =============================================================================

// ExportBlock converts b and its descendants into a document node. Block
// IDs are not part of the output.
func ExportBlock(b *graph.Block) *Node {
	if b.Category == nodetype.CategoryModule {
		return &Node{Type: TagModule, Path: b.Type}
	}

	n := &Node{
		Title:       b.Title,
		Type:        b.Category.DocumentTag(),
		Name:        b.Type,
		Description: b.Description,
		Parameters:  map[string]any(b.Properties.Clone()),
	}

	children := b.Children()
	switch b.Category {
	case nodetype.CategoryComposite:
		n.Children = make([]*Node, len(children))
		for i, child := range children {
			n.Children[i] = ExportBlock(child)
		}
	case nodetype.CategoryDecorator:
		if len(children) > 0 {
			n.Child = ExportBlock(children[0])
		}
	}
	return n
}

// Export builds the document of the tree whose root block is root: the
// root's title, description and scripts form the envelope and its single
// child becomes the document root.
func Export(root *graph.Block) *Document {
	d := &Document{
		Name:        root.Title,
		Description: root.Description,
		Scripts:     scripts(root.Properties[ScriptsProperty]),
	}
	if children := root.Children(); len(children) > 0 {
		d.Root = ExportBlock(children[0])
	}
	return d
}

func scripts(v any) []string {
	switch s := v.(type) {
	case []string:
		if s == nil {
			return []string{}
		}
		return slices.Clone(s)
	case []any:
		out := make([]string, 0, len(s))
		for _, item := range s {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out
	default:
		return []string{}
	}
}
