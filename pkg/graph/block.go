package graph

import (
	"slices"

	"github.com/google/uuid"
	"github.com/mohae/deepcopy"

	"github.com/matzehuels/bteditor/pkg/nodetype"
)

// Properties maps parameter names to values.
type Properties map[string]any

// Clone returns a deep copy of p. A nil map stays nil.
func (p Properties) Clone() Properties {
	if p == nil {
		return nil
	}
	return deepcopy.Copy(p).(Properties)
}

// NewID returns a fresh block identifier.
func NewID() string { return uuid.NewString() }

// =============================================================================
// Block
// =============================================================================

// Block is a vertex of a behavior tree, instantiated from a node type.
//
// Type holds the node type's name and is resolved through the registry on
// every access; the block never holds a pointer to its descriptor. Category
// is copied from the type at creation time and drives the structural rules.
//
// Blocks are owned by a [Store]. Connections are managed by the store, so
// the adjacency fields are read through In, Out, Parent and Children.
type Block struct {
	ID          string
	Type        string
	Category    nodetype.Category
	Title       string
	Description string
	Properties  Properties
	X, Y        float64
	Selected    bool

	in  *Connection
	out []*Connection
}

// NewBlock creates a detached block of type t with a fresh ID. The title
// and properties are copied from the type.
func NewBlock(t *nodetype.NodeType) *Block {
	return &Block{
		ID:         NewID(),
		Type:       t.Name,
		Category:   t.Category,
		Title:      t.DisplayTitle(),
		Properties: Properties(t.Properties).Clone(),
	}
}

// IsRoot reports whether b is a root-category block.
func (b *Block) IsRoot() bool { return b.Category == nodetype.CategoryRoot }

// In returns the incoming connection, or nil.
func (b *Block) In() *Connection { return b.in }

// Out returns a copy of the outgoing connections in sibling order.
func (b *Block) Out() []*Connection { return slices.Clone(b.out) }

// OutDegree returns the number of outgoing connections.
func (b *Block) OutDegree() int { return len(b.out) }

// Parent returns the source of the incoming connection, or nil.
func (b *Block) Parent() *Block {
	if b.in == nil {
		return nil
	}
	return b.in.Source
}

// Children returns the targets of the outgoing connections in sibling order.
func (b *Block) Children() []*Block {
	children := make([]*Block, 0, len(b.out))
	for _, c := range b.out {
		if c.Target != nil {
			children = append(children, c.Target)
		}
	}
	return children
}

// Clone returns a detached copy of b with a fresh ID, the same type, title,
// description, position and deep-copied properties. The copy is unselected
// and has no connections.
func (b *Block) Clone() *Block {
	return &Block{
		ID:          NewID(),
		Type:        b.Type,
		Category:    b.Category,
		Title:       b.Title,
		Description: b.Description,
		Properties:  b.Properties.Clone(),
		X:           b.X,
		Y:           b.Y,
	}
}

// Template is the editable content of a block.
type Template struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Properties  Properties `json:"properties"`
}

// Template returns the current editable content of b.
func (b *Block) Template() Template {
	return Template{Title: b.Title, Description: b.Description, Properties: b.Properties}
}

// =============================================================================
// Connection
// =============================================================================

// Connection is a directed edge from a parent (Source) to a child (Target).
// Either endpoint is nil once the connection has been detached from it.
type Connection struct {
	Source *Block
	Target *Block
}

// =============================================================================
// Traversal
// =============================================================================

// Walk visits b and its descendants depth-first in sibling order. fn
// receives each block and its depth relative to b; returning false skips
// the block's subtree.
func Walk(b *Block, fn func(b *Block, depth int) bool) {
	var visit func(*Block, int)
	visit = func(cur *Block, depth int) {
		if !fn(cur, depth) {
			return
		}
		for _, child := range cur.Children() {
			visit(child, depth+1)
		}
	}
	if b != nil {
		visit(b, 0)
	}
}

// IsAncestor reports whether a is b or one of b's ancestors.
func IsAncestor(a, b *Block) bool {
	for cur := b; cur != nil; cur = cur.Parent() {
		if cur == a {
			return true
		}
	}
	return false
}
