package nodetype

import (
	"fmt"
	"slices"
	"sync"

	"github.com/matzehuels/bteditor/pkg/errors"
)

// =============================================================================
// Categories
// =============================================================================

// Category classifies a node type and decides the structural rules for
// blocks instantiated from it.
type Category string

const (
	// CategoryRoot is the entry point of a tree. Exactly one root block exists
	// per tree and it has at most one child.
	CategoryRoot Category = "root"
	// CategoryComposite has an ordered list of children.
	CategoryComposite Category = "composite"
	// CategoryDecorator wraps exactly one child.
	CategoryDecorator Category = "decorator"
	// CategoryModule references another tree document by file path.
	CategoryModule Category = "module"
	// CategoryAction is a leaf.
	CategoryAction Category = "action"
)

// Categories lists the valid categories in display order.
var Categories = []Category{
	CategoryRoot,
	CategoryComposite,
	CategoryDecorator,
	CategoryModule,
	CategoryAction,
}

// Valid reports whether c is a known category.
func (c Category) Valid() bool { return slices.Contains(Categories, c) }

// MaxChildren returns the number of outgoing connections a block of this
// category may hold, or -1 for unbounded.
func (c Category) MaxChildren() int {
	switch c {
	case CategoryComposite:
		return -1
	case CategoryRoot, CategoryDecorator:
		return 1
	default:
		return 0
	}
}

// DocumentTag is the category tag written into tree documents. The document
// format calls composites "control"; every other category keeps its name.
func (c Category) DocumentTag() string {
	if c == CategoryComposite {
		return "control"
	}
	return string(c)
}

// FromDocumentTag translates a document type tag into a category. Only the
// "control" tag is rewritten.
func FromDocumentTag(tag string) Category {
	if tag == "control" {
		return CategoryComposite
	}
	return Category(tag)
}

// =============================================================================
// NodeType
// =============================================================================

// NodeType is a named, reusable descriptor from which blocks are instantiated.
type NodeType struct {
	Name     string         `json:"name" toml:"name"`
	Title    string         `json:"title,omitempty" toml:"title"`
	Category Category       `json:"category" toml:"category"`
	// Properties holds default parameter values copied into new blocks.
	Properties map[string]any `json:"properties,omitempty" toml:"properties"`
	// Builtin types ship with the editor and cannot be renamed or removed.
	Builtin bool `json:"builtin,omitempty" toml:"-"`
}

// DisplayTitle returns the title if set, otherwise the name.
func (t *NodeType) DisplayTitle() string {
	if t.Title != "" {
		return t.Title
	}
	return t.Name
}

// RootName is the name of the built-in root node type.
const RootName = "Root"

// Root returns the built-in root node type.
func Root() NodeType {
	return NodeType{Name: RootName, Title: RootName, Category: CategoryRoot, Builtin: true}
}

// =============================================================================
// Registry
// =============================================================================

// Registry is the catalog of node types, keyed by exact name. Registration
// order is preserved by List.
//
// Registry only manages descriptors. Keeping existing blocks consistent after
// a rename or removal is the caller's job (see editor.Editor).
// Registry is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	types map[string]*NodeType
	order []string
}

// NewRegistry creates a registry holding only the built-in root type.
func NewRegistry() *Registry {
	r := &Registry{types: make(map[string]*NodeType)}
	root := Root()
	r.types[root.Name] = &root
	r.order = append(r.order, root.Name)
	return r
}

// duplicateName builds the error reported for an already-used name.
func duplicateName(name string) error {
	return errors.New(errors.ErrCodeDuplicateName, "Node named %q already registered.", name)
}

// Register inserts a copy of t and returns the stored descriptor.
// It fails with DUPLICATE_NAME if a type with that name exists.
func (r *Registry) Register(t NodeType) (*NodeType, error) {
	if err := errors.ValidateNodeName(t.Name); err != nil {
		return nil, err
	}
	if !t.Category.Valid() {
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown node category %q", t.Category)
	}
	if t.Category == CategoryRoot && !t.Builtin {
		return nil, errors.New(errors.ErrCodeInvalidInput, "root node types cannot be registered")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.types[t.Name]; exists {
		return nil, duplicateName(t.Name)
	}
	stored := t
	stored.Properties = copyProperties(t.Properties)
	r.types[t.Name] = &stored
	r.order = append(r.order, t.Name)
	return &stored, nil
}

// Rename changes a type's name and title in place; the *NodeType pointer
// stays the same. It returns a copy of the descriptor as it was before the
// rename so callers can update blocks that still show the old title.
//
// It fails with UNKNOWN_NODE_TYPE if oldName is not registered and with
// DUPLICATE_NAME if newName is taken by another type. On failure the
// registry is unchanged.
func (r *Registry) Rename(oldName, newName, newTitle string) (NodeType, error) {
	if err := errors.ValidateNodeName(newName); err != nil {
		return NodeType{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.types[oldName]
	if !ok {
		return NodeType{}, errors.New(errors.ErrCodeUnknownNodeType, "node type %q is not registered", oldName)
	}
	if t.Builtin {
		return NodeType{}, errors.New(errors.ErrCodeInvalidInput, "built-in node type %q cannot be renamed", oldName)
	}
	if oldName != newName {
		if _, exists := r.types[newName]; exists {
			return NodeType{}, duplicateName(newName)
		}
	}

	before := *t
	delete(r.types, oldName)
	t.Name = newName
	t.Title = newTitle
	r.types[newName] = t
	r.order[slices.Index(r.order, oldName)] = newName
	return before, nil
}

// Remove deletes the named type and returns it. Removing an unknown or
// built-in type is a no-op that returns false.
func (r *Registry) Remove(name string) (*NodeType, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.types[name]
	if !ok || t.Builtin {
		return nil, false
	}
	delete(r.types, name)
	r.order = slices.DeleteFunc(r.order, func(s string) bool { return s == name })
	return t, true
}

// Get returns the type registered under exactly name.
func (r *Registry) Get(name string) (*NodeType, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.types[name]
	return t, ok
}

// MustGet is like Get but returns an UNKNOWN_NODE_TYPE error when missing.
func (r *Registry) MustGet(name string) (*NodeType, error) {
	if t, ok := r.Get(name); ok {
		return t, nil
	}
	return nil, errors.New(errors.ErrCodeUnknownNodeType, "node type %q is not registered", name)
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// List returns the registered types in registration order.
func (r *Registry) List() []*NodeType {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*NodeType, len(r.order))
	for i, name := range r.order {
		out[i] = r.types[name]
	}
	return out
}

// Custom returns the user-defined (non built-in) types in registration order.
func (r *Registry) Custom() []NodeType {
	var out []NodeType
	for _, t := range r.List() {
		if !t.Builtin {
			out = append(out, *t)
		}
	}
	return out
}

// Len returns the number of registered types, including built-ins.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.types)
}

// String implements fmt.Stringer for debugging.
func (r *Registry) String() string {
	return fmt.Sprintf("Registry(%d types)", r.Len())
}

func copyProperties(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
