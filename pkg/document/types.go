package document

import (
	"encoding/json"
	"slices"
)

// Type tags used in documents. Every other tag is the category name.
const (
	TagControl = "control"
	TagModule  = "module"
)

// Document is the persisted, portable form of one behavior tree.
type Document struct {
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description" yaml:"description"`
	Scripts     []string `json:"scripts" yaml:"scripts"`
	Root        *Node    `json:"root" yaml:"root"`
}

// Node is one node of a document tree.
//
// Module nodes carry only Type and Path. Control nodes carry Children;
// decorator nodes carry at most one Child; action nodes carry neither.
type Node struct {
	Title       string         `json:"title,omitempty" yaml:"title,omitempty"`
	Type        string         `json:"type" yaml:"type"`
	Name        string         `json:"name,omitempty" yaml:"name,omitempty"`
	Path        string         `json:"path,omitempty" yaml:"path,omitempty"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty" yaml:"parameters,omitempty"`
	Children    []*Node        `json:"children,omitempty" yaml:"children,omitempty"`
	Child       *Node          `json:"child,omitempty" yaml:"child,omitempty"`
}

// wireNode fixes the JSON key order and distinguishes absent from empty
// parameters and children.
type wireNode struct {
	Title       string          `json:"title,omitempty"`
	Type        string          `json:"type"`
	Name        string          `json:"name,omitempty"`
	Path        string          `json:"path,omitempty"`
	Description string          `json:"description,omitempty"`
	Parameters  *map[string]any `json:"parameters,omitempty"`
	Children    *[]*Node        `json:"children,omitempty"`
	Child       *Node           `json:"child,omitempty"`
}

// MarshalJSON writes an empty parameters object when Parameters is empty
// but not nil, and always writes children for control nodes.
func (n Node) MarshalJSON() ([]byte, error) {
	w := wireNode{
		Title:       n.Title,
		Type:        n.Type,
		Name:        n.Name,
		Path:        n.Path,
		Description: n.Description,
		Child:       n.Child,
	}
	if n.Parameters != nil {
		w.Parameters = &n.Parameters
	}
	if n.Children != nil || n.Type == TagControl {
		children := n.Children
		if children == nil {
			children = []*Node{}
		}
		w.Children = &children
	}
	return json.Marshal(w)
}

// MarshalJSON always writes scripts as an array.
func (d Document) MarshalJSON() ([]byte, error) {
	type plain Document
	out := plain(d)
	if out.Scripts == nil {
		out.Scripts = []string{}
	}
	return json.Marshal(out)
}

// Count returns the number of nodes in the tree rooted at n.
func (n *Node) Count() int {
	if n == nil {
		return 0
	}
	total := 1
	for _, c := range n.Children {
		total += c.Count()
	}
	return total + n.Child.Count()
}

// Kids returns the children of n in order, whichever shape it uses.
func (n *Node) Kids() []*Node {
	if n.Child != nil {
		return append(slices.Clone(n.Children), n.Child)
	}
	return n.Children
}

// Key returns the registry name the node resolves to: the path for module
// nodes, the name otherwise.
func (n *Node) Key() string {
	if n.Type == TagModule {
		return n.Path
	}
	return n.Name
}
