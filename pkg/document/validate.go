package document

import (
	"fmt"

	"github.com/matzehuels/bteditor/pkg/errors"
	"github.com/matzehuels/bteditor/pkg/nodetype"
)

// Validate checks that d can be imported against reg without leaving a
// partial graph behind. Nodes whose type is not registered yet are checked
// against the category their tag would register. The registry is not
// modified.
//
// Every failure has code MALFORMED_DOCUMENT and names the offending node by
// its position, e.g. "root.children[1].child".
func Validate(d *Document, reg *nodetype.Registry) error {
	return newValidator(reg).document(d, "root")
}

// ValidateSet validates documents that will be imported one after another
// into the same registry. A type first met in one document constrains the
// documents after it. Positions are prefixed with the document index, e.g.
// "trees[2].root.child".
func ValidateSet(docs []*Document, reg *nodetype.Registry) error {
	v := newValidator(reg)
	for i, d := range docs {
		if err := v.document(d, fmt.Sprintf("trees[%d].root", i)); err != nil {
			return err
		}
	}
	return nil
}

func newValidator(reg *nodetype.Registry) *validator {
	return &validator{reg: reg, pending: make(map[string]nodetype.Category)}
}

func (v *validator) document(d *Document, at string) error {
	if d == nil {
		return errors.New(errors.ErrCodeMalformedDocument, "document is empty")
	}
	if d.Root == nil {
		return nil
	}
	return v.node(d.Root, at)
}

type validator struct {
	reg *nodetype.Registry
	// pending holds types the import would register, so the first
	// occurrence of a name decides its category as it would on import.
	pending map[string]nodetype.Category
}

func malformed(at, format string, args ...any) error {
	return errors.New(errors.ErrCodeMalformedDocument, "%s: %s", at, fmt.Sprintf(format, args...))
}

func (v *validator) category(n *Node) (nodetype.Category, error) {
	key := n.Key()
	if t, ok := v.reg.Get(key); ok {
		return t.Category, nil
	}
	if c, ok := v.pending[key]; ok {
		return c, nil
	}
	c := nodetype.FromDocumentTag(n.Type)
	if !c.Valid() || c == nodetype.CategoryRoot {
		return "", fmt.Errorf("unknown node type tag %q", n.Type)
	}
	v.pending[key] = c
	return c, nil
}

func (v *validator) node(n *Node, at string) error {
	if n == nil {
		return malformed(at, "null node")
	}
	if n.Type == "" {
		return malformed(at, "missing type")
	}

	if n.Type == TagModule {
		if n.Path == "" {
			return malformed(at, "module node without path")
		}
		if err := errors.ValidateModulePath(n.Path); err != nil {
			return malformed(at, "%s", errors.UserMessage(err))
		}
		// The path is registered as the module's type name.
		if err := errors.ValidateNodeName(n.Path); err != nil {
			return malformed(at, "%s", errors.UserMessage(err))
		}
	} else {
		if n.Name == "" {
			return malformed(at, "missing name")
		}
		if err := errors.ValidateNodeName(n.Name); err != nil {
			return malformed(at, "%s", errors.UserMessage(err))
		}
	}

	cat, err := v.category(n)
	if err != nil {
		return malformed(at, "%s", err)
	}
	if cat == nodetype.CategoryRoot {
		return malformed(at, "%q is a root type and cannot appear inside a tree", n.Key())
	}

	if len(n.Children) > 0 && n.Child != nil {
		return malformed(at, "node has both children and child")
	}
	switch cat {
	case nodetype.CategoryComposite:
		if n.Child != nil {
			return malformed(at, "composite %q must list its children under \"children\"", n.Key())
		}
	case nodetype.CategoryDecorator:
		if len(n.Children) > 0 {
			return malformed(at, "decorator %q takes a single \"child\"", n.Key())
		}
	default:
		if len(n.Children) > 0 || n.Child != nil {
			return malformed(at, "%s %q cannot have children", cat, n.Key())
		}
	}

	for i, c := range n.Children {
		if err := v.node(c, fmt.Sprintf("%s.children[%d]", at, i)); err != nil {
			return err
		}
	}
	if n.Child != nil {
		return v.node(n.Child, at+".child")
	}
	return nil
}
