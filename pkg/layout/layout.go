// Package layout positions the blocks of a behavior tree.
//
// The [Tidy] organizer lays a tree out left to right: each block sits one
// column to the right of its parent, leaves are stacked top to bottom in
// sibling order, and every parent is centered on its children. The root
// ends up at the origin.
package layout

import (
	"cmp"

	"github.com/matzehuels/bteditor/pkg/graph"
)

// Default spacing between columns and between stacked leaves.
const (
	DefaultHorizontalSpacing = 208
	DefaultVerticalSpacing   = 88
)

// Organizer repositions the subtree under root. When orderByIndex is false
// the organizer may first reorder siblings by their current vertical
// position, so a manual rearrangement becomes the sibling order.
type Organizer interface {
	Organize(root *graph.Block, orderByIndex bool)
}

// Tidy is the default organizer.
type Tidy struct {
	HorizontalSpacing float64
	VerticalSpacing   float64
	// Store reorders children when orderByIndex is false and publishes the
	// redraw. Without a store, sibling order is always kept.
	Store *graph.Store
}

// NewTidy creates a tidy organizer with default spacing.
func NewTidy(store *graph.Store) *Tidy {
	return &Tidy{
		HorizontalSpacing: DefaultHorizontalSpacing,
		VerticalSpacing:   DefaultVerticalSpacing,
		Store:             store,
	}
}

// Organize implements Organizer.
func (t *Tidy) Organize(root *graph.Block, orderByIndex bool) {
	if root == nil {
		return
	}

	slot := 0
	var place func(b *graph.Block, depth int) float64
	place = func(b *graph.Block, depth int) float64 {
		b.X = float64(depth) * t.HorizontalSpacing
		if !orderByIndex && t.Store != nil {
			t.Store.SortChildren(b, func(x, y *graph.Block) int { return cmp.Compare(x.Y, y.Y) })
		}
		kids := b.Children()
		if len(kids) == 0 {
			b.Y = float64(slot) * t.VerticalSpacing
			slot++
			return b.Y
		}
		first := place(kids[0], depth+1)
		last := first
		for _, k := range kids[1:] {
			last = place(k, depth+1)
		}
		b.Y = (first + last) / 2
		return b.Y
	}
	place(root, 0)

	dy := root.Y
	graph.Walk(root, func(b *graph.Block, _ int) bool {
		b.Y -= dy
		return true
	})

	if t.Store != nil {
		t.Store.Redraw()
	}
}
