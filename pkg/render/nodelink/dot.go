package nodelink

import (
	"bytes"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/matzehuels/bteditor/pkg/graph"
	"github.com/matzehuels/bteditor/pkg/nodetype"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed includes the type, description and properties in node
	// labels. When false, only the block title is shown.
	Detailed bool
}

// ToDOT converts the tree below root to Graphviz DOT format. Blocks that
// are not reachable from root are not drawn. A nil root yields an empty
// graph.
//
// Nodes are named n0, n1, ... in depth-first order rather than by block
// ID, so equal trees produce identical DOT source.
func ToDOT(root *graph.Block, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=24, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ordering=out;\n")
	buf.WriteString("  ranksep=0.5;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")

	ids := make(map[*graph.Block]string)
	var edges []string
	graph.Walk(root, func(b *graph.Block, _ int) bool {
		id := fmt.Sprintf("n%d", len(ids))
		ids[b] = id
		if parent := b.Parent(); parent != nil && b != root {
			edges = append(edges, fmt.Sprintf("  %q -> %q;\n", ids[parent], id))
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", id, strings.Join(fmtAttrs(b, fmtLabel(b, opts.Detailed)), ", "))
		return true
	})

	buf.WriteString("\n")
	for _, e := range edges {
		buf.WriteString(e)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(b *graph.Block, detailed bool) string {
	if !detailed {
		return b.Title
	}

	parts := []string{fmt.Sprintf("%s (%s)", b.Type, b.Category)}
	if b.Description != "" {
		parts = append(parts, b.Description)
	}
	for _, k := range slices.Sorted(maps.Keys(b.Properties)) {
		parts = append(parts, fmt.Sprintf("%s: %v", k, b.Properties[k]))
	}

	return b.Title + "\n" + strings.Join(parts, "\n")
}

func fmtAttrs(b *graph.Block, label string) []string {
	attrs := []string{fmt.Sprintf("label=%q", label)}
	switch b.Category {
	case nodetype.CategoryRoot:
		attrs = append(attrs, "shape=ellipse", "fillcolor=lightgrey")
	case nodetype.CategoryDecorator:
		attrs = append(attrs, "style=\"rounded,filled,dashed\"")
	case nodetype.CategoryModule:
		attrs = append(attrs, "shape=folder", "style=filled")
	case nodetype.CategoryAction:
		attrs = append(attrs, "style=filled")
	}
	return attrs
}
