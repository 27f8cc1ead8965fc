// Package nodelink renders behavior trees as node-link diagrams.
//
// # Overview
//
// This package produces top-down tree drawings using Graphviz: every block
// becomes a box and every connection an arrow from parent to child. Child
// order is preserved, so composites read left to right in execution order.
//
// # Usage
//
// Convert a tree to DOT format, then render to SVG:
//
//	dot := nodelink.ToDOT(store.Root(), nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// PDF and PNG go through SVG first:
//
//	pdf, err := nodelink.RenderPDF(ctx, dot)
//	png, err := nodelink.Render(ctx, dot, nodelink.FormatPNG, 2.0)
//
// # Styles
//
// The node shape follows the block category:
//
//   - root: filled grey ellipse
//   - composite: rounded box
//   - decorator: dashed rounded box
//   - module: folder
//   - action: plain box
//
// With [Options.Detailed] set, labels also list the block type, description
// and properties.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
