// Package render turns behavior trees into images.
//
// The [nodelink] subpackage draws a tree as a Graphviz node-link diagram and
// returns SVG. [ToPDF] and [ToPNG] convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg).
//
//	dot := nodelink.ToDOT(root, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	pdf, err := render.ToPDF(ctx, svg)
//
// [nodelink]: github.com/matzehuels/bteditor/pkg/render/nodelink
package render
