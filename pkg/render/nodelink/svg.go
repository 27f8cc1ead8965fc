package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/bteditor/pkg/render"
)

// Output formats accepted by [Render].
const (
	FormatSVG = "svg"
	FormatPDF = "pdf"
	FormatPNG = "png"
)

// Render draws dot in format. scale applies to PNG only.
func Render(ctx context.Context, dot, format string, scale float64) ([]byte, error) {
	switch format {
	case FormatSVG:
		return RenderSVG(ctx, dot)
	case FormatPDF:
		return RenderPDF(ctx, dot)
	case FormatPNG:
		return RenderPNG(ctx, dot, scale)
	}
	return nil, fmt.Errorf("unknown render format %q", format)
}

// RenderSVG lays out dot with the embedded Graphviz and returns SVG whose
// viewBox starts at the origin.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render SVG: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

// RenderPDF renders dot to SVG and converts it with rsvg-convert.
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG renders dot to SVG and rasterizes it with rsvg-convert at
// scale times the SVG size.
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}

// svgOpenRe matches the opening svg tag and captures the width and height
// of its viewBox.
var svgOpenRe = regexp.MustCompile(`<svg[^>]*viewBox="[0-9.]+\s+[0-9.]+\s+([0-9.]+)\s+([0-9.]+)"[^>]*>`)

// normalizeViewBox replaces the svg tag Graphviz writes, which offsets the
// viewBox and sizes the drawing in points, with one sized in pixels and
// anchored at the origin.
func normalizeViewBox(svg []byte) []byte {
	loc := svgOpenRe.FindSubmatchIndex(svg)
	if loc == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(svg[loc[2]:loc[3]]), 64)
	h, _ := strconv.ParseFloat(string(svg[loc[4]:loc[5]]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	out := make([]byte, 0, len(svg))
	out = append(out, svg[:loc[0]]...)
	out = append(out, tag...)
	return append(out, svg[loc[1]:]...)
}
