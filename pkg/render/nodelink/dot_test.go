package nodelink

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/matzehuels/bteditor/pkg/event"
	"github.com/matzehuels/bteditor/pkg/graph"
	"github.com/matzehuels/bteditor/pkg/nodetype"
)

func newTree(t *testing.T) (*graph.Block, map[string]*graph.Block) {
	t.Helper()
	reg := nodetype.NewRegistry()
	store := graph.NewStore(event.Nop)
	add := func(name string, cat nodetype.Category) *graph.Block {
		typ, ok := reg.Get(name)
		if !ok {
			var err error
			if typ, err = reg.Register(nodetype.NodeType{Name: name, Category: cat}); err != nil {
				t.Fatal(err)
			}
		}
		return store.AddBlock(typ, 0, 0)
	}
	connect := func(p, c *graph.Block) {
		if _, err := store.AddConnection(p, c); err != nil {
			t.Fatal(err)
		}
	}

	blocks := map[string]*graph.Block{
		"root": add(nodetype.RootName, nodetype.CategoryRoot),
		"seq":  add("Sequence", nodetype.CategoryComposite),
		"inv":  add("Inverter", nodetype.CategoryDecorator),
		"wait": add("Wait", nodetype.CategoryAction),
		"sub":  add("Patrol", nodetype.CategoryModule),
		"idle": add("Idle", nodetype.CategoryAction),
	}
	connect(blocks["root"], blocks["seq"])
	connect(blocks["seq"], blocks["inv"])
	connect(blocks["inv"], blocks["wait"])
	connect(blocks["seq"], blocks["sub"])
	return blocks["root"], blocks
}

func TestToDOT_Basic(t *testing.T) {
	root, _ := newTree(t)

	dot := ToDOT(root, Options{})

	if !strings.Contains(dot, "digraph G") {
		t.Error("ToDOT() output missing digraph declaration")
	}
	for i, title := range []string{"Root", "Sequence", "Inverter", "Wait", "Patrol"} {
		node := fmt.Sprintf(`"n%d" [label=%q`, i, title)
		if !strings.Contains(dot, node) {
			t.Errorf("ToDOT() output missing %s", node)
		}
	}
	if strings.Contains(dot, "Idle") {
		t.Error("ToDOT() should skip blocks outside the tree")
	}
	edges := []string{`"n0" -> "n1"`, `"n1" -> "n2"`, `"n2" -> "n3"`, `"n1" -> "n4"`}
	last := -1
	for _, e := range edges {
		i := strings.Index(dot, e)
		if i < 0 {
			t.Fatalf("ToDOT() output missing edge %s", e)
		}
		if i < last {
			t.Errorf("edge %s out of order", e)
		}
		last = i
	}
}

func TestToDOT_Deterministic(t *testing.T) {
	a, _ := newTree(t)
	b, _ := newTree(t)

	if ToDOT(a, Options{Detailed: true}) != ToDOT(b, Options{Detailed: true}) {
		t.Error("equal trees should produce identical DOT")
	}
}

func TestToDOT_Styles(t *testing.T) {
	root, _ := newTree(t)

	dot := ToDOT(root, Options{})

	for _, want := range []string{"shape=ellipse", "dashed", "shape=folder", "ordering=out"} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() output missing %q", want)
		}
	}
}

func TestToDOT_NilRoot(t *testing.T) {
	dot := ToDOT(nil, Options{})
	if strings.Contains(dot, "->") || strings.Contains(dot, "label=") {
		t.Errorf("ToDOT(nil) = %s", dot)
	}
}

func TestFmtLabel(t *testing.T) {
	b := &graph.Block{
		Type:        "Wait",
		Title:       "Wait at door",
		Category:    nodetype.CategoryAction,
		Description: "pause",
		Properties:  graph.Properties{"seconds": 2, "blocking": true},
	}

	if got := fmtLabel(b, false); got != "Wait at door" {
		t.Errorf("fmtLabel() simple = %q", got)
	}
	want := "Wait at door\nWait (action)\npause\nblocking: true\nseconds: 2"
	if got := fmtLabel(b, true); got != want {
		t.Errorf("fmtLabel() detailed = %q, want %q", got, want)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	in := []byte(`<svg width="10pt" height="20pt" viewBox="0.00 0.00 100.00 50.00" xmlns="x"><g/></svg>`)

	out := string(normalizeViewBox(in))

	if !strings.Contains(out, `viewBox="0 0 100.00 50.00" width="100" height="50"`) {
		t.Errorf("normalizeViewBox() = %s", out)
	}
	if got := normalizeViewBox([]byte("<svg>")); string(got) != "<svg>" {
		t.Error("svg without viewBox should pass through")
	}
}

func TestRenderSVG(t *testing.T) {
	root, _ := newTree(t)

	svg, err := RenderSVG(context.Background(), ToDOT(root, Options{}))
	if err != nil {
		t.Fatalf("RenderSVG() error: %v", err)
	}
	if !strings.HasPrefix(strings.TrimSpace(string(svg)), "<") || !strings.Contains(string(svg), "<svg") {
		t.Errorf("RenderSVG() did not return SVG: %.80s", svg)
	}
	if !strings.Contains(string(svg), "Sequence") {
		t.Error("RenderSVG() output missing label")
	}
}

func TestRenderUnknownFormat(t *testing.T) {
	if _, err := Render(context.Background(), "digraph G {}", "gif", 1); err == nil {
		t.Error("expected error for unknown format")
	}
}
