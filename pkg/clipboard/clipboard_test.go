package clipboard

import (
	"testing"

	"github.com/matzehuels/bteditor/pkg/graph"
	"github.com/matzehuels/bteditor/pkg/nodetype"
)

var (
	rootType = nodetype.Root()
	seqType  = nodetype.NodeType{Name: "Sequence", Category: nodetype.CategoryComposite}
	waitType = nodetype.NodeType{Name: "Wait", Category: nodetype.CategoryAction, Properties: map[string]any{"ms": 1}}
)

// chain builds root → outside → A → B → C and selects A, B and C.
func chain(t *testing.T) (s *graph.Store, outside, a, b, c *graph.Block) {
	t.Helper()
	s = graph.NewStore(nil)
	root := s.AddBlock(&rootType, 0, 0)
	outside = s.AddBlock(&seqType, 100, 0)
	a = s.AddBlock(&seqType, 200, 0)
	b = s.AddBlock(&seqType, 300, 0)
	c = s.AddBlock(&waitType, 400, 0)
	for _, pair := range [][2]*graph.Block{{root, outside}, {outside, a}, {a, b}, {b, c}} {
		if _, err := s.AddConnection(pair[0], pair[1]); err != nil {
			t.Fatal(err)
		}
	}
	s.DeselectAll()
	s.Select(a)
	s.Select(b)
	s.Select(c)
	return s, outside, a, b, c
}

func TestCopyPasteReproducesInternalTopology(t *testing.T) {
	s, outside, a, b, c := chain(t)
	conns := len(s.Connections())
	cb := New()

	cb.Copy(s)
	clones := cb.Paste(s)

	if len(clones) != 3 {
		t.Fatalf("clones = %d, want 3", len(clones))
	}
	a2, b2, c2 := clones[0], clones[1], clones[2]
	if got := len(s.Connections()); got != conns+2 {
		t.Fatalf("connections = %d, want %d", got, conns+2)
	}
	if a2.Parent() != nil {
		t.Error("A' must not be connected to a block outside the clipboard")
	}
	if kids := a2.Children(); len(kids) != 1 || kids[0] != b2 {
		t.Error("A'→B' missing")
	}
	if kids := b2.Children(); len(kids) != 1 || kids[0] != c2 {
		t.Error("B'→C' missing")
	}
	if c2.OutDegree() != 0 {
		t.Error("C' should be a leaf")
	}
	if outside.OutDegree() != 1 || a.Parent() != outside || b.Parent() != a || c.Parent() != b {
		t.Error("originals changed")
	}
	if a2.Type != a.Type || a2.ID == a.ID {
		t.Error("clone should share type but not id")
	}
}

func TestPasteSelectionPositionAndSnap(t *testing.T) {
	s, _, a, b, c := chain(t)
	cb := New()
	cb.SnapX, cb.SnapY = 12, 12

	cb.Copy(s)
	clones := cb.Paste(s)

	for _, orig := range []*graph.Block{a, b, c} {
		if orig.Selected {
			t.Error("originals should be deselected")
		}
	}
	sel := s.Selected()
	if len(sel) != 3 {
		t.Fatalf("selection = %d, want 3", len(sel))
	}
	for i, clone := range clones {
		if sel[i] != clone {
			t.Errorf("selection[%d] is not clone %d", i, i)
		}
	}
	// A at (200,0) → (250,50) → snapped to (240,48).
	if clones[0].X != 240 || clones[0].Y != 48 {
		t.Errorf("A' at (%v,%v), want (240,48)", clones[0].X, clones[0].Y)
	}
}

func TestCopySkipsRoot(t *testing.T) {
	s := graph.NewStore(nil)
	root := s.AddBlock(&rootType, 0, 0)
	w := s.AddBlock(&waitType, 0, 0)
	s.Select(root)

	cb := New()
	cb.Copy(s)
	if cb.Buffer().Len() != 1 || cb.Buffer().Blocks()[0] != w {
		t.Errorf("buffer = %v, want only the non-root block", cb.Buffer().Blocks())
	}
}

func TestCutKeepsTopologyForPaste(t *testing.T) {
	s, outside, a, b, c := chain(t)
	cb := New()

	cb.Cut(s)

	for _, blk := range []*graph.Block{a, b, c} {
		if s.Contains(blk) {
			t.Fatalf("%s still in store after cut", blk.Type)
		}
	}
	if outside.OutDegree() != 0 {
		t.Error("connection to cut block not removed")
	}
	if len(s.Selected()) != 0 {
		t.Error("selection not cleared")
	}

	clones := cb.Paste(s)
	if len(clones) != 3 {
		t.Fatalf("clones = %d", len(clones))
	}
	if clones[0].OutDegree() != 1 || clones[1].OutDegree() != 1 {
		t.Error("internal connections lost across cut")
	}
}

func TestPasteTwiceCreatesIndependentCopies(t *testing.T) {
	s, _, _, _, _ := chain(t)
	cb := New()
	cb.Copy(s)

	first := cb.Paste(s)
	second := cb.Paste(s)
	if first[0] == second[0] || first[0].ID == second[0].ID {
		t.Error("second paste reused clones")
	}
	if second[0].Children()[0] != second[1] {
		t.Error("second paste not wired to its own clones")
	}
	first[0].Properties = graph.Properties{"x": 1}
	if second[0].Properties != nil && second[0].Properties["x"] == 1 {
		t.Error("clones share properties")
	}
}

func TestPasteEmpty(t *testing.T) {
	s := graph.NewStore(nil)
	if clones := New().Paste(s); clones != nil {
		t.Errorf("Paste() on empty clipboard = %v", clones)
	}
}

func TestDuplicatePreservesBuffer(t *testing.T) {
	s, _, a, _, _ := chain(t)
	other := s.AddBlock(&waitType, 0, 0)
	cb := New()
	cb.Copy(s)
	before := cb.Buffer().Blocks()

	s.DeselectAll()
	s.Select(a)
	clones := cb.Duplicate(s)

	if len(clones) != 1 || clones[0].Type != a.Type {
		t.Fatalf("Duplicate() = %v", clones)
	}
	after := cb.Buffer().Blocks()
	if len(after) != len(before) || after[0] != before[0] {
		t.Error("Duplicate() changed the clipboard")
	}
	if len(before) != 1 || before[0] != other {
		t.Errorf("buffer = %v, want the block selected at copy time", before)
	}
}

func TestDropRemovesTypeFromBuffer(t *testing.T) {
	s, _, a, b, c := chain(t)
	cb := New()
	cb.Cut(s)
	saved := cb.Buffer()

	if n := cb.Drop("Wait"); n != 1 {
		t.Fatalf("Drop() = %d, want 1", n)
	}
	if got := cb.Buffer().Blocks(); len(got) != 2 || got[0] != a || got[1] != b {
		t.Fatalf("buffer = %v", got)
	}
	if saved.Len() != 3 {
		t.Error("Drop() changed a buffer saved before it")
	}

	clones := cb.Paste(s)
	if len(clones) != 2 {
		t.Fatalf("clones = %d", len(clones))
	}
	for _, clone := range clones {
		if clone.Type == c.Type {
			t.Error("pasted a block of the dropped type")
		}
	}
	if clones[0].OutDegree() != 1 || clones[1].OutDegree() != 0 {
		t.Error("edges to dropped blocks should be gone, the rest kept")
	}

	if cb.Drop("Wait") != 0 {
		t.Error("second Drop() should find nothing")
	}
}
