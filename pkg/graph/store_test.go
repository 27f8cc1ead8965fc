package graph

import (
	"testing"

	"github.com/matzehuels/bteditor/pkg/errors"
	"github.com/matzehuels/bteditor/pkg/event"
	"github.com/matzehuels/bteditor/pkg/nodetype"
)

var (
	rootType      = nodetype.Root()
	sequenceType  = nodetype.NodeType{Name: "Sequence", Category: nodetype.CategoryComposite}
	inverterType  = nodetype.NodeType{Name: "Inverter", Category: nodetype.CategoryDecorator}
	waitType      = nodetype.NodeType{Name: "Wait", Title: "Wait", Category: nodetype.CategoryAction, Properties: map[string]any{"ms": 100}}
	subtreeModule = nodetype.NodeType{Name: "trees/guard.json", Category: nodetype.CategoryModule}
)

func newTestStore() (*Store, *event.Recorder) {
	rec := &event.Recorder{}
	return NewStore(rec), rec
}

func mustConnect(t *testing.T, s *Store, a, b *Block) *Connection {
	t.Helper()
	c, err := s.AddConnection(a, b)
	if err != nil {
		t.Fatalf("AddConnection(%s, %s) error = %v", a.Type, b.Type, err)
	}
	return c
}

func TestAddBlockSelectsOnlyNewBlock(t *testing.T) {
	s, rec := newTestStore()

	a := s.AddBlock(&waitType, 10, 20)
	b := s.AddBlock(&waitType, 30, 40)

	if a.ID == "" || a.ID == b.ID {
		t.Fatalf("ids not unique: %q %q", a.ID, b.ID)
	}
	if a.X != 10 || a.Y != 20 {
		t.Errorf("position = (%v,%v)", a.X, a.Y)
	}
	if a.Selected || !b.Selected {
		t.Errorf("selection a=%v b=%v, want only b", a.Selected, b.Selected)
	}
	if got := s.Selected(); len(got) != 1 || got[0] != b {
		t.Errorf("Selected() = %v", got)
	}
	if a.Title != "Wait" || a.Properties["ms"] != 100 {
		t.Errorf("block not initialised from type: %+v", a)
	}
	if n := len(rec.Named(event.BlockAdded)); n != 2 {
		t.Errorf("blockadded events = %d, want 2", n)
	}
	if n := len(rec.Named(event.BlockDeselected)); n != 1 {
		t.Errorf("blockdeselected events = %d, want 1", n)
	}
}

func TestBlockPropertiesAreIndependent(t *testing.T) {
	s, _ := newTestStore()
	a := s.AddBlock(&waitType, 0, 0)
	a.Properties["ms"] = 5

	if waitType.Properties["ms"] != 100 {
		t.Error("block properties alias the node type defaults")
	}
}

func TestAddConnectionOrder(t *testing.T) {
	s, _ := newTestStore()
	seq := s.AddBlock(&sequenceType, 0, 0)
	c1 := s.AddBlock(&waitType, 0, 0)
	c2 := s.AddBlock(&waitType, 0, 0)
	c3 := s.AddBlock(&waitType, 0, 0)

	mustConnect(t, s, seq, c1)
	mustConnect(t, s, seq, c2)
	mustConnect(t, s, seq, c3)

	children := seq.Children()
	if len(children) != 3 || children[0] != c1 || children[1] != c2 || children[2] != c3 {
		t.Errorf("children out of order")
	}
	if c2.Parent() != seq {
		t.Errorf("Parent() = %v, want seq", c2.Parent())
	}
	if len(s.Connections()) != 3 {
		t.Errorf("Connections() = %d", len(s.Connections()))
	}
}

func TestAddConnectionRules(t *testing.T) {
	tests := []struct {
		name  string
		build func(s *Store) (*Block, *Block)
	}{
		{"second parent", func(s *Store) (*Block, *Block) {
			a := s.AddBlock(&sequenceType, 0, 0)
			b := s.AddBlock(&sequenceType, 0, 0)
			w := s.AddBlock(&waitType, 0, 0)
			s.AddConnection(a, w)
			return b, w
		}},
		{"decorator second child", func(s *Store) (*Block, *Block) {
			d := s.AddBlock(&inverterType, 0, 0)
			s.AddConnection(d, s.AddBlock(&waitType, 0, 0))
			return d, s.AddBlock(&waitType, 0, 0)
		}},
		{"root second child", func(s *Store) (*Block, *Block) {
			r := s.AddBlock(&rootType, 0, 0)
			s.AddConnection(r, s.AddBlock(&waitType, 0, 0))
			return r, s.AddBlock(&waitType, 0, 0)
		}},
		{"action child", func(s *Store) (*Block, *Block) {
			return s.AddBlock(&waitType, 0, 0), s.AddBlock(&waitType, 0, 0)
		}},
		{"module child", func(s *Store) (*Block, *Block) {
			return s.AddBlock(&subtreeModule, 0, 0), s.AddBlock(&waitType, 0, 0)
		}},
		{"root as child", func(s *Store) (*Block, *Block) {
			return s.AddBlock(&sequenceType, 0, 0), s.AddBlock(&rootType, 0, 0)
		}},
		{"self loop", func(s *Store) (*Block, *Block) {
			a := s.AddBlock(&sequenceType, 0, 0)
			return a, a
		}},
		{"cycle", func(s *Store) (*Block, *Block) {
			a := s.AddBlock(&sequenceType, 0, 0)
			b := s.AddBlock(&sequenceType, 0, 0)
			c := s.AddBlock(&sequenceType, 0, 0)
			s.AddConnection(a, b)
			s.AddConnection(b, c)
			return c, a
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestStore()
			src, dst := tt.build(s)
			before := len(s.Connections())
			srcOut, dstIn := src.OutDegree(), dst.In()

			_, err := s.AddConnection(src, dst)
			if !errors.Is(err, errors.ErrCodeInvalidConnection) {
				t.Fatalf("AddConnection() error = %v, want INVALID_CONNECTION", err)
			}
			if len(s.Connections()) != before || src.OutDegree() != srcOut || dst.In() != dstIn {
				t.Error("rejected connection modified the graph")
			}
		})
	}
}

func TestAddConnectionForeignBlock(t *testing.T) {
	s, _ := newTestStore()
	seq := s.AddBlock(&sequenceType, 0, 0)
	stray := NewBlock(&waitType)

	_, err := s.AddConnection(seq, stray)
	if !errors.Is(err, errors.ErrCodeUnknownBlock) {
		t.Errorf("error = %v, want UNKNOWN_BLOCK", err)
	}
	if seq.OutDegree() != 0 {
		t.Error("connection attached to foreign block")
	}
}

func TestRemoveBlock(t *testing.T) {
	s, rec := newTestStore()
	root := s.AddBlock(&rootType, 0, 0)
	seq := s.AddBlock(&sequenceType, 0, 0)
	a := s.AddBlock(&waitType, 0, 0)
	b := s.AddBlock(&waitType, 0, 0)
	mustConnect(t, s, root, seq)
	mustConnect(t, s, seq, a)
	mustConnect(t, s, seq, b)
	rec.Reset()

	s.RemoveBlock(seq)

	if s.Contains(seq) {
		t.Error("seq still in store")
	}
	if s.Len() != 3 {
		t.Errorf("Len() = %d, want 3 (siblings and children survive)", s.Len())
	}
	if root.OutDegree() != 0 || a.In() != nil || b.In() != nil {
		t.Error("connections not detached")
	}
	if len(s.Connections()) != 0 {
		t.Errorf("Connections() = %d, want 0", len(s.Connections()))
	}

	removed := rec.Named(event.ConnectionRemoved)
	if len(removed) != 3 {
		t.Fatalf("connectionremoved = %d, want 3", len(removed))
	}
	first := removed[0].Target.(*Connection)
	second := removed[1].Target.(*Connection)
	if first.Target != seq {
		t.Error("incoming connection should be removed first")
	}
	if second.Target != b {
		t.Error("outgoing connections should be removed in reverse order")
	}
	if seq.Selected {
		t.Error("removed block still selected")
	}

	rec.Reset()
	s.RemoveBlock(seq)
	if len(rec.Events()) != 0 {
		t.Error("removing an absent block should be a no-op")
	}
}

func TestRemoveConnectionPartial(t *testing.T) {
	s, _ := newTestStore()
	seq := s.AddBlock(&sequenceType, 0, 0)
	w := s.AddBlock(&waitType, 0, 0)
	c := mustConnect(t, s, seq, w)

	c.Source = nil
	s.RemoveConnection(c)
	if w.In() != nil {
		t.Error("target still attached")
	}
	if len(s.Connections()) != 0 {
		t.Error("connection still stored")
	}

	s.RemoveConnection(nil)
	s.RemoveConnection(c)
}

func TestSelection(t *testing.T) {
	s, rec := newTestStore()
	a := s.AddBlock(&waitType, 0, 0)
	b := s.AddBlock(&waitType, 0, 0)
	c := s.AddBlock(&waitType, 0, 0)
	s.DeselectAll()
	rec.Reset()

	s.Select(b)
	s.Select(b)
	if n := len(rec.Named(event.BlockSelected)); n != 1 {
		t.Errorf("idempotent Select published %d events", n)
	}

	s.SelectAll()
	if got := s.Selected(); len(got) != 3 || got[0] != b || got[1] != a || got[2] != c {
		t.Errorf("selection order = %v", got)
	}

	rec.Reset()
	s.DeselectAll()
	des := rec.Named(event.BlockDeselected)
	if len(des) != 3 || des[0].Target != c || des[2].Target != b {
		t.Error("DeselectAll should run most recent first")
	}

	s.Deselect(a)
	s.InvertSelection()
	if !a.Selected || !b.Selected || !c.Selected {
		t.Error("InvertSelection() should select all")
	}
	s.InvertSelection(b)
	if b.Selected || !a.Selected {
		t.Error("InvertSelection(b) should toggle only b")
	}
}

func TestSnap(t *testing.T) {
	tests := []struct {
		name         string
		x, y         float64
		stepX, stepY float64
		wantX, wantY float64
	}{
		{"basic", 13, 27, 10, 10, 10, 20},
		{"already aligned", 20, 40, 10, 10, 20, 40},
		{"separate steps", 13, 27, 12, 5, 12, 25},
		{"negative rounds down", -13, -1, 10, 10, -20, -10},
		{"zero step", 13, 27, 0, 10, 13, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, _ := newTestStore()
			b := s.AddBlock(&waitType, tt.x, tt.y)
			s.Snap(tt.stepX, tt.stepY, b)
			if b.X != tt.wantX || b.Y != tt.wantY {
				t.Errorf("Snap = (%v,%v), want (%v,%v)", b.X, b.Y, tt.wantX, tt.wantY)
			}
		})
	}
}

func TestSnapDefaultsToAllBlocks(t *testing.T) {
	s, _ := newTestStore()
	a := s.AddBlock(&waitType, 13, 27)
	b := s.AddBlock(&waitType, 55, 61)

	s.Snap(10, 10)
	if a.X != 10 || a.Y != 20 || b.X != 50 || b.Y != 60 {
		t.Errorf("a=(%v,%v) b=(%v,%v)", a.X, a.Y, b.X, b.Y)
	}
}

func TestEditBlock(t *testing.T) {
	s, rec := newTestStore()
	b := s.AddBlock(&waitType, 0, 0)

	s.EditBlock(b, Template{Title: "Nap", Description: "short", Properties: Properties{"ms": 5}})

	if b.Title != "Nap" || b.Description != "short" || b.Properties["ms"] != 5 {
		t.Errorf("block = %+v", b)
	}
	changed := rec.Named(event.BlockChanged)
	if len(changed) != 1 {
		t.Fatalf("blockchanged = %d", len(changed))
	}
	if old := changed[0].OldValues.(Template); old.Title != "Wait" {
		t.Errorf("OldValues = %+v", old)
	}
}

func TestEditBlockCopiesProperties(t *testing.T) {
	s, _ := newTestStore()
	b := s.AddBlock(&waitType, 0, 0)
	props := Properties{"ms": 5, "tags": []any{"a"}}

	s.EditBlock(b, Template{Title: "Nap", Properties: props})
	props["ms"] = 9
	props["tags"].([]any)[0] = "b"

	if b.Properties["ms"] != 5 || b.Properties["tags"].([]any)[0] != "a" {
		t.Errorf("block properties follow the caller's map: %v", b.Properties)
	}
}

func TestDetachLoad(t *testing.T) {
	s, _ := newTestStore()
	root := s.AddBlock(&rootType, 0, 0)
	w := s.AddBlock(&waitType, 0, 0)
	s.RemoveBlock(w)
	seq := s.AddBlock(&sequenceType, 0, 0)
	mustConnect(t, s, root, seq)

	st := s.Detach()
	if s.Len() != 0 || s.Root() != nil {
		t.Fatal("store not empty after Detach")
	}

	s.Load(st)
	if s.Root() != root || s.Len() != 2 {
		t.Error("Load did not restore blocks")
	}
	if got, ok := s.Block(seq.ID); !ok || got != seq {
		t.Error("Block(id) lookup broken after Load")
	}
	if sel := s.Selected(); len(sel) != 1 || sel[0] != seq {
		t.Errorf("selection = %v", sel)
	}
}

func TestWalk(t *testing.T) {
	s, _ := newTestStore()
	root := s.AddBlock(&rootType, 0, 0)
	seq := s.AddBlock(&sequenceType, 0, 0)
	inv := s.AddBlock(&inverterType, 0, 0)
	w1 := s.AddBlock(&waitType, 0, 0)
	w2 := s.AddBlock(&waitType, 0, 0)
	mustConnect(t, s, root, seq)
	mustConnect(t, s, seq, inv)
	mustConnect(t, s, inv, w1)
	mustConnect(t, s, seq, w2)

	var order []*Block
	var depths []int
	Walk(root, func(b *Block, depth int) bool {
		order = append(order, b)
		depths = append(depths, depth)
		return true
	})
	want := []*Block{root, seq, inv, w1, w2}
	wantDepth := []int{0, 1, 2, 3, 2}
	for i := range want {
		if order[i] != want[i] || depths[i] != wantDepth[i] {
			t.Fatalf("visit %d = %s@%d", i, order[i].Type, depths[i])
		}
	}

	if !IsAncestor(seq, w1) || IsAncestor(w1, seq) {
		t.Error("IsAncestor wrong")
	}
}

func TestBlockClone(t *testing.T) {
	b := NewBlock(&waitType)
	b.X, b.Y = 5, 6
	b.Properties["list"] = []any{"a", "b"}

	c := b.Clone()
	if c.ID == b.ID {
		t.Error("clone shares ID")
	}
	if c.X != 5 || c.Type != "Wait" || c.Selected {
		t.Errorf("clone = %+v", c)
	}
	c.Properties["list"].([]any)[0] = "z"
	if b.Properties["list"].([]any)[0] != "a" {
		t.Error("clone properties are shallow")
	}
}
