package scene

import (
	"testing"

	"github.com/matzehuels/bteditor/pkg/event"
	"github.com/matzehuels/bteditor/pkg/graph"
	"github.com/matzehuels/bteditor/pkg/nodetype"
)

func TestHeadlessTracksStore(t *testing.T) {
	bus := event.NewBus()
	h := NewHeadless(800, 600)
	h.Attach(bus)
	defer h.Detach()

	root := nodetype.Root()
	seqType := nodetype.NodeType{Name: "Sequence", Category: nodetype.CategoryComposite}

	s := graph.NewStore(bus)
	r := s.AddBlock(&root, 0, 0)
	seq := s.AddBlock(&seqType, 0, 0)
	if _, err := s.AddConnection(r, seq); err != nil {
		t.Fatal(err)
	}

	if h.BlockCount() != 2 || h.ConnectionCount() != 1 {
		t.Fatalf("scene = %d blocks, %d conns", h.BlockCount(), h.ConnectionCount())
	}

	s.RemoveBlock(seq)
	if h.BlockCount() != 1 || h.ConnectionCount() != 0 {
		t.Errorf("after remove = %d blocks, %d conns", h.BlockCount(), h.ConnectionCount())
	}
	if h.Shows(seq) || !h.Shows(r) {
		t.Error("Shows() out of sync")
	}
}

func TestHeadlessRepopulate(t *testing.T) {
	h := NewHeadless(800, 600)
	root := nodetype.Root()
	b := graph.NewBlock(&root)

	h.Repopulate([]*graph.Block{b}, nil)
	if h.BlockCount() != 1 || h.Redraws() != 1 {
		t.Errorf("BlockCount=%d Redraws=%d", h.BlockCount(), h.Redraws())
	}

	h.Repopulate(nil, nil)
	if h.BlockCount() != 0 {
		t.Error("Repopulate should clear")
	}
}

func TestHeadlessViewport(t *testing.T) {
	h := NewHeadless(800, 600)
	if h.Viewport() != DefaultViewport {
		t.Errorf("initial viewport = %+v", h.Viewport())
	}
	h.SetViewport(Viewport{X: 10, Y: 20, Zoom: 1.5})
	if got := h.Viewport(); got.X != 10 || got.Zoom != 1.5 {
		t.Errorf("viewport = %+v", got)
	}
	if w, hh := h.Size(); w != 800 || hh != 600 {
		t.Errorf("Size() = %v,%v", w, hh)
	}
}
