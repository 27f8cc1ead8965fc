package document

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"github.com/matzehuels/bteditor/pkg/errors"
	"github.com/matzehuels/bteditor/pkg/event"
	"github.com/matzehuels/bteditor/pkg/graph"
	"github.com/matzehuels/bteditor/pkg/nodetype"
)

const guardJSON = `{
  "name": "Guard",
  "description": "",
  "scripts": [],
  "root": {
    "type": "control",
    "name": "seq",
    "children": [
      {
        "type": "action",
        "name": "Wait"
      }
    ]
  }
}
`

func newTree(t *testing.T) (*graph.Store, *nodetype.Registry, *event.Recorder) {
	t.Helper()
	reg := nodetype.NewRegistry()
	rec := &event.Recorder{}
	store := graph.NewStore(rec)
	rootType, _ := reg.Get(nodetype.RootName)
	store.AddBlock(rootType, 0, 0)
	return store, reg, rec
}

func TestImportGuardExample(t *testing.T) {
	store, reg, rec := newTree(t)
	d, err := Unmarshal([]byte(guardJSON))
	if err != nil {
		t.Fatal(err)
	}

	top, err := NewCodec(reg, rec).Import(store, d)
	if err != nil {
		t.Fatalf("Import() error = %v", err)
	}

	root := store.Root()
	if root.Title != "Guard" {
		t.Errorf("root title = %q, want Guard", root.Title)
	}
	if kids := root.Children(); len(kids) != 1 || kids[0] != top {
		t.Fatal("imported fragment not attached under root")
	}
	if top.Type != "seq" || top.Category != nodetype.CategoryComposite {
		t.Errorf("top = %s/%s, want seq/composite", top.Type, top.Category)
	}
	kids := top.Children()
	if len(kids) != 1 || kids[0].Type != "Wait" || kids[0].Category != nodetype.CategoryAction {
		t.Fatalf("seq children = %v", kids)
	}

	seq, ok := reg.Get("seq")
	if !ok || seq.Category != nodetype.CategoryComposite {
		t.Errorf("seq registered as %+v", seq)
	}
	if n := len(rec.Named(event.NodeAdded)); n != 2 {
		t.Errorf("nodeadded = %d, want 2", n)
	}

	out, err := Marshal(Export(root))
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != guardJSON {
		t.Errorf("export =\n%s\nwant\n%s", out, guardJSON)
	}
	if !strings.Contains(string(out), `"type": "control"`) {
		t.Error("composite should be exported as control")
	}
}

func TestRoundTrip(t *testing.T) {
	docs := map[string]string{
		"nested": `{
			"name": "Patrol",
			"description": "walk the perimeter",
			"scripts": ["scripts/patrol.js", "scripts/util.js"],
			"root": {
				"title": "Main",
				"type": "control",
				"name": "Priority",
				"parameters": {},
				"children": [
					{"type": "decorator", "name": "Inverter", "child":
						{"type": "action", "name": "IsEnemyVisible", "parameters": {"range": 12.5}}},
					{"type": "control", "name": "Sequence", "children": [
						{"title": "Walk <speed>", "type": "action", "name": "Walk", "parameters": {"speed": 2, "path": ["a", "b"]}},
						{"type": "action", "name": "Wait", "description": "idle", "parameters": {"ms": 500}}
					]},
					{"type": "decorator", "name": "Repeater"}
				]
			}
		}`,
		"empty control": `{"name": "E", "description": "", "scripts": [],
			"root": {"type": "control", "name": "Sequence", "children": []}}`,
		"single action": `{"name": "A", "description": "d", "scripts": [],
			"root": {"type": "action", "name": "Succeed"}}`,
		"no root": `{"name": "Empty", "description": "", "scripts": [], "root": null}`,
	}

	for name, src := range docs {
		t.Run(name, func(t *testing.T) {
			store, reg, _ := newTree(t)
			want, err := Unmarshal([]byte(src))
			if err != nil {
				t.Fatal(err)
			}

			if _, err := NewCodec(reg, nil).Import(store, want); err != nil {
				t.Fatalf("Import() error = %v", err)
			}
			got := Export(store.Root())

			if !reflect.DeepEqual(got, want) {
				gb, _ := Marshal(got)
				wb, _ := Marshal(want)
				t.Errorf("round trip mismatch\ngot:  %s\nwant: %s", gb, wb)
			}
			for _, b := range store.Blocks() {
				out, _ := Marshal(got)
				if bytes.Contains(out, []byte(b.ID)) {
					t.Fatalf("block id %s leaked into export", b.ID)
				}
			}
		})
	}
}

func TestImportModule(t *testing.T) {
	store, reg, _ := newTree(t)
	d := &Document{Name: "M", Root: &Node{
		Type: "control", Name: "Sequence",
		Children: []*Node{{Type: TagModule, Path: "trees/patrol.json"}},
	}}

	if _, err := NewCodec(reg, nil).Import(store, d); err != nil {
		t.Fatal(err)
	}
	mod, ok := reg.Get("trees/patrol.json")
	if !ok || mod.Category != nodetype.CategoryModule {
		t.Fatalf("module type = %+v", mod)
	}

	out := Export(store.Root())
	child := out.Root.Children[0]
	if child.Type != TagModule || child.Path != "trees/patrol.json" || child.Name != "" {
		t.Errorf("module exported as %+v", child)
	}
}

func TestImportUsesRegisteredType(t *testing.T) {
	store, reg, rec := newTree(t)
	reg.Register(nodetype.NodeType{Name: "Wait", Title: "Wait", Category: nodetype.CategoryAction})
	d := &Document{Name: "X", Root: &Node{Type: "action", Name: "Wait", Title: "Nap"}}

	top, err := NewCodec(reg, rec).Import(store, d)
	if err != nil {
		t.Fatal(err)
	}
	if top.Title != "Nap" {
		t.Errorf("title = %q, want Nap", top.Title)
	}
	if len(rec.Named(event.NodeAdded)) != 0 {
		t.Error("registered type should not be re-added")
	}
}

func TestImportFreshIDs(t *testing.T) {
	d, _ := Unmarshal([]byte(guardJSON))

	s1, r1, _ := newTree(t)
	s2, r2, _ := newTree(t)
	a, _ := NewCodec(r1, nil).Import(s1, d)
	b, _ := NewCodec(r2, nil).Import(s2, d)
	if a.ID == b.ID {
		t.Error("imports should assign fresh ids")
	}
}

func TestImportRejectsInvalidWithoutMutation(t *testing.T) {
	store, reg, rec := newTree(t)
	d := &Document{Name: "Bad", Root: &Node{
		Type: "control", Name: "Sequence",
		Children: []*Node{
			{Type: "action", Name: "Wait"},
			{Type: "action", Name: "Hit", Children: []*Node{{Type: "action", Name: "X"}}},
		},
	}}
	rec.Reset()

	_, err := NewCodec(reg, rec).Import(store, d)
	if !errors.Is(err, errors.ErrCodeMalformedDocument) {
		t.Fatalf("error = %v, want MALFORMED_DOCUMENT", err)
	}
	if store.Len() != 1 || reg.Has("Sequence") || reg.Has("Wait") {
		t.Error("failed import mutated the graph or registry")
	}
	if len(rec.Events()) != 0 {
		t.Error("failed import published events")
	}
}

func TestImportRequiresFreshRoot(t *testing.T) {
	store, reg, _ := newTree(t)
	d, _ := Unmarshal([]byte(guardJSON))
	c := NewCodec(reg, nil)
	if _, err := c.Import(store, d); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Import(store, d); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("second import error = %v, want INVALID_INPUT", err)
	}
}

func TestExportEditedTree(t *testing.T) {
	store, reg, _ := newTree(t)
	seqType, _ := reg.Register(nodetype.NodeType{Name: "Sequence", Title: "Sequence", Category: nodetype.CategoryComposite})
	waitType, _ := reg.Register(nodetype.NodeType{Name: "Wait", Title: "Wait", Category: nodetype.CategoryAction, Properties: map[string]any{"ms": 10}})

	root := store.Root()
	root.Title = "Edited"
	seq := store.AddBlock(seqType, 0, 0)
	w1 := store.AddBlock(waitType, 0, 0)
	w2 := store.AddBlock(waitType, 0, 0)
	store.AddConnection(root, seq)
	store.AddConnection(seq, w2)
	store.AddConnection(seq, w1)

	d := Export(root)
	if d.Name != "Edited" || len(d.Scripts) != 0 || d.Scripts == nil {
		t.Errorf("envelope = %+v", d)
	}
	if len(d.Root.Children) != 2 {
		t.Fatalf("children = %d", len(d.Root.Children))
	}
	if d.Root.Children[0].Parameters["ms"] != 10 || d.Root.Children[0].Title != "Wait" {
		t.Errorf("child = %+v", d.Root.Children[0])
	}
}
