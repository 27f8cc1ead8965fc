package cli

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestBuildOutlines(t *testing.T) {
	c := newTestCLI()
	ed, err := c.newEditor()
	if err != nil {
		t.Fatal(err)
	}
	guard := writeTemp(t, "guard.json", guardJSON)
	patrol := writeTemp(t, "patrol.json", patrolJSON)
	if err := importTrees(ed, []string{guard, patrol}); err != nil {
		t.Fatalf("importTrees() error: %v", err)
	}
	if _, err := ed.AddBlock("Wait", 500, 500); err != nil {
		t.Fatal(err)
	}

	outlines := buildOutlines(ed)
	if len(outlines) != 2 {
		t.Fatalf("got %d outlines, want 2", len(outlines))
	}

	g := outlines[0]
	if g.title != "Guard" || len(g.rows) != 3 || g.loose != 0 {
		t.Fatalf("guard outline = %q, %d rows, %d loose", g.title, len(g.rows), g.loose)
	}
	for i, want := range []struct {
		depth int
		typ   string
	}{{0, "Root"}, {1, "seq"}, {2, "Wait"}} {
		if r := g.rows[i]; r.depth != want.depth || r.block.Type != want.typ {
			t.Errorf("row %d = (%d, %q), want (%d, %q)", i, r.depth, r.block.Type, want.depth, want.typ)
		}
	}

	if p := outlines[1]; p.title != "Patrol" || len(p.rows) != 2 || p.loose != 1 {
		t.Errorf("patrol outline = %q, %d rows, %d loose", p.title, len(p.rows), p.loose)
	}
}

func TestImportTreesError(t *testing.T) {
	c := newTestCLI()
	ed, err := c.newEditor()
	if err != nil {
		t.Fatal(err)
	}
	bad := writeTemp(t, "bad.json", `{`)
	if err := importTrees(ed, []string{bad}); err == nil || !strings.Contains(err.Error(), "bad.json") {
		t.Errorf("importTrees() error = %v, want it to name the file", err)
	}
}

func outlineFixture() []outline {
	c := newTestCLI()
	ed, _ := c.newEditor()
	_ = ed.ImportJSON([]byte(guardJSON))
	ed.CreateTree()
	_ = ed.ImportJSON([]byte(patrolJSON))
	return buildOutlines(ed)
}

func press(m tea.Model, keys ...tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	for _, k := range keys {
		m, cmd = m.Update(k)
	}
	return m, cmd
}

func TestOutlineModelNavigation(t *testing.T) {
	down := tea.KeyMsg{Type: tea.KeyDown}
	up := tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("k")}
	tab := tea.KeyMsg{Type: tea.KeyTab}

	m, _ := press(NewOutlineModel(outlineFixture()), down, down, down)
	om := m.(OutlineModel)
	if om.Cursor != 2 {
		t.Errorf("cursor = %d, want 2 (clamped to last row)", om.Cursor)
	}

	m, _ = press(om, up)
	if got := m.(OutlineModel).Cursor; got != 1 {
		t.Errorf("cursor after up = %d, want 1", got)
	}

	m, _ = press(m, tab)
	om = m.(OutlineModel)
	if om.Tree != 1 || om.Cursor != 0 {
		t.Errorf("after tab: tree %d cursor %d, want 1 and 0", om.Tree, om.Cursor)
	}
	m, _ = press(om, tab)
	if got := m.(OutlineModel).Tree; got != 0 {
		t.Errorf("tab should wrap to tree 0, got %d", got)
	}
}

func TestOutlineModelScroll(t *testing.T) {
	m := NewOutlineModel(outlineFixture())
	m.Height = 1

	next, _ := press(m, tea.KeyMsg{Type: tea.KeyDown})
	om := next.(OutlineModel)
	if om.Offset != 1 {
		t.Errorf("offset = %d, want 1", om.Offset)
	}

	next, _ = om.Update(tea.WindowSizeMsg{Width: 80, Height: 40})
	if got := next.(OutlineModel).Height; got != 28 {
		t.Errorf("height = %d, want 28", got)
	}
}

func TestOutlineModelQuit(t *testing.T) {
	_, cmd := press(NewOutlineModel(outlineFixture()), tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
}

func TestOutlineModelView(t *testing.T) {
	view := NewOutlineModel(outlineFixture()).View()
	for _, want := range []string{"Guard", "seq", "Wait", "tree 1/2"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}

	if got := NewOutlineModel(nil).View(); !strings.Contains(got, "No trees") {
		t.Errorf("empty view = %q", got)
	}
}

func TestBlockDetail(t *testing.T) {
	outlines := outlineFixture()
	b := outlines[0].rows[2].block
	b.Description = "pause"
	b.Properties = map[string]any{"seconds": 2, "blocking": true}

	got := blockDetail(b)
	if !strings.Contains(got, "pause") {
		t.Errorf("detail missing description:\n%s", got)
	}
	if strings.Index(got, "blocking") > strings.Index(got, "seconds") {
		t.Errorf("properties not sorted:\n%s", got)
	}
}
