package cli

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/bteditor/pkg/nodetype"
)

func TestRunNodes(t *testing.T) {
	c := newTestCLI()
	in := writeTemp(t, "guard.json", guardJSON)

	var out bytes.Buffer
	if err := c.runNodes(testContext(c), []string{in}, nodesOpts{}, &out); err != nil {
		t.Fatalf("runNodes() error: %v", err)
	}
	for _, want := range []string{"Root", "seq", "Wait", "composite", "action"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("table missing %q:\n%s", want, out.String())
		}
	}

	out.Reset()
	if err := c.runNodes(testContext(c), []string{in}, nodesOpts{custom: true}, &out); err != nil {
		t.Fatalf("runNodes(custom) error: %v", err)
	}
	if strings.Contains(out.String(), "root") {
		t.Errorf("custom listing includes the builtin root:\n%s", out.String())
	}
}

func TestRunNodesExport(t *testing.T) {
	c := newTestCLI()
	in := writeTemp(t, "guard.json", guardJSON)
	catalog := filepath.Join(t.TempDir(), "nodes.toml")

	if err := c.runNodes(testContext(c), []string{in}, nodesOpts{export: catalog}, &bytes.Buffer{}); err != nil {
		t.Fatalf("runNodes(export) error: %v", err)
	}

	cat, err := nodetype.ReadCatalogFile(catalog)
	if err != nil {
		t.Fatalf("ReadCatalogFile() error: %v", err)
	}
	names := map[string]nodetype.Category{}
	for _, n := range cat.Nodes {
		names[n.Name] = n.Category
	}
	if len(names) != 2 || names["seq"] != nodetype.CategoryComposite || names["Wait"] != nodetype.CategoryAction {
		t.Errorf("exported catalog = %v", names)
	}
}

func TestFmtProperties(t *testing.T) {
	tests := []struct {
		name  string
		props map[string]any
		want  string
	}{
		{"nil", nil, ""},
		{"sorted", map[string]any{"b": 1, "a": "x"}, "a=x b=1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fmtProperties(tt.props); got != tt.want {
				t.Errorf("fmtProperties() = %q, want %q", got, tt.want)
			}
		})
	}
}
