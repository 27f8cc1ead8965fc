package document

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/bteditor/pkg/errors"
)

func TestReadMalformed(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		format Format
	}{
		{"json syntax", `{"name": `, FormatJSON},
		{"json wrong type", `{"name": 5}`, FormatJSON},
		{"yaml syntax", "name: [unterminated", FormatYAML},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.input), tt.format)
			if !errors.Is(err, errors.ErrCodeMalformedDocument) {
				t.Errorf("Read() error = %v, want MALFORMED_DOCUMENT", err)
			}
		})
	}
}

func TestWriteDeterministic(t *testing.T) {
	d := &Document{
		Name: "T",
		Root: &Node{Type: "action", Name: "A", Parameters: map[string]any{"z": 1, "a": 2, "m": 3}},
	}

	first, err := Marshal(d)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		again, _ := Marshal(d)
		if !bytes.Equal(first, again) {
			t.Fatal("output is not deterministic")
		}
	}
	s := string(first)
	if strings.Index(s, `"a"`) > strings.Index(s, `"m"`) || strings.Index(s, `"m"`) > strings.Index(s, `"z"`) {
		t.Errorf("parameter keys not sorted:\n%s", s)
	}
	if !strings.Contains(s, `"scripts": []`) {
		t.Errorf("nil scripts should be written as []:\n%s", s)
	}
	if !strings.HasPrefix(s, "{\n  \"name\"") {
		t.Errorf("output not indented with two spaces:\n%s", s)
	}
}

func TestNodeJSONShape(t *testing.T) {
	tests := []struct {
		name    string
		node    Node
		want    []string
		notWant []string
	}{
		{"empty parameters kept", Node{Type: "action", Name: "A", Parameters: map[string]any{}}, []string{`"parameters":{}`}, nil},
		{"nil parameters dropped", Node{Type: "action", Name: "A"}, nil, []string{"parameters"}},
		{"control always has children", Node{Type: "control", Name: "C"}, []string{`"children":[]`}, nil},
		{"module has only path", Node{Type: "module", Path: "m.json"}, []string{`"path":"m.json"`}, []string{"name", "children"}},
		{"key order", Node{Title: "T", Type: "action", Name: "A"}, []string{`{"title":"T","type":"action","name":"A"}`}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := tt.node.MarshalJSON()
			if err != nil {
				t.Fatal(err)
			}
			for _, w := range tt.want {
				if !strings.Contains(string(b), w) {
					t.Errorf("%s missing %s", b, w)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(string(b), w) {
					t.Errorf("%s should not contain %s", b, w)
				}
			}
		})
	}
}

func TestYAMLRoundTrip(t *testing.T) {
	d, err := Unmarshal([]byte(guardJSON))
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := Write(&buf, d, FormatYAML); err != nil {
		t.Fatalf("Write(yaml) error = %v", err)
	}
	if !strings.Contains(buf.String(), "type: control") {
		t.Errorf("yaml output:\n%s", buf.String())
	}

	back, err := Read(&buf, FormatYAML)
	if err != nil {
		t.Fatalf("Read(yaml) error = %v", err)
	}
	if back.Name != "Guard" || back.Root.Name != "seq" || back.Root.Children[0].Name != "Wait" {
		t.Errorf("yaml round trip = %+v", back)
	}
}

func TestFiles(t *testing.T) {
	dir := t.TempDir()
	d, _ := Unmarshal([]byte(guardJSON))

	for _, name := range []string{"guard.json", "guard.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			if err := WriteFile(path, d); err != nil {
				t.Fatalf("WriteFile() error = %v", err)
			}
			back, err := ReadFile(path)
			if err != nil {
				t.Fatalf("ReadFile() error = %v", err)
			}
			if back.Root.Children[0].Name != "Wait" {
				t.Errorf("read back = %+v", back.Root)
			}
		})
	}

	if _, err := ReadFile(filepath.Join(dir, "missing.json")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing file error = %v", err)
	}

	raw, _ := os.ReadFile(filepath.Join(dir, "guard.json"))
	if string(raw) != guardJSON {
		t.Errorf("file content =\n%s", raw)
	}
}

func TestFormats(t *testing.T) {
	if FormatFromPath("a/b.YML") != FormatYAML || FormatFromPath("x.json") != FormatJSON || FormatFromPath("x") != FormatJSON {
		t.Error("FormatFromPath wrong")
	}
	if f, err := ParseFormat("yaml"); err != nil || f != FormatYAML {
		t.Errorf("ParseFormat(yaml) = %v, %v", f, err)
	}
	if _, err := ParseFormat("xml"); !errors.Is(err, errors.ErrCodeInvalidFormat) {
		t.Errorf("ParseFormat(xml) error = %v", err)
	}
}
