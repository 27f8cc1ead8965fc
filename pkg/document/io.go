package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/matzehuels/bteditor/pkg/errors"
)

// Format is a document serialization format.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFromPath picks the format from a file extension. Anything that is
// not .yaml or .yml is treated as JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// ParseFormat validates a format name given on the command line or in a
// request.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatJSON, "":
		return FormatJSON, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	default:
		return "", errors.New(errors.ErrCodeInvalidFormat, "unknown document format %q (want json or yaml)", s)
	}
}

// =============================================================================
// Reading
// =============================================================================

// Read decodes a document in the given format. Decoding failures have code
// MALFORMED_DOCUMENT. Read does not validate node types; use Validate.
func Read(r io.Reader, f Format) (*Document, error) {
	var d Document
	switch f {
	case FormatYAML:
		if err := yaml.NewDecoder(r).Decode(&d); err != nil {
			return nil, errors.Wrap(errors.ErrCodeMalformedDocument, err, "decode yaml document")
		}
	default:
		if err := json.NewDecoder(r).Decode(&d); err != nil {
			return nil, errors.Wrap(errors.ErrCodeMalformedDocument, err, "decode json document")
		}
	}
	return &d, nil
}

// ReadJSON decodes a JSON document.
func ReadJSON(r io.Reader) (*Document, error) { return Read(r, FormatJSON) }

// Unmarshal decodes a JSON document held in memory.
func Unmarshal(data []byte) (*Document, error) { return Read(bytes.NewReader(data), FormatJSON) }

// ReadFile reads a document, picking the format from the extension.
func ReadFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Read(f, FormatFromPath(path))
}

// =============================================================================
// Writing
// =============================================================================

// Write encodes d in the given format. JSON output is indented with two
// spaces; object keys come in a fixed order and parameter keys are sorted,
// so equal documents always produce equal bytes.
func Write(w io.Writer, d *Document, f Format) error {
	switch f {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(d); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(d); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	}
}

// WriteJSON encodes d as indented JSON.
func WriteJSON(w io.Writer, d *Document) error { return Write(w, d, FormatJSON) }

// Marshal returns the indented JSON encoding of d.
func Marshal(d *Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, d); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile writes d to path, picking the format from the extension.
func WriteFile(path string, d *Document) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return Write(f, d, FormatFromPath(path))
}
