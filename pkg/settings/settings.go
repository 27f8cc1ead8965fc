// Package settings provides the key-value settings consulted by the editor.
//
// Values are looked up by string key and fall back to built-in defaults.
// Settings files are TOML documents with one top-level key per setting:
//
//	snap_x = 16
//	snap_y = 16
//	zoom_step = 0.1
//
// Typed access goes through [Settings.Float] for single values or
// [Settings.Decode], which fills a struct whose fields carry `settings`
// tags.
package settings

import (
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/mitchellh/mapstructure"

	"github.com/matzehuels/bteditor/pkg/errors"
)

// Setting keys understood by the editor.
const (
	SnapX                   = "snap_x"
	SnapY                   = "snap_y"
	ZoomMin                 = "zoom_min"
	ZoomMax                 = "zoom_max"
	ZoomStep                = "zoom_step"
	PasteOffsetX            = "paste_offset_x"
	PasteOffsetY            = "paste_offset_y"
	LayoutHorizontalSpacing = "layout_horizontal_spacing"
	LayoutVerticalSpacing   = "layout_vertical_spacing"
	CanvasWidth             = "canvas_width"
	CanvasHeight            = "canvas_height"
)

// TagName is the struct tag Decode reads field names from.
const TagName = "settings"

// Defaults returns a fresh copy of the built-in values.
func Defaults() map[string]any {
	return map[string]any{
		SnapX:                   12.0,
		SnapY:                   12.0,
		ZoomMin:                 0.25,
		ZoomMax:                 2.0,
		ZoomStep:                0.25,
		PasteOffsetX:            50.0,
		PasteOffsetY:            50.0,
		LayoutHorizontalSpacing: 208.0,
		LayoutVerticalSpacing:   88.0,
		CanvasWidth:             800.0,
		CanvasHeight:            600.0,
	}
}

// Settings is a concurrency-safe set of values layered over the defaults.
type Settings struct {
	mu     sync.RWMutex
	values map[string]any
}

// New returns settings holding the defaults.
func New() *Settings {
	return &Settings{values: Defaults()}
}

// Get returns the value stored under key.
func (s *Settings) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

// Set stores v under key.
func (s *Settings) Set(key string, v any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values[key] = v
}

// Float returns the numeric value of key. Missing or non-numeric values
// read as zero.
func (s *Settings) Float(key string) float64 {
	v, _ := s.Get(key)
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}

// Keys returns every key in sorted order.
func (s *Settings) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Sorted(maps.Keys(s.values))
}

// Merge overlays values onto the current settings.
func (s *Settings) Merge(values map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	maps.Copy(s.values, values)
}

// Load decodes a TOML document from r and merges it. A value whose type
// differs from the default for the same key is rejected and nothing is
// merged.
func (s *Settings) Load(r io.Reader) error {
	var values map[string]any
	if _, err := toml.NewDecoder(r).Decode(&values); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidSettings, err, "decode settings")
	}
	defaults := Defaults()
	for k, v := range values {
		def, known := defaults[k]
		if !known {
			continue
		}
		if _, isNum := def.(float64); isNum {
			switch n := v.(type) {
			case int64:
				values[k] = float64(n)
			case float64:
			default:
				return errors.New(errors.ErrCodeInvalidSettings, "setting %q must be a number, got %T", k, v)
			}
		}
	}
	s.Merge(values)
	return nil
}

// LoadFile loads a TOML settings file.
func (s *Settings) LoadFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return s.Load(f)
}

// Decode copies the settings into out, a pointer to a struct whose fields
// are tagged with the setting key they read.
func (s *Settings) Decode(out any) error {
	s.mu.RLock()
	values := maps.Clone(s.values)
	s.mu.RUnlock()

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          TagName,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "settings decoder")
	}
	if err := dec.Decode(values); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidSettings, err, "decode settings")
	}
	return nil
}
