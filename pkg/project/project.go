// Package project persists whole editing projects: every tree as a
// document plus the user-defined node types.
//
// Three backends implement [Store]:
//   - FileStore: one JSON file per project, for the CLI
//   - RedisStore: one key per project plus a sorted-set index
//   - MongoStore: one document per project, upserted by name
//
// All backends store the same JSON encoding produced by [Marshal], so a
// project can be exported from one and imported into another unchanged.
package project

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/matzehuels/bteditor/pkg/document"
	"github.com/matzehuels/bteditor/pkg/nodetype"
	"github.com/matzehuels/bteditor/pkg/observability"
	"github.com/matzehuels/bteditor/pkg/scene"
)

// ErrNotFound is returned by Load when no project has the given name.
var ErrNotFound = errors.New("project not found")

// Project is the persisted form of an editing session.
type Project struct {
	Name string `json:"name"`
	// Trees holds one document per tree, in tree order.
	Trees []*document.Document `json:"trees"`
	// Nodes holds the user-defined node types.
	Nodes []nodetype.NodeType `json:"nodes"`
	// Viewports holds the camera of each tree, parallel to Trees.
	Viewports []scene.Viewport `json:"viewports,omitempty"`
	// Active is the index of the active tree in Trees.
	Active  int       `json:"active"`
	SavedAt time.Time `json:"saved_at"`
}

// Store persists projects by name.
type Store interface {
	// Save creates or replaces the project stored under p.Name.
	Save(ctx context.Context, p *Project) error
	// Load returns the named project or ErrNotFound.
	Load(ctx context.Context, name string) (*Project, error)
	// Delete removes the named project. Deleting a missing project is not
	// an error.
	Delete(ctx context.Context, name string) error
	// List returns the stored project names in sorted order.
	List(ctx context.Context) ([]string, error)
	Close() error
}

// Marshal encodes p as indented JSON.
func Marshal(p *Project) ([]byte, error) {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal project: %w", err)
	}
	return data, nil
}

// Unmarshal decodes a project encoded by Marshal.
func Unmarshal(data []byte) (*Project, error) {
	var p Project
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse project: %w", err)
	}
	return &p, nil
}

// track reports a finished store call to the registered hooks.
func track(ctx context.Context, backend, op string, start time.Time, err *error) {
	observability.Store().OnStoreOp(ctx, backend, op, time.Since(start), *err)
}
