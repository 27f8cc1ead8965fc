// Package pkg provides the core libraries of bteditor, a behavior-tree editor.
//
// # Overview
//
// A behavior tree is a rooted tree of typed nodes. bteditor keeps several
// such trees in one editing session, lets callers build them block by
// block, and reads and writes them as portable JSON or YAML documents. The
// pkg directory is organized into three areas:
//
//  1. Model - node types, blocks and connections, trees
//  2. Editing - sessions, documents, clipboard, layout, the editor facade
//  3. Infrastructure - settings, projects, rendering, caching, HTTP, metrics
//
// # Architecture
//
// Every mutation flows through the editor facade:
//
//	caller (CLI, HTTP server, tests)
//	         ↓
//	    [editor] facade (validates, reports failures as notifications)
//	         ↓
//	    [session] (active tree) → [graph] store → [event] bus
//	         ↓
//	    [document] export → [project] store / [render/nodelink] diagram
//
// # Quick Start
//
// Import a document, add a node and export it again:
//
//	import (
//	    "os"
//
//	    "github.com/matzehuels/bteditor/pkg/document"
//	    "github.com/matzehuels/bteditor/pkg/editor"
//	)
//
//	ed, _ := editor.New()
//	if err := ed.ImportFile("guard.json"); err != nil {
//	    return err
//	}
//	wait, _ := ed.AddBlock("Wait", 0, 0)
//	ed.Connect(ed.Root().Children()[0].ID, wait.ID)
//	ed.Export(os.Stdout, document.FormatYAML)
//
// # Main Packages
//
// ## Model
//
// [nodetype] - Registry of node types. Types have a unique name, a display
// title, a category (root, composite, decorator, module, action) and
// default properties. Catalogs of types load from TOML.
//
// [graph] - Blocks, connections and the store that owns them. The store
// enforces the tree rules: one parent per block, at most one child below
// root and decorator blocks, none below action and module blocks, no
// cycles.
//
// [event] - Synchronous publish/subscribe bus for change notifications.
//
// ## Editing
//
// [session] - Several trees sharing one live store. Switching trees parks
// the graph and viewport of the old tree and restores the new one.
//
// [document] - The document format, its validation and the import/export
// codec. JSON output is byte-for-byte deterministic.
//
// [clipboard] - Copy, cut, paste and duplicate of the selection, keeping
// the connections among copied blocks.
//
// [layout] - Tidy-tree organizer for imported and reorganized trees.
//
// [editor] - Facade wiring everything together. Every failed operation
// publishes exactly one error notification and changes nothing.
//
// ## Infrastructure
//
// [settings] - Key-value settings with defaults, loaded from TOML.
//
// [project] - Whole-project persistence in files, Redis or MongoDB.
//
// [render/nodelink] - Graphviz DOT output and SVG, PDF and PNG rendering.
//
// [cache] - Rendering cache keyed by content hash.
//
// [server] - JSON HTTP API over one editor.
//
// [observability] - Hooks for operation, store, cache and HTTP metrics,
// with a Prometheus implementation.
//
// [errors] - Structured errors with codes and user-facing messages.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...                  # All tests
//	go test ./pkg/editor/...           # Specific package
//	BTEDITOR_MONGO_URI=mongodb://localhost:27017 go test ./pkg/project/...
//
// [nodetype]: https://pkg.go.dev/github.com/matzehuels/bteditor/pkg/nodetype
// [graph]: https://pkg.go.dev/github.com/matzehuels/bteditor/pkg/graph
// [event]: https://pkg.go.dev/github.com/matzehuels/bteditor/pkg/event
// [session]: https://pkg.go.dev/github.com/matzehuels/bteditor/pkg/session
// [document]: https://pkg.go.dev/github.com/matzehuels/bteditor/pkg/document
// [clipboard]: https://pkg.go.dev/github.com/matzehuels/bteditor/pkg/clipboard
// [layout]: https://pkg.go.dev/github.com/matzehuels/bteditor/pkg/layout
// [editor]: https://pkg.go.dev/github.com/matzehuels/bteditor/pkg/editor
// [settings]: https://pkg.go.dev/github.com/matzehuels/bteditor/pkg/settings
// [project]: https://pkg.go.dev/github.com/matzehuels/bteditor/pkg/project
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/bteditor/pkg/render/nodelink
// [cache]: https://pkg.go.dev/github.com/matzehuels/bteditor/pkg/cache
// [server]: https://pkg.go.dev/github.com/matzehuels/bteditor/pkg/server
// [observability]: https://pkg.go.dev/github.com/matzehuels/bteditor/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/bteditor/pkg/errors
package pkg
