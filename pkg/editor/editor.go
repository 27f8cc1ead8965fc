// Package editor is the entry point to the behavior-tree editing core.
//
// An [Editor] wires the node type registry, the graph store, the tree
// session, the document codec, the clipboard and the layout organizer
// behind one API, and is the only place where failures are turned into
// user-facing notifications.
//
// # Usage
//
//	ed, err := editor.New(editor.WithLogger(logger))
//	if err != nil {
//	    return err
//	}
//	if err := ed.ImportJSON(data); err != nil {
//	    // A notification has already been published on ed.Bus().
//	}
//	out, _ := ed.ExportJSON()
//
// # Errors
//
// Every operation that can fail publishes exactly one notification event
// (level error, message from errors.UserMessage) and returns the same error
// to the caller. A failed operation changes nothing. Removal of things that
// do not exist is a silent no-op.
//
// # Concurrency
//
// An Editor is not safe for concurrent use. Callers that share one, like the
// HTTP server, serialize access themselves.
package editor

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/bteditor/pkg/clipboard"
	"github.com/matzehuels/bteditor/pkg/document"
	"github.com/matzehuels/bteditor/pkg/errors"
	"github.com/matzehuels/bteditor/pkg/event"
	"github.com/matzehuels/bteditor/pkg/graph"
	"github.com/matzehuels/bteditor/pkg/layout"
	"github.com/matzehuels/bteditor/pkg/nodetype"
	"github.com/matzehuels/bteditor/pkg/observability"
	"github.com/matzehuels/bteditor/pkg/scene"
	"github.com/matzehuels/bteditor/pkg/session"
	"github.com/matzehuels/bteditor/pkg/settings"
)

// Options are the numeric settings the editor consumes. They are decoded
// from a settings.Settings when the editor is created.
type Options struct {
	SnapX                   float64 `settings:"snap_x"`
	SnapY                   float64 `settings:"snap_y"`
	ZoomMin                 float64 `settings:"zoom_min"`
	ZoomMax                 float64 `settings:"zoom_max"`
	ZoomStep                float64 `settings:"zoom_step"`
	PasteOffsetX            float64 `settings:"paste_offset_x"`
	PasteOffsetY            float64 `settings:"paste_offset_y"`
	LayoutHorizontalSpacing float64 `settings:"layout_horizontal_spacing"`
	LayoutVerticalSpacing   float64 `settings:"layout_vertical_spacing"`
	CanvasWidth             float64 `settings:"canvas_width"`
	CanvasHeight            float64 `settings:"canvas_height"`
}

// Option configures an Editor.
type Option func(*Editor)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *log.Logger) Option {
	return func(e *Editor) { e.log = l }
}

// WithSettings sets the settings the editor options are decoded from.
func WithSettings(s *settings.Settings) Option {
	return func(e *Editor) { e.settings = s }
}

// WithBus sets the event bus. The default is a fresh bus.
func WithBus(b *event.Bus) Option {
	return func(e *Editor) { e.bus = b }
}

// WithRegistry sets the node type registry, for sharing types between
// editors or preloading a catalog.
func WithRegistry(r *nodetype.Registry) Option {
	return func(e *Editor) { e.reg = r }
}

// WithScene sets the rendering collaborator. The default is a headless
// scene of the configured canvas size, attached to the bus.
func WithScene(s scene.Scene) Option {
	return func(e *Editor) { e.scene = s }
}

// WithOrganizer replaces the tidy layout organizer.
func WithOrganizer(o layout.Organizer) Option {
	return func(e *Editor) { e.organizer = o }
}

// Editor is the behavior-tree editing core.
type Editor struct {
	log       *log.Logger
	settings  *settings.Settings
	opts      Options
	bus       *event.Bus
	reg       *nodetype.Registry
	store     *graph.Store
	scene     scene.Scene
	session   *session.Session
	codec     *document.Codec
	clip      *clipboard.Clipboard
	organizer layout.Organizer
}

// New creates an editor holding one empty tree.
func New(opts ...Option) (*Editor, error) {
	e := &Editor{}
	for _, opt := range opts {
		opt(e)
	}
	if e.log == nil {
		e.log = log.New(io.Discard)
	}
	if e.settings == nil {
		e.settings = settings.New()
	}
	if err := e.settings.Decode(&e.opts); err != nil {
		return nil, err
	}
	if e.bus == nil {
		e.bus = event.NewBus()
	}
	if e.reg == nil {
		e.reg = nodetype.NewRegistry()
	}
	if e.scene == nil {
		h := scene.NewHeadless(e.opts.CanvasWidth, e.opts.CanvasHeight)
		h.Attach(e.bus)
		e.scene = h
	}

	e.store = graph.NewStore(e.bus)
	e.session = session.New(e.reg, e.store, e.scene, e.bus)
	e.codec = document.NewCodec(e.reg, e.bus)

	e.clip = clipboard.New()
	e.clip.OffsetX, e.clip.OffsetY = e.opts.PasteOffsetX, e.opts.PasteOffsetY
	e.clip.SnapX, e.clip.SnapY = e.opts.SnapX, e.opts.SnapY

	if e.organizer == nil {
		e.organizer = &layout.Tidy{
			HorizontalSpacing: e.opts.LayoutHorizontalSpacing,
			VerticalSpacing:   e.opts.LayoutVerticalSpacing,
			Store:             e.store,
		}
	}

	e.CreateTree()
	return e, nil
}

// Bus returns the event bus collaborators subscribe to.
func (e *Editor) Bus() *event.Bus { return e.bus }

// Registry returns the node type registry.
func (e *Editor) Registry() *nodetype.Registry { return e.reg }

// Store returns the store holding the active tree.
func (e *Editor) Store() *graph.Store { return e.store }

// Session returns the tree session.
func (e *Editor) Session() *session.Session { return e.session }

// Scene returns the rendering collaborator.
func (e *Editor) Scene() scene.Scene { return e.scene }

// Options returns the decoded settings.
func (e *Editor) Options() Options { return e.opts }

// Clipboard returns the clipboard.
func (e *Editor) Clipboard() *clipboard.Clipboard { return e.clip }

// fail publishes err as an error notification about target and returns it.
func (e *Editor) fail(target any, err error) error {
	msg := errors.UserMessage(err)
	e.log.Warn("operation failed", "code", errors.GetCode(err), "msg", msg)
	observability.Editor().OnNotification(string(event.LevelError))
	e.bus.Publish(event.Event{
		Name:    event.Notification,
		Target:  target,
		Level:   event.LevelError,
		Message: msg,
	})
	return err
}

// track reports a finished operation to the editor hooks.
func track(op string, start time.Time, err *error) {
	observability.Editor().OnOperation(op, time.Since(start), *err)
}
