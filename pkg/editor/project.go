package editor

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/matzehuels/bteditor/pkg/document"
	"github.com/matzehuels/bteditor/pkg/errors"
	"github.com/matzehuels/bteditor/pkg/nodetype"
	"github.com/matzehuels/bteditor/pkg/project"
	"github.com/matzehuels/bteditor/pkg/session"
)

// Project snapshots every tree and the user-defined node types under name.
func (e *Editor) Project(name string) *project.Project {
	p := &project.Project{
		Name:    name,
		Nodes:   e.reg.Custom(),
		SavedAt: time.Now().UTC(),
	}
	active := e.session.Active()
	for i, t := range e.session.Trees() {
		d := &document.Document{Scripts: []string{}}
		if root := e.session.Root(t); root != nil {
			d = document.Export(root)
		}
		p.Trees = append(p.Trees, d)
		vp := t.Viewport
		if t == active {
			vp = e.scene.Viewport()
			p.Active = i
		}
		p.Viewports = append(p.Viewports, vp)
	}
	return p
}

// SaveProject stores the current project under name.
func (e *Editor) SaveProject(ctx context.Context, store project.Store, name string) (err error) {
	defer track("save_project", time.Now(), &err)

	if err := store.Save(ctx, e.Project(name)); err != nil {
		return e.fail(name, err)
	}
	e.log.Debug("project saved", "name", name, "trees", len(e.session.Trees()))
	return nil
}

// LoadProject replaces every tree with the trees of the named project and
// registers its node types.
func (e *Editor) LoadProject(ctx context.Context, store project.Store, name string) (err error) {
	defer track("load_project", time.Now(), &err)

	p, err := store.Load(ctx, name)
	if err != nil {
		if stderrors.Is(err, project.ErrNotFound) {
			err = errors.Wrap(errors.ErrCodeNotFound, err, "No project named %q.", name)
		}
		return e.fail(name, err)
	}
	return e.OpenProject(p)
}

// OpenProject replaces every tree with the trees of p and registers its
// node types. Types already registered keep their current definition. The
// whole project is validated first; if any tree is invalid nothing
// changes.
func (e *Editor) OpenProject(p *project.Project) error {
	scratch := nodetype.NewRegistry()
	for _, nodes := range [][]nodetype.NodeType{e.reg.Custom(), p.Nodes} {
		if _, err := scratch.Load(nodetype.Catalog{Nodes: nodes}); err != nil {
			return e.fail(p.Name, errors.Wrap(errors.ErrCodeInvalidNodeCatalog, err, "project %q has an invalid node type", p.Name))
		}
	}
	if err := document.ValidateSet(p.Trees, scratch); err != nil {
		return e.fail(p.Name, err)
	}

	if _, err := e.LoadCatalog(nodetype.Catalog{Nodes: p.Nodes}); err != nil {
		return err
	}
	e.session.Clear()
	var active *session.Tree
	for i, d := range p.Trees {
		t := e.CreateTree()
		if err := e.importInto(d); err != nil {
			return e.fail(p.Name, err)
		}
		if i < len(p.Viewports) {
			e.scene.SetViewport(p.Viewports[i])
		}
		if i == p.Active {
			active = t
		}
	}
	if len(p.Trees) == 0 {
		e.CreateTree()
	}
	if active != nil && active != e.session.Active() {
		if err := e.session.SwitchTo(active.ID); err != nil {
			return e.fail(p.Name, err)
		}
	}
	e.log.Debug("project opened", "name", p.Name, "trees", len(p.Trees))
	return nil
}
