package server

import (
	"encoding/json"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/bteditor/pkg/cache"
	"github.com/matzehuels/bteditor/pkg/document"
	"github.com/matzehuels/bteditor/pkg/errors"
	"github.com/matzehuels/bteditor/pkg/nodetype"
	"github.com/matzehuels/bteditor/pkg/render/nodelink"
	"github.com/matzehuels/bteditor/pkg/session"
)

// =============================================================================
// Trees
// =============================================================================

type treeInfo struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Active bool   `json:"active"`
	Blocks int    `json:"blocks"`
}

func (s *Server) treeInfo(t *session.Tree) treeInfo {
	return treeInfo{
		ID:     t.ID,
		Title:  s.ed.TreeTitle(t),
		Active: t == s.ed.ActiveTree(),
		Blocks: len(s.ed.Session().Graph(t).Blocks),
	}
}

func (s *Server) listTrees(w http.ResponseWriter, _ *http.Request) {
	trees := s.ed.Trees()
	out := make([]treeInfo, 0, len(trees))
	for _, t := range trees {
		out = append(out, s.treeInfo(t))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createTree(w http.ResponseWriter, _ *http.Request) {
	t := s.ed.CreateTree()
	writeJSON(w, http.StatusCreated, s.treeInfo(t))
}

func (s *Server) selectTree(w http.ResponseWriter, r *http.Request) {
	if err := s.ed.SelectTree(chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.treeInfo(s.ed.ActiveTree()))
}

func (s *Server) removeTree(w http.ResponseWriter, r *http.Request) {
	if err := s.ed.RemoveTree(chi.URLParam(r, "id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) exportTree(w http.ResponseWriter, r *http.Request) {
	d, err := s.ed.ExportTree(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeDocument(w, r, d)
}

// =============================================================================
// Active document
// =============================================================================

func (s *Server) exportDocument(w http.ResponseWriter, r *http.Request) {
	writeDocument(w, r, s.ed.ExportDocument())
}

func (s *Server) importDocument(w http.ResponseWriter, r *http.Request) {
	if err := s.ed.Import(r.Body, requestFormat(r)); err != nil {
		writeError(w, err)
		return
	}
	writeDocument(w, r, s.ed.ExportDocument())
}

func (s *Server) dot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(nodelink.ToDOT(s.ed.Root(), nodelink.Options{Detailed: detailed(r)})))
}

func (s *Server) svg(w http.ResponseWriter, r *http.Request) {
	opts := nodelink.Options{Detailed: detailed(r)}
	dot := nodelink.ToDOT(s.ed.Root(), opts)
	key := s.keyer.ArtifactKey(cache.Hash([]byte(dot)), cache.ArtifactKeyOpts{Format: "svg", Detailed: opts.Detailed})
	svg, err := cache.Fetch(r.Context(), s.cache, "svg", key, s.ttl, func() ([]byte, error) {
		return nodelink.RenderSVG(r.Context(), dot)
	})
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(svg)
}

// =============================================================================
// Node types
// =============================================================================

func (s *Server) listNodes(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.ed.Nodes())
}

func (s *Server) registerNode(w http.ResponseWriter, r *http.Request) {
	var t nodetype.NodeType
	if err := json.NewDecoder(r.Body).Decode(&t); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "Invalid request body."))
		return
	}
	if !t.Category.Valid() {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "unknown category %q", t.Category))
		return
	}
	stored, err := s.ed.RegisterNode(t)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, stored)
}

type editNodeRequest struct {
	Name  string `json:"name"`
	Title string `json:"title"`
}

func (s *Server) editNode(w http.ResponseWriter, r *http.Request) {
	var req editNodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "Invalid request body."))
		return
	}
	name := chi.URLParam(r, "name")
	if req.Name == "" {
		req.Name = name
	}
	if err := s.ed.EditNode(name, req.Name, req.Title); err != nil {
		writeError(w, err)
		return
	}
	t, _ := s.ed.Registry().Get(req.Name)
	writeJSON(w, http.StatusOK, t)
}

func (s *Server) removeNode(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	t, ok := s.ed.Registry().Get(name)
	if !ok {
		writeError(w, errors.New(errors.ErrCodeUnknownNodeType, "node type %q is not registered", name))
		return
	}
	if t.Builtin {
		writeError(w, errors.New(errors.ErrCodeInvalidInput, "built-in node type %q cannot be removed", name))
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"removed": s.ed.RemoveNode(name)})
}

// =============================================================================
// Encoding
// =============================================================================

// requestFormat picks the document format from the Content-Type header.
func requestFormat(r *http.Request) document.Format {
	mt, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mt {
	case "application/yaml", "application/x-yaml", "text/yaml":
		return document.FormatYAML
	}
	return document.FormatJSON
}

// writeDocument encodes d in the format named by the format query
// parameter, JSON by default.
func writeDocument(w http.ResponseWriter, r *http.Request, d *document.Document) {
	f := document.FormatJSON
	if q := r.URL.Query().Get("format"); q != "" {
		var err error
		if f, err = document.ParseFormat(q); err != nil {
			writeError(w, err)
			return
		}
	}
	ct := "application/json"
	if f == document.FormatYAML {
		ct = "application/yaml"
	}
	w.Header().Set("Content-Type", ct)
	w.WriteHeader(http.StatusOK)
	_ = document.Write(w, d, f)
}

func detailed(r *http.Request) bool {
	v, _ := strconv.ParseBool(r.URL.Query().Get("detailed"))
	return v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Code  errors.Code `json:"code"`
	Error string      `json:"error"`
}

func writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	writeJSON(w, statusFor(code), errorBody{Code: code, Error: errors.UserMessage(err)})
}

func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeNotFound, errors.ErrCodeUnknownTree, errors.ErrCodeUnknownNodeType,
		errors.ErrCodeUnknownBlock, errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errors.ErrCodeDuplicateName:
		return http.StatusConflict
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidName, errors.ErrCodeInvalidPath,
		errors.ErrCodeInvalidConnection, errors.ErrCodeMalformedDocument, errors.ErrCodeInvalidFormat,
		errors.ErrCodeInvalidSettings, errors.ErrCodeInvalidNodeCatalog:
		return http.StatusBadRequest
	case errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}
