package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/dgallion1/docnav/internal/navigate"
	"github.com/dgallion1/docnav/internal/parser"
	"github.com/dgallion1/docnav/internal/viewer"
	"github.com/dgallion1/docnav/internal/views"
)

func (s *Server) handleOpenView(w http.ResponseWriter, r *http.Request) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		jsonError(w, "file is required: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer file.Close()

	filename := sanitizeFilename(header.Filename)
	if !parser.IsSupportedExtension(filename) {
		jsonError(w, fmt.Sprintf("unsupported file type: %s", filepath.Ext(filename)), http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read file", http.StatusInternalServerError)
		return
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("file exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
		return
	}

	v, err := s.views.Open(r.Context(), r.FormValue("title"), filename, data)
	switch {
	case errors.Is(err, views.ErrTooManyViews):
		jsonError(w, err.Error(), http.StatusServiceUnavailable)
		return
	case errors.Is(err, parser.ErrUnsupported):
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		s.log.Error("open view failed", "filename", filename, "error", err)
		jsonError(w, "failed to open document: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}

	snap := v.Viewer.Snapshot()
	writeJSON(w, http.StatusCreated, map[string]any{
		"view_id": v.ID,
		"title":   v.Title,
		"pages":   snap.Pages,
		"links":   snap.Links,
	})
}

func (s *Server) handleListViews(w http.ResponseWriter, r *http.Request) {
	list := s.views.List()
	out := make([]views.Snapshot, 0, len(list))
	for _, v := range list {
		out = append(out, v.Snapshot())
	}
	writeJSON(w, http.StatusOK, map[string]any{"views": out})
}

// view looks up the view named in the URL, answering 404 when missing.
func (s *Server) view(w http.ResponseWriter, r *http.Request) *views.View {
	v := s.views.Get(chi.URLParam(r, "viewID"))
	if v == nil {
		jsonError(w, "view not found", http.StatusNotFound)
	}
	return v
}

func (s *Server) handleGetView(w http.ResponseWriter, r *http.Request) {
	if v := s.view(w, r); v != nil {
		writeJSON(w, http.StatusOK, v.Snapshot())
	}
}

func (s *Server) handleCloseView(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "viewID")
	if !s.views.Close(id) {
		jsonError(w, "view not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"view_id": id, "closed": true})
}

func (s *Server) handleLinks(w http.ResponseWriter, r *http.Request) {
	if v := s.view(w, r); v != nil {
		writeJSON(w, http.StatusOK, map[string]any{"links": v.Links()})
	}
}

func (s *Server) handleActivateLink(w http.ResponseWriter, r *http.Request) {
	v := s.view(w, r)
	if v == nil {
		return
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		jsonError(w, "link index must be an integer", http.StatusBadRequest)
		return
	}

	ev, err := v.Viewer.ActivateLink(r.Context(), index)
	switch {
	case errors.Is(err, viewer.ErrNoSuchLink):
		jsonError(w, fmt.Sprintf("no link at index %d", index), http.StatusNotFound)
		return
	case err != nil:
		jsonError(w, "view closed", http.StatusNotFound)
		return
	}
	res, ok := ev.Result().(navigate.Result)
	if !ok {
		// No session took the link; the viewer followed it directly.
		writeJSON(w, http.StatusOK, map[string]any{"default_action": true, "viewer": v.Viewer.Snapshot()})
		return
	}
	writeResult(w, res)
}

type navigateRequest struct {
	Label      string `json:"label"`
	OriginPage *int   `json:"origin_page"`
}

func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request) {
	v := s.view(w, r)
	if v == nil {
		return
	}
	var req navigateRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 64*1024)).Decode(&req); err != nil {
		jsonError(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Label) == "" {
		jsonError(w, "label is required", http.StatusBadRequest)
		return
	}
	origin := navigate.NoOrigin
	if req.OriginPage != nil {
		origin = *req.OriginPage
	}
	writeResult(w, v.Session.Navigate(r.Context(), req.Label, origin))
}

func (s *Server) handleSection(w http.ResponseWriter, r *http.Request) {
	v := s.view(w, r)
	if v == nil {
		return
	}
	y, err := strconv.ParseFloat(r.URL.Query().Get("y"), 64)
	if err != nil {
		jsonError(w, "y query parameter must be a number", http.StatusBadRequest)
		return
	}
	h, ok := v.Session.SectionAt(y)
	if !ok {
		jsonError(w, "no section above that position", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"number": h.Number,
		"title":  h.Title,
		"text":   h.Text(),
		"page":   h.Node.Page(),
	})
}

type scrollRequest struct {
	Offset float64 `json:"offset"`
}

func (s *Server) handleScroll(w http.ResponseWriter, r *http.Request) {
	v := s.view(w, r)
	if v == nil {
		return
	}
	var req scrollRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 64*1024)).Decode(&req); err != nil {
		jsonError(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return
	}
	v.Viewer.ScrollTo(req.Offset, false)
	writeJSON(w, http.StatusOK, v.Viewer.Snapshot())
}

// writeResult renders a navigation result. Only a failed lookup is
// reported as an error; everything else is a normal outcome.
func writeResult(w http.ResponseWriter, res navigate.Result) {
	switch {
	case errors.Is(res.Err, navigate.ErrSessionClosed):
		jsonError(w, "view closed", http.StatusNotFound)
	case res.State == navigate.StateFailed:
		writeJSON(w, http.StatusNotFound, map[string]any{"error": res.Notice, "result": res})
	default:
		writeJSON(w, http.StatusOK, res)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	// Remove any path separators that might have survived.
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
