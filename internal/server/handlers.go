package server

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/KaramelBytes/bikeshare-dashboard/internal/analysis"
	"github.com/KaramelBytes/bikeshare-dashboard/internal/export"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

// problem is an RFC 7807 error body.
type problem struct {
	Type      string `json:"type"`
	Title     string `json:"title"`
	Status    int    `json:"status"`
	Detail    string `json:"detail,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, status int, err error) {
	p := problem{
		Type:      "/errors/validation",
		Title:     http.StatusText(status),
		Status:    status,
		Detail:    err.Error(),
		RequestID: middleware.GetReqID(r.Context()),
	}
	if status >= http.StatusInternalServerError {
		p.Type = "/errors/internal"
		s.logger.ErrorContext(r.Context(), "request failed",
			slog.String("error", err.Error()),
			slog.String("request_id", p.RequestID),
			slog.String("path", r.URL.Path),
		)
	}
	render.Status(r, status)
	render.JSON(w, r, p)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]any{
		"status":      "ok",
		"data_dir":    s.tables.Dir,
		"daily_rows":  s.tables.Daily.Nrow(),
		"hourly_rows": s.tables.Hourly.Nrow(),
		"sessions":    s.sessions.Len(),
	})
}

func (s *Server) handleGetSelection(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.sessions.Get(sessionID(r))
	if !ok {
		s.fail(w, r, http.StatusInternalServerError, errors.New("session vanished"))
		return
	}
	render.JSON(w, r, sess.Selection)
}

func (s *Server) handlePutSelection(w http.ResponseWriter, r *http.Request) {
	var sel analysis.Selection
	if err := render.DecodeJSON(r.Body, &sel); err != nil {
		s.fail(w, r, http.StatusBadRequest, fmt.Errorf("invalid selection: %w", err))
		return
	}
	normalized, err := analysis.ParseSelection(sel.SeasonNames(), sel.WorkingDay.String())
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, err)
		return
	}
	sess, ok := s.sessions.SetSelection(sessionID(r), normalized)
	if !ok {
		s.fail(w, r, http.StatusInternalServerError, errors.New("session vanished"))
		return
	}
	render.JSON(w, r, sess.Selection)
}

// selectionFromQuery applies the season and workingday query parameters to
// the current selection. A present but empty season parameter selects no
// season; an absent one keeps the current seasons.
func selectionFromQuery(r *http.Request, current analysis.Selection) (analysis.Selection, bool, error) {
	q := r.URL.Query()
	rawSeasons, hasSeasons := q["season"]
	_, hasMode := q["workingday"]
	if !hasSeasons && !hasMode {
		return current, false, nil
	}

	names := current.SeasonNames()
	if hasSeasons {
		names = names[:0]
		for _, v := range rawSeasons {
			for _, part := range strings.Split(v, ",") {
				if part = strings.TrimSpace(part); part != "" {
					names = append(names, part)
				}
			}
		}
	}
	mode := current.WorkingDay.String()
	if hasMode {
		mode = q.Get("workingday")
	}
	sel, err := analysis.ParseSelection(names, mode)
	return sel, true, err
}

// currentView resolves the session selection, applying query overrides, and
// renders it.
func (s *Server) currentView(w http.ResponseWriter, r *http.Request) (*analysis.ViewModel, bool) {
	id := sessionID(r)
	sess, ok := s.sessions.Get(id)
	if !ok {
		s.fail(w, r, http.StatusInternalServerError, errors.New("session vanished"))
		return nil, false
	}
	sel, changed, err := selectionFromQuery(r, sess.Selection)
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, err)
		return nil, false
	}
	if changed {
		if sess, ok = s.sessions.SetSelection(id, sel); !ok {
			s.fail(w, r, http.StatusInternalServerError, errors.New("session vanished"))
			return nil, false
		}
	}

	started := time.Now()
	vm, err := analysis.Render(&sess, s.tables)
	switch {
	case err != nil:
		s.metrics.observeRender("error", started)
		s.fail(w, r, http.StatusInternalServerError, err)
		return nil, false
	case vm.Warning != nil:
		s.metrics.observeRender("empty", started)
	default:
		s.metrics.observeRender("ok", started)
	}
	return vm, true
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	vm, ok := s.currentView(w, r)
	if !ok {
		return
	}
	render.JSON(w, r, vm)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "dataset")
	f, err := export.Lookup(chi.URLParam(r, "format"))
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, err)
		return
	}
	vm, ok := s.currentView(w, r)
	if !ok {
		return
	}
	views, err := export.SelectViews(name, f, vm.FilteredDaily, vm.FilteredHourly)
	if err != nil {
		s.fail(w, r, http.StatusBadRequest, err)
		return
	}

	var buf bytes.Buffer
	if err := f.Write(&buf, views...); err != nil {
		s.fail(w, r, http.StatusInternalServerError, err)
		return
	}
	s.metrics.observeExport(strings.ToLower(name), f.Name())

	w.Header().Set("Content-Type", f.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName(strings.ToLower(name), f)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
