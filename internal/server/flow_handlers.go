package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/raphaelgruber/flowmind/internal/flow"
	"github.com/raphaelgruber/flowmind/internal/metrics"
)

type entryRequest struct {
	Text string `json:"text" validate:"required,max=2000"`
}

type detailRequest struct {
	Text string `json:"text" validate:"required,max=2000"`
}

// session returns the flow store for the authenticated user.
func (s *Server) session(r *http.Request) *flow.Store {
	return s.sessions.For(UserID(r.Context()))
}

func (s *Server) handleAddEntry(w http.ResponseWriter, r *http.Request) {
	var req entryRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	start := time.Now()
	res, err := s.session(r).AddEntry(req.Text)
	s.collector.RecordTiming(metrics.OpAnalyze, time.Since(start))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (s *Server) handleListEntries(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.session(r).Entries())
}

func (s *Server) handleGetEntry(w http.ResponseWriter, r *http.Request) {
	entry, ok := s.session(r).Entry(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "entry not found")
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) handleToggleEntry(w http.ResponseWriter, r *http.Request) {
	entry, err := s.session(r).ToggleEntry(chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}

func (s *Server) handleDeleteEntry(w http.ResponseWriter, r *http.Request) {
	if err := s.session(r).DeleteEntry(chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddDetail(w http.ResponseWriter, r *http.Request) {
	var req detailRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	detail, err := s.session(r).AddDetail(chi.URLParam(r, "id"), req.Text)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, detail)
}

func (s *Server) handleListDrafts(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.session(r).Drafts())
}

func (s *Server) handlePromoteDraft(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	res, err := s.session(r).PromoteDraft(chi.URLParam(r, "id"))
	s.collector.RecordTiming(metrics.OpConnect, time.Since(start))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleDiscardDraft(w http.ResponseWriter, r *http.Request) {
	if err := s.session(r).DiscardDraft(chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleAddTasks(w http.ResponseWriter, r *http.Request) {
	var req entryRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}
	writeJSON(w, http.StatusCreated, s.session(r).AddTasks(req.Text))
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.session(r).Tasks())
}

func (s *Server) handleToggleTask(w http.ResponseWriter, r *http.Request) {
	task, err := s.session(r).ToggleTask(chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := s.session(r).DeleteTask(chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListConnections(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.session(r).Connections())
}

func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	writeJSON(w, http.StatusOK, s.session(r).Suggestions(limit))
}

func (s *Server) handleSessionStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.session(r).SessionStats())
}
