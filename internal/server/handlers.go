package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/structview/structview/internal/engine"
	"github.com/structview/structview/internal/loader"
	"github.com/structview/structview/pkg/core"
	"github.com/structview/structview/pkg/schema"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 500

	// httpSource is stored as the report source for API validations.
	httpSource = "http"
)

type validateResponse struct {
	ID     string            `json:"id,omitempty"`
	Valid  bool              `json:"valid"`
	Errors []core.Diagnostic `json:"errors"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleValidate(w http.ResponseWriter, r *http.Request) {
	p, ok := s.decodeProject(w, r)
	if !ok {
		return
	}

	report, err := s.engine.Validate(r.Context(), p, httpSource)
	if err != nil {
		s.engineError(w, r, err)
		return
	}

	s.notifier.Broadcast(&core.ReportSummary{
		ID:         report.ID,
		Project:    report.Project,
		Source:     report.Source,
		Valid:      report.Valid,
		ErrorCount: len(report.Diagnostics),
		CheckedAt:  report.CheckedAt,
	})

	s.respond(w, r, http.StatusOK, validateResponse{
		ID:     report.ID,
		Valid:  report.Valid,
		Errors: report.Diagnostics,
	})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	p, ok := s.decodeProject(w, r)
	if !ok {
		return
	}

	stub, err := s.engine.Analyze(r.Context(), p)
	if err != nil {
		s.engineError(w, r, err)
		return
	}

	s.respond(w, r, http.StatusOK, stub)
}

func (s *Server) handleListValidations(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			s.detail(w, r, http.StatusBadRequest, "limit", "must be a positive integer")
			return
		}
		limit = min(n, maxHistoryLimit)
	}

	summaries, err := s.engine.History(r.Context(), limit)
	if err != nil {
		s.engineError(w, r, err)
		return
	}

	s.respond(w, r, http.StatusOK, summaries)
}

func (s *Server) handleGetValidation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	report, err := s.engine.Report(r.Context(), id)
	if err != nil {
		s.engineError(w, r, err)
		return
	}

	s.respond(w, r, http.StatusOK, report)
}

// decodeProject reads the request body in the format named by Content-Type.
// On failure the error response has been written.
func (s *Server) decodeProject(w http.ResponseWriter, r *http.Request) (*core.Project, bool) {
	format, err := loader.FormatFromContentType(r.Header.Get("Content-Type"))
	if err != nil {
		s.detail(w, r, http.StatusUnsupportedMediaType, "body", err.Error())
		return nil, false
	}

	p, err := loader.Decode(r.Body, format)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.detail(w, r, http.StatusRequestEntityTooLarge, "body",
				fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
			return nil, false
		}
		s.detail(w, r, http.StatusUnprocessableEntity, "body", err.Error())
		return nil, false
	}

	return p, true
}

// engineError maps engine failures onto HTTP statuses.
func (s *Server) engineError(w http.ResponseWriter, r *http.Request, err error) {
	var fieldErrs schema.Errors
	switch {
	case errors.As(err, &fieldErrs):
		s.respond(w, r, http.StatusUnprocessableEntity, detailResponse{Detail: fieldErrs.Diagnostics()})
	case errors.Is(err, core.ErrNotFound):
		s.detail(w, r, http.StatusNotFound, "id", "validation not found")
	case errors.Is(err, engine.ErrNoStore):
		s.detail(w, r, http.StatusServiceUnavailable, "", err.Error())
	default:
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
		s.detail(w, r, http.StatusInternalServerError, "", "internal server error")
	}
}
