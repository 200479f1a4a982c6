package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/jonathan/claimhound/internal/db"
	"github.com/jonathan/claimhound/internal/pipeline"
)

const (
	defaultRunsLimit = 20
	maxRunsLimit     = 100
)

// RunRequest represents the request body for POST /runs
type RunRequest struct {
	// Concurrency overrides the configured concurrency; 0 keeps it.
	Concurrency int `json:"concurrency" validate:"gte=0,lte=16"`
}

// RunSummary is the data of the final "complete" event of POST /runs
type RunSummary struct {
	RunID      string `json:"run_id,omitempty"`
	Status     string `json:"status"`
	Total      int    `json:"total"`
	Processed  int    `json:"processed"`
	Errors     int    `json:"errors"`
	Claims     int    `json:"claims"`
	DurationMS int64  `json:"duration_ms"`
	Warnings   int    `json:"warnings"`
}

// handleCreateRun runs extraction over the posts file and streams progress as SSE
func (s *Server) handleCreateRun(w http.ResponseWriter, r *http.Request) {
	if s.extractor == nil {
		s.fail(w, r, &ErrUnavailable{Feature: "extraction backend"})
		return
	}

	var req RunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		s.fail(w, r, &ErrValidation{Field: "body", Message: "invalid JSON: " + err.Error()})
		return
	}
	if err := s.validate.Struct(req); err != nil {
		s.fail(w, r, validationError(err))
		return
	}

	if !s.running.CompareAndSwap(false, true) {
		s.fail(w, r, &ErrRunInProgress{})
		return
	}
	defer s.running.Store(false)

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	opts := s.cfg.RunOptions
	if req.Concurrency > 0 {
		opts.Concurrency = req.Concurrency
	}
	opts.Logger = s.logger
	opts.OnProgress = func(event pipeline.ProgressEvent) {
		if err := sse.WriteEvent("progress", event); err != nil {
			s.logger.Debug("progress event not delivered", "error", err)
		}
	}

	job := pipeline.Job{
		PostsFile:  s.cfg.PostsFile,
		ClaimsFile: s.cfg.ClaimsFile,
		Provider:   s.cfg.Provider,
	}
	if s.runs != nil {
		job.Store = s.runs
	}

	out, err := pipeline.NewRunner(s.extractor, opts).RunJob(r.Context(), job)
	if out == nil {
		sse.WriteError(err.Error())
		return
	}

	summary := RunSummary{
		Status:   db.RunStatusCompleted,
		Total:    out.Total,
		Warnings: len(out.Warnings),
	}
	if out.RunID != uuid.Nil {
		summary.RunID = out.RunID.String()
	}
	if out.Result != nil {
		summary.Processed = out.ProcessedCount
		summary.Errors = out.ErrorCount
		summary.Claims = out.Extracted()
		summary.DurationMS = out.Duration.Milliseconds()
	}

	if err != nil {
		if r.Context().Err() != nil {
			s.logger.Info("extraction run abandoned by client", "processed", summary.Processed)
			return
		}
		// The claims file may have been replaced before validation failed.
		s.store.Invalidate()
		sse.WriteError(err.Error())
		return
	}

	s.store.Invalidate()
	sse.WriteComplete(summary)
}

// handleListRuns lists persisted runs, newest first
func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if s.runs == nil {
		s.fail(w, r, &ErrUnavailable{Feature: "database"})
		return
	}

	limit, err := parseLimit(r, defaultRunsLimit)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	runs, err := s.runs.ListRuns(r.Context(), limit)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if runs == nil {
		runs = []db.Run{}
	}
	s.jsonResponse(w, http.StatusOK, map[string]any{"runs": runs})
}

// handleGetRun returns one persisted run
func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	run, ok := s.lookupRun(w, r)
	if !ok {
		return
	}
	s.jsonResponse(w, http.StatusOK, run)
}

// handleDeleteRun deletes a persisted run and its claims
func (s *Server) handleDeleteRun(w http.ResponseWriter, r *http.Request) {
	run, ok := s.lookupRun(w, r)
	if !ok {
		return
	}
	if err := s.runs.DeleteRun(r.Context(), run.ID); err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "deleted", "run_id": run.ID.String()})
}

// handleRunClaims returns the claims of a persisted run, filtered like GET /claims
func (s *Server) handleRunClaims(w http.ResponseWriter, r *http.Request) {
	run, ok := s.lookupRun(w, r)
	if !ok {
		return
	}

	limit, err := parseLimit(r, 0)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	f := filterFromRequest(r)

	claims, err := s.runs.ListClaims(r.Context(), run.ID, db.ClaimFilters{
		Category: f.Category,
		Location: f.Location,
		Author:   f.Author,
		Limit:    limit,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, ClaimsResponse{Filter: f, Total: len(claims), Claims: claims})
}

// lookupRun resolves the {id} path value, writing the error response itself.
func (s *Server) lookupRun(w http.ResponseWriter, r *http.Request) (*db.Run, bool) {
	if s.runs == nil {
		s.fail(w, r, &ErrUnavailable{Feature: "database"})
		return nil, false
	}

	idStr := r.PathValue("id")
	id, err := uuid.Parse(idStr)
	if err != nil {
		s.fail(w, r, &ErrValidation{Field: "id", Message: "invalid run ID"})
		return nil, false
	}

	run, err := s.runs.GetRun(r.Context(), id)
	if err != nil {
		s.fail(w, r, err)
		return nil, false
	}
	if run == nil {
		s.fail(w, r, &ErrNotFound{Resource: "run", ID: idStr})
		return nil, false
	}
	return run, true
}

func parseLimit(r *http.Request, def int) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return def, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 || limit > maxRunsLimit {
		return 0, &ErrValidation{Field: "limit", Message: "must be an integer between 1 and 100"}
	}
	return limit, nil
}
