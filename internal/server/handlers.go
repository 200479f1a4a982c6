package server

import (
	"bytes"
	"net/http"

	"github.com/jonathan/claimhound/internal/analytics"
	"github.com/jonathan/claimhound/internal/rendering"
	"github.com/jonathan/claimhound/internal/types"
)

// ClaimsResponse represents the response for GET /claims
type ClaimsResponse struct {
	Filter analytics.Filter `json:"filter"`
	Total  int              `json:"total"`
	Claims []types.Claim    `json:"claims"`
}

// StatsResponse represents the response for GET /stats
type StatsResponse struct {
	Filter     analytics.Filter  `json:"filter"`
	Stats      types.RunStats    `json:"stats"`
	Categories []analytics.Count `json:"categories"`
	Locations  []analytics.Count `json:"locations"`
	// Options lists filter values over the whole collection, not the filtered set.
	Options analytics.Options `json:"options"`
}

// TimelineResponse represents the response for GET /stats/timeline
type TimelineResponse struct {
	Filter   analytics.Filter          `json:"filter"`
	Timeline []analytics.TimelinePoint `json:"timeline"`
}

func filterFromRequest(r *http.Request) analytics.Filter {
	q := r.URL.Query()
	return analytics.Filter{
		Category: q.Get("category"),
		Location: q.Get("location"),
		Author:   q.Get("author"),
	}
}

// filteredClaims loads the cached claims and applies the request's filter.
func (s *Server) filteredClaims(r *http.Request) ([]types.Claim, []types.Claim, analytics.Filter, error) {
	all, err := s.store.Claims()
	if err != nil {
		return nil, nil, analytics.Filter{}, err
	}
	f := filterFromRequest(r)
	return all, analytics.Apply(all, f), f, nil
}

// handleClaims returns the claims matching the query filters
func (s *Server) handleClaims(w http.ResponseWriter, r *http.Request) {
	_, claims, f, err := s.filteredClaims(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, ClaimsResponse{Filter: f, Total: len(claims), Claims: claims})
}

// handleStats returns review statistics and counts over the filtered claims
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	all, claims, f, err := s.filteredClaims(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, StatsResponse{
		Filter:     f,
		Stats:      analytics.ComputeStats(claims),
		Categories: analytics.TopN(analytics.CountByCategory(claims), 0),
		Locations:  analytics.TopN(analytics.CountByLocation(claims), 0),
		Options:    analytics.FilterOptions(all),
	})
}

// handleTimeline returns daily claim counts over the filtered claims
func (s *Server) handleTimeline(w http.ResponseWriter, r *http.Request) {
	_, claims, f, err := s.filteredClaims(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	timeline := analytics.Timeline(claims)
	if timeline == nil {
		timeline = []analytics.TimelinePoint{}
	}
	s.jsonResponse(w, http.StatusOK, TimelineResponse{Filter: f, Timeline: timeline})
}

// handleIndex renders the highlight view of the filtered claims
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	_, claims, f, err := s.filteredClaims(r)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	title := "Extracted Claims"
	if !f.Empty() {
		title += " (filtered)"
	}

	var buf bytes.Buffer
	if err := rendering.Render(&buf, claims, rendering.Options{Title: title}); err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		s.logger.Warn("failed to write page", "error", err)
	}
}

// handleReload drops the cached claims so the next read reloads the file
func (s *Server) handleReload(w http.ResponseWriter, _ *http.Request) {
	s.store.Invalidate()
	s.logger.Info("claims cache invalidated", "path", s.store.Path())
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "reloaded"})
}
