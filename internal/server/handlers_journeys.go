package server

import (
	"net/http"
	"strconv"

	"github.com/marcus/journey-keeper/internal/db"
	"github.com/marcus/journey-keeper/internal/journey"
	"github.com/marcus/journey-keeper/internal/server/middleware"
)

// StartJourneyRequest is the body for POST /journeys.
type StartJourneyRequest struct {
	TemplateID string `json:"template_id" validate:"required"`
}

// handleStartJourney creates a journey from a template and persists it with
// its first step already in progress.
func (s *Server) handleStartJourney(w http.ResponseWriter, r *http.Request) {
	var req StartJourneyRequest
	if err := s.decodeRequest(r, &req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	ownerID, ok := middleware.OwnerFromContext(r.Context())
	if !ok {
		s.errorResponse(w, http.StatusUnauthorized, "missing owner identity")
		return
	}

	tmpl, err := s.catalog.Get(req.TemplateID)
	if err != nil {
		s.domainError(w, err)
		return
	}

	ag, err := journey.Start(tmpl, ownerID)
	if err != nil {
		s.domainError(w, err)
		return
	}

	if err := s.db.CreateJourney(r.Context(), ag.Journey(), ag.Attachments().All()); err != nil {
		s.domainError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusCreated, ag.Journey())
}

// handleListJourneys returns the calling owner's journey summaries.
func (s *Server) handleListJourneys(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.OwnerFromContext(r.Context())
	if !ok {
		s.errorResponse(w, http.StatusUnauthorized, "missing owner identity")
		return
	}

	opts := db.ListJourneysOptions{Status: r.URL.Query().Get("status")}
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.errorResponse(w, http.StatusBadRequest, "invalid limit")
			return
		}
		opts.Limit = n
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.errorResponse(w, http.StatusBadRequest, "invalid offset")
			return
		}
		opts.Offset = n
	}

	summaries, err := s.db.ListJourneysByOwner(r.Context(), ownerID, opts)
	if err != nil {
		s.domainError(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{"journeys": summaries})
}

// handleGetJourney returns a full journey with its steps.
func (s *Server) handleGetJourney(w http.ResponseWriter, r *http.Request) {
	s.readJourney(w, r, func(ag *journey.Aggregate) any {
		return ag.Journey()
	})
}

func (s *Server) handlePauseJourney(w http.ResponseWriter, r *http.Request) {
	s.mutateJourney(w, r, func(ag *journey.Aggregate) error {
		return ag.Pause()
	}, nil)
}

func (s *Server) handleResumeJourney(w http.ResponseWriter, r *http.Request) {
	s.mutateJourney(w, r, func(ag *journey.Aggregate) error {
		return ag.Resume()
	}, nil)
}

func (s *Server) handleAbandonJourney(w http.ResponseWriter, r *http.Request) {
	s.mutateJourney(w, r, func(ag *journey.Aggregate) error {
		return ag.Abandon()
	}, nil)
}

// NavigateRequest is the body for POST /journeys/{id}/navigate.
type NavigateRequest struct {
	StepID string `json:"step_id" validate:"required"`
}

// handleNavigate moves the current step pointer without changing any step
// status.
func (s *Server) handleNavigate(w http.ResponseWriter, r *http.Request) {
	var req NavigateRequest
	if err := s.decodeRequest(r, &req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	s.mutateJourney(w, r, func(ag *journey.Aggregate) error {
		return ag.NavigateTo(req.StepID)
	}, nil)
}
