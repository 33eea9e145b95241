package server

import (
	"net/http"

	"github.com/marcus/journey-keeper/internal/journey"
)

// handleStepBoard returns the steps grouped by workflow lane.
func (s *Server) handleStepBoard(w http.ResponseWriter, r *http.Request) {
	s.readJourney(w, r, func(ag *journey.Aggregate) any {
		return ag.Board()
	})
}

// handleGetStep returns a single step with its attachments.
func (s *Server) handleGetStep(w http.ResponseWriter, r *http.Request) {
	journeyID, err := pathUUID(r, "id")
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	ag, err := s.loadAggregate(r, journeyID)
	if err != nil {
		s.domainError(w, err)
		return
	}

	stepID := r.PathValue("step_id")
	step, err := ag.Registry().Step(stepID)
	if err != nil {
		s.domainError(w, err)
		return
	}
	attachments := ag.Attachments().ListForStep(stepID, true)

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"step":        step,
		"attachments": attachments,
	})
}

// CompleteStepRequest is the body for POST .../steps/{step_id}/complete.
type CompleteStepRequest struct {
	Data  map[string]interface{} `json:"data"`
	Force bool                   `json:"force"`
}

// handleCompleteStep marks a step completed, recording the force flag when
// dependencies were overridden, and advances the current step pointer.
func (s *Server) handleCompleteStep(w http.ResponseWriter, r *http.Request) {
	var req CompleteStepRequest
	if err := s.decodeRequest(r, &req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	stepID := r.PathValue("step_id")
	s.mutateJourney(w, r, func(ag *journey.Aggregate) error {
		return ag.CompleteStep(stepID, req.Data, req.Force)
	}, nil)
}

// EditStepRequest is the body for POST .../steps/{step_id}/edit.
type EditStepRequest struct {
	Data map[string]interface{} `json:"data" validate:"required"`
}

// handleEditStep merges new data into a step. Editing a completed step
// reopens it and flags completed dependents for attention.
func (s *Server) handleEditStep(w http.ResponseWriter, r *http.Request) {
	var req EditStepRequest
	if err := s.decodeRequest(r, &req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	stepID := r.PathValue("step_id")
	s.mutateJourney(w, r, func(ag *journey.Aggregate) error {
		return ag.EditStep(stepID, req.Data)
	}, nil)
}

// handleSkipStep skips an optional step, removing it from the completion
// mandate and the progress denominator.
func (s *Server) handleSkipStep(w http.ResponseWriter, r *http.Request) {
	stepID := r.PathValue("step_id")
	s.mutateJourney(w, r, func(ag *journey.Aggregate) error {
		return ag.SkipStep(stepID)
	}, nil)
}

// handleResolveAttention re-confirms a step that was flagged after an
// upstream edit. Dependencies are re-checked before it returns to completed.
func (s *Server) handleResolveAttention(w http.ResponseWriter, r *http.Request) {
	stepID := r.PathValue("step_id")
	s.mutateJourney(w, r, func(ag *journey.Aggregate) error {
		return ag.ResolveAttention(stepID)
	}, nil)
}
