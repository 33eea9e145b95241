package server

import (
	"net/http"

	"github.com/marcus/journey-keeper/internal/assist"
)

// SuggestRequest is the body for POST .../steps/{step_id}/suggest.
type SuggestRequest struct {
	Notes string `json:"notes"`
}

// handleSuggestStepData asks the assist model for draft step data. The
// suggestion is returned to the caller and never written to the journey;
// accepting it goes through the normal edit route.
func (s *Server) handleSuggestStepData(w http.ResponseWriter, r *http.Request) {
	if s.assist == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "suggestions are not configured")
		return
	}

	var req SuggestRequest
	if err := s.decodeRequest(r, &req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

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

	suggestion, err := s.assist.SuggestStepData(r.Context(), assist.SuggestionRequest{
		TemplateName: ag.Registry().Template().Name,
		StepName:     step.Name,
		StepData:     step.Data,
		Notes:        req.Notes,
	})
	if err != nil {
		s.errorResponse(w, http.StatusBadGateway, "suggestion failed: "+err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"step_id":    stepID,
		"suggestion": suggestion,
	})
}
