package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/marcus/journey-keeper/internal/journey"
	"github.com/marcus/journey-keeper/internal/templates"
)

// HTTPStatus maps a domain error to an HTTP status code.
func HTTPStatus(err error) int {
	var (
		notFound     *journey.NotFoundError
		unknownTmpl  *journey.UnknownTemplateError
		unknownStep  *journey.UnknownStepError
		unknownAtt   *journey.UnknownAttachmentError
		depError     *journey.DependencyNotSatisfiedError
		concurrent   *journey.ConcurrentModificationError
		replaceCycle *journey.ReplacementCycleError
		invalidTrans *journey.InvalidTransitionError
		crossStep    *journey.CrossStepReplacementError
		cyclicTmpl   *journey.CyclicTemplateError
		defError     *templates.DefinitionError
	)

	switch {
	case errors.As(err, &notFound),
		errors.As(err, &unknownTmpl),
		errors.As(err, &unknownStep),
		errors.As(err, &unknownAtt):
		return http.StatusNotFound
	case errors.As(err, &depError),
		errors.As(err, &concurrent),
		errors.As(err, &replaceCycle),
		errors.As(err, &invalidTrans):
		return http.StatusConflict
	case errors.As(err, &crossStep),
		errors.As(err, &cyclicTmpl),
		errors.As(err, &defError):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// domainError writes a domain error with its mapped status. Dependency
// failures carry the unmet step list so clients can tell the user what
// to finish first.
func (s *Server) domainError(w http.ResponseWriter, err error) {
	status := HTTPStatus(err)

	var depError *journey.DependencyNotSatisfiedError
	if errors.As(err, &depError) {
		s.jsonResponse(w, status, map[string]any{
			"error":         "finish " + strings.Join(depError.Missing, ", ") + " first",
			"step_id":       depError.StepID,
			"missing_steps": depError.Missing,
		})
		return
	}

	s.errorResponse(w, status, err.Error())
}
