package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/marcus/journey-keeper/internal/journey"
	"github.com/marcus/journey-keeper/internal/server/middleware"
)

// pathUUID parses a UUID path segment such as {id}.
func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(r.PathValue(name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s: %w", name, err)
	}
	return id, nil
}

// decodeRequest decodes a JSON body and runs struct validation on it.
func (s *Server) decodeRequest(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	if err := s.validate.Struct(dst); err != nil {
		return fmt.Errorf("invalid request: %w", err)
	}
	return nil
}

// loadAggregate fetches a journey for the calling owner and rebuilds its
// in-memory aggregate from the catalog template. A journey belonging to a
// different owner is reported as not found.
func (s *Server) loadAggregate(r *http.Request, journeyID uuid.UUID) (*journey.Aggregate, error) {
	ownerID, ok := middleware.OwnerFromContext(r.Context())
	if !ok {
		return nil, fmt.Errorf("missing owner identity")
	}

	j, attachments, err := s.db.GetJourney(r.Context(), journeyID)
	if err != nil {
		return nil, err
	}
	if j.OwnerID != ownerID {
		return nil, &journey.NotFoundError{JourneyID: journeyID}
	}

	tmpl, err := s.catalog.Get(j.TemplateID)
	if err != nil {
		return nil, err
	}
	return journey.Restore(tmpl, j, attachments)
}

// mutateJourney runs a command against a journey under its per-journey lock
// and persists the result. The saved journey is written back as the response
// unless respond is non-nil, in which case respond supplies the payload.
func (s *Server) mutateJourney(w http.ResponseWriter, r *http.Request, fn func(ag *journey.Aggregate) error, respond func(ag *journey.Aggregate) any) {
	journeyID, err := pathUUID(r, "id")
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	unlock := s.locks.Lock(journeyID)
	defer unlock()

	ag, err := s.loadAggregate(r, journeyID)
	if err != nil {
		s.domainError(w, err)
		return
	}

	if err := fn(ag); err != nil {
		s.domainError(w, err)
		return
	}

	if err := s.db.SaveJourney(r.Context(), ag.Journey(), ag.Attachments().All()); err != nil {
		s.domainError(w, err)
		return
	}

	if respond != nil {
		s.jsonResponse(w, http.StatusOK, respond(ag))
		return
	}
	s.jsonResponse(w, http.StatusOK, ag.Journey())
}

// readJourney loads a journey without taking its lock, for read-only routes.
func (s *Server) readJourney(w http.ResponseWriter, r *http.Request, respond func(ag *journey.Aggregate) any) {
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

	s.jsonResponse(w, http.StatusOK, respond(ag))
}
