package server

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/marcus/journey-keeper/internal/journey"
)

// AttachRequest is the body for POST .../steps/{step_id}/attachments.
type AttachRequest struct {
	Kind  string   `json:"kind" validate:"required,oneof=user_uploaded ai_generated"`
	Ref   string   `json:"ref" validate:"required"`
	Label string   `json:"label"`
	Notes string   `json:"notes"`
	Tags  []string `json:"tags"`
}

// handleAttach stores a new attachment on a step. Attachments are accepted
// in every step status.
func (s *Server) handleAttach(w http.ResponseWriter, r *http.Request) {
	var req AttachRequest
	if err := s.decodeRequest(r, &req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	stepID := r.PathValue("step_id")
	var created *journey.Attachment
	s.mutateJourney(w, r, func(ag *journey.Aggregate) error {
		annotations := journey.Annotations{Label: req.Label, Notes: req.Notes, Tags: req.Tags}
		att, err := ag.Attach(stepID, req.Kind, req.Ref, annotations)
		if err != nil {
			return err
		}
		created = att
		return nil
	}, func(_ *journey.Aggregate) any {
		return created
	})
}

// handleListAttachments lists a step's attachments in creation order.
// Superseded attachments are hidden unless include_superseded=true.
func (s *Server) handleListAttachments(w http.ResponseWriter, r *http.Request) {
	stepID := r.PathValue("step_id")
	includeSuperseded := r.URL.Query().Get("include_superseded") == "true"

	s.readJourney(w, r, func(ag *journey.Aggregate) any {
		if _, err := ag.Registry().Step(stepID); err != nil {
			return map[string]any{"attachments": []*journey.Attachment{}}
		}
		return map[string]any{
			"attachments": ag.Attachments().ListForStep(stepID, includeSuperseded),
		}
	})
}

// UpdateAnnotationsRequest is the body for PATCH .../annotations.
type UpdateAnnotationsRequest struct {
	Label string   `json:"label"`
	Notes string   `json:"notes"`
	Tags  []string `json:"tags"`
}

// handleUpdateAnnotations replaces an attachment's label, notes and tags.
func (s *Server) handleUpdateAnnotations(w http.ResponseWriter, r *http.Request) {
	var req UpdateAnnotationsRequest
	if err := s.decodeRequest(r, &req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	attachmentID, err := pathUUID(r, "attachment_id")
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	var updated *journey.Attachment
	s.mutateJourney(w, r, func(ag *journey.Aggregate) error {
		att, err := ag.UpdateAnnotations(attachmentID, journey.Annotations{
			Label: req.Label,
			Notes: req.Notes,
			Tags:  req.Tags,
		})
		if err != nil {
			return err
		}
		updated = att
		return nil
	}, func(_ *journey.Aggregate) any {
		return updated
	})
}

// MarkReplacedRequest is the body for POST .../replace.
type MarkReplacedRequest struct {
	ReplacedBy string `json:"replaced_by" validate:"required,uuid"`
}

// handleMarkReplaced marks an attachment as superseded by another one on the
// same step.
func (s *Server) handleMarkReplaced(w http.ResponseWriter, r *http.Request) {
	var req MarkReplacedRequest
	if err := s.decodeRequest(r, &req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	attachmentID, err := pathUUID(r, "attachment_id")
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	newID := uuid.MustParse(req.ReplacedBy)

	s.mutateJourney(w, r, func(ag *journey.Aggregate) error {
		return ag.MarkReplaced(attachmentID, newID)
	}, nil)
}

// RelateRequest is the body for POST /journeys/{id}/attachments/relate.
type RelateRequest struct {
	AttachmentA string `json:"attachment_a" validate:"required,uuid"`
	AttachmentB string `json:"attachment_b" validate:"required,uuid"`
}

// handleRelateAttachments links two attachments symmetrically, possibly
// across steps.
func (s *Server) handleRelateAttachments(w http.ResponseWriter, r *http.Request) {
	var req RelateRequest
	if err := s.decodeRequest(r, &req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	idA := uuid.MustParse(req.AttachmentA)
	idB := uuid.MustParse(req.AttachmentB)

	s.mutateJourney(w, r, func(ag *journey.Aggregate) error {
		return ag.RelateAttachments(idA, idB)
	}, nil)
}
