package journey

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// AttachmentStore tracks attachment metadata and the replacement/relation
// graph for one journey. Binary content lives with an external collaborator;
// the store only ever sees opaque refs.
type AttachmentStore struct {
	journeyID uuid.UUID
	byID      map[uuid.UUID]*Attachment
	byStep    map[string][]uuid.UUID
}

// NewAttachmentStore builds a store over existing attachments, e.g. when a
// repository rehydrates a journey.
func NewAttachmentStore(journeyID uuid.UUID, attachments []*Attachment) *AttachmentStore {
	st := &AttachmentStore{
		journeyID: journeyID,
		byID:      make(map[uuid.UUID]*Attachment, len(attachments)),
		byStep:    make(map[string][]uuid.UUID),
	}
	for _, a := range attachments {
		st.byID[a.ID] = a
		st.byStep[a.StepID] = append(st.byStep[a.StepID], a.ID)
	}
	return st
}

// Attach records a new attachment on a step. The step may be in any status;
// attaching reference images to a not_started step while planning ahead is a
// supported case. The caller has already persisted the binary behind ref.
func (st *AttachmentStore) Attach(stepID, kind, ref string, annotations Annotations) *Attachment {
	a := &Attachment{
		ID:          uuid.New(),
		JourneyID:   st.journeyID,
		StepID:      stepID,
		Kind:        kind,
		Ref:         ref,
		Annotations: annotations,
		CreatedAt:   time.Now().UTC(),
	}
	st.byID[a.ID] = a
	st.byStep[stepID] = append(st.byStep[stepID], a.ID)
	return a
}

// Get returns the attachment with the given ID.
func (st *AttachmentStore) Get(id uuid.UUID) (*Attachment, error) {
	a, ok := st.byID[id]
	if !ok {
		return nil, &UnknownAttachmentError{AttachmentID: id}
	}
	return a, nil
}

// MarkReplaced supersedes oldID with newID. Both attachments must belong to
// the same step, and the edge must not close a cycle in the replaced-by
// chain. The superseded attachment is retained to preserve history.
func (st *AttachmentStore) MarkReplaced(oldID, newID uuid.UUID) error {
	oldA, err := st.Get(oldID)
	if err != nil {
		return err
	}
	newA, err := st.Get(newID)
	if err != nil {
		return err
	}
	if oldA.StepID != newA.StepID {
		return &CrossStepReplacementError{OldStepID: oldA.StepID, NewStepID: newA.StepID}
	}

	// Walk the chain from the replacement; reaching oldID means the new
	// edge would let a walk revisit its origin.
	for cur := newA; cur != nil; {
		if cur.ID == oldID {
			return &ReplacementCycleError{OldID: oldID, NewID: newID}
		}
		if cur.ReplacedByID == nil {
			break
		}
		cur = st.byID[*cur.ReplacedByID]
	}

	oldA.ReplacedByID = &newID
	return nil
}

// Relate records a symmetric "variant of" relation between two attachments.
// It is purely a lookup aid and carries no ownership or deletion semantics.
func (st *AttachmentStore) Relate(idA, idB uuid.UUID) error {
	a, err := st.Get(idA)
	if err != nil {
		return err
	}
	b, err := st.Get(idB)
	if err != nil {
		return err
	}
	if idA == idB {
		return nil
	}
	a.RelatedIDs = appendIDOnce(a.RelatedIDs, idB)
	b.RelatedIDs = appendIDOnce(b.RelatedIDs, idA)
	return nil
}

// UpdateAnnotations replaces the user-owned annotations on an attachment.
// Only an explicit user command reaches here; nothing else in the system
// writes annotations.
func (st *AttachmentStore) UpdateAnnotations(id uuid.UUID, annotations Annotations) (*Attachment, error) {
	a, err := st.Get(id)
	if err != nil {
		return nil, err
	}
	a.Annotations = annotations
	return a, nil
}

// ListForStep returns the step's attachments in creation order. With
// includeSuperseded false, attachments that have been replaced are filtered
// out of view (they are still stored).
func (st *AttachmentStore) ListForStep(stepID string, includeSuperseded bool) []*Attachment {
	ids := st.byStep[stepID]
	out := make([]*Attachment, 0, len(ids))
	for _, id := range ids {
		a := st.byID[id]
		if !includeSuperseded && a.Superseded() {
			continue
		}
		out = append(out, a)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// All returns every attachment in the store in creation order, superseded
// included. Used by the repository when persisting full state.
func (st *AttachmentStore) All() []*Attachment {
	out := make([]*Attachment, 0, len(st.byID))
	for _, a := range st.byID {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func appendIDOnce(ids []uuid.UUID, id uuid.UUID) []uuid.UUID {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}
