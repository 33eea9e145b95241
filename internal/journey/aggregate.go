package journey

import (
	"time"

	"github.com/google/uuid"
)

// Aggregate is the single entry point for all mutating commands on one
// journey. It owns cross-step consistency: the edit cascade, progress
// aggregation, and the current-step pointer. Commands validate before they
// mutate, so a failed command leaves the aggregate untouched and no partial
// cascade can ever be persisted.
//
// An aggregate instance is exclusively owned by one writer at a time; the
// caller serializes commands per journey ID.
type Aggregate struct {
	journey     *Journey
	registry    *Registry
	attachments *AttachmentStore
}

// Start materializes a new journey from a template: one step per template
// entry, all not_started except the lowest-ordinal step, which begins
// in_progress and becomes the current step. A template that fails validation
// aborts journey creation entirely.
func Start(tmpl *Template, ownerID uuid.UUID) (*Aggregate, error) {
	if err := tmpl.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	ordered := tmpl.stepsByOrdinal()
	steps := make([]*Step, 0, len(ordered))
	for _, st := range ordered {
		steps = append(steps, &Step{
			ID:     st.ID,
			Name:   st.Name,
			Status: StepStatusNotStarted,
		})
	}
	first := steps[0]
	first.Status = StepStatusInProgress
	first.StartedAt = &now

	j := &Journey{
		ID:             uuid.New(),
		OwnerID:        ownerID,
		TemplateID:     tmpl.ID,
		Status:         JourneyStatusInProgress,
		CurrentStepID:  first.ID,
		Steps:          steps,
		StartedAt:      now,
		LastActivityAt: now,
	}

	reg, err := NewRegistry(tmpl, steps)
	if err != nil {
		return nil, err
	}

	ag := &Aggregate{
		journey:     j,
		registry:    reg,
		attachments: NewAttachmentStore(j.ID, nil),
	}
	ag.recompute()
	return ag, nil
}

// Restore rebuilds an aggregate from persisted state. Progress is re-derived
// from the steps rather than trusted from storage, and a missing or stale
// current-step pointer is recomputed, so resuming after weeks away is
// indistinguishable from never having left.
func Restore(tmpl *Template, j *Journey, attachments []*Attachment) (*Aggregate, error) {
	reg, err := NewRegistry(tmpl, j.Steps)
	if err != nil {
		return nil, err
	}
	ag := &Aggregate{
		journey:     j,
		registry:    reg,
		attachments: NewAttachmentStore(j.ID, attachments),
	}
	if _, err := reg.Step(j.CurrentStepID); err != nil {
		j.CurrentStepID = ag.deriveCurrentStep()
	}
	ag.recompute()
	return ag, nil
}

// Journey returns the underlying journey state.
func (ag *Aggregate) Journey() *Journey {
	return ag.journey
}

// Registry returns the step registry for dependency and status queries.
func (ag *Aggregate) Registry() *Registry {
	return ag.registry
}

// Attachments returns the journey's attachment store. Reads may go through
// it directly; mutations should use the aggregate operations so activity
// tracking stays correct.
func (ag *Aggregate) Attachments() *AttachmentStore {
	return ag.attachments
}

// CompleteStep marks a step completed, advances the current-step pointer to
// the lowest-ordinal eligible not_started step, and recomputes progress and
// journey status. An optional data payload is merged before completion.
func (ag *Aggregate) CompleteStep(stepID string, data map[string]interface{}, force bool) error {
	if _, err := ag.registry.Transition(stepID, StepStatusCompleted, data, force); err != nil {
		return err
	}
	ag.advanceCurrentStep()
	ag.recompute()
	ag.touch()
	return nil
}

// EditStep merges data into a step and, when the step is completed, demotes
// every transitively dependent completed step to needs_attention. Dependent
// data is never touched: editing a completed step revokes downstream trust,
// not downstream work.
func (ag *Aggregate) EditStep(stepID string, data map[string]interface{}) error {
	s, err := ag.registry.Step(stepID)
	if err != nil {
		return err
	}
	wasCompleted := s.Status == StepStatusCompleted
	if _, err := ag.registry.EditData(stepID, data); err != nil {
		return err
	}
	if wasCompleted {
		ag.demoteDependents(stepID, false)
	}
	ag.recompute()
	ag.touch()
	return nil
}

// TransitionStep applies an explicit status change and, when the step leaves
// completed, flags every dependent that has been worked on as
// needs_attention.
func (ag *Aggregate) TransitionStep(stepID, status string, data map[string]interface{}, force bool) error {
	s, err := ag.registry.Step(stepID)
	if err != nil {
		return err
	}
	wasCompleted := s.Status == StepStatusCompleted
	if _, err := ag.registry.Transition(stepID, status, data, force); err != nil {
		return err
	}
	if wasCompleted && status != StepStatusCompleted {
		ag.demoteDependents(stepID, true)
	}
	ag.recompute()
	ag.touch()
	return nil
}

// SkipStep marks a step skipped. Skipped steps drop out of the progress
// denominator and the completion mandate.
func (ag *Aggregate) SkipStep(stepID string) error {
	return ag.TransitionStep(stepID, StepStatusSkipped, nil, false)
}

// NavigateTo moves the current-step pointer. Non-linear navigation is a
// first-class operation: it is legal regardless of the target step's status
// and changes nothing but the pointer and the activity timestamp.
func (ag *Aggregate) NavigateTo(stepID string) error {
	if _, err := ag.registry.Step(stepID); err != nil {
		return err
	}
	ag.journey.CurrentStepID = stepID
	ag.touch()
	return nil
}

// ResolveAttention acknowledges that a needs_attention step has been
// reviewed and restores it to completed. The dependency guarantee applies
// again on the way back: if the upstream step is itself no longer completed,
// the resolution fails with DependencyNotSatisfied.
func (ag *Aggregate) ResolveAttention(stepID string) error {
	s, err := ag.registry.Step(stepID)
	if err != nil {
		return err
	}
	if s.Status != StepStatusNeedsAttention {
		return &InvalidTransitionError{StepID: stepID, From: s.Status, To: StepStatusCompleted, Reason: "step is not flagged needs_attention"}
	}
	if _, err := ag.registry.Transition(stepID, StepStatusCompleted, nil, false); err != nil {
		return err
	}
	ag.recompute()
	ag.touch()
	return nil
}

// Pause suspends an in-progress journey.
func (ag *Aggregate) Pause() error {
	if ag.journey.Status != JourneyStatusInProgress {
		return &InvalidTransitionError{StepID: "", From: ag.journey.Status, To: JourneyStatusPaused, Reason: "only an in-progress journey can be paused"}
	}
	ag.journey.Status = JourneyStatusPaused
	ag.touch()
	return nil
}

// Resume reactivates a paused journey.
func (ag *Aggregate) Resume() error {
	if ag.journey.Status != JourneyStatusPaused {
		return &InvalidTransitionError{StepID: "", From: ag.journey.Status, To: JourneyStatusInProgress, Reason: "only a paused journey can be resumed"}
	}
	ag.journey.Status = JourneyStatusInProgress
	ag.recompute()
	ag.touch()
	return nil
}

// Abandon ends a journey without completing it. All collected data stays.
func (ag *Aggregate) Abandon() error {
	if ag.journey.Status == JourneyStatusCompleted {
		return &InvalidTransitionError{StepID: "", From: ag.journey.Status, To: JourneyStatusAbandoned, Reason: "a completed journey cannot be abandoned"}
	}
	ag.journey.Status = JourneyStatusAbandoned
	ag.touch()
	return nil
}

// Attach records a new attachment on a step. The step may be in any status.
func (ag *Aggregate) Attach(stepID, kind, ref string, annotations Annotations) (*Attachment, error) {
	if _, err := ag.registry.Step(stepID); err != nil {
		return nil, err
	}
	a := ag.attachments.Attach(stepID, kind, ref, annotations)
	ag.touch()
	return a, nil
}

// MarkReplaced supersedes one attachment with another on the same step.
func (ag *Aggregate) MarkReplaced(oldID, newID uuid.UUID) error {
	if err := ag.attachments.MarkReplaced(oldID, newID); err != nil {
		return err
	}
	ag.touch()
	return nil
}

// RelateAttachments records a symmetric relation between two attachments.
func (ag *Aggregate) RelateAttachments(idA, idB uuid.UUID) error {
	if err := ag.attachments.Relate(idA, idB); err != nil {
		return err
	}
	ag.touch()
	return nil
}

// UpdateAnnotations replaces the user-owned annotations on an attachment.
func (ag *Aggregate) UpdateAnnotations(id uuid.UUID, annotations Annotations) (*Attachment, error) {
	a, err := ag.attachments.UpdateAnnotations(id, annotations)
	if err != nil {
		return nil, err
	}
	ag.touch()
	return a, nil
}

// demoteDependents flags the transitive dependents of stepID as
// needs_attention. With includeInProgress false only completed dependents
// are demoted (the edit cascade); with it true, in-progress dependents are
// flagged too (the reopen cascade). Steps never worked on (not_started),
// opted out of (skipped), or externally blocked keep their status.
func (ag *Aggregate) demoteDependents(stepID string, includeInProgress bool) {
	downstream, err := ag.registry.Downstream(stepID)
	if err != nil {
		return
	}
	for _, depID := range downstream {
		dep, _ := ag.registry.Step(depID)
		demote := dep.Status == StepStatusCompleted ||
			(includeInProgress && dep.Status == StepStatusInProgress)
		if demote {
			// Transition cannot fail here: needs_attention has no
			// preconditions beyond step existence.
			_, _ = ag.registry.Transition(depID, StepStatusNeedsAttention, nil, false)
		}
	}
}

// advanceCurrentStep moves the pointer to the lowest-ordinal eligible
// not_started step and starts it, mirroring journey-start behavior. With
// parallel-eligible steps this routes the user to the earliest ordinal, not
// strictly the next one.
func (ag *Aggregate) advanceCurrentStep() {
	next := ag.deriveCurrentStep()
	if next == "" {
		return
	}
	ag.journey.CurrentStepID = next
	if s, err := ag.registry.Step(next); err == nil && s.Status == StepStatusNotStarted {
		_, _ = ag.registry.Transition(next, StepStatusInProgress, nil, false)
	}
}

// deriveCurrentStep picks where the user should be: the lowest-ordinal
// not_started step with satisfied dependencies, else the first step still
// in progress, else the first step flagged for review, else the current
// pointer as-is.
func (ag *Aggregate) deriveCurrentStep() string {
	steps := ag.registry.Steps()
	for _, s := range steps {
		if s.Status != StepStatusNotStarted {
			continue
		}
		missing, err := ag.registry.UnsatisfiedDependencies(s.ID)
		if err == nil && len(missing) == 0 {
			return s.ID
		}
	}
	for _, s := range steps {
		if s.Status == StepStatusInProgress {
			return s.ID
		}
	}
	for _, s := range steps {
		if s.Status == StepStatusNeedsAttention {
			return s.ID
		}
	}
	return ag.journey.CurrentStepID
}

// recompute re-derives journey progress and completion status from the step
// set. Skipped steps leave the denominator entirely; required steps gate
// journey completion, optional steps only count toward the displayed
// percentage.
func (ag *Aggregate) recompute() {
	var countable, completed int
	requiredDone := true
	for _, s := range ag.journey.Steps {
		if s.Status == StepStatusSkipped {
			continue
		}
		countable++
		if s.Status == StepStatusCompleted {
			completed++
		} else if ag.registry.Template().Step(s.ID).Required {
			requiredDone = false
		}
	}

	if countable == 0 {
		ag.journey.ProgressPercent = 0
	} else {
		ag.journey.ProgressPercent = completed * 100 / countable
	}

	switch ag.journey.Status {
	case JourneyStatusPaused, JourneyStatusAbandoned:
		// Explicit user states; mutations do not flip them.
		return
	}

	if requiredDone {
		if ag.journey.Status != JourneyStatusCompleted {
			now := time.Now().UTC()
			ag.journey.Status = JourneyStatusCompleted
			ag.journey.CompletedAt = &now
		}
		return
	}
	if ag.journey.Status == JourneyStatusCompleted {
		// A cascade or reopen revoked a required step; the journey is
		// active again and the completion timestamp no longer holds.
		ag.journey.Status = JourneyStatusInProgress
		ag.journey.CompletedAt = nil
	}
}

func (ag *Aggregate) touch() {
	ag.journey.LastActivityAt = time.Now().UTC()
}

// StepBoard summarizes step statuses for UI rendering: counts per status
// plus which steps are currently available to work on and which are blocked
// on dependencies.
type StepBoard struct {
	Total          int      `json:"total"`
	Completed      int      `json:"completed"`
	InProgress     int      `json:"in_progress"`
	NotStarted     int      `json:"not_started"`
	NeedsAttention int      `json:"needs_attention"`
	Blocked        int      `json:"blocked"`
	Skipped        int      `json:"skipped"`
	Available      []string `json:"available"`
	Unavailable    []string `json:"unavailable"`
}

// Board computes the current step board.
func (ag *Aggregate) Board() StepBoard {
	var b StepBoard
	for _, s := range ag.registry.Steps() {
		b.Total++
		switch s.Status {
		case StepStatusCompleted:
			b.Completed++
		case StepStatusInProgress:
			b.InProgress++
		case StepStatusNotStarted:
			b.NotStarted++
		case StepStatusNeedsAttention:
			b.NeedsAttention++
		case StepStatusBlocked:
			b.Blocked++
		case StepStatusSkipped:
			b.Skipped++
		}
		if s.Status == StepStatusNotStarted || s.Status == StepStatusInProgress {
			missing, err := ag.registry.UnsatisfiedDependencies(s.ID)
			if err == nil && len(missing) == 0 {
				b.Available = append(b.Available, s.ID)
			} else {
				b.Unavailable = append(b.Unavailable, s.ID)
			}
		}
	}
	return b
}
