package journey

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// UnknownTemplateError indicates no template is registered under the ID.
type UnknownTemplateError struct {
	TemplateID string
}

func (e *UnknownTemplateError) Error() string {
	return fmt.Sprintf("unknown template: %s", e.TemplateID)
}

// UnknownStepError indicates the step does not exist in this journey.
type UnknownStepError struct {
	StepID string
}

func (e *UnknownStepError) Error() string {
	return fmt.Sprintf("unknown step: %s", e.StepID)
}

// DependencyNotSatisfiedError indicates a step cannot be completed because
// one or more of its dependencies is not yet completed. Missing lists the
// offending step IDs so the caller can render "finish X first".
type DependencyNotSatisfiedError struct {
	StepID  string
	Missing []string
}

func (e *DependencyNotSatisfiedError) Error() string {
	return fmt.Sprintf("step %s has unsatisfied dependencies: %s", e.StepID, strings.Join(e.Missing, ", "))
}

// CyclicTemplateError indicates a template's dependency graph is not a DAG.
// This is a configuration bug and must prevent journey creation entirely.
type CyclicTemplateError struct {
	TemplateID string
	Cycle      []string
}

func (e *CyclicTemplateError) Error() string {
	if len(e.Cycle) > 0 {
		return fmt.Sprintf("template %s has a dependency cycle: %s", e.TemplateID, strings.Join(e.Cycle, " -> "))
	}
	return fmt.Sprintf("template %s has a dependency cycle", e.TemplateID)
}

// UnknownAttachmentError indicates the attachment does not exist in this journey.
type UnknownAttachmentError struct {
	AttachmentID uuid.UUID
}

func (e *UnknownAttachmentError) Error() string {
	return fmt.Sprintf("unknown attachment: %s", e.AttachmentID)
}

// CrossStepReplacementError indicates a replacement edge between attachments
// owned by different steps.
type CrossStepReplacementError struct {
	OldStepID string
	NewStepID string
}

func (e *CrossStepReplacementError) Error() string {
	return fmt.Sprintf("cannot replace attachment on step %s with one on step %s", e.OldStepID, e.NewStepID)
}

// ReplacementCycleError indicates a replacement edge would make the
// replaced-by chain revisit an attachment.
type ReplacementCycleError struct {
	OldID uuid.UUID
	NewID uuid.UUID
}

func (e *ReplacementCycleError) Error() string {
	return fmt.Sprintf("replacing %s with %s would create a replacement cycle", e.OldID, e.NewID)
}

// InvalidTransitionError indicates a status change the state machine does
// not permit (e.g., editing a blocked step, resolving a step that is not
// flagged needs_attention).
type InvalidTransitionError struct {
	StepID string
	From   string
	To     string
	Reason string
}

func (e *InvalidTransitionError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("step %s: cannot transition %s -> %s: %s", e.StepID, e.From, e.To, e.Reason)
	}
	return fmt.Sprintf("step %s: cannot transition %s -> %s", e.StepID, e.From, e.To)
}

// NotFoundError indicates the repository holds no journey under the ID.
type NotFoundError struct {
	JourneyID uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("journey not found: %s", e.JourneyID)
}

// ConcurrentModificationError indicates a save was attempted against a stale
// base version. The caller must reload and retry the command.
type ConcurrentModificationError struct {
	JourneyID       uuid.UUID
	ExpectedVersion int64
}

func (e *ConcurrentModificationError) Error() string {
	return fmt.Sprintf("journey %s was modified concurrently (expected version %d)", e.JourneyID, e.ExpectedVersion)
}
