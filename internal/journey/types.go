// Package journey implements the renovation journey state machine: step
// status and dependency tracking, progress aggregation, edit cascades, and
// the attachment lifecycle. It is pure in-memory state; persistence lives
// behind the repository in internal/db.
package journey

import (
	"time"

	"github.com/google/uuid"
)

// JourneyStatus constants
const (
	JourneyStatusNotStarted = "not_started"
	JourneyStatusInProgress = "in_progress"
	JourneyStatusPaused     = "paused"
	JourneyStatusCompleted  = "completed"
	JourneyStatusAbandoned  = "abandoned"
)

// StepStatus constants
const (
	StepStatusNotStarted     = "not_started"
	StepStatusInProgress     = "in_progress"
	StepStatusCompleted      = "completed"
	StepStatusNeedsAttention = "needs_attention"
	StepStatusBlocked        = "blocked"
	StepStatusSkipped        = "skipped"
)

// AttachmentKind constants
const (
	AttachmentKindUserUploaded = "user_uploaded"
	AttachmentKindAIGenerated  = "ai_generated"
)

// Journey is one user's instance of a project template. ProgressPercent is
// derived from Steps on every mutation and never treated as source of truth.
type Journey struct {
	ID              uuid.UUID  `json:"id"`
	OwnerID         uuid.UUID  `json:"owner_id"`
	TemplateID      string     `json:"template_id"`
	Status          string     `json:"status"`
	CurrentStepID   string     `json:"current_step_id"`
	Steps           []*Step    `json:"steps"`
	ProgressPercent int        `json:"progress_percent"`
	Version         int64      `json:"version"`
	StartedAt       time.Time  `json:"started_at"`
	LastActivityAt  time.Time  `json:"last_activity_at"`
	CompletedAt     *time.Time `json:"completed_at,omitempty"`
}

// Step is a unit of work within a journey. Data is an opaque payload the
// step accumulates (decisions, budget figures); the state machine never
// inspects its shape.
type Step struct {
	ID              string                 `json:"id"`
	Name            string                 `json:"name"`
	Status          string                 `json:"status"`
	ProgressPercent int                    `json:"progress_percent"`
	Data            map[string]interface{} `json:"data,omitempty"`
	ForceCompleted  bool                   `json:"force_completed,omitempty"`
	StartedAt       *time.Time             `json:"started_at,omitempty"`
	CompletedAt     *time.Time             `json:"completed_at,omitempty"`
}

// Annotations are user-owned attachment metadata. The system never writes
// them outside an explicit user command.
type Annotations struct {
	Label string   `json:"label,omitempty"`
	Notes string   `json:"notes,omitempty"`
	Tags  []string `json:"tags,omitempty"`
}

// Attachment is a media reference bound to a step. Ref is an opaque locator
// supplied by the caller; the journey core never dereferences it.
// ReplacedByID is a forward pointer in a soft-supersede chain; superseded
// attachments are retained, never deleted.
type Attachment struct {
	ID           uuid.UUID   `json:"id"`
	JourneyID    uuid.UUID   `json:"journey_id"`
	StepID       string      `json:"step_id"`
	Kind         string      `json:"kind"`
	Ref          string      `json:"ref"`
	Annotations  Annotations `json:"annotations"`
	RelatedIDs   []uuid.UUID `json:"related_ids,omitempty"`
	ReplacedByID *uuid.UUID  `json:"replaced_by_id,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
}

// Superseded reports whether a newer attachment has replaced this one.
func (a *Attachment) Superseded() bool {
	return a.ReplacedByID != nil
}

// JourneySummary is a lightweight view of a journey for owner listings.
type JourneySummary struct {
	ID              uuid.UUID `json:"id"`
	TemplateID      string    `json:"template_id"`
	Status          string    `json:"status"`
	ProgressPercent int       `json:"progress_percent"`
	CurrentStepID   string    `json:"current_step_id"`
	StartedAt       time.Time `json:"started_at"`
	LastActivityAt  time.Time `json:"last_activity_at"`
}

// ValidStepStatus reports whether s is one of the defined step statuses.
func ValidStepStatus(s string) bool {
	switch s {
	case StepStatusNotStarted, StepStatusInProgress, StepStatusCompleted,
		StepStatusNeedsAttention, StepStatusBlocked, StepStatusSkipped:
		return true
	}
	return false
}
