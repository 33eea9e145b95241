package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"golang.org/x/sync/errgroup"

	"github.com/marcus/journey-keeper/internal/journey"
)

// CreateJourney persists a freshly started journey: the journey row, every
// materialized step, and any attachments, in one transaction.
func (db *DB) CreateJourney(ctx context.Context, j *journey.Journey, attachments []*journey.Attachment) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	_, err = tx.Exec(ctx,
		`INSERT INTO journeys (id, owner_id, template_id, status, current_step_id, version,
		                       started_at, last_activity_at, completed_at)
		 VALUES ($1, $2, $3, $4, $5, 1, $6, $7, $8)`,
		j.ID, j.OwnerID, j.TemplateID, j.Status, j.CurrentStepID,
		j.StartedAt, j.LastActivityAt, j.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert journey: %w", err)
	}

	if err := upsertSteps(ctx, tx, j); err != nil {
		return err
	}
	if err := upsertAttachments(ctx, tx, attachments); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit journey: %w", err)
	}
	j.Version = 1
	return nil
}

// SaveJourney persists the full current state of a journey. The update is
// guarded by the version the journey was loaded at; a stale base fails with
// ConcurrentModification and the caller must reload and retry. Saving the
// same resulting state twice is idempotent: the aggregate recomputes full
// state rather than applying diffs, so a retried save cannot double-apply a
// cascade.
func (db *DB) SaveJourney(ctx context.Context, j *journey.Journey, attachments []*journey.Attachment) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	tag, err := tx.Exec(ctx,
		`UPDATE journeys
		 SET status = $1, current_step_id = $2, version = version + 1,
		     last_activity_at = $3, completed_at = $4
		 WHERE id = $5 AND version = $6`,
		j.Status, j.CurrentStepID, j.LastActivityAt, j.CompletedAt, j.ID, j.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update journey: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM journeys WHERE id = $1)`, j.ID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check journey existence: %w", err)
		}
		if !exists {
			return &journey.NotFoundError{JourneyID: j.ID}
		}
		return &journey.ConcurrentModificationError{JourneyID: j.ID, ExpectedVersion: j.Version}
	}

	if err := upsertSteps(ctx, tx, j); err != nil {
		return err
	}
	if err := upsertAttachments(ctx, tx, attachments); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit journey: %w", err)
	}
	j.Version++
	return nil
}

// GetJourney reconstructs a journey and its attachments. Steps and
// attachments are fetched concurrently; the caller rehydrates the aggregate
// with journey.Restore.
func (db *DB) GetJourney(ctx context.Context, journeyID uuid.UUID) (*journey.Journey, []*journey.Attachment, error) {
	var j journey.Journey
	err := db.pool.QueryRow(ctx,
		`SELECT id, owner_id, template_id, status, current_step_id, version,
		        started_at, last_activity_at, completed_at
		 FROM journeys WHERE id = $1`,
		journeyID,
	).Scan(&j.ID, &j.OwnerID, &j.TemplateID, &j.Status, &j.CurrentStepID, &j.Version,
		&j.StartedAt, &j.LastActivityAt, &j.CompletedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil, &journey.NotFoundError{JourneyID: journeyID}
		}
		return nil, nil, fmt.Errorf("failed to get journey: %w", err)
	}

	var attachments []*journey.Attachment
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		steps, err := db.loadSteps(gctx, journeyID)
		if err != nil {
			return err
		}
		j.Steps = steps
		return nil
	})
	g.Go(func() error {
		atts, err := db.loadAttachments(gctx, journeyID)
		if err != nil {
			return err
		}
		attachments = atts
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	return &j, attachments, nil
}

// ListJourneysOptions holds optional filters for owner listings.
type ListJourneysOptions struct {
	Status string
	Limit  int
	Offset int
}

// ListJourneysByOwner returns journey summaries for an owner, most recently
// active first. Progress is derived from step counts, never read from a
// stored figure.
func (db *DB) ListJourneysByOwner(ctx context.Context, ownerID uuid.UUID, opts ListJourneysOptions) ([]journey.JourneySummary, error) {
	if opts.Limit <= 0 {
		opts.Limit = 50
	}

	query := `SELECT j.id, j.template_id, j.status, j.current_step_id, j.started_at, j.last_activity_at,
	                 COALESCE(SUM(CASE WHEN s.status = 'completed' THEN 1 ELSE 0 END), 0) AS completed,
	                 COALESCE(SUM(CASE WHEN s.status <> 'skipped' THEN 1 ELSE 0 END), 0) AS countable
	          FROM journeys j
	          LEFT JOIN journey_steps s ON s.journey_id = j.id
	          WHERE j.owner_id = $1`
	args := []any{ownerID}
	argNum := 2

	if opts.Status != "" {
		query += fmt.Sprintf(" AND j.status = $%d", argNum)
		args = append(args, opts.Status)
		argNum++
	}

	query += fmt.Sprintf(` GROUP BY j.id ORDER BY j.last_activity_at DESC LIMIT $%d OFFSET $%d`, argNum, argNum+1)
	args = append(args, opts.Limit, opts.Offset)

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list journeys: %w", err)
	}
	defer rows.Close()

	var summaries []journey.JourneySummary
	for rows.Next() {
		var s journey.JourneySummary
		var completed, countable int
		if err := rows.Scan(&s.ID, &s.TemplateID, &s.Status, &s.CurrentStepID,
			&s.StartedAt, &s.LastActivityAt, &completed, &countable); err != nil {
			return nil, fmt.Errorf("failed to scan journey summary: %w", err)
		}
		if countable > 0 {
			s.ProgressPercent = completed * 100 / countable
		}
		summaries = append(summaries, s)
	}
	return summaries, rows.Err()
}

// DeleteJourney removes a journey and, via cascade, its steps and
// attachments. Exposed for owner-initiated cleanup, not used by the state
// machine, which only ever soft-retires data.
func (db *DB) DeleteJourney(ctx context.Context, journeyID uuid.UUID) error {
	tag, err := db.pool.Exec(ctx, `DELETE FROM journeys WHERE id = $1`, journeyID)
	if err != nil {
		return fmt.Errorf("failed to delete journey: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &journey.NotFoundError{JourneyID: journeyID}
	}
	return nil
}

func upsertSteps(ctx context.Context, tx pgx.Tx, j *journey.Journey) error {
	for _, s := range j.Steps {
		var dataJSON []byte
		if s.Data != nil {
			var err error
			dataJSON, err = json.Marshal(s.Data)
			if err != nil {
				return fmt.Errorf("failed to marshal step %s data: %w", s.ID, err)
			}
		}
		_, err := tx.Exec(ctx,
			`INSERT INTO journey_steps (journey_id, step_id, name, status, progress_percent,
			                            data, force_completed, started_at, completed_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			 ON CONFLICT (journey_id, step_id) DO UPDATE
			 SET status = EXCLUDED.status, progress_percent = EXCLUDED.progress_percent,
			     data = EXCLUDED.data, force_completed = EXCLUDED.force_completed,
			     started_at = EXCLUDED.started_at, completed_at = EXCLUDED.completed_at`,
			j.ID, s.ID, s.Name, s.Status, s.ProgressPercent,
			dataJSON, s.ForceCompleted, s.StartedAt, s.CompletedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert step %s: %w", s.ID, err)
		}
	}
	return nil
}

func upsertAttachments(ctx context.Context, tx pgx.Tx, attachments []*journey.Attachment) error {
	for _, a := range attachments {
		annotationsJSON, err := json.Marshal(a.Annotations)
		if err != nil {
			return fmt.Errorf("failed to marshal annotations for %s: %w", a.ID, err)
		}
		var relatedJSON []byte
		if len(a.RelatedIDs) > 0 {
			relatedJSON, err = json.Marshal(a.RelatedIDs)
			if err != nil {
				return fmt.Errorf("failed to marshal related ids for %s: %w", a.ID, err)
			}
		}
		_, err = tx.Exec(ctx,
			`INSERT INTO attachments (id, journey_id, step_id, kind, ref, annotations,
			                          related_ids, replaced_by, created_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			 ON CONFLICT (id) DO UPDATE
			 SET annotations = EXCLUDED.annotations, related_ids = EXCLUDED.related_ids,
			     replaced_by = EXCLUDED.replaced_by`,
			a.ID, a.JourneyID, a.StepID, a.Kind, a.Ref, annotationsJSON,
			relatedJSON, a.ReplacedByID, a.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert attachment %s: %w", a.ID, err)
		}
	}
	return nil
}

func (db *DB) loadSteps(ctx context.Context, journeyID uuid.UUID) ([]*journey.Step, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT step_id, name, status, progress_percent, data, force_completed, started_at, completed_at
		 FROM journey_steps WHERE journey_id = $1`,
		journeyID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load steps: %w", err)
	}
	defer rows.Close()

	var steps []*journey.Step
	for rows.Next() {
		var s journey.Step
		var dataJSON []byte
		if err := rows.Scan(&s.ID, &s.Name, &s.Status, &s.ProgressPercent,
			&dataJSON, &s.ForceCompleted, &s.StartedAt, &s.CompletedAt); err != nil {
			return nil, fmt.Errorf("failed to scan step: %w", err)
		}
		if dataJSON != nil {
			_ = json.Unmarshal(dataJSON, &s.Data)
		}
		steps = append(steps, &s)
	}
	return steps, rows.Err()
}

func (db *DB) loadAttachments(ctx context.Context, journeyID uuid.UUID) ([]*journey.Attachment, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, journey_id, step_id, kind, ref, annotations, related_ids, replaced_by, created_at
		 FROM attachments WHERE journey_id = $1 ORDER BY created_at`,
		journeyID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load attachments: %w", err)
	}
	defer rows.Close()

	var attachments []*journey.Attachment
	for rows.Next() {
		var a journey.Attachment
		var annotationsJSON, relatedJSON []byte
		if err := rows.Scan(&a.ID, &a.JourneyID, &a.StepID, &a.Kind, &a.Ref,
			&annotationsJSON, &relatedJSON, &a.ReplacedByID, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan attachment: %w", err)
		}
		if annotationsJSON != nil {
			_ = json.Unmarshal(annotationsJSON, &a.Annotations)
		}
		if relatedJSON != nil {
			_ = json.Unmarshal(relatedJSON, &a.RelatedIDs)
		}
		attachments = append(attachments, &a)
	}
	return attachments, rows.Err()
}
