package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/marcus/journey-keeper/internal/db"
	"github.com/marcus/journey-keeper/internal/journey"
	"github.com/marcus/journey-keeper/internal/templates"
)

// openDB connects using the flag value, falling back to DATABASE_URL.
func openDB(ctx context.Context, flagURL string) (*db.DB, error) {
	databaseURL := flagURL
	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL required (set the environment variable or use --db-url)")
	}
	return db.Connect(ctx, databaseURL)
}

// resolveOwner returns the owner UUID from the flag value, falling back to
// the OWNER_ID environment variable.
func resolveOwner(flagOwner string) (uuid.UUID, error) {
	raw := flagOwner
	if raw == "" {
		raw = os.Getenv("OWNER_ID")
	}
	if raw == "" {
		return uuid.Nil, fmt.Errorf("owner ID is required (set OWNER_ID environment variable or use --owner flag)")
	}
	ownerID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid owner ID: %w", err)
	}
	return ownerID, nil
}

// parseDataFlag decodes a --data JSON object flag.
func parseDataFlag(raw string) (map[string]interface{}, error) {
	if raw == "" {
		return nil, nil
	}
	var data map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return nil, fmt.Errorf("invalid --data JSON: %w", err)
	}
	return data, nil
}

// loadAggregate fetches a journey and rebuilds its aggregate from the
// builtin catalog.
func loadAggregate(ctx context.Context, database *db.DB, journeyID uuid.UUID) (*journey.Aggregate, error) {
	catalog, err := templates.NewCatalog()
	if err != nil {
		return nil, fmt.Errorf("failed to load template catalog: %w", err)
	}

	j, attachments, err := database.GetJourney(ctx, journeyID)
	if err != nil {
		return nil, err
	}

	tmpl, err := catalog.Get(j.TemplateID)
	if err != nil {
		return nil, err
	}
	return journey.Restore(tmpl, j, attachments)
}

// mutateJourney loads a journey, applies a command and saves the result.
// Commands share this so every CLI mutation goes through the same
// load-command-save cycle the server uses.
func mutateJourney(ctx context.Context, dbURL string, journeyID uuid.UUID, fn func(ag *journey.Aggregate) error) (*journey.Journey, error) {
	database, err := openDB(ctx, dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	ag, err := loadAggregate(ctx, database, journeyID)
	if err != nil {
		return nil, err
	}

	if err := fn(ag); err != nil {
		return nil, err
	}

	if err := database.SaveJourney(ctx, ag.Journey(), ag.Attachments().All()); err != nil {
		return nil, fmt.Errorf("failed to save journey: %w", err)
	}

	return ag.Journey(), nil
}
