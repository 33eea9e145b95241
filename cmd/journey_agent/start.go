package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marcus/journey-keeper/internal/journey"
	"github.com/marcus/journey-keeper/internal/observability"
	"github.com/marcus/journey-keeper/internal/templates"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start a new journey from a template",
	Long:  "Materialize a template into a new journey with its first step in progress.",
	RunE:  runStart,
}

var (
	startTemplateID  string
	startOwner       string
	startDatabaseURL string
	startVerbose     bool
)

func init() {
	startCmd.Flags().StringVarP(&startTemplateID, "template", "t", "", "Template ID to start from (required)")
	startCmd.Flags().StringVar(&startOwner, "owner", "", "Owner UUID (defaults to OWNER_ID env var)")
	startCmd.Flags().StringVar(&startDatabaseURL, "db-url", "", "PostgreSQL connection URL (defaults to DATABASE_URL env var)")
	startCmd.Flags().BoolVarP(&startVerbose, "verbose", "v", false, "Print the full journey after creation")
	_ = startCmd.MarkFlagRequired("template")

	rootCmd.AddCommand(startCmd)
}

func runStart(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	ownerID, err := resolveOwner(startOwner)
	if err != nil {
		return err
	}

	catalog, err := templates.NewCatalog()
	if err != nil {
		return fmt.Errorf("failed to load template catalog: %w", err)
	}
	tmpl, err := catalog.Get(startTemplateID)
	if err != nil {
		return err
	}

	ag, err := journey.Start(tmpl, ownerID)
	if err != nil {
		return err
	}

	database, err := openDB(ctx, startDatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	if err := database.CreateJourney(ctx, ag.Journey(), ag.Attachments().All()); err != nil {
		return fmt.Errorf("failed to save journey: %w", err)
	}

	_, _ = fmt.Fprintf(os.Stdout, "Started journey %s (template: %s)\n", ag.Journey().ID, startTemplateID)

	if startVerbose {
		observability.NewPrinter(os.Stdout).PrintJourney(ag.Journey())
	}
	return nil
}
