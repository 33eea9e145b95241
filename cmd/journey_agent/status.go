package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/marcus/journey-keeper/internal/observability"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show a journey's current state",
	Long:  "Print a journey summary and its step board.",
	RunE:  runStatus,
}

var (
	statusJourneyID   string
	statusDatabaseURL string
)

func init() {
	statusCmd.Flags().StringVar(&statusJourneyID, "journey-id", "", "Journey UUID (required)")
	statusCmd.Flags().StringVar(&statusDatabaseURL, "db-url", "", "PostgreSQL connection URL (defaults to DATABASE_URL env var)")
	_ = statusCmd.MarkFlagRequired("journey-id")

	rootCmd.AddCommand(statusCmd)
}

func runStatus(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	journeyID, err := uuid.Parse(statusJourneyID)
	if err != nil {
		return fmt.Errorf("invalid journey-id: %w", err)
	}

	database, err := openDB(ctx, statusDatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	ag, err := loadAggregate(ctx, database, journeyID)
	if err != nil {
		return err
	}

	printer := observability.NewPrinter(os.Stdout)
	printer.PrintJourney(ag.Journey())
	printer.PrintStepBoard(ag.Board())
	return nil
}
