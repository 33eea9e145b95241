package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/marcus/journey-keeper/internal/journey"
)

var skipStepCmd = &cobra.Command{
	Use:   "skip-step",
	Short: "Skip an optional journey step",
	Long:  "Skip a step, removing it from the completion mandate and the progress denominator.",
	RunE:  runSkipStep,
}

var (
	skipJourneyID   string
	skipStepID      string
	skipDatabaseURL string
)

func init() {
	skipStepCmd.Flags().StringVar(&skipJourneyID, "journey-id", "", "Journey UUID (required)")
	skipStepCmd.Flags().StringVarP(&skipStepID, "step", "s", "", "Step ID (required)")
	skipStepCmd.Flags().StringVar(&skipDatabaseURL, "db-url", "", "PostgreSQL connection URL (defaults to DATABASE_URL env var)")
	_ = skipStepCmd.MarkFlagRequired("journey-id")
	_ = skipStepCmd.MarkFlagRequired("step")

	rootCmd.AddCommand(skipStepCmd)
}

func runSkipStep(_ *cobra.Command, _ []string) error {
	journeyID, err := uuid.Parse(skipJourneyID)
	if err != nil {
		return fmt.Errorf("invalid journey-id: %w", err)
	}

	j, err := mutateJourney(context.Background(), skipDatabaseURL, journeyID, func(ag *journey.Aggregate) error {
		return ag.SkipStep(skipStepID)
	})
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(os.Stdout, "Skipped step %s (journey progress: %d%%)\n", skipStepID, j.ProgressPercent)
	return nil
}
