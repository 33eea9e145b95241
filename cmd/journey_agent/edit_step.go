package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/marcus/journey-keeper/internal/journey"
	"github.com/marcus/journey-keeper/internal/observability"
)

var editStepCmd = &cobra.Command{
	Use:   "edit-step",
	Short: "Merge new data into a journey step",
	Long: `Merge a JSON data payload into a step. Editing a completed step reopens
it and flags completed downstream steps for attention.`,
	RunE: runEditStep,
}

var (
	editJourneyID   string
	editStepID      string
	editData        string
	editDatabaseURL string
	editVerbose     bool
)

func init() {
	editStepCmd.Flags().StringVar(&editJourneyID, "journey-id", "", "Journey UUID (required)")
	editStepCmd.Flags().StringVarP(&editStepID, "step", "s", "", "Step ID (required)")
	editStepCmd.Flags().StringVar(&editData, "data", "", "Step data as a JSON object (required)")
	editStepCmd.Flags().StringVar(&editDatabaseURL, "db-url", "", "PostgreSQL connection URL (defaults to DATABASE_URL env var)")
	editStepCmd.Flags().BoolVarP(&editVerbose, "verbose", "v", false, "Print the journey after the change")
	_ = editStepCmd.MarkFlagRequired("journey-id")
	_ = editStepCmd.MarkFlagRequired("step")
	_ = editStepCmd.MarkFlagRequired("data")

	rootCmd.AddCommand(editStepCmd)
}

func runEditStep(_ *cobra.Command, _ []string) error {
	journeyID, err := uuid.Parse(editJourneyID)
	if err != nil {
		return fmt.Errorf("invalid journey-id: %w", err)
	}

	data, err := parseDataFlag(editData)
	if err != nil {
		return err
	}

	j, err := mutateJourney(context.Background(), editDatabaseURL, journeyID, func(ag *journey.Aggregate) error {
		return ag.EditStep(editStepID, data)
	})
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(os.Stdout, "Edited step %s\n", editStepID)

	if editVerbose {
		observability.NewPrinter(os.Stdout).PrintJourney(j)
	}
	return nil
}
