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

var completeStepCmd = &cobra.Command{
	Use:   "complete-step",
	Short: "Mark a journey step as completed",
	Long: `Mark a step completed and advance the current step pointer. Completion
is refused while dependencies are unmet unless --force is given, which records
the override on the step.`,
	RunE: runCompleteStep,
}

var (
	completeJourneyID   string
	completeStepID      string
	completeData        string
	completeForce       bool
	completeDatabaseURL string
	completeVerbose     bool
)

func init() {
	completeStepCmd.Flags().StringVar(&completeJourneyID, "journey-id", "", "Journey UUID (required)")
	completeStepCmd.Flags().StringVarP(&completeStepID, "step", "s", "", "Step ID (required)")
	completeStepCmd.Flags().StringVar(&completeData, "data", "", "Step data as a JSON object")
	completeStepCmd.Flags().BoolVar(&completeForce, "force", false, "Complete even with unmet dependencies")
	completeStepCmd.Flags().StringVar(&completeDatabaseURL, "db-url", "", "PostgreSQL connection URL (defaults to DATABASE_URL env var)")
	completeStepCmd.Flags().BoolVarP(&completeVerbose, "verbose", "v", false, "Print the journey after the change")
	_ = completeStepCmd.MarkFlagRequired("journey-id")
	_ = completeStepCmd.MarkFlagRequired("step")

	rootCmd.AddCommand(completeStepCmd)
}

func runCompleteStep(_ *cobra.Command, _ []string) error {
	journeyID, err := uuid.Parse(completeJourneyID)
	if err != nil {
		return fmt.Errorf("invalid journey-id: %w", err)
	}

	data, err := parseDataFlag(completeData)
	if err != nil {
		return err
	}

	j, err := mutateJourney(context.Background(), completeDatabaseURL, journeyID, func(ag *journey.Aggregate) error {
		return ag.CompleteStep(completeStepID, data, completeForce)
	})
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(os.Stdout, "Completed step %s (journey progress: %d%%)\n", completeStepID, j.ProgressPercent)

	if completeVerbose {
		observability.NewPrinter(os.Stdout).PrintJourney(j)
	}
	return nil
}
