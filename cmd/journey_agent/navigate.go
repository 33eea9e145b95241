package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/marcus/journey-keeper/internal/journey"
)

var navigateCmd = &cobra.Command{
	Use:   "navigate",
	Short: "Move the current step pointer",
	Long:  "Point the journey at another step without changing any step status.",
	RunE:  runNavigate,
}

var (
	navigateJourneyID   string
	navigateStepID      string
	navigateDatabaseURL string
)

func init() {
	navigateCmd.Flags().StringVar(&navigateJourneyID, "journey-id", "", "Journey UUID (required)")
	navigateCmd.Flags().StringVarP(&navigateStepID, "step", "s", "", "Step ID to navigate to (required)")
	navigateCmd.Flags().StringVar(&navigateDatabaseURL, "db-url", "", "PostgreSQL connection URL (defaults to DATABASE_URL env var)")
	_ = navigateCmd.MarkFlagRequired("journey-id")
	_ = navigateCmd.MarkFlagRequired("step")

	rootCmd.AddCommand(navigateCmd)
}

func runNavigate(_ *cobra.Command, _ []string) error {
	journeyID, err := uuid.Parse(navigateJourneyID)
	if err != nil {
		return fmt.Errorf("invalid journey-id: %w", err)
	}

	_, err = mutateJourney(context.Background(), navigateDatabaseURL, journeyID, func(ag *journey.Aggregate) error {
		return ag.NavigateTo(navigateStepID)
	})
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(os.Stdout, "Now on step %s\n", navigateStepID)
	return nil
}
