package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/marcus/journey-keeper/internal/journey"
)

var (
	lifecycleJourneyID   string
	lifecycleDatabaseURL string
)

var pauseCmd = &cobra.Command{
	Use:   "pause",
	Short: "Pause a journey",
	RunE: func(_ *cobra.Command, _ []string) error {
		return runLifecycle("Paused", func(ag *journey.Aggregate) error { return ag.Pause() })
	},
}

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Resume a paused journey",
	RunE: func(_ *cobra.Command, _ []string) error {
		return runLifecycle("Resumed", func(ag *journey.Aggregate) error { return ag.Resume() })
	},
}

var abandonCmd = &cobra.Command{
	Use:   "abandon",
	Short: "Abandon a journey",
	Long:  "Mark a journey abandoned. Its data and attachments are retained.",
	RunE: func(_ *cobra.Command, _ []string) error {
		return runLifecycle("Abandoned", func(ag *journey.Aggregate) error { return ag.Abandon() })
	},
}

func init() {
	for _, cmd := range []*cobra.Command{pauseCmd, resumeCmd, abandonCmd} {
		cmd.Flags().StringVar(&lifecycleJourneyID, "journey-id", "", "Journey UUID (required)")
		cmd.Flags().StringVar(&lifecycleDatabaseURL, "db-url", "", "PostgreSQL connection URL (defaults to DATABASE_URL env var)")
		_ = cmd.MarkFlagRequired("journey-id")
		rootCmd.AddCommand(cmd)
	}
}

func runLifecycle(verb string, fn func(ag *journey.Aggregate) error) error {
	journeyID, err := uuid.Parse(lifecycleJourneyID)
	if err != nil {
		return fmt.Errorf("invalid journey-id: %w", err)
	}

	j, err := mutateJourney(context.Background(), lifecycleDatabaseURL, journeyID, fn)
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(os.Stdout, "%s journey %s (status: %s)\n", verb, j.ID, j.Status)
	return nil
}
