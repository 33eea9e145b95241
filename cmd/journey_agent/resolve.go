package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/marcus/journey-keeper/internal/journey"
)

var resolveCmd = &cobra.Command{
	Use:   "resolve",
	Short: "Re-confirm a step flagged for attention",
	Long: `Return a needs_attention step to completed after re-checking its
dependencies. Steps are flagged when an upstream decision changes.`,
	RunE: runResolve,
}

var (
	resolveJourneyID   string
	resolveStepID      string
	resolveDatabaseURL string
)

func init() {
	resolveCmd.Flags().StringVar(&resolveJourneyID, "journey-id", "", "Journey UUID (required)")
	resolveCmd.Flags().StringVarP(&resolveStepID, "step", "s", "", "Step ID (required)")
	resolveCmd.Flags().StringVar(&resolveDatabaseURL, "db-url", "", "PostgreSQL connection URL (defaults to DATABASE_URL env var)")
	_ = resolveCmd.MarkFlagRequired("journey-id")
	_ = resolveCmd.MarkFlagRequired("step")

	rootCmd.AddCommand(resolveCmd)
}

func runResolve(_ *cobra.Command, _ []string) error {
	journeyID, err := uuid.Parse(resolveJourneyID)
	if err != nil {
		return fmt.Errorf("invalid journey-id: %w", err)
	}

	j, err := mutateJourney(context.Background(), resolveDatabaseURL, journeyID, func(ag *journey.Aggregate) error {
		return ag.ResolveAttention(resolveStepID)
	})
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(os.Stdout, "Resolved step %s (journey progress: %d%%)\n", resolveStepID, j.ProgressPercent)
	return nil
}
