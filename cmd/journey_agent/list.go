package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marcus/journey-keeper/internal/db"
	"github.com/marcus/journey-keeper/internal/observability"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List an owner's journeys",
	Long:  "Print journey summaries for an owner, most recently active first.",
	RunE:  runList,
}

var (
	listOwner       string
	listStatus      string
	listLimit       int
	listDatabaseURL string
)

func init() {
	listCmd.Flags().StringVar(&listOwner, "owner", "", "Owner UUID (defaults to OWNER_ID env var)")
	listCmd.Flags().StringVar(&listStatus, "status", "", "Filter by journey status")
	listCmd.Flags().IntVar(&listLimit, "limit", 0, "Maximum journeys to return")
	listCmd.Flags().StringVar(&listDatabaseURL, "db-url", "", "PostgreSQL connection URL (defaults to DATABASE_URL env var)")

	rootCmd.AddCommand(listCmd)
}

func runList(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	ownerID, err := resolveOwner(listOwner)
	if err != nil {
		return err
	}

	database, err := openDB(ctx, listDatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	summaries, err := database.ListJourneysByOwner(ctx, ownerID, db.ListJourneysOptions{
		Status: listStatus,
		Limit:  listLimit,
	})
	if err != nil {
		return fmt.Errorf("failed to list journeys: %w", err)
	}

	observability.NewPrinter(os.Stdout).PrintJourneyList(summaries)
	return nil
}
