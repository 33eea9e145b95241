package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/marcus/journey-keeper/internal/journey"
)

var attachCmd = &cobra.Command{
	Use:   "attach",
	Short: "Attach a media reference to a journey step",
	Long: `Store an attachment on a step. The reference is an opaque locator such
as an object store URL; the service never dereferences it.`,
	RunE: runAttach,
}

var (
	attachJourneyID   string
	attachStepID      string
	attachKind        string
	attachRef         string
	attachLabel       string
	attachNotes       string
	attachTags        []string
	attachDatabaseURL string
)

func init() {
	attachCmd.Flags().StringVar(&attachJourneyID, "journey-id", "", "Journey UUID (required)")
	attachCmd.Flags().StringVarP(&attachStepID, "step", "s", "", "Step ID (required)")
	attachCmd.Flags().StringVarP(&attachKind, "kind", "k", journey.AttachmentKindUserUploaded, "Attachment kind (user_uploaded or ai_generated)")
	attachCmd.Flags().StringVarP(&attachRef, "ref", "r", "", "Media reference (required)")
	attachCmd.Flags().StringVar(&attachLabel, "label", "", "Attachment label")
	attachCmd.Flags().StringVar(&attachNotes, "notes", "", "Attachment notes")
	attachCmd.Flags().StringSliceVar(&attachTags, "tags", nil, "Attachment tags")
	attachCmd.Flags().StringVar(&attachDatabaseURL, "db-url", "", "PostgreSQL connection URL (defaults to DATABASE_URL env var)")
	_ = attachCmd.MarkFlagRequired("journey-id")
	_ = attachCmd.MarkFlagRequired("step")
	_ = attachCmd.MarkFlagRequired("ref")

	rootCmd.AddCommand(attachCmd)
}

func runAttach(_ *cobra.Command, _ []string) error {
	journeyID, err := uuid.Parse(attachJourneyID)
	if err != nil {
		return fmt.Errorf("invalid journey-id: %w", err)
	}

	var created *journey.Attachment
	_, err = mutateJourney(context.Background(), attachDatabaseURL, journeyID, func(ag *journey.Aggregate) error {
		att, err := ag.Attach(attachStepID, attachKind, attachRef, journey.Annotations{
			Label: attachLabel,
			Notes: attachNotes,
			Tags:  attachTags,
		})
		if err != nil {
			return err
		}
		created = att
		return nil
	})
	if err != nil {
		return err
	}

	_, _ = fmt.Fprintf(os.Stdout, "Attached %s to step %s (id: %s)\n", attachKind, attachStepID, created.ID)
	return nil
}
