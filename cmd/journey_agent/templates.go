package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marcus/journey-keeper/internal/observability"
	"github.com/marcus/journey-keeper/internal/templates"
)

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "Inspect and lint journey templates",
}

var templatesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available templates",
	RunE:  runTemplatesList,
}

var templatesLintCmd = &cobra.Command{
	Use:   "lint <file>",
	Short: "Validate a template definition file",
	Long: `Check a template definition against the schema and structural rules:
unique step IDs, known dependencies and no dependency cycles.`,
	Args: cobra.ExactArgs(1),
	RunE: runTemplatesLint,
}

var templatesListDir string

func init() {
	templatesListCmd.Flags().StringVar(&templatesListDir, "templates-dir", "", "Directory of extra template definition files")

	templatesCmd.AddCommand(templatesListCmd)
	templatesCmd.AddCommand(templatesLintCmd)
	rootCmd.AddCommand(templatesCmd)
}

func runTemplatesList(_ *cobra.Command, _ []string) error {
	catalog, err := templates.NewCatalog()
	if err != nil {
		return fmt.Errorf("failed to load template catalog: %w", err)
	}
	if templatesListDir != "" {
		if err := catalog.LoadDir(templatesListDir); err != nil {
			return err
		}
	}

	printer := observability.NewPrinter(os.Stdout)
	for _, tmpl := range catalog.List() {
		printer.PrintTemplate(tmpl)
	}
	return nil
}

func runTemplatesLint(_ *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read template file: %w", err)
	}

	tmpl, err := templates.ParseDefinition(data)
	if err != nil {
		return err
	}
	if err := tmpl.Validate(); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(os.Stdout, "Template %s is valid (%d steps)\n", tmpl.ID, len(tmpl.Steps))
	return nil
}
