// Package main provides the entry point for the Journey Keeper CLI and API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "journey_agent",
	Short: "Journey Keeper renovation journey service",
	Long:  "Journey Keeper tracks home renovation journeys: templated step workflows with dependencies, progress tracking, attachments, and cascading invalidation when earlier decisions change.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
