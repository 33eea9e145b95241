package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/marcus/journey-keeper/internal/config"
	"github.com/marcus/journey-keeper/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server that exposes REST endpoints for journeys, steps,
attachments and templates.

Configuration can be loaded from a JSON file using --config. Command-line
arguments override config file values.`,
	RunE: runServe,
}

var (
	serveConfigPath   string
	servePort         int
	serveDatabaseURL  string
	serveAPIKey       string
	serveTokenSecret  string
	serveTemplatesDir string
)

func init() {
	serveCmd.Flags().StringVar(&serveConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (default 8080)")
	serveCmd.Flags().StringVar(&serveDatabaseURL, "db-url", "", "PostgreSQL connection URL (defaults to DATABASE_URL env var)")
	serveCmd.Flags().StringVar(&serveAPIKey, "api-key", "", "Gemini API key for step suggestions (defaults to GEMINI_API_KEY env var)")
	serveCmd.Flags().StringVar(&serveTokenSecret, "token-secret", "", "HMAC secret for owner tokens (defaults to OWNER_TOKEN_SECRET env var)")
	serveCmd.Flags().StringVar(&serveTemplatesDir, "templates-dir", "", "Directory of extra template definition files")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	var cfg config.Config
	if serveConfigPath != "" {
		loadedCfg, err := config.LoadConfig(serveConfigPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := loadedCfg.Validate(); err != nil {
			return err
		}
		cfg = *loadedCfg
	}

	// CLI flags take priority over config file values
	if cmd.Flags().Changed("port") {
		cfg.Port = servePort
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = serveDatabaseURL
	}
	if cmd.Flags().Changed("api-key") {
		cfg.APIKey = serveAPIKey
	}
	if cmd.Flags().Changed("token-secret") {
		cfg.OwnerTokenSecret = serveTokenSecret
	}
	if cmd.Flags().Changed("templates-dir") {
		cfg.TemplatesDir = serveTemplatesDir
	}

	// Environment variables fill whatever is still missing
	cfg = cfg.MergeWithDefaults(config.Config{
		DatabaseURL:      os.Getenv("DATABASE_URL"),
		APIKey:           os.Getenv("GEMINI_API_KEY"),
		OwnerTokenSecret: os.Getenv("OWNER_TOKEN_SECRET"),
	})

	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable is required")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	srv, err := server.New(context.Background(), server.Config{
		Port:             cfg.Port,
		DatabaseURL:      cfg.DatabaseURL,
		GeminiAPIKey:     cfg.APIKey,
		OwnerTokenSecret: cfg.OwnerTokenSecret,
		TemplatesDir:     cfg.TemplatesDir,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}
