// Package server provides the HTTP REST API for the journey service.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/marcus/journey-keeper/internal/assist"
	"github.com/marcus/journey-keeper/internal/db"
	"github.com/marcus/journey-keeper/internal/server/lock"
	"github.com/marcus/journey-keeper/internal/server/middleware"
	"github.com/marcus/journey-keeper/internal/templates"
)

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	db         *db.DB
	catalog    *templates.Catalog
	assist     assist.Client
	locks      *lock.Registry
	validate   *validator.Validate
}

// Config holds server configuration
type Config struct {
	Port             int
	DatabaseURL      string
	OwnerTokenSecret string
	GeminiAPIKey     string
	TemplatesDir     string
}

// New creates a new server instance
func New(ctx context.Context, cfg Config) (*Server, error) {
	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := database.Migrate(ctx); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	catalog, err := templates.NewCatalog()
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to load template catalog: %w", err)
	}
	if cfg.TemplatesDir != "" {
		if err := catalog.LoadDir(cfg.TemplatesDir); err != nil {
			database.Close()
			return nil, err
		}
	}

	s := &Server{
		db:       database,
		catalog:  catalog,
		locks:    lock.NewRegistry(0, 0),
		validate: validator.New(),
	}

	// Suggestions are optional; without an API key the endpoint returns 503.
	if cfg.GeminiAPIKey != "" {
		client, err := assist.NewGeminiClient(ctx, cfg.GeminiAPIKey, "")
		if err != nil {
			database.Close()
			return nil, fmt.Errorf("failed to create assist client: %w", err)
		}
		s.assist = client
	}

	verifier := middleware.NewOwnerVerifier(cfg.OwnerTokenSecret)
	if verifier.DevMode() {
		log.Println("OWNER_TOKEN_SECRET not set; trusting X-Owner-ID header (development mode)")
	}
	owned := middleware.ResolveOwner(verifier)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /templates", s.handleListTemplates)
	mux.HandleFunc("GET /templates/{id}", s.handleGetTemplate)

	api := http.NewServeMux()
	api.HandleFunc("POST /journeys", s.handleStartJourney)
	api.HandleFunc("GET /journeys", s.handleListJourneys)
	api.HandleFunc("GET /journeys/{id}", s.handleGetJourney)
	api.HandleFunc("POST /journeys/{id}/pause", s.handlePauseJourney)
	api.HandleFunc("POST /journeys/{id}/resume", s.handleResumeJourney)
	api.HandleFunc("POST /journeys/{id}/abandon", s.handleAbandonJourney)
	api.HandleFunc("POST /journeys/{id}/navigate", s.handleNavigate)

	api.HandleFunc("GET /journeys/{id}/steps", s.handleStepBoard)
	api.HandleFunc("GET /journeys/{id}/steps/{step_id}", s.handleGetStep)
	api.HandleFunc("POST /journeys/{id}/steps/{step_id}/complete", s.handleCompleteStep)
	api.HandleFunc("POST /journeys/{id}/steps/{step_id}/edit", s.handleEditStep)
	api.HandleFunc("POST /journeys/{id}/steps/{step_id}/skip", s.handleSkipStep)
	api.HandleFunc("POST /journeys/{id}/steps/{step_id}/resolve", s.handleResolveAttention)
	api.HandleFunc("POST /journeys/{id}/steps/{step_id}/suggest", s.handleSuggestStepData)

	api.HandleFunc("POST /journeys/{id}/steps/{step_id}/attachments", s.handleAttach)
	api.HandleFunc("GET /journeys/{id}/steps/{step_id}/attachments", s.handleListAttachments)
	api.HandleFunc("PATCH /journeys/{id}/attachments/{attachment_id}/annotations", s.handleUpdateAnnotations)
	api.HandleFunc("POST /journeys/{id}/attachments/{attachment_id}/replace", s.handleMarkReplaced)
	api.HandleFunc("POST /journeys/{id}/attachments/relate", s.handleRelateAttachments)

	mux.Handle("/journeys", owned(api))
	mux.Handle("/journeys/", owned(api))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.withLogging(s.withCORS(mux)),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Start begins listening for requests and blocks until shutdown.
func (s *Server) Start() error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.locks.Stop()
	if s.assist != nil {
		_ = s.assist.Close()
	}
	s.db.Close()
	log.Println("Server stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PATCH, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Owner-ID")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}
