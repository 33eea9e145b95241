// Package assist is a thin adapter over the Gemini API that drafts step-data
// payloads for the chat layer. It is a collaborator at the journey boundary:
// it never mutates a journey and never decides when a step is complete. The
// caller reviews a suggestion and issues the actual command.
package assist

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Client drafts suggestions from journey context.
type Client interface {
	// SuggestStepData proposes a data payload for a step based on what the
	// user has recorded so far.
	SuggestStepData(ctx context.Context, req SuggestionRequest) (map[string]interface{}, error)
	// Close releases any resources held by the client
	Close() error
}

// SuggestionRequest carries the step context a suggestion is drafted from.
type SuggestionRequest struct {
	TemplateName string
	StepName     string
	StepData     map[string]interface{}
	Notes        string
}

// GeminiClient implements Client for Google Gemini
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient creates a new Gemini-backed suggestion client.
func NewGeminiClient(ctx context.Context, apiKey, model string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{client: client, model: model}, nil
}

// SuggestStepData proposes a data payload for a step.
func (c *GeminiClient) SuggestStepData(ctx context.Context, req SuggestionRequest) (map[string]interface{}, error) {
	prompt, err := buildSuggestionPrompt(req)
	if err != nil {
		return nil, err
	}

	model := c.client.GenerativeModel(c.model)
	model.SetTemperature(0.3)
	model.ResponseMIMEType = "application/json"

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("failed to generate suggestion: %w", err)
	}

	text, err := extractText(resp)
	if err != nil {
		return nil, err
	}

	var suggestion map[string]interface{}
	if err := json.Unmarshal([]byte(CleanJSONBlock(text)), &suggestion); err != nil {
		return nil, fmt.Errorf("suggestion was not valid JSON: %w", err)
	}
	return suggestion, nil
}

// Close releases the underlying Gemini client.
func (c *GeminiClient) Close() error {
	return c.client.Close()
}

func buildSuggestionPrompt(req SuggestionRequest) (string, error) {
	current, err := json.MarshalIndent(req.StepData, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal step data: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("You are helping a homeowner plan a renovation project step by step.\n")
	sb.WriteString(fmt.Sprintf("Project type: %s\n", req.TemplateName))
	sb.WriteString(fmt.Sprintf("Current step: %s\n", req.StepName))
	sb.WriteString("Data the user has recorded so far for this step:\n")
	sb.Write(current)
	sb.WriteString("\n")
	if req.Notes != "" {
		sb.WriteString(fmt.Sprintf("Additional context from the user: %s\n", req.Notes))
	}
	sb.WriteString("\nPropose a completed data payload for this step as a single flat JSON object. ")
	sb.WriteString("Keep every key the user already set with its existing value; only add keys that are missing. ")
	sb.WriteString("Respond with JSON only.")
	return sb.String(), nil
}

func extractText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("empty response from model")
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("response contained no text")
	}
	return sb.String(), nil
}
