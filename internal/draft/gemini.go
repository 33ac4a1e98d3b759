// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package draft

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/pdiddy/reviewer-outreach/internal/httputil"
	"github.com/pdiddy/reviewer-outreach/pkg/types"
)

// geminiBaseURL overrides the Gemini endpoint when set. Package-level var for test substitution.
var geminiBaseURL = ""

// GeminiBackend generates drafts with the Gemini API.
type GeminiBackend struct {
	client *genai.Client
	cfg    types.GenerationConfig
}

// NewGeminiBackend creates a Gemini client for the configured model.
func NewGeminiBackend(ctx context.Context, cfg types.GenerationConfig) (*GeminiBackend, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}
	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: cfg.Timeout},
	}
	if geminiBaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: geminiBaseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("creating Gemini client: %w", err)
	}
	return &GeminiBackend{client: client, cfg: cfg}, nil
}

// Generate sends the prompt with the system message as system instruction.
func (b *GeminiBackend) Generate(ctx context.Context, system, prompt string) (string, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		Temperature:       genai.Ptr(float32(b.cfg.Temperature)),
		MaxOutputTokens:   int32(b.cfg.MaxTokens),
	}

	resp, err := b.client.Models.GenerateContent(ctx, b.cfg.Model, genai.Text(prompt), config)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) && httputil.IsAuthStatus(apiErr.Code) {
			return "", fmt.Errorf("Gemini: %w: %s", httputil.ErrUnauthorized, apiErr.Message)
		}
		return "", fmt.Errorf("Gemini generate: %w", err)
	}
	return strings.TrimSpace(resp.Text()), nil
}
