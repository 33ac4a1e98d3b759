// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package draft

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/pdiddy/reviewer-outreach/internal/httputil"
	"github.com/pdiddy/reviewer-outreach/pkg/types"
)

// completionTokenModels use max_completion_tokens instead of max_tokens.
var completionTokenModels = []string{"gpt-4o", "gpt-4.1", "gpt-5", "o1", "o3", "o4"}

// OpenAIBackend calls an OpenAI-compatible chat-completions endpoint.
type OpenAIBackend struct {
	cfg    types.GenerationConfig
	Client *http.Client
}

// NewOpenAIBackend builds a backend from the generation settings.
func NewOpenAIBackend(cfg types.GenerationConfig) *OpenAIBackend {
	return &OpenAIBackend{cfg: cfg, Client: &http.Client{Timeout: cfg.Timeout}}
}

type chatRequest struct {
	Model               string        `json:"model"`
	Messages            []chatMessage `json:"messages"`
	Temperature         float64       `json:"temperature"`
	MaxTokens           int           `json:"max_tokens,omitempty"`
	MaxCompletionTokens int           `json:"max_completion_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// usesCompletionTokens reports whether model belongs to a family that rejects max_tokens.
func usesCompletionTokens(model string) bool {
	m := strings.ToLower(model)
	for _, prefix := range completionTokenModels {
		if strings.HasPrefix(m, prefix) {
			return true
		}
	}
	return false
}

// Generate sends the system message and prompt and returns the first choice.
func (b *OpenAIBackend) Generate(ctx context.Context, system, prompt string) (string, error) {
	req := chatRequest{
		Model: b.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		Temperature: b.cfg.Temperature,
	}
	if usesCompletionTokens(b.cfg.Model) {
		req.MaxCompletionTokens = b.cfg.MaxTokens
	} else {
		req.MaxTokens = b.cfg.MaxTokens
	}

	headers := map[string]string{"Authorization": "Bearer " + b.cfg.APIKey}

	var resp chatResponse
	if err := httputil.PostJSON(ctx, b.Client, "OpenAI", b.cfg.Endpoint, headers, req, &resp); err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("OpenAI returned no choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
