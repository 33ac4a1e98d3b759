// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package enrich

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/pdiddy/reviewer-outreach/internal/httputil"
	"github.com/pdiddy/reviewer-outreach/pkg/types"
)

// ExaClient queries the Exa search API for venue highlights.
type ExaClient struct {
	cfg    types.ResearchConfig
	Client *http.Client
}

// NewExaClient builds a client using the configured endpoint and timeout.
func NewExaClient(cfg types.ResearchConfig) *ExaClient {
	return &ExaClient{
		cfg:    cfg,
		Client: &http.Client{Timeout: cfg.Timeout},
	}
}

type exaRequest struct {
	Query      string      `json:"query"`
	Type       string      `json:"type"`
	NumResults int         `json:"numResults"`
	Contents   exaContents `json:"contents"`
}

type exaContents struct {
	Highlights exaHighlightOptions `json:"highlights"`
}

type exaHighlightOptions struct {
	HighlightsPerURL int    `json:"highlightsPerUrl"`
	NumSentences     int    `json:"numSentences"`
	Query            string `json:"query,omitempty"`
}

type exaResponse struct {
	Results []exaResult `json:"results"`
}

type exaResult struct {
	Title      string   `json:"title"`
	URL        string   `json:"url"`
	Highlights []string `json:"highlights"`
}

// Query builds the search text for a venue.
func Query(venueName string) string {
	return fmt.Sprintf("%s call for papers research topics scope", venueName)
}

// Research returns every highlight from a neural search for the venue, in
// result order.
func (c *ExaClient) Research(ctx context.Context, venueName string) ([]string, error) {
	q := Query(venueName)
	req := exaRequest{
		Query:      q,
		Type:       "neural",
		NumResults: c.cfg.NumResults,
		Contents: exaContents{Highlights: exaHighlightOptions{
			HighlightsPerURL: c.cfg.HighlightsPerURL,
			NumSentences:     c.cfg.NumSentences,
			Query:            q,
		}},
	}
	headers := map[string]string{"x-api-key": c.cfg.APIKey}
	if c.cfg.UserAgent != "" {
		headers["User-Agent"] = c.cfg.UserAgent
	}

	var resp exaResponse
	if err := httputil.PostJSON(ctx, c.Client, "Exa", c.cfg.Endpoint, headers, req, &resp); err != nil {
		return nil, err
	}

	var highlights []string
	for _, r := range resp.Results {
		for _, h := range r.Highlights {
			if h = strings.TrimSpace(h); h != "" {
				highlights = append(highlights, h)
			}
		}
	}
	return highlights, nil
}
