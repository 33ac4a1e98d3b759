// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package draft writes one reviewer-offer message per researched venue using a
// text-generation backend. A venue with no genuine overlap with the user's
// expertise, or whose generation call fails, receives the NO_MATCH sentinel
// and is never sent.
package draft

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/pdiddy/reviewer-outreach/internal/handoff"
	"github.com/pdiddy/reviewer-outreach/internal/httputil"
	"github.com/pdiddy/reviewer-outreach/pkg/types"
)

// Generator abstracts the text-generation API so tests can supply a mock.
type Generator interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// NewGenerator returns the backend selected by cfg.Provider.
func NewGenerator(ctx context.Context, cfg types.GenerationConfig) (Generator, error) {
	switch cfg.Provider {
	case types.ProviderGemini:
		return NewGeminiBackend(ctx, cfg)
	case types.ProviderOpenAI, "":
		return NewOpenAIBackend(cfg), nil
	default:
		return nil, fmt.Errorf("unknown generation provider %q", cfg.Provider)
	}
}

// Outcome classifies the result of drafting one record.
type Outcome string

const (
	OutcomeDrafted Outcome = "drafted"
	OutcomeNoMatch Outcome = "no-match"
	OutcomeFailed  Outcome = "failed"
)

// BatchResult holds counts from a drafting run.
type BatchResult struct {
	Drafted int
	NoMatch int
	Failed  int
}

// Total returns the number of records processed.
func (r BatchResult) Total() int {
	return r.Drafted + r.NoMatch + r.Failed
}

// HasFailures reports whether any generation call failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// Drafter combines researched records with the user profile.
type Drafter struct {
	gen     Generator
	profile types.UserProfile
	cfg     types.GenerationConfig
	limiter *rate.Limiter
	logger  *zap.Logger
}

// New builds a Drafter.
func New(gen Generator, profile types.UserProfile, cfg types.GenerationConfig, logger *zap.Logger) *Drafter {
	if logger == nil {
		logger = zap.NewNop()
	}
	limit := rate.Inf
	if cfg.RequestsPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(cfg.RequestsPerMinute))
	}
	return &Drafter{
		gen:     gen,
		profile: profile,
		cfg:     cfg,
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger,
	}
}

// IsNoMatchResponse reports whether a raw generation response declines the venue.
func IsNoMatchResponse(s string) bool {
	s = strings.Trim(strings.TrimSpace(s), ".\"'`")
	return strings.EqualFold(s, "NULL") || strings.EqualFold(s, types.NoMatch)
}

// WordCount counts whitespace-separated words.
func WordCount(s string) int {
	return len(strings.Fields(s))
}

// DraftRecord drafts one message. The returned error is non-nil only for
// failures of the generation call; the record then carries NO_MATCH.
func (d *Drafter) DraftRecord(ctx context.Context, rec types.ResearchedRecord) (types.DraftRecord, Outcome, error) {
	out := types.DraftRecord{
		ResearchedRecord: rec,
		Subject:          types.SubjectFor(rec.Name),
		Body:             types.NoMatch,
	}

	prompt, err := renderPrompt(rec, d.profile, d.cfg)
	if err != nil {
		return out, OutcomeFailed, fmt.Errorf("rendering prompt: %w", err)
	}

	if err := d.limiter.Wait(ctx); err != nil {
		return out, OutcomeFailed, err
	}
	text, err := d.gen.Generate(ctx, systemMessage, prompt)
	if err != nil {
		return out, OutcomeFailed, err
	}
	text = strings.TrimSpace(text)
	if text == "" || IsNoMatchResponse(text) {
		return out, OutcomeNoMatch, nil
	}

	if n := WordCount(text); n < d.cfg.MinWords || (d.cfg.MaxWords > 0 && n > d.cfg.MaxWords) {
		d.logger.Warn("draft outside word bounds",
			zap.String("venue", rec.Name),
			zap.Int("words", n),
			zap.Int("min_words", d.cfg.MinWords),
			zap.Int("max_words", d.cfg.MaxWords))
	}

	out.Body = text + "\n\n" + d.profile.SignOff()
	return out, OutcomeDrafted, nil
}

// messageWords counts the words of a drafted body without its sign-off, the
// same count the word bounds are checked against.
func (d *Drafter) messageWords(body string) int {
	return WordCount(strings.TrimSuffix(body, "\n\n"+d.profile.SignOff()))
}

// DraftAll drafts every record in order. Output has exactly one record per input.
func (d *Drafter) DraftAll(ctx context.Context, records []types.ResearchedRecord, w io.Writer) ([]types.DraftRecord, BatchResult, error) {
	out := make([]types.DraftRecord, 0, len(records))
	var result BatchResult

	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return nil, result, err
		}
		fmt.Fprintf(w, "[%d/%d] drafting %s\n", i+1, len(records), rec.Name)

		drafted, outcome, err := d.DraftRecord(ctx, rec)
		switch outcome {
		case OutcomeFailed:
			if errors.Is(err, httputil.ErrUnauthorized) {
				return nil, result, fmt.Errorf("generation service: %w", err)
			}
			if ctx.Err() != nil {
				return nil, result, ctx.Err()
			}
			d.logger.Warn("generation failed",
				zap.String("venue", rec.Name),
				zap.String("url", rec.URL),
				zap.Error(err))
			fmt.Fprintf(w, "failed  %s: %v\n", rec.Name, err)
			result.Failed++
		case OutcomeNoMatch:
			d.logger.Info("no expertise match", zap.String("venue", rec.Name))
			fmt.Fprintf(w, "no match %s\n", rec.Name)
			result.NoMatch++
		default:
			fmt.Fprintf(w, "drafted %s (%d words)\n", rec.Name, d.messageWords(drafted.Body))
			result.Drafted++
		}
		out = append(out, drafted)
	}
	return out, result, nil
}

// DraftFile reads the research file, drafts every record, and writes the drafts file.
func (d *Drafter) DraftFile(ctx context.Context, inPath, outPath string, w io.Writer) (BatchResult, error) {
	records, err := handoff.ReadResearch(inPath)
	if err != nil {
		return BatchResult{}, err
	}

	drafts, result, err := d.DraftAll(ctx, records, w)
	if err != nil {
		return result, err
	}
	if err := handoff.WriteDrafts(outPath, drafts); err != nil {
		return result, err
	}

	d.logger.Info("drafting complete",
		zap.Int("drafted", result.Drafted),
		zap.Int("no_match", result.NoMatch),
		zap.Int("failed", result.Failed),
		zap.String("path", outPath))
	return result, nil
}
