// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package enrich augments listing records with research topics and highlights.
// Records are looked up one at a time in file order. A failed lookup degrades
// the record to empty topics and highlights and the batch continues; rejected
// credentials abort the phase.
package enrich

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/pdiddy/reviewer-outreach/internal/handoff"
	"github.com/pdiddy/reviewer-outreach/internal/httputil"
	"github.com/pdiddy/reviewer-outreach/pkg/types"
)

// Researcher looks up highlight text for a venue. ExaClient is the production
// implementation; tests supply their own.
type Researcher interface {
	Research(ctx context.Context, venueName string) ([]string, error)
}

// BatchResult holds counts from an enrichment run.
type BatchResult struct {
	Enriched int
	Degraded int
}

// Total returns the number of records processed.
func (r BatchResult) Total() int {
	return r.Enriched + r.Degraded
}

// HasFailures reports whether any lookup degraded.
func (r BatchResult) HasFailures() bool {
	return r.Degraded > 0
}

// Enricher runs lookups for a batch of records.
type Enricher struct {
	researcher Researcher
	cfg        types.ResearchConfig
	logger     *zap.Logger
}

// New builds an Enricher.
func New(researcher Researcher, cfg types.ResearchConfig, logger *zap.Logger) *Enricher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Enricher{researcher: researcher, cfg: cfg, logger: logger}
}

// EnrichRecord performs one lookup and builds the researched record.
func (e *Enricher) EnrichRecord(ctx context.Context, rec types.ListingRecord) (types.ResearchedRecord, error) {
	highlights, err := e.researcher.Research(ctx, rec.Name)
	if err != nil {
		return types.ResearchedRecord{ListingRecord: rec}, err
	}
	return types.ResearchedRecord{
		ListingRecord: rec,
		Topics:        ExtractTopics(highlights),
		Highlights:    CondenseHighlights(highlights, e.cfg.MaxHighlights, e.cfg.MaxHighlightChars),
	}, nil
}

// EnrichAll enriches records in order. Output has exactly one record per input.
func (e *Enricher) EnrichAll(ctx context.Context, records []types.ListingRecord, w io.Writer) ([]types.ResearchedRecord, BatchResult, error) {
	out := make([]types.ResearchedRecord, 0, len(records))
	var result BatchResult

	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return nil, result, err
		}
		fmt.Fprintf(w, "[%d/%d] researching %s\n", i+1, len(records), rec.Name)

		researched, err := e.EnrichRecord(ctx, rec)
		if err != nil {
			if errors.Is(err, httputil.ErrUnauthorized) {
				return nil, result, fmt.Errorf("research service: %w", err)
			}
			if ctx.Err() != nil {
				return nil, result, ctx.Err()
			}
			e.logger.Warn("research lookup failed",
				zap.String("venue", rec.Name),
				zap.String("url", rec.URL),
				zap.Error(err))
			fmt.Fprintf(w, "degraded %s: %v\n", rec.Name, err)
			out = append(out, researched)
			result.Degraded++
			continue
		}

		e.logger.Debug("venue researched",
			zap.String("venue", rec.Name),
			zap.Strings("topics", researched.Topics))
		fmt.Fprintf(w, "topics  %s: %s\n", rec.Name, handoff.JoinTopics(researched.Topics))
		out = append(out, researched)
		result.Enriched++
	}
	return out, result, nil
}

// EnrichFile reads the listings file, enriches every record, and writes the
// research file.
func (e *Enricher) EnrichFile(ctx context.Context, inPath, outPath string, w io.Writer) (BatchResult, error) {
	records, err := handoff.ReadListings(inPath)
	if err != nil {
		return BatchResult{}, err
	}

	researched, result, err := e.EnrichAll(ctx, records, w)
	if err != nil {
		return result, err
	}
	if err := handoff.WriteResearch(outPath, researched); err != nil {
		return result, err
	}

	e.logger.Info("enrichment complete",
		zap.Int("enriched", result.Enriched),
		zap.Int("degraded", result.Degraded),
		zap.String("path", outPath))
	return result, nil
}
