// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs the four phases in order: collect, enrich, draft, and
// dispatch. Each phase reads the previous phase's hand-off file and writes its
// own, so a failed run can be resumed from the failed phase with the
// single-phase commands.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/reviewer-outreach/internal/collect"
	"github.com/pdiddy/reviewer-outreach/internal/console"
	"github.com/pdiddy/reviewer-outreach/internal/dispatch"
	"github.com/pdiddy/reviewer-outreach/internal/draft"
	"github.com/pdiddy/reviewer-outreach/internal/enrich"
	"github.com/pdiddy/reviewer-outreach/internal/handoff"
	"github.com/pdiddy/reviewer-outreach/internal/metrics"
	"github.com/pdiddy/reviewer-outreach/pkg/types"
)

// Phase names used in banners, logs, and metric labels.
const (
	PhaseCollect  = "collect"
	PhaseEnrich   = "enrich"
	PhaseDraft    = "draft"
	PhaseDispatch = "dispatch"
)

// Collector writes the listings file.
type Collector interface {
	CollectToFile(ctx context.Context, path string, w io.Writer) (collect.BatchResult, error)
}

// Enricher turns the listings file into the research file.
type Enricher interface {
	EnrichFile(ctx context.Context, inPath, outPath string, w io.Writer) (enrich.BatchResult, error)
}

// Drafter turns the research file into the drafts file.
type Drafter interface {
	DraftFile(ctx context.Context, inPath, outPath string, w io.Writer) (draft.BatchResult, error)
}

// Dispatcher processes drafted records under one mode.
type Dispatcher interface {
	Dispatch(ctx context.Context, records []types.DraftRecord, mode dispatch.Mode, w io.Writer) (dispatch.Summary, error)
}

// DispatcherFactory builds the dispatcher once the mode is known, so send-only
// requirements such as mailbox credentials are checked only when sending.
type DispatcherFactory func(mode dispatch.Mode) (Dispatcher, error)

// Runner wires the phases together.
type Runner struct {
	Collector     Collector
	Enricher      Enricher
	Drafter       Drafter
	NewDispatcher DispatcherFactory

	Output       types.OutputConfig
	PreviewChars int

	// In answers the mode prompt when no mode was given.
	In io.Reader

	// Metrics is optional.
	Metrics *metrics.Recorder
	Logger  *zap.Logger
}

// Report collects the per-phase results of one run.
type Report struct {
	Collect  collect.BatchResult
	Enrich   enrich.BatchResult
	Draft    draft.BatchResult
	Mode     dispatch.Mode
	Dispatch dispatch.Summary
}

// Rows flattens the report for console.Summary.
func (r Report) Rows() []console.Row {
	return []console.Row{
		{Label: "venues found", Value: r.Collect.Found},
		{Label: "with e-mail", Value: r.Collect.WithEmail},
		{Label: "enriched", Value: r.Enrich.Enriched},
		{Label: "research degraded", Value: r.Enrich.Degraded},
		{Label: "drafted", Value: r.Draft.Drafted},
		{Label: "no match", Value: r.Draft.NoMatch},
		{Label: "draft failures", Value: r.Draft.Failed},
		{Label: "sent", Value: r.Dispatch.Sent},
		{Label: "simulated", Value: r.Dispatch.Simulated},
		{Label: "send failures", Value: r.Dispatch.Failed},
		{Label: "invalid", Value: r.Dispatch.Invalid},
		{Label: "skipped", Value: r.Dispatch.Skipped},
	}
}

// Run executes every phase. An empty mode shows the dispatch preview and asks
// the operator. Phases run strictly in sequence; the first phase error stops
// the run.
func (r *Runner) Run(ctx context.Context, mode dispatch.Mode, w io.Writer) (Report, error) {
	var report Report
	logger := r.logger()

	console.Banner(w, "Phase 1/4: Collect")
	start := time.Now()
	cres, err := r.Collector.CollectToFile(ctx, r.Output.ListingsCSV, w)
	if err != nil {
		return report, fmt.Errorf("%s: %w", PhaseCollect, err)
	}
	report.Collect = cres
	r.observe(PhaseCollect, map[string]int{"found": cres.Found, "with_email": cres.WithEmail}, start)

	console.Banner(w, "Phase 2/4: Enrich")
	start = time.Now()
	eres, err := r.Enricher.EnrichFile(ctx, r.Output.ListingsCSV, r.Output.ResearchCSV, w)
	if err != nil {
		return report, fmt.Errorf("%s: %w", PhaseEnrich, err)
	}
	report.Enrich = eres
	r.observe(PhaseEnrich, map[string]int{"enriched": eres.Enriched, "degraded": eres.Degraded}, start)

	console.Banner(w, "Phase 3/4: Draft")
	start = time.Now()
	dres, err := r.Drafter.DraftFile(ctx, r.Output.ResearchCSV, r.Output.DraftsCSV, w)
	if err != nil {
		return report, fmt.Errorf("%s: %w", PhaseDraft, err)
	}
	report.Draft = dres
	r.observe(PhaseDraft, map[string]int{
		string(draft.OutcomeDrafted): dres.Drafted,
		string(draft.OutcomeNoMatch): dres.NoMatch,
		string(draft.OutcomeFailed):  dres.Failed,
	}, start)

	console.Banner(w, "Phase 4/4: Dispatch")
	start = time.Now()
	mode, summary, err := r.DispatchFile(ctx, r.Output.DraftsCSV, mode, w)
	report.Mode = mode
	report.Dispatch = summary
	if err != nil {
		return report, fmt.Errorf("%s: %w", PhaseDispatch, err)
	}
	r.observe(PhaseDispatch, SummaryOutcomes(summary), start)

	logger.Info("run complete",
		zap.Int("venues", cres.Found),
		zap.Int("drafted", dres.Drafted),
		zap.String("mode", string(mode)),
		zap.Int("sent", summary.Sent))
	return report, nil
}

// DispatchFile reads the drafts file, resolves the mode, and dispatches. The
// resolved mode is returned even when dispatch fails.
func (r *Runner) DispatchFile(ctx context.Context, path string, mode dispatch.Mode, w io.Writer) (dispatch.Mode, dispatch.Summary, error) {
	records, err := handoff.ReadDrafts(path)
	if err != nil {
		return mode, dispatch.Summary{}, err
	}

	mode = r.ChooseMode(records, mode, w)
	if r.NewDispatcher == nil {
		return mode, dispatch.Summary{}, errors.New("no dispatcher configured")
	}
	d, err := r.NewDispatcher(mode)
	if err != nil {
		return mode, dispatch.Summary{}, err
	}
	summary, err := d.Dispatch(ctx, records, mode, w)
	return mode, summary, err
}

// ChooseMode prints the preview and prompts when mode is empty. A run with
// nothing eligible skips the prompt.
func (r *Runner) ChooseMode(records []types.DraftRecord, mode dispatch.Mode, w io.Writer) dispatch.Mode {
	preview := dispatch.BuildPreview(records, r.PreviewChars)
	console.Preview(w, preview)
	if mode != "" {
		return mode
	}
	if preview.Eligible == 0 {
		fmt.Fprintln(w, "nothing to send")
		return dispatch.ModeSkip
	}
	in := r.In
	if in == nil {
		return dispatch.ModeSkip
	}
	return dispatch.PromptMode(in, w)
}

// SummaryOutcomes maps a dispatch summary to metric outcome labels.
func SummaryOutcomes(s dispatch.Summary) map[string]int {
	return map[string]int{
		string(dispatch.OutcomeSent):             s.Sent,
		string(dispatch.OutcomeSimulated):        s.Simulated,
		string(dispatch.OutcomeFailed):           s.Failed,
		string(dispatch.OutcomeFailedValidation): s.Invalid,
		string(dispatch.OutcomeNoMatch):          s.NoMatch,
		string(dispatch.OutcomeSkipped):          s.Skipped,
	}
}

func (r *Runner) observe(phase string, outcomes map[string]int, start time.Time) {
	if r.Metrics != nil {
		r.Metrics.ObservePhase(phase, outcomes, time.Since(start))
	}
}

func (r *Runner) logger() *zap.Logger {
	if r.Logger == nil {
		return zap.NewNop()
	}
	return r.Logger
}
