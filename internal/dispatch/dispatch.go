// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dispatch turns drafted records into e-mail. A mode chosen once per
// invocation decides whether eligible records are transmitted, simulated, or
// skipped. NO_MATCH records are never transmitted, invalid records are
// reported and passed over, and transmissions are spaced by a fixed interval.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/reviewer-outreach/internal/config"
	"github.com/pdiddy/reviewer-outreach/internal/handoff"
	"github.com/pdiddy/reviewer-outreach/internal/ledger"
	"github.com/pdiddy/reviewer-outreach/pkg/types"
)

// Outcome is the per-record result of a dispatch run.
type Outcome string

const (
	OutcomeSent             Outcome = "sent"
	OutcomeSimulated        Outcome = "simulated"
	OutcomeFailed           Outcome = "failed"
	OutcomeFailedValidation Outcome = "failed-validation"
	OutcomeNoMatch          Outcome = "no-match"
	OutcomeSkipped          Outcome = "skipped"
)

// Summary holds counts from a dispatch run.
type Summary struct {
	Sent      int
	Simulated int
	Failed    int
	Invalid   int
	NoMatch   int
	Skipped   int
}

// Total returns the number of records seen.
func (s Summary) Total() int {
	return s.Sent + s.Simulated + s.Failed + s.Invalid + s.NoMatch + s.Skipped
}

// Processed returns the number of records that were eligible for dispatch.
func (s Summary) Processed() int {
	return s.Total() - s.NoMatch
}

// HasFailures reports whether any transmission or validation failed.
func (s Summary) HasFailures() bool {
	return s.Failed > 0 || s.Invalid > 0
}

func (s *Summary) add(o Outcome) {
	switch o {
	case OutcomeSent:
		s.Sent++
	case OutcomeSimulated:
		s.Simulated++
	case OutcomeFailed:
		s.Failed++
	case OutcomeFailedValidation:
		s.Invalid++
	case OutcomeNoMatch:
		s.NoMatch++
	case OutcomeSkipped:
		s.Skipped++
	}
}

// Recorder persists dispatch outcomes. *ledger.Ledger satisfies it.
type Recorder interface {
	Record(ctx context.Context, e ledger.Entry) error
}

// History answers whether a venue was already mailed. *ledger.Ledger satisfies it.
type History interface {
	PreviouslySent(ctx context.Context, url string) (bool, error)
}

// Options configures a Dispatcher.
type Options struct {
	// From is the sender address.
	From string

	// SendInterval is the minimum spacing between transmissions.
	SendInterval time.Duration

	// RunID tags every ledger entry.
	RunID string

	// Transport is required for ModeSend.
	Transport Transport

	// Recorder is optional.
	Recorder Recorder

	// History is optional. In send mode a venue already sent in an earlier
	// run is skipped, so a resumed run does not mail it twice.
	History History

	Logger *zap.Logger
}

// encodedSize is replaced in tests.
var encodedSize = MessageSize

// Dispatcher processes drafted records in file order.
type Dispatcher struct {
	opts     Options
	interval time.Duration
	logger   *zap.Logger

	// lastSend is when the previous transmission returned; zero before the first.
	lastSend time.Time
}

// New builds a Dispatcher. The first transmission is immediate.
func New(opts Options) *Dispatcher {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	interval := opts.SendInterval
	if interval <= 0 {
		interval = config.DefaultSendInterval
	}
	return &Dispatcher{
		opts:     opts,
		interval: interval,
		logger:   logger,
	}
}

// pace blocks until a full interval has passed since the previous
// transmission returned.
func (d *Dispatcher) pace(ctx context.Context) error {
	if d.lastSend.IsZero() {
		return nil
	}
	for {
		wait := time.Until(d.lastSend.Add(d.interval))
		if wait <= 0 {
			return nil
		}
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// Dispatch processes every record under mode and returns the outcome counts.
// It returns an error only for setup problems or cancellation; per-record
// failures are counted and logged.
func (d *Dispatcher) Dispatch(ctx context.Context, records []types.DraftRecord, mode Mode, w io.Writer) (Summary, error) {
	var summary Summary
	if mode == ModeSend && d.opts.Transport == nil {
		return summary, errors.New("send mode requires a mail transport")
	}

	for i, rec := range records {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		outcome, detail := d.process(ctx, rec, mode)
		if ctx.Err() != nil {
			return summary, ctx.Err()
		}
		summary.add(outcome)
		d.report(ctx, rec, mode, outcome, detail)

		line := fmt.Sprintf("[%d/%d] %-17s %s", i+1, len(records), outcome, rec.Name)
		if detail != "" {
			line += ": " + detail
		}
		fmt.Fprintln(w, line)
	}

	d.logger.Info("dispatch complete",
		zap.String("mode", string(mode)),
		zap.Int("sent", summary.Sent),
		zap.Int("simulated", summary.Simulated),
		zap.Int("failed", summary.Failed),
		zap.Int("invalid", summary.Invalid),
		zap.Int("no_match", summary.NoMatch),
		zap.Int("skipped", summary.Skipped))
	return summary, nil
}

// DispatchFile reads the drafts file and dispatches it.
func (d *Dispatcher) DispatchFile(ctx context.Context, path string, mode Mode, w io.Writer) (Summary, error) {
	records, err := handoff.ReadDrafts(path)
	if err != nil {
		return Summary{}, err
	}
	return d.Dispatch(ctx, records, mode, w)
}

func (d *Dispatcher) process(ctx context.Context, rec types.DraftRecord, mode Mode) (Outcome, string) {
	if rec.IsNoMatch() {
		return OutcomeNoMatch, ""
	}
	if mode == ModeSkip {
		return OutcomeSkipped, ""
	}
	if err := Validate(rec); err != nil {
		return OutcomeFailedValidation, err.Error()
	}

	msg := Message{
		From:    d.opts.From,
		To:      strings.TrimSpace(rec.Email),
		Subject: rec.Subject,
		Body:    rec.Body,
	}

	if mode == ModeSend && d.opts.History != nil {
		sent, err := d.opts.History.PreviouslySent(ctx, rec.URL)
		if err != nil {
			return OutcomeFailed, fmt.Sprintf("ledger lookup failed, not sent: %v", err)
		}
		if sent {
			return OutcomeSkipped, "already sent in an earlier run"
		}
	}

	if mode == ModeDryRun {
		m, err := BuildMessage(msg)
		if err != nil {
			return OutcomeFailedValidation, err.Error()
		}
		size, err := encodedSize(m)
		if err != nil {
			return OutcomeFailedValidation, err.Error()
		}
		return OutcomeSimulated, fmt.Sprintf("would send %d bytes to %s", size, msg.To)
	}

	if err := d.pace(ctx); err != nil {
		return OutcomeFailed, err.Error()
	}
	err := d.opts.Transport.Send(ctx, msg)
	d.lastSend = time.Now()
	if err != nil {
		return OutcomeFailed, err.Error()
	}
	return OutcomeSent, ""
}

func (d *Dispatcher) report(ctx context.Context, rec types.DraftRecord, mode Mode, outcome Outcome, detail string) {
	fields := []zap.Field{
		zap.String("venue", rec.Name),
		zap.String("url", rec.URL),
		zap.String("recipient", rec.Email),
		zap.String("mode", string(mode)),
		zap.String("outcome", string(outcome)),
	}
	if detail != "" {
		fields = append(fields, zap.String("detail", detail))
	}
	switch outcome {
	case OutcomeFailed, OutcomeFailedValidation:
		d.logger.Warn("dispatch outcome", fields...)
	default:
		d.logger.Info("dispatch outcome", fields...)
	}

	if d.opts.Recorder == nil {
		return
	}
	err := d.opts.Recorder.Record(ctx, ledger.Entry{
		RunID:     d.opts.RunID,
		Venue:     rec.Name,
		URL:       rec.URL,
		Recipient: rec.Email,
		Subject:   rec.Subject,
		Mode:      string(mode),
		Outcome:   string(outcome),
		Detail:    detail,
	})
	if err != nil {
		d.logger.Error("ledger write failed", zap.String("venue", rec.Name), zap.Error(err))
	}
}
