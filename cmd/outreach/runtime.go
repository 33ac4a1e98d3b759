// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/reviewer-outreach/internal/collect"
	"github.com/pdiddy/reviewer-outreach/internal/config"
	"github.com/pdiddy/reviewer-outreach/internal/dispatch"
	"github.com/pdiddy/reviewer-outreach/internal/draft"
	"github.com/pdiddy/reviewer-outreach/internal/enrich"
	"github.com/pdiddy/reviewer-outreach/internal/ledger"
	"github.com/pdiddy/reviewer-outreach/internal/logging"
	"github.com/pdiddy/reviewer-outreach/internal/metrics"
	"github.com/pdiddy/reviewer-outreach/internal/pipeline"
	"github.com/pdiddy/reviewer-outreach/internal/profile"
	"github.com/pdiddy/reviewer-outreach/pkg/types"
)

// fallbackSender is the From address of a dry run with no mailbox configured.
const fallbackSender = "outreach@localhost"

// runtime is the per-invocation state shared by every phase command.
type runtime struct {
	cfg     types.Config
	logger  *zap.Logger
	runID   string
	metrics *metrics.Recorder
}

// newRuntime resolves configuration, credentials, and the run logger.
func newRuntime(cmd *cobra.Command) (*runtime, error) {
	cfg, err := config.FromViper(viper.GetViper())
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	cfg = config.WithCredentials(cfg, store)

	if cmd.Flags().Lookup("limit") != nil && cmd.Flags().Changed("limit") {
		cfg.Listing.Limit, _ = cmd.Flags().GetInt("limit")
	}
	verbose, _ := cmd.Flags().GetBool("verbose")

	logger, err := logging.New(cfg.Logging.Development || verbose)
	if err != nil {
		return nil, err
	}
	runID := logging.NewRunID()
	return &runtime{
		cfg:     cfg,
		logger:  logging.WithRun(logger, runID),
		runID:   runID,
		metrics: metrics.New(),
	}, nil
}

// finish flushes the logger and writes the metrics textfile.
func (rt *runtime) finish() {
	if err := rt.metrics.WriteTextfile(rt.cfg.Metrics.Textfile); err != nil {
		rt.logger.Warn("metrics export failed", zap.Error(err))
	}
	_ = rt.logger.Sync()
}

func (rt *runtime) observe(phase string, outcomes map[string]int, start time.Time) {
	rt.metrics.ObservePhase(phase, outcomes, time.Since(start))
}

func (rt *runtime) collector() *collect.Collector {
	return collect.New(rt.cfg.Listing, rt.logger.Named(pipeline.PhaseCollect))
}

func (rt *runtime) enricher() (*enrich.Enricher, error) {
	if err := config.RequireResearchKey(rt.cfg); err != nil {
		return nil, err
	}
	client := enrich.NewExaClient(rt.cfg.Research)
	return enrich.New(client, rt.cfg.Research, rt.logger.Named(pipeline.PhaseEnrich)), nil
}

func (rt *runtime) drafter(ctx context.Context) (*draft.Drafter, error) {
	if err := config.RequireGenerationKey(rt.cfg); err != nil {
		return nil, err
	}
	p, err := profile.Load(rt.cfg.ProfilePath)
	if err != nil {
		return nil, err
	}
	gen, err := draft.NewGenerator(ctx, rt.cfg.Generation)
	if err != nil {
		return nil, err
	}
	return draft.New(gen, p, rt.cfg.Generation, rt.logger.Named(pipeline.PhaseDraft)), nil
}

// dispatcherFactory returns a factory that builds the mail transport only for
// send mode. Every outcome is recorded in l.
func (rt *runtime) dispatcherFactory(l *ledger.Ledger) pipeline.DispatcherFactory {
	return func(mode dispatch.Mode) (pipeline.Dispatcher, error) {
		opts := dispatch.Options{
			From:         rt.sender(),
			SendInterval: rt.cfg.Dispatch.SendInterval,
			RunID:        rt.runID,
			Recorder:     l,
			History:      l,
			Logger:       rt.logger.Named(pipeline.PhaseDispatch),
		}
		if mode == dispatch.ModeSend {
			tr, err := dispatch.NewSMTPTransport(rt.cfg.SMTP)
			if err != nil {
				return nil, err
			}
			opts.Transport = tr
		}
		return dispatch.New(opts), nil
	}
}

// sender is the mailbox login, else the profile address, else a placeholder
// that is only ever used for simulated sends.
func (rt *runtime) sender() string {
	if rt.cfg.SMTP.Username != "" {
		return rt.cfg.SMTP.Username
	}
	if p, err := profile.Load(rt.cfg.ProfilePath); err == nil && p.Email != "" {
		return p.Email
	}
	return fallbackSender
}

// modeFlag reads --mode; empty means prompt.
func modeFlag(cmd *cobra.Command) (dispatch.Mode, error) {
	s, _ := cmd.Flags().GetString("mode")
	if s == "" {
		return "", nil
	}
	return dispatch.ParseMode(s)
}

// addModeFlag registers --mode on a command that dispatches.
func addModeFlag(cmd *cobra.Command) {
	cmd.Flags().String("mode", "", "dispatch mode: send, dry-run, or skip (default: prompt)")
}
