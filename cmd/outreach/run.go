// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/reviewer-outreach/internal/console"
	"github.com/pdiddy/reviewer-outreach/internal/ledger"
	"github.com/pdiddy/reviewer-outreach/internal/pipeline"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run collect, enrich, draft, and dispatch in sequence",
	Long: `Run executes the whole pipeline. Before dispatch it prints a preview of
every eligible message and asks for a mode unless --mode is given. A failed
run can be resumed from the failed phase with that phase's command.`,
	RunE: runPipeline,
}

func init() {
	runCmd.Flags().Int("limit", 0, "process only the first N venues (0 = all)")
	addModeFlag(runCmd)

	rootCmd.AddCommand(runCmd)
}

func runPipeline(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	mode, err := modeFlag(cmd)
	if err != nil {
		return err
	}

	rt, err := newRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.finish()

	// Fail on missing keys before any network work.
	enricher, err := rt.enricher()
	if err != nil {
		return err
	}
	drafter, err := rt.drafter(ctx)
	if err != nil {
		return err
	}

	l, err := ledger.Open(rt.cfg.Dispatch.LedgerPath)
	if err != nil {
		return err
	}
	defer l.Close()

	collector := rt.collector()
	defer collector.Close()

	runner := &pipeline.Runner{
		Collector:     collector,
		Enricher:      enricher,
		Drafter:       drafter,
		NewDispatcher: rt.dispatcherFactory(l),
		Output:        rt.cfg.Output,
		PreviewChars:  rt.cfg.Dispatch.PreviewChars,
		In:            os.Stdin,
		Metrics:       rt.metrics,
		Logger:        rt.logger,
	}

	report, err := runner.Run(ctx, mode, os.Stdout)
	console.Summary(os.Stdout, "Run summary", report.Rows())
	return err
}
