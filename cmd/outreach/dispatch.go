// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/reviewer-outreach/internal/console"
	"github.com/pdiddy/reviewer-outreach/internal/ledger"
	"github.com/pdiddy/reviewer-outreach/internal/pipeline"
)

var dispatchCmd = &cobra.Command{
	Use:   "dispatch",
	Short: "Preview the drafts and send, simulate, or skip them",
	Long: `Dispatch reads the drafts file, prints a preview, and processes every
record under one mode: send transmits over SMTP with a fixed pause between
messages, dry-run builds each message without sending, skip sends nothing.
NO_MATCH records are never sent. Every outcome is written to the ledger.`,
	RunE: runDispatch,
}

func init() {
	addModeFlag(dispatchCmd)

	rootCmd.AddCommand(dispatchCmd)
}

func runDispatch(cmd *cobra.Command, args []string) error {
	mode, err := modeFlag(cmd)
	if err != nil {
		return err
	}

	rt, err := newRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.finish()

	l, err := ledger.Open(rt.cfg.Dispatch.LedgerPath)
	if err != nil {
		return err
	}
	defer l.Close()

	runner := &pipeline.Runner{
		NewDispatcher: rt.dispatcherFactory(l),
		Output:        rt.cfg.Output,
		PreviewChars:  rt.cfg.Dispatch.PreviewChars,
		In:            os.Stdin,
		Logger:        rt.logger,
	}

	start := time.Now()
	mode, summary, err := runner.DispatchFile(cmd.Context(), rt.cfg.Output.DraftsCSV, mode, os.Stdout)
	if err != nil {
		return err
	}
	rt.observe(pipeline.PhaseDispatch, pipeline.SummaryOutcomes(summary), start)

	console.Summary(os.Stdout, "Dispatch ("+string(mode)+")", []console.Row{
		{Label: "sent", Value: summary.Sent},
		{Label: "simulated", Value: summary.Simulated},
		{Label: "failed", Value: summary.Failed},
		{Label: "invalid", Value: summary.Invalid},
		{Label: "no match", Value: summary.NoMatch},
		{Label: "skipped", Value: summary.Skipped},
	})
	fmt.Fprintf(os.Stdout, "run id: %s\n", rt.runID)
	if summary.HasFailures() {
		return fmt.Errorf("%d message(s) failed", summary.Failed+summary.Invalid)
	}
	return nil
}
