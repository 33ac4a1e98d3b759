// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/reviewer-outreach/internal/config"
	"github.com/pdiddy/reviewer-outreach/internal/console"
	"github.com/pdiddy/reviewer-outreach/internal/draft"
	"github.com/pdiddy/reviewer-outreach/internal/pipeline"
	"github.com/pdiddy/reviewer-outreach/pkg/types"
)

var draftCmd = &cobra.Command{
	Use:   "draft",
	Short: "Draft a reviewer offer for each researched venue",
	Long: `Draft reads the research file and your profile, asks the language model
for a short offer per venue, and writes the drafts file. Venues outside your
expertise get NO_MATCH and are never sent.`,
	RunE: runDraft,
}

func init() {
	draftCmd.Flags().String("provider", "", "override generation.provider (openai or gemini)")
	draftCmd.Flags().String("model", "", "override generation.model")

	rootCmd.AddCommand(draftCmd)
}

func runDraft(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.finish()

	if p, _ := cmd.Flags().GetString("provider"); p != "" {
		rt.cfg.Generation.Provider = types.Provider(p)
		rt.cfg = config.WithCredentials(rt.cfg, store)
	}
	if m, _ := cmd.Flags().GetString("model"); m != "" {
		rt.cfg.Generation.Model = m
	}
	if err := config.Validate(rt.cfg); err != nil {
		return err
	}

	drafter, err := rt.drafter(cmd.Context())
	if err != nil {
		return err
	}

	console.Banner(os.Stdout, "Draft")
	start := time.Now()
	result, err := drafter.DraftFile(cmd.Context(), rt.cfg.Output.ResearchCSV, rt.cfg.Output.DraftsCSV, os.Stdout)
	if err != nil {
		return err
	}
	rt.observe(pipeline.PhaseDraft, map[string]int{
		string(draft.OutcomeDrafted): result.Drafted,
		string(draft.OutcomeNoMatch): result.NoMatch,
		string(draft.OutcomeFailed):  result.Failed,
	}, start)

	console.Summary(os.Stdout, "Drafted", []console.Row{
		{Label: "drafted", Value: result.Drafted},
		{Label: "no match", Value: result.NoMatch},
		{Label: "failed", Value: result.Failed},
	})
	return nil
}
