// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/reviewer-outreach/internal/console"
	"github.com/pdiddy/reviewer-outreach/internal/pipeline"
)

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Research each venue's topics",
	Long: `Enrich reads the listings file, asks the research service about each
venue, and writes the research file. A venue whose lookup fails is kept
with empty topics.`,
	RunE: runEnrich,
}

func init() {
	rootCmd.AddCommand(enrichCmd)
}

func runEnrich(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.finish()

	enricher, err := rt.enricher()
	if err != nil {
		return err
	}

	console.Banner(os.Stdout, "Enrich")
	start := time.Now()
	result, err := enricher.EnrichFile(cmd.Context(), rt.cfg.Output.ListingsCSV, rt.cfg.Output.ResearchCSV, os.Stdout)
	if err != nil {
		return err
	}
	rt.observe(pipeline.PhaseEnrich, map[string]int{"enriched": result.Enriched, "degraded": result.Degraded}, start)

	console.Summary(os.Stdout, "Enriched", []console.Row{
		{Label: "enriched", Value: result.Enriched},
		{Label: "degraded", Value: result.Degraded},
	})
	return nil
}
