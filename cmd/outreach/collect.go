// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/reviewer-outreach/internal/console"
	"github.com/pdiddy/reviewer-outreach/internal/pipeline"
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Scrape the listing page for open venues and contact addresses",
	Long: `Collect reads the configured section of the listing page, visits each
venue page for a contact address, and writes the listings file.`,
	RunE: runCollect,
}

func init() {
	collectCmd.Flags().Int("limit", 0, "keep only the first N venues (0 = all)")

	rootCmd.AddCommand(collectCmd)
}

func runCollect(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime(cmd)
	if err != nil {
		return err
	}
	defer rt.finish()

	collector := rt.collector()
	defer collector.Close()

	console.Banner(os.Stdout, "Collect")
	start := time.Now()
	result, err := collector.CollectToFile(cmd.Context(), rt.cfg.Output.ListingsCSV, os.Stdout)
	if err != nil {
		return err
	}
	rt.observe(pipeline.PhaseCollect, map[string]int{"found": result.Found, "with_email": result.WithEmail}, start)

	console.Summary(os.Stdout, "Collected", []console.Row{
		{Label: "venues", Value: result.Found},
		{Label: "with e-mail", Value: result.WithEmail},
	})
	return nil
}
