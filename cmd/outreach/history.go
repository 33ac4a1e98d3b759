// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/reviewer-outreach/internal/config"
	"github.com/pdiddy/reviewer-outreach/internal/ledger"
)

var historyCmd = &cobra.Command{
	Use:   "history <run-id>",
	Short: "Show the dispatch ledger for one run",
	Long: `History lists every dispatch outcome recorded under a run id, followed
by the outcome counts. The run id is printed at the end of each dispatch.`,
	Args: cobra.ExactArgs(1),
	RunE: runHistory,
}

func init() {
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(viper.ConfigFileUsed())
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	l, err := ledger.Open(cfg.Dispatch.LedgerPath)
	if err != nil {
		return err
	}
	defer l.Close()

	ctx := cmd.Context()
	runID := args[0]
	entries, err := l.Entries(ctx, runID)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintf(os.Stdout, "no ledger entries for run %s\n", runID)
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tMODE\tOUTCOME\tVENUE\tRECIPIENT\tDETAIL")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			e.At.Format("2006-01-02 15:04:05"), e.Mode, e.Outcome, e.Venue, e.Recipient, e.Detail)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	counts, err := l.Counts(ctx, runID)
	if err != nil {
		return err
	}
	outcomes := make([]string, 0, len(counts))
	for o := range counts {
		outcomes = append(outcomes, o)
	}
	sort.Strings(outcomes)
	fmt.Fprintln(os.Stdout)
	for _, o := range outcomes {
		fmt.Fprintf(os.Stdout, "%-18s %d\n", o+":", counts[o])
	}
	return nil
}
