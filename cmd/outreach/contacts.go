// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/reviewer-outreach/internal/config"
	"github.com/pdiddy/reviewer-outreach/internal/contacts"
)

var contactsCmd = &cobra.Command{
	Use:   "contacts",
	Short: "Repair contact addresses the collector could not find",
	Long: `Contacts exports venues without an address to the fixes file and merges
hand-filled addresses back into the listings file.`,
}

// --- missing subcommand ---

var contactsMissingCmd = &cobra.Command{
	Use:   "missing",
	Short: "Write venues without an address to the fixes file",
	RunE: func(cmd *cobra.Command, args []string) error {
		listings, fixes, err := contactPaths(cmd)
		if err != nil {
			return err
		}
		n, err := contacts.ExportMissing(listings, fixes)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "%d venue(s) without an address written to %s\n", n, fixes)
		return nil
	},
}

// --- merge subcommand ---

var contactsMergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Fill listing addresses from the fixes file",
	Long: `Merge matches each fix to a listing by URL, then by case-insensitive
name, and rewrites the listings file. Fixes with an empty address are ignored.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		listings, fixes, err := contactPaths(cmd)
		if err != nil {
			return err
		}
		n, err := contacts.MergeFile(listings, fixes)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "updated %d address(es) in %s\n", n, listings)
		return nil
	},
}

func contactPaths(cmd *cobra.Command) (listings, fixes string, err error) {
	cfg, err := config.Load(viper.ConfigFileUsed())
	if err != nil {
		return "", "", fmt.Errorf("invalid configuration: %w", err)
	}
	fixes = cfg.Output.FixesCSV
	if f, _ := cmd.Flags().GetString("fixes"); f != "" {
		fixes = f
	}
	return cfg.Output.ListingsCSV, fixes, nil
}

func init() {
	contactsCmd.PersistentFlags().String("fixes", "", "fixes CSV (default: output.fixes_csv)")

	contactsCmd.AddCommand(contactsMissingCmd)
	contactsCmd.AddCommand(contactsMergeCmd)
	rootCmd.AddCommand(contactsCmd)
}
