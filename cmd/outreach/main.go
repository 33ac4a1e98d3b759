// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the outreach CLI.
// See docs/ARCHITECTURE.md § Pipeline Interface.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/reviewer-outreach/internal/config"
	"github.com/pdiddy/reviewer-outreach/internal/secrets"
)

// version is set at build time via ldflags.
var version = "dev"

// store resolves credentials from the environment and .secrets/ at startup.
var store = secrets.NewStore(nil)

// rootCmd is the base command for the outreach CLI.
var rootCmd = &cobra.Command{
	Use:   "outreach",
	Short: "Offer to review for open conference venues",
	Long: `outreach finds venues open for submissions, researches their scope,
drafts a short reviewer offer matched to your profile, and optionally
e-mails it to the organizers.

Each phase is a subcommand (collect, enrich, draft, dispatch) that reads the
previous phase's CSV file and writes its own. "run" executes all four.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		dir, _ := cmd.Flags().GetString("secrets-dir")
		s, err := secrets.Load(dir)
		if err != nil {
			return err
		}
		store = secrets.NewStore(s)
		if keys := store.Keys(); len(keys) > 0 {
			sort.Strings(keys)
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("secrets-dir", ".secrets/", "directory of credential files")
	rootCmd.PersistentFlags().Bool("verbose", false, "human-readable debug logging")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath("config")
		viper.AddConfigPath(".")
	}

	config.BindEnv(viper.GetViper())
	config.SetDefaults(viper.GetViper())

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
