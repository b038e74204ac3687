package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/mtgalog/mtgalog-go/internal/config"
)

var (
	// Version information (set by ldflags)
	version = "dev"
	commit  = "none"
	date    = "unknown"

	// Global flags
	verbose bool
	envFile string

	// appConfig holds MTGALOG_* settings; command flags override it.
	appConfig config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "mtgalog",
	Short: "MTG Arena log parser and monitor",
	Long: `mtgalog is a tool for parsing and monitoring MTG Arena log files.

It reconstructs client/server RPC calls, interprets known responses
(quests, events, drafts) and tracks matches to report game actions such
as draws, plays and attacks. Events are output as JSON Lines for easy
processing with other tools, or broadcast over a websocket.

Defaults can be set with MTGALOG_* environment variables or a .env file.

This is an unofficial tool and is not affiliated with Wizards of the Coast.`,
	SilenceUsage: true, // Don't show usage on error
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(envFile)
		if err != nil {
			return err
		}
		appConfig = cfg
		return nil
	},
}

func init() {
	// Global flags (inherited by all subcommands)
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env",
		"Load MTGALOG_* defaults from this file if it exists")

	// Add subcommands
	rootCmd.AddCommand(tailCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(typesCmd)
	rootCmd.AddCommand(versionCmd)
}

// newLogger writes to stderr at the configured level, or debug with --verbose.
func newLogger() *slog.Logger {
	level := appConfig.LogLevel
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "mtgalog %s (commit: %s, built: %s)\n", version, commit, date)
	},
}
