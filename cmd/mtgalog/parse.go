package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mtgalog/mtgalog-go/pkg/mtgalog"
)

var (
	// parse flags
	parseLogDir       string
	parseIncludeTypes []string
	parseExcludeTypes []string
	parseFormat       string
	parseRaw          bool
	parseStopOnError  bool
	parseMaxPending   int
)

var parseCmd = &cobra.Command{
	Use:   "parse [files...]",
	Short: "Parse MTGA log files (batch mode)",
	Long: `Parse MTG Arena log files and output events.

Unlike 'tail', this command processes historical files without real-time
following. With no arguments it reads every log file in the log directory,
oldest first. Each file is decoded independently: a request in one file
is never matched with a response in the next.

Examples:
  # Parse all logs in auto-detected directory
  mtgalog parse

  # Specify log directory
  mtgalog parse --log-dir "C:\Users\me\AppData\LocalLow\Wizards Of The Coast\MTGA"

  # Only match results
  mtgalog parse --include-types match_started,game_ended

  # Human-readable output
  mtgalog parse --format pretty

  # Parse specific files
  mtgalog parse Player-prev.log Player.log

  # Pipe to jq for filtering
  mtgalog parse | jq 'select(.type == "interpreted")'`,
	RunE: runParse,
}

func init() {
	parseCmd.Flags().StringVarP(&parseLogDir, "log-dir", "d", "",
		"MTGA log directory (auto-detected if not specified)")
	parseCmd.Flags().StringSliceVar(&parseIncludeTypes, "include-types", nil,
		"Event types to include (comma-separated, see 'mtgalog types')")
	parseCmd.Flags().StringSliceVar(&parseExcludeTypes, "exclude-types", nil,
		"Event types to exclude (comma-separated)")
	parseCmd.Flags().StringVarP(&parseFormat, "format", "f", "jsonl",
		"Output format: jsonl, pretty")
	parseCmd.Flags().BoolVar(&parseRaw, "raw", false,
		"Include raw log lines in output")
	parseCmd.Flags().BoolVar(&parseStopOnError, "stop-on-error", false,
		"Stop at the first unreadable file instead of skipping it")
	parseCmd.Flags().IntVar(&parseMaxPending, "max-pending-calls", 0,
		"Bound on RPC requests awaiting a response, 0 = unbounded (env MTGALOG_MAX_PENDING_CALLS)")

	registerEventTypeCompletion(parseCmd, "include-types")
	registerEventTypeCompletion(parseCmd, "exclude-types")
}

func runParse(cmd *cobra.Command, args []string) error {
	// Validate format
	if !ValidFormats[parseFormat] {
		return fmt.Errorf("invalid format %q: must be one of: jsonl, pretty", parseFormat)
	}

	includes, excludes, err := typeFilters(parseIncludeTypes, parseExcludeTypes)
	if err != nil {
		return err
	}

	maxPending := appConfig.MaxPendingCalls
	if cmd.Flags().Changed("max-pending-calls") {
		maxPending = parseMaxPending
	}
	if maxPending < 0 {
		return fmt.Errorf("--max-pending-calls must be non-negative, got %d", maxPending)
	}

	// Setup context with signal handling
	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	opts := []mtgalog.ParseDirOption{
		mtgalog.WithDirLogDir(parseLogDir),
		mtgalog.WithDirIncludeRawLine(parseRaw),
		mtgalog.WithDirStopOnError(parseStopOnError),
		mtgalog.WithDirParseOptions(
			mtgalog.WithParseFilter(includes, excludes),
			mtgalog.WithParseLogger(newLogger()),
			mtgalog.WithParseMaxPendingCalls(maxPending),
		),
	}

	// Use positional args as explicit file paths
	if len(args) > 0 {
		opts = append(opts, mtgalog.WithDirPaths(args...))
	}

	out := cmd.OutOrStdout()
	for ev, err := range mtgalog.ParseDir(ctx, opts...) {
		if err != nil {
			// Ctrl+C: exit silently
			if errors.Is(err, context.Canceled) && ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("parse error: %w", err)
		}

		if err := OutputEvent(parseFormat, ev, out); err != nil {
			return fmt.Errorf("output error: %w", err)
		}
	}

	return nil
}
