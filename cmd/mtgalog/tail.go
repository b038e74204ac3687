package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mtgalog/mtgalog-go/pkg/mtgalog"
)

// watchFlags are the watcher flags shared by tail and serve.
type watchFlags struct {
	logDir       string
	includeTypes []string
	excludeTypes []string
	includeRaw   bool
	replayLast   int
	pollInterval time.Duration
	maxPending   int
}

func (f *watchFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.logDir, "log-dir", "d", "",
		"MTGA log directory (auto-detected if not specified)")
	cmd.Flags().StringSliceVar(&f.includeTypes, "include-types", nil,
		"Event types to include (comma-separated, see 'mtgalog types')")
	cmd.Flags().StringSliceVar(&f.excludeTypes, "exclude-types", nil,
		"Event types to exclude (comma-separated)")
	cmd.Flags().BoolVar(&f.includeRaw, "raw", false,
		"Include raw log lines in output")
	cmd.Flags().IntVar(&f.replayLast, "replay-last", -1,
		"Replay last N lines before tailing (-1 = disabled, 0 = from start)")
	cmd.Flags().DurationVar(&f.pollInterval, "poll-interval", mtgalog.DefaultPollInterval,
		"How often to check for a new or truncated log file (env MTGALOG_POLL_INTERVAL)")
	cmd.Flags().IntVar(&f.maxPending, "max-pending-calls", 0,
		"Bound on RPC requests awaiting a response, 0 = unbounded (env MTGALOG_MAX_PENDING_CALLS)")

	registerEventTypeCompletion(cmd, "include-types")
	registerEventTypeCompletion(cmd, "exclude-types")
}

// options validates the flags and builds watcher options. Flags the user
// did not set fall back to appConfig.
func (f *watchFlags) options(cmd *cobra.Command, logger *slog.Logger) ([]mtgalog.WatchOption, error) {
	includes, excludes, err := typeFilters(f.includeTypes, f.excludeTypes)
	if err != nil {
		return nil, err
	}

	pollInterval := appConfig.PollInterval
	if cmd.Flags().Changed("poll-interval") || pollInterval == 0 {
		pollInterval = f.pollInterval
	}
	maxPending := appConfig.MaxPendingCalls
	if cmd.Flags().Changed("max-pending-calls") {
		maxPending = f.maxPending
	}

	opts := []mtgalog.WatchOption{
		mtgalog.WithLogDir(f.logDir),
		mtgalog.WithPollInterval(pollInterval),
		mtgalog.WithMaxPendingCalls(maxPending),
		mtgalog.WithIncludeRawLine(f.includeRaw),
		mtgalog.WithLogger(logger),
	}

	switch {
	case f.replayLast == 0:
		opts = append(opts, mtgalog.WithReplayFromStart())
	case f.replayLast > 0:
		opts = append(opts, mtgalog.WithReplayLastN(f.replayLast))
	}

	// Use library-level filtering (more efficient than CLI-side filtering)
	if len(includes) > 0 {
		opts = append(opts, mtgalog.WithIncludeTypes(includes...))
	}
	if len(excludes) > 0 {
		opts = append(opts, mtgalog.WithExcludeTypes(excludes...))
	}
	return opts, nil
}

var (
	// tail flags
	tailFlags watchFlags
	format    string
)

var tailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Monitor MTGA logs and output events",
	Long: `Monitor the MTG Arena log in real-time and output decoded events.

Events are output as JSON Lines by default (one JSON object per line),
which makes it easy to process with tools like jq. When the client starts
a new log file or truncates the current one, decoding starts over.

Examples:
  # Monitor with default settings (auto-detect log directory)
  mtgalog tail

  # Specify log directory
  mtgalog tail --log-dir "C:\Users\me\AppData\LocalLow\Wizards Of The Coast\MTGA"

  # Output only game actions you care about
  mtgalog tail --include-types card_played,card_drawn,game_ended

  # Drop raw RPC calls but keep their interpretations
  mtgalog tail --exclude-types rpc_call

  # Human-readable output
  mtgalog tail --format pretty

  # Replay from start of log file
  mtgalog tail --replay-last 0  # 0 means from start

  # Pipe to jq for filtering
  mtgalog tail | jq 'select(.type == "card_played")'`,
	RunE: runTail,
}

func init() {
	tailFlags.register(tailCmd)
	tailCmd.Flags().StringVarP(&format, "format", "f", "jsonl",
		"Output format: jsonl, pretty")
}

func runTail(cmd *cobra.Command, args []string) error {
	// Validate format
	if !ValidFormats[format] {
		return fmt.Errorf("invalid format %q: must be one of: jsonl, pretty", format)
	}

	watchOpts, err := tailFlags.options(cmd, newLogger())
	if err != nil {
		return err
	}

	// Setup context with signal handling
	ctx, stop := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	watcher, err := mtgalog.NewWatcher(watchOpts...)
	if err != nil {
		return err
	}
	defer watcher.Close()

	events, errs, err := watcher.Watch(ctx)
	if err != nil {
		return err
	}

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				// Report whatever stopped the watcher.
				if errs != nil {
					for err := range errs {
						fmt.Fprintf(os.Stderr, "warning: %v\n", err)
					}
				}
				return nil
			}
			if err := OutputEvent(format, ev, os.Stdout); err != nil {
				return fmt.Errorf("output error: %w", err)
			}

		case err, ok := <-errs:
			if !ok {
				errs = nil // events closes next
				continue
			}
			// Always output errors to stderr
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)

		case <-ctx.Done():
			return nil
		}
	}
}
