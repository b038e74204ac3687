package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mtgalog/mtgalog-go/pkg/mtgalog"
	"github.com/mtgalog/mtgalog-go/pkg/mtgalog/event"
)

// ValidEventTypeNames returns a sorted list of valid event type names.
// Delegates to event.TypeNames() as the single source of truth.
func ValidEventTypeNames() []string {
	return event.TypeNames()
}

// NormalizeEventTypes converts CLI string values to mtgalog.EventType slice.
// It handles case-insensitivity, whitespace trimming, and duplicate removal.
func NormalizeEventTypes(values []string) ([]mtgalog.EventType, error) {
	if len(values) == 0 {
		return nil, nil
	}

	result := make([]mtgalog.EventType, 0, len(values))
	seen := make(map[mtgalog.EventType]struct{})

	for _, raw := range values {
		if strings.TrimSpace(raw) == "" {
			return nil, fmt.Errorf("empty event type provided (input: %q); valid types: %s", raw, strings.Join(ValidEventTypeNames(), ", "))
		}

		t, ok := event.ParseType(raw)
		if !ok {
			return nil, fmt.Errorf("unknown event type %q (valid: %s)", raw, strings.Join(ValidEventTypeNames(), ", "))
		}

		if _, dup := seen[t]; dup {
			continue // ignore duplicates silently
		}
		seen[t] = struct{}{}
		result = append(result, t)
	}

	return result, nil
}

// RejectOverlap returns an error if any event type is in both includes and excludes.
func RejectOverlap(includes, excludes []mtgalog.EventType) error {
	ex := make(map[mtgalog.EventType]struct{}, len(excludes))
	for _, t := range excludes {
		ex[t] = struct{}{}
	}
	for _, t := range includes {
		if _, ok := ex[t]; ok {
			return fmt.Errorf("event type %q cannot be both included and excluded", t)
		}
	}
	return nil
}

// typeFilters parses and cross-checks --include-types and --exclude-types.
func typeFilters(include, exclude []string) (includes, excludes []mtgalog.EventType, err error) {
	if includes, err = NormalizeEventTypes(include); err != nil {
		return nil, nil, err
	}
	if excludes, err = NormalizeEventTypes(exclude); err != nil {
		return nil, nil, err
	}
	if err := RejectOverlap(includes, excludes); err != nil {
		return nil, nil, err
	}
	return includes, excludes, nil
}

var typesActionsOnly bool

var typesCmd = &cobra.Command{
	Use:   "types",
	Short: "List event type names",
	Long: `List the event type names accepted by --include-types and
--exclude-types, one per line.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		for _, name := range ValidEventTypeNames() {
			if typesActionsOnly && !mtgalog.EventType(name).IsGameAction() {
				continue
			}
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
	},
}

func init() {
	typesCmd.Flags().BoolVar(&typesActionsOnly, "actions", false,
		"Only list game action types")
}
