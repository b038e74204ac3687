package main

import (
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/spf13/cobra"
)

// shellGenerators writes the completion script for each supported shell.
var shellGenerators = map[string]func(root *cobra.Command, w io.Writer) error{
	"bash":       func(root *cobra.Command, w io.Writer) error { return root.GenBashCompletionV2(w, true) },
	"zsh":        func(root *cobra.Command, w io.Writer) error { return root.GenZshCompletion(w) },
	"fish":       func(root *cobra.Command, w io.Writer) error { return root.GenFishCompletion(w, true) },
	"powershell": func(root *cobra.Command, w io.Writer) error { return root.GenPowerShellCompletionWithDesc(w) },
}

var completionCmd = &cobra.Command{
	Use:   "completion <shell>",
	Short: "Print a shell completion script",
	Long: `Print a completion script for bash, zsh, fish or powershell.

Event type flags (--include-types, --exclude-types) complete from the
registered type names, including comma-separated lists.

  bash        source <(mtgalog completion bash)
  zsh         mtgalog completion zsh > "${fpath[1]}/_mtgalog"
  fish        mtgalog completion fish > ~/.config/fish/completions/mtgalog.fish
  powershell  mtgalog completion powershell | Out-String | Invoke-Expression
`,
	DisableFlagsInUseLine: true,
	ValidArgs:             slices.Sorted(maps.Keys(shellGenerators)),
	Args:                  cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return cmd.Usage()
		}
		return shellGenerators[args[0]](cmd.Root(), cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(completionCmd)
}

// completeEventTypes completes a comma-separated list of event types.
// Types already typed or set by an earlier use of the flag are skipped,
// and every candidate carries the full prefix so shells replace the
// whole word.
func completeEventTypes(flagName string) cobra.CompletionFunc {
	return func(cmd *cobra.Command, args []string, toComplete string) ([]cobra.Completion, cobra.ShellCompDirective) {
		done, current := splitLast(toComplete)

		used := make(map[string]bool)
		for _, v := range done {
			used[normalizeTypeName(v)] = true
		}
		if vals, err := cmd.Flags().GetStringSlice(flagName); err == nil {
			for _, v := range vals {
				used[normalizeTypeName(v)] = true
			}
		}

		prefix := ""
		if len(done) > 0 {
			prefix = strings.Join(done, ",") + ","
		}
		current = normalizeTypeName(current)

		var candidates []cobra.Completion
		for _, name := range ValidEventTypeNames() {
			if !used[name] && strings.HasPrefix(name, current) {
				candidates = append(candidates, prefix+name)
			}
		}
		return candidates, cobra.ShellCompDirectiveNoSpace | cobra.ShellCompDirectiveNoFileComp
	}
}

// splitLast splits "a,b,c" into [a b] and c.
func splitLast(s string) ([]string, string) {
	parts := strings.Split(s, ",")
	return parts[:len(parts)-1], parts[len(parts)-1]
}

func normalizeTypeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// registerEventTypeCompletion registers completion for an event type flag.
func registerEventTypeCompletion(cmd *cobra.Command, flagName string) {
	_ = cmd.RegisterFlagCompletionFunc(flagName, completeEventTypes(flagName))
}
