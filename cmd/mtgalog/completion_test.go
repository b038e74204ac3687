package main

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func TestCompleteEventTypes(t *testing.T) {
	tests := []struct {
		name       string
		toComplete string
		flagVals   []string
		want       []string
	}{
		{
			name:       "prefix card_ lists card actions",
			toComplete: "card_",
			want:       []string{"card_attacked", "card_blocked", "card_drawn", "card_played"},
		},
		{
			name:       "prefix card_d narrows to card_drawn",
			toComplete: "card_d",
			want:       []string{"card_drawn"},
		},
		{
			name:       "comma prefix preserves already typed values",
			toComplete: "rpc_call,tu",
			want:       []string{"rpc_call,turn_started"},
		},
		{
			name:       "text prefix lists text events",
			toComplete: "text_",
			want:       []string{"text_card_drawn", "text_life_total_changed", "text_match_created", "text_turn_started"},
		},
		{
			name:       "excludes already typed values",
			toComplete: "rpc_call,r",
			want:       nil,
		},
		{
			name:       "excludes values from flag",
			toComplete: "ca",
			flagVals:   []string{"card_played"},
			want:       []string{"card_attacked", "card_blocked", "card_drawn"},
		},
		{
			name:       "case insensitive matching",
			toComplete: "OPEN",
			want:       []string{"opening_hand"},
		},
		{
			name:       "trims whitespace",
			toComplete: "  game  ",
			want:       []string{"game_ended"},
		},
		{
			name:       "no match returns empty",
			toComplete: "xyz",
			want:       nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := &cobra.Command{}
			cmd.Flags().StringSlice("include-types", nil, "")
			if tt.flagVals != nil {
				if err := cmd.Flags().Set("include-types", strings.Join(tt.flagVals, ",")); err != nil {
					t.Fatalf("failed to set flag: %v", err)
				}
			}

			got, dir := completeEventTypes("include-types")(cmd, nil, tt.toComplete)

			wantDir := cobra.ShellCompDirectiveNoSpace | cobra.ShellCompDirectiveNoFileComp
			if dir != wantDir {
				t.Errorf("directive = %v, want %v", dir, wantDir)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("candidates = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCompleteEventTypes_EmptyListsAll(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.Flags().StringSlice("exclude-types", nil, "")

	got, _ := completeEventTypes("exclude-types")(cmd, nil, "")
	if !reflect.DeepEqual(got, ValidEventTypeNames()) {
		t.Errorf("candidates = %v, want every type", got)
	}
}

func TestCompletionCmd_Shells(t *testing.T) {
	want := []string{"bash", "fish", "powershell", "zsh"}
	if !reflect.DeepEqual(completionCmd.ValidArgs, want) {
		t.Fatalf("ValidArgs = %v, want %v", completionCmd.ValidArgs, want)
	}

	for _, shell := range want {
		t.Run(shell, func(t *testing.T) {
			var buf bytes.Buffer
			completionCmd.SetOut(&buf)
			defer completionCmd.SetOut(nil)

			if err := completionCmd.RunE(completionCmd, []string{shell}); err != nil {
				t.Fatalf("RunE(%s) error = %v", shell, err)
			}
			if !strings.Contains(buf.String(), "mtgalog") {
				t.Errorf("%s script does not mention mtgalog", shell)
			}
		})
	}
}
