package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/mtgalog/mtgalog-go/pkg/mtgalog"
)

// ValidFormats lists the accepted --format values.
var ValidFormats = map[string]bool{
	"jsonl":  true,
	"pretty": true,
}

// OutputEvent writes ev in the given format.
func OutputEvent(format string, ev mtgalog.Event, w io.Writer) error {
	switch format {
	case "jsonl":
		return OutputJSON(ev, w)
	case "pretty":
		return OutputPretty(ev, w)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// OutputJSON writes ev as one JSON line. Log arrows like "==>" are kept
// readable rather than HTML-escaped.
func OutputJSON(ev mtgalog.Event, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc.Encode(ev)
}

// OutputPretty writes ev as one human-readable line.
func OutputPretty(ev mtgalog.Event, w io.Writer) error {
	_, err := fmt.Fprintf(w, "[%s] %s\n", ev.Timestamp.Format("2006-01-02 15:04:05"), describe(ev))
	return err
}

func describe(ev mtgalog.Event) string {
	switch {
	case ev.Call != nil:
		s := fmt.Sprintf("rpc %s (%s)", ev.Call.Name, ev.Call.ID)
		if ev.Call.Category != "" {
			s += " [" + ev.Call.Category + "]"
		}
		return s
	case ev.Text != nil:
		return describeText(ev.Text)
	case ev.Interpreted != nil:
		if ev.Interpreted.Call != nil {
			return fmt.Sprintf("%s from %s", ev.Interpreted.Type, ev.Interpreted.Call.Name)
		}
		return ev.Interpreted.Type
	}

	switch a := ev.Action.(type) {
	case *mtgalog.MatchStartedAction:
		return fmt.Sprintf("> match %s started, local seat %d", a.MatchID, a.LocalSeatID)
	case *mtgalog.DeckStateAction:
		return fmt.Sprintf("deck: %d main, %d sideboard", len(a.MainDeck), len(a.Sideboard))
	case *mtgalog.OpeningHandAction:
		return fmt.Sprintf("opening hand: %d cards", len(a.Cards))
	case *mtgalog.TurnStartedAction:
		return strings.TrimSpace(fmt.Sprintf("turn %d, seat %d: %s %s", a.TurnNumber, a.ActiveSeatID, a.Phase, a.Step))
	case *mtgalog.ZoneTransferAction:
		s := fmt.Sprintf("%s %s -> %s", card(a.InstanceID, a.GrpID), a.FromZoneType, a.ToZoneType)
		if a.Category != "" {
			s += " (" + a.Category + ")"
		}
		return s
	case *mtgalog.PermanentTappedAction:
		if a.IsTapped {
			return card(a.InstanceID, a.GrpID) + " tapped"
		}
		return card(a.InstanceID, a.GrpID) + " untapped"
	case *mtgalog.CardDrawnAction:
		return fmt.Sprintf("seat %d drew %s", a.SeatID, card(a.InstanceID, a.GrpID))
	case *mtgalog.CardPlayedAction:
		return fmt.Sprintf("seat %d %s %s", a.SeatID, a.ActionType, card(a.InstanceID, a.GrpID))
	case *mtgalog.CardAttackedAction:
		return fmt.Sprintf("seat %d attacks with %s", a.SeatID, card(a.InstanceID, a.GrpID))
	case *mtgalog.CardBlockedAction:
		return fmt.Sprintf("%s blocks %s", card(a.BlockerInstanceID, a.BlockerGrpID), card(a.AttackerInstanceID, a.AttackerGrpID))
	case *mtgalog.GameEndedAction:
		s := "game over"
		if a.WinningSeatID != 0 {
			s += fmt.Sprintf(": seat %d wins", a.WinningSeatID)
		}
		if a.Reason != "" {
			s += " (" + a.Reason + ")"
		}
		return s
	}
	return string(ev.Type)
}

func describeText(te *mtgalog.TextEvent) string {
	switch te.Kind {
	case mtgalog.EventTextMatchCreated:
		return "> match created"
	case mtgalog.EventTextLifeTotalChanged:
		if te.Total != nil {
			return fmt.Sprintf("life: %s at %d", te.Player, *te.Total)
		}
	case mtgalog.EventTextTurnStarted:
		if te.Player != "" {
			return fmt.Sprintf("turn %d (%s)", te.Turn, te.Player)
		}
		return fmt.Sprintf("turn %d", te.Turn)
	case mtgalog.EventTextCardDrawn:
		return "drew card " + te.CardID
	}
	return string(te.Kind)
}

// card labels a game object as "#instance (grp)".
func card(instanceID, grpID int) string {
	if grpID == 0 {
		return fmt.Sprintf("#%d", instanceID)
	}
	return fmt.Sprintf("#%d (%d)", instanceID, grpID)
}
