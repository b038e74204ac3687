// Package event defines the data model produced by the MTGA log pipeline.
//
// This package is separated from the main mtgalog package to avoid import cycles
// between pkg/mtgalog and the internal decoding packages.
package event

import (
	"sort"
	"strings"
	"time"
)

// Type names an event published by the pipeline.
// Game action kinds share this namespace so a single filter covers everything.
type Type string

const (
	// RPC is a completed request/response exchange.
	RPC Type = "rpc_call"

	// Interpreted is a structured projection of a known RPC method.
	Interpreted Type = "interpreted"

	MatchStarted    Type = "match_started"
	DeckState       Type = "deck_state"
	OpeningHand     Type = "opening_hand"
	TurnStarted     Type = "turn_started"
	ZoneTransfer    Type = "zone_transfer"
	PermanentTapped Type = "permanent_tapped"
	CardDrawn       Type = "card_drawn"
	CardPlayed      Type = "card_played"
	CardAttacked    Type = "card_attacked"
	CardBlocked     Type = "card_blocked"
	GameEnded       Type = "game_ended"
)

// Kinds of TextEvent.
const (
	TextMatchCreated     Type = "text_match_created"
	TextLifeTotalChanged Type = "text_life_total_changed"
	TextTurnStarted      Type = "text_turn_started"
	TextCardDrawn        Type = "text_card_drawn"
)

// allTypes is the canonical list of all event types.
// Add new event types here when extending the pipeline.
var allTypes = []Type{
	RPC, Interpreted,
	MatchStarted, DeckState, OpeningHand, TurnStarted, ZoneTransfer,
	PermanentTapped, CardDrawn, CardPlayed, CardAttacked, CardBlocked, GameEnded,
	TextMatchCreated, TextLifeTotalChanged, TextTurnStarted, TextCardDrawn,
}

// TypeNames returns a sorted list of all valid event type names.
// This is the single source of truth for event type enumeration.
func TypeNames() []string {
	names := make([]string, len(allTypes))
	for i, t := range allTypes {
		names[i] = string(t)
	}
	sort.Strings(names)
	return names
}

// typeByName maps lowercase string names to Type for efficient lookup.
var typeByName = func() map[string]Type {
	m := make(map[string]Type, len(allTypes))
	for _, t := range allTypes {
		m[string(t)] = t
	}
	return m
}()

// ParseType converts a string to Type if valid.
// It is case-insensitive and trims leading/trailing whitespace.
func ParseType(name string) (Type, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	t, ok := typeByName[name]
	return t, ok
}

// IsGameAction reports whether t names a GameAction kind.
func (t Type) IsGameAction() bool {
	switch t {
	case RPC, Interpreted:
		return false
	}
	if t.IsText() {
		return false
	}
	_, ok := typeByName[string(t)]
	return ok
}

// IsText reports whether t names a TextEvent kind.
func (t Type) IsText() bool {
	switch t {
	case TextMatchCreated, TextLifeTotalChanged, TextTurnStarted, TextCardDrawn:
		return true
	}
	return false
}

// Event is the unit published for each decoded item of a log line.
// Exactly one of Call, Interpreted, Action or Text is set, matching Type.
type Event struct {
	Type Type `json:"type"`

	// Timestamp is when the item was produced (envelope time for game actions).
	Timestamp time.Time `json:"timestamp"`

	// LineIndex is the index of the log line that completed the item.
	LineIndex int `json:"line_index"`

	Call        *RPCCall          `json:"call,omitempty"`
	Interpreted *InterpretedEvent `json:"interpreted,omitempty"`
	Action      GameAction        `json:"action,omitempty"`
	Text        *TextEvent        `json:"text,omitempty"`

	// RawLine is the original log line (only included if requested).
	RawLine string `json:"raw_line,omitempty"`
}

// FromCall wraps a completed call.
func FromCall(c RPCCall, lineIndex int) Event {
	return Event{Type: RPC, Timestamp: c.Timestamp, LineIndex: lineIndex, Call: &c}
}

// FromInterpreted wraps an interpreted event.
func FromInterpreted(ie InterpretedEvent, lineIndex int) Event {
	return Event{Type: Interpreted, Timestamp: ie.Timestamp, LineIndex: lineIndex, Interpreted: &ie}
}

// FromAction wraps a game action.
func FromAction(a GameAction, lineIndex int) Event {
	return Event{Type: a.ActionKind(), Timestamp: a.ActionTime(), LineIndex: lineIndex, Action: a}
}

// FromText wraps a text event.
func FromText(te TextEvent, lineIndex int) Event {
	return Event{Type: te.Kind, Timestamp: te.Timestamp, LineIndex: lineIndex, Text: &te}
}
