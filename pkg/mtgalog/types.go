package mtgalog

import "github.com/mtgalog/mtgalog-go/pkg/mtgalog/event"

// Re-export event types for convenience.
// Users can import just "github.com/mtgalog/mtgalog-go/pkg/mtgalog"
// and use mtgalog.Event, mtgalog.EventCardPlayed, etc.

// Event is one published item of a log line.
type Event = event.Event

// EventType names an event.
type EventType = event.Type

// RawLine is a framed log line.
type RawLine = event.RawLine

// RPCCall is a reconstructed request/response exchange.
type RPCCall = event.RPCCall

// InterpretedEvent is a structured projection of a known RPC method.
type InterpretedEvent = event.InterpretedEvent

// TextEvent is a game moment read from a free-text log line.
type TextEvent = event.TextEvent

// GameAction is a discrete in-game occurrence.
type GameAction = event.GameAction

// Game action variants.
type (
	MatchStartedAction    = event.MatchStartedAction
	DeckStateAction       = event.DeckStateAction
	OpeningHandAction     = event.OpeningHandAction
	TurnStartedAction     = event.TurnStartedAction
	ZoneTransferAction    = event.ZoneTransferAction
	PermanentTappedAction = event.PermanentTappedAction
	CardDrawnAction       = event.CardDrawnAction
	CardPlayedAction      = event.CardPlayedAction
	CardAttackedAction    = event.CardAttackedAction
	CardBlockedAction     = event.CardBlockedAction
	GameEndedAction       = event.GameEndedAction
)

// Event type constants.
const (
	EventRPCCall         = event.RPC
	EventInterpreted     = event.Interpreted
	EventMatchStarted    = event.MatchStarted
	EventDeckState       = event.DeckState
	EventOpeningHand     = event.OpeningHand
	EventTurnStarted     = event.TurnStarted
	EventZoneTransfer    = event.ZoneTransfer
	EventPermanentTapped = event.PermanentTapped
	EventCardDrawn       = event.CardDrawn
	EventCardPlayed      = event.CardPlayed
	EventCardAttacked    = event.CardAttacked
	EventCardBlocked     = event.CardBlocked
	EventGameEnded       = event.GameEnded

	EventTextMatchCreated     = event.TextMatchCreated
	EventTextLifeTotalChanged = event.TextLifeTotalChanged
	EventTextTurnStarted      = event.TextTurnStarted
	EventTextCardDrawn        = event.TextCardDrawn
)
