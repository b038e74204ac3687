package event

import "time"

// TextEvent is a game moment recognised in a free-text client log line
// rather than a GRE payload. Which fields are set depends on Kind.
type TextEvent struct {
	Kind      Type      `json:"kind"`
	Timestamp time.Time `json:"timestamp"`

	// Player is the player named by a life total or turn line.
	Player string `json:"player,omitempty"`

	// Total is the reported life total of a TextLifeTotalChanged event.
	Total *int `json:"total,omitempty"`

	Turn   int    `json:"turn,omitempty"`
	CardID string `json:"card_id,omitempty"`

	// Raw is the log message the event was read from.
	Raw string `json:"raw"`
}
