package event

import (
	"encoding/json"
	"time"
)

// RawLine is one framed log line. It is immutable once created.
type RawLine struct {
	// Raw is the trimmed original line.
	Raw string `json:"raw"`

	// Index is assigned in arrival order and is the only ordering guarantee.
	Index int `json:"index"`

	// Tick is the leading bracketed counter, 0 when absent.
	Tick int64 `json:"tick,omitempty"`

	// Source is the bracketed logger name (e.g. "UnityCrossThreadLogger").
	Source string `json:"source,omitempty"`

	// Level is a best-effort INFO/ERROR/WARNING/DEBUG tag found in the message.
	Level string `json:"level,omitempty"`

	Message string `json:"message"`
}

// IsEmpty reports whether the line carries no message.
func (l RawLine) IsEmpty() bool { return l.Message == "" }

// Direction is the state of an RPCCall.
type Direction string

const (
	DirectionRequest  Direction = "request"
	DirectionResponse Direction = "response"
)

// RPCCall is a request/response exchange between the client and its backend.
type RPCCall struct {
	Name      string    `json:"name"`
	ID        string    `json:"id"`
	Direction Direction `json:"direction"`
	Tick      int64     `json:"tick"`
	Timestamp time.Time `json:"timestamp"`

	// Category is a coarse grouping of Name such as "economy" or "draft".
	Category string `json:"category,omitempty"`

	RequestPayload  json.RawMessage `json:"request_payload,omitempty"`
	ResponsePayload json.RawMessage `json:"response_payload,omitempty"`

	RawRequestLine  string `json:"raw_request_line,omitempty"`
	RawResponseLine string `json:"raw_response_line,omitempty"`
}

// InterpretedEvent is a structured projection of a completed RPCCall.
type InterpretedEvent struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
	Call      *RPCCall  `json:"call,omitempty"`
}

// Quest is one entry of a QuestGetQuests response.
type Quest struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Progress    int    `json:"progress"`
	Goal        int    `json:"goal"`
	RewardGold  int    `json:"reward_gold,omitempty"`
	RewardType  string `json:"reward_type,omitempty"`
}

// QuestList is the data of a "quests" interpreted event.
type QuestList struct {
	Quests []Quest `json:"quests"`
}

// CourseList is the data of an "events" interpreted event.
type CourseList struct {
	Courses json.RawMessage `json:"courses"`
	Events  json.RawMessage `json:"events"`
}

// GraphState is the data of a "graph_state" interpreted event.
type GraphState struct {
	State json.RawMessage `json:"state"`
}

// DraftPick is the data of a "draft_pick" interpreted event.
type DraftPick struct {
	Pick json.RawMessage `json:"pick"`
}

// DraftStatusData is the data of a "draft_status" interpreted event.
type DraftStatusData struct {
	Status json.RawMessage `json:"status"`
}
