package event

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestParseType(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		want   Type
		wantOK bool
	}{
		// Valid types - exact match
		{"card_drawn exact", "card_drawn", CardDrawn, true},
		{"rpc_call exact", "rpc_call", RPC, true},
		{"game_ended exact", "game_ended", GameEnded, true},

		// Case-insensitive
		{"uppercase CARD_PLAYED", "CARD_PLAYED", CardPlayed, true},
		{"mixed case Turn_Started", "Turn_Started", TurnStarted, true},

		// Whitespace handling
		{"leading space", " card_attacked", CardAttacked, true},
		{"trailing tab", "interpreted\t", Interpreted, true},

		// Invalid types
		{"unknown type", "unknown", "", false},
		{"empty string", "", "", false},
		{"internal space", "card drawn", "", false},
		{"typo", "crad_drawn", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseType(tt.input)
			if ok != tt.wantOK {
				t.Errorf("ParseType(%q) ok = %v, want %v", tt.input, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("ParseType(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestTypeNames(t *testing.T) {
	names := TypeNames()
	if len(names) != len(allTypes) {
		t.Fatalf("TypeNames() returned %d names, want %d", len(names), len(allTypes))
	}
	for i := 1; i < len(names); i++ {
		if names[i-1] > names[i] {
			t.Errorf("TypeNames() not sorted: %q > %q", names[i-1], names[i])
		}
	}
}

func TestType_IsGameAction(t *testing.T) {
	if RPC.IsGameAction() || Interpreted.IsGameAction() {
		t.Error("rpc_call and interpreted must not be game actions")
	}
	if !CardDrawn.IsGameAction() || !GameEnded.IsGameAction() {
		t.Error("card_drawn and game_ended must be game actions")
	}
	if Type("bogus").IsGameAction() {
		t.Error("unregistered type must not be a game action")
	}
	if TextTurnStarted.IsGameAction() || TextCardDrawn.IsGameAction() {
		t.Error("text events must not be game actions")
	}
}

func TestType_IsText(t *testing.T) {
	for _, typ := range []Type{TextMatchCreated, TextLifeTotalChanged, TextTurnStarted, TextCardDrawn} {
		if !typ.IsText() {
			t.Errorf("%s.IsText() = false", typ)
		}
		if _, ok := ParseType(string(typ)); !ok {
			t.Errorf("ParseType(%q) failed", typ)
		}
	}
	if TurnStarted.IsText() || RPC.IsText() {
		t.Error("turn_started and rpc_call must not be text events")
	}
}

func TestFromText(t *testing.T) {
	total := 0
	ts := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	ev := FromText(TextEvent{Kind: TextLifeTotalChanged, Timestamp: ts, Player: "Opponent", Total: &total, Raw: "Life total for Opponent: 0"}, 4)
	if ev.Type != TextLifeTotalChanged || ev.LineIndex != 4 || ev.Text == nil {
		t.Fatalf("FromText() = %+v", ev)
	}
	b, err := json.Marshal(ev)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(b), `"total":0`) {
		t.Errorf("Marshal() = %s, want zero total kept", b)
	}
}

func TestFromAction_MarshalsFlatKind(t *testing.T) {
	ts := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	a := CardDrawnAction{
		Meta:       NewMeta(CardDrawn, ts),
		SeatID:     1,
		InstanceID: 42,
		GrpID:      7000,
	}

	ev := FromAction(a, 12)
	if ev.Type != CardDrawn {
		t.Errorf("Type = %v, want %v", ev.Type, CardDrawn)
	}
	if !ev.Timestamp.Equal(ts) {
		t.Errorf("Timestamp = %v, want %v", ev.Timestamp, ts)
	}

	data, err := json.Marshal(ev)
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	s := string(data)
	for _, want := range []string{`"type":"card_drawn"`, `"kind":"card_drawn"`, `"instance_id":42`, `"line_index":12`} {
		if !strings.Contains(s, want) {
			t.Errorf("marshaled event %s missing %s", s, want)
		}
	}
	if strings.Contains(s, `"call"`) {
		t.Errorf("marshaled action event should omit call: %s", s)
	}
}
