package interpret

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/mtgalog/mtgalog-go/pkg/mtgalog/event"
)

func completed(name, payload string) event.RPCCall {
	return event.RPCCall{
		Name:            name,
		ID:              "id-1",
		Direction:       event.DirectionResponse,
		Timestamp:       time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		ResponsePayload: json.RawMessage(payload),
	}
}

func TestInterpret_Quests(t *testing.T) {
	call := completed("QuestGetQuests", `{"quests":[
		{"questId":"q1","locKey":"Quests/Cast20","currentProgress":5,"goalProgress":20,"reward":{"quantity":"500","type":"Gold"}},
		{"id":"q2","description":"Win 2","goal":2}
	]}`)

	ie, ok := Interpret(call)
	if !ok {
		t.Fatal("Interpret() ok = false, want true")
	}
	if ie.Type != TypeQuests {
		t.Errorf("Type = %q, want %q", ie.Type, TypeQuests)
	}
	if !ie.Timestamp.Equal(call.Timestamp) {
		t.Errorf("Timestamp = %v, want call timestamp %v", ie.Timestamp, call.Timestamp)
	}
	if ie.Call == nil || ie.Call.ID != "id-1" {
		t.Errorf("Call = %+v, want source call", ie.Call)
	}

	data, ok := ie.Data.(event.QuestList)
	if !ok {
		t.Fatalf("Data is %T, want event.QuestList", ie.Data)
	}
	if len(data.Quests) != 2 {
		t.Fatalf("got %d quests, want 2", len(data.Quests))
	}

	want := []event.Quest{
		{ID: "q1", Description: "Quests/Cast20", Progress: 5, Goal: 20, RewardGold: 500, RewardType: "Gold"},
		{ID: "q2", Description: "Win 2", Goal: 2},
	}
	for i, w := range want {
		if data.Quests[i] != w {
			t.Errorf("quest %d = %+v, want %+v", i, data.Quests[i], w)
		}
	}
}

func TestInterpret_QuestsMissingList(t *testing.T) {
	if _, ok := Interpret(completed("QuestGetQuests", `{"other":[]}`)); ok {
		t.Error("Interpret() without quests array should yield no event")
	}
	if _, ok := Interpret(completed("QuestGetQuests", `{"quests":"nope"}`)); ok {
		t.Error("Interpret() with non-array quests should yield no event")
	}
}

func TestInterpret_Passthrough(t *testing.T) {
	tests := []struct {
		method   string
		payload  string
		wantType string
	}{
		{"EventGetCoursesV2", `{"courses":[{"id":1}]}`, TypeEvents},
		{"GraphGetGraphState", `{"nodes":{}}`, TypeGraphState},
		{"DraftMakePick", `{"pick":123}`, TypeDraftPick},
		{"DraftStatus", `{"status":"open"}`, TypeDraftStatus},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			ie, ok := Interpret(completed(tt.method, tt.payload))
			if !ok {
				t.Fatal("Interpret() ok = false, want true")
			}
			if ie.Type != tt.wantType {
				t.Errorf("Type = %q, want %q", ie.Type, tt.wantType)
			}
			if _, err := json.Marshal(ie); err != nil {
				t.Errorf("interpreted event does not marshal: %v", err)
			}
		})
	}
}

func TestInterpret_CoursesDefaults(t *testing.T) {
	ie, ok := Interpret(completed("EventGetCoursesV2", `{"courses":[{"id":1}]}`))
	if !ok {
		t.Fatal("Interpret() ok = false")
	}
	data := ie.Data.(event.CourseList)
	if string(data.Courses) != `[{"id":1}]` {
		t.Errorf("Courses = %s", data.Courses)
	}
	if string(data.Events) != `[]` {
		t.Errorf("Events = %s, want []", data.Events)
	}
}

func TestInterpret_NoEvent(t *testing.T) {
	tests := []struct {
		name string
		call event.RPCCall
	}{
		{"unknown method", completed("SomethingElse", `{"a":1}`)},
		{"empty payload", completed("DraftStatus", ``)},
		{"null payload", completed("DraftStatus", `null`)},
		{"invalid payload", completed("DraftStatus", `{nope`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if ie, ok := Interpret(tt.call); ok {
				t.Errorf("Interpret() = %+v, want no event", ie)
			}
		})
	}
}

func TestCategorize(t *testing.T) {
	tests := []struct {
		name string
		want Category
	}{
		{"GameStateUpdate", CategoryGameplay},
		{"MatchmakingJoin", CategoryGameplay},
		{"DraftMakePick", CategoryDraft},
		{"EventGetCoursesV2", CategoryDraft},
		{"Event_Join", CategoryDraft},
		{"QuestGetQuests", CategoryEconomy},
		{"InventoryGetCards", CategoryEconomy},
		{"ScreenChanged", CategoryUI},
		{"GetModalState", CategoryUI},
		{"Authenticate", CategorySystem},
		// First match wins in category order: "match" beats "draft".
		{"DraftMatchStart", CategoryGameplay},
		// Case-insensitive.
		{"questlog", CategoryEconomy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Categorize(tt.name); got != tt.want {
				t.Errorf("Categorize(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}
