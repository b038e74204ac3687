package mtgalog_test

import (
	"slices"
	"testing"
	"time"

	"github.com/mtgalog/mtgalog-go/pkg/mtgalog"
)

func TestPipeline_Process(t *testing.T) {
	p := mtgalog.NewPipeline()

	var got []mtgalog.Event
	for _, raw := range []string{noiseLine, "", questRequest, questHeader, questBody, connectLine, turnLine, formatsReq, formatsInline} {
		got = append(got, p.Process(raw).Events()...)
	}

	if len(got) != len(testdataWant) {
		t.Fatalf("got %d events %v, want %d", len(got), types(got), len(testdataWant))
	}
	for i, w := range testdataWant {
		if got[i].Type != w.typ || got[i].LineIndex != w.line {
			t.Errorf("event %d = %s@%d, want %s@%d", i, got[i].Type, got[i].LineIndex, w.typ, w.line)
		}
	}

	if c := got[0].Call; c == nil || c.Name != "QuestGetQuests" || c.ID != "q-1" {
		t.Errorf("first event call = %+v", got[0].Call)
	}
	if got[1].Interpreted == nil || got[1].Interpreted.Type != "quests" {
		t.Errorf("second event interpreted = %+v", got[1].Interpreted)
	}
	started, ok := got[2].Action.(*mtgalog.MatchStartedAction)
	if !ok || started.MatchID != "match-1" || started.LocalSeatID != 1 {
		t.Errorf("third event action = %#v", got[2].Action)
	}
	if want := time.UnixMilli(1714564800000); !got[2].Timestamp.Equal(want) {
		t.Errorf("match started timestamp = %v, want %v", got[2].Timestamp, want)
	}
	if p.Lines() != 8 {
		t.Errorf("Lines() = %d, want 8 (blank line not indexed)", p.Lines())
	}
}

func TestPipeline_BlankLineKeepsHeaderAdjacent(t *testing.T) {
	p := mtgalog.NewPipeline()
	p.Process(questRequest)
	p.Process(questHeader)

	if res := p.Process("   \t"); !res.Blank() || !res.Empty() {
		t.Fatalf("blank line result = %+v, want blank and empty", res)
	}

	res := p.Process(questBody)
	if len(res.Calls) != 1 {
		t.Fatalf("body after blank line completed %d calls, want 1", len(res.Calls))
	}
	if res.Line.Index != 2 {
		t.Errorf("body index = %d, want 2", res.Line.Index)
	}
}

func TestPipeline_Reset(t *testing.T) {
	p := mtgalog.NewPipeline()
	p.Process(connectLine)
	p.Process(questRequest)
	p.Process(questHeader)

	p.Reset()
	if p.Lines() != 0 {
		t.Errorf("Lines() = %d after Reset, want 0", p.Lines())
	}

	res := p.Process(questBody)
	if len(res.Calls) != 0 {
		t.Errorf("body after Reset completed %d calls, want 0", len(res.Calls))
	}
	if res.Line.Index != 0 {
		t.Errorf("first line after Reset has index %d, want 0", res.Line.Index)
	}

	// The tracker forgot the match, so a turn line starts from scratch and
	// still reports the turn.
	res = p.Process(turnLine)
	if len(res.Actions) != 1 || res.Actions[0].ActionKind() != mtgalog.EventTurnStarted {
		t.Errorf("turn after Reset actions = %v", res.Actions)
	}
}

func TestPipeline_Clock(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	p := mtgalog.NewPipeline(mtgalog.WithPipelineClock(func() time.Time { return now }))

	p.Process(formatsReq)
	res := p.Process(formatsInline)
	if len(res.Calls) != 1 || !res.Calls[0].Timestamp.Equal(now) {
		t.Fatalf("calls = %+v, want one stamped %v", res.Calls, now)
	}
	if ev := res.Events(); len(ev) != 1 || !ev[0].Timestamp.Equal(now) {
		t.Errorf("events = %+v", ev)
	}
}

func TestPipeline_MaxPendingCalls(t *testing.T) {
	p := mtgalog.NewPipeline(mtgalog.WithPipelineMaxPendingCalls(1))
	p.Process(questRequest)
	p.Process(formatsReq) // evicts q-1
	p.Process(questHeader)

	if res := p.Process(questBody); len(res.Calls) != 0 {
		t.Errorf("evicted request completed: %+v", res.Calls)
	}
	if res := p.Process(formatsInline); len(res.Calls) != 1 {
		t.Errorf("newest request did not complete")
	}
}

func TestResult_Events(t *testing.T) {
	res := mtgalog.Result{
		Line:        mtgalog.RawLine{Raw: "x", Index: 4, Message: "x"},
		Calls:       []mtgalog.RPCCall{{Name: "A"}, {Name: "B"}},
		Interpreted: []mtgalog.InterpretedEvent{{Type: "quests"}},
		Actions:     []mtgalog.GameAction{&mtgalog.GameEndedAction{}},
		Texts:       []mtgalog.TextEvent{{Kind: mtgalog.EventTextCardDrawn}},
	}

	got := types(res.Events())
	// A zero Meta carries no kind.
	want := []mtgalog.EventType{mtgalog.EventRPCCall, mtgalog.EventRPCCall, mtgalog.EventInterpreted, "", mtgalog.EventTextCardDrawn}
	if !slices.Equal(got, want) {
		t.Errorf("Events() types = %v, want %v", got, want)
	}
	for _, ev := range res.Events() {
		if ev.LineIndex != 4 {
			t.Errorf("LineIndex = %d, want 4", ev.LineIndex)
		}
	}

	if (mtgalog.Result{}).Events() != nil {
		t.Error("empty result should have no events")
	}
}

func TestPipeline_ArrayBodyCompletesCall(t *testing.T) {
	p := mtgalog.NewPipeline()
	p.Process(`[UnityCrossThreadLogger]==> DeckGetDeckSummariesV2 {"id":"abc"}`)
	p.Process(`<== DeckGetDeckSummariesV2(abc)`)

	res := p.Process(`[{"deckId":"d1"}]`)
	if len(res.Calls) != 1 {
		t.Fatalf("array body completed %d calls, want 1", len(res.Calls))
	}
	if got := string(res.Calls[0].ResponsePayload); got != `[{"deckId":"d1"}]` {
		t.Errorf("ResponsePayload = %s", got)
	}
}

func TestPipeline_CallCategory(t *testing.T) {
	p := mtgalog.NewPipeline()
	tests := []struct {
		lines []string
		want  string
	}{
		{[]string{questRequest, questHeader, questBody}, "economy"},
		{[]string{formatsReq, formatsInline}, "system"},
		{[]string{`==> DraftStatus {"id":"d-1"}`, `<== DraftStatus(d-1) {}`}, "draft"},
	}

	for _, tt := range tests {
		var res mtgalog.Result
		for _, l := range tt.lines {
			res = p.Process(l)
		}
		if len(res.Calls) != 1 {
			t.Fatalf("%v completed %d calls, want 1", tt.lines, len(res.Calls))
		}
		if res.Calls[0].Category != tt.want {
			t.Errorf("%s Category = %q, want %q", res.Calls[0].Name, res.Calls[0].Category, tt.want)
		}
	}

	p.Process(questRequest)
	p.Process(questHeader)
	res := p.Process(questBody)
	if len(res.Interpreted) != 1 || res.Interpreted[0].Call == nil || res.Interpreted[0].Call.Category != "economy" {
		t.Errorf("interpreted call = %+v, want economy category", res.Interpreted)
	}
}

func TestPipeline_TextEvents(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	p := mtgalog.NewPipeline(mtgalog.WithPipelineClock(func() time.Time { return now }))

	tests := []struct {
		line string
		want mtgalog.EventType
	}{
		{`[UnityCrossThreadLogger]Match created`, mtgalog.EventTextMatchCreated},
		{`[UnityCrossThreadLogger]Life total for Opponent: 14`, mtgalog.EventTextLifeTotalChanged},
		{`[UnityCrossThreadLogger]Turn 2 Opponent`, mtgalog.EventTextTurnStarted},
		{`[UnityCrossThreadLogger]DrawCard cardId=7000`, mtgalog.EventTextCardDrawn},
	}

	for i, tt := range tests {
		evs := p.Process(tt.line).Events()
		if len(evs) != 1 {
			t.Fatalf("%q produced %v, want one %s", tt.line, types(evs), tt.want)
		}
		ev := evs[0]
		if ev.Type != tt.want || ev.Text == nil || ev.LineIndex != i || !ev.Timestamp.Equal(now) {
			t.Errorf("%q = %s@%d %+v", tt.line, ev.Type, ev.LineIndex, ev.Text)
		}
	}

	if evs := p.Process(turnLine).Events(); len(evs) != 1 || evs[0].Type != mtgalog.EventTurnStarted {
		t.Errorf("GRE turn line produced %v, want only %s", types(evs), mtgalog.EventTurnStarted)
	}
}

func TestPipeline_DotNetTicksTimestamp(t *testing.T) {
	p := mtgalog.NewPipeline()
	res := p.Process(`{"transactionId":"m-2","timestamp":"637353411508320884","greToClientEvent":{"greToClientMessages":[{"type":"GREMessageType_ConnectResp","systemSeatIds":[1]}]}}`)

	evs := res.Events()
	if len(evs) != 1 || evs[0].Type != mtgalog.EventMatchStarted {
		t.Fatalf("events = %v, want one %s", types(evs), mtgalog.EventMatchStarted)
	}
	if want := time.UnixMilli(1599744350832); !evs[0].Timestamp.Equal(want) {
		t.Errorf("Timestamp = %v, want %v", evs[0].Timestamp, want)
	}
}
