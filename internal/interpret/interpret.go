// Package interpret maps completed RPC calls to structured events.
package interpret

import (
	"bytes"

	"github.com/tidwall/gjson"

	"github.com/mtgalog/mtgalog-go/pkg/mtgalog/event"
)

// Interpreted event types.
const (
	TypeQuests      = "quests"
	TypeEvents      = "events"
	TypeGraphState  = "graph_state"
	TypeDraftPick   = "draft_pick"
	TypeDraftStatus = "draft_status"
)

type handler func(payload gjson.Result) (string, any, bool)

// handlers is keyed by exact method name.
var handlers = map[string]handler{
	"QuestGetQuests":     quests,
	"EventGetCoursesV2":  courses,
	"GraphGetGraphState": graphState,
	"DraftMakePick":      draftPick,
	"DraftStatus":        draftStatus,
}

// Interpret returns the structured event for a completed call.
// Unknown methods, empty responses and unexpected shapes yield false.
// The event is stamped with the call's completion time.
func Interpret(call event.RPCCall) (event.InterpretedEvent, bool) {
	h, ok := handlers[call.Name]
	if !ok || !hasPayload(call.ResponsePayload) {
		return event.InterpretedEvent{}, false
	}

	typ, data, ok := h(gjson.ParseBytes(call.ResponsePayload))
	if !ok {
		return event.InterpretedEvent{}, false
	}

	return event.InterpretedEvent{
		Type:      typ,
		Timestamp: call.Timestamp,
		Data:      data,
		Call:      &call,
	}, true
}

func hasPayload(raw []byte) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && !bytes.Equal(raw, []byte("null")) && gjson.ValidBytes(raw)
}

func quests(payload gjson.Result) (string, any, bool) {
	list := payload.Get("quests")
	if !list.IsArray() {
		return "", nil, false
	}

	out := event.QuestList{Quests: []event.Quest{}}
	for _, q := range list.Array() {
		out.Quests = append(out.Quests, event.Quest{
			ID:          firstString(q, "questId", "id"),
			Description: firstString(q, "locKey", "description"),
			Progress:    firstInt(q, "currentProgress"),
			Goal:        firstInt(q, "goalProgress", "goal"),
			RewardGold:  firstInt(q, "reward.quantity"),
			RewardType:  q.Get("reward.type").String(),
		})
	}
	return TypeQuests, out, true
}

func courses(payload gjson.Result) (string, any, bool) {
	return TypeEvents, event.CourseList{
		Courses: rawOrEmptyList(payload.Get("courses")),
		Events:  rawOrEmptyList(payload.Get("events")),
	}, true
}

func graphState(payload gjson.Result) (string, any, bool) {
	return TypeGraphState, event.GraphState{State: []byte(payload.Raw)}, true
}

func draftPick(payload gjson.Result) (string, any, bool) {
	return TypeDraftPick, event.DraftPick{Pick: []byte(payload.Raw)}, true
}

func draftStatus(payload gjson.Result) (string, any, bool) {
	return TypeDraftStatus, event.DraftStatusData{Status: []byte(payload.Raw)}, true
}

// firstString returns the first non-empty value among the given paths.
func firstString(r gjson.Result, paths ...string) string {
	for _, p := range paths {
		if s := r.Get(p).String(); s != "" {
			return s
		}
	}
	return ""
}

// firstInt returns the first non-zero value among the given paths.
// Numeric strings are accepted.
func firstInt(r gjson.Result, paths ...string) int {
	for _, p := range paths {
		if n := r.Get(p).Int(); n != 0 {
			return int(n)
		}
	}
	return 0
}

func rawOrEmptyList(r gjson.Result) []byte {
	if !r.Exists() || r.Type == gjson.Null {
		return []byte("[]")
	}
	return []byte(r.Raw)
}
