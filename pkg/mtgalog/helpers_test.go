package mtgalog_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mtgalog/mtgalog-go/pkg/mtgalog"
)

// Lines shared by the package tests.
const (
	questRequest  = `[1001] [UnityCrossThreadLogger]==> QuestGetQuests {"id":"q-1","request":"{}"}`
	questHeader   = `[1002] [UnityCrossThreadLogger]<== QuestGetQuests(q-1)`
	questBody     = `{"quests":[{"questId":"q1","locKey":"Quests/Cast20","currentProgress":5,"goalProgress":20}]}`
	connectLine   = `{"transactionId":"match-1","timestamp":"1714564800000","greToClientEvent":{"greToClientMessages":[{"type":"GREMessageType_ConnectResp","systemSeatIds":[1]}]}}`
	turnLine      = `{"transactionId":"match-1","timestamp":"1714564801000","greToClientEvent":{"greToClientMessages":[{"type":"GREMessageType_GameStateMessage","gameStateMessage":{"turnInfo":{"turnNumber":1,"phase":"Phase_Beginning","step":"Step_Upkeep","activePlayer":1}}}]}}`
	formatsInline = `[1004] [UnityCrossThreadLogger]<== GetFormats(f-1) {"formats":[]}`
	formatsReq    = `[1003] [UnityCrossThreadLogger]==> GetFormats {"id":"f-1"}`
	noiseLine     = `[UnityCrossThreadLogger]Client.SceneChange home`
)

// testdataWant is the publish sequence of testdata/Player.log.
var testdataWant = []struct {
	typ  mtgalog.EventType
	line int
}{
	{mtgalog.EventRPCCall, 3},
	{mtgalog.EventInterpreted, 3},
	{mtgalog.EventMatchStarted, 4},
	{mtgalog.EventTurnStarted, 5},
	{mtgalog.EventRPCCall, 7},
}

// writeLog writes lines to dir/name with the given age and returns the path.
func writeLog(t *testing.T, dir, name string, age time.Duration, lines ...string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	var content []byte
	for _, l := range lines {
		content = append(content, l...)
		content = append(content, '\n')
	}
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatal(err)
	}
	modTime := time.Now().Add(-age)
	if err := os.Chtimes(path, modTime, modTime); err != nil {
		t.Fatal(err)
	}
	return path
}

func types(events []mtgalog.Event) []mtgalog.EventType {
	out := make([]mtgalog.EventType, len(events))
	for i, ev := range events {
		out[i] = ev.Type
	}
	return out
}
