package mtgalog_test

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mtgalog/mtgalog-go/pkg/mtgalog"
)

// ExampleWatch demonstrates following the live log.
func ExampleWatch() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, errs, err := mtgalog.Watch(ctx,
		mtgalog.WithIncludeTypes(mtgalog.EventCardPlayed, mtgalog.EventGameEnded),
	)
	if err != nil {
		log.Fatal(err)
	}

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			switch a := ev.Action.(type) {
			case *mtgalog.CardPlayedAction:
				fmt.Printf("seat %d: %s %d\n", a.SeatID, a.ActionType, a.GrpID)
			case *mtgalog.GameEndedAction:
				fmt.Printf("winner: seat %d\n", a.WinningSeatID)
			}
		case err, ok := <-errs:
			if !ok {
				return
			}
			log.Printf("error: %v", err)
		}
	}
}

// ExampleNewWatcher demonstrates explicit Watcher control with replay.
func ExampleNewWatcher() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	watcher, err := mtgalog.NewWatcher(
		mtgalog.WithPollInterval(5*time.Second),
		mtgalog.WithReplayLastN(500),
		mtgalog.WithNoticeHandler(func(n mtgalog.WatchNotice) {
			log.Printf("%s: %s", n.Kind, n.Path)
		}),
	)
	if err != nil {
		log.Fatal(err)
	}
	defer watcher.Close()

	events, errs, err := watcher.Watch(ctx)
	if err != nil {
		log.Fatal(err)
	}

	for {
		select {
		case ev, ok := <-events:
			if !ok {
				return
			}
			fmt.Printf("%d %s\n", ev.LineIndex, ev.Type)
		case err, ok := <-errs:
			if !ok {
				return
			}
			log.Printf("error: %v", err)
		}
	}
}

// ExamplePipeline demonstrates decoding lines one at a time.
func ExamplePipeline() {
	p := mtgalog.NewPipeline()

	lines := []string{
		`[UnityCrossThreadLogger]==> QuestGetQuests {"id":"q-1"}`,
		`[UnityCrossThreadLogger]<== QuestGetQuests(q-1)`,
		`{"quests":[{"questId":"q1","currentProgress":5,"goalProgress":20}]}`,
	}
	for _, raw := range lines {
		for _, ev := range p.Process(raw).Events() {
			fmt.Println(ev.LineIndex, ev.Type)
		}
	}
	// Output:
	// 2 rpc_call
	// 2 interpreted
}

// ExampleParseFileAll demonstrates batch parsing with a type filter.
func ExampleParseFileAll() {
	events, err := mtgalog.ParseFileAll(context.Background(), "testdata/Player.log",
		mtgalog.WithParseIncludeTypes(mtgalog.EventTurnStarted),
	)
	if err != nil {
		log.Fatal(err)
	}
	for _, ev := range events {
		turn := ev.Action.(*mtgalog.TurnStartedAction)
		fmt.Printf("turn %d: seat %d, %s\n", turn.TurnNumber, turn.ActiveSeatID, turn.Step)
	}
	// Output: turn 1: seat 1, Step_Upkeep
}

// Example_errorsIs demonstrates how to check for sentinel errors using errors.Is.
func Example_errorsIs() {
	err := fmt.Errorf("failed to initialize watcher: %w", mtgalog.ErrLogDirNotFound)

	if errors.Is(err, mtgalog.ErrLogDirNotFound) {
		fmt.Println("MTGA log directory not found")
	}
	// Output: MTGA log directory not found
}

// Example_errorsAs_WatchError demonstrates how to extract WatchError details.
func Example_errorsAs_WatchError() {
	err := fmt.Errorf("watcher failed: %w", &mtgalog.WatchError{
		Op:   mtgalog.WatchOpTail,
		Path: "/path/to/Player.log",
		Err:  fmt.Errorf("file not accessible"),
	})

	var watchErr *mtgalog.WatchError
	if errors.As(err, &watchErr) {
		fmt.Printf("Operation: %s\n", watchErr.Op)
		fmt.Printf("Path: %s\n", watchErr.Path)
		fmt.Printf("Error: %v\n", watchErr.Err)
	}
	// Output:
	// Operation: tail
	// Path: /path/to/Player.log
	// Error: file not accessible
}

// Example_errorsAs_ParseError demonstrates how to extract ParseError details.
func Example_errorsAs_ParseError() {
	var err error = &mtgalog.ParseError{Path: "Player.log", Line: 42, Err: errors.New("token too long")}

	var parseErr *mtgalog.ParseError
	if errors.As(err, &parseErr) {
		fmt.Println(parseErr.Line)
		fmt.Println(err)
	}
	// Output:
	// 42
	// mtgalog: Player.log:42: token too long
}
