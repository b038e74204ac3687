// Package mtgalog turns the MTG Arena client log into structured events.
//
// Every non-blank log line passes through a Pipeline that frames it,
// reconstructs request/response RPC calls, interprets known RPC methods, and
// tracks in-game state to emit game actions (draws, plays, attacks and so on).
// Free-text client lines such as "Life total for Opponent: 14" become
// TextEvent values with their own text_* types.
//
// # Basic Usage
//
// To follow the live log:
//
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//
//	events, errs, err := mtgalog.Watch(ctx,
//	    mtgalog.WithIncludeTypes(mtgalog.EventCardPlayed, mtgalog.EventGameEnded),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for {
//	    select {
//	    case ev, ok := <-events:
//	        if !ok {
//	            return
//	        }
//	        switch a := ev.Action.(type) {
//	        case *mtgalog.CardPlayedAction:
//	            fmt.Printf("seat %d played %d\n", a.SeatID, a.GrpID)
//	        case *mtgalog.GameEndedAction:
//	            fmt.Printf("seat %d won\n", a.WinningSeatID)
//	        }
//	    case err, ok := <-errs:
//	        if !ok {
//	            return
//	        }
//	        log.Printf("error: %v", err)
//	    }
//	}
//
// To parse an existing log:
//
//	for ev, err := range mtgalog.ParseFile(ctx, "Player.log") {
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    fmt.Println(ev.Type)
//	}
//
// A Pipeline can also be driven directly, one line at a time.
//
// # Platform Support
//
// MTG Arena writes its log on Windows. Log directories are auto-detected from
// the standard install and Steam locations, or set with MTGALOG_LOGDIR.
//
// # Disclaimer
//
// This is an unofficial tool and is not affiliated with Wizards of the Coast.
package mtgalog
