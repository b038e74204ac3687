// Package textevent recognises game moments in free-text client log lines.
//
// It is stateless: each line is matched on its own and the first pattern
// that matches wins.
package textevent

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/mtgalog/mtgalog-go/pkg/mtgalog/event"
)

var (
	matchCreatedRe = regexp.MustCompile(`(?i)Match created`)
	lifeTotalRe    = regexp.MustCompile(`(?i)Life total for (?P<player>[A-Za-z0-9_ ]+)\s*:\s*(?P<total>\d+)`)
	turnRe         = regexp.MustCompile(`(?i)Turn\s+(?P<turn>\d+)\s*(?P<player>[A-Za-z0-9_ ]+)?`)
	drawRe         = regexp.MustCompile(`(?i)DrawCard.*cardId=(?P<card>[A-Za-z0-9_\-]+)`)
)

type matcher func(msg string, te *event.TextEvent) bool

var matchers = []matcher{
	func(msg string, te *event.TextEvent) bool {
		if !matchCreatedRe.MatchString(msg) {
			return false
		}
		te.Kind = event.TextMatchCreated
		return true
	},
	func(msg string, te *event.TextEvent) bool {
		m := lifeTotalRe.FindStringSubmatch(msg)
		if m == nil {
			return false
		}
		total, err := strconv.Atoi(m[lifeTotalRe.SubexpIndex("total")])
		if err != nil {
			return false
		}
		te.Kind = event.TextLifeTotalChanged
		te.Player = strings.TrimSpace(m[lifeTotalRe.SubexpIndex("player")])
		te.Total = &total
		return true
	},
	func(msg string, te *event.TextEvent) bool {
		m := turnRe.FindStringSubmatch(msg)
		if m == nil {
			return false
		}
		turn, err := strconv.Atoi(m[turnRe.SubexpIndex("turn")])
		if err != nil {
			return false
		}
		te.Kind = event.TextTurnStarted
		te.Turn = turn
		te.Player = strings.TrimSpace(m[turnRe.SubexpIndex("player")])
		return true
	},
	func(msg string, te *event.TextEvent) bool {
		m := drawRe.FindStringSubmatch(msg)
		if m == nil {
			return false
		}
		te.Kind = event.TextCardDrawn
		te.CardID = m[drawRe.SubexpIndex("card")]
		return true
	},
}

// Parse matches the message of line against the known text patterns.
// JSON bodies are skipped; their strings belong to the RPC and GRE decoders.
func Parse(line event.RawLine, now time.Time) (event.TextEvent, bool) {
	msg := line.Message
	if msg == "" || msg[0] == '{' || msg[0] == '[' {
		return event.TextEvent{}, false
	}
	te := event.TextEvent{Timestamp: now, Raw: msg}
	for _, match := range matchers {
		if match(msg, &te) {
			return te, true
		}
	}
	return event.TextEvent{}, false
}
