// Package parser frames raw MTGA log lines into structured records.
package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/mtgalog/mtgalog-go/pkg/mtgalog/event"
)

// lineRe matches "[tick] [source] message" where tick and source are optional.
// A source starts with a letter so JSON arrays stay whole.
// Example: [1715] [UnityCrossThreadLogger]==> QuestGetQuests {"id":"..."}
var lineRe = regexp.MustCompile(`(?s)^(?:\[(\d+)\]\s*)?(?:\[([A-Za-z][^\]]*)\]\s*)?(.*)$`)

// levelRe finds a level tag anywhere in the message.
var levelRe = regexp.MustCompile(`(?i)\b(INFO|ERROR|WARNING|DEBUG)\b`)

// Frame turns one raw line into an event.RawLine.
// It never fails: blank input yields a record with an empty message, and a
// line without a frame prefix becomes the message as a whole.
func Frame(raw string, index int) event.RawLine {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return event.RawLine{Raw: trimmed, Index: index}
	}

	m := lineRe.FindStringSubmatch(trimmed)
	line := event.RawLine{
		Raw:     trimmed,
		Index:   index,
		Source:  strings.TrimSpace(m[2]),
		Message: strings.TrimSpace(m[3]),
	}
	if m[1] != "" {
		// Overflowing ticks are treated as absent.
		if tick, err := strconv.ParseInt(m[1], 10, 64); err == nil {
			line.Tick = tick
		}
	}
	if lm := levelRe.FindStringSubmatch(line.Message); lm != nil {
		line.Level = strings.ToUpper(lm[1])
	}
	return line
}
