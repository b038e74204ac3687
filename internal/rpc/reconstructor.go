// Package rpc reconstructs client/backend RPC exchanges from framed log lines.
//
// A request line looks like
//
//	==> QuestGetQuests {"id":"3f1c...","request":"{\"foo\":1}"}
//
// and its response arrives later as a header, either carrying the JSON body
// on the same line or followed by the body on the very next line:
//
//	<== QuestGetQuests(3f1c...)
//	{"quests":[...]}
package rpc

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/mtgalog/mtgalog-go/pkg/mtgalog/event"
)

var (
	requestRe  = regexp.MustCompile(`(?s)^==>\s*(\w+)\s+(\{.*\})$`)
	responseRe = regexp.MustCompile(`^<==\s*(\w+)\(([^)]+)\)`)
	inlineRe   = regexp.MustCompile(`(?s)(\{.*\})`)
)

// Config configures a Reconstructor.
type Config struct {
	// MaxPending bounds the number of requests awaiting a response.
	// 0 means unbounded. When the bound is hit the oldest request is evicted.
	MaxPending int

	// Logger receives debug records for dropped input. Nil disables logging.
	Logger *slog.Logger

	// Now overrides the clock used to stamp calls.
	Now func() time.Time
}

// pendingCall is a request awaiting its response.
type pendingCall struct {
	call      *event.RPCCall
	lineIndex int
}

// responseHeader is a "<== Method(id)" line whose body has not been seen yet.
type responseHeader struct {
	id        string
	method    string
	lineIndex int
	raw       string
}

// Reconstructor correlates request lines with their responses.
// It is not safe for concurrent use; feed it from a single goroutine.
type Reconstructor struct {
	cfg     Config
	logger  *slog.Logger
	now     func() time.Time
	pending map[string]pendingCall
	header  *responseHeader
}

// New returns a Reconstructor with no pending state.
func New(cfg Config) *Reconstructor {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Reconstructor{
		cfg:     cfg,
		logger:  logger,
		now:     now,
		pending: make(map[string]pendingCall),
	}
}

// ProcessLine advances the state machine by one line and returns the calls
// completed by it. Returned calls are snapshots and are never touched again.
func (r *Reconstructor) ProcessLine(line event.RawLine) []event.RPCCall {
	var completed []event.RPCCall

	if call := r.detectRequest(line); call != nil {
		r.track(call, line.Index)
	}

	if method, id, ok := detectResponseHeader(line.Message); ok {
		r.header = &responseHeader{id: id, method: method, lineIndex: line.Index, raw: line.Raw}
		if m := inlineRe.FindStringSubmatch(line.Message); m != nil && json.Valid([]byte(m[1])) {
			if call, ok := r.complete(id, []byte(m[1]), line, line.Raw); ok {
				completed = append(completed, call)
				r.header = nil
			}
		}
		return completed
	}

	if h := r.header; h != nil && h.lineIndex == line.Index-1 {
		r.header = nil
		body := []byte(strings.TrimSpace(line.Message))
		if !json.Valid(body) {
			r.logger.Debug("discarding response header without JSON body",
				"method", h.method, "id", h.id, "line", line.Index)
			return completed
		}
		if call, ok := r.complete(h.id, body, line, h.raw+"\n"+line.Raw); ok {
			completed = append(completed, call)
		}
	}

	return completed
}

// Pending returns the number of requests awaiting a response.
func (r *Reconstructor) Pending() int {
	return len(r.pending)
}

// Reset drops every pending request and awaited response body.
func (r *Reconstructor) Reset() {
	clear(r.pending)
	r.header = nil
}

// track stores a request. A reused id replaces the earlier request.
func (r *Reconstructor) track(call *event.RPCCall, lineIndex int) {
	if _, exists := r.pending[call.ID]; !exists && r.cfg.MaxPending > 0 && len(r.pending) >= r.cfg.MaxPending {
		r.evictOldest()
	}
	r.pending[call.ID] = pendingCall{call: call, lineIndex: lineIndex}
}

func (r *Reconstructor) evictOldest() {
	oldestID := ""
	oldestLine := 0
	for id, p := range r.pending {
		if oldestID == "" || p.lineIndex < oldestLine {
			oldestID, oldestLine = id, p.lineIndex
		}
	}
	if oldestID != "" {
		r.logger.Debug("evicting pending rpc call", "id", oldestID,
			"method", r.pending[oldestID].call.Name, "line", oldestLine)
		delete(r.pending, oldestID)
	}
}

// complete attaches a response payload to the pending request with the given id.
func (r *Reconstructor) complete(id string, payload []byte, line event.RawLine, rawResponse string) (event.RPCCall, bool) {
	p, ok := r.pending[id]
	if !ok {
		return event.RPCCall{}, false
	}
	delete(r.pending, id)

	call := p.call
	call.ResponsePayload = json.RawMessage(bytes.Clone(payload))
	call.RawResponseLine = rawResponse
	call.Direction = event.DirectionResponse
	if line.Tick != 0 {
		call.Tick = line.Tick
	}
	call.Timestamp = r.now()
	return *call, true
}

// detectRequest parses "==> Method {json}". The JSON must carry a string id.
func (r *Reconstructor) detectRequest(line event.RawLine) *event.RPCCall {
	m := requestRe.FindStringSubmatch(line.Message)
	if m == nil {
		return nil
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal([]byte(m[2]), &envelope); err != nil {
		return nil
	}
	var id string
	if err := json.Unmarshal(envelope["id"], &id); err != nil || id == "" {
		return nil
	}

	return &event.RPCCall{
		Name:           m[1],
		ID:             id,
		Direction:      event.DirectionRequest,
		Tick:           line.Tick,
		Timestamp:      r.now(),
		RequestPayload: decodeRequest(envelope["request"]),
		RawRequestLine: line.Raw,
	}
}

// decodeRequest unwraps the request field, which is either inline JSON or a
// JSON document encoded as a string. A string that is not itself JSON is
// kept as the string value.
func decodeRequest(raw json.RawMessage) json.RawMessage {
	switch string(bytes.TrimSpace(raw)) {
	case "", "null", "false", "0", `""`:
		return nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if json.Valid([]byte(s)) {
			return json.RawMessage(s)
		}
		return raw
	}
	return raw
}

func detectResponseHeader(message string) (method, id string, ok bool) {
	m := responseRe.FindStringSubmatch(message)
	if m == nil {
		return "", "", false
	}
	return m[1], m[2], true
}
