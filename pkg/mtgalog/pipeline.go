package mtgalog

import (
	"log/slog"
	"strings"
	"time"

	"github.com/mtgalog/mtgalog-go/internal/gre"
	"github.com/mtgalog/mtgalog-go/internal/interpret"
	"github.com/mtgalog/mtgalog-go/internal/parser"
	"github.com/mtgalog/mtgalog-go/internal/rpc"
	"github.com/mtgalog/mtgalog-go/internal/textevent"
	"github.com/mtgalog/mtgalog-go/pkg/mtgalog/event"
)

// PipelineOption configures a Pipeline.
type PipelineOption func(*pipelineConfig)

type pipelineConfig struct {
	logger     *slog.Logger
	maxPending int
	now        func() time.Time
}

// WithPipelineLogger sets the logger for dropped-input diagnostics.
// If nil (default), logging is disabled.
func WithPipelineLogger(logger *slog.Logger) PipelineOption {
	return func(c *pipelineConfig) {
		c.logger = logger
	}
}

// WithPipelineMaxPendingCalls bounds the number of RPC requests awaiting a
// response. 0 (default) is unbounded; past the bound the oldest is evicted.
func WithPipelineMaxPendingCalls(n int) PipelineOption {
	return func(c *pipelineConfig) {
		c.maxPending = n
	}
}

// WithPipelineClock overrides the clock used to stamp RPC calls, text events
// and game actions whose envelope carries no timestamp.
func WithPipelineClock(now func() time.Time) PipelineOption {
	return func(c *pipelineConfig) {
		c.now = now
	}
}

// Pipeline decodes log lines in arrival order.
// It is not safe for concurrent use.
type Pipeline struct {
	logger  *slog.Logger
	calls   *rpc.Reconstructor
	tracker *gre.Tracker
	now     func() time.Time
	next    int
}

// NewPipeline returns a Pipeline with fresh state.
func NewPipeline(opts ...PipelineOption) *Pipeline {
	cfg := &pipelineConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	logger := cfg.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	now := cfg.now
	if now == nil {
		now = time.Now
	}
	return &Pipeline{
		logger:  logger,
		calls:   rpc.New(rpc.Config{MaxPending: cfg.maxPending, Logger: logger, Now: now}),
		tracker: gre.New(gre.Config{Logger: logger, Now: now}),
		now:     now,
	}
}

// Result is everything one log line produced.
type Result struct {
	Line        RawLine
	Calls       []RPCCall
	Interpreted []InterpretedEvent
	Actions     []GameAction
	Texts       []TextEvent
}

// Blank reports whether the input was blank and therefore skipped.
func (r Result) Blank() bool { return r.Line.Raw == "" }

// Empty reports whether the line produced no output.
func (r Result) Empty() bool {
	return len(r.Calls) == 0 && len(r.Interpreted) == 0 && len(r.Actions) == 0 && len(r.Texts) == 0
}

// Events flattens the result in publish order: calls, then their
// interpretations, then game actions, then text events.
func (r Result) Events() []Event {
	if r.Empty() {
		return nil
	}
	events := make([]Event, 0, len(r.Calls)+len(r.Interpreted)+len(r.Actions)+len(r.Texts))
	for _, c := range r.Calls {
		events = append(events, event.FromCall(c, r.Line.Index))
	}
	for _, ie := range r.Interpreted {
		events = append(events, event.FromInterpreted(ie, r.Line.Index))
	}
	for _, a := range r.Actions {
		events = append(events, event.FromAction(a, r.Line.Index))
	}
	for _, te := range r.Texts {
		events = append(events, event.FromText(te, r.Line.Index))
	}
	return events
}

// Process feeds one raw line through every stage.
// Blank lines return a zero Result and do not consume an index.
func (p *Pipeline) Process(raw string) Result {
	if strings.TrimSpace(raw) == "" {
		return Result{}
	}

	line := parser.Frame(raw, p.next)
	p.next++

	res := Result{Line: line}
	res.Calls = p.calls.ProcessLine(line)
	for i := range res.Calls {
		res.Calls[i].Category = string(interpret.Categorize(res.Calls[i].Name))
		if ie, ok := interpret.Interpret(res.Calls[i]); ok {
			res.Interpreted = append(res.Interpreted, ie)
		}
	}
	res.Actions = p.tracker.ProcessLine(line)
	if te, ok := textevent.Parse(line, p.now()); ok {
		res.Texts = append(res.Texts, te)
	}
	return res
}

// Reset drops all session state, as after a log rotation or truncation.
func (p *Pipeline) Reset() {
	p.logger.Debug("resetting pipeline", "lines", p.next, "pending_calls", p.calls.Pending())
	p.calls.Reset()
	p.tracker.Reset()
	p.next = 0
}

// Lines returns the number of indexed lines since creation or the last Reset.
func (p *Pipeline) Lines() int { return p.next }

// publish runs raw through p and returns the events that pass filter.
func (p *Pipeline) publish(raw string, filter *compiledFilter, includeRaw bool) (RawLine, []Event) {
	res := p.Process(raw)
	if res.Blank() {
		return res.Line, nil
	}
	events := res.Events()
	out := events[:0]
	for _, ev := range events {
		if !filter.Allows(ev.Type) {
			continue
		}
		if includeRaw {
			ev.RawLine = res.Line.Raw
		}
		out = append(out, ev)
	}
	return res.Line, out
}
