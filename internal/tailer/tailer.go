// Package tailer follows a growing MTGA log file and delivers its lines in
// file order.
package tailer

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/nxadm/tail"
)

// errBuffer keeps brief consumer stalls from dropping errors.
const errBuffer = 16

// Line is one line read from the file. Num counts lines delivered by this
// Tailer, starting at 1.
type Line struct {
	Text string
	Num  int

	// Offset is the file position just past this line.
	Offset int64

	// Reopened reports that the file was truncated or recreated before
	// this line. It is set on the first line read after the change.
	Reopened bool
}

// Tailer wraps nxadm/tail and republishes its lines on a channel that is
// closed when tailing stops.
type Tailer struct {
	path   string
	t      *tail.Tail
	ctx    context.Context
	cancel context.CancelFunc
	lines  chan Line
	errors chan error
	doneCh chan struct{}

	mu      sync.Mutex
	stopped bool
}

// Config holds configuration for tailing.
type Config struct {
	// Follow keeps reading as the file grows.
	Follow bool

	// ReOpen reopens the file when it is recreated.
	ReOpen bool

	// Poll watches the file by polling instead of filesystem notifications.
	Poll bool

	// MustExist fails New when the file is missing instead of waiting for it.
	MustExist bool

	// FromStart reads from offset 0 instead of the current end of file.
	FromStart bool
}

// DefaultConfig follows the file from its current end.
func DefaultConfig() Config {
	return Config{
		Follow:    true,
		ReOpen:    true,
		MustExist: true,
	}
}

// New starts tailing path. Cancelling ctx stops the tailer.
func New(ctx context.Context, path string, cfg Config) (*Tailer, error) {
	whence := 2
	if cfg.FromStart {
		whence = 0
	}

	t, err := tail.TailFile(path, tail.Config{
		Follow:    cfg.Follow,
		ReOpen:    cfg.ReOpen,
		Poll:      cfg.Poll,
		MustExist: cfg.MustExist,
		Location:  &tail.SeekInfo{Offset: 0, Whence: whence},
		Logger:    tail.DiscardingLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("tailing %s: %w", path, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	tl := &Tailer{
		path:   path,
		t:      t,
		ctx:    ctx,
		cancel: cancel,
		lines:  make(chan Line),
		errors: make(chan error, errBuffer),
		doneCh: make(chan struct{}),
	}
	go tl.run()
	return tl, nil
}

// Path returns the file being tailed.
func (t *Tailer) Path() string { return t.path }

// Lines returns the line channel. It closes when the tailer stops.
func (t *Tailer) Lines() <-chan Line {
	return t.lines
}

// Errors returns read errors. Errors are dropped when the buffer is full.
func (t *Tailer) Errors() <-chan error {
	return t.errors
}

// Stop stops tailing and waits for the reader goroutine to exit.
// It is safe to call more than once.
func (t *Tailer) Stop() error {
	t.mu.Lock()
	if t.stopped {
		t.mu.Unlock()
		return nil
	}
	t.stopped = true
	t.mu.Unlock()

	t.cancel()
	<-t.doneCh
	return t.t.Stop()
}

func (t *Tailer) run() {
	defer close(t.doneCh)
	defer close(t.lines)
	defer close(t.errors)

	n := 0
	var last int64
	for {
		select {
		case <-t.ctx.Done():
			return
		case line, ok := <-t.t.Lines:
			if !ok {
				return
			}
			if line.Err != nil {
				select {
				case t.errors <- fmt.Errorf("reading %s: %w", t.path, line.Err):
				case <-t.ctx.Done():
					return
				default:
				}
				continue
			}
			n++
			out := Line{
				Text:   strings.TrimSuffix(line.Text, "\r"),
				Num:    n,
				Offset: line.SeekInfo.Offset,
			}
			// Offsets only shrink when reading restarted on a new file.
			if out.Offset > 0 {
				out.Reopened = out.Offset < last
				last = out.Offset
			}
			select {
			case t.lines <- out:
			case <-t.ctx.Done():
				return
			}
		}
	}
}
