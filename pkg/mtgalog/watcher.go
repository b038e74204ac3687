package mtgalog

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/mtgalog/mtgalog-go/internal/logfinder"
	"github.com/mtgalog/mtgalog-go/internal/tailer"
)

// errBuffer is the capacity of the error channel returned by Watch.
const errBuffer = 16

// Watcher follows the newest MTGA log file and publishes decoded events.
// A single goroutine owns the Pipeline, so lines are processed in order.
type Watcher struct {
	cfg    *watchConfig
	logDir string
	logger *slog.Logger

	mu       sync.Mutex
	closed   bool
	cancel   context.CancelFunc // stops the run goroutine
	doneCh   chan struct{}      // closed when run has exited
	watching bool
}

// NewWatcher creates a watcher.
// Validates options and checks log directory existence.
// Does NOT start goroutines (cheap to call).
func NewWatcher(opts ...WatchOption) (*Watcher, error) {
	cfg := applyWatchOptions(opts)
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}
	if cfg.pollInterval == 0 {
		cfg.pollInterval = DefaultPollInterval
	}

	logDir, err := logfinder.FindLogDir(cfg.logDir)
	if err != nil {
		return nil, err
	}

	logger := cfg.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Watcher{cfg: cfg, logDir: logDir, logger: logger}, nil
}

// LogDir returns the resolved log directory.
func (w *Watcher) LogDir() string { return w.logDir }

// Watch starts watching and returns channels.
// Both channels close on ctx.Done(), Close, or a fatal error.
// Watch can only be called once per Watcher instance.
func (w *Watcher) Watch(ctx context.Context) (<-chan Event, <-chan error, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return nil, nil, ErrWatcherClosed
	}
	if w.watching {
		return nil, nil, ErrAlreadyWatching
	}
	w.watching = true

	ctx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.doneCh = make(chan struct{})

	eventCh := make(chan Event)
	errCh := make(chan error, errBuffer)
	go w.run(ctx, eventCh, errCh)

	return eventCh, errCh, nil
}

// Close stops the watcher and releases resources.
// Safe to call multiple times.
// Blocks until the goroutine has exited.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	if w.cancel != nil {
		w.cancel()
	}
	doneCh := w.doneCh
	w.mu.Unlock()

	if doneCh != nil {
		<-doneCh
	}
	return nil
}

func (w *Watcher) run(ctx context.Context, eventCh chan<- Event, errCh chan<- error) {
	defer close(w.doneCh)
	defer close(eventCh)
	defer close(errCh)

	logFile, err := logfinder.FindLatestLogFile(w.logDir)
	if err != nil {
		sendError(errCh, &WatchError{Op: WatchOpFindLatest, Path: w.logDir, Err: err})
		return
	}

	pipe := NewPipeline(w.cfg.pipelineOptions()...)

	cfg := tailer.DefaultConfig()
	cfg.FromStart = w.cfg.replay.Mode == ReplayFromStart

	// ReplayLastN reads the tail of the file first, then follows from the end.
	if w.cfg.replay.Mode == ReplayLastN && w.cfg.replay.LastN > 0 {
		if err := w.replayLastN(ctx, pipe, logFile, eventCh); err != nil {
			if ctx.Err() != nil {
				return
			}
			sendError(errCh, &WatchError{Op: WatchOpReplay, Path: logFile, Err: err})
		}
	}

	t, err := tailer.New(ctx, logFile, cfg)
	if err != nil {
		sendError(errCh, &WatchError{Op: WatchOpTail, Path: logFile, Err: err})
		return
	}
	defer func() { _ = t.Stop() }()

	current := logFile
	w.logger.Debug("watching log file", "path", current, "replay", w.cfg.replay.Mode)
	w.notify(NoticeOpened, current)

	ticker := time.NewTicker(w.cfg.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-t.Lines():
			if !ok {
				return
			}
			// The reset has to land before the first line of the new content.
			if line.Reopened {
				w.logger.Debug("log file truncated", "path", current, "offset", line.Offset)
				pipe.Reset()
				w.notify(NoticeTruncated, current)
			}
			if !w.processLine(ctx, pipe, line.Text, eventCh) {
				return
			}
		case err, ok := <-t.Errors():
			if !ok {
				return
			}
			sendError(errCh, &WatchError{Op: WatchOpTail, Path: current, Err: err})
		case <-ticker.C:
			newFile, err := logfinder.FindLatestLogFile(w.logDir)
			if err != nil {
				sendError(errCh, &WatchError{Op: WatchOpRotation, Path: w.logDir, Err: err})
				continue
			}
			if newFile != current {
				cfg := tailer.DefaultConfig()
				cfg.FromStart = true
				next, err := tailer.New(ctx, newFile, cfg)
				if err != nil {
					sendError(errCh, &WatchError{Op: WatchOpRotation, Path: newFile, Err: err})
					continue
				}
				_ = t.Stop()
				t = next
				w.logger.Debug("switched log file", "from", current, "to", newFile)
				current = newFile
				pipe.Reset()
				w.notify(NoticeRotated, current)
			}
		}
	}
}

// processLine publishes the events of one line. It returns false once ctx
// is done.
func (w *Watcher) processLine(ctx context.Context, pipe *Pipeline, text string, eventCh chan<- Event) bool {
	line, events := pipe.publish(text, w.cfg.filter, w.cfg.includeRawLine)
	if w.cfg.onLine != nil && !line.IsEmpty() {
		w.cfg.onLine(line)
	}
	for _, ev := range events {
		select {
		case eventCh <- ev:
		case <-ctx.Done():
			return false
		}
	}
	return true
}

func (w *Watcher) notify(kind WatchNoticeKind, path string) {
	if w.cfg.onNotice != nil {
		w.cfg.onNotice(WatchNotice{Kind: kind, Path: path})
	}
}

// replayLastN feeds the last N lines of logFile through pipe.
func (w *Watcher) replayLastN(ctx context.Context, pipe *Pipeline, logFile string, eventCh chan<- Event) error {
	lines, err := readLastNLines(logFile, w.cfg.replay.LastN)
	if err != nil {
		return err
	}
	for _, line := range lines {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !w.processLine(ctx, pipe, line, eventCh) {
			return ctx.Err()
		}
	}
	return nil
}

// readLastNLines reads the last n non-blank lines of a file, oldest first.
func readLastNLines(path string, n int) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return nil, err
	}

	const chunkSize = 64 * 1024
	var buffer []byte
	offset := stat.Size()
	newlines := 0

	// Read backwards until the buffer holds more than n line breaks, so at
	// least n complete lines follow the first one.
	for offset > 0 && newlines <= n {
		readSize := min(int64(chunkSize), offset)
		offset -= readSize

		chunk := make([]byte, readSize)
		if _, err := file.ReadAt(chunk, offset); err != nil {
			return nil, err
		}
		newlines += bytes.Count(chunk, []byte{'\n'})
		buffer = append(chunk, buffer...)
	}

	// Unless the whole file was read, the first segment may be partial.
	if offset > 0 {
		if i := bytes.IndexByte(buffer, '\n'); i >= 0 {
			buffer = buffer[i+1:]
		}
	}

	lines := extractLines(buffer)
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines, nil
}

// extractLines splits buffer into non-blank lines, trimming CR.
func extractLines(buffer []byte) []string {
	var lines []string
	start := 0
	for i := 0; i <= len(buffer); i++ {
		if i < len(buffer) && buffer[i] != '\n' {
			continue
		}
		line := buffer[start:i]
		if len(line) > 0 && line[len(line)-1] == '\r' {
			line = line[:len(line)-1]
		}
		if len(line) > 0 {
			lines = append(lines, string(line))
		}
		start = i + 1
	}
	return lines
}

// sendError sends an error non-blocking.
func sendError(errCh chan<- error, err error) {
	select {
	case errCh <- err:
	default:
	}
}

// Watch is a convenience function that creates a watcher and starts watching.
// Returns error immediately for initialization failures.
func Watch(ctx context.Context, opts ...WatchOption) (<-chan Event, <-chan error, error) {
	w, err := NewWatcher(opts...)
	if err != nil {
		return nil, nil, err
	}
	events, errs, err := w.Watch(ctx)
	if err != nil {
		return nil, nil, err
	}
	// Release the watcher once the caller's context ends.
	go func() {
		<-ctx.Done()
		_ = w.Close()
	}()
	return events, errs, nil
}
