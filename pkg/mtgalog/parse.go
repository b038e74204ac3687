package mtgalog

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"iter"
	"os"

	"github.com/mtgalog/mtgalog-go/internal/logfinder"
)

// maxLineSize bounds a single log line. GRE game state messages routinely
// exceed a megabyte.
const maxLineSize = 16 * 1024 * 1024

// ParseFile parses an MTGA log file and returns an iterator over events.
// The file is opened lazily on first iteration, so the returned iterator
// is cheap to create but must be consumed to release resources.
// Every iteration starts from a fresh Pipeline.
//
// The iterator yields (Event, error) pairs. When an error occurs:
//   - File open errors: yields (Event{}, error) once and stops
//   - Read errors: yields (Event{}, *ParseError) and stops
//   - Context cancellation: yields (Event{}, ctx.Err()) and stops
//
// Example:
//
//	for ev, err := range mtgalog.ParseFile(ctx, "Player.log") {
//	    if err != nil {
//	        log.Printf("error: %v", err)
//	        break
//	    }
//	    fmt.Printf("event: %s\n", ev.Type)
//	}
func ParseFile(ctx context.Context, path string, opts ...ParseOption) iter.Seq2[Event, error] {
	if path == "" {
		return func(yield func(Event, error) bool) {
			yield(Event{}, errors.New("mtgalog: path required"))
		}
	}

	cfg := applyParseOptions(opts)

	return func(yield func(Event, error) bool) {
		parseFile(ctx, path, cfg, NewPipeline(cfg.pipelineOptions()...), yield)
	}
}

// parseFile feeds path through p. It returns false if iteration must stop.
func parseFile(ctx context.Context, path string, cfg *parseConfig, p *Pipeline, yield func(Event, error) bool) bool {
	file, err := os.Open(path)
	if err != nil {
		yield(Event{}, err)
		return false
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	lineNum := 0
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			yield(Event{}, err)
			return false
		}
		lineNum++

		_, events := p.publish(scanner.Text(), cfg.filter, cfg.includeRawLine)
		for _, ev := range events {
			if !yield(ev, nil) {
				return false
			}
		}
	}

	if err := scanner.Err(); err != nil {
		yield(Event{}, &ParseError{Path: path, Line: lineNum + 1, Err: err})
		return false
	}
	return true
}

// ParseFileAll is a convenience function that parses a log file and collects
// all events into a slice. Stops on first error and returns events collected so far.
//
// For large files, consider using ParseFile directly to avoid loading all events
// into memory at once.
func ParseFileAll(ctx context.Context, path string, opts ...ParseOption) ([]Event, error) {
	events := make([]Event, 0, 256)
	for ev, err := range ParseFile(ctx, path, opts...) {
		if err != nil {
			return events, err
		}
		events = append(events, ev)
	}
	return events, nil
}

// ParseDir parses every MTGA log file in a directory, yielding events
// in chronological order (by file modification time, oldest first).
// Pipeline state is reset between files, since each file is a separate
// client session.
//
// The iterator yields (Event, error) pairs. When an error occurs:
//   - Directory access errors: yields (Event{}, error) once and stops
//   - File errors: skips to next file by default, or yields and stops if
//     WithDirStopOnError is set
//
// Example:
//
//	for ev, err := range mtgalog.ParseDir(ctx,
//	    mtgalog.WithDirIncludeTypes(mtgalog.EventGameEnded),
//	) {
//	    if err != nil {
//	        log.Printf("error: %v", err)
//	        break
//	    }
//	    fmt.Printf("game ended at %s\n", ev.Timestamp)
//	}
func ParseDir(ctx context.Context, opts ...ParseDirOption) iter.Seq2[Event, error] {
	cfg := applyParseDirOptions(opts)

	return func(yield func(Event, error) bool) {
		files := cfg.paths
		if len(files) == 0 {
			logDir, err := logfinder.FindLogDir(cfg.logDir)
			if err != nil {
				yield(Event{}, err)
				return
			}
			files, err = logfinder.ListLogFiles(logDir)
			if err != nil {
				yield(Event{}, err)
				return
			}
		}

		p := NewPipeline(cfg.pipelineOptions()...)
		for i, file := range files {
			if err := ctx.Err(); err != nil {
				yield(Event{}, err)
				return
			}
			if i > 0 {
				p.Reset()
			}

			var fileErr error
			stopped := false
			parseFile(ctx, file, &cfg.parseConfig, p, func(ev Event, err error) bool {
				if err != nil {
					fileErr = err
					return false
				}
				if !yield(ev, nil) {
					stopped = true
					return false
				}
				return true
			})
			if stopped {
				return
			}
			if fileErr != nil {
				if errors.Is(fileErr, context.Canceled) || errors.Is(fileErr, context.DeadlineExceeded) || cfg.stopOnError {
					yield(Event{}, fmt.Errorf("parsing %s: %w", file, fileErr))
					return
				}
				cfg.log().Debug("skipping unreadable log file", "path", file, "error", fileErr)
			}
		}
	}
}
