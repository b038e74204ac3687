package mtgalog

import (
	"errors"
	"fmt"

	"github.com/mtgalog/mtgalog-go/internal/logfinder"
)

// Sentinel errors returned by this package.
var (
	// ErrLogDirNotFound is returned when the MTGA log directory
	// cannot be found or accessed.
	ErrLogDirNotFound = logfinder.ErrLogDirNotFound

	// ErrNoLogFiles is returned when no log files are found
	// in the specified directory.
	ErrNoLogFiles = logfinder.ErrNoLogFiles
)

// ParseError reports a failure to read a log file past a given line.
type ParseError struct {
	Path string
	Line int // 1-based number of the line that could not be read
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("mtgalog: %s:%d: %v", e.Path, e.Line, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// WatchOp identifies the watcher step that failed.
type WatchOp string

const (
	WatchOpFindLatest WatchOp = "find_latest"
	WatchOpTail       WatchOp = "tail"
	WatchOpRotation   WatchOp = "rotation"
	WatchOpReplay     WatchOp = "replay"
)

// WatchError is sent on the error channel of a Watcher.
type WatchError struct {
	Op   WatchOp
	Path string
	Err  error
}

func (e *WatchError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("mtgalog: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("mtgalog: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *WatchError) Unwrap() error { return e.Err }

var (
	// ErrWatcherClosed is returned by Watch after Close.
	ErrWatcherClosed = errors.New("mtgalog: watcher closed")

	// ErrAlreadyWatching is returned by a second call to Watch.
	ErrAlreadyWatching = errors.New("mtgalog: watch already started")
)
