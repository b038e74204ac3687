package mtgalog

import (
	"fmt"
	"log/slog"
	"time"
)

// ReplayMode specifies how to handle existing log lines.
type ReplayMode int

const (
	// ReplayNone only watches for new lines (default, tail -f behavior).
	ReplayNone ReplayMode = iota
	// ReplayFromStart reads from the beginning of the file.
	ReplayFromStart
	// ReplayLastN reads the last N lines before tailing.
	ReplayLastN
)

// DefaultMaxReplayLastN is the default maximum lines for ReplayLastN mode.
// GRE state lines can be hundreds of KB each, so keep this modest.
const DefaultMaxReplayLastN = 10000

// DefaultPollInterval is how often the watcher checks for rotation and truncation.
const DefaultPollInterval = 2 * time.Second

// ReplayConfig configures replay behavior.
type ReplayConfig struct {
	Mode  ReplayMode
	LastN int // For ReplayLastN
}

// WatchNoticeKind classifies a WatchNotice.
type WatchNoticeKind string

const (
	// NoticeOpened is sent once the first log file is being tailed.
	NoticeOpened WatchNoticeKind = "opened"
	// NoticeRotated is sent after switching to a newer log file.
	NoticeRotated WatchNoticeKind = "rotated"
	// NoticeTruncated is sent when the current file shrank and is re-read.
	NoticeTruncated WatchNoticeKind = "truncated"
)

// WatchNotice reports a change of the file being watched.
type WatchNotice struct {
	Kind WatchNoticeKind `json:"kind"`
	Path string          `json:"path"`
}

// WatchOption configures Watch behavior using the functional options pattern.
type WatchOption func(*watchConfig)

type watchConfig struct {
	logDir         string
	pollInterval   time.Duration
	includeRawLine bool
	replay         ReplayConfig
	maxReplayLines int
	logger         *slog.Logger
	filter         *compiledFilter
	maxPending     int
	onNotice       func(WatchNotice)
	onLine         func(RawLine)
}

func defaultWatchConfig() *watchConfig {
	return &watchConfig{
		pollInterval:   DefaultPollInterval,
		maxReplayLines: DefaultMaxReplayLastN,
	}
}

func applyWatchOptions(opts []WatchOption) *watchConfig {
	cfg := defaultWatchConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	return cfg
}

// validate checks for invalid option combinations.
func (c *watchConfig) validate() error {
	if c.replay.Mode == ReplayLastN {
		if c.replay.LastN < 0 {
			return fmt.Errorf("replay LastN must be non-negative, got %d", c.replay.LastN)
		}
		if c.maxReplayLines > 0 && c.replay.LastN > c.maxReplayLines {
			return fmt.Errorf("replay LastN (%d) exceeds maximum of %d", c.replay.LastN, c.maxReplayLines)
		}
	}
	if c.pollInterval < 0 {
		return fmt.Errorf("poll interval must be non-negative, got %v", c.pollInterval)
	}
	if c.maxPending < 0 {
		return fmt.Errorf("max pending calls must be non-negative, got %d", c.maxPending)
	}
	return nil
}

func (c *watchConfig) pipelineOptions() []PipelineOption {
	return []PipelineOption{
		WithPipelineLogger(c.logger),
		WithPipelineMaxPendingCalls(c.maxPending),
	}
}

// WithLogDir sets the MTGA log directory.
// If not set, auto-detects from default Windows locations.
// Can also be set via MTGALOG_LOGDIR environment variable.
func WithLogDir(dir string) WatchOption {
	return func(c *watchConfig) {
		c.logDir = dir
	}
}

// WithPollInterval sets how often to check for new or truncated log files.
// Default: 2 seconds. 0 also means the default.
func WithPollInterval(interval time.Duration) WatchOption {
	return func(c *watchConfig) {
		c.pollInterval = interval
	}
}

// WithIncludeRawLine includes the original log line in Event.RawLine.
func WithIncludeRawLine(include bool) WatchOption {
	return func(c *watchConfig) {
		c.includeRawLine = include
	}
}

// WithReplay configures replay behavior for existing log lines.
func WithReplay(config ReplayConfig) WatchOption {
	return func(c *watchConfig) {
		c.replay = config
	}
}

// WithReplayFromStart reads from the beginning of the log file.
func WithReplayFromStart() WatchOption {
	return WithReplay(ReplayConfig{Mode: ReplayFromStart})
}

// WithReplayLastN reads the last N lines before tailing.
func WithReplayLastN(n int) WatchOption {
	return WithReplay(ReplayConfig{Mode: ReplayLastN, LastN: n})
}

// WithMaxReplayLines sets the maximum lines for ReplayLastN mode.
// Set to -1 for unlimited.
func WithMaxReplayLines(max int) WatchOption {
	return func(c *watchConfig) {
		c.maxReplayLines = max
	}
}

// WithLogger sets the slog logger for debug output.
// If nil (default), logging is disabled.
func WithLogger(logger *slog.Logger) WatchOption {
	return func(c *watchConfig) {
		c.logger = logger
	}
}

// WithIncludeTypes filters events to only include the specified types.
// If called multiple times, only the last call takes effect.
func WithIncludeTypes(types ...EventType) WatchOption {
	return func(c *watchConfig) {
		c.filter = c.filter.withInclude(types)
	}
}

// WithExcludeTypes filters out events of the specified types.
// Exclude takes precedence over include.
func WithExcludeTypes(types ...EventType) WatchOption {
	return func(c *watchConfig) {
		c.filter = c.filter.withExclude(types)
	}
}

// WithFilter sets both include and exclude type filters.
func WithFilter(include, exclude []EventType) WatchOption {
	return func(c *watchConfig) {
		c.filter = newCompiledFilter(include, exclude)
	}
}

// WithMaxPendingCalls bounds the RPC requests awaiting a response.
// 0 (default) is unbounded.
func WithMaxPendingCalls(n int) WatchOption {
	return func(c *watchConfig) {
		c.maxPending = n
	}
}

// WithNoticeHandler registers fn for file open, rotation and truncation
// notices. fn runs on the watcher goroutine and must not block.
func WithNoticeHandler(fn func(WatchNotice)) WatchOption {
	return func(c *watchConfig) {
		c.onNotice = fn
	}
}

// WithLineHandler registers fn for every framed non-blank line, whether or
// not it produced events. fn runs on the watcher goroutine and must not block.
func WithLineHandler(fn func(RawLine)) WatchOption {
	return func(c *watchConfig) {
		c.onLine = fn
	}
}

// ParseOption configures ParseFile behavior.
type ParseOption func(*parseConfig)

type parseConfig struct {
	filter         *compiledFilter
	includeRawLine bool
	logger         *slog.Logger
	maxPending     int
}

func applyParseOptions(opts []ParseOption) *parseConfig {
	cfg := &parseConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	return cfg
}

func (c *parseConfig) log() *slog.Logger {
	if c.logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return c.logger
}

func (c *parseConfig) pipelineOptions() []PipelineOption {
	return []PipelineOption{
		WithPipelineLogger(c.logger),
		WithPipelineMaxPendingCalls(c.maxPending),
	}
}

// WithParseIncludeTypes filters events to only include the specified types.
func WithParseIncludeTypes(types ...EventType) ParseOption {
	return func(c *parseConfig) {
		c.filter = c.filter.withInclude(types)
	}
}

// WithParseExcludeTypes filters out events of the specified types.
func WithParseExcludeTypes(types ...EventType) ParseOption {
	return func(c *parseConfig) {
		c.filter = c.filter.withExclude(types)
	}
}

// WithParseFilter sets both include and exclude type filters for parsing.
func WithParseFilter(include, exclude []EventType) ParseOption {
	return func(c *parseConfig) {
		c.filter = newCompiledFilter(include, exclude)
	}
}

// WithParseIncludeRawLine includes the original log line in Event.RawLine.
func WithParseIncludeRawLine(include bool) ParseOption {
	return func(c *parseConfig) {
		c.includeRawLine = include
	}
}

// WithParseLogger sets the slog logger for debug output.
func WithParseLogger(logger *slog.Logger) ParseOption {
	return func(c *parseConfig) {
		c.logger = logger
	}
}

// WithParseMaxPendingCalls bounds the RPC requests awaiting a response.
func WithParseMaxPendingCalls(n int) ParseOption {
	return func(c *parseConfig) {
		c.maxPending = n
	}
}

// ParseDirOption configures ParseDir behavior.
type ParseDirOption func(*parseDirConfig)

type parseDirConfig struct {
	parseConfig
	logDir      string
	paths       []string // explicit file paths (optional)
	stopOnError bool
}

func applyParseDirOptions(opts []ParseDirOption) *parseDirConfig {
	cfg := &parseDirConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	return cfg
}

// WithDirLogDir sets the log directory to parse.
// If not set, auto-detects from default Windows locations.
func WithDirLogDir(dir string) ParseDirOption {
	return func(c *parseDirConfig) {
		c.logDir = dir
	}
}

// WithDirPaths sets explicit file paths to parse, in the given order.
// If set, LogDir is ignored.
func WithDirPaths(paths ...string) ParseDirOption {
	return func(c *parseDirConfig) {
		c.paths = paths
	}
}

// WithDirParseOptions applies ParseOptions to every file.
func WithDirParseOptions(opts ...ParseOption) ParseDirOption {
	return func(c *parseDirConfig) {
		for _, opt := range opts {
			if opt != nil {
				opt(&c.parseConfig)
			}
		}
	}
}

// WithDirIncludeTypes filters events to only include the specified types.
func WithDirIncludeTypes(types ...EventType) ParseDirOption {
	return WithDirParseOptions(WithParseIncludeTypes(types...))
}

// WithDirExcludeTypes filters out events of the specified types.
func WithDirExcludeTypes(types ...EventType) ParseDirOption {
	return WithDirParseOptions(WithParseExcludeTypes(types...))
}

// WithDirIncludeRawLine includes the original log line in Event.RawLine.
func WithDirIncludeRawLine(include bool) ParseDirOption {
	return WithDirParseOptions(WithParseIncludeRawLine(include))
}

// WithDirStopOnError stops at the first file that fails instead of
// moving on to the next one.
func WithDirStopOnError(stop bool) ParseDirOption {
	return func(c *parseDirConfig) {
		c.stopOnError = stop
	}
}
