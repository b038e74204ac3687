// Package logfinder locates the MTGA log directory and its log files.
package logfinder

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"time"
)

// EnvLogDir overrides log directory detection.
const EnvLogDir = "MTGALOG_LOGDIR"

// SteamLogDir is where the Steam build of MTGA writes its logs.
const SteamLogDir = `C:\Program Files (x86)\Steam\steamapps\common\MTGA\MTGA_Data\Logs\Logs`

// Sentinel errors.
var (
	ErrLogDirNotFound = errors.New("log directory not found")
	ErrNoLogFiles     = errors.New("no log files found")
)

// logPatterns match Player.log, Player-prev.log, the Steam build's dated
// *.log files, and the legacy output_log.txt.
var logPatterns = []string{"*.log", "output_log*.txt"}

// DefaultLogDirs returns candidate MTGA log directories in priority order.
func DefaultLogDirs() []string {
	var dirs []string

	profile := os.Getenv("USERPROFILE")
	if profile == "" {
		if local := os.Getenv("LOCALAPPDATA"); local != "" {
			profile = filepath.Dir(filepath.Dir(local))
		}
	}
	if profile != "" {
		dirs = append(dirs, filepath.Join(profile, "AppData", "LocalLow", "Wizards Of The Coast", "MTGA"))
	}

	return append(dirs, SteamLogDir)
}

// FindLogDir returns the MTGA log directory.
//
// Priority:
//  1. explicit (if non-empty)
//  2. MTGALOG_LOGDIR environment variable
//  3. DefaultLogDirs, first with log files
//
// The returned path has symlinks resolved.
func FindLogDir(explicit string) (string, error) {
	if explicit != "" {
		if resolved := resolveAndValidateLogDir(explicit); resolved != "" {
			return resolved, nil
		}
		return "", fmt.Errorf("%w: %s is not a directory with log files", ErrLogDirNotFound, explicit)
	}

	if envDir := os.Getenv(EnvLogDir); envDir != "" {
		if resolved := resolveAndValidateLogDir(envDir); resolved != "" {
			return resolved, nil
		}
		return "", fmt.Errorf("%w: %s points to %s", ErrLogDirNotFound, EnvLogDir, envDir)
	}

	for _, dir := range DefaultLogDirs() {
		if resolved := resolveAndValidateLogDir(dir); resolved != "" {
			return resolved, nil
		}
	}

	return "", ErrLogDirNotFound
}

// ListLogFiles returns the log files in dir ordered oldest first by
// modification time. Files that cannot be stat'ed are skipped.
func ListLogFiles(dir string) ([]string, error) {
	var matches []string
	for _, pattern := range logPatterns {
		m, err := filepath.Glob(filepath.Join(dir, pattern))
		if err != nil {
			return nil, fmt.Errorf("globbing log files: %w", err)
		}
		matches = append(matches, m...)
	}

	type entry struct {
		path    string
		modTime time.Time
	}
	entries := make([]entry, 0, len(matches))
	for _, path := range matches {
		info, err := os.Stat(path)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		entries = append(entries, entry{path: path, modTime: info.ModTime()})
	}
	if len(entries) == 0 {
		return nil, ErrNoLogFiles
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].modTime.Equal(entries[j].modTime) {
			return entries[i].path < entries[j].path
		}
		return entries[i].modTime.Before(entries[j].modTime)
	})

	files := make([]string, len(entries))
	for i, e := range entries {
		files[i] = e.path
	}
	return slices.Compact(files), nil
}

// FindLatestLogFile returns the most recently modified log file in dir.
func FindLatestLogFile(dir string) (string, error) {
	files, err := ListLogFiles(dir)
	if err != nil {
		return "", err
	}
	return files[len(files)-1], nil
}

// resolveAndValidateLogDir returns dir with symlinks resolved, or "" when it
// is not a directory containing log files.
func resolveAndValidateLogDir(dir string) string {
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return ""
	}

	resolved, err := filepath.EvalSymlinks(dir)
	if err != nil {
		resolved = dir
	}

	if _, err := ListLogFiles(resolved); err != nil {
		return ""
	}
	return resolved
}
