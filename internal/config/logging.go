package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"
)

const logFilePrefix = "arbor-"

// SetupLogFile opens a fresh timestamped log file under dir and prunes all
// but the keep most recent ones. The caller owns the returned handle.
func SetupLogFile(dir string, keep int) (*os.File, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	name := filepath.Join(dir, logFilePrefix+time.Now().Format("2006-01-02T15-04-05")+".log")
	f, err := os.Create(name)
	if err != nil {
		return nil, fmt.Errorf("create log file: %w", err)
	}

	// Pruning is best effort; the new file is already open.
	if err := pruneLogFiles(dir, keep); err != nil {
		fmt.Fprintf(os.Stderr, "warning: prune old logs: %v\n", err)
	}
	return f, nil
}

// pruneLogFiles deletes the oldest log files beyond keep. The timestamp in
// the filename makes lexical order chronological.
func pruneLogFiles(dir string, keep int) error {
	files, err := filepath.Glob(filepath.Join(dir, logFilePrefix+"*.log"))
	if err != nil {
		return err
	}
	if len(files) <= keep {
		return nil
	}
	sort.Strings(files)
	for _, stale := range files[:len(files)-keep] {
		if err := os.Remove(stale); err != nil {
			return fmt.Errorf("remove %s: %w", stale, err)
		}
	}
	return nil
}
