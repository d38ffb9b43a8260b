package converter

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/mark3labs/transcriptr/internal/logger"
)

const watchDebounce = 500 * time.Millisecond

// Watch converts inputPath once, then re-converts whenever a transcript file
// under it changes. Events are debounced so a burst of writes triggers one
// conversion. Blocks until ctx is cancelled.
func Watch(ctx context.Context, inputPath string, opts Options) error {
	if _, _, err := ConvertJSONL(ctx, inputPath, opts); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	info, err := os.Stat(inputPath)
	if err != nil {
		return fmt.Errorf("failed to access %s: %w", inputPath, err)
	}
	// Watch the parent for single files: editors and the CLI replace files
	// rather than writing in place, which drops the watch on the inode.
	watchDir := inputPath
	if !info.IsDir() {
		watchDir = filepath.Dir(inputPath)
	}
	if err := watcher.Add(watchDir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", watchDir, err)
	}

	logger.Info("Watching %s for changes", inputPath)

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !watchEventRelevant(inputPath, event) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(watchDebounce)
				timerC = timer.C
			} else {
				timer.Reset(watchDebounce)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error: %v", err)

		case <-timerC:
			timer = nil
			timerC = nil
			output, stats, err := ConvertJSONL(ctx, inputPath, opts)
			if err != nil {
				logger.Warn("Re-conversion failed: %v", err)
				continue
			}
			logger.Info("%s", stats.Summary(output))
		}
	}
}

// watchEventRelevant filters to writes of transcript files, or of the watched
// file itself when watching a single file's parent directory.
func watchEventRelevant(inputPath string, event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
		return false
	}
	if filepath.Ext(inputPath) == ".jsonl" {
		return event.Name == inputPath
	}
	return strings.HasSuffix(event.Name, ".jsonl")
}
