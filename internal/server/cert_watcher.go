package server

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"time"

	"resumeats/internal/errors"

	"github.com/fsnotify/fsnotify"
)

const defaultDebounceDelay = time.Second

// CertWatcher triggers a reload when any watched certificate file changes.
// Bursts of events (editors, atomic renames) collapse into one reload.
type CertWatcher struct {
	files         []string
	debounceDelay time.Duration
	reload        func()
	logger        *errors.Logger
}

// NewCertWatcher watches the non-empty paths among files
func NewCertWatcher(files []string, debounceDelay time.Duration, reload func(), logger *errors.Logger) *CertWatcher {
	if debounceDelay <= 0 {
		debounceDelay = defaultDebounceDelay
	}

	watched := make([]string, 0, len(files))
	for _, f := range files {
		if f != "" {
			watched = append(watched, filepath.Clean(f))
		}
	}

	return &CertWatcher{
		files:         watched,
		debounceDelay: debounceDelay,
		reload:        reload,
		logger:        logger,
	}
}

// Run watches until ctx is cancelled
func (cw *CertWatcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer func() {
		if err := watcher.Close(); err != nil {
			cw.logger.LogError(err, "Failed to close certificate watcher")
		}
	}()

	// Watching directories catches atomic replacement via rename, which
	// drops a watch placed on the file itself.
	for _, dir := range cw.directories() {
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch directory %s: %w", dir, err)
		}
	}

	cw.logger.Info("Certificate file watcher started",
		"files", cw.files,
		"debounce_delay", cw.debounceDelay)

	timer := time.NewTimer(cw.debounceDelay)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			cw.logger.Info("Certificate file watcher stopped")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if cw.isRelevant(event) {
				timer.Reset(cw.debounceDelay)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			cw.logger.LogError(err, "Certificate watcher error")

		case <-timer.C:
			cw.logger.Info("Certificate files changed, triggering reload")
			cw.reload()
		}
	}
}

func (cw *CertWatcher) directories() []string {
	var dirs []string
	for _, f := range cw.files {
		if dir := filepath.Dir(f); !slices.Contains(dirs, dir) {
			dirs = append(dirs, dir)
		}
	}
	return dirs
}

// isRelevant reports whether event touches a watched file in a way that can
// change its content.
func (cw *CertWatcher) isRelevant(event fsnotify.Event) bool {
	if !slices.Contains(cw.files, filepath.Clean(event.Name)) {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}

// GetWatchedFiles returns the list of files being watched
func (cw *CertWatcher) GetWatchedFiles() []string {
	return slices.Clone(cw.files)
}
