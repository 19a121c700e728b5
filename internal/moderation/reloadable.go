package moderation

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/afero"
)

// ReloadableFilter serves IsProfane from a word list file and can swap in a
// fresh Filter when the file changes. With an empty path it serves the
// built-in list and never reloads.
type ReloadableFilter struct {
	fs      afero.Fs
	path    string
	current atomic.Pointer[Filter]
	logger  *slog.Logger
}

// NewReloadableFilter loads the initial word list.
func NewReloadableFilter(fs afero.Fs, path string) (*ReloadableFilter, error) {
	rf := &ReloadableFilter{
		fs:     fs,
		path:   path,
		logger: slog.Default().With("component", "moderation"),
	}
	if err := rf.Reload(); err != nil {
		return nil, err
	}
	return rf, nil
}

// IsProfane implements Classifier.
func (rf *ReloadableFilter) IsProfane(text string) bool {
	return rf.current.Load().IsProfane(text)
}

// Reload rebuilds the filter from the word list. On failure the previous
// filter stays active.
func (rf *ReloadableFilter) Reload() error {
	words := DefaultWords()
	if rf.path != "" {
		var err error
		if words, err = LoadWords(rf.fs, rf.path); err != nil {
			return err
		}
	}

	f, err := NewFilter(words)
	if err != nil {
		return fmt.Errorf("build profanity filter: %w", err)
	}
	rf.current.Store(f)
	rf.logger.Info("Profanity filter loaded", "path", rf.path, "words", f.Size())
	return nil
}

// Watch reloads the filter whenever the word list file is written, created or
// renamed into place. It blocks until ctx is done. The file must live on the
// OS filesystem for events to fire.
func (rf *ReloadableFilter) Watch(ctx context.Context) error {
	if rf.path == "" {
		<-ctx.Done()
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file system watcher: %w", err)
	}
	defer watcher.Close()

	// Editors usually replace the file, so watch the directory and filter by name.
	target := filepath.Clean(rf.path)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(target), err)
	}
	rf.logger.Debug("Watching word list for changes", "path", target)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if err := rf.Reload(); err != nil {
				rf.logger.Error("Failed to reload word list", "path", target, "error", err)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			rf.logger.Error("File system watcher error", "error", err)
		}
	}
}
