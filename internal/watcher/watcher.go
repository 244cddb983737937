// Package watcher re-populates the index when watched document files
// change. Raw filesystem events are debounced so editor write bursts
// trigger one repopulation, not many.
package watcher

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Operation classifies a file event.
type Operation int

const (
	// OpCreate indicates a file was created.
	OpCreate Operation = iota
	// OpModify indicates a file's content changed.
	OpModify
	// OpDelete indicates a file was removed or renamed away.
	OpDelete
)

// FileEvent is one debounced change to a watched document file.
type FileEvent struct {
	Path      string
	Operation Operation
}

// DefaultDebounceWindow coalesces event bursts from editors and build
// tools.
const DefaultDebounceWindow = 200 * time.Millisecond

// watchedExtensions are the document types worth repopulating for.
var watchedExtensions = map[string]struct{}{
	".html":     {},
	".htm":      {},
	".md":       {},
	".markdown": {},
}

// Watcher emits debounced batches of document file events for one
// directory tree.
type Watcher struct {
	fsw       *fsnotify.Watcher
	debouncer *Debouncer
}

// New creates a watcher over dir and its immediate subdirectories.
func New(dir string, window time.Duration) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return nil, err
	}

	// Watch one level of subdirectories; deeper trees are rare for doc
	// roots and fsnotify is not recursive.
	entries, err := filepath.Glob(filepath.Join(dir, "*"))
	if err == nil {
		for _, entry := range entries {
			if isDir(entry) {
				if err := fsw.Add(entry); err != nil {
					slog.Warn("cannot watch subdirectory",
						slog.String("path", entry),
						slog.String("error", err.Error()))
				}
			}
		}
	}

	if window <= 0 {
		window = DefaultDebounceWindow
	}
	return &Watcher{
		fsw:       fsw,
		debouncer: NewDebouncer(window),
	}, nil
}

// Start pumps filesystem events into the debouncer until ctx is done.
func (w *Watcher) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				w.debouncer.Stop()
				return
			case ev, ok := <-w.fsw.Events:
				if !ok {
					w.debouncer.Stop()
					return
				}
				if fe, ok := convert(ev); ok {
					w.debouncer.Add(fe)
				}
			case err, ok := <-w.fsw.Errors:
				if !ok {
					w.debouncer.Stop()
					return
				}
				slog.Warn("watch error", slog.String("error", err.Error()))
			}
		}
	}()
}

// Events returns the channel of debounced event batches.
func (w *Watcher) Events() <-chan []FileEvent {
	return w.debouncer.Output()
}

// Close stops watching. The events channel closes once pending batches
// drain.
func (w *Watcher) Close() error {
	err := w.fsw.Close()
	w.debouncer.Stop()
	return err
}

// convert maps an fsnotify event to a FileEvent, filtering out paths that
// are not watched document types.
func convert(ev fsnotify.Event) (FileEvent, bool) {
	ext := strings.ToLower(filepath.Ext(ev.Name))
	if _, ok := watchedExtensions[ext]; !ok {
		return FileEvent{}, false
	}

	switch {
	case ev.Op.Has(fsnotify.Create):
		return FileEvent{Path: ev.Name, Operation: OpCreate}, true
	case ev.Op.Has(fsnotify.Write):
		return FileEvent{Path: ev.Name, Operation: OpModify}, true
	case ev.Op.Has(fsnotify.Remove), ev.Op.Has(fsnotify.Rename):
		return FileEvent{Path: ev.Name, Operation: OpDelete}, true
	default:
		return FileEvent{}, false
	}
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
