package vault

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher translates fsnotify notifications under a vault root into Events.
// Subdirectories created after startup are watched as they appear.
type Watcher struct {
	watcher *fsnotify.Watcher
	root    string
	events  chan Event
	errs    chan error
	done    chan struct{}
	once    sync.Once
	now     func() time.Time
}

// NewWatcher starts watching root recursively. Dot-directories are skipped.
func NewWatcher(root string) (*Watcher, error) {
	root = filepath.Clean(root)
	if root == "" || root == "." {
		return nil, errors.New("vault directory cannot be empty")
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	w := &Watcher{
		watcher: fw,
		root:    root,
		events:  make(chan Event, 64),
		errs:    make(chan error, 1),
		done:    make(chan struct{}),
		now:     time.Now,
	}
	if err := w.addRecursive(root); err != nil {
		_ = w.Close()
		return nil, err
	}
	go w.loop()
	return w, nil
}

// Events delivers translated change notifications. It is closed by Close.
func (w *Watcher) Events() <-chan Event { return w.events }

// Errors delivers watcher failures. Errors are dropped when nobody reads.
func (w *Watcher) Errors() <-chan error { return w.errs }

// Close stops the watcher. It is safe to call more than once.
func (w *Watcher) Close() error {
	if w == nil {
		return nil
	}
	var closeErr error
	w.once.Do(func() {
		close(w.done)
		closeErr = w.watcher.Close()
	})
	return closeErr
}

func (w *Watcher) loop() {
	defer close(w.events)
	for {
		select {
		case <-w.done:
			return
		case raw, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			ev, ok := w.translate(raw)
			if !ok {
				continue
			}
			select {
			case w.events <- ev:
			case <-w.done:
				return
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			if err == nil {
				continue
			}
			select {
			case w.errs <- err:
			default:
				log.WithError(err).Warn("watcher error dropped")
			}
		}
	}
}

func (w *Watcher) translate(raw fsnotify.Event) (Event, bool) {
	rel, ok := relativeTo(w.root, raw.Name)
	if !ok || hasSkippedSegment(rel) {
		return Event{}, false
	}

	ev := Event{Path: rel, At: w.now()}
	switch {
	case raw.Op.Has(fsnotify.Create):
		ev.Kind = EventCreated
		if info, err := os.Stat(raw.Name); err == nil && info.IsDir() {
			ev.IsDir = true
			if err := w.addRecursive(raw.Name); err != nil {
				log.WithError(err).WithField("path", rel).Warn("watch created folder")
			}
		}
	case raw.Op.Has(fsnotify.Write):
		ev.Kind = EventModified
	case raw.Op.Has(fsnotify.Remove):
		ev.Kind = EventDeleted
	case raw.Op.Has(fsnotify.Rename):
		ev.Kind = EventRenamed
	default:
		return Event{}, false
	}

	// Removed or renamed paths can no longer be inspected; anything without
	// a Markdown extension may have been a folder.
	if !ev.IsDir && !isMarkdown(rel) {
		if ev.Kind == EventCreated || ev.Kind == EventModified {
			return Event{}, false
		}
		ev.IsDir = path.Ext(rel) == ""
		if !ev.IsDir {
			return Event{}, false
		}
	}
	return ev, true
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrPermission) || errors.Is(err, fs.ErrNotExist) {
				return filepath.SkipDir
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != w.root && shouldSkipName(d.Name()) {
			return filepath.SkipDir
		}
		return w.watcher.Add(p)
	})
}

func relativeTo(root, abs string) (string, bool) {
	rel, err := filepath.Rel(root, filepath.Clean(abs))
	if err != nil {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	if rel == "." || rel == ".." || len(rel) >= 3 && rel[:3] == "../" {
		return "", false
	}
	return rel, true
}
