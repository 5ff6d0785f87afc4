package vault

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/charlievieth/fastwalk"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultPairWindow is how long a rename waits for the create that names
// its destination.
const DefaultPairWindow = 100 * time.Millisecond

// Handler receives document changes made outside the editor
type Handler interface {
	DocumentRenamed(oldPath, newPath string)
	DocumentDeleted(path string)
}

// Watcher follows the vault tree
type Watcher struct {
	index   *Index
	handler Handler
	fs      *fsnotify.Watcher
	window  time.Duration
	logger  *zap.Logger

	closeOnce sync.Once
}

// NewWatcher watches every directory of the index root
func NewWatcher(index *Index, handler Handler, window time.Duration, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if window <= 0 {
		window = DefaultPairWindow
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	w := &Watcher{
		index:   index,
		handler: handler,
		fs:      fsw,
		window:  window,
		logger:  logger.Named("watcher"),
	}
	if err := w.addTree(index.Root()); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// Close stops the watcher
func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		err = w.fs.Close()
	})
	return err
}

// Run processes filesystem events until ctx is done or the watcher is
// closed.
func (w *Watcher) Run(ctx context.Context) error {
	var (
		pending string
		expire  <-chan time.Time
	)

	flush := func() {
		if pending != "" {
			w.deleted(pending)
		}
		pending, expire = "", nil
	}

	for {
		select {
		case <-ctx.Done():
			flush()
			return nil

		case <-expire:
			flush()

		case event, ok := <-w.fs.Events:
			if !ok {
				flush()
				return nil
			}

			rel, inside := w.index.Rel(event.Name)
			if !inside {
				continue
			}

			switch {
			case event.Has(fsnotify.Rename):
				flush()
				pending = rel
				expire = time.After(w.window)

			case event.Has(fsnotify.Create):
				if pending != "" {
					w.renamed(pending, rel, event.Name)
					pending, expire = "", nil
				} else {
					w.created(rel, event.Name)
				}

			case event.Has(fsnotify.Remove):
				w.deleted(rel)
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				flush()
				return nil
			}
			w.logger.Error("filesystem watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) created(rel, abs string) {
	info, err := os.Stat(abs)
	if err != nil {
		return
	}
	if info.IsDir() {
		if err := w.addTree(abs); err != nil {
			w.logger.Warn("failed to watch new folder", zap.String("path", rel), zap.Error(err))
		}
		return
	}
	if w.index.Matches(rel) && isText(abs) {
		w.index.Add(rel)
	}
}

func (w *Watcher) renamed(oldRel, newRel, abs string) {
	folder := false
	if info, err := os.Stat(abs); err == nil && info.IsDir() {
		folder = true
		if err := w.addTree(abs); err != nil {
			w.logger.Warn("failed to watch moved folder", zap.String("path", newRel), zap.Error(err))
		}
	}

	moved := w.index.Rename(oldRel, newRel)
	if _, ok := moved[oldRel]; !ok && !folder {
		moved[oldRel] = newRel
		if w.index.Matches(newRel) && isText(abs) {
			w.index.Add(newRel)
		}
	}

	for from, to := range moved {
		w.logger.Debug("document renamed outside the editor",
			zap.String("from", from),
			zap.String("to", to))
		w.handler.DocumentRenamed(from, to)
	}
}

func (w *Watcher) deleted(rel string) {
	removed := w.index.Remove(rel)
	if len(removed) == 0 || removed[0] != rel {
		removed = append([]string{rel}, removed...)
	}

	for _, doc := range removed {
		w.logger.Debug("document deleted outside the editor", zap.String("path", doc))
		w.handler.DocumentDeleted(doc)
	}
}

// addTree watches dir and every non-hidden folder below it
func (w *Watcher) addTree(dir string) error {
	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, dir, func(p string, d os.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		if p != dir && hidden(d.Name()) {
			return fastwalk.SkipDir
		}
		if err := w.fs.Add(p); err != nil {
			w.logger.Warn("failed to watch folder", zap.String("path", p), zap.Error(err))
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	return nil
}
