// Package watch re-runs generation when files under a project change.
package watch

import (
	"context"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/teranos/declgen/errors"
	"github.com/teranos/declgen/logger"
)

// Handler is called with the project-relative, slash-separated paths that
// changed since the previous call. Calls never overlap.
type Handler func(ctx context.Context, changed []string) error

// Options configure a Watcher.
type Options struct {
	Root     string
	Debounce time.Duration
	// Ignore lists base-name globs whose events are dropped.
	Ignore []string
}

// Watcher watches every directory below a root.
type Watcher struct {
	root     string
	watcher  *fsnotify.Watcher
	debounce time.Duration
	ignore   []string
	pending  map[string]struct{}
	logger   *zap.SugaredLogger
}

// New creates a watcher and registers every directory below opts.Root.
func New(opts Options) (*Watcher, error) {
	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to resolve %s", opts.Root)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fsnotify watcher")
	}
	w := &Watcher{
		root:     root,
		watcher:  fw,
		debounce: opts.Debounce,
		ignore:   opts.Ignore,
		pending:  make(map[string]struct{}),
		logger:   logger.ComponentLogger("watch"),
	}
	if err := w.addTree(root); err != nil {
		fw.Close()
		return nil, err
	}
	return w, nil
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

// Run delivers debounced batches of changes to handle until ctx is done.
// Handler errors are logged and watching continues.
func (w *Watcher) Run(ctx context.Context, handle Handler) error {
	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			rel, keep := w.accept(event)
			if !keep {
				continue
			}
			w.logger.Debugw("Change detected", logger.FieldPath, rel, "op", event.Op.String())
			w.pending[rel] = struct{}{}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warnw("Watcher error", logger.FieldError, err)

		case <-fire:
			fire = nil
			changed := w.drain()
			if len(changed) == 0 {
				continue
			}
			w.logger.Debugw("Running after changes", logger.FieldCount, len(changed))
			if err := handle(ctx, changed); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				w.logger.Errorw("Watch run failed", logger.FieldError, err)
			}
		}
	}
}

// accept filters an event and keeps new directories watched.
func (w *Watcher) accept(event fsnotify.Event) (string, bool) {
	if event.Op == fsnotify.Chmod {
		return "", false
	}
	rel, err := filepath.Rel(w.root, event.Name)
	if err != nil || !filepath.IsLocal(rel) {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	if w.ignored(rel) {
		return "", false
	}
	if event.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(event.Name); err != nil {
				w.logger.Warnw("Failed to watch new directory", logger.FieldPath, rel, logger.FieldError, err)
			}
		}
	}
	return rel, true
}

func (w *Watcher) drain() []string {
	out := make([]string, 0, len(w.pending))
	for p := range w.pending {
		out = append(out, p)
	}
	clear(w.pending)
	slices.Sort(out)
	return out
}

// ignored reports whether any element of rel is hidden or skipped, or its
// base name matches an ignore glob.
func (w *Watcher) ignored(rel string) bool {
	parts := strings.Split(rel, "/")
	for _, part := range parts[:len(parts)-1] {
		if skipDir(part) {
			return true
		}
	}
	base := parts[len(parts)-1]
	if strings.HasPrefix(base, ".") {
		return true
	}
	for _, pattern := range w.ignore {
		if ok, _ := path.Match(pattern, base); ok {
			return true
		}
	}
	return false
}

func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			// Directories can vanish between the event and the walk.
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if p != w.root && skipDir(d.Name()) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(p); err != nil {
			return errors.Wrapf(err, "failed to watch %s", p)
		}
		return nil
	})
}

func skipDir(name string) bool {
	return strings.HasPrefix(name, ".") || name == "vendor" || name == "node_modules"
}
