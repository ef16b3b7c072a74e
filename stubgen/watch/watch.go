// Package watch reruns stub generation when target units change on disk.
package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/teranos/stubgen/errors"
	"github.com/teranos/stubgen/logger"
)

// DefaultDebounce collapses bursts of events (editors often write twice).
const DefaultDebounce = 300 * time.Millisecond

// RunFunc performs one generation. Errors are logged and watching goes on.
type RunFunc func(ctx context.Context) error

// Watcher reruns a RunFunc after target files change. Runs execute one at a
// time on the goroutine that called Run.
type Watcher struct {
	watcher  *fsnotify.Watcher
	run      RunFunc
	files    map[string]bool
	dirs     map[string]bool
	exts     map[string]bool
	ignored  []string
	debounce time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	trigger chan struct{}

	log *zap.SugaredLogger
}

// New watches targets, which may be unit files or directories. A file target
// fires on changes to that file; a directory target fires on changes to any
// file in it with one of exts.
func New(targets []string, exts []string, run RunFunc) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create fsnotify watcher")
	}

	w := &Watcher{
		watcher:  fw,
		run:      run,
		files:    make(map[string]bool),
		dirs:     make(map[string]bool),
		exts:     make(map[string]bool),
		debounce: DefaultDebounce,
		trigger:  make(chan struct{}, 1),
		log:      logger.ComponentLogger("stubgen.watch"),
	}
	for _, ext := range exts {
		w.exts[ext] = true
	}

	watched := make(map[string]bool)
	for _, target := range targets {
		abs, err := filepath.Abs(target)
		if err != nil {
			fw.Close()
			return nil, errors.Wrapf(err, "invalid target %s", target)
		}
		info, err := os.Stat(abs)
		if err != nil {
			fw.Close()
			return nil, errors.Wrapf(err, "failed to stat target %s", target)
		}

		dir := abs
		if info.IsDir() {
			w.dirs[abs] = true
		} else {
			// Editors replace files by rename, so watch the parent directory.
			w.files[abs] = true
			dir = filepath.Dir(abs)
		}
		if watched[dir] {
			continue
		}
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, errors.Wrapf(err, "failed to watch %s", dir)
		}
		watched[dir] = true
	}
	return w, nil
}

// SetDebounce changes the quiet period before a run.
func (w *Watcher) SetDebounce(d time.Duration) { w.debounce = d }

// Ignore drops events below dir, typically the output directory.
func (w *Watcher) Ignore(dir string) {
	if abs, err := filepath.Abs(dir); err == nil {
		w.ignored = append(w.ignored, abs)
	}
}

// Run blocks until ctx is done, rerunning after each relevant change.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	for {
		select {
		case <-ctx.Done():
			w.mu.Lock()
			if w.timer != nil {
				w.timer.Stop()
			}
			w.mu.Unlock()
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if !w.relevant(event.Name) {
				continue
			}
			w.log.Debugw("Change detected",
				logger.FieldFile, event.Name,
				"op", event.Op.String())
			w.schedule()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Warnw("Watcher error", logger.FieldError, err)

		case <-w.trigger:
			start := time.Now()
			if err := w.run(ctx); err != nil {
				w.log.Errorw("Regeneration failed", logger.FieldError, err)
				continue
			}
			w.log.Infow("Regenerated", logger.FieldDurationMS, time.Since(start).Milliseconds())
		}
	}
}

func (w *Watcher) relevant(name string) bool {
	abs, err := filepath.Abs(name)
	if err != nil {
		return false
	}
	for _, dir := range w.ignored {
		if abs == dir || strings.HasPrefix(abs, dir+string(filepath.Separator)) {
			return false
		}
	}
	if w.files[abs] {
		return true
	}
	return w.dirs[filepath.Dir(abs)] && w.exts[filepath.Ext(abs)]
}

// schedule restarts the debounce timer. When it fires a run is queued; a
// run already queued absorbs it.
func (w *Watcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		select {
		case w.trigger <- struct{}{}:
		default:
		}
	})
}
