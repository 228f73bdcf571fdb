package config

import (
	"context"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce coalesces the burst of events editors produce on save.
const DefaultDebounce = 100 * time.Millisecond

// Watcher reports changes to a fixed set of files. Rapid changes are
// coalesced into one notification.
type Watcher struct {
	watcher *fsnotify.Watcher
	files   map[string]bool
	delay   time.Duration
}

// NewWatcher watches files. The parent directories are watched so that
// files replaced by rename (as most editors save) keep being reported.
func NewWatcher(delay time.Duration, files ...string) (*Watcher, error) {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{watcher: fsw, files: make(map[string]bool), delay: delay}
	dirs := make(map[string]bool)
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			fsw.Close()
			return nil, err
		}
		w.files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := fsw.Add(dir); err != nil {
			fsw.Close()
			return nil, err
		}
	}
	return w, nil
}

// Run calls onChange with the changed file after each quiet period until
// ctx is done. Watch errors are passed to onError when it is not nil.
func (w *Watcher) Run(ctx context.Context, onChange func(path string), onError func(error)) error {
	defer w.watcher.Close()

	var timer *time.Timer
	fire := make(chan string, 1)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return ctx.Err()

		case ev, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !w.relevant(ev) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			name := ev.Name
			timer = time.AfterFunc(w.delay, func() {
				select {
				case fire <- name:
				default:
				}
			})

		case name := <-fire:
			onChange(name)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			if onError != nil {
				onError(err)
			}
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Rename) {
		return false
	}
	abs, err := filepath.Abs(ev.Name)
	if err != nil {
		return false
	}
	return w.files[abs]
}

// Close stops watching. Run returns once its context is done or the
// watcher is closed.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
