package watcher

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/vk/hookhost/internal/ctxlog"
)

// ErrWatchLost is wrapped by the error passed to OnLost when the
// notification source for a directory stops working.
var ErrWatchLost = errors.New("watch lost")

// SettleFunc is invoked once per settlement with the names of the files
// that changed.
type SettleFunc func(ctx context.Context, changed []string)

// Option configures a Watcher.
type Option func(*Watcher)

// WithOnLost sets the callback invoked when the watch is lost.
func WithOnLost(fn func(err error)) Option {
	return func(w *Watcher) {
		w.onLost = fn
	}
}

// Watcher observes a single directory.
type Watcher struct {
	dir       string
	suffix    string
	fs        *fsnotify.Watcher
	debouncer *Debouncer
	onLost    func(err error)

	closing atomic.Bool
	done    chan struct{}
	once    sync.Once
}

// Watch starts observing dir. Notifications for files whose names end with
// suffix restart a debounce timer of length window (DefaultWindow when
// zero); onSettled runs once the directory has been quiet for that long.
func Watch(ctx context.Context, dir, suffix string, window time.Duration, onSettled SettleFunc, opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := fsw.Add(dir); err != nil {
		fsw.Close()
		return nil, fmt.Errorf("failed to watch directory %s: %w", dir, err)
	}

	w := &Watcher{
		dir:    filepath.Clean(dir),
		suffix: suffix,
		fs:     fsw,
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.debouncer = NewDebouncer(window, func(changed []string) {
		onSettled(ctx, changed)
	})

	logger := ctxlog.FromContext(ctx)
	logger.Debug("Watching directory.", "dir", dir, "suffix", suffix, "window", w.debouncer.window)

	go w.loop(ctx)
	return w, nil
}

// Close stops the watcher and waits for its event loop to exit.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		w.closing.Store(true)
		w.debouncer.Stop()
		err = w.fs.Close()
		<-w.done
	})
	return err
}

func (w *Watcher) loop(ctx context.Context) {
	defer close(w.done)
	logger := ctxlog.FromContext(ctx).With("dir", w.dir)

	for {
		select {
		case <-ctx.Done():
			w.debouncer.Stop()
			return

		case event, ok := <-w.fs.Events:
			if !ok {
				w.lost(ctx, errors.New("event stream closed"))
				return
			}
			if filepath.Clean(event.Name) == w.dir && (event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)) {
				w.lost(ctx, errors.New("watched directory was removed"))
				return
			}
			name := filepath.Base(event.Name)
			if !strings.HasSuffix(name, w.suffix) {
				continue
			}
			logger.Debug("Change detected.", "file", name, "op", event.Op.String())
			w.debouncer.Notify(name)

		case err, ok := <-w.fs.Errors:
			if !ok {
				w.lost(ctx, errors.New("error stream closed"))
				return
			}
			if errors.Is(err, fsnotify.ErrEventOverflow) {
				logger.Warn("Notification queue overflowed, scheduling a full reload.", "error", err)
				w.debouncer.Notify("")
				continue
			}
			w.lost(ctx, err)
			return
		}
	}
}

func (w *Watcher) lost(ctx context.Context, cause error) {
	if w.closing.Load() {
		return
	}
	w.debouncer.Stop()

	err := fmt.Errorf("%w: %s: %v", ErrWatchLost, w.dir, cause)
	ctxlog.FromContext(ctx).Error("Directory watch lost, hot-reload disabled.", "dir", w.dir, "error", cause)
	if w.onLost != nil {
		w.onLost(err)
	}
}
