package watcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ZanzyTHEbar/dashboard-directory-size/dds/triggers"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// ErrWatcherClosed is returned when adding roots to a closed watcher.
var ErrWatcherClosed = errors.New("watcher closed")

// FSNotifyWatcher watches catalog roots recursively and emits one fs-changed
// lifecycle event per debounced root batch.
type FSNotifyWatcher struct {
	watcher   *fsnotify.Watcher
	roots     *RootIndex
	debouncer *Debouncer
	sink      Sink
	log       zerolog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// NewFSNotifyWatcher creates a new fsnotify-based watcher
func NewFSNotifyWatcher(cfg Config, sink Sink, log zerolog.Logger) (*FSNotifyWatcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &FSNotifyWatcher{
		watcher:   fsWatcher,
		roots:     NewRootIndex(),
		debouncer: NewDebouncer(cfg.DebounceDelay, cfg.MaxDebounceDelay, 64),
		sink:      sink,
		log:       log.With().Str("component", "watcher").Logger(),
		ctx:       ctx,
		cancel:    cancel,
	}, nil
}

// Start watches roots and begins dispatching. Roots that cannot be watched are
// logged and skipped. The watcher stops when ctx is done or Close is called.
func (w *FSNotifyWatcher) Start(ctx context.Context, roots []string) error {
	if err := w.Add(roots...); errors.Is(err, ErrWatcherClosed) {
		return err
	}

	w.wg.Add(2)
	go w.watchLoop()
	go w.dispatchLoop()

	go func() {
		select {
		case <-ctx.Done():
			w.cancel()
		case <-w.ctx.Done():
		}
	}()

	w.log.Info().Int("roots", w.roots.Len()).Msg("watcher started")
	return nil
}

// Add watches more roots. Every root is attempted; the joined errors of the
// failures are returned.
func (w *FSNotifyWatcher) Add(roots ...string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWatcherClosed
	}

	var errs []error
	for _, root := range roots {
		if root == "" {
			continue
		}
		if err := w.addRecursive(root); err != nil {
			w.log.Warn().Err(err).Str("root", root).Msg("failed to watch root")
			errs = append(errs, err)
			continue
		}
		w.roots.Insert(root)
	}
	return errors.Join(errs...)
}

// Roots returns the watched roots.
func (w *FSNotifyWatcher) Roots() []string {
	return w.roots.Roots()
}

// Close stops watching and cleans up resources
func (w *FSNotifyWatcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	w.mu.Unlock()

	w.cancel()
	w.debouncer.Close()
	err := w.watcher.Close()
	w.wg.Wait()

	w.log.Info().Msg("watcher closed")
	return err
}

// addRecursive adds root and every directory below it.
func (w *FSNotifyWatcher) addRecursive(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", root)
	}

	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			w.log.Debug().Err(err).Str("path", path).Msg("skipping unreadable directory")
			return fs.SkipDir
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.watcher.Add(path); err != nil {
			if path == root {
				return err
			}
			w.log.Debug().Err(err).Str("path", path).Msg("failed to watch subdirectory")
		}
		return nil
	})
}

func (w *FSNotifyWatcher) watchLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn().Err(err).Msg("watch error")
		}
	}
}

func (w *FSNotifyWatcher) handle(raw fsnotify.Event) {
	event, ok := convertEvent(raw, time.Now())
	if !ok {
		return
	}

	root, ok := w.roots.Match(event.Path)
	if !ok {
		return
	}
	event.Root = root

	// new directories are not covered by the parent's watch
	if event.Type == EventCreate {
		if info, err := os.Lstat(event.Path); err == nil && info.IsDir() {
			w.mu.Lock()
			if !w.closed {
				if err := w.addRecursive(event.Path); err != nil {
					w.log.Debug().Err(err).Str("path", event.Path).Msg("failed to watch new directory")
				}
			}
			w.mu.Unlock()
		}
	}

	w.debouncer.Add(event)
}

func (w *FSNotifyWatcher) dispatchLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.ctx.Done():
			return
		case <-w.debouncer.Done():
			return
		case batch := <-w.debouncer.Batches():
			w.log.Debug().Str("root", batch.Root).Int("events", len(batch.Events)).Msg("directory changed")
			w.sink.OnLifecycleEvent(w.ctx, triggers.FSChanged, batch.Root)
		}
	}
}
