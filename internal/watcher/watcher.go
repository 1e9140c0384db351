// Package watcher provides file system watching with debouncing for manifest
// directories.
package watcher

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher monitors directories for manifest changes and sends notifications.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	dirs      []string
	match     func(name string) bool
	debounce  time.Duration
	onChange  chan struct{}
	errs      chan error
	done      chan struct{}
	stopOnce  sync.Once
}

// Config holds watcher configuration options.
type Config struct {
	Dirs        []string
	DebounceDur time.Duration
	// Match filters event file names. Nil matches YAML files.
	Match func(name string) bool
}

// DefaultConfig returns sensible defaults for the watcher.
func DefaultConfig(dirs ...string) Config {
	return Config{
		Dirs:        dirs,
		DebounceDur: 500 * time.Millisecond,
	}
}

// New creates a new directory watcher.
func New(cfg Config) (*Watcher, error) {
	if len(cfg.Dirs) == 0 {
		return nil, fmt.Errorf("watcher: at least one directory is required")
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watcher: creating fsnotify watcher: %w", err)
	}
	match := cfg.Match
	if match == nil {
		match = isYAML
	}
	return &Watcher{
		fsWatcher: fsw,
		dirs:      cfg.Dirs,
		match:     match,
		debounce:  cfg.DebounceDur,
		onChange:  make(chan struct{}, 1),
		errs:      make(chan error, 1),
		done:      make(chan struct{}),
	}, nil
}

// Start begins watching the configured directories.
// Returns a channel that receives a signal when a matching file changes.
func (w *Watcher) Start() (<-chan struct{}, error) {
	for _, dir := range w.dirs {
		if err := w.fsWatcher.Add(dir); err != nil {
			return nil, fmt.Errorf("watcher: watching directory %s: %w", dir, err)
		}
	}

	go w.loop()

	return w.onChange, nil
}

// Errors reports fsnotify errors. Only the latest unread error is kept.
func (w *Watcher) Errors() <-chan error {
	return w.errs
}

// Stop terminates the watcher and releases resources.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		err = w.fsWatcher.Close()
	})
	return err
}

// loop processes file system events with debouncing.
func (w *Watcher) loop() {
	var (
		timer   *time.Timer
		pending bool
	)

	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}

			if !w.isRelevantEvent(event) {
				continue
			}

			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}
			pending = true

		case <-func() <-chan time.Time {
			if timer != nil {
				return timer.C
			}
			return nil
		}():
			if pending {
				// Non-blocking send - drop if channel full
				select {
				case w.onChange <- struct{}{}:
				default:
				}
				pending = false
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			select {
			case w.errs <- err:
			default:
			}

		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return
		}
	}
}

// isRelevantEvent checks if the event should trigger a reload.
func (w *Watcher) isRelevantEvent(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	return w.match(filepath.Base(event.Name))
}

func isYAML(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml")
}
