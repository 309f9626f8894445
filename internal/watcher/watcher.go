// Package watcher re-triggers generation when template files change. Rapid
// editor save bursts are debounced into a single batch per quiet period.
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/geniehq/genie/internal/logging"
	"github.com/geniehq/genie/internal/types"
)

// FileWatcher watches a monorepo for template changes with debouncing.
type FileWatcher struct {
	watcher   *fsnotify.Watcher
	debouncer *debouncer
	filters   []FileFilter
	handlers  []ChangeHandler
	logger    logging.Logger
	mutex     sync.RWMutex
}

// ChangeEvent is one observed filesystem change.
type ChangeEvent struct {
	Type    EventType
	Path    string
	ModTime time.Time
}

// EventType classifies a filesystem change.
type EventType int

const (
	EventTypeCreated EventType = iota
	EventTypeModified
	EventTypeDeleted
	EventTypeRenamed
)

// String returns the string representation of the EventType.
func (e EventType) String() string {
	switch e {
	case EventTypeCreated:
		return "created"
	case EventTypeModified:
		return "modified"
	case EventTypeDeleted:
		return "deleted"
	case EventTypeRenamed:
		return "renamed"
	default:
		return "unknown"
	}
}

// FileFilter decides whether a path's events are delivered.
type FileFilter func(path string) bool

// ChangeHandler receives one debounced batch of events.
type ChangeHandler func(events []ChangeEvent) error

// debouncer groups rapid file changes together. Each incoming event resets
// the timer, so a burst of saves produces a single output batch.
type debouncer struct {
	delay   time.Duration
	events  chan ChangeEvent
	output  chan []ChangeEvent
	timer   *time.Timer
	pending []ChangeEvent
	mutex   sync.Mutex
}

// NewFileWatcher creates a watcher that flushes batches after debounceDelay
// of quiet.
func NewFileWatcher(debounceDelay time.Duration, logger logging.Logger) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &FileWatcher{
		watcher: watcher,
		debouncer: &debouncer{
			delay:   debounceDelay,
			events:  make(chan ChangeEvent, 100),
			output:  make(chan []ChangeEvent, 10),
			pending: make([]ChangeEvent, 0),
		},
		filters:  make([]FileFilter, 0),
		handlers: make([]ChangeHandler, 0),
		logger:   logger.WithComponent("watcher"),
	}, nil
}

// AddFilter adds a file filter. Events must pass every filter.
func (fw *FileWatcher) AddFilter(filter FileFilter) {
	fw.mutex.Lock()
	defer fw.mutex.Unlock()
	fw.filters = append(fw.filters, filter)
}

// AddHandler adds a change handler.
func (fw *FileWatcher) AddHandler(handler ChangeHandler) {
	fw.mutex.Lock()
	defer fw.mutex.Unlock()
	fw.handlers = append(fw.handlers, handler)
}

// AddRecursive watches root and every subdirectory, skipping ignored
// directories. fsnotify watches are per-directory, not recursive.
func (fw *FileWatcher) AddRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !entry.IsDir() {
			return nil
		}
		if ignoredDir(entry.Name()) && path != root {
			return filepath.SkipDir
		}
		return fw.watcher.Add(path)
	})
}

// Start launches the watcher goroutines. They run until ctx is cancelled.
func (fw *FileWatcher) Start(ctx context.Context) {
	go fw.debouncer.start(ctx)
	go fw.processEvents(ctx)
	go fw.watchLoop(ctx)
}

// Stop closes the underlying watcher and stops any pending flush.
func (fw *FileWatcher) Stop() error {
	fw.debouncer.mutex.Lock()
	if fw.debouncer.timer != nil {
		fw.debouncer.timer.Stop()
	}
	fw.debouncer.mutex.Unlock()

	return fw.watcher.Close()
}

func (fw *FileWatcher) watchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			fw.handleFsnotifyEvent(event)
		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.logger.Warn(ctx, err, "watch error")
		}
	}
}

func (fw *FileWatcher) handleFsnotifyEvent(event fsnotify.Event) {
	// New directories under a watched tree are not covered by the initial
	// AddRecursive; pick them up before filtering so templates created
	// inside them are seen.
	if event.Op&fsnotify.Create == fsnotify.Create {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if !ignoredDir(filepath.Base(event.Name)) {
				_ = fw.watcher.Add(event.Name)
			}
			return
		}
	}

	fw.mutex.RLock()
	filters := fw.filters
	fw.mutex.RUnlock()

	for _, filter := range filters {
		if !filter(event.Name) {
			return
		}
	}

	var modTime time.Time
	if info, err := os.Stat(event.Name); err == nil {
		modTime = info.ModTime()
	}

	var eventType EventType
	switch {
	case event.Op&fsnotify.Create == fsnotify.Create:
		eventType = EventTypeCreated
	case event.Op&fsnotify.Write == fsnotify.Write:
		eventType = EventTypeModified
	case event.Op&fsnotify.Remove == fsnotify.Remove:
		eventType = EventTypeDeleted
	case event.Op&fsnotify.Rename == fsnotify.Rename:
		eventType = EventTypeRenamed
	default:
		eventType = EventTypeModified
	}

	select {
	case fw.debouncer.events <- ChangeEvent{Type: eventType, Path: event.Name, ModTime: modTime}:
	default:
		// Channel full, skip this event.
	}
}

func (fw *FileWatcher) processEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case events := <-fw.debouncer.output:
			fw.mutex.RLock()
			handlers := fw.handlers
			fw.mutex.RUnlock()

			for _, handler := range handlers {
				if err := handler(events); err != nil {
					fw.logger.Warn(ctx, err, "change handler error")
				}
			}
		}
	}
}

func (d *debouncer) start(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-d.events:
			d.addEvent(event)
		}
	}
}

func (d *debouncer) addEvent(event ChangeEvent) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	d.pending = append(d.pending, event)

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.flush)
}

func (d *debouncer) flush() {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if len(d.pending) == 0 {
		return
	}

	// Deduplicate by path; the last event for a path wins.
	eventMap := make(map[string]ChangeEvent, len(d.pending))
	for _, event := range d.pending {
		eventMap[event.Path] = event
	}

	events := make([]ChangeEvent, 0, len(eventMap))
	for _, event := range eventMap {
		events = append(events, event)
	}

	select {
	case d.output <- events:
	default:
		// Channel full, skip.
	}

	d.pending = d.pending[:0]
}

func ignoredDir(name string) bool {
	switch name {
	case ".git", ".hg", "node_modules", "dist", "build", ".turbo", ".cache":
		return true
	}
	return false
}

// TemplateFilter passes only template files.
func TemplateFilter(path string) bool {
	return types.IsTemplatePath(path)
}

// NoIgnoredDirFilter drops events from directories excluded by default.
func NoIgnoredDirFilter(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if ignoredDir(part) {
			return false
		}
	}
	return true
}
