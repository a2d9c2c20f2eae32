// Package watcher reports changes to individual files for live reload.
//
// fsnotify watches the directories that contain the files, so editors that
// save by writing a temp file and renaming it over the original are seen
// as a change of the original. Bursts of events for one file are
// coalesced with a debounce delay.
package watcher

import (
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/dshills/osk/internal/logging"
)

// DefaultDebounce is the default coalescing delay.
const DefaultDebounce = 100 * time.Millisecond

// ErrWatcherClosed is returned when using a closed watcher.
var ErrWatcherClosed = errors.New("watcher is closed")

// Operation represents the type of file operation.
type Operation int

const (
	// OpWrite indicates the file was created or modified.
	OpWrite Operation = iota
	// OpRemove indicates the file was deleted or renamed away.
	OpRemove
)

// String returns the operation name.
func (op Operation) String() string {
	switch op {
	case OpWrite:
		return "write"
	case OpRemove:
		return "remove"
	default:
		return "unknown"
	}
}

// Event represents a file change event.
type Event struct {
	Path string
	Op   Operation
	Time time.Time
}

// Handler is called when a file change is detected. It runs on a watcher
// goroutine.
type Handler func(event Event)

// Watcher monitors files for changes.
type Watcher struct {
	mu       sync.Mutex
	fsw      *fsnotify.Watcher
	files    map[string]bool
	dirs     map[string]int
	handlers []Handler
	debounce time.Duration
	pending  map[string]*time.Timer
	log      *logging.Logger
	closed   bool
	done     chan struct{}
	wg       sync.WaitGroup
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the debounce duration for rapid changes.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d >= 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(w *Watcher) {
		w.log = l
	}
}

// New creates a watcher and starts its event goroutine.
func New(opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		fsw:      fsw,
		files:    make(map[string]bool),
		dirs:     make(map[string]int),
		debounce: DefaultDebounce,
		pending:  make(map[string]*time.Timer),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.log = logging.OrDefault(w.log).WithComponent("watcher")

	w.wg.Add(1)
	go w.processLoop()
	return w, nil
}

// Watch adds a file. The file does not need to exist yet, but its
// directory does.
func (w *Watcher) Watch(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrWatcherClosed
	}
	if w.files[abs] {
		return nil
	}
	dir := filepath.Dir(abs)
	if w.dirs[dir] == 0 {
		if err := w.fsw.Add(dir); err != nil {
			return err
		}
	}
	w.dirs[dir]++
	w.files[abs] = true
	return nil
}

// Unwatch removes a file.
func (w *Watcher) Unwatch(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.files[abs] {
		return nil
	}
	delete(w.files, abs)
	dir := filepath.Dir(abs)
	w.dirs[dir]--
	if w.dirs[dir] == 0 {
		delete(w.dirs, dir)
		return w.fsw.Remove(dir)
	}
	return nil
}

// OnChange registers a handler for file change events.
func (w *Watcher) OnChange(h Handler) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers = append(w.handlers, h)
}

// Close stops the watcher. Pending debounced events are dropped.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.done)
	for _, t := range w.pending {
		t.Stop()
	}
	w.mu.Unlock()

	w.wg.Wait()
	return w.fsw.Close()
}

func (w *Watcher) processLoop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleFSEvent(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("file watch error", "error", err)
		}
	}
}

func (w *Watcher) handleFSEvent(ev fsnotify.Event) {
	abs, err := filepath.Abs(ev.Name)
	if err != nil {
		return
	}
	var op Operation
	switch {
	case ev.Has(fsnotify.Write), ev.Has(fsnotify.Create):
		op = OpWrite
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		op = OpRemove
	default:
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed || !w.files[abs] {
		return
	}
	event := Event{Path: abs, Op: op, Time: time.Now()}
	if w.debounce == 0 {
		go w.emit(event)
		return
	}
	if t, ok := w.pending[abs]; ok {
		t.Stop()
	}
	w.pending[abs] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.pending, abs)
		closed := w.closed
		w.mu.Unlock()
		if !closed {
			w.emit(event)
		}
	})
}

func (w *Watcher) emit(ev Event) {
	w.mu.Lock()
	handlers := make([]Handler, len(w.handlers))
	copy(handlers, w.handlers)
	w.mu.Unlock()

	w.log.Debug("file changed", "path", ev.Path, "op", ev.Op.String())
	for _, h := range handlers {
		h(ev)
	}
}
