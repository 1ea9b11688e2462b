// Package watcher reports debounced changes to gazetteer data on disk.
package watcher

import (
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long a path must be quiet before a change fires.
const DefaultDebounce = 100 * time.Millisecond

// Change reports that a watched file was written, created, renamed or
// removed.
type Change struct {
	File string // Absolute path
	At   time.Time
}

// Watcher monitors a gazetteer source with fsnotify. The source is either a
// single file, in which case its parent directory is watched so atomic
// renames are seen, or a directory of data files.
type Watcher struct {
	Path    string
	Changes <-chan Change // Read-only external channel

	changes  chan Change // Internal write channel
	done     chan struct{}
	watcher  *fsnotify.Watcher
	dir      string
	names    map[string]bool // base names of interest; nil means all
	debounce time.Duration
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period before a change is emitted.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) { w.debounce = d }
}

// New creates a watcher for path. The path must exist.
func New(path string, opts ...Option) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	// Buffer of one: a pending change already means "reload".
	ch := make(chan Change, 1)
	w := &Watcher{
		Path:     abs,
		Changes:  ch,
		changes:  ch,
		done:     make(chan struct{}),
		watcher:  fw,
		dir:      abs,
		debounce: DefaultDebounce,
	}
	if !info.IsDir() {
		base := filepath.Base(abs)
		w.dir = filepath.Dir(abs)
		// SQLite in WAL mode commits into the -wal file first.
		w.names = map[string]bool{base: true, base + "-wal": true}
	}
	for _, o := range opts {
		o(w)
	}
	return w, nil
}

// Start begins watching.
func (w *Watcher) Start() error {
	if err := w.watcher.Add(w.dir); err != nil {
		return err
	}
	go w.loop()
	return nil
}

// Stop closes the watcher and the Changes channel.
func (w *Watcher) Stop() {
	w.watcher.Close()
	<-w.done // Wait for loop to exit
	close(w.changes)
}

func (w *Watcher) loop() {
	defer close(w.done)

	pending := make(map[string]time.Time)
	ticker := time.NewTicker(w.debounce / 2)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				for file := range pending {
					w.emit(file)
				}
				return
			}
			if !w.relevant(event.Name) {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
				event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove) {
				pending[event.Name] = time.Now()
			}

		case <-ticker.C:
			now := time.Now()
			for file, t := range pending {
				if now.Sub(t) >= w.debounce {
					w.emit(file)
					delete(pending, file)
				}
			}

		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			// Watch errors are non-fatal.
		}
	}
}

func (w *Watcher) relevant(name string) bool {
	if w.names == nil {
		return true
	}
	return w.names[filepath.Base(name)]
}

// emit never blocks. If a change is already queued the new one is folded
// into it.
func (w *Watcher) emit(file string) {
	select {
	case w.changes <- Change{File: file, At: time.Now()}:
	default:
	}
}
