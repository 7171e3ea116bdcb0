package storage

import (
	"log"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const watchDebounce = 200 * time.Millisecond

// Watcher observes a FileStore's directory for external writes (for
// example a sync tool replacing files underneath a running instance)
// and reports which keys changed. Bursts of events for the same key
// are debounced into a single callback.
type Watcher struct {
	fsw      *fsnotify.Watcher
	onChange func(key string)
	log      *log.Logger

	mu      sync.Mutex
	pending map[string]*time.Timer
	done    chan struct{}
}

// NewWatcher starts watching the file store directory. onChange is
// invoked from a background goroutine once per changed key.
func NewWatcher(store *FileStore, onChange func(key string), logger *log.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(store.Dir()); err != nil {
		fsw.Close()
		return nil, err
	}

	w := &Watcher{
		fsw:      fsw,
		onChange: onChange,
		log:      logger,
		pending:  make(map[string]*time.Timer),
		done:     make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			name := filepath.Base(event.Name)
			if !strings.HasSuffix(name, ".val") {
				continue
			}
			w.schedule(strings.TrimSuffix(name, ".val"))
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			if w.log != nil {
				w.log.Printf("watcher error: %v", err)
			}
		case <-w.done:
			return
		}
	}
}

func (w *Watcher) schedule(key string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.pending[key]; ok {
		timer.Stop()
	}
	w.pending[key] = time.AfterFunc(watchDebounce, func() {
		w.mu.Lock()
		delete(w.pending, key)
		w.mu.Unlock()
		w.onChange(key)
	})
}

func (w *Watcher) Close() error {
	close(w.done)

	w.mu.Lock()
	for key, timer := range w.pending {
		timer.Stop()
		delete(w.pending, key)
	}
	w.mu.Unlock()

	return w.fsw.Close()
}
