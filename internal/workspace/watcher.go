package workspace

import (
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charlievieth/fastwalk"
	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

const debounceDelay = 200 * time.Millisecond

// Watcher reports filesystem changes under the workspace. Bursts of events
// collapse into one onChange call.
type Watcher struct {
	ws       *Workspace
	watcher  *fsnotify.Watcher
	log      *log.Logger
	mu       sync.Mutex
	timer    *time.Timer
	changed  map[string]bool
	onChange func(paths []string)
	done     chan struct{}
}

// NewWatcher watches every non-ignored directory of ws. onChange receives
// the absolute paths touched since the previous call.
func NewWatcher(ws *Workspace, logger *log.Logger, onChange func(paths []string)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}

	w := &Watcher{
		ws:       ws,
		watcher:  fw,
		log:      logger,
		changed:  make(map[string]bool),
		onChange: onChange,
		done:     make(chan struct{}),
	}
	w.addTree(ws.Root)
	return w, nil
}

func (w *Watcher) addTree(root string) {
	conf := fastwalk.Config{Follow: false}
	fastwalk.Walk(&conf, root, func(path string, d fs.DirEntry, err error) error { //nolint:errcheck // best effort
		if err != nil || !d.IsDir() {
			return nil
		}
		if rel, _ := filepath.Rel(w.ws.Root, path); rel != "." && w.ws.Ignored(rel) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			w.log.Debug("watch dir", "path", path, "err", err)
		}
		return nil
	})
}

// Start begins watching for changes. Blocks until Stop is called.
func (w *Watcher) Start() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("workspace watcher", "err", err)

		case <-w.done:
			return
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := event.Name
	if rel, err := filepath.Rel(w.ws.Root, path); err == nil && w.ws.Ignored(rel) {
		return
	}
	if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) {
		return
	}

	// New directories need their own watch.
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			w.addTree(path)
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.changed[path] = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(debounceDelay, w.flush)
}

func (w *Watcher) flush() {
	w.mu.Lock()
	paths := make([]string, 0, len(w.changed))
	for p := range w.changed {
		paths = append(paths, p)
	}
	w.changed = make(map[string]bool)
	w.timer = nil
	w.mu.Unlock()

	if len(paths) > 0 && w.onChange != nil {
		w.onChange(paths)
	}
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	close(w.done)
	return w.watcher.Close()
}
