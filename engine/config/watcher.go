package config

import (
	"log"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-anim/engine/animator"
	"github.com/fsnotify/fsnotify"
)

// debounce is the quiet period a file must see before its change is reported.
const debounce = 100 * time.Millisecond

// Watcher reports changes to YAML files in the watched directories or files.
// Events carries the path of each changed file. Both channels are closed by Close.
type Watcher struct {
	watcher *fsnotify.Watcher
	Events  chan string
	Errors  chan error
	closeCh chan struct{}
	once    sync.Once
}

// NewWatcher starts watching the given paths for YAML changes.
//
// Parameters:
//   - paths: directories or files to watch
//
// Returns:
//   - *Watcher: the running watcher
//   - error: an error if a path cannot be watched
func NewWatcher(paths ...string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	for _, p := range paths {
		if err := w.Add(p); err != nil {
			_ = w.Close()
			return nil, err
		}
	}

	watcher := &Watcher{
		watcher: w,
		Events:  make(chan string, 16),
		Errors:  make(chan error, 1),
		closeCh: make(chan struct{}),
	}
	go watcher.run()
	return watcher, nil
}

// Close stops the watcher. It is safe to call more than once.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
	})
	return err
}

// Follow re-applies every changed mix file to data until the watcher is closed. Failed reloads
// are logged and leave data unchanged. A nil logger uses log.Default().
//
// Parameters:
//   - data: the state data to keep in sync
//   - logger: destination for reload results
func (w *Watcher) Follow(data *animator.StateData, logger *log.Logger) {
	if logger == nil {
		logger = log.Default()
	}
	for {
		select {
		case path, ok := <-w.Events:
			if !ok {
				return
			}
			if err := Reload(path, data); err != nil {
				logger.Printf("[MixConfig] reload failed: %v", err)
				continue
			}
			logger.Printf("[MixConfig] reloaded %s (%d mixes)", path, data.MixCount())
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			logger.Printf("[MixConfig] watch error: %v", err)
		}
	}
}

func (w *Watcher) run() {
	defer close(w.Events)
	defer close(w.Errors)

	// One timer per file, pushed back on every event, so a burst of writes is reported once
	// after the last of them.
	timers := make(map[string]*time.Timer)
	defer func() {
		for _, t := range timers {
			t.Stop()
		}
	}()
	settled := make(chan string, 16)

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if !isMixFile(event.Name) {
				continue
			}
			if t, ok := timers[event.Name]; ok {
				t.Reset(debounce)
				continue
			}
			name := event.Name
			timers[name] = time.AfterFunc(debounce, func() {
				select {
				case settled <- name:
				case <-w.closeCh:
				}
			})
		case name := <-settled:
			select {
			case w.Events <- name:
			case <-w.closeCh:
				return
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default:
			}
		case <-w.closeCh:
			return
		}
	}
}

func isMixFile(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}
