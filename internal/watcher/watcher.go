// Package watcher reloads the entrytrack configuration when its file
// changes, so a running host can adjust diagnostics verbosity or log level
// without restarting.
package watcher

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"entrytrack/internal/config"
	"entrytrack/internal/logging"
)

// DefaultDebounce is how long the config file must be quiet before a reload
// is attempted. Editors often write a file in several bursts.
const DefaultDebounce = 250 * time.Millisecond

// ReloadFunc is invoked with each successfully reloaded configuration.
type ReloadFunc func(*config.Config)

// Watcher monitors a config file and triggers reloads.
type Watcher struct {
	path     string
	onReload ReloadFunc
	debounce time.Duration
	log      *logging.Logger

	fsWatcher *fsnotify.Watcher

	done chan struct{}
	wg   sync.WaitGroup
}

// New creates a watcher for the config file at path. onReload is called
// from the watcher goroutine with each valid new configuration; invalid
// configs are logged and skipped, keeping the previous one in effect.
func New(path string, onReload ReloadFunc, log *logging.Logger) (*Watcher, error) {
	if path == "" {
		path = config.DefaultPath()
	}
	if log == nil {
		log = logging.Default()
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		path:      path,
		onReload:  onReload,
		debounce:  DefaultDebounce,
		log:       log.WithComponent("watcher"),
		fsWatcher: fsWatcher,
		done:      make(chan struct{}),
	}, nil
}

// Start begins watching. The config file's directory is watched rather than
// the file itself so that rename-over-save (the common editor pattern) keeps
// working.
func (w *Watcher) Start() error {
	absPath, err := filepath.Abs(w.path)
	if err != nil {
		return err
	}
	w.path = absPath

	if err := w.fsWatcher.Add(filepath.Dir(absPath)); err != nil {
		return err
	}

	w.wg.Add(1)
	go w.loop()
	return nil
}

// Stop shuts down the watcher.
func (w *Watcher) Stop() error {
	close(w.done)
	w.wg.Wait()
	return w.fsWatcher.Close()
}

func (w *Watcher) loop() {
	defer w.wg.Done()

	var (
		timer   *time.Timer
		timerCh <-chan time.Time
	)

	for {
		select {
		case <-w.done:
			if timer != nil {
				timer.Stop()
			}
			return

		case ev, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerCh = timer.C
			} else {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(w.debounce)
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", "error", err)

		case <-timerCh:
			w.reload()
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := config.Load(w.path)
	if err != nil {
		w.log.Warn("config reload failed, keeping previous", "path", w.path, "error", err)
		return
	}
	w.log.Info("config reloaded", "path", w.path)
	if w.onReload != nil {
		w.onReload(cfg)
	}
}
