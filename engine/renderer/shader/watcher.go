package shader

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/Carmen-Shannon/oxy-shadows/common"
	"github.com/fsnotify/fsnotify"
)

// Watcher reports writes to shader files so programs can be rebuilt while the demo runs.
type Watcher interface {
	// Events returns the channel of changed file paths (cleaned).
	//
	// Returns:
	//   - <-chan string: changed files, buffered; changes are dropped while the buffer is full
	Events() <-chan string

	// Errors returns the channel of watcher failures.
	//
	// Returns:
	//   - <-chan error: watcher errors
	Errors() <-chan error

	// Close stops watching and closes both channels.
	//
	// Returns:
	//   - error: error from the underlying watcher
	Close() error
}

type watcherImpl struct {
	fs     *fsnotify.Watcher
	files  map[string]struct{}
	events chan string
	errors chan error
	logger common.Logger

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

var _ Watcher = &watcherImpl{}

// NewWatcher watches the given files. The parent directories are watched instead of the
// files themselves so editors that replace files by rename are still seen.
//
// Parameters:
//   - logger: logger for dropped events (nil for none)
//   - files: the files to watch
//
// Returns:
//   - Watcher: the watcher
//   - error: error if the watcher could not be created or a directory added
func NewWatcher(logger common.Logger, files ...string) (Watcher, error) {
	if logger == nil {
		logger = common.NewNopLogger()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create shader watcher: %w", err)
	}

	w := &watcherImpl{
		fs:     fw,
		files:  make(map[string]struct{}, len(files)),
		events: make(chan string, 16),
		errors: make(chan error, 4),
		logger: logger,
		done:   make(chan struct{}),
	}

	dirs := make(map[string]struct{})
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			fw.Close()
			return nil, fmt.Errorf("resolve %s: %w", f, err)
		}
		w.files[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}
	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, fmt.Errorf("watch %s: %w", dir, err)
		}
	}

	w.wg.Add(1)
	go w.run()
	return w, nil
}

func (w *watcherImpl) Events() <-chan string {
	return w.events
}

func (w *watcherImpl) Errors() <-chan error {
	return w.errors
}

func (w *watcherImpl) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		err = w.fs.Close()
		w.wg.Wait()
		close(w.events)
		close(w.errors)
	})
	return err
}

func (w *watcherImpl) run() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) && !ev.Op.Has(fsnotify.Rename) {
				continue
			}
			name := filepath.Clean(ev.Name)
			if abs, err := filepath.Abs(name); err == nil {
				name = abs
			}
			if _, watched := w.files[name]; !watched {
				continue
			}
			select {
			case w.events <- name:
			default:
				w.logger.Debugf("shader change dropped: %s", name)
			}
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			select {
			case w.errors <- err:
			default:
				w.logger.Warnf("shader watcher error dropped: %v", err)
			}
		}
	}
}
