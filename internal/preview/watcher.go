package preview

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"fotosite/internal/logging"
)

// debounceDelay is how long the watcher waits after the last event before
// triggering a rebuild. Exports and bulk copies touch many files in quick
// succession; one rebuild covers all of them.
const debounceDelay = 500 * time.Millisecond

// watcher watches the source tree recursively and calls onChange after
// events settle.
type watcher struct {
	fsw      *fsnotify.Watcher
	dir      string
	onChange func()
}

func newWatcher(dir string, onChange func()) (*watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &watcher{fsw: fsw, dir: dir, onChange: onChange}
	if err := w.addRecursive(dir); err != nil {
		fsw.Close()
		return nil, err
	}
	return w, nil
}

// addRecursive registers dir and every non-hidden subdirectory.
// fsnotify watches are not recursive on their own.
func (w *watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") && path != dir {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
}

func (w *watcher) run(ctx context.Context) {
	defer w.fsw.Close()
	logging.Info("Watching %s for changes", w.dir)

	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if w.ignore(event) {
				continue
			}
			// New directories need their own watch before their contents
			// produce events.
			if event.Op.Has(fsnotify.Create) {
				if err := w.addRecursive(event.Name); err != nil {
					logging.Debug("Watching new path %s: %v", event.Name, err)
				}
			}
			logging.Debug("Source event: %s", event)
			if timer == nil {
				timer = time.NewTimer(debounceDelay)
				timerC = timer.C
			} else {
				timer.Reset(debounceDelay)
			}

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			logging.Warn("Watcher error: %v", err)

		case <-timerC:
			timer = nil
			timerC = nil
			w.onChange()
		}
	}
}

// ignore filters events for hidden files and bare chmods, which editors
// and backup tools generate constantly without content changes.
func (w *watcher) ignore(event fsnotify.Event) bool {
	if event.Op == fsnotify.Chmod {
		return true
	}
	base := filepath.Base(event.Name)
	return strings.HasPrefix(base, ".")
}
