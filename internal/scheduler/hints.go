package scheduler

import (
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// hintWatcher watches the directory holding the log file. Watching the
// directory rather than the file keeps working across rename and
// recreate-style rotation.
type hintWatcher struct {
	fsw    *fsnotify.Watcher
	dir    string
	target string
}

func newHintWatcher(path string) (*hintWatcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create fs watcher: %w", err)
	}
	h := &hintWatcher{fsw: fsw}
	if err := h.retarget(path); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return h, nil
}

func (h *hintWatcher) retarget(path string) error {
	target := filepath.Clean(path)
	dir := filepath.Dir(target)
	if dir != h.dir {
		if h.dir != "" {
			_ = h.fsw.Remove(h.dir)
		}
		if err := h.fsw.Add(dir); err != nil {
			h.dir = ""
			return fmt.Errorf("watch %s: %w", dir, err)
		}
		h.dir = dir
	}
	h.target = target
	return nil
}

// relevant reports whether ev could change what a tick would observe.
func (h *hintWatcher) relevant(ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) != h.target {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) ||
		ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename)
}

func (h *hintWatcher) events() <-chan fsnotify.Event { return h.fsw.Events }
func (h *hintWatcher) errs() <-chan error            { return h.fsw.Errors }

func (h *hintWatcher) close() error {
	return h.fsw.Close()
}
