package folio

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch invalidates the library whenever a content file or directory under
// its root changes. Directories created later are watched as well. Watch
// blocks until ctx is done.
func (l *Library) Watch(ctx context.Context) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer w.Close()

	if err := addTree(w, l.dir); err != nil {
		return fmt.Errorf("watch %s: %w", l.dir, err)
	}
	l.logger.Infof("Watching %s for content changes", l.dir)

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			l.handleEvent(w, event)
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			l.logger.Warnf("Content watcher error: %v", err)
		}
	}
}

func (l *Library) handleEvent(w *fsnotify.Watcher, event fsnotify.Event) {
	if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) {
		return
	}
	if event.Has(fsnotify.Create) {
		if err := addTree(w, event.Name); err == nil {
			l.Invalidate()
			return
		}
	}
	if !isContentFile(event.Name) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}
	l.logger.Debugf("%s %s: invalidating library", event.Op, event.Name)
	l.Invalidate()
}

// addTree watches root and every directory below it. It fails when root
// is not a directory.
func addTree(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			if path == root {
				return fmt.Errorf("%s is not a directory", root)
			}
			return nil
		}
		return w.Add(path)
	})
}
