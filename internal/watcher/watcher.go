// Package watcher reports changes to the shared CSV sources.
package watcher

import (
	"context"
	"log"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// FileWatcher watches individual files through their parent directories, so
// that editors replacing a file by rename are noticed too.
type FileWatcher struct {
	watcher *fsnotify.Watcher
	files   map[string]bool
}

func New() (*FileWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &FileWatcher{watcher: w, files: make(map[string]bool)}, nil
}

// Watch emits the path of a watched file each time it is created or written.
// The channel closes when ctx is done or the watcher is stopped.
func (w *FileWatcher) Watch(ctx context.Context, paths ...string) (<-chan string, error) {
	dirs := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, err
		}
		w.files[abs] = true
		dirs[filepath.Dir(abs)] = true
	}
	for dir := range dirs {
		if err := w.watcher.Add(dir); err != nil {
			return nil, err
		}
	}

	changes := make(chan string, 16)

	go func() {
		defer close(changes)
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.watcher.Events:
				if !ok {
					return
				}
				if !w.files[filepath.Clean(event.Name)] {
					continue
				}
				if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
					continue
				}
				select {
				case changes <- event.Name:
				case <-ctx.Done():
					return
				}
			case err, ok := <-w.watcher.Errors:
				if !ok {
					return
				}
				log.Printf("⚠️ file watcher error: %v", err)
			}
		}
	}()

	return changes, nil
}

func (w *FileWatcher) Stop() error {
	return w.watcher.Close()
}
