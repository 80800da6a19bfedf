package styles

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const watchDebounce = 50 * time.Millisecond

// ThemeWatcher reloads a theme file whenever it changes on disk.
//
// The parent directory is watched rather than the file itself so that
// editors which save by rename are still noticed.
type ThemeWatcher struct {
	path     string
	watcher  *fsnotify.Watcher
	onChange func(*Palette, error)

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// WatchTheme starts watching path. onChange is called from the watcher
// goroutine with the reloaded palette, or with an error if the new file is
// invalid. Callers running a tea.Program should forward the result with
// Program.Send and call Apply from Update.
func WatchTheme(path string, onChange func(*Palette, error)) (*ThemeWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve theme path: %w", err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	w := &ThemeWatcher{
		path:     abs,
		watcher:  watcher,
		onChange: onChange,
		stopCh:   make(chan struct{}),
	}
	w.wg.Add(1)
	go w.loop()
	return w, nil
}

// Stop stops watching and waits for the watcher goroutine to exit.
func (w *ThemeWatcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		_ = w.watcher.Close()
	})
	w.wg.Wait()
}

func (w *ThemeWatcher) loop() {
	defer w.wg.Done()

	debounce := time.NewTimer(0)
	<-debounce.C // drain initial timer
	defer debounce.Stop()

	for {
		select {
		case <-w.stopCh:
			return

		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			debounce.Reset(watchDebounce)

		case <-debounce.C:
			p, err := LoadPalette(w.path)
			w.onChange(p, err)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.onChange(nil, fmt.Errorf("theme watcher: %w", err))
		}
	}
}
