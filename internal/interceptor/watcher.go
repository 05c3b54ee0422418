package interceptor

import (
	"context"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ShellWatcher re-warms the static cache when files of an on-disk shell
// directory change.
type ShellWatcher struct {
	dir           string
	worker        *Worker
	watcher       *fsnotify.Watcher
	mu            sync.Mutex
	debounceTimer *time.Timer
	debounceDelay time.Duration
	stopChan      chan struct{}
}

func NewShellWatcher(dir string, worker *Worker, debounce time.Duration) *ShellWatcher {
	if debounce <= 0 {
		debounce = time.Second
	}
	return &ShellWatcher{
		dir:           dir,
		worker:        worker,
		debounceDelay: debounce,
		stopChan:      make(chan struct{}),
	}
}

// Start watches dir and every directory below it.
func (sw *ShellWatcher) Start() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	sw.watcher = watcher

	err = filepath.WalkDir(sw.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return watcher.Add(path)
		}
		return nil
	})
	if err != nil {
		watcher.Close()
		return err
	}

	log.Printf("Shell watcher started for: %s", sw.dir)
	go sw.processEvents()
	return nil
}

func (sw *ShellWatcher) Stop() error {
	close(sw.stopChan)
	sw.mu.Lock()
	if sw.debounceTimer != nil {
		sw.debounceTimer.Stop()
	}
	sw.mu.Unlock()
	if sw.watcher != nil {
		return sw.watcher.Close()
	}
	return nil
}

func (sw *ShellWatcher) processEvents() {
	for {
		select {
		case event, ok := <-sw.watcher.Events:
			if !ok {
				return
			}
			sw.handleEvent(event)
		case err, ok := <-sw.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("Shell watcher error: %v", err)
		case <-sw.stopChan:
			return
		}
	}
}

func (sw *ShellWatcher) handleEvent(event fsnotify.Event) {
	// Chmod fires on plain reads in some editors.
	if event.Op == fsnotify.Chmod {
		return
	}
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			sw.watcher.Add(event.Name)
		}
	}

	sw.mu.Lock()
	if sw.debounceTimer != nil {
		sw.debounceTimer.Stop()
	}
	sw.debounceTimer = time.AfterFunc(sw.debounceDelay, sw.rewarm)
	sw.mu.Unlock()
}

func (sw *ShellWatcher) rewarm() {
	select {
	case <-sw.stopChan:
		return
	default:
	}
	log.Println("Shell files changed, re-warming the static cache")
	if err := sw.worker.WarmStatic(context.Background()); err != nil {
		log.Printf("Shell re-warm: %v", err)
	}
}
