package assets

import (
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spaghettifunk/on3d/engine/core"
)

// SourceWatcher reports changes below an asset source directory. It feeds
// offline tooling such as `on3d build --watch`; attached archives are never
// reloaded from it.
type SourceWatcher struct {
	fsnotify *fsnotify.Watcher

	mutex    sync.Mutex
	isClosed bool

	done    chan struct{}
	stopped chan struct{}
	changes chan string
	errors  chan error
}

func NewSourceWatcher() (*SourceWatcher, error) {
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	sw := &SourceWatcher{
		fsnotify: fsWatch,
		done:     make(chan struct{}),
		stopped:  make(chan struct{}),
		changes:  make(chan string),
		errors:   make(chan error),
	}
	go sw.start()
	return sw, nil
}

// Changes delivers the path of every created, written, removed or renamed file.
func (sw *SourceWatcher) Changes() <-chan string {
	return sw.changes
}

func (sw *SourceWatcher) Errors() <-chan error {
	return sw.errors
}

// AddRecursive starts watching the named directory and all sub-directories.
func (sw *SourceWatcher) AddRecursive(name string) error {
	sw.mutex.Lock()
	defer sw.mutex.Unlock()
	if sw.isClosed {
		return errors.New("source watcher already closed")
	}
	return sw.watchRecursive(name)
}

// Close stops the watcher and closes both channels.
func (sw *SourceWatcher) Close() error {
	sw.mutex.Lock()
	if sw.isClosed {
		sw.mutex.Unlock()
		return nil
	}
	sw.isClosed = true
	sw.mutex.Unlock()

	close(sw.done)
	<-sw.stopped
	return nil
}

func (sw *SourceWatcher) start() {
	defer func() {
		sw.fsnotify.Close()
		close(sw.changes)
		close(sw.errors)
		close(sw.stopped)
	}()
	for {
		select {
		case e, ok := <-sw.fsnotify.Events:
			if !ok {
				return
			}
			if e.Op&fsnotify.Create != 0 {
				if s, err := os.Stat(e.Name); err == nil && s.IsDir() {
					sw.mutex.Lock()
					if err := sw.watchRecursive(e.Name); err != nil {
						core.LogWarn("watch %s: %s", e.Name, err)
					}
					sw.mutex.Unlock()
					continue
				}
			}
			if e.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			select {
			case sw.changes <- e.Name:
			case <-sw.done:
				return
			}

		case err, ok := <-sw.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError("watch: %s", err)
			select {
			case sw.errors <- err:
			case <-sw.done:
				return
			}

		case <-sw.done:
			return
		}
	}
}

// watchRecursive adds all directories under the given one to the watch list.
// A file created before its directory watch is in place is missed, which the
// next write to the tree makes up for.
func (sw *SourceWatcher) watchRecursive(path string) error {
	return filepath.WalkDir(path, func(walkPath string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return sw.fsnotify.Add(walkPath)
		}
		return nil
	})
}
