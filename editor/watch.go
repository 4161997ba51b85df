package editor

import (
	"os"

	"github.com/fsnotify/fsnotify"
)

// FileWatcher turns real file writes into the before/after change
// callbacks spec.md §6 defines abstractly, for hosts (like cmd/orgcache's
// watch subcommand) that have no editor widget of their own and instead
// drive the cache from filesystem events.
type FileWatcher struct {
	watcher *fsnotify.Watcher
	path    string
	buf     *Buffer
	onError func(error)
}

// NewFileWatcher opens path, seeds buf with its current contents, and
// starts watching for writes. Call Close when done.
func NewFileWatcher(path string, onError func(error)) (*FileWatcher, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := w.Add(path); err != nil {
		w.Close()
		return nil, err
	}
	fw := &FileWatcher{
		watcher: w,
		path:    path,
		buf:     NewBuffer(string(data)),
		onError: onError,
	}
	go fw.loop()
	return fw, nil
}

// Buffer returns the observable Buffer kept in sync with the watched
// file; register a ChangeObserver on it to drive a cache.Cache.
func (fw *FileWatcher) Buffer() *Buffer { return fw.buf }

func (fw *FileWatcher) loop() {
	for {
		select {
		case ev, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			fw.reload()
		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			if fw.onError != nil {
				fw.onError(err)
			}
		}
	}
}

func (fw *FileWatcher) reload() {
	data, err := os.ReadFile(fw.path)
	if err != nil {
		if fw.onError != nil {
			fw.onError(err)
		}
		return
	}
	old := fw.buf.Text()
	newText := string(data)
	beg, oldEnd, newEnd := diffRegion(old, newText)
	fw.buf.Replace(beg, oldEnd, newText[beg:newEnd])
}

// diffRegion finds the shared prefix and suffix of old and new, returning
// the [beg, oldEnd) region of old that changed and the corresponding
// newEnd offset into new, so a single Replace call can express the whole
// edit rather than discarding and reinserting the entire buffer.
func diffRegion(old, updated string) (beg, oldEnd, newEnd int) {
	n := len(old)
	if len(updated) < n {
		n = len(updated)
	}
	for beg < n && old[beg] == updated[beg] {
		beg++
	}
	oi, ni := len(old), len(updated)
	for oi > beg && ni > beg && old[oi-1] == updated[ni-1] {
		oi--
		ni--
	}
	return beg, oi, ni
}

// Close stops watching and releases the underlying fsnotify watcher.
func (fw *FileWatcher) Close() error {
	return fw.watcher.Close()
}
