package feed

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// readFile serves Load for local feeds. The cache-defeating parameter has
// no meaning on disk, so the payload is read directly.
func (s *Synchronizer) readFile() ([]byte, error) {
	return os.ReadFile(s.filePath)
}

// FileWatcher reloads a local feed on write instead of polling it. Write
// bursts from editors are debounced before triggering a load; the load
// path is the same fingerprint-compare-notify flow as HTTP polling.
type FileWatcher struct {
	sync     *Synchronizer
	watcher  *fsnotify.Watcher
	debounce time.Duration

	mu    sync.Mutex
	timer *time.Timer
}

// NewFileWatcher creates a watcher for a synchronizer configured with a
// local feed path.
func NewFileWatcher(s *Synchronizer, debounce time.Duration) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if debounce <= 0 {
		debounce = 100 * time.Millisecond
	}

	fw := &FileWatcher{
		sync:     s,
		watcher:  watcher,
		debounce: debounce,
	}

	if err := watcher.Add(s.filePath); err != nil {
		watcher.Close()
		return nil, err
	}

	return fw, nil
}

// Start begins watching. Watch errors are logged and never terminate the
// loop, matching the poll timer's failure policy.
func (fw *FileWatcher) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-fw.watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
					fw.schedule(ctx)
				}
			case err, ok := <-fw.watcher.Errors:
				if !ok {
					return
				}
				fw.sync.logger.Warn(ctx, err, "feed file watch error")
			}
		}
	}()
}

// schedule arms (or re-arms) the debounce timer.
func (fw *FileWatcher) schedule(ctx context.Context) {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if fw.timer != nil {
		fw.timer.Stop()
	}
	fw.timer = time.AfterFunc(fw.debounce, func() {
		if _, err := fw.sync.Load(ctx, true); err != nil {
			fw.sync.logger.Warn(ctx, err, "feed file reload failed, keeping last snapshot")
		}
	})
}

// Stop stops watching and releases the underlying watcher.
func (fw *FileWatcher) Stop() error {
	fw.mu.Lock()
	if fw.timer != nil {
		fw.timer.Stop()
	}
	fw.mu.Unlock()
	return fw.watcher.Close()
}
