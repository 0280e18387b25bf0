package trajectory

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// WatchEvent reports one newly finalized artifact in a watched directory,
// or a validation failure for it.
type WatchEvent struct {
	Path      string
	SessionID string
	Err       error
}

// Watch observes dir for finalized trajectory artifacts and emits one event
// per new .json file, validating each against the artifact schema. The
// channel closes when ctx is done or the watcher fails.
func Watch(ctx context.Context, dir string, load func(path string) ([]byte, error)) (<-chan WatchEvent, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	events := make(chan WatchEvent)
	go func() {
		defer close(events)
		defer watcher.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				// Stores write to a temp file and rename; the rename is the
				// finalization signal. Direct creates are accepted too.
				if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
					continue
				}
				if !strings.HasSuffix(ev.Name, ".json") {
					continue
				}
				events <- inspect(ev.Name, load)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				events <- WatchEvent{Err: fmt.Errorf("watcher error: %w", err)}
			}
		}
	}()
	return events, nil
}

func inspect(path string, load func(path string) ([]byte, error)) WatchEvent {
	sessionID := strings.TrimSuffix(filepath.Base(path), ".json")
	data, err := load(path)
	if err != nil {
		return WatchEvent{Path: path, SessionID: sessionID, Err: err}
	}
	if err := Validate(data); err != nil {
		return WatchEvent{Path: path, SessionID: sessionID, Err: err}
	}
	return WatchEvent{Path: path, SessionID: sessionID}
}
