package engine

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatchDebounce is how long a burst of file events is coalesced.
const WatchDebounce = 100 * time.Millisecond

// Watch validates the inputs once, then again every time a watched file
// changes, until ctx is cancelled. Runs never overlap; events arriving
// during a run are coalesced into the next one.
func (e *Engine) Watch(ctx context.Context, patterns []string, strict bool, report func([]*Result)) error {
	results, err := e.ValidateAll(ctx, patterns, strict)
	if err != nil {
		return err
	}
	report(results)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	paths, err := ExpandInputs(patterns)
	if err != nil {
		return err
	}
	watched := make(map[string]struct{}, len(paths))
	dirs := make(map[string]struct{})
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", p, err)
		}
		watched[abs] = struct{}{}
		dir := filepath.Dir(abs)
		if _, ok := dirs[dir]; ok {
			continue
		}
		dirs[dir] = struct{}{}
		// editors replace files on save, so watch the directory
		if err := watcher.Add(dir); err != nil {
			e.logger.Error("failed to watch directory", slog.String("dir", dir), slog.String("error", err.Error()))
		}
	}

	rerun := make(chan struct{}, 1)
	var debounceTimer *time.Timer
	defer func() {
		if debounceTimer != nil {
			debounceTimer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			abs, err := filepath.Abs(event.Name)
			if err != nil {
				continue
			}
			if _, ok := watched[abs]; !ok {
				continue
			}

			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(WatchDebounce, func() {
				e.logger.Debug("file changed, revalidating", slog.String("file", event.Name))
				select {
				case rerun <- struct{}{}:
				default:
				}
			})

		case <-rerun:
			results, err := e.ValidateAll(ctx, patterns, strict)
			if err != nil {
				if ctx.Err() != nil {
					return nil
				}
				e.logger.Error("revalidation failed", slog.String("error", err.Error()))
				continue
			}
			report(results)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			e.logger.Error("watcher error", slog.String("error", err.Error()))
		}
	}
}
