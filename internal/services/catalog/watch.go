package catalog

import (
	"context"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"college-predictor/internal/utils"
)

// Watch reloads c whenever the file at path is written or replaced. It runs
// until ctx is cancelled. A failed reload keeps the previous snapshot.
//
// The parent directory is watched rather than the file, so atomic saves
// (write temp file, rename over) are seen as a Create of path.
func Watch(ctx context.Context, path string, c *Catalog) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return err
	}

	logger := utils.GetLogger()
	logger.Info("Watching cutoff file for changes", utils.String("path", abs))

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != abs {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			logger.Debug("Cutoff file changed", utils.String("op", event.Op.String()))
			_, _ = c.Reload(ctx)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error("Cutoff watcher error", utils.Error(err))
		}
	}
}
