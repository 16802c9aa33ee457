package skills

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/jingkaihe/skills-mcp/pkg/logger"
	"github.com/pkg/errors"
)

// Invalidator is implemented by Registry
type Invalidator interface {
	Invalidate()
}

// Watcher marks a registry stale whenever anything under its directories
// changes, so the next listing rescans instead of waiting out the threshold.
type Watcher struct {
	target  Invalidator
	dirs    []string
	watcher *fsnotify.Watcher
}

// NewWatcher watches dirs and every directory beneath them
func NewWatcher(target Invalidator, dirs ...string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create file watcher")
	}

	w := &Watcher{target: target, dirs: dirs, watcher: fw}
	for _, dir := range dirs {
		if err := w.addTree(dir); err != nil {
			fw.Close()
			return nil, err
		}
	}

	return w, nil
}

// addTree adds dir and its subdirectories since fsnotify is not recursive
func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return errors.Wrapf(err, "failed to watch %s", dir)
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.watcher.Add(path); err != nil {
			return errors.Wrapf(err, "failed to watch %s", path)
		}
		return nil
	})
}

// Run processes events until ctx is cancelled
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	log := logger.G(ctx)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			log.WithField("file", event.Name).WithField("operation", event.Op.String()).Debug("skills directory changed")

			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addTree(event.Name); err != nil {
						log.WithError(err).Warn("failed to watch new directory")
					}
				}
			}
			w.target.Invalidate()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			log.WithError(err).Warn("error watching skills directories")
		case <-ctx.Done():
			return nil
		}
	}
}
