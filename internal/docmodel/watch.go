package docmodel

import (
	"context"
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultDebounce = 100 * time.Millisecond

// Watcher reloads a model whenever its backing file changes.
type Watcher struct {
	path     string
	model    *Model
	logger   *zap.Logger
	watcher  *fsnotify.Watcher
	debounce time.Duration
	reloaded chan struct{}
}

// NewWatcher starts watching the directory holding path. Watching the
// directory rather than the file survives editors that replace the file.
func NewWatcher(path string, model *Model, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.Wrapf(err, "docmodel: resolve %s", path)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "docmodel: create watcher")
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, errors.Wrapf(err, "docmodel: watch %s", path)
	}
	return &Watcher{
		path:     abs,
		model:    model,
		logger:   logger,
		watcher:  fw,
		debounce: defaultDebounce,
		reloaded: make(chan struct{}, 1),
	}, nil
}

// Reloaded receives a value after each successful reload. Signals are
// dropped when nobody is reading.
func (w *Watcher) Reloaded() <-chan struct{} {
	return w.reloaded
}

// Run processes file events until ctx is cancelled. A reload that fails to
// parse keeps the previous contents.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()
	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			w.logger.Debug("document changed", zap.String("file", event.Name), zap.String("op", event.Op.String()))
			pending = time.After(w.debounce)
		case <-pending:
			pending = nil
			w.reload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("document watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) reload() {
	objects, err := LoadFile(w.path)
	if err != nil {
		w.logger.Warn("document reload failed", zap.String("file", w.path), zap.Error(err))
		return
	}
	w.model.Replace(objects)
	w.logger.Info("document reloaded", zap.String("file", w.path), zap.Int("count", len(objects)))
	select {
	case w.reloaded <- struct{}{}:
	default:
	}
}

// Watch keeps model in sync with the file at path until ctx is cancelled.
func Watch(ctx context.Context, path string, model *Model, logger *zap.Logger) error {
	w, err := NewWatcher(path, model, logger)
	if err != nil {
		return err
	}
	return w.Run(ctx)
}
