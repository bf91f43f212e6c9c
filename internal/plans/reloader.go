package plans

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/bra3n/bra3n/internal/models"
)

// Evaluator resolves a plan type plus usage into a FeatureSet.
type Evaluator interface {
	Evaluate(plan models.PlanType, usage models.Usage) models.FeatureSet
}

// Reloader serves plan evaluations from a YAML file and hot-reloads the table
// when the file changes. A failed reload keeps the previous table.
type Reloader struct {
	path string
	log  *zap.Logger

	mu    sync.RWMutex
	table *Table
}

// NewReloader loads the plan table from path. If the file cannot be read or
// parsed, the built-in default table is used until a successful reload.
func NewReloader(path string, log *zap.Logger) *Reloader {
	r := &Reloader{path: path, log: log}
	table, err := Load(path)
	if err != nil {
		log.Warn("plan_file_load_failed_using_defaults",
			zap.String("path", path),
			zap.Error(err),
		)
		table = DefaultTable()
	}
	r.table = table
	return r
}

// Evaluate implements Evaluator against the current table snapshot.
func (r *Reloader) Evaluate(plan models.PlanType, usage models.Usage) models.FeatureSet {
	r.mu.RLock()
	table := r.table
	r.mu.RUnlock()
	return table.Evaluate(plan, usage)
}

// Start watches the plan file until ctx is cancelled. Editors often replace
// files via rename, so the watch is on the parent directory and events are
// filtered by name.
func (r *Reloader) Start(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() {
		_ = watcher.Close()
	}()

	dir := filepath.Dir(r.path)
	if err := watcher.Add(dir); err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != filepath.Clean(r.path) {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				r.reload()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			r.log.Warn("plan_file_watch_error", zap.Error(err))
		}
	}
}

func (r *Reloader) reload() {
	table, err := Load(r.path)
	if err != nil {
		r.log.Warn("plan_file_reload_failed_keeping_previous",
			zap.String("path", r.path),
			zap.Error(err),
		)
		return
	}
	r.mu.Lock()
	r.table = table
	r.mu.Unlock()
	r.log.Info("plan_file_reloaded",
		zap.String("path", r.path),
		zap.Int("plan_count", len(table.Plans)),
	)
}
