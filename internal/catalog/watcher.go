package catalog

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gmsas95/nutritrack/internal/result"
	"github.com/gmsas95/nutritrack/internal/store"
	"go.uber.org/zap"
)

// Importer upserts catalog meals.
type Importer interface {
	Import(ctx context.Context, meals []store.Meal) result.Result[int]
}

// Seeder loads a seed file, or the built-in catalog when no file is set,
// into the store.
type Seeder struct {
	importer Importer
	path     string
	logger   *zap.Logger
	debounce time.Duration
}

func NewSeeder(importer Importer, path string, logger *zap.Logger) *Seeder {
	return &Seeder{importer: importer, path: path, logger: logger, debounce: 500 * time.Millisecond}
}

// Seed imports the catalog once and returns the number of rows written.
func (s *Seeder) Seed(ctx context.Context) (int, error) {
	var (
		meals []store.Meal
		err   error
	)
	if s.path == "" {
		meals, err = Builtin()
	} else {
		meals, err = LoadFile(s.path)
	}
	if err != nil {
		return 0, err
	}

	n, err := result.Get(s.importer.Import(ctx, meals))
	if err != nil {
		return 0, err
	}
	s.logger.Info("Meal catalog seeded",
		zap.String("source", s.source()),
		zap.Int("meals", len(meals)),
		zap.Int("rows", n),
	)
	return n, nil
}

func (s *Seeder) source() string {
	if s.path == "" {
		return "builtin"
	}
	return s.path
}

// Watch re-seeds whenever the seed file changes until ctx is done. The
// parent directory is watched so editors that replace the file are noticed.
func (s *Seeder) Watch(ctx context.Context) error {
	if s.path == "" {
		return fmt.Errorf("no seed file configured")
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	target := filepath.Clean(s.path)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filepath.Dir(target), err)
	}
	s.logger.Info("Watching meal catalog", zap.String("path", target))

	var (
		timer   *time.Timer
		pending <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(s.debounce)
			} else {
				timer.Reset(s.debounce)
			}
			pending = timer.C

		case <-pending:
			pending = nil
			if _, err := s.Seed(ctx); err != nil {
				s.logger.Warn("Failed to reload meal catalog", zap.Error(err))
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("Catalog watcher error", zap.Error(err))
		}
	}
}
