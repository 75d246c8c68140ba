package cron

import (
	"context"
	"errors"
	"time"

	"github.com/gmsas95/nutritrack/internal/catalog"
	"github.com/gmsas95/nutritrack/internal/result"
	"github.com/gmsas95/nutritrack/internal/store"
	"github.com/gmsas95/nutritrack/internal/usecase"
	"go.uber.org/zap"
)

// Job names.
const (
	JobHealthRecompute = "health_recompute"
	JobCatalogSync     = "catalog_sync"
)

// LastCatalogSyncKey is the KV key holding the time of the last successful
// catalog sync.
const LastCatalogSyncKey = "catalog:last_sync"

// MealFetcher downloads a remote meal catalog.
type MealFetcher interface {
	FetchMeals(ctx context.Context) ([]store.Meal, error)
}

// TimeStore persists timestamps.
type TimeStore interface {
	SetTime(key string, t time.Time) error
	GetTime(key string) (time.Time, error)
}

// HealthRecomputeJob refreshes stale health metrics.
func HealthRecomputeJob(uc *usecase.RecomputeStaleMetrics, logger *zap.Logger) JobFunc {
	return func(ctx context.Context) error {
		n, err := result.Get(uc.Execute(ctx))
		var partial *usecase.RecomputeError
		if errors.As(err, &partial) {
			logger.Warn("Health metrics recompute incomplete",
				zap.Int("users", partial.Updated),
				zap.Int("failed", len(partial.Failures)),
				zap.Error(err),
			)
		}
		if err != nil {
			return err
		}
		logger.Info("Health metrics recomputed", zap.Int("users", n))
		return nil
	}
}

// CatalogSyncJob pulls the remote catalog into the local store and records
// when it last succeeded.
func CatalogSyncJob(fetcher MealFetcher, importer catalog.Importer, kv TimeStore, logger *zap.Logger) JobFunc {
	return func(ctx context.Context) error {
		meals, err := fetcher.FetchMeals(ctx)
		if err != nil {
			return err
		}
		n, err := result.Get(importer.Import(ctx, meals))
		if err != nil {
			return err
		}
		if err := kv.SetTime(LastCatalogSyncKey, time.Now()); err != nil {
			logger.Warn("Failed to record catalog sync time", zap.Error(err))
		}
		logger.Info("Remote catalog synced", zap.Int("meals", len(meals)), zap.Int("rows", n))
		return nil
	}
}
