package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gmsas95/nutritrack/internal/api"
	"github.com/gmsas95/nutritrack/internal/auth"
	"github.com/gmsas95/nutritrack/internal/catalog"
	"github.com/gmsas95/nutritrack/internal/config"
	"github.com/gmsas95/nutritrack/internal/cron"
	"github.com/gmsas95/nutritrack/internal/metrics"
	"github.com/gmsas95/nutritrack/internal/remote"
	"github.com/gmsas95/nutritrack/internal/store"
	"github.com/gmsas95/nutritrack/internal/usecase"
	"go.uber.org/zap"
)

type App struct {
	Config     *config.Config
	Store      *store.Store
	Logger     *zap.Logger
	Metrics    *metrics.Metrics
	UseCases   *usecase.Set
	Auth       *auth.Service
	Remote     *remote.Client
	Seeder     *catalog.Seeder
	CronRunner *cron.Runner
	Version    string
}

// New wires every component on top of an open store. Nothing is started.
func New(cfg *config.Config, st *store.Store, logger *zap.Logger, version string) *App {
	m := metrics.New()

	var users usecase.UserRepository = st
	var remoteClient *remote.Client
	if cfg.Remote.Enabled {
		remoteClient = remote.NewClient(remote.Options{
			BaseURL:         cfg.Remote.BaseURL,
			APIKey:          cfg.Remote.APIKey,
			Timeout:         cfg.RemoteTimeout(),
			RequestsPerSec:  cfg.Remote.RequestsPerSec,
			Burst:           cfg.Remote.Burst,
			BreakerFailures: cfg.Remote.BreakerFailures,
			BreakerCooldown: time.Duration(cfg.Remote.BreakerCooldown) * time.Second,
		}, m, logger)
		users = remote.NewMirroredUserRepository(st, remoteClient, logger)
	}

	uc := usecase.NewSet(usecase.Repositories{
		Users:     users,
		Intakes:   st,
		Meals:     st,
		Favorites: st,
		Menu:      st,
	}, usecase.NewHealthCalculator(cfg.HealthStaleness()))

	authService := auth.NewService(auth.Config{
		Secret:          cfg.Security.JWTSecret,
		TTL:             cfg.TokenTTL(),
		BcryptCost:      cfg.Security.BcryptCost,
		MinPasswordSize: cfg.Security.MinPasswordSize,
	}, users, st, logger)

	return &App{
		Config:   cfg,
		Store:    st,
		Logger:   logger,
		Metrics:  m,
		UseCases: uc,
		Auth:     authService,
		Remote:   remoteClient,
		Seeder:   catalog.NewSeeder(uc.Catalog, cfg.Catalog.SeedFile, logger),
		Version:  version,
	}
}

// SetupCron registers the background jobs on a new runner without starting it.
func (app *App) SetupCron() error {
	runner := cron.NewRunner(cron.Config{}, app.Metrics, app.Logger)

	if err := runner.AddJob(cron.JobHealthRecompute, app.Config.Cron.HealthRecompute,
		cron.HealthRecomputeJob(app.UseCases.RecomputeStaleMetrics, app.Logger)); err != nil {
		return err
	}

	if app.Remote != nil {
		if err := runner.AddJob(cron.JobCatalogSync, app.Config.Cron.CatalogSync,
			cron.CatalogSyncJob(app.Remote, app.UseCases.Catalog, app.Store, app.Logger)); err != nil {
			return err
		}
	}

	app.CronRunner = runner
	return nil
}

// NewServer builds the HTTP API around the app's components.
func (app *App) NewServer() *api.Server {
	return api.New(app.Config, api.Deps{
		Auth:     app.Auth,
		UseCases: app.UseCases,
		Metrics:  app.Metrics,
		Storage:  app.Store,
		Version:  app.Version,
	}, app.Logger)
}

// RunServer seeds the catalog, starts background work and serves HTTP until
// SIGINT or SIGTERM.
func (app *App) RunServer() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if _, err := app.Seeder.Seed(ctx); err != nil {
		app.Logger.Error("Failed to seed meal catalog", zap.Error(err))
	}

	if app.Config.Catalog.Watch && app.Config.Catalog.SeedFile != "" {
		go func() {
			if err := app.Seeder.Watch(ctx); err != nil {
				app.Logger.Error("Catalog watcher stopped", zap.Error(err))
			}
		}()
	}

	if app.Config.Cron.Enabled {
		if err := app.SetupCron(); err != nil {
			app.Logger.Error("Failed to set up cron jobs", zap.Error(err))
		} else if err := app.CronRunner.Start(); err != nil {
			app.Logger.Error("Failed to start cron runner", zap.Error(err))
		} else {
			app.Logger.Info("Cron runner started", zap.Int("jobs", len(app.CronRunner.ListJobs())))
		}
	}

	server := app.NewServer()

	go func() {
		if err := server.Start(); err != nil {
			app.Logger.Fatal("Server error", zap.Error(err))
		}
	}()

	app.Logger.Info("Server started",
		zap.String("address", app.Config.Server.Address),
		zap.Int("port", app.Config.Server.Port),
		zap.String("url", fmt.Sprintf("http://localhost:%d", app.Config.Server.Port)),
		zap.Bool("remote", app.Remote != nil),
	)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	app.Logger.Info("Shutting down...")
	cancel()

	if app.CronRunner != nil {
		app.CronRunner.Stop()
	}

	if err := server.Shutdown(); err != nil {
		app.Logger.Error("Server shutdown error", zap.Error(err))
	}
}

// Status summarizes the installation for the status command.
type Status struct {
	Version         string        `json:"version"`
	DataDir         string        `json:"data_dir"`
	StorageOK       bool          `json:"storage_ok"`
	Stats           store.Stats   `json:"stats"`
	RemoteEnabled   bool          `json:"remote_enabled"`
	RemoteBaseURL   string        `json:"remote_base_url,omitempty"`
	LastCatalogSync time.Time     `json:"last_catalog_sync"`
	CronEnabled     bool          `json:"cron_enabled"`
	Staleness       time.Duration `json:"staleness"`
}

func (app *App) Status(ctx context.Context) (Status, error) {
	s := Status{
		Version:       app.Version,
		DataDir:       app.Config.Storage.DataDir,
		StorageOK:     app.Store.Ping() == nil,
		RemoteEnabled: app.Config.Remote.Enabled,
		RemoteBaseURL: app.Config.Remote.BaseURL,
		CronEnabled:   app.Config.Cron.Enabled,
		Staleness:     app.UseCases.Calc.Staleness(),
	}

	stats, err := app.Store.GetStats(ctx)
	if err != nil {
		return s, err
	}
	s.Stats = stats

	last, err := app.Store.GetTime(cron.LastCatalogSyncKey)
	if err != nil {
		return s, err
	}
	s.LastCatalogSync = last
	return s, nil
}
