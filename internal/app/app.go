// Package app wires configuration, the cutoff catalog and the predictor
// service together for the server, CLI and Lambda entry points.
package app

import (
	"context"
	"fmt"
	"time"

	"college-predictor/internal/config"
	"college-predictor/internal/metrics"
	"college-predictor/internal/services/catalog"
	"college-predictor/internal/services/database"
	"college-predictor/internal/services/predictor"
	s3service "college-predictor/internal/services/s3"
	"college-predictor/internal/utils"
)

// App holds the long-lived components of a running process.
type App struct {
	Config    *config.Config
	Catalog   *catalog.Catalog
	Predictor *predictor.Service
	Metrics   *metrics.Metrics
	DB        *database.DB
}

// NewLoader builds the loader selected by cfg.CutoffSource. The returned
// *database.DB is non-nil only for the postgres source and must be closed
// by the caller.
func NewLoader(ctx context.Context, cfg *config.Config) (catalog.Loader, *database.DB, error) {
	switch cfg.CutoffSource {
	case config.SourceFile:
		return catalog.NewFileLoader(cfg.CutoffCSVPath), nil, nil

	case config.SourceS3:
		svc, err := s3service.NewService(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		return catalog.NewS3Loader(svc, cfg.S3Key), nil, nil

	case config.SourcePostgres:
		db, err := database.New(cfg)
		if err != nil {
			return nil, nil, err
		}
		repo := database.NewCutoffRepository(db, cfg.DBCutoffTable)
		return catalog.NewDBLoader(repo, cfg.DBName+"/"+repo.Table()), db, nil
	}
	return nil, nil, fmt.Errorf("unknown cutoff source %q", cfg.CutoffSource)
}

// New builds an App from configuration and performs the initial load. A
// failed initial load is fatal: the caller should exit rather than serve.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	loader, db, err := NewLoader(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create cutoff loader: %w", err)
	}
	return NewWithLoader(ctx, cfg, loader, db)
}

// NewWithLoader is New with an explicit loader.
func NewWithLoader(ctx context.Context, cfg *config.Config, loader catalog.Loader, db *database.DB) (*App, error) {
	order, err := predictor.ParseOrder(cfg.StatusOrder)
	if err != nil {
		return nil, err
	}

	m := metrics.New()
	cat := catalog.New(loader, func(snap *catalog.Snapshot, err error, _ time.Duration) {
		if err != nil {
			m.ObserveReload(err, 0, 0, time.Time{})
			return
		}
		m.ObserveReload(nil, snap.Len(), snap.Version(), snap.LoadedAt())
	})

	if _, err := cat.Reload(ctx); err != nil {
		if db != nil {
			db.Close()
		}
		return nil, err
	}

	return &App{
		Config:    cfg,
		Catalog:   cat,
		Predictor: predictor.NewService(cat, predictor.WithOrder(order), predictor.WithMetrics(m)),
		Metrics:   m,
		DB:        db,
	}, nil
}

// StartBackground launches file watching and periodic reload as configured.
// Both stop when ctx is cancelled.
func (a *App) StartBackground(ctx context.Context) {
	logger := utils.GetLogger()

	if a.Config.WatchFile && a.Config.CutoffSource == config.SourceFile {
		go func() {
			if err := catalog.Watch(ctx, a.Config.CutoffCSVPath, a.Catalog); err != nil {
				logger.Error("Cutoff file watch stopped", utils.Error(err))
			}
		}()
	}

	if a.Config.ReloadInterval > 0 {
		logger.Info("Periodic cutoff reload enabled", utils.Duration("interval", a.Config.ReloadInterval))
		go a.Catalog.RunPeriodicReload(ctx, a.Config.ReloadInterval)
	}
}

// Close releases held resources.
func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
	}
}
