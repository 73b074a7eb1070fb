// AngelaMos | 2026
// storage.go

package main

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/carterperez-dev/templates/lms-backend/internal/config"
	"github.com/carterperez-dev/templates/lms-backend/internal/core"
	"github.com/carterperez-dev/templates/lms-backend/internal/course"
	"github.com/carterperez-dev/templates/lms-backend/internal/enrollment"
	"github.com/carterperez-dev/templates/lms-backend/internal/health"
	"github.com/carterperez-dev/templates/lms-backend/internal/snapshot"
	"github.com/carterperez-dev/templates/lms-backend/internal/user"
)

// storage is the repository set for the configured driver.
type storage struct {
	driver      string
	users       user.Repository
	courses     course.Repository
	enrollments enrollment.Repository
	source      snapshot.Source
	checker     health.Checker
	dbStats     func() sql.DBStats
	close       func() error
}

func openStorage(
	ctx context.Context,
	cfg config.DatabaseConfig,
	logger *slog.Logger,
) (*storage, error) {
	if cfg.IsSQL() {
		return openSQLStorage(ctx, cfg, logger)
	}
	return openJSONStorage(ctx, cfg, logger)
}

func openJSONStorage(
	ctx context.Context,
	cfg config.DatabaseConfig,
	logger *slog.Logger,
) (*storage, error) {
	db, err := core.OpenJSONDB(cfg.Path, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("json database opened", "path", db.Path())

	if cfg.Watch {
		go func() {
			if err := db.Watch(ctx); err != nil {
				logger.Error("database watcher stopped", "error", err)
			}
		}()
	}

	return &storage{
		driver:      config.DriverJSON,
		users:       user.NewJSONRepository(db),
		courses:     course.NewJSONRepository(db),
		enrollments: enrollment.NewJSONRepository(db),
		source:      snapshot.JSONSource(db),
		checker:     db,
		close:       func() error { return nil },
	}, nil
}

func openSQLStorage(
	ctx context.Context,
	cfg config.DatabaseConfig,
	logger *slog.Logger,
) (*storage, error) {
	db, err := core.NewDatabase(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if err := db.Migrate(ctx); err != nil {
		_ = db.Close() //nolint:errcheck // cleanup on migration failure
		return nil, err
	}

	logger.Info("database connected",
		"driver", cfg.Driver,
		"max_open_conns", db.DB.Stats().MaxOpenConnections,
	)

	users := user.NewRepository(db.DB)
	courses := course.NewRepository(db.DB)
	enrollments := enrollment.NewRepository(db.DB)

	return &storage{
		driver:      cfg.Driver,
		users:       users,
		courses:     courses,
		enrollments: enrollments,
		source:      snapshot.RepositorySource(users, courses, enrollments),
		checker:     db,
		dbStats:     db.Stats,
		close:       db.Close,
	}, nil
}
