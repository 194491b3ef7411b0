// Package server wires configuration, storage and transports into the
// running Oasis server and supervises them until shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/oasis/internal/dbx"
	"github.com/dmitrijs2005/oasis/internal/filex"
	"github.com/dmitrijs2005/oasis/internal/logging"
	"github.com/dmitrijs2005/oasis/internal/server/auth"
	"github.com/dmitrijs2005/oasis/internal/server/config"
	"github.com/dmitrijs2005/oasis/internal/server/mirror"
	"github.com/dmitrijs2005/oasis/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/oasis/internal/server/rest"
	"github.com/dmitrijs2005/oasis/internal/server/services"
	"github.com/dmitrijs2005/oasis/internal/server/uploads"
	"golang.org/x/sync/errgroup"

	gs "github.com/dmitrijs2005/oasis/internal/server/grpc"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	http   *rest.Server
	grpc   *gs.GRPCServer
	reaper *uploads.Reaper
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	level, err := logging.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	logger := logging.NewJSONLogger(os.Stdout, level)

	db, dialect, err := dbx.Open(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	app, err := newApp(ctx, c, logger, db, dialect)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return app, nil
}

func newApp(ctx context.Context, c *config.Config, logger logging.Logger, db *sql.DB, dialect dbx.Dialect) (*App, error) {
	rm := repomanager.NewSQLRepositoryManager(dialect)
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migrations: %w", err)
	}

	fs, err := filex.Open(c.StorageRoot)
	if err != nil {
		return nil, fmt.Errorf("storage root: %w", err)
	}

	store := uploads.NewTempStore(fs)
	if err := store.Purge(); err != nil {
		return nil, err
	}
	for _, dir := range []string{uploads.TmpDirName, uploads.FilesDirName} {
		if err := filex.EnsureDir(fs, dir); err != nil {
			return nil, fmt.Errorf("storage root: %w", err)
		}
	}

	coordinator := uploads.NewCoordinator(
		uploads.NewRegistry(store),
		store,
		uploads.NewCombiner(fs, store, c.MaxCollisionAttempts),
		uploads.NewGate(services.NewFolderOwners(db, rm)),
		logger,
	)

	var mr services.Mirror
	if c.MirrorEnabled {
		m, err := mirror.New(ctx, mirror.Options{
			User:         c.S3RootUser,
			Password:     c.S3RootPassword,
			Bucket:       c.S3Bucket,
			Region:       c.S3Region,
			BaseEndpoint: c.S3BaseEndpoint,
		}, fs, logger)
		if err != nil {
			return nil, fmt.Errorf("mirror: %w", err)
		}
		mr = m
	}

	svc := services.NewUploadService(db, rm, coordinator, mr, logger)

	return &App{
		config: c,
		logger: logger,
		db:     db,
		http:   rest.NewServer(c.EndpointAddrHTTP, svc, auth.NewValidator(c.SecretKey), c.MaxSliceBytes, logger),
		grpc:   gs.NewGRPCServer(c.EndpointAddrGRPC, logger),
		reaper: uploads.NewReaper(coordinator, c.StaleUploadTTL, c.ReaperInterval, logger),
	}, nil
}

// Run serves until ctx is cancelled, a termination signal arrives, or one
// of the servers fails. The database is closed on return.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()
	defer app.db.Close()

	app.logger.Info(ctx, "Starting app...")

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return app.http.Run(ctx) })
	g.Go(func() error { return app.grpc.Run(ctx) })
	g.Go(func() error { return app.reaper.Run(ctx) })

	err := g.Wait()
	app.logger.Info(ctx, "App stopped")
	return err
}
