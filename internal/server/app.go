// Package server wires and runs the reference device tree server: storage,
// optional S3 snapshots, and the gRPC endpoint, with graceful shutdown on
// SIGINT/SIGTERM.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/accessconsole/internal/common"
	"github.com/dmitrijs2005/accessconsole/internal/logging"
	"github.com/dmitrijs2005/accessconsole/internal/schema"
	"github.com/dmitrijs2005/accessconsole/internal/server/config"
	"github.com/dmitrijs2005/accessconsole/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/accessconsole/internal/server/services"
	"github.com/dmitrijs2005/accessconsole/internal/wire"

	gs "github.com/dmitrijs2005/accessconsole/internal/server/grpc"
)

// snapshotter is implemented by services.SnapshotService.
type snapshotter interface {
	Save(ctx context.Context, r wire.Response) error
	Load(ctx context.Context) (wire.Response, error)
}

type App struct {
	config    *config.Config
	logger    logging.Logger
	db        *sql.DB
	tree      *services.TreeService
	snapshots snapshotter
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger, err := logging.New(c.LogFormat, os.Stdout, c.Debug)
	if err != nil {
		return nil, err
	}

	db, m, err := repomanager.Open(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	tree := services.NewTreeService(db, m, schema.Default(),
		services.WithRetention(c.DeletedRetention),
		services.WithLogger(logger),
	)

	app := &App{config: c, logger: logger, db: db, tree: tree}

	if c.SnapshotsEnabled() {
		snap, err := services.NewSnapshotService(ctx, c)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("snapshot init error: %w", err)
		}
		app.snapshots = snap
	}

	if err := app.restore(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return app, nil
}

// restore fills an empty tree from the snapshot, or from the demo site when
// there is no snapshot and seeding is on.
func (app *App) restore(ctx context.Context) error {
	if app.snapshots != nil {
		r, err := app.snapshots.Load(ctx)
		switch {
		case err == nil:
			if _, err := app.tree.Seed(ctx, r); err != nil {
				return fmt.Errorf("snapshot restore error: %w", err)
			}
			app.logger.Info(ctx, "snapshot restored", "leaves", r.Len())
			return nil
		case errors.Is(err, common.ErrNotFound):
			app.logger.Info(ctx, "no snapshot yet")
		default:
			return fmt.Errorf("snapshot load error: %w", err)
		}
	}

	if app.config.Seed {
		if _, err := app.tree.Seed(ctx, services.DemoSite()); err != nil {
			return err
		}
	}
	return nil
}

func (app *App) save(ctx context.Context) {
	if app.snapshots == nil {
		return
	}
	r, err := app.tree.Export(ctx)
	if err == nil {
		err = app.snapshots.Save(ctx, r)
	}
	if err != nil {
		app.logger.Error(ctx, "snapshot save failed", "error", err.Error())
		return
	}
	app.logger.Info(ctx, "snapshot saved", "leaves", r.Len())
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.tree, app.config.SecretKey)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is cancelled or a signal arrives, then saves a
// snapshot (when configured) and closes the database.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()

	app.save(context.WithoutCancel(ctx))
	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, err.Error())
	}
}
