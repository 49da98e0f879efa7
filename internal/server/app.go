// Package server initializes and runs the application server: it opens the
// database, runs migrations, constructs the blob store and services, and
// starts the HTTP endpoint with graceful shutdown on OS signals.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/mlebedeva/projectdock/internal/logging"
	"github.com/mlebedeva/projectdock/internal/server/blob"
	"github.com/mlebedeva/projectdock/internal/server/config"
	"github.com/mlebedeva/projectdock/internal/server/httpapi"
	"github.com/mlebedeva/projectdock/internal/server/repositories/repomanager"
	"github.com/mlebedeva/projectdock/internal/server/services"
)

type App struct {
	config *config.Config
	logger logging.Logger
	server *httpapi.Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := repomanager.Open(cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	repos := repomanager.NewPostgresRepositoryManager()
	if err := repos.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	store, err := blob.NewS3Store(ctx, blob.Options{
		Region:       cfg.S3Region,
		AccessKey:    cfg.S3AccessKey,
		SecretKey:    cfg.S3SecretKey,
		BaseEndpoint: cfg.S3BaseEndpoint,
	})
	if err != nil {
		return nil, fmt.Errorf("blob store init error: %w", err)
	}

	us := services.NewUserService(db, repos, cfg)
	ps := services.NewProjectService(db, repos, store, cfg, logger)
	as := services.NewAssetService(db, repos, store, cfg, logger)

	srv := httpapi.NewServer(cfg, logger, us, ps, as)

	return &App{config: cfg, logger: logger, server: srv}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.server.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()

	wg.Wait()
}
