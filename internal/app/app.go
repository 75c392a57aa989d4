package app

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"procurement/internal/config"
	"procurement/internal/controller"
	"procurement/internal/logger"
	"procurement/internal/metrics"
	"procurement/internal/repository"
	"procurement/internal/router"
	"procurement/internal/service"

	"go.uber.org/zap"
)

type App struct {
	repo       *repository.Repository
	service    *service.Service
	controller *controller.Controller
	metrics    *metrics.Registry
	log        *zap.SugaredLogger
	stopSig    chan os.Signal
	cfg        *config.Config

	Done chan struct{}
}

type option func(*App)

func WithConfig(cfg *config.Config) option {
	return func(app *App) {
		app.cfg = cfg
	}
}

func WithLogger(log *zap.SugaredLogger) option {
	return func(app *App) {
		app.log = log
	}
}

func NewApp(opts ...option) (*App, error) {
	var err error

	app := &App{
		stopSig: make(chan os.Signal, 2),
		Done:    make(chan struct{}),
	}

	for _, opt := range opts {
		opt(app)
	}

	if app.cfg == nil {
		cfg, err := config.NewConfig()
		if err != nil {
			return nil, err
		}
		app.cfg = cfg
	}

	if app.log == nil {
		app.log, err = logger.New(app.cfg.LogLevel)
		if err != nil {
			return nil, err
		}
	}

	app.repo, err = repository.NewRepository(nil, &app.cfg.PostgresConfig, app.log.Named("repository"))
	if err != nil {
		return nil, err
	}

	app.metrics = metrics.NewRegistry()
	app.service = service.NewService(app.repo, app.metrics, app.log.Named("service"))
	app.controller = controller.NewController(app.service, app.log.Named("controller"))

	return app, nil
}

func (app *App) Run() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		signal.Notify(app.stopSig, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
		sig := <-app.stopSig
		app.log.Infow("received signal", "signal", sig.String())
		cancel()
	}()

	server := http.Server{
		Addr:         app.cfg.ServerAddress,
		Handler:      router.NewRouter(app.controller, app.metrics.Handler()),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		err := server.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			app.log.Errorw("http server error", "error", err)
		}
	}()

	app.log.Infof("server started at %s, listening for connections...", app.cfg.ServerAddress)
	<-ctx.Done()

	timeout, tcancel := context.WithTimeout(context.Background(), time.Second*10)
	defer tcancel()
	app.log.Info("shutting down http server...")
	server.Shutdown(timeout)

	app.log.Info("closing repository...")
	err := app.repo.Close()
	if err != nil {
		app.log.Errorw("repository closing error", "error", err)
	}

	close(app.Done)
	app.log.Info("exiting app")
	app.log.Sync()
}
