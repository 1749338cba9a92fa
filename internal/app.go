package internal

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"signalkit/internal/controllers"
	"signalkit/internal/persistence/interfaces"
	"signalkit/internal/providers"
	"signalkit/internal/structures"
)

type App struct {
	WebServer *http.Server

	logger    providers.Logger
	scheduler interfaces.SchedulerInterface
	limiter   *providers.RateLimiter
}

// NewApp restores the options snapshot and assembles the HTTP server. A
// corrupt snapshot aborts startup rather than being overwritten by the
// next save.
func NewApp(
	healthController *controllers.HealthController,
	scheduler interfaces.SchedulerInterface,
	limiter *providers.RateLimiter,
	conf *structures.Config,
	logger providers.Logger,
	router providers.RouterProviderInterface,
	metrics providers.MetricsProviderInterface,
) (*App, error) {
	apiMux := http.NewServeMux()
	for _, route := range router.GetRoutes() {
		apiMux.Handle(route.Url, route.Handler)
	}

	instrumentedAPI := providers.MetricsMiddleware(metrics, apiMux)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthController.Health)
	if conf.Metrics.Enabled {
		mux.Handle("/metrics", promhttp.Handler())
	}
	mux.Handle("/", instrumentedAPI)

	logger.Infof(providers.TypeApp, "Starting %s", conf.AppName)
	if err := scheduler.Restore(); err != nil {
		return nil, fmt.Errorf("restore options from %s: %w", conf.Persistence.FilePath, err)
	}

	return &App{
		WebServer: &http.Server{
			Addr:         conf.WebServer.Host + ":" + strconv.Itoa(conf.WebServer.Port),
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		logger:    logger,
		scheduler: scheduler,
		limiter:   limiter,
	}, nil
}

// Run serves until SIGINT/SIGTERM, then drains connections and writes a
// final snapshot.
func (app *App) Run() error {
	app.scheduler.Init()

	serverErr := make(chan error, 1)
	go func() {
		app.logger.Infof(providers.TypeApp, "Listening HTTP clients on %s", app.WebServer.Addr)
		if err := app.WebServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	var runErr error
	select {
	case <-stop:
		app.logger.Infof(providers.TypeApp, "Shutdown signal received")
	case err := <-serverErr:
		runErr = fmt.Errorf("server error: %w", err)
	}

	app.scheduler.Stop()
	app.limiter.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.WebServer.Shutdown(ctx); err != nil && runErr == nil {
		runErr = err
	}
	if err := app.scheduler.Persist(); err != nil && runErr == nil {
		runErr = err
	}
	app.scheduler.Close()
	if runErr == nil {
		app.logger.Infof(providers.TypeApp, "gracefully stopped")
	}
	app.logger.Close()
	return runErr
}
