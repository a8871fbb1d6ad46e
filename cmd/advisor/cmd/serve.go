package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humaecho"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/collectwise/advisor/internal/api/handlers"
	"github.com/collectwise/advisor/internal/api/middleware"
	"github.com/collectwise/advisor/internal/engine"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server and watchlist scheduler",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cobraCmd *cobra.Command, _ []string) error {
	ctx := cobraCmd.Context()

	a, err := newApp(ctx, cfgFile)
	if err != nil {
		return err
	}
	defer a.Close()

	e := newServer(a)

	var sched *engine.Scheduler
	if a.cfg.Schedule.Enabled {
		sched, err = engine.NewScheduler(a.pipeline, a.store, a.cfg.Schedule.Interval, a.log)
		if err != nil {
			return fmt.Errorf("creating scheduler: %w", err)
		}
		sched.Start()
		a.log.Info("scheduler started", "interval", a.cfg.Schedule.Interval)
	}

	addr := fmt.Sprintf("%s:%d", a.cfg.Server.Host, a.cfg.Server.Port)
	a.log.Info("starting server", "addr", addr)

	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	a.log.Info("shutting down server")

	if sched != nil {
		<-sched.Stop().Done()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down server: %w", err)
	}

	a.log.Info("server stopped")
	return nil
}

// newServer builds the Echo instance with middleware and routes. The
// domain API is served through Huma mounted on Echo; health and
// metrics endpoints stay on plain Echo routes.
func newServer(a *app) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadTimeout = a.cfg.Server.ReadTimeout
	e.Server.WriteTimeout = a.cfg.Server.WriteTimeout

	e.Use(middleware.Recovery(a.log))
	e.Use(middleware.RequestLog(a.log))
	e.Use(middleware.Metrics())

	health := handlers.NewHealthHandler(a.store, len(a.cfg.Sources.Marketplaces))
	e.GET("/healthz", health.Healthz)
	e.GET("/readyz", health.Readyz)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := humaecho.New(e, huma.DefaultConfig("Collectwise Advisor API", Version))

	handlers.RegisterRecommendationRoutes(api, handlers.NewRecommendHandler(a.pipeline, a.store))
	handlers.RegisterCollectionRoutes(api, handlers.NewCollectHandler(a.collector))
	handlers.RegisterTriggerRoutes(api, handlers.NewTriggerHandler(a.triggers))
	handlers.RegisterWatchedRoutes(api, handlers.NewWatchedHandler(a.store))

	return e
}
