package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/skyfleet/balloon-quake-aggregation/internal/aggregator"
	httpapi "github.com/skyfleet/balloon-quake-aggregation/internal/api/http"
	"github.com/skyfleet/balloon-quake-aggregation/internal/config"
	"github.com/skyfleet/balloon-quake-aggregation/internal/observability"
	"github.com/skyfleet/balloon-quake-aggregation/internal/scheduler"
	"github.com/skyfleet/balloon-quake-aggregation/internal/source"
	"github.com/skyfleet/balloon-quake-aggregation/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	// Shared HTTP client for outbound upstream calls.
	httpClient := &http.Client{
		Timeout: cfg.FetchTimeout,
	}

	backoff := source.BackoffConfig{
		MaxRetries:      cfg.FetchMaxRetries,
		InitialInterval: 500 * time.Millisecond,
		MaxInterval:     5 * time.Second,
	}
	balloons := source.NewBalloonClient(httpClient, cfg.BalloonBaseURL, backoff, nil)
	quakes := source.NewQuakeClient(httpClient, cfg.QuakeFeedURL, backoff)

	metrics := observability.NewMetrics()

	service := aggregator.New(balloons, quakes, aggregator.Options{
		LookbackHours: cfg.LookbackHours,
		FetchTimeout:  cfg.FetchTimeout,
		QuakeLimit:    cfg.QuakeLimit,
		Metrics:       metrics,
	})

	inquiries, err := store.NewInquiryStore(cfg.InquiryDBPath, nil)
	if err != nil {
		log.Fatalf("failed to open inquiry store: %v", err)
	}
	defer inquiries.Close()

	// Eager first cycle so the read surface starts ready.
	log.Println("running initial refresh cycle")
	service.Refresh(context.Background())

	sched := scheduler.New(service, cfg.RefreshInterval)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	app := fiber.New(fiber.Config{
		AppName:               "balloon-quake-aggregation",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "balloon-quake-aggregation",
			"ready":   service.Ready(),
		})
	})

	httpapi.RegisterRoutes(app, service, inquiries, metrics)

	// Prometheus metrics on a separate listener.
	metricsSrv := &http.Server{Addr: cfg.MetricsAddr, Handler: promhttp.Handler()}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("metrics server stopped: %v", err)
		}
	}()

	go func() {
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("error during metrics shutdown: %v", err)
	}
}
