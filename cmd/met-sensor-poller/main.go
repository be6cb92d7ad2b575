package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	httpapi "github.com/metpoll/met-sensor-poller/internal/api/http"
	"github.com/metpoll/met-sensor-poller/internal/config"
	"github.com/metpoll/met-sensor-poller/internal/forecast"
	"github.com/metpoll/met-sensor-poller/internal/poller"
	"github.com/metpoll/met-sensor-poller/internal/scheduler"
	"github.com/metpoll/met-sensor-poller/internal/sensor"
	"github.com/metpoll/met-sensor-poller/internal/store"
)

func main() {
	zlog, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer zlog.Sync()

	// Load configuration. Missing coordinates abort setup.
	cfg, err := config.Load()
	if err != nil {
		zlog.Fatal("failed to load config", zap.Error(err))
	}

	adapter, err := forecast.AdapterFor(cfg.Schema)
	if err != nil {
		zlog.Fatal("failed to select schema adapter", zap.Error(err))
	}

	// Shared HTTP client for the forecast fetch and the webhook publisher.
	httpClient := &http.Client{
		Timeout: poller.FetchTimeout,
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// Sensor state history with configured retention.
	history := store.NewHistory(cfg.StoreMaxHistory, cfg.StoreMaxAge)

	// Publishers receiving state changes.
	publishers := sensor.Multi{
		sensor.LogPublisher{Log: zlog},
		sensor.NewMetricsPublisher(registry),
		history,
	}
	if cfg.WebhookURL != "" {
		publishers = append(publishers, sensor.NewWebhookPublisher(cfg.WebhookURL, httpClient, zlog))
	}

	// One sensor per monitored condition.
	sensors := make([]*sensor.Sensor, 0, len(cfg.Conditions))
	for _, ft := range cfg.Conditions {
		sensors = append(sensors, sensor.New(cfg.NamePrefix, ft))
	}
	set := sensor.NewSet(sensors, publishers)

	sched := scheduler.New(zlog)
	sched.Start()
	defer sched.Stop()

	p := poller.New(poller.Config{
		Endpoint:       cfg.Endpoint,
		Adapter:        adapter,
		Latitude:       cfg.Latitude,
		Longitude:      cfg.Longitude,
		Elevation:      cfg.Elevation,
		ForecastOffset: cfg.ForecastOffset,
		Client:         httpClient,
		Scheduler:      sched,
		Sensors:        set,
		Logger:         zlog,
		Registry:       registry,
	})
	if err := p.Start(); err != nil {
		zlog.Fatal("failed to start poller", zap.Error(err))
	}

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "met-sensor-poller",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
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

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "met-sensor-poller",
		})
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	// API routes.
	httpapi.RegisterRoutes(app, set, history, p)

	// Start server with graceful shutdown
	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}

	go func() {
		if err := app.Listen(":" + port); err != nil {
			zlog.Error("fiber server stopped", zap.Error(err))
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		zlog.Error("error during shutdown", zap.Error(err))
	}
}
