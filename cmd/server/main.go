// Package main is the entry point for the trust and risk scoring service.
// It loads configuration, connects Postgres, Redis and Kafka, wires the
// dependency graph and serves the HTTP API until interrupted.
package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"confia/internal/config"
	"confia/internal/events"
	"confia/internal/repositories"
	"confia/internal/routes"
	"confia/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.New()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}

	if cfg.IsProduction() {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logrus.SetLevel(logrus.DebugLevel)
	}

	utils.InitJWT(cfg.App.JWTSecret)

	if err := repositories.InitDB(cfg); err != nil {
		logrus.WithError(err).Fatal("failed to initialize storage")
	}
	defer repositories.CloseDB()

	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.Kafka.Brokers != "" {
		publisher = events.NewKafkaPublisher(
			cfg.Kafka.Brokers,
			strings.Split(cfg.Kafka.PublishTopics, ","),
			events.RetryConfig{
				MaxAttempts: cfg.Kafka.RetryMaxAttempts,
				BaseDelay:   cfg.Kafka.RetryBaseDelay,
				MaxDelay:    cfg.Kafka.RetryMaxDelay,
				Jitter:      cfg.Kafka.RetryJitter,
			},
		)
	}
	defer func() {
		if err := publisher.Close(); err != nil {
			logrus.WithError(err).Warn("failed to close event publisher")
		}
	}()

	app := fiber.New(fiber.Config{
		AppName: "confia",
	})

	app.Use(cors.New(cors.Config{
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
	}))

	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// Throttle credential endpoints per client IP.
	authLimiter := limiter.New(limiter.Config{
		Max:        5,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "too many requests, try again later",
			})
		},
	})
	app.Use("/api/register", authLimiter)
	app.Use("/api/login", authLimiter)

	services := routes.SetupRoutes(app, cfg, publisher)

	go func() {
		if err := app.Listen(":" + cfg.App.Port); err != nil {
			logrus.WithError(err).Fatal("server stopped")
		}
	}()
	logrus.WithField("port", cfg.App.Port).Info("server started")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("shutting down")
	if err := app.Shutdown(); err != nil {
		logrus.WithError(err).Error("failed to shut down server cleanly")
	}
	// Drain post-commit score updates and event publishes before the
	// deferred closers run.
	services.Transfer.Wait()
}
