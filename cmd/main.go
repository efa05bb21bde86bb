package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/loganlanou/quickview/internal/catalog"
	"github.com/loganlanou/quickview/internal/storefront"
	"github.com/loganlanou/quickview/service"
	"github.com/loganlanou/quickview/storage"
)

func main() {
	envErr := godotenv.Load()

	// Load configuration
	config, err := service.LoadConfig()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(newLogger(os.Stderr, config.Log))
	if envErr != nil && !os.IsNotExist(envErr) {
		slog.Warn("failed to load .env file", "error", envErr)
	}

	client, err := storefront.NewClient(storefront.Config{
		BaseURL: config.Storefront.URL,
		Timeout: config.Storefront.Timeout,
	}, nil)
	if err != nil {
		slog.Error("failed to initialize storefront client", "error", err)
		os.Exit(1)
	}

	// Catalog source
	var src catalog.Source = client
	if config.CatalogSource == service.CatalogSQLite {
		db, err := storage.New(config.DBPath)
		if err != nil {
			slog.Error("failed to initialize database", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		src = db
	}

	// Initialize Echo
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Middleware
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())

	// Custom slog request middleware
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			slog.Info("request handled",
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"status", c.Response().Status,
				"duration", time.Since(start),
				"ip", c.RealIP(),
			)

			return err
		}
	})

	// Security headers
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Response().Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
			c.Response().Header().Set("X-Content-Type-Options", "nosniff")
			return next(c)
		}
	})

	svc := service.New(config, src, client)
	svc.RegisterRoutes(e)

	addr := fmt.Sprintf(":%s", config.Port)
	slog.Info("quick view service starting",
		"url", fmt.Sprintf("http://localhost:%s", config.Port),
		"environment", config.Environment,
		"catalog", config.CatalogSource,
		"storefront", config.Storefront.URL,
	)

	if err := e.Start(addr); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}
