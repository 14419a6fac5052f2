// Package server exposes the analyzer over a small JSON HTTP API.
package server

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"

	"github.com/verte-zerg/asolens/internal/generator"
	"github.com/verte-zerg/asolens/internal/model"
	"github.com/verte-zerg/asolens/internal/store"
)

// Config holds server settings resolved from flags, env and the config file.
type Config struct {
	Addr     string
	Top      int
	Horizons []int
	Boosts   model.BoostConfig
	Backfill bool
	// Seed makes backfilled values reproducible when non-zero.
	Seed int64
	// Quiet disables the request logger.
	Quiet bool
}

// Server wraps the Fiber app and its dependencies.
type Server struct {
	App     *fiber.App
	Cfg     Config
	store   *store.Store
	metrics *Metrics
}

// New creates a server with middleware and routes configured.
func New(cfg Config, st *store.Store) *Server {
	app := fiber.New(fiber.Config{
		AppName: "asolens",
		ErrorHandler: func(c fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			message := "internal server error"
			var fe *fiber.Error
			if errors.As(err, &fe) {
				code = fe.Code
				message = fe.Message
			}
			if code >= fiber.StatusInternalServerError {
				slog.Error("request failed", "path", c.Path(), "error", err)
			}
			return jsonError(c, code, message)
		},
	})

	s := &Server{
		App:     app,
		Cfg:     cfg,
		store:   st,
		metrics: NewMetrics(),
	}

	app.Use(recover.New())
	if !cfg.Quiet {
		app.Use(logger.New())
	}
	app.Use(s.metrics.Middleware())
	s.registerRoutes()
	return s
}

// Start listens on the configured address.
func (s *Server) Start() error {
	slog.Info("starting server", "addr", s.Cfg.Addr)
	return s.App.Listen(s.Cfg.Addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	return s.App.Shutdown()
}

// backfiller returns a generator for one upload, or nil when backfill is off.
func (s *Server) backfiller() generator.Backfiller {
	if !s.Cfg.Backfill {
		return nil
	}
	if s.Cfg.Seed != 0 {
		return generator.NewSeeded(s.Cfg.Seed)
	}
	return generator.New()
}
