// Package server exposes the gateway's operations over HTTP.
package server

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/cwhitfield/binance-gateway/internal/tools"
)

// FiberServer wraps the fiber app with the gateway's service layer.
type FiberServer struct {
	*fiber.App

	svc    *tools.Service
	logger *slog.Logger
}

// New creates the HTTP server and registers all routes.
func New(svc *tools.Service, logger *slog.Logger) *FiberServer {
	if logger == nil {
		logger = slog.Default()
	}

	s := &FiberServer{
		App: fiber.New(fiber.Config{
			ServerHeader: "binance-gateway",
			AppName:      "binance-gateway",
		}),

		svc:    svc,
		logger: logger,
	}

	s.registerRoutes()
	return s
}
