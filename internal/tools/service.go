package tools

import (
	"log/slog"

	"github.com/cwhitfield/binance-gateway/internal/binance"
	"github.com/cwhitfield/binance-gateway/internal/registry"
	"github.com/cwhitfield/binance-gateway/internal/stream"
)

// Service is the gateway's operation layer. It wires the REST client, the
// stream manager, and the topic registry behind one flat API.
type Service struct {
	rest     *binance.Client
	streams  stream.Manager
	registry *registry.Registry
	logger   *slog.Logger
}

// NewService creates a Service.
func NewService(rest *binance.Client, streams stream.Manager, reg *registry.Registry, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		rest:     rest,
		streams:  streams,
		registry: reg,
		logger:   logger,
	}
}
