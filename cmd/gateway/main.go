package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cwhitfield/binance-gateway/internal/binance"
	"github.com/cwhitfield/binance-gateway/internal/config"
	"github.com/cwhitfield/binance-gateway/internal/registry"
	"github.com/cwhitfield/binance-gateway/internal/server"
	"github.com/cwhitfield/binance-gateway/internal/stream"
	"github.com/cwhitfield/binance-gateway/internal/tools"
	"github.com/cwhitfield/binance-gateway/internal/version"
)

func main() {
	configPath := flag.String("config", "configs/gateway.yaml", "path to config file")
	flag.Parse()

	// Set up structured logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
	slog.SetDefault(logger)

	logger.Info("starting gateway",
		"version", version.Version,
		"commit", version.Commit,
		"config", *configPath,
	)

	// Load configuration
	cfg, err := config.LoadAndValidate(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Info("configuration loaded",
		"instance_id", cfg.Instance.ID,
		"rest_url", cfg.API.RestURL,
		"ws_url", cfg.API.WSURL,
	)

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	// Create REST client
	restClient := binance.NewClient(
		cfg.API.RestURL,
		binance.WithLogger(logger),
		binance.WithTimeout(cfg.API.Timeout),
	)

	// Create topic registry and stream manager
	topicRegistry := registry.New(cfg.Streams.QueueCapacity, logger)

	managerCfg := stream.ManagerConfig{
		WSBaseURL:         cfg.API.WSURL,
		HandshakeTimeout:  cfg.Streams.HandshakeTimeout,
		PingTimeout:       cfg.Streams.PingTimeout,
		WriteTimeout:      cfg.Streams.WriteTimeout,
		MessageBufferSize: cfg.Streams.MessageBufferSize,
	}
	streamManager := stream.NewManager(managerCfg, topicRegistry, logger)

	// Assemble the service layer and HTTP server
	svc := tools.NewService(restClient, streamManager, topicRegistry, logger)
	srv := server.New(svc, logger)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		logger.Info("starting http server", "addr", addr)
		if err := srv.Listen(addr); err != nil {
			logger.Error("http server error", "error", err)
			cancel()
		}
	}()

	logger.Info("gateway running",
		"instance_id", cfg.Instance.ID,
		"health_url", fmt.Sprintf("http://localhost:%d/health", cfg.Server.Port),
	)

	// Wait for shutdown
	<-ctx.Done()

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := streamManager.Shutdown(shutdownCtx); err != nil {
		logger.Error("stream manager shutdown error", "error", err)
	}

	logger.Info("gateway stopped")
}
