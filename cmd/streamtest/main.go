// streamtest subscribes to Binance market streams and prints frames to the
// console.
// Usage: go run ./cmd/streamtest --config configs/gateway.yaml btcusdt@trade ethusdt@ticker
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cwhitfield/binance-gateway/internal/config"
	"github.com/cwhitfield/binance-gateway/internal/registry"
	"github.com/cwhitfield/binance-gateway/internal/stream"
)

func main() {
	configPath := flag.String("config", "configs/gateway.yaml", "path to config file")
	verbose := flag.Bool("verbose", false, "print full frame JSON")
	flag.Parse()

	topics := flag.Args()
	if len(topics) == 0 {
		topics = []string{"btcusdt@trade"}
	}

	// Setup logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	// Load config
	cfg, err := config.LoadWithDefaults(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal")
		cancel()
	}()

	topicRegistry := registry.New(cfg.Streams.QueueCapacity, logger)

	managerCfg := stream.DefaultManagerConfig()
	managerCfg.WSBaseURL = cfg.API.WSURL
	managerCfg.MessageBufferSize = cfg.Streams.MessageBufferSize

	mgr := stream.NewManager(managerCfg, topicRegistry, logger)

	for _, topic := range topics {
		topic := topic
		err := mgr.Subscribe(ctx, topic, func(data json.RawMessage) {
			topicRegistry.Record(topic, data)
			if *verbose {
				pretty, _ := json.MarshalIndent(json.RawMessage(data), "", "  ")
				fmt.Printf("[%s] %s\n", topic, pretty)
			} else {
				fmt.Printf("[%s] %d bytes\n", topic, len(data))
			}
		}, stream.SubscribeOptions{Combined: true})
		if err != nil {
			logger.Error("subscribe failed", "topic", topic, "error", err)
			os.Exit(1)
		}
	}

	// Stats printer
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				stats := mgr.Stats()
				logger.Info("stats",
					"connected", stats.ConnectedCount,
					"topics", stats.TopicCount,
				)
			}
		}
	}()

	logger.Info("streaming started - press Ctrl+C to stop", "topics", topics)

	// Wait for shutdown
	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	logger.Info("shutting down...")
	mgr.Shutdown(shutdownCtx)

	logger.Info("shutdown complete")
}
