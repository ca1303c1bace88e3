// apitest exercises the public REST endpoints and prints the converted
// responses.
// Usage: go run ./cmd/apitest --config configs/gateway.yaml --symbol BTCUSDT
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/cwhitfield/binance-gateway/internal/binance"
	"github.com/cwhitfield/binance-gateway/internal/config"
)

func main() {
	configPath := flag.String("config", "configs/gateway.yaml", "path to config file")
	symbol := flag.String("symbol", "BTCUSDT", "symbol to query")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg, err := config.LoadWithDefaults(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	client := binance.NewClient(
		cfg.API.RestURL,
		binance.WithLogger(logger),
		binance.WithTimeout(15*time.Second),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	price, err := client.GetPrice(ctx, *symbol)
	report("price", price, err)

	avg, err := client.GetAvgPrice(ctx, *symbol)
	report("avg price", avg, err)

	book, err := client.GetOrderBook(ctx, *symbol, 5)
	report("order book", book, err)

	klines, err := client.GetKlines(ctx, *symbol, "1h", 3)
	report("klines", klines, err)

	trades, err := client.GetRecentTrades(ctx, *symbol, 3)
	report("recent trades", trades, err)

	aggTrades, err := client.GetAggTrades(ctx, *symbol, 3)
	report("agg trades", aggTrades, err)

	stats, err := client.GetTicker24h(ctx, *symbol)
	report("24hr ticker", stats, err)

	bookTicker, err := client.GetBookTicker(ctx, *symbol)
	report("book ticker", bookTicker, err)

	info, err := client.GetExchangeInfo(ctx)
	if err != nil {
		report("exchange info", nil, err)
	} else {
		fmt.Printf("=== exchange info ===\ntimezone=%s symbols=%d rate_limits=%d\n",
			info.Timezone, len(info.Symbols), len(info.RateLimits))
	}
}

func report(name string, v any, err error) {
	if err != nil {
		fmt.Printf("=== %s ===\nerror: %v\n", name, err)
		return
	}
	data, _ := json.MarshalIndent(v, "", "  ")
	fmt.Printf("=== %s ===\n%s\n", name, data)
}
