package binance

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Static public spot fees (VIP 0 tier). The public API exposes no
// account-specific fee data without authentication.
const (
	defaultMakerFee = 0.001
	defaultTakerFee = 0.001
)

// GetPrice fetches the latest trade price for a symbol.
func (c *Client) GetPrice(ctx context.Context, symbol string) (*PriceTicker, error) {
	query := url.Values{}
	query.Set("symbol", strings.ToUpper(symbol))

	var wire priceTickerWire
	if err := c.get(ctx, "/api/v3/ticker/price", query, &wire); err != nil {
		return nil, fmt.Errorf("get price %s: %w", symbol, err)
	}

	ticker := wire.toModel()
	return &ticker, nil
}

// GetAvgPrice fetches the current average price for a symbol, a weighted
// average over the last few minutes of trades.
func (c *Client) GetAvgPrice(ctx context.Context, symbol string) (*AvgPrice, error) {
	query := url.Values{}
	query.Set("symbol", strings.ToUpper(symbol))

	var wire avgPriceWire
	if err := c.get(ctx, "/api/v3/avgPrice", query, &wire); err != nil {
		return nil, fmt.Errorf("get avg price %s: %w", symbol, err)
	}

	avg := wire.toModel()
	return &avg, nil
}

// GetOrderBook fetches a depth snapshot for a symbol.
func (c *Client) GetOrderBook(ctx context.Context, symbol string, limit int) (*OrderBook, error) {
	query := url.Values{}
	query.Set("symbol", strings.ToUpper(symbol))
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	var wire orderBookWire
	if err := c.get(ctx, "/api/v3/depth", query, &wire); err != nil {
		return nil, fmt.Errorf("get order book %s: %w", symbol, err)
	}

	book := wire.toModel()
	return &book, nil
}

// GetKlines fetches OHLCV candlesticks for a symbol and interval.
func (c *Client) GetKlines(ctx context.Context, symbol, interval string, limit int) ([]Kline, error) {
	return c.getKlines(ctx, "/api/v3/klines", symbol, interval, limit)
}

// GetUIKlines fetches candlesticks optimized for chart rendering.
func (c *Client) GetUIKlines(ctx context.Context, symbol, interval string, limit int) ([]Kline, error) {
	return c.getKlines(ctx, "/api/v3/uiKlines", symbol, interval, limit)
}

func (c *Client) getKlines(ctx context.Context, path, symbol, interval string, limit int) ([]Kline, error) {
	query := url.Values{}
	query.Set("symbol", strings.ToUpper(symbol))
	query.Set("interval", interval)
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	var rows [][]any
	if err := c.get(ctx, path, query, &rows); err != nil {
		return nil, fmt.Errorf("get klines %s %s: %w", symbol, interval, err)
	}

	return toKlines(rows), nil
}

// GetExchangeInfo fetches exchange metadata: trading rules and symbol list.
func (c *Client) GetExchangeInfo(ctx context.Context) (*ExchangeInfo, error) {
	var info ExchangeInfo
	if err := c.get(ctx, "/api/v3/exchangeInfo", nil, &info); err != nil {
		return nil, fmt.Errorf("get exchange info: %w", err)
	}
	return &info, nil
}

// GetRecentTrades fetches the most recent trades for a symbol.
func (c *Client) GetRecentTrades(ctx context.Context, symbol string, limit int) ([]Trade, error) {
	return c.getTrades(ctx, "/api/v3/trades", symbol, limit, 0)
}

// GetHistoricalTrades fetches older trades for a symbol, starting from an
// optional trade ID.
func (c *Client) GetHistoricalTrades(ctx context.Context, symbol string, limit int, fromID int64) ([]Trade, error) {
	return c.getTrades(ctx, "/api/v3/historicalTrades", symbol, limit, fromID)
}

func (c *Client) getTrades(ctx context.Context, path, symbol string, limit int, fromID int64) ([]Trade, error) {
	query := url.Values{}
	query.Set("symbol", strings.ToUpper(symbol))
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	if fromID > 0 {
		query.Set("fromId", strconv.FormatInt(fromID, 10))
	}

	var wires []tradeWire
	if err := c.get(ctx, path, query, &wires); err != nil {
		return nil, fmt.Errorf("get trades %s: %w", symbol, err)
	}

	trades := make([]Trade, 0, len(wires))
	for i := range wires {
		trades = append(trades, wires[i].toModel())
	}
	return trades, nil
}

// GetAggTrades fetches compressed/aggregate trades for a symbol.
func (c *Client) GetAggTrades(ctx context.Context, symbol string, limit int) ([]AggTrade, error) {
	query := url.Values{}
	query.Set("symbol", strings.ToUpper(symbol))
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	var wires []aggTradeWire
	if err := c.get(ctx, "/api/v3/aggTrades", query, &wires); err != nil {
		return nil, fmt.Errorf("get agg trades %s: %w", symbol, err)
	}

	trades := make([]AggTrade, 0, len(wires))
	for i := range wires {
		trades = append(trades, wires[i].toModel())
	}
	return trades, nil
}

// GetTicker24h fetches 24-hour price change statistics for a symbol.
func (c *Client) GetTicker24h(ctx context.Context, symbol string) (*TickerStats, error) {
	return c.getTicker(ctx, "/api/v3/ticker/24hr", symbol, "")
}

// GetAllTickers24h fetches 24-hour statistics for every symbol.
func (c *Client) GetAllTickers24h(ctx context.Context) ([]TickerStats, error) {
	var wires []tickerStatsWire
	if err := c.get(ctx, "/api/v3/ticker/24hr", nil, &wires); err != nil {
		return nil, fmt.Errorf("get all 24hr tickers: %w", err)
	}

	stats := make([]TickerStats, 0, len(wires))
	for i := range wires {
		stats = append(stats, wires[i].toModel())
	}
	return stats, nil
}

// GetTradingDayTicker fetches price change statistics for the current trading day.
func (c *Client) GetTradingDayTicker(ctx context.Context, symbol string) (*TickerStats, error) {
	return c.getTicker(ctx, "/api/v3/ticker/tradingDay", symbol, "")
}

// GetRollingWindowTicker fetches statistics over a rolling window
// (e.g. "1d", "4h"). An empty windowSize uses the exchange default.
func (c *Client) GetRollingWindowTicker(ctx context.Context, symbol, windowSize string) (*TickerStats, error) {
	return c.getTicker(ctx, "/api/v3/ticker", symbol, windowSize)
}

func (c *Client) getTicker(ctx context.Context, path, symbol, windowSize string) (*TickerStats, error) {
	query := url.Values{}
	query.Set("symbol", strings.ToUpper(symbol))
	if windowSize != "" {
		query.Set("windowSize", windowSize)
	}

	var wire tickerStatsWire
	if err := c.get(ctx, path, query, &wire); err != nil {
		return nil, fmt.Errorf("get ticker %s: %w", symbol, err)
	}

	stats := wire.toModel()
	return &stats, nil
}

// GetBookTicker fetches the best bid/ask for a symbol.
func (c *Client) GetBookTicker(ctx context.Context, symbol string) (*BookTicker, error) {
	query := url.Values{}
	query.Set("symbol", strings.ToUpper(symbol))

	var wire bookTickerWire
	if err := c.get(ctx, "/api/v3/ticker/bookTicker", query, &wire); err != nil {
		return nil, fmt.Errorf("get book ticker %s: %w", symbol, err)
	}

	ticker := wire.toModel()
	return &ticker, nil
}

// GetAllBookTickers fetches the best bid/ask for every symbol.
func (c *Client) GetAllBookTickers(ctx context.Context) ([]BookTicker, error) {
	var wires []bookTickerWire
	if err := c.get(ctx, "/api/v3/ticker/bookTicker", nil, &wires); err != nil {
		return nil, fmt.Errorf("get all book tickers: %w", err)
	}

	tickers := make([]BookTicker, 0, len(wires))
	for i := range wires {
		tickers = append(tickers, wires[i].toModel())
	}
	return tickers, nil
}

// TradingFees returns the static public maker/taker fee pair. No network call.
func (c *Client) TradingFees() FeeRates {
	return FeeRates{
		MakerFee: defaultMakerFee,
		TakerFee: defaultTakerFee,
	}
}
