package tools

import (
	"context"

	"github.com/cwhitfield/binance-gateway/internal/binance"
)

// Market-data operations wrap the REST client, filling in the gateway's
// default limits. Errors propagate unchanged so callers can inspect
// *binance.APIError.

// GetPrice returns the latest trade price for a symbol.
func (s *Service) GetPrice(ctx context.Context, symbol string) (*binance.PriceTicker, error) {
	return s.rest.GetPrice(ctx, symbol)
}

// GetAvgPrice returns the current average price for a symbol.
func (s *Service) GetAvgPrice(ctx context.Context, symbol string) (*binance.AvgPrice, error) {
	return s.rest.GetAvgPrice(ctx, symbol)
}

// GetOrderBook returns a depth snapshot. limit defaults to 10.
func (s *Service) GetOrderBook(ctx context.Context, symbol string, limit int) (*binance.OrderBook, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.rest.GetOrderBook(ctx, symbol, limit)
}

// GetKlines returns candlesticks. interval defaults to 1d, limit to 100.
func (s *Service) GetKlines(ctx context.Context, symbol, interval string, limit int) ([]binance.Kline, error) {
	interval, limit = klineDefaults(interval, limit)
	return s.rest.GetKlines(ctx, symbol, interval, limit)
}

// GetUIKlines returns chart-optimized candlesticks with the same defaults as GetKlines.
func (s *Service) GetUIKlines(ctx context.Context, symbol, interval string, limit int) ([]binance.Kline, error) {
	interval, limit = klineDefaults(interval, limit)
	return s.rest.GetUIKlines(ctx, symbol, interval, limit)
}

func klineDefaults(interval string, limit int) (string, int) {
	if interval == "" {
		interval = "1d"
	}
	if limit <= 0 {
		limit = 100
	}
	return interval, limit
}

// GetExchangeInfo returns exchange trading rules and symbol metadata.
func (s *Service) GetExchangeInfo(ctx context.Context) (*binance.ExchangeInfo, error) {
	return s.rest.GetExchangeInfo(ctx)
}

// GetRecentTrades returns the most recent trades. limit defaults to 20.
func (s *Service) GetRecentTrades(ctx context.Context, symbol string, limit int) ([]binance.Trade, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.rest.GetRecentTrades(ctx, symbol, limit)
}

// GetHistoricalTrades returns older trades starting from fromID. limit defaults to 20.
func (s *Service) GetHistoricalTrades(ctx context.Context, symbol string, limit int, fromID int64) ([]binance.Trade, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.rest.GetHistoricalTrades(ctx, symbol, limit, fromID)
}

// GetAggTrades returns aggregate trades. limit defaults to 20.
func (s *Service) GetAggTrades(ctx context.Context, symbol string, limit int) ([]binance.AggTrade, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.rest.GetAggTrades(ctx, symbol, limit)
}

// GetTicker24h returns 24-hour statistics for a symbol.
func (s *Service) GetTicker24h(ctx context.Context, symbol string) (*binance.TickerStats, error) {
	return s.rest.GetTicker24h(ctx, symbol)
}

// GetAllTickers24h returns 24-hour statistics for every symbol.
func (s *Service) GetAllTickers24h(ctx context.Context) ([]binance.TickerStats, error) {
	return s.rest.GetAllTickers24h(ctx)
}

// GetTradingDayTicker returns statistics for the current trading day.
func (s *Service) GetTradingDayTicker(ctx context.Context, symbol string) (*binance.TickerStats, error) {
	return s.rest.GetTradingDayTicker(ctx, symbol)
}

// GetRollingWindowTicker returns statistics over a rolling window.
func (s *Service) GetRollingWindowTicker(ctx context.Context, symbol, windowSize string) (*binance.TickerStats, error) {
	return s.rest.GetRollingWindowTicker(ctx, symbol, windowSize)
}

// GetBookTicker returns the best bid/ask for a symbol.
func (s *Service) GetBookTicker(ctx context.Context, symbol string) (*binance.BookTicker, error) {
	return s.rest.GetBookTicker(ctx, symbol)
}

// GetAllBookTickers returns the best bid/ask for every symbol.
func (s *Service) GetAllBookTickers(ctx context.Context) ([]binance.BookTicker, error) {
	return s.rest.GetAllBookTickers(ctx)
}

// TradingFees returns the static public maker/taker fees.
func (s *Service) TradingFees() binance.FeeRates {
	return s.rest.TradingFees()
}
