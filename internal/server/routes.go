package server

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/cwhitfield/binance-gateway/internal/binance"
)

func (s *FiberServer) registerRoutes() {
	s.Get("/health", s.handleHealth)

	api := s.Group("/api")
	api.Get("/exchangeInfo", s.handleExchangeInfo)
	api.Get("/fees", s.handleFees)
	api.Get("/price/:symbol", s.handlePrice)
	api.Get("/avgPrice/:symbol", s.handleAvgPrice)
	api.Get("/depth/:symbol", s.handleOrderBook)
	api.Get("/klines/:symbol", s.handleKlines)
	api.Get("/uiKlines/:symbol", s.handleUIKlines)
	api.Get("/trades/:symbol", s.handleRecentTrades)
	api.Get("/historicalTrades/:symbol", s.handleHistoricalTrades)
	api.Get("/aggTrades/:symbol", s.handleAggTrades)
	api.Get("/ticker/24hr", s.handleAllTickers24h)
	api.Get("/ticker/24hr/:symbol", s.handleTicker24h)
	api.Get("/ticker/tradingDay/:symbol", s.handleTradingDayTicker)
	api.Get("/ticker/rolling/:symbol", s.handleRollingWindowTicker)
	api.Get("/ticker/book", s.handleAllBookTickers)
	api.Get("/ticker/book/:symbol", s.handleBookTicker)

	streams := s.Group("/streams")
	streams.Get("/", s.handleListStreams)
	streams.Post("/unsubscribe", s.handleUnsubscribe)
	streams.Post("/cleanup", s.handleCleanup)
	streams.Get("/:name/latest", s.handleLatest)
	streams.Post("/:name/poll", s.handlePoll)
	streams.Post("/:type", s.handleSubscribe)
	streams.Post("/:type/:symbol", s.handleSubscribe)
}

func (s *FiberServer) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// respond maps service errors onto HTTP statuses: upstream API errors become
// 502 with the upstream status and body attached, everything else 500.
func (s *FiberServer) respond(c *fiber.Ctx, result any, err error) error {
	if err == nil {
		return c.JSON(result)
	}

	var apiErr *binance.APIError
	if errors.As(err, &apiErr) {
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error":           apiErr.Error(),
			"upstream_status": apiErr.StatusCode,
			"upstream_body":   string(apiErr.Body),
		})
	}

	s.logger.Error("request failed", "path", c.Path(), "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": err.Error(),
	})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}

func (s *FiberServer) handleExchangeInfo(c *fiber.Ctx) error {
	info, err := s.svc.GetExchangeInfo(c.UserContext())
	return s.respond(c, info, err)
}

func (s *FiberServer) handleFees(c *fiber.Ctx) error {
	return c.JSON(s.svc.TradingFees())
}

func (s *FiberServer) handlePrice(c *fiber.Ctx) error {
	ticker, err := s.svc.GetPrice(c.UserContext(), c.Params("symbol"))
	return s.respond(c, ticker, err)
}

func (s *FiberServer) handleAvgPrice(c *fiber.Ctx) error {
	avg, err := s.svc.GetAvgPrice(c.UserContext(), c.Params("symbol"))
	return s.respond(c, avg, err)
}

func (s *FiberServer) handleOrderBook(c *fiber.Ctx) error {
	book, err := s.svc.GetOrderBook(c.UserContext(), c.Params("symbol"), c.QueryInt("limit"))
	return s.respond(c, book, err)
}

func (s *FiberServer) handleKlines(c *fiber.Ctx) error {
	klines, err := s.svc.GetKlines(c.UserContext(), c.Params("symbol"), c.Query("interval"), c.QueryInt("limit"))
	return s.respond(c, klines, err)
}

func (s *FiberServer) handleUIKlines(c *fiber.Ctx) error {
	klines, err := s.svc.GetUIKlines(c.UserContext(), c.Params("symbol"), c.Query("interval"), c.QueryInt("limit"))
	return s.respond(c, klines, err)
}

func (s *FiberServer) handleRecentTrades(c *fiber.Ctx) error {
	trades, err := s.svc.GetRecentTrades(c.UserContext(), c.Params("symbol"), c.QueryInt("limit"))
	return s.respond(c, trades, err)
}

func (s *FiberServer) handleHistoricalTrades(c *fiber.Ctx) error {
	trades, err := s.svc.GetHistoricalTrades(
		c.UserContext(), c.Params("symbol"), c.QueryInt("limit"), int64(c.QueryInt("fromId")))
	return s.respond(c, trades, err)
}

func (s *FiberServer) handleAggTrades(c *fiber.Ctx) error {
	trades, err := s.svc.GetAggTrades(c.UserContext(), c.Params("symbol"), c.QueryInt("limit"))
	return s.respond(c, trades, err)
}

func (s *FiberServer) handleTicker24h(c *fiber.Ctx) error {
	stats, err := s.svc.GetTicker24h(c.UserContext(), c.Params("symbol"))
	return s.respond(c, stats, err)
}

func (s *FiberServer) handleAllTickers24h(c *fiber.Ctx) error {
	stats, err := s.svc.GetAllTickers24h(c.UserContext())
	return s.respond(c, stats, err)
}

func (s *FiberServer) handleTradingDayTicker(c *fiber.Ctx) error {
	stats, err := s.svc.GetTradingDayTicker(c.UserContext(), c.Params("symbol"))
	return s.respond(c, stats, err)
}

func (s *FiberServer) handleRollingWindowTicker(c *fiber.Ctx) error {
	stats, err := s.svc.GetRollingWindowTicker(c.UserContext(), c.Params("symbol"), c.Query("windowSize"))
	return s.respond(c, stats, err)
}

func (s *FiberServer) handleBookTicker(c *fiber.Ctx) error {
	ticker, err := s.svc.GetBookTicker(c.UserContext(), c.Params("symbol"))
	return s.respond(c, ticker, err)
}

func (s *FiberServer) handleAllBookTickers(c *fiber.Ctx) error {
	tickers, err := s.svc.GetAllBookTickers(c.UserContext())
	return s.respond(c, tickers, err)
}

func (s *FiberServer) handleSubscribe(c *fiber.Ctx) error {
	streamType := c.Params("type")
	symbol := c.Params("symbol")

	if streamType != "allTickers" && symbol == "" {
		return badRequest(c, "symbol is required for stream type "+streamType)
	}

	var result any
	switch streamType {
	case "trade":
		result = s.svc.SubscribeTrade(symbol)
	case "kline":
		result = s.svc.SubscribeKline(symbol, c.Query("interval"))
	case "ticker":
		result = s.svc.SubscribeTicker(symbol)
	case "bookTicker":
		result = s.svc.SubscribeBookTicker(symbol)
	case "depth":
		result = s.svc.SubscribeDepth(symbol, c.QueryInt("levels"), c.QueryInt("updateSpeed"))
	case "allTickers":
		result = s.svc.SubscribeAllTickers()
	default:
		return badRequest(c, "unknown stream type: "+streamType)
	}

	return c.JSON(result)
}

func (s *FiberServer) handleUnsubscribe(c *fiber.Ctx) error {
	var body struct {
		Stream string `json:"stream"`
	}
	if err := c.BodyParser(&body); err != nil || body.Stream == "" {
		return badRequest(c, "body must contain a stream name")
	}
	return c.JSON(s.svc.Unsubscribe(body.Stream))
}

func (s *FiberServer) handleListStreams(c *fiber.Ctx) error {
	return c.JSON(s.svc.ListActive())
}

func (s *FiberServer) handleLatest(c *fiber.Ctx) error {
	return c.JSON(s.svc.Latest(c.Params("name")))
}

func (s *FiberServer) handlePoll(c *fiber.Ctx) error {
	result, err := s.svc.Poll(c.Params("name"), c.QueryInt("max"))
	if err != nil {
		return badRequest(c, err.Error())
	}
	return c.JSON(result)
}

func (s *FiberServer) handleCleanup(c *fiber.Ctx) error {
	return c.JSON(s.svc.Cleanup())
}
