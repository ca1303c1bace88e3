package binance

// Wire types mirror the exchange's JSON, with numerics as decimal strings.

type priceTickerWire struct {
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
}

type avgPriceWire struct {
	Mins  int    `json:"mins"`
	Price string `json:"price"`
}

type orderBookWire struct {
	LastUpdateID int64      `json:"lastUpdateId"`
	Bids         [][]string `json:"bids"`
	Asks         [][]string `json:"asks"`
}

type tradeWire struct {
	ID           int64  `json:"id"`
	Price        string `json:"price"`
	Qty          string `json:"qty"`
	QuoteQty     string `json:"quoteQty"`
	Time         int64  `json:"time"`
	IsBuyerMaker bool   `json:"isBuyerMaker"`
	IsBestMatch  bool   `json:"isBestMatch"`
}

type aggTradeWire struct {
	ID           int64  `json:"a"`
	Price        string `json:"p"`
	Qty          string `json:"q"`
	FirstTradeID int64  `json:"f"`
	LastTradeID  int64  `json:"l"`
	Time         int64  `json:"T"`
	IsBuyerMaker bool   `json:"m"`
	IsBestMatch  bool   `json:"M"`
}

// tickerStatsWire covers the 24hr, tradingDay, and rolling-window ticker
// responses; fields absent from a variant simply stay zero.
type tickerStatsWire struct {
	Symbol             string `json:"symbol"`
	PriceChange        string `json:"priceChange"`
	PriceChangePercent string `json:"priceChangePercent"`
	WeightedAvgPrice   string `json:"weightedAvgPrice"`
	PrevClosePrice     string `json:"prevClosePrice"`
	LastPrice          string `json:"lastPrice"`
	LastQty            string `json:"lastQty"`
	BidPrice           string `json:"bidPrice"`
	BidQty             string `json:"bidQty"`
	AskPrice           string `json:"askPrice"`
	AskQty             string `json:"askQty"`
	OpenPrice          string `json:"openPrice"`
	HighPrice          string `json:"highPrice"`
	LowPrice           string `json:"lowPrice"`
	Volume             string `json:"volume"`
	QuoteVolume        string `json:"quoteVolume"`
	OpenTime           int64  `json:"openTime"`
	CloseTime          int64  `json:"closeTime"`
	Count              int64  `json:"count"`
}

type bookTickerWire struct {
	Symbol   string `json:"symbol"`
	BidPrice string `json:"bidPrice"`
	BidQty   string `json:"bidQty"`
	AskPrice string `json:"askPrice"`
	AskQty   string `json:"askQty"`
}

// Converted types returned to callers.

// PriceTicker is the latest trade price for a symbol.
type PriceTicker struct {
	Symbol string  `json:"symbol"`
	Price  float64 `json:"price"`
}

// AvgPrice is the current average price over a trailing window.
type AvgPrice struct {
	Mins  int     `json:"mins"`
	Price float64 `json:"price"`
}

// PriceLevel is one order book level.
type PriceLevel struct {
	Price float64 `json:"price"`
	Qty   float64 `json:"qty"`
}

// OrderBook is a depth snapshot.
type OrderBook struct {
	LastUpdateID int64        `json:"lastUpdateId"`
	Bids         []PriceLevel `json:"bids"`
	Asks         []PriceLevel `json:"asks"`
}

// Trade is a single executed trade.
type Trade struct {
	ID           int64   `json:"id"`
	Price        float64 `json:"price"`
	Qty          float64 `json:"qty"`
	QuoteQty     float64 `json:"quoteQty"`
	Time         int64   `json:"time"`
	IsBuyerMaker bool    `json:"isBuyerMaker"`
	IsBestMatch  bool    `json:"isBestMatch"`
}

// AggTrade is a compressed trade: fills at the same time, price, and order.
type AggTrade struct {
	ID           int64   `json:"id"`
	Price        float64 `json:"price"`
	Qty          float64 `json:"qty"`
	FirstTradeID int64   `json:"first_trade_id"`
	LastTradeID  int64   `json:"last_trade_id"`
	Time         int64   `json:"time"`
	IsBuyerMaker bool    `json:"is_buyer_maker"`
	IsBestMatch  bool    `json:"is_best_match"`
}

// Kline is one OHLCV candlestick.
type Kline struct {
	OpenTime    int64   `json:"open_time"`
	Open        float64 `json:"open"`
	High        float64 `json:"high"`
	Low         float64 `json:"low"`
	Close       float64 `json:"close"`
	Volume      float64 `json:"volume"`
	CloseTime   int64   `json:"close_time"`
	QuoteVolume float64 `json:"quote_volume"`
	TradeCount  int64   `json:"trade_count"`
}

// TickerStats is a price-change statistics window for one symbol.
type TickerStats struct {
	Symbol             string  `json:"symbol"`
	PriceChange        float64 `json:"priceChange"`
	PriceChangePercent float64 `json:"priceChangePercent"`
	WeightedAvgPrice   float64 `json:"weightedAvgPrice"`
	PrevClosePrice     float64 `json:"prevClosePrice"`
	LastPrice          float64 `json:"lastPrice"`
	LastQty            float64 `json:"lastQty"`
	BidPrice           float64 `json:"bidPrice"`
	BidQty             float64 `json:"bidQty"`
	AskPrice           float64 `json:"askPrice"`
	AskQty             float64 `json:"askQty"`
	OpenPrice          float64 `json:"openPrice"`
	HighPrice          float64 `json:"highPrice"`
	LowPrice           float64 `json:"lowPrice"`
	Volume             float64 `json:"volume"`
	QuoteVolume        float64 `json:"quoteVolume"`
	OpenTime           int64   `json:"openTime"`
	CloseTime          int64   `json:"closeTime"`
	Count              int64   `json:"count"`
}

// BookTicker is the best bid/ask for a symbol.
type BookTicker struct {
	Symbol   string  `json:"symbol"`
	BidPrice float64 `json:"bidPrice"`
	BidQty   float64 `json:"bidQty"`
	AskPrice float64 `json:"askPrice"`
	AskQty   float64 `json:"askQty"`
}

// SymbolInfo is the subset of per-symbol exchange metadata the gateway exposes.
type SymbolInfo struct {
	Symbol              string `json:"symbol"`
	Status              string `json:"status"`
	BaseAsset           string `json:"baseAsset"`
	BaseAssetPrecision  int    `json:"baseAssetPrecision"`
	QuoteAsset          string `json:"quoteAsset"`
	QuoteAssetPrecision int    `json:"quoteAssetPrecision"`
}

// RateLimit describes one exchange-enforced request limit.
type RateLimit struct {
	RateLimitType string `json:"rateLimitType"`
	Interval      string `json:"interval"`
	IntervalNum   int    `json:"intervalNum"`
	Limit         int    `json:"limit"`
}

// ExchangeInfo is exchange-level metadata: trading rules and symbol list.
type ExchangeInfo struct {
	Timezone   string       `json:"timezone"`
	ServerTime int64        `json:"serverTime"`
	RateLimits []RateLimit  `json:"rateLimits"`
	Symbols    []SymbolInfo `json:"symbols"`
}

// FeeRates holds the static public maker/taker fee pair. The public API
// exposes no account-specific fee data.
type FeeRates struct {
	MakerFee float64 `json:"maker_fee"`
	TakerFee float64 `json:"taker_fee"`
}
