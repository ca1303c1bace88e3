package binance

import (
	"strconv"
)

// parseFloat converts a decimal string to float64.
// Returns 0 for empty or invalid input.
func parseFloat(s string) float64 {
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

func (w *priceTickerWire) toModel() PriceTicker {
	return PriceTicker{
		Symbol: w.Symbol,
		Price:  parseFloat(w.Price),
	}
}

func (w *avgPriceWire) toModel() AvgPrice {
	return AvgPrice{
		Mins:  w.Mins,
		Price: parseFloat(w.Price),
	}
}

func (w *orderBookWire) toModel() OrderBook {
	return OrderBook{
		LastUpdateID: w.LastUpdateID,
		Bids:         toPriceLevels(w.Bids),
		Asks:         toPriceLevels(w.Asks),
	}
}

// toPriceLevels converts [["10000.0","0.5"], ...] to []PriceLevel.
func toPriceLevels(levels [][]string) []PriceLevel {
	result := make([]PriceLevel, 0, len(levels))
	for _, level := range levels {
		if len(level) < 2 {
			continue
		}
		result = append(result, PriceLevel{
			Price: parseFloat(level[0]),
			Qty:   parseFloat(level[1]),
		})
	}
	return result
}

func (w *tradeWire) toModel() Trade {
	return Trade{
		ID:           w.ID,
		Price:        parseFloat(w.Price),
		Qty:          parseFloat(w.Qty),
		QuoteQty:     parseFloat(w.QuoteQty),
		Time:         w.Time,
		IsBuyerMaker: w.IsBuyerMaker,
		IsBestMatch:  w.IsBestMatch,
	}
}

func (w *aggTradeWire) toModel() AggTrade {
	return AggTrade{
		ID:           w.ID,
		Price:        parseFloat(w.Price),
		Qty:          parseFloat(w.Qty),
		FirstTradeID: w.FirstTradeID,
		LastTradeID:  w.LastTradeID,
		Time:         w.Time,
		IsBuyerMaker: w.IsBuyerMaker,
		IsBestMatch:  w.IsBestMatch,
	}
}

func (w *tickerStatsWire) toModel() TickerStats {
	return TickerStats{
		Symbol:             w.Symbol,
		PriceChange:        parseFloat(w.PriceChange),
		PriceChangePercent: parseFloat(w.PriceChangePercent),
		WeightedAvgPrice:   parseFloat(w.WeightedAvgPrice),
		PrevClosePrice:     parseFloat(w.PrevClosePrice),
		LastPrice:          parseFloat(w.LastPrice),
		LastQty:            parseFloat(w.LastQty),
		BidPrice:           parseFloat(w.BidPrice),
		BidQty:             parseFloat(w.BidQty),
		AskPrice:           parseFloat(w.AskPrice),
		AskQty:             parseFloat(w.AskQty),
		OpenPrice:          parseFloat(w.OpenPrice),
		HighPrice:          parseFloat(w.HighPrice),
		LowPrice:           parseFloat(w.LowPrice),
		Volume:             parseFloat(w.Volume),
		QuoteVolume:        parseFloat(w.QuoteVolume),
		OpenTime:           w.OpenTime,
		CloseTime:          w.CloseTime,
		Count:              w.Count,
	}
}

func (w *bookTickerWire) toModel() BookTicker {
	return BookTicker{
		Symbol:   w.Symbol,
		BidPrice: parseFloat(w.BidPrice),
		BidQty:   parseFloat(w.BidQty),
		AskPrice: parseFloat(w.AskPrice),
		AskQty:   parseFloat(w.AskQty),
	}
}

// toKlines converts the exchange's array-of-arrays kline rows.
// Each row: [openTime, open, high, low, close, volume, closeTime,
// quoteVolume, tradeCount, ...]; trailing fields are ignored.
func toKlines(rows [][]any) []Kline {
	klines := make([]Kline, 0, len(rows))
	for _, row := range rows {
		if len(row) < 7 {
			continue
		}

		k := Kline{
			OpenTime:  asInt64(row[0]),
			Open:      asFloat(row[1]),
			High:      asFloat(row[2]),
			Low:       asFloat(row[3]),
			Close:     asFloat(row[4]),
			Volume:    asFloat(row[5]),
			CloseTime: asInt64(row[6]),
		}
		if len(row) > 7 {
			k.QuoteVolume = asFloat(row[7])
		}
		if len(row) > 8 {
			k.TradeCount = asInt64(row[8])
		}
		klines = append(klines, k)
	}
	return klines
}

// asFloat handles the two shapes numeric kline fields take on the wire:
// decimal strings and bare JSON numbers.
func asFloat(v any) float64 {
	switch x := v.(type) {
	case string:
		return parseFloat(x)
	case float64:
		return x
	}
	return 0
}

func asInt64(v any) int64 {
	switch x := v.(type) {
	case float64:
		return int64(x)
	case string:
		n, _ := strconv.ParseInt(x, 10, 64)
		return n
	}
	return 0
}
