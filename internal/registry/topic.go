package registry

import "strings"

// ParseTopic derives a Descriptor from a Binance stream topic string.
//
// Recognized forms: "<symbol>@trade", "<symbol>@aggTrade", "<symbol>@kline_<interval>",
// "<symbol>@ticker", "<symbol>@bookTicker", "<symbol>@avgPrice",
// "<symbol>@depth[<levels>][@100ms]", and the market-wide "!ticker@arr".
func ParseTopic(topic string) Descriptor {
	if topic == "!ticker@arr" {
		return Descriptor{Type: "allTickers"}
	}

	symbol, rest, ok := strings.Cut(topic, "@")
	if !ok {
		return Descriptor{Type: "unknown", Symbol: topic}
	}

	switch {
	case rest == "trade":
		return Descriptor{Type: "trade", Symbol: symbol}

	case rest == "aggTrade":
		return Descriptor{Type: "aggTrade", Symbol: symbol}

	case rest == "ticker":
		return Descriptor{Type: "ticker", Symbol: symbol}

	case rest == "bookTicker":
		return Descriptor{Type: "bookTicker", Symbol: symbol}

	case rest == "avgPrice":
		return Descriptor{Type: "avgPrice", Symbol: symbol}

	case strings.HasPrefix(rest, "kline_"):
		return Descriptor{
			Type:   "kline",
			Symbol: symbol,
			Params: map[string]string{"interval": strings.TrimPrefix(rest, "kline_")},
		}

	case strings.HasPrefix(rest, "depth"):
		params := map[string]string{}
		spec := strings.TrimPrefix(rest, "depth")
		if trimmed, found := strings.CutSuffix(spec, "@100ms"); found {
			params["update_speed"] = "100ms"
			spec = trimmed
		}
		if spec != "" {
			params["levels"] = spec
		}
		if len(params) == 0 {
			params = nil
		}
		return Descriptor{Type: "depth", Symbol: symbol, Params: params}
	}

	return Descriptor{Type: "unknown", Symbol: symbol, Params: map[string]string{"raw": rest}}
}
