package tools

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cwhitfield/binance-gateway/internal/binance"
)

// queryRecorder captures the query of the last request and returns body.
func queryRecorder(body string, lastQuery *map[string]string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := map[string]string{}
		for key, vals := range r.URL.Query() {
			q[key] = vals[0]
		}
		*lastQuery = q
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}
}

func TestService_MarketDataDefaults(t *testing.T) {
	var lastQuery map[string]string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body := `[]`
		if r.URL.Path == "/api/v3/depth" {
			body = `{"lastUpdateId":1,"bids":[],"asks":[]}`
		}
		queryRecorder(body, &lastQuery)(w, r)
	}))
	defer server.Close()

	svc := NewService(binance.NewClient(server.URL), &fakeManager{}, nil, nil)
	ctx := context.Background()

	if _, err := svc.GetOrderBook(ctx, "BTCUSDT", 0); err != nil {
		t.Fatalf("GetOrderBook failed: %v", err)
	}
	if lastQuery["limit"] != "10" {
		t.Errorf("depth limit = %q, want default 10", lastQuery["limit"])
	}

	if _, err := svc.GetKlines(ctx, "BTCUSDT", "", 0); err != nil {
		t.Fatalf("GetKlines failed: %v", err)
	}
	if lastQuery["interval"] != "1d" {
		t.Errorf("kline interval = %q, want default 1d", lastQuery["interval"])
	}
	if lastQuery["limit"] != "100" {
		t.Errorf("kline limit = %q, want default 100", lastQuery["limit"])
	}

	if _, err := svc.GetRecentTrades(ctx, "BTCUSDT", 0); err != nil {
		t.Fatalf("GetRecentTrades failed: %v", err)
	}
	if lastQuery["limit"] != "20" {
		t.Errorf("trades limit = %q, want default 20", lastQuery["limit"])
	}

	if _, err := svc.GetAggTrades(ctx, "BTCUSDT", 5); err != nil {
		t.Fatalf("GetAggTrades failed: %v", err)
	}
	if lastQuery["limit"] != "5" {
		t.Errorf("agg trades limit = %q, want the explicit 5", lastQuery["limit"])
	}
}

func TestService_TradingFees(t *testing.T) {
	svc := NewService(binance.NewClient("http://unused.invalid"), &fakeManager{}, nil, nil)

	fees := svc.TradingFees()
	if fees.MakerFee != 0.001 || fees.TakerFee != 0.001 {
		t.Errorf("fees = %+v, want 0.001/0.001", fees)
	}
}
