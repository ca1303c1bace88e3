package tools

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cwhitfield/binance-gateway/internal/registry"
	"github.com/cwhitfield/binance-gateway/internal/stream"
)

// fakeManager records calls and can be told to fail subscribes.
type fakeManager struct {
	mu           sync.Mutex
	subscribed   []string
	unsubscribed []string
	closedAll    bool
	subscribeErr error
	lastCallback stream.Callback
	lastCombined bool
}

func (f *fakeManager) Subscribe(ctx context.Context, topic string, cb stream.Callback, opts stream.SubscribeOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.subscribeErr != nil {
		return f.subscribeErr
	}
	f.subscribed = append(f.subscribed, topic)
	f.lastCallback = cb
	f.lastCombined = opts.Combined
	return nil
}

func (f *fakeManager) Unsubscribe(topic string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unsubscribed = append(f.unsubscribed, topic)
	return nil
}

func (f *fakeManager) Close(connKey string) error { return nil }

func (f *fakeManager) CloseAll() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closedAll = true
}

func (f *fakeManager) Shutdown(ctx context.Context) error { return nil }

func (f *fakeManager) Topics() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.subscribed...)
}

func (f *fakeManager) Stats() stream.ManagerStats { return stream.ManagerStats{} }

func (f *fakeManager) subscribedTopics() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.subscribed...)
}

func newTestService(mgr *fakeManager) (*Service, *registry.Registry) {
	reg := registry.New(10, nil)
	return NewService(nil, mgr, reg, nil), reg
}

// waitFor polls until cond holds or the deadline passes.
func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for !cond() {
		select {
		case <-deadline:
			t.Fatal(msg)
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestService_SubscribeTrade(t *testing.T) {
	mgr := &fakeManager{}
	svc, reg := newTestService(mgr)

	result := svc.SubscribeTrade("BTCUSDT")
	if result.Status != StatusSubscribing {
		t.Errorf("Status = %q, want subscribing", result.Status)
	}
	if result.Stream != "btcusdt@trade" {
		t.Errorf("Stream = %q, want btcusdt@trade", result.Stream)
	}

	// Registered before the async subscribe completes
	if !reg.Has("btcusdt@trade") {
		t.Error("topic should be registered immediately")
	}

	waitFor(t, func() bool { return len(mgr.subscribedTopics()) == 1 }, "manager Subscribe never called")

	mgr.mu.Lock()
	combined := mgr.lastCombined
	mgr.mu.Unlock()
	if !combined {
		t.Error("subscription should use combined mode")
	}
}

func TestService_SubscribeAlreadySubscribed(t *testing.T) {
	mgr := &fakeManager{}
	svc, _ := newTestService(mgr)

	svc.SubscribeTrade("BTCUSDT")
	result := svc.SubscribeTrade("BTCUSDT")

	if result.Status != StatusAlreadySubscribed {
		t.Errorf("Status = %q, want already_subscribed", result.Status)
	}
}

func TestService_SubscribeKlineDefaultInterval(t *testing.T) {
	mgr := &fakeManager{}
	svc, _ := newTestService(mgr)

	result := svc.SubscribeKline("ETHUSDT", "")
	if result.Stream != "ethusdt@kline_1m" {
		t.Errorf("Stream = %q, want ethusdt@kline_1m", result.Stream)
	}

	result = svc.SubscribeKline("ETHUSDT", "4h")
	if result.Stream != "ethusdt@kline_4h" {
		t.Errorf("Stream = %q, want ethusdt@kline_4h", result.Stream)
	}
}

func TestService_SubscribeDepthValidation(t *testing.T) {
	mgr := &fakeManager{}
	svc, reg := newTestService(mgr)

	result := svc.SubscribeDepth("BTCUSDT", 7, 0)
	if result.Status != StatusError {
		t.Errorf("Status = %q, want error for levels=7", result.Status)
	}

	result = svc.SubscribeDepth("BTCUSDT", 10, 250)
	if result.Status != StatusError {
		t.Errorf("Status = %q, want error for updateSpeed=250", result.Status)
	}

	// Invalid input never touches the registry or the manager
	if reg.Len() != 0 {
		t.Errorf("registry Len() = %d, want 0", reg.Len())
	}
	if len(mgr.subscribedTopics()) != 0 {
		t.Error("manager should not be called for invalid input")
	}
}

func TestService_SubscribeDepthTopics(t *testing.T) {
	mgr := &fakeManager{}
	svc, _ := newTestService(mgr)

	result := svc.SubscribeDepth("BTCUSDT", 0, 0)
	if result.Stream != "btcusdt@depth10" {
		t.Errorf("Stream = %q, want btcusdt@depth10 (default levels)", result.Stream)
	}

	result = svc.SubscribeDepth("ETHUSDT", 5, 100)
	if result.Stream != "ethusdt@depth5@100ms" {
		t.Errorf("Stream = %q, want ethusdt@depth5@100ms", result.Stream)
	}

	result = svc.SubscribeDepth("SOLUSDT", 20, 1000)
	if result.Stream != "solusdt@depth20" {
		t.Errorf("Stream = %q, want solusdt@depth20 (1000ms is the default speed)", result.Stream)
	}
}

func TestService_SubscribeAllTickers(t *testing.T) {
	mgr := &fakeManager{}
	svc, reg := newTestService(mgr)

	result := svc.SubscribeAllTickers()
	if result.Stream != "!ticker@arr" {
		t.Errorf("Stream = %q, want !ticker@arr", result.Stream)
	}

	desc := reg.Active()["!ticker@arr"]
	if desc.Type != "allTickers" {
		t.Errorf("descriptor Type = %q, want allTickers", desc.Type)
	}
}

func TestService_SubscribeFailureRollsBack(t *testing.T) {
	mgr := &fakeManager{subscribeErr: errors.New("dial failed")}
	svc, reg := newTestService(mgr)

	result := svc.SubscribeTrade("BTCUSDT")
	if result.Status != StatusSubscribing {
		t.Errorf("Status = %q, want subscribing (failure is async)", result.Status)
	}

	waitFor(t, func() bool { return !reg.Has("btcusdt@trade") },
		"registry entry was not rolled back after subscribe failure")
}

func TestService_CallbackRecordsToRegistry(t *testing.T) {
	mgr := &fakeManager{}
	svc, reg := newTestService(mgr)

	svc.SubscribeTrade("BTCUSDT")
	waitFor(t, func() bool { return len(mgr.subscribedTopics()) == 1 }, "subscribe never completed")

	mgr.mu.Lock()
	cb := mgr.lastCallback
	mgr.mu.Unlock()

	cb(json.RawMessage(`{"p":"100.5"}`))

	latest, err := reg.Latest("btcusdt@trade")
	if err != nil {
		t.Fatalf("Latest failed: %v", err)
	}
	if string(latest) != `{"p":"100.5"}` {
		t.Errorf("Latest = %s, want the callback payload", latest)
	}
}

func TestService_LatestEnvelopes(t *testing.T) {
	mgr := &fakeManager{}
	svc, reg := newTestService(mgr)

	result := svc.Latest("btcusdt@trade")
	if result.Status != StatusError {
		t.Errorf("Status = %q, want error for unknown stream", result.Status)
	}

	reg.Register("btcusdt@trade", registry.Descriptor{Type: "trade"})
	result = svc.Latest("btcusdt@trade")
	if result.Status != StatusPending {
		t.Errorf("Status = %q, want pending for silent stream", result.Status)
	}

	reg.Record("btcusdt@trade", json.RawMessage(`{"p":"1"}`))
	result = svc.Latest("btcusdt@trade")
	if result.Status != StatusSuccess {
		t.Errorf("Status = %q, want success", result.Status)
	}
	if string(result.Data) != `{"p":"1"}` {
		t.Errorf("Data = %s, want {\"p\":\"1\"}", result.Data)
	}
}

func TestService_UnsubscribeUnknown(t *testing.T) {
	mgr := &fakeManager{}
	svc, _ := newTestService(mgr)

	result := svc.Unsubscribe("nothing@trade")
	if result.Status != StatusError {
		t.Errorf("Status = %q, want error", result.Status)
	}
}

func TestService_Unsubscribe(t *testing.T) {
	mgr := &fakeManager{}
	svc, reg := newTestService(mgr)

	reg.Register("btcusdt@trade", registry.Descriptor{Type: "trade"})

	result := svc.Unsubscribe("btcusdt@trade")
	if result.Status != StatusUnsubscribing {
		t.Errorf("Status = %q, want unsubscribing", result.Status)
	}

	waitFor(t, func() bool {
		mgr.mu.Lock()
		defer mgr.mu.Unlock()
		return len(mgr.unsubscribed) == 1
	}, "manager Unsubscribe never called")
}

func TestService_ListActive(t *testing.T) {
	mgr := &fakeManager{}
	svc, reg := newTestService(mgr)

	active := svc.ListActive()
	if active.Count != 0 {
		t.Errorf("Count = %d, want 0", active.Count)
	}

	reg.Register("btcusdt@trade", registry.Descriptor{Type: "trade", Symbol: "btcusdt"})
	reg.Register("ethusdt@kline_1m", registry.Descriptor{
		Type: "kline", Symbol: "ethusdt", Params: map[string]string{"interval": "1m"},
	})

	active = svc.ListActive()
	if active.Count != 2 {
		t.Fatalf("Count = %d, want 2", active.Count)
	}
	if active.Streams["btcusdt@trade"].Type != "trade" {
		t.Errorf("trade stream info = %+v", active.Streams["btcusdt@trade"])
	}
	if active.Streams["ethusdt@kline_1m"].Params["interval"] != "1m" {
		t.Errorf("kline stream info = %+v", active.Streams["ethusdt@kline_1m"])
	}
}

func TestService_Poll(t *testing.T) {
	mgr := &fakeManager{}
	svc, reg := newTestService(mgr)

	if _, err := svc.Poll("nothing@trade", 10); err == nil {
		t.Error("Poll on unknown stream should fail")
	}

	reg.Register("btcusdt@trade", registry.Descriptor{Type: "trade"})
	reg.Record("btcusdt@trade", json.RawMessage(`{"n":1}`))
	reg.Record("btcusdt@trade", json.RawMessage(`{"n":2}`))
	reg.Record("btcusdt@trade", json.RawMessage(`{"n":3}`))

	result, err := svc.Poll("btcusdt@trade", 2)
	if err != nil {
		t.Fatalf("Poll failed: %v", err)
	}
	if result.Count != 2 {
		t.Errorf("Count = %d, want 2", result.Count)
	}
	if string(result.Messages[0]) != `{"n":1}` || string(result.Messages[1]) != `{"n":2}` {
		t.Errorf("Messages = %v, want the two oldest in order", result.Messages)
	}

	// Remaining message drains with max <= 0
	result, err = svc.Poll("btcusdt@trade", 0)
	if err != nil {
		t.Fatalf("Poll failed: %v", err)
	}
	if result.Count != 1 {
		t.Errorf("Count = %d, want 1", result.Count)
	}
}

func TestService_Cleanup(t *testing.T) {
	mgr := &fakeManager{}
	svc, _ := newTestService(mgr)

	result := svc.Cleanup()
	if result.Status != StatusSuccess {
		t.Errorf("Status = %q, want success", result.Status)
	}

	mgr.mu.Lock()
	closed := mgr.closedAll
	mgr.mu.Unlock()
	if !closed {
		t.Error("CloseAll was not called")
	}
}
