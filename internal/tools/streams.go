package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cwhitfield/binance-gateway/internal/registry"
	"github.com/cwhitfield/binance-gateway/internal/stream"
)

// subscribeTimeout bounds the async dial + control frame for one subscription.
const subscribeTimeout = 30 * time.Second

// AllTickersTopic is the market-wide ticker stream name.
const AllTickersTopic = "!ticker@arr"

// SubscribeTrade starts a real-time trade stream for a symbol.
func (s *Service) SubscribeTrade(symbol string) StreamResult {
	return s.subscribeStream(strings.ToLower(symbol) + "@trade")
}

// SubscribeKline starts a candlestick stream. Empty interval defaults to 1m.
func (s *Service) SubscribeKline(symbol, interval string) StreamResult {
	if interval == "" {
		interval = "1m"
	}
	return s.subscribeStream(strings.ToLower(symbol) + "@kline_" + interval)
}

// SubscribeTicker starts a 24hr rolling ticker stream for a symbol.
func (s *Service) SubscribeTicker(symbol string) StreamResult {
	return s.subscribeStream(strings.ToLower(symbol) + "@ticker")
}

// SubscribeBookTicker starts a best bid/ask stream for a symbol.
func (s *Service) SubscribeBookTicker(symbol string) StreamResult {
	return s.subscribeStream(strings.ToLower(symbol) + "@bookTicker")
}

// SubscribeDepth starts a partial order book stream. levels defaults to 10
// and must be 5, 10, or 20; updateSpeed must be 0 (exchange default), 100,
// or 1000 milliseconds. Invalid input fails synchronously with no network call.
func (s *Service) SubscribeDepth(symbol string, levels, updateSpeed int) StreamResult {
	if levels == 0 {
		levels = 10
	}
	if levels != 5 && levels != 10 && levels != 20 {
		return StreamResult{
			Status:  StatusError,
			Message: fmt.Sprintf("invalid depth levels %d: must be 5, 10, or 20", levels),
		}
	}
	if updateSpeed != 0 && updateSpeed != 100 && updateSpeed != 1000 {
		return StreamResult{
			Status:  StatusError,
			Message: fmt.Sprintf("invalid update speed %dms: must be 100 or 1000", updateSpeed),
		}
	}

	topic := fmt.Sprintf("%s@depth%d", strings.ToLower(symbol), levels)
	if updateSpeed == 100 {
		topic += "@100ms"
	}
	return s.subscribeStream(topic)
}

// SubscribeAllTickers starts the market-wide ticker stream covering every symbol.
func (s *Service) SubscribeAllTickers() StreamResult {
	return s.subscribeStream(AllTickersTopic)
}

// subscribeStream registers the topic and kicks off the subscription in the
// background. The registry entry is created before the dial so a status is
// visible immediately, and rolled back if the subscription fails.
func (s *Service) subscribeStream(topic string) StreamResult {
	if s.registry.Has(topic) {
		return StreamResult{
			Status:  StatusAlreadySubscribed,
			Stream:  topic,
			Message: "already subscribed to " + topic,
		}
	}

	s.registry.Register(topic, registry.ParseTopic(topic))

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), subscribeTimeout)
		defer cancel()

		err := s.streams.Subscribe(ctx, topic, func(data json.RawMessage) {
			s.registry.Record(topic, data)
		}, stream.SubscribeOptions{Combined: true})
		if err != nil {
			s.registry.Remove(topic)
			s.logger.Error("subscribe failed", "topic", topic, "error", err)
		}
	}()

	return StreamResult{
		Status:  StatusSubscribing,
		Stream:  topic,
		Message: "subscription to " + topic + " initiated",
	}
}

// Unsubscribe stops a stream and discards its cached state.
func (s *Service) Unsubscribe(topic string) StreamResult {
	if !s.registry.Has(topic) {
		return StreamResult{
			Status:  StatusError,
			Stream:  topic,
			Message: "not subscribed to " + topic,
		}
	}

	go func() {
		if err := s.streams.Unsubscribe(topic); err != nil {
			s.logger.Error("unsubscribe failed", "topic", topic, "error", err)
			if errors.Is(err, stream.ErrNoSubscription) {
				// The manager never knew the topic; drop the stale entry.
				s.registry.Remove(topic)
			}
		}
	}()

	return StreamResult{
		Status:  StatusUnsubscribing,
		Stream:  topic,
		Message: "unsubscription from " + topic + " initiated",
	}
}

// ListActive returns the currently subscribed streams.
func (s *Service) ListActive() ActiveStreams {
	active := s.registry.Active()

	streams := make(map[string]StreamInfo, len(active))
	for topic, desc := range active {
		streams[topic] = StreamInfo{
			Type:   desc.Type,
			Symbol: desc.Symbol,
			Params: desc.Params,
		}
	}

	return ActiveStreams{
		Count:   len(streams),
		Streams: streams,
	}
}

// Latest returns the most recent message for a stream: success with data,
// pending when the stream is live but silent, error when not subscribed.
func (s *Service) Latest(topic string) StreamResult {
	data, err := s.registry.Latest(topic)
	switch {
	case errors.Is(err, registry.ErrNotSubscribed):
		return StreamResult{
			Status:  StatusError,
			Stream:  topic,
			Message: "not subscribed to " + topic,
		}
	case errors.Is(err, registry.ErrNoData):
		return StreamResult{
			Status:  StatusPending,
			Stream:  topic,
			Message: "no data received yet for " + topic,
		}
	}

	return StreamResult{
		Status: StatusSuccess,
		Stream: topic,
		Data:   data,
	}
}

// Poll drains up to max queued messages from a stream's delivery queue.
// max <= 0 drains the whole queue.
func (s *Service) Poll(topic string, max int) (PollResult, error) {
	q, ok := s.registry.Queue(topic)
	if !ok {
		return PollResult{}, fmt.Errorf("not subscribed to %s", topic)
	}

	if max <= 0 {
		max = q.Cap()
	}
	msgs := q.Drain(max)

	return PollResult{
		Status:   StatusSuccess,
		Stream:   topic,
		Count:    len(msgs),
		Messages: msgs,
	}, nil
}

// Cleanup closes every connection and purges all stream state.
func (s *Service) Cleanup() StreamResult {
	s.streams.CloseAll()
	return StreamResult{
		Status:  StatusSuccess,
		Message: "all stream connections closed",
	}
}
