package stream

import (
	"encoding/json"
	"errors"
	"time"
)

// Errors
var (
	ErrNotConnected    = errors.New("not connected")
	ErrStaleConnection = errors.New("connection stale (no ping)")
	ErrAlreadyClosed   = errors.New("already closed")
	ErrNoSubscription  = errors.New("no active subscription")
	ErrNoConnection    = errors.New("no such connection")
	ErrShuttingDown    = errors.New("manager is shut down")
)

// Callback is invoked with each decoded message for a topic.
// It runs on the owning connection's read loop: messages on one connection
// are delivered in arrival order, and a slow callback stalls that
// connection only.
type Callback func(data json.RawMessage)

// TimestampedMessage wraps raw frame bytes with a receive timestamp.
type TimestampedMessage struct {
	Data       []byte    // Raw frame bytes from the WebSocket
	ReceivedAt time.Time // Local timestamp when ReadMessage() returned
}

// Command is a combined-stream control frame.
type Command struct {
	Method string   `json:"method"` // "SUBSCRIBE" or "UNSUBSCRIBE"
	Params []string `json:"params"`
	ID     int64    `json:"id"`
}

// frame is the decoded shape of an inbound message. The fields are a
// superset of the three frame kinds the server sends: liveness probes,
// combined-stream envelopes, and control-frame acks.
type frame struct {
	Ping   json.RawMessage `json:"ping"`
	Stream string          `json:"stream"`
	Data   json.RawMessage `json:"data"`
	ID     *int64          `json:"id"`
	Result json.RawMessage `json:"result"`
}

// pongFrame answers a liveness probe, echoing the probe payload.
type pongFrame struct {
	Pong json.RawMessage `json:"pong"`
}

// SubscribeOptions controls connection placement for a subscription.
type SubscribeOptions struct {
	// ConnKey selects an existing or new connection. Empty derives a
	// deterministic key from the topic so repeated subscribes reuse it.
	ConnKey string

	// Combined selects the shared /stream endpoint with control frames;
	// false opens a dedicated /ws/<topic> connection.
	Combined bool
}

// ClientConfig configures a WebSocket client.
type ClientConfig struct {
	URL              string        // Full WebSocket URL
	HandshakeTimeout time.Duration // Dial deadline
	PingTimeout      time.Duration // Max time without ping/pong before the connection is stale
	WriteTimeout     time.Duration // Write deadline for sends
	BufferSize       int           // Message channel buffer size
}

// DefaultClientConfig returns sensible defaults.
// Binance pings every 3 minutes and allows 10 minutes without a pong.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		HandshakeTimeout: 10 * time.Second,
		PingTimeout:      10 * time.Minute,
		WriteTimeout:     5 * time.Second,
		BufferSize:       1000,
	}
}

// ManagerConfig configures the subscription manager.
type ManagerConfig struct {
	WSBaseURL         string        // e.g. wss://stream.binance.com:9443
	HandshakeTimeout  time.Duration // Dial deadline per connection
	PingTimeout       time.Duration // Staleness threshold per connection
	WriteTimeout      time.Duration // Write deadline for sends
	MessageBufferSize int           // Per-connection receive buffer
}

// DefaultManagerConfig returns sensible defaults.
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		WSBaseURL:         "wss://stream.binance.com:9443",
		HandshakeTimeout:  10 * time.Second,
		PingTimeout:       10 * time.Minute,
		WriteTimeout:      5 * time.Second,
		MessageBufferSize: 1000,
	}
}

// ManagerStats provides statistics about the subscription manager.
type ManagerStats struct {
	ConnectedCount int
	TopicCount     int
}
