package config

import (
	"time"

	"github.com/google/uuid"
)

// Default values for optional configuration fields.
const (
	DefaultRestURL           = "https://api.binance.com"
	DefaultWSURL             = "wss://stream.binance.com:9443"
	DefaultAPITimeout        = 30 * time.Second
	DefaultQueueCapacity     = 100
	DefaultMessageBufferSize = 1000
	DefaultPingTimeout       = 10 * time.Minute
	DefaultWriteTimeout      = 5 * time.Second
	DefaultHandshakeTimeout  = 10 * time.Second
	DefaultServerPort        = 8080
)

func (c *GatewayConfig) applyDefaults() {
	if c.Instance.ID == "" {
		c.Instance.ID = "gateway-" + uuid.NewString()[:8]
	}

	// API defaults
	if c.API.RestURL == "" {
		c.API.RestURL = DefaultRestURL
	}
	if c.API.WSURL == "" {
		c.API.WSURL = DefaultWSURL
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = DefaultAPITimeout
	}

	// Streams defaults
	if c.Streams.QueueCapacity == 0 {
		c.Streams.QueueCapacity = DefaultQueueCapacity
	}
	if c.Streams.MessageBufferSize == 0 {
		c.Streams.MessageBufferSize = DefaultMessageBufferSize
	}
	if c.Streams.PingTimeout == 0 {
		c.Streams.PingTimeout = DefaultPingTimeout
	}
	if c.Streams.WriteTimeout == 0 {
		c.Streams.WriteTimeout = DefaultWriteTimeout
	}
	if c.Streams.HandshakeTimeout == 0 {
		c.Streams.HandshakeTimeout = DefaultHandshakeTimeout
	}

	// Server defaults
	if c.Server.Port == 0 {
		c.Server.Port = DefaultServerPort
	}
}
