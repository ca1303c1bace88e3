package config

import "time"

// GatewayConfig is the root configuration for a gateway instance.
type GatewayConfig struct {
	Instance InstanceConfig `yaml:"instance"`
	API      APIConfig      `yaml:"api"`
	Streams  StreamsConfig  `yaml:"streams"`
	Server   ServerConfig   `yaml:"server"`
}

// InstanceConfig identifies this gateway.
type InstanceConfig struct {
	ID string `yaml:"id"`
}

// APIConfig holds Binance endpoint settings.
type APIConfig struct {
	RestURL string        `yaml:"rest_url"`
	WSURL   string        `yaml:"ws_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// StreamsConfig holds WebSocket subscription manager settings.
type StreamsConfig struct {
	QueueCapacity     int           `yaml:"queue_capacity"`      // per-topic delivery queue size
	MessageBufferSize int           `yaml:"message_buffer_size"` // per-connection receive buffer
	PingTimeout       time.Duration `yaml:"ping_timeout"`
	WriteTimeout      time.Duration `yaml:"write_timeout"`
	HandshakeTimeout  time.Duration `yaml:"handshake_timeout"`
}

// ServerConfig holds the HTTP tool surface settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}
