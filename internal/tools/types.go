package tools

import "encoding/json"

// Stream operation statuses.
const (
	StatusSubscribing       = "subscribing"
	StatusAlreadySubscribed = "already_subscribed"
	StatusUnsubscribing     = "unsubscribing"
	StatusSuccess           = "success"
	StatusPending           = "pending"
	StatusError             = "error"
)

// StreamResult is the envelope returned by stream lifecycle operations.
type StreamResult struct {
	Status  string          `json:"status"`
	Stream  string          `json:"stream,omitempty"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// ActiveStreams lists the currently subscribed streams with their descriptors.
type ActiveStreams struct {
	Count   int                   `json:"count"`
	Streams map[string]StreamInfo `json:"streams"`
}

// StreamInfo describes one active stream.
type StreamInfo struct {
	Type   string            `json:"type"`
	Symbol string            `json:"symbol,omitempty"`
	Params map[string]string `json:"params,omitempty"`
}

// PollResult carries messages drained from a stream's delivery queue.
type PollResult struct {
	Status   string            `json:"status"`
	Stream   string            `json:"stream"`
	Count    int               `json:"count"`
	Messages []json.RawMessage `json:"messages"`
}
