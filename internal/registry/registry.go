package registry

import (
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
)

// Errors
var (
	// ErrNotSubscribed is returned for topics with no active registration.
	ErrNotSubscribed = errors.New("not subscribed")

	// ErrNoData is returned for registered topics that have not received a message yet.
	ErrNoData = errors.New("no data yet")
)

// Descriptor describes a registered topic.
type Descriptor struct {
	Type   string            `json:"type"`
	Symbol string            `json:"symbol,omitempty"`
	Params map[string]string `json:"params,omitempty"`
}

// entry holds the per-topic state.
type entry struct {
	desc    Descriptor
	latest  json.RawMessage
	hasData bool
	queue   *Queue[json.RawMessage]
}

// Registry tracks active topics, their latest payloads, and delivery queues.
type Registry struct {
	logger   *slog.Logger
	queueCap int

	mu      sync.RWMutex
	entries map[string]*entry
}

// New creates a Registry whose per-topic delivery queues hold queueCap messages.
func New(queueCap int, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	if queueCap < 1 {
		queueCap = 1
	}

	return &Registry{
		logger:   logger,
		queueCap: queueCap,
		entries:  make(map[string]*entry),
	}
}

// Register adds a topic with its descriptor and a fresh delivery queue.
// Returns false if the topic is already registered.
func (r *Registry) Register(topic string, desc Descriptor) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[topic]; ok {
		return false
	}

	r.entries[topic] = &entry{
		desc:  desc,
		queue: NewQueue[json.RawMessage](r.queueCap),
	}
	return true
}

// Record stores msg as the topic's latest value and appends it to the
// topic's delivery queue (evicting the oldest entry when full).
// Messages for unknown topics are dropped; Record returns false for them.
func (r *Registry) Record(topic string, msg json.RawMessage) bool {
	r.mu.Lock()
	e, ok := r.entries[topic]
	if !ok {
		r.mu.Unlock()
		r.logger.Debug("dropping message for unregistered topic", "topic", topic)
		return false
	}
	e.latest = msg
	e.hasData = true
	q := e.queue
	r.mu.Unlock()

	q.Push(msg)
	return true
}

// Latest returns the most recent message for a topic. It distinguishes an
// unknown topic (ErrNotSubscribed) from a registered-but-silent one (ErrNoData).
func (r *Registry) Latest(topic string) (json.RawMessage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[topic]
	if !ok {
		return nil, ErrNotSubscribed
	}
	if !e.hasData {
		return nil, ErrNoData
	}
	return e.latest, nil
}

// Queue returns the delivery queue for a topic, for pull-based consumers.
func (r *Registry) Queue(topic string) (*Queue[json.RawMessage], bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[topic]
	if !ok {
		return nil, false
	}
	return e.queue, true
}

// Has reports whether a topic is registered.
func (r *Registry) Has(topic string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[topic]
	return ok
}

// Active returns a read-only snapshot of topic descriptors.
func (r *Registry) Active() map[string]Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	snapshot := make(map[string]Descriptor, len(r.entries))
	for topic, e := range r.entries {
		snapshot[topic] = e.desc
	}
	return snapshot
}

// Len returns the number of registered topics.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Remove deletes a topic's descriptor, latest value, and delivery queue.
// Returns false if the topic was not registered.
func (r *Registry) Remove(topic string) bool {
	r.mu.Lock()
	e, ok := r.entries[topic]
	if ok {
		delete(r.entries, topic)
	}
	r.mu.Unlock()

	if !ok {
		return false
	}
	e.queue.Close()
	return true
}
