package stream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
)

// TopicSink receives notifications when the manager purges a topic, so
// per-topic state held elsewhere (latest-value cache, delivery queue) is
// cleaned up with it.
type TopicSink interface {
	Remove(topic string) bool
}

// Manager multiplexes topic subscriptions over persistent WebSocket connections.
type Manager interface {
	// Subscribe attaches a callback to a topic, opening a connection if needed.
	Subscribe(ctx context.Context, topic string, cb Callback, opts SubscribeOptions) error

	// Unsubscribe removes a topic's subscription.
	Unsubscribe(topic string) error

	// Close terminates one connection and purges every topic bound to it.
	Close(connKey string) error

	// CloseAll terminates every connection; the manager stays usable.
	CloseAll()

	// Shutdown terminates every connection and waits for read loops to exit.
	Shutdown(ctx context.Context) error

	// Topics returns the currently subscribed topics.
	Topics() []string

	// Stats returns current connection and subscription statistics.
	Stats() ManagerStats
}

// connState holds the state for a single connection.
type connState struct {
	key      string
	client   Client
	combined bool

	// ready is closed once the dial finished; dialErr is set before that.
	ready   chan struct{}
	dialErr error

	done      chan struct{}
	closeOnce sync.Once
}

// manager implements the Manager interface.
type manager struct {
	cfg    ManagerConfig
	logger *slog.Logger
	sink   TopicSink // may be nil

	// Control-frame IDs, monotonic across all connections.
	cmdID atomic.Int64

	mu        sync.RWMutex
	conns     map[string]*connState
	topicConn map[string]string // topic -> connection key
	callbacks map[string]Callback
	closed    bool

	done chan struct{}
	wg   sync.WaitGroup
}

// NewManager creates a new subscription manager. sink may be nil.
func NewManager(cfg ManagerConfig, sink TopicSink, logger *slog.Logger) Manager {
	if logger == nil {
		logger = slog.Default()
	}

	return &manager{
		cfg:       cfg,
		logger:    logger,
		sink:      sink,
		conns:     make(map[string]*connState),
		topicConn: make(map[string]string),
		callbacks: make(map[string]Callback),
		done:      make(chan struct{}),
	}
}

// deriveConnKey derives a deterministic connection key from a topic so
// repeated subscribes for the same topic reuse one connection.
func deriveConnKey(topic string) string {
	return "conn:" + topic
}

// Subscribe attaches a callback to a topic. In combined mode the topic is
// registered immediately and the SUBSCRIBE control frame is fire-and-forget:
// a send failure is returned but not retried. In raw mode the subscription
// is implicit in the connection URL and the topic is registered only after
// the dial succeeds. Subscribing an already-registered topic replaces its
// callback.
func (m *manager) Subscribe(ctx context.Context, topic string, cb Callback, opts SubscribeOptions) error {
	if topic == "" {
		return errors.New("topic must not be empty")
	}
	if cb == nil {
		return errors.New("callback must not be nil")
	}

	key := opts.ConnKey
	if key == "" {
		key = deriveConnKey(topic)
	}

	url := m.cfg.WSBaseURL + "/ws/" + topic
	if opts.Combined {
		url = m.cfg.WSBaseURL + "/stream"
	}

	cs, err := m.openConn(ctx, key, url, opts.Combined)
	if err != nil {
		return fmt.Errorf("open connection %s: %w", key, err)
	}

	m.register(topic, key, cb)

	if !opts.Combined {
		// Raw streams are subscribed by construction of the URL.
		m.logger.Info("subscribed", "topic", topic, "conn", key, "mode", "raw")
		return nil
	}

	cmd := Command{
		Method: "SUBSCRIBE",
		Params: []string{topic},
		ID:     m.cmdID.Add(1),
	}
	data, _ := json.Marshal(cmd)
	if err := cs.client.Send(data); err != nil {
		return fmt.Errorf("send subscribe for %s: %w", topic, err)
	}

	m.logger.Info("subscribed", "topic", topic, "conn", key, "mode", "combined", "id", cmd.ID)
	return nil
}

// Unsubscribe removes a topic's subscription. On a combined connection an
// UNSUBSCRIBE control frame is sent and the topic entries are removed; a raw
// connection exists solely for its topic and is closed outright.
func (m *manager) Unsubscribe(topic string) error {
	m.mu.RLock()
	key, ok := m.topicConn[topic]
	var cs *connState
	if ok {
		cs = m.conns[key]
	}
	m.mu.RUnlock()

	if !ok || cs == nil {
		return ErrNoSubscription
	}

	if !cs.combined {
		return m.Close(cs.key)
	}

	cmd := Command{
		Method: "UNSUBSCRIBE",
		Params: []string{topic},
		ID:     m.cmdID.Add(1),
	}
	data, _ := json.Marshal(cmd)
	if err := cs.client.Send(data); err != nil {
		return fmt.Errorf("send unsubscribe for %s: %w", topic, err)
	}

	m.removeTopic(topic)
	m.logger.Info("unsubscribed", "topic", topic, "conn", cs.key)
	return nil
}

// Close terminates a connection and purges all topics bound to it.
func (m *manager) Close(connKey string) error {
	m.mu.RLock()
	cs, ok := m.conns[connKey]
	m.mu.RUnlock()

	if !ok {
		return ErrNoConnection
	}

	m.teardown(cs)
	return nil
}

// CloseAll terminates every connection. The manager stays usable, so the
// caller can subscribe again afterwards.
func (m *manager) CloseAll() {
	m.mu.RLock()
	conns := make([]*connState, 0, len(m.conns))
	for _, cs := range m.conns {
		conns = append(conns, cs)
	}
	m.mu.RUnlock()

	for _, cs := range conns {
		m.teardown(cs)
	}
}

// Shutdown terminates every connection and waits for read loops to exit.
func (m *manager) Shutdown(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	conns := make([]*connState, 0, len(m.conns))
	for _, cs := range m.conns {
		conns = append(conns, cs)
	}
	m.mu.Unlock()

	close(m.done)
	for _, cs := range conns {
		m.teardown(cs)
	}

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		m.logger.Warn("shutdown timeout waiting for read loops")
		return ctx.Err()
	}

	m.logger.Info("stream manager stopped")
	return nil
}

// Topics returns the currently subscribed topics.
func (m *manager) Topics() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	topics := make([]string, 0, len(m.topicConn))
	for t := range m.topicConn {
		topics = append(topics, t)
	}
	return topics
}

// Stats returns current statistics.
func (m *manager) Stats() ManagerStats {
	m.mu.RLock()
	defer m.mu.RUnlock()

	connected := 0
	for _, cs := range m.conns {
		if cs.client.IsConnected() {
			connected++
		}
	}

	return ManagerStats{
		ConnectedCount: connected,
		TopicCount:     len(m.topicConn),
	}
}

// openConn returns the connection for key, dialing it if needed. Creation is
// idempotent: concurrent opens of the same key share a single dial, with
// late arrivals waiting on the ready channel.
func (m *manager) openConn(ctx context.Context, key, url string, combined bool) (*connState, error) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil, ErrShuttingDown
	}
	if cs, ok := m.conns[key]; ok {
		m.mu.Unlock()
		select {
		case <-cs.ready:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		if cs.dialErr != nil {
			return nil, cs.dialErr
		}
		return cs, nil
	}

	clientCfg := ClientConfig{
		URL:              url,
		HandshakeTimeout: m.cfg.HandshakeTimeout,
		PingTimeout:      m.cfg.PingTimeout,
		WriteTimeout:     m.cfg.WriteTimeout,
		BufferSize:       m.cfg.MessageBufferSize,
	}
	cs := &connState{
		key:      key,
		client:   NewClient(clientCfg, m.logger.With("conn", key)),
		combined: combined,
		ready:    make(chan struct{}),
		done:     make(chan struct{}),
	}
	m.conns[key] = cs
	m.mu.Unlock()

	if err := cs.client.Connect(ctx); err != nil {
		cs.dialErr = err
		m.mu.Lock()
		delete(m.conns, key)
		m.mu.Unlock()
		close(cs.ready)
		return nil, err
	}
	close(cs.ready)

	m.wg.Add(1)
	go m.readLoop(cs)

	m.logger.Info("connection opened", "conn", key, "url", url, "combined", combined)
	return cs, nil
}

// register records the topic -> connection and topic -> callback mappings.
func (m *manager) register(topic, key string, cb Callback) {
	m.mu.Lock()
	m.topicConn[topic] = key
	m.callbacks[topic] = cb
	m.mu.Unlock()
}

// removeTopic drops a single topic's mappings and notifies the sink.
func (m *manager) removeTopic(topic string) {
	m.mu.Lock()
	delete(m.topicConn, topic)
	delete(m.callbacks, topic)
	m.mu.Unlock()

	if m.sink != nil {
		m.sink.Remove(topic)
	}
}

// teardown closes a connection and purges every topic bound to it. It is
// idempotent: the explicit Close path and the read-loop failure path both
// land here.
func (m *manager) teardown(cs *connState) {
	cs.closeOnce.Do(func() {
		close(cs.done)
		cs.client.Close()

		m.mu.Lock()
		delete(m.conns, cs.key)
		var purged []string
		for t, k := range m.topicConn {
			if k == cs.key {
				delete(m.topicConn, t)
				delete(m.callbacks, t)
				purged = append(purged, t)
			}
		}
		m.mu.Unlock()

		if m.sink != nil {
			for _, t := range purged {
				m.sink.Remove(t)
			}
		}

		m.logger.Info("connection closed", "conn", cs.key, "purged_topics", len(purged))
	})
}

// readLoop reads frames from a connection and routes them until the
// connection dies or is closed.
func (m *manager) readLoop(cs *connState) {
	defer m.wg.Done()

	for {
		select {
		case <-m.done:
			return

		case <-cs.done:
			return

		case err := <-cs.client.Errors():
			m.logger.Warn("connection error", "conn", cs.key, "error", err)
			m.teardown(cs)
			return

		case msg, ok := <-cs.client.Messages():
			if !ok {
				m.teardown(cs)
				return
			}
			m.route(cs, msg)
		}
	}
}

// route dispatches one inbound frame: liveness probes are answered before
// anything else, combined envelopes go to their topic's callback, control
// acks are dropped, and everything else is treated as a raw-stream frame.
// Malformed frames are logged and dropped; they never stop the read loop.
func (m *manager) route(cs *connState, msg TimestampedMessage) {
	data := bytes.TrimSpace(msg.Data)
	if len(data) == 0 {
		return
	}

	// Market-wide raw streams (!ticker@arr) push top-level JSON arrays.
	if data[0] == '[' {
		m.routeRaw(cs, data)
		return
	}

	var f frame
	if err := json.Unmarshal(data, &f); err != nil {
		m.logger.Warn("dropping malformed frame", "conn", cs.key, "error", err)
		return
	}

	if f.Ping != nil {
		pong, _ := json.Marshal(pongFrame{Pong: f.Ping})
		if err := cs.client.Send(pong); err != nil {
			m.logger.Warn("failed to send pong", "conn", cs.key, "error", err)
		}
		return
	}

	// Combined-stream envelope.
	if f.Stream != "" && f.Data != nil {
		m.mu.RLock()
		cb, ok := m.callbacks[f.Stream]
		m.mu.RUnlock()

		if !ok {
			// A message can arrive before its callback is registered.
			m.logger.Debug("no callback for topic, dropping", "topic", f.Stream)
			return
		}
		cb(f.Data)
		return
	}

	// Control-frame ack ({"result":null,"id":N}): never routed to callbacks.
	if f.ID != nil {
		m.logger.Debug("control frame ack", "conn", cs.key, "id", *f.ID)
		return
	}

	m.routeRaw(cs, data)
}

// routeRaw resolves a raw-stream frame to the first topic owned by this
// connection and hands it the full payload.
func (m *manager) routeRaw(cs *connState, data []byte) {
	var cb Callback
	m.mu.RLock()
	for t, k := range m.topicConn {
		if k == cs.key {
			cb = m.callbacks[t]
			break
		}
	}
	m.mu.RUnlock()

	if cb == nil {
		m.logger.Debug("no topic registered for raw frame", "conn", cs.key)
		return
	}
	cb(data)
}
