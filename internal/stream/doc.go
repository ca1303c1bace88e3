// Package stream implements the WebSocket connection pool and the
// stream subscription manager.
//
// The manager multiplexes logical topic subscriptions over persistent
// connections: combined-stream connections carry many topics via
// {"stream","data"} envelopes and explicit SUBSCRIBE/UNSUBSCRIBE control
// frames; raw-stream connections carry exactly one topic implied by the
// connection URL. Inbound frames are routed to per-topic callbacks;
// liveness probes are answered before any other routing.
package stream
