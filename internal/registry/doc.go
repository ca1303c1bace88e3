// Package registry implements the Topic Registry component.
//
// The Topic Registry:
//   - Tracks active stream topics and their descriptors
//   - Keeps a latest-value cache per topic for passive polling
//   - Owns one bounded delivery queue per topic (drop-oldest on overflow)
package registry
