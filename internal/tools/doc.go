// Package tools exposes the gateway's operations as a flat service layer:
// one method per market-data fetch or stream action, each returning either
// converted REST data or a status envelope for stream lifecycle operations.
package tools
