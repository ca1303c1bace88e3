// Package binance provides a client for the Binance public market-data REST API.
//
// All numeric fields arrive from the exchange as decimal strings and are
// converted to float64/int64 at this boundary.
package binance
