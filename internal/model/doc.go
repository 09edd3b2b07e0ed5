// Package model defines shared data types used across the scanview service.
//
// Conventions:
//   - Timestamps: int64 milliseconds since Unix epoch (matching the scan API); 0 = unknown
//   - Listing identity: composite (chain id, listing id); listing ids are decimal strings on the wire
//   - Prices: preformatted display strings from the indexer, never parsed or recomputed here
package model
