// Package api provides the client for the marketplace scan API.
//
// The scan API serves cached JSON snapshots of on-chain listing state:
//   - /listings/fast: frequent, cheap, possibly incomplete
//   - /listings/full: slower, authoritative for the requested chain
//
// All requests are plain GETs with cache-busting query parameters; the client
// never writes to the API.
package api
