// Package server exposes the merged listing view to UI clients.
//
// Endpoints:
//   - GET /listings: current sorted view, optional ?q= substring filter
//   - GET /listings/active: single-active-listing resolution for a token
//   - GET /ws: WebSocket push of the view whenever its fingerprint changes
//   - GET /healthz, GET /status: liveness and poller health
//
// The server is strictly read-only: handlers receive immutable snapshots and
// never touch reconciliation state.
package server
