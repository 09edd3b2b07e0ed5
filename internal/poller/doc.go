// Package poller drives the dual-feed poll schedule against the scan API.
//
// The poller:
//   - Runs two independent timers: a fast feed (~3.5s) and a full feed (~9s),
//     with the first full poll offset so the two never burst together
//   - Never overlaps requests within a feed: a new tick cancels the previous
//     in-flight fetch, and a late response carrying a superseded sequence
//     token is discarded without touching the view
//   - Holds back empty snapshots until a feed has returned empty several
//     times in a row, so a transient indexer glitch cannot blank the UI
//   - Leaves the view completely untouched on any fetch failure; the timers
//     keep running for the lifetime of the viewer
package poller
