// Package view implements the merged listing view.
//
// The view:
//   - Reconciles two independently polled snapshots of the same chain-scoped
//     listing set: a frequent but possibly incomplete fast feed, and a slower
//     authoritative full feed
//   - Keeps exactly one record per (chain id, listing id)
//   - Evicts a record only after sustained absence from both feeds, or after
//     a wall-clock staleness window with no confirmation from either feed
//   - Exposes immutable sorted snapshots and a fingerprint of the visible
//     content so callers can skip no-op fan-out
package view
