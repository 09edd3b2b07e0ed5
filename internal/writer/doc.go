// Package writer implements the batch writer for the listing event archive.
//
// The writer:
//   - Consumes view transitions (listed/updated/delisted) from a buffer
//   - Batches inserts by size and flush interval
//   - Uses append-only semantics (never update, only insert)
package writer
