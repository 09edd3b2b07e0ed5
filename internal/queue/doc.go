// Package queue provides the in-process buffer between the poller and the
// archive writer. The buffer grows instead of blocking producers: a slow
// database must never stall a merge.
package queue
