package view

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bitgallery/scanview/internal/model"
)

// Config holds reconciliation tunables. The thresholds trade eviction latency
// against UI flicker: neither feed alone may delist a record, and a record
// that momentarily drops out of one snapshot must survive until both feeds
// have repeatedly agreed it is gone.
type Config struct {
	FastMissThreshold int           // Consecutive fast-feed misses before a record is eviction-eligible (default: 4)
	FullMissThreshold int           // Consecutive full-feed misses before a record is eviction-eligible (default: 3)
	StaleThreshold    time.Duration // Max age since last confirmation by either feed (default: 30s)
	FingerprintCap    int           // Sorted-prefix length covered by the fingerprint (default: 250)
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		FastMissThreshold: 4,
		FullMissThreshold: 3,
		StaleThreshold:    30 * time.Second,
		FingerprintCap:    250,
	}
}

// record is a Listing plus reconciliation provenance. Provenance is never
// exposed to consumers and never enters the fingerprint.
type record struct {
	model.Listing

	sourceIsFast     bool
	missedFastRounds int
	missedFullRounds int
	lastSeenFastAtMs int64
	lastSeenFullAtMs int64
}

// MergeResult summarizes the effect of one merge pass.
type MergeResult struct {
	Added   int
	Updated int // Records whose visible fields changed
	Aged    int // Records absent from this snapshot (miss counter advanced)
	Evicted int

	Changed     bool   // True if the fingerprint differs from before the merge
	Fingerprint string // Fingerprint after the merge

	Events []model.ViewEvent // Transitions for the archive writer
}

// View is the single merged, deduplicated, sorted collection of listings.
// All mutation happens inside a merge call under one mutex; concurrent
// completions from the two feeds therefore apply atomically, one full merge
// at a time. Readers only ever receive copies.
type View struct {
	cfg    Config
	logger *slog.Logger

	mu          sync.Mutex
	records     map[model.ListingKey]*record
	order       []*record // sorted: ListedAtMs desc, numeric listing id desc
	fingerprint string
}

// New creates an empty view.
func New(cfg Config, logger *slog.Logger) *View {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.FastMissThreshold < 1 {
		cfg.FastMissThreshold = DefaultConfig().FastMissThreshold
	}
	if cfg.FullMissThreshold < 1 {
		cfg.FullMissThreshold = DefaultConfig().FullMissThreshold
	}
	if cfg.StaleThreshold <= 0 {
		cfg.StaleThreshold = DefaultConfig().StaleThreshold
	}
	if cfg.FingerprintCap < 1 {
		cfg.FingerprintCap = DefaultConfig().FingerprintCap
	}
	v := &View{
		cfg:     cfg,
		logger:  logger,
		records: make(map[model.ListingKey]*record),
	}
	v.fingerprint = v.fingerprintLocked()
	return v
}

// MergeFast applies a fast-feed snapshot. The fast feed is cheap and frequent
// but may be incomplete, so this pass never shrinks the view: it only adds,
// updates, or ages records.
func (v *View) MergeFast(items []model.Listing, now time.Time) MergeResult {
	return v.merge(items, now, true)
}

// MergeFull applies a full-feed snapshot and then runs the eviction pass.
// A record is dropped only if both miss thresholds are met, or if neither
// feed has confirmed it within the staleness window.
func (v *View) MergeFull(items []model.Listing, now time.Time) MergeResult {
	return v.merge(items, now, false)
}

func (v *View) merge(items []model.Listing, now time.Time, fast bool) MergeResult {
	v.mu.Lock()
	defer v.mu.Unlock()

	nowMs := now.UnixMilli()
	var res MergeResult

	seen := make(map[model.ListingKey]struct{}, len(items))
	for _, item := range items {
		key := item.Key()
		seen[key] = struct{}{}

		rec, ok := v.records[key]
		if !ok {
			rec = &record{Listing: item}
			v.records[key] = rec
			res.Added++
			res.Events = append(res.Events, model.ViewEvent{
				EventID:    uuid.New(),
				Type:       model.EventListed,
				Listing:    rec.Listing,
				RecordedAt: nowMs,
			})
		} else {
			before := rec.Listing
			rec.Listing = carryForward(rec.Listing, item)
			if rec.Listing != before {
				res.Updated++
				res.Events = append(res.Events, model.ViewEvent{
					EventID:    uuid.New(),
					Type:       model.EventUpdated,
					Listing:    rec.Listing,
					RecordedAt: nowMs,
				})
			}
		}

		rec.sourceIsFast = fast
		if fast {
			rec.missedFastRounds = 0
			rec.lastSeenFastAtMs = nowMs
		} else {
			rec.missedFullRounds = 0
			rec.lastSeenFullAtMs = nowMs
		}
	}

	// Age records absent from this snapshot. Eviction only ever happens on
	// the full pass.
	for key, rec := range v.records {
		if _, ok := seen[key]; ok {
			continue
		}
		if fast {
			rec.missedFastRounds++
		} else {
			rec.missedFullRounds++
		}
		res.Aged++

		if !fast && v.expired(rec, nowMs) {
			delete(v.records, key)
			res.Evicted++
			res.Events = append(res.Events, model.ViewEvent{
				EventID:    uuid.New(),
				Type:       model.EventDelisted,
				Listing:    rec.Listing,
				RecordedAt: nowMs,
			})
		}
	}

	v.resortLocked()

	fp := v.fingerprintLocked()
	res.Changed = fp != v.fingerprint
	v.fingerprint = fp
	res.Fingerprint = fp

	return res
}

// carryForward merges incoming fields over the previous record without
// regressing a known name/image/price/seller to empty, or a known listing
// time to zero.
func carryForward(prev, next model.Listing) model.Listing {
	merged := next
	if merged.Collection == "" {
		merged.Collection = prev.Collection
	}
	if merged.TokenID == "" {
		merged.TokenID = prev.TokenID
	}
	if merged.Name == "" {
		merged.Name = prev.Name
	}
	if merged.Image == "" {
		merged.Image = prev.Image
	}
	if merged.PriceDisplay == "" {
		merged.PriceDisplay = prev.PriceDisplay
	}
	if merged.Seller == "" {
		merged.Seller = prev.Seller
	}
	if merged.ListedAtMs == 0 {
		merged.ListedAtMs = prev.ListedAtMs
	}
	return merged
}

// expired reports whether a record meets the eviction criteria: both feeds
// have missed it past their thresholds, or neither feed has confirmed it
// within the staleness window.
func (v *View) expired(rec *record, nowMs int64) bool {
	if rec.missedFastRounds >= v.cfg.FastMissThreshold &&
		rec.missedFullRounds >= v.cfg.FullMissThreshold {
		return true
	}

	lastSeen := rec.lastSeenFastAtMs
	if rec.lastSeenFullAtMs > lastSeen {
		lastSeen = rec.lastSeenFullAtMs
	}
	return lastSeen > 0 && nowMs-lastSeen > v.cfg.StaleThreshold.Milliseconds()
}

func (v *View) resortLocked() {
	v.order = v.order[:0]
	for _, rec := range v.records {
		v.order = append(v.order, rec)
	}
	sort.Slice(v.order, func(i, j int) bool {
		a, b := v.order[i], v.order[j]
		if a.ListedAtMs != b.ListedAtMs {
			return a.ListedAtMs > b.ListedAtMs
		}
		as, bs := a.ListingSeq(), b.ListingSeq()
		if as != bs {
			return as > bs
		}
		return a.ListingID > b.ListingID
	})
}

// fingerprintLocked hashes the visible fields of the sorted prefix. The
// provenance flags are deliberately excluded so that a merge that only
// touched bookkeeping does not look like a visible change.
func (v *View) fingerprintLocked() string {
	h := sha256.New()
	n := len(v.order)
	if n > v.cfg.FingerprintCap {
		n = v.cfg.FingerprintCap
	}
	for _, rec := range v.order[:n] {
		fmt.Fprintf(h, "%s|%d|%s|%s\n", rec.Key(), rec.ListedAtMs, rec.Image, rec.PriceDisplay)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// Snapshot returns an immutable sorted copy of the visible listings.
func (v *View) Snapshot() []model.Listing {
	v.mu.Lock()
	defer v.mu.Unlock()

	out := make([]model.Listing, len(v.order))
	for i, rec := range v.order {
		out[i] = rec.Listing
	}
	return out
}

// Search returns the sorted listings whose name, collection or seller
// contains the query (case-insensitive). An empty query returns everything.
func (v *View) Search(query string) []model.Listing {
	all := v.Snapshot()
	if query == "" {
		return all
	}

	q := strings.ToLower(query)
	out := all[:0]
	for _, l := range all {
		if strings.Contains(strings.ToLower(l.Name), q) ||
			strings.Contains(strings.ToLower(l.Collection), q) ||
			strings.Contains(strings.ToLower(l.Seller), q) {
			out = append(out, l)
		}
	}
	return out
}

// ActiveListing resolves the single listing to show on an item detail page
// when several listings exist for the same token: the newest by listing time,
// ties broken by the highest numeric listing id.
func (v *View) ActiveListing(collection, tokenID string) (model.Listing, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()

	// order is already newest-first with the id tie-break applied.
	for _, rec := range v.order {
		if strings.EqualFold(rec.Collection, collection) && rec.TokenID == tokenID {
			return rec.Listing, true
		}
	}
	return model.Listing{}, false
}

// Fingerprint returns the current fingerprint of the visible content.
func (v *View) Fingerprint() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.fingerprint
}

// Len returns the number of records in the merged view.
func (v *View) Len() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.records)
}
