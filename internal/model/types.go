package model

import (
	"strconv"

	"github.com/google/uuid"
)

// ListingKey uniquely identifies a listing across chains.
type ListingKey struct {
	ChainID   int64  // EVM chain id (e.g. 56)
	ListingID string // Marketplace listing id, decimal string
}

// String returns the canonical "chainID:listingID" form used in logs and hashes.
func (k ListingKey) String() string {
	return strconv.FormatInt(k.ChainID, 10) + ":" + k.ListingID
}

// Listing is the visible state of a single marketplace listing as served
// to UI consumers. Reconciliation bookkeeping lives in the view package,
// not here.
type Listing struct {
	ChainID      int64  `json:"chainId"`
	ListingID    string `json:"listingId"`
	Collection   string `json:"collection"`   // NFT contract address
	TokenID      string `json:"tokenId"`      // Token id within the collection
	Name         string `json:"name"`         // Display name
	Image        string `json:"image"`        // Gateway image URL
	PriceDisplay string `json:"priceDisplay"` // Preformatted price (e.g. "1.25 BNB")
	Seller       string `json:"seller"`       // Seller address
	ListedAtMs   int64  `json:"listedAtMs"`   // Listing time (ms since epoch), 0 if unknown
}

// Key returns the composite identity of the listing.
func (l Listing) Key() ListingKey {
	return ListingKey{ChainID: l.ChainID, ListingID: l.ListingID}
}

// ListingSeq returns the numeric value of the listing id for ordering.
// Non-numeric ids sort as 0.
func (l Listing) ListingSeq() uint64 {
	n, err := strconv.ParseUint(l.ListingID, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// View event types recorded by the archive writer.
const (
	EventListed   = "listed"
	EventUpdated  = "updated"
	EventDelisted = "delisted"
)

// ViewEvent records one transition of the merged view (append-only).
type ViewEvent struct {
	EventID    uuid.UUID // Generated at merge time
	Type       string    // listed, updated, delisted
	Listing    Listing   // Listing state after the transition (last known state for delisted)
	RecordedAt int64     // Transition time (ms since epoch)
}
