package api

import (
	"github.com/bitgallery/scanview/internal/model"
)

// ToModel converts a feed item to the shared listing type.
func (i FeedItem) ToModel() model.Listing {
	return model.Listing{
		ChainID:      i.ChainID,
		ListingID:    i.ListingID,
		Collection:   i.Collection,
		TokenID:      i.TokenID,
		Name:         i.Name,
		Image:        i.Image,
		PriceDisplay: i.PriceDisplay,
		Seller:       i.Seller,
		ListedAtMs:   i.ListedAtMs,
	}
}

// Valid reports whether the item carries the identity fields required for
// reconciliation.
func (i FeedItem) Valid() bool {
	return i.ChainID != 0 && i.ListingID != ""
}

// Normalize filters out shape-invalid items and converts the rest. Invalid
// items are not an error for the round; they are simply dropped before merge.
func Normalize(items []FeedItem) []model.Listing {
	out := make([]model.Listing, 0, len(items))
	for _, item := range items {
		if !item.Valid() {
			continue
		}
		out = append(out, item.ToModel())
	}
	return out
}
