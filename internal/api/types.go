package api

// FeedResponse is the envelope both listing feeds share.
type FeedResponse struct {
	Items []FeedItem `json:"items"`
}

// FeedItem is a single listing as served by the scan API. The fast feed may
// omit descriptive fields; identity fields are required and items missing
// them are dropped at normalization.
type FeedItem struct {
	ChainID   int64  `json:"chainId"`
	ListingID string `json:"listingId"`

	Collection   string `json:"collection"`
	TokenID      string `json:"tokenId"`
	Name         string `json:"name"`
	Image        string `json:"image"`
	PriceDisplay string `json:"priceDisplay"`
	Seller       string `json:"seller"`

	ListedAtMs int64  `json:"listedAtMs"`
	ListedAgo  string `json:"listedAgo"` // Human-formatted, display only
}
