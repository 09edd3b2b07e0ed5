package api

import "testing"

func TestNormalize_DropsInvalidItems(t *testing.T) {
	items := []FeedItem{
		{ChainID: 56, ListingID: "1", Name: "ok"},
		{ChainID: 0, ListingID: "2"},  // missing chain id
		{ChainID: 56, ListingID: ""},  // missing listing id
		{},                            // empty
		{ChainID: 97, ListingID: "9"}, // ok, sparse descriptive fields
	}

	got := Normalize(items)
	if len(got) != 2 {
		t.Fatalf("Normalize kept %d items, want 2", len(got))
	}
	if got[0].ListingID != "1" || got[1].ListingID != "9" {
		t.Errorf("Normalize kept %+v, want ids 1 and 9", got)
	}
}

func TestFeedItem_ToModel(t *testing.T) {
	item := FeedItem{
		ChainID:      56,
		ListingID:    "12",
		Collection:   "0xabc",
		TokenID:      "77",
		Name:         "Item 12",
		Image:        "https://gw.example/ipfs/Qm12",
		PriceDisplay: "1.25 BNB",
		Seller:       "0xseller",
		ListedAtMs:   1700000000000,
		ListedAgo:    "2h ago", // display only, not carried into the model
	}

	got := item.ToModel()
	if got.ChainID != 56 || got.ListingID != "12" {
		t.Errorf("identity = (%d, %q), want (56, 12)", got.ChainID, got.ListingID)
	}
	if got.Collection != item.Collection || got.TokenID != item.TokenID {
		t.Error("token identity fields not carried over")
	}
	if got.Name != item.Name || got.Image != item.Image ||
		got.PriceDisplay != item.PriceDisplay || got.Seller != item.Seller {
		t.Error("descriptive fields not carried over")
	}
	if got.ListedAtMs != item.ListedAtMs {
		t.Errorf("ListedAtMs = %d, want %d", got.ListedAtMs, item.ListedAtMs)
	}
}
