package model

import "testing"

func TestListingKey_String(t *testing.T) {
	k := ListingKey{ChainID: 56, ListingID: "1042"}
	if got := k.String(); got != "56:1042" {
		t.Errorf("String() = %q, want %q", got, "56:1042")
	}
}

func TestListing_Key(t *testing.T) {
	l := Listing{ChainID: 97, ListingID: "7", Name: "irrelevant"}
	want := ListingKey{ChainID: 97, ListingID: "7"}
	if got := l.Key(); got != want {
		t.Errorf("Key() = %+v, want %+v", got, want)
	}
}

func TestListing_ListingSeq(t *testing.T) {
	tests := []struct {
		id   string
		want uint64
	}{
		{"12", 12},
		{"0", 0},
		{"18446744073709551615", 18446744073709551615},
		{"", 0},
		{"abc", 0},
		{"-5", 0},
	}

	for _, tt := range tests {
		l := Listing{ListingID: tt.id}
		if got := l.ListingSeq(); got != tt.want {
			t.Errorf("ListingSeq(%q) = %d, want %d", tt.id, got, tt.want)
		}
	}
}
