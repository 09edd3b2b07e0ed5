package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
)

// GetFastListings fetches the fast listing feed for a chain. The fast feed is
// cheap and frequent but may be partial by design.
func (c *Client) GetFastListings(ctx context.Context, chainID int64) ([]FeedItem, error) {
	return c.getFeed(ctx, "/listings/fast", chainID)
}

// GetFullListings fetches the full listing feed for a chain. The full feed is
// authoritative for the chain scope but refreshed less often.
func (c *Client) GetFullListings(ctx context.Context, chainID int64) ([]FeedItem, error) {
	return c.getFeed(ctx, "/listings/full", chainID)
}

func (c *Client) getFeed(ctx context.Context, path string, chainID int64) ([]FeedItem, error) {
	query := url.Values{}
	query.Set("chain", strconv.FormatInt(chainID, 10))

	var resp FeedResponse
	if err := c.get(ctx, path, query, &resp); err != nil {
		return nil, fmt.Errorf("get %s: %w", path, err)
	}

	return resp.Items, nil
}
