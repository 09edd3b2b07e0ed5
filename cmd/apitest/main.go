package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/bitgallery/scanview/internal/api"
	"github.com/bitgallery/scanview/internal/config"
)

func main() {
	baseURL := flag.String("base", config.DefaultBaseURL, "scan API base URL")
	chainID := flag.Int64("chain", config.DefaultChainID, "chain id")
	flag.Parse()

	client := api.NewClient(*baseURL, api.WithTimeout(30*time.Second))

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	fmt.Println("=== Testing fast feed ===")
	fast, err := client.GetFastListings(ctx, *chainID)
	if err != nil {
		log.Fatalf("GetFastListings failed: %v", err)
	}
	printItems(fast, 5)

	fmt.Println("\n=== Testing full feed ===")
	full, err := client.GetFullListings(ctx, *chainID)
	if err != nil {
		log.Fatalf("GetFullListings failed: %v", err)
	}
	printItems(full, 5)

	fmt.Printf("\nfast: %d items (%d valid), full: %d items (%d valid)\n",
		len(fast), len(api.Normalize(fast)),
		len(full), len(api.Normalize(full)))
}

func printItems(items []api.FeedItem, max int) {
	for i, item := range items {
		if i >= max {
			fmt.Printf("  ... and %d more\n", len(items)-max)
			return
		}
		fmt.Printf("  %d. [%d:%s] %s - %s (seller: %s)\n",
			i+1, item.ChainID, item.ListingID, item.Name, item.PriceDisplay, item.Seller)
	}
}
