package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"
)

func TestNewClient(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		c := NewClient("https://scan.example.com/api/v1")

		if c.baseURL != "https://scan.example.com/api/v1" {
			t.Errorf("baseURL = %q, want %q", c.baseURL, "https://scan.example.com/api/v1")
		}
		if c.httpClient.Timeout != 30*time.Second {
			t.Errorf("Timeout = %v, want %v", c.httpClient.Timeout, 30*time.Second)
		}
		if c.maxRetries != 2 {
			t.Errorf("maxRetries = %d, want %d", c.maxRetries, 2)
		}
		if c.logger == nil {
			t.Error("logger should not be nil")
		}
	})

	t.Run("with options", func(t *testing.T) {
		logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
		custom := &http.Client{Timeout: 10 * time.Second}
		c := NewClient("https://scan.example.com/api/v1",
			WithTimeout(5*time.Second),
			WithRetries(4, 250*time.Millisecond),
			WithLogger(logger),
		)
		if c.httpClient.Timeout != 5*time.Second {
			t.Errorf("Timeout = %v, want %v", c.httpClient.Timeout, 5*time.Second)
		}
		if c.maxRetries != 4 || c.retryBackoff != 250*time.Millisecond {
			t.Errorf("retries = (%d, %v), want (4, 250ms)", c.maxRetries, c.retryBackoff)
		}
		if c.logger != logger {
			t.Error("logger not set")
		}

		c = NewClient("x", WithHTTPClient(custom))
		if c.httpClient != custom {
			t.Error("custom HTTP client not set")
		}
	})
}

func TestGetFastListings(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/listings/fast" {
			t.Errorf("path = %q, want /listings/fast", r.URL.Path)
		}
		if got := r.URL.Query().Get("chain"); got != "56" {
			t.Errorf("chain = %q, want 56", got)
		}
		// Cache-busting contract: fresh timestamp param plus no-cache header.
		if r.URL.Query().Get("_t") == "" {
			t.Error("missing cache-busting _t parameter")
		}
		if got := r.Header.Get("Cache-Control"); got != "no-cache" {
			t.Errorf("Cache-Control = %q, want no-cache", got)
		}

		json.NewEncoder(w).Encode(FeedResponse{Items: []FeedItem{
			{ChainID: 56, ListingID: "12", Name: "Item 12"},
		}})
	}))
	defer server.Close()

	c := NewClient(server.URL)
	items, err := c.GetFastListings(context.Background(), 56)
	if err != nil {
		t.Fatalf("GetFastListings failed: %v", err)
	}
	if len(items) != 1 || items[0].ListingID != "12" {
		t.Errorf("items = %+v, want one item with id 12", items)
	}
}

func TestGetFullListings_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		json.NewEncoder(w).Encode(FeedResponse{Items: []FeedItem{
			{ChainID: 56, ListingID: "1"},
		}})
	}))
	defer server.Close()

	c := NewClient(server.URL, WithRetries(3, 10*time.Millisecond))
	items, err := c.GetFullListings(context.Background(), 56)
	if err != nil {
		t.Fatalf("GetFullListings failed after retries: %v", err)
	}
	if len(items) != 1 {
		t.Errorf("items = %+v, want 1", items)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("server called %d times, want 3", got)
	}
}

func TestGetFeed_NoRetryOnClientError(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	c := NewClient(server.URL, WithRetries(3, 10*time.Millisecond))
	_, err := c.GetFastListings(context.Background(), 56)

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want 404", apiErr.StatusCode)
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("server called %d times, want 1 (no retry on 4xx)", got)
	}
}

func TestGetFeed_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>cdn error page</html>"))
	}))
	defer server.Close()

	c := NewClient(server.URL)
	if _, err := c.GetFastListings(context.Background(), 56); err == nil {
		t.Fatal("expected error for non-JSON body")
	}
}

func TestGetFeed_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(time.Second)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := NewClient(server.URL)
	if _, err := c.GetFullListings(ctx, 56); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestAPIError_IsRetryable(t *testing.T) {
	tests := []struct {
		code int
		want bool
	}{
		{500, true},
		{502, true},
		{429, true},
		{404, false},
		{400, false},
	}
	for _, tt := range tests {
		e := &APIError{StatusCode: tt.code}
		if got := e.IsRetryable(); got != tt.want {
			t.Errorf("IsRetryable(%d) = %v, want %v", tt.code, got, tt.want)
		}
	}
}
