package config

import (
	"time"

	"github.com/google/uuid"
)

// Default values for optional configuration fields. The poll intervals and
// miss thresholds were tuned against the marketplace UI: the fast feed keeps
// the list lively, the full feed keeps it honest, and nothing disappears on
// the word of a single snapshot.
const (
	DefaultBaseURL    = "https://scan.bitgallery.io/api/v1"
	DefaultAPITimeout = 15 * time.Second
	DefaultMaxRetries = 2

	DefaultChainID = 56

	DefaultFastInterval     = 3500 * time.Millisecond
	DefaultFullInterval     = 9 * time.Second
	DefaultFullInitialDelay = 1500 * time.Millisecond
	DefaultPollTimeout      = 10 * time.Second
	DefaultEmptyStreak      = 3

	DefaultFastMissThreshold = 4
	DefaultFullMissThreshold = 3
	DefaultStaleThreshold    = 30 * time.Second
	DefaultFingerprintCap    = 250

	DefaultServerPort = 8080

	DefaultDBPort        = 5432
	DefaultDBSSLMode     = "prefer"
	DefaultMaxConns      = 5
	DefaultMinConns      = 1
	DefaultBatchSize     = 200
	DefaultFlushInterval = 2 * time.Second
	DefaultBufferSize    = 2048
)

func (c *ViewerConfig) applyDefaults() {
	if c.Instance.ID == "" {
		c.Instance.ID = "viewer-" + uuid.NewString()
	}

	if c.API.BaseURL == "" {
		c.API.BaseURL = DefaultBaseURL
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = DefaultAPITimeout
	}
	if c.API.MaxRetries == 0 {
		c.API.MaxRetries = DefaultMaxRetries
	}

	if c.Chain.ID == 0 {
		c.Chain.ID = DefaultChainID
	}

	if c.Poller.FastInterval == 0 {
		c.Poller.FastInterval = DefaultFastInterval
	}
	if c.Poller.FullInterval == 0 {
		c.Poller.FullInterval = DefaultFullInterval
	}
	if c.Poller.FullInitialDelay == 0 {
		c.Poller.FullInitialDelay = DefaultFullInitialDelay
	}
	if c.Poller.Timeout == 0 {
		c.Poller.Timeout = DefaultPollTimeout
	}
	if c.Poller.EmptyStreak == 0 {
		c.Poller.EmptyStreak = DefaultEmptyStreak
	}

	if c.View.FastMissThreshold == 0 {
		c.View.FastMissThreshold = DefaultFastMissThreshold
	}
	if c.View.FullMissThreshold == 0 {
		c.View.FullMissThreshold = DefaultFullMissThreshold
	}
	if c.View.StaleThreshold == 0 {
		c.View.StaleThreshold = DefaultStaleThreshold
	}
	if c.View.FingerprintCap == 0 {
		c.View.FingerprintCap = DefaultFingerprintCap
	}

	if c.Server.Port == 0 {
		c.Server.Port = DefaultServerPort
	}

	if c.Archive.Enabled {
		applyDBDefaults(&c.Archive.Database)
		if c.Archive.BatchSize == 0 {
			c.Archive.BatchSize = DefaultBatchSize
		}
		if c.Archive.FlushInterval == 0 {
			c.Archive.FlushInterval = DefaultFlushInterval
		}
		if c.Archive.BufferSize == 0 {
			c.Archive.BufferSize = DefaultBufferSize
		}
	}
}

func applyDBDefaults(db *DBConfig) {
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
	if db.MinConns == 0 {
		db.MinConns = DefaultMinConns
	}
}
