package config

import "time"

// ViewerConfig is the top-level configuration for the viewer service.
type ViewerConfig struct {
	Instance InstanceConfig `yaml:"instance"`
	API      APIConfig      `yaml:"api"`
	Chain    ChainConfig    `yaml:"chain"`
	Poller   PollerConfig   `yaml:"poller"`
	View     ViewConfig     `yaml:"view"`
	Server   ServerConfig   `yaml:"server"`
	Archive  ArchiveConfig  `yaml:"archive"`
}

// InstanceConfig identifies this viewer instance.
type InstanceConfig struct {
	ID string `yaml:"id"` // Defaults to a random uuid
}

// APIConfig configures the scan API client.
type APIConfig struct {
	BaseURL    string        `yaml:"base_url"`
	Timeout    time.Duration `yaml:"timeout"`
	MaxRetries int           `yaml:"max_retries"`
}

// ChainConfig scopes the view to one chain.
type ChainConfig struct {
	ID int64 `yaml:"id"` // EVM chain id (e.g. 56 for BNB mainnet)
}

// PollerConfig configures the dual-feed poll scheduler.
type PollerConfig struct {
	FastInterval     time.Duration `yaml:"fast_interval"`
	FullInterval     time.Duration `yaml:"full_interval"`
	FullInitialDelay time.Duration `yaml:"full_initial_delay"` // Offsets the first full poll from the first fast poll
	Timeout          time.Duration `yaml:"timeout"`            // Per-fetch deadline
	EmptyStreak      int           `yaml:"empty_streak"`       // Consecutive empty snapshots before an empty feed is trusted
}

// ViewConfig configures the reconciliation thresholds.
type ViewConfig struct {
	FastMissThreshold int           `yaml:"fast_miss_threshold"`
	FullMissThreshold int           `yaml:"full_miss_threshold"`
	StaleThreshold    time.Duration `yaml:"stale_threshold"`
	FingerprintCap    int           `yaml:"fingerprint_cap"`
}

// ServerConfig configures the HTTP/WebSocket surface.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// ArchiveConfig configures the optional Postgres event archive.
type ArchiveConfig struct {
	Enabled       bool          `yaml:"enabled"`
	Database      DBConfig      `yaml:"database"`
	BatchSize     int           `yaml:"batch_size"`
	FlushInterval time.Duration `yaml:"flush_interval"`
	BufferSize    int           `yaml:"buffer_size"`
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}
