package config

import (
	"errors"
	"fmt"
)

// Validate checks that all required fields are set and values are valid.
func (c *ViewerConfig) Validate() error {
	if c.Instance.ID == "" {
		return errors.New("instance.id is required")
	}

	if c.API.BaseURL == "" {
		return errors.New("api.base_url is required")
	}

	if c.Chain.ID < 1 {
		return fmt.Errorf("chain.id must be >= 1, got %d", c.Chain.ID)
	}

	if c.Poller.FastInterval <= 0 {
		return errors.New("poller.fast_interval must be > 0")
	}
	if c.Poller.FullInterval <= 0 {
		return errors.New("poller.full_interval must be > 0")
	}
	if c.Poller.FullInterval < c.Poller.FastInterval {
		return errors.New("poller.full_interval must be >= poller.fast_interval")
	}
	if c.Poller.Timeout <= 0 {
		return errors.New("poller.timeout must be > 0")
	}
	if c.Poller.EmptyStreak < 1 {
		return errors.New("poller.empty_streak must be >= 1")
	}

	if c.View.FastMissThreshold < 1 {
		return errors.New("view.fast_miss_threshold must be >= 1")
	}
	if c.View.FullMissThreshold < 1 {
		return errors.New("view.full_miss_threshold must be >= 1")
	}
	if c.View.StaleThreshold <= 0 {
		return errors.New("view.stale_threshold must be > 0")
	}
	if c.View.FingerprintCap < 1 {
		return errors.New("view.fingerprint_cap must be >= 1")
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}

	if c.Archive.Enabled {
		if err := c.Archive.Database.validate("archive.database"); err != nil {
			return err
		}
		if c.Archive.BatchSize < 1 {
			return errors.New("archive.batch_size must be >= 1")
		}
		if c.Archive.BufferSize < 1 {
			return errors.New("archive.buffer_size must be >= 1")
		}
	}

	return nil
}

func (db *DBConfig) validate(prefix string) error {
	if db.Host == "" {
		return fmt.Errorf("%s.host is required", prefix)
	}
	if db.Name == "" {
		return fmt.Errorf("%s.name is required", prefix)
	}
	if db.User == "" {
		return fmt.Errorf("%s.user is required", prefix)
	}
	if db.Password == "" {
		return fmt.Errorf("%s.password is required", prefix)
	}
	if db.MaxConns < 1 {
		return fmt.Errorf("%s.max_conns must be >= 1", prefix)
	}
	if db.MinConns < 0 {
		return fmt.Errorf("%s.min_conns must be >= 0", prefix)
	}
	return nil
}
