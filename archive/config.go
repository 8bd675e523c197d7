package archive

import (
	"time"

	"go.uber.org/zap"
)

// Config holds configuration for the Archive.
type Config struct {
	// Table is the DynamoDB table holding snapshots. It needs a string
	// partition key "snapshot_id" and a string sort key "entity_ref", with
	// TTL enabled on the "ttl" attribute.
	// Default: "vitrine_snapshots"
	Table string

	// Retention is how long exported snapshot items live before DynamoDB
	// expires them. Zero keeps them forever.
	// Default: 720h
	Retention time.Duration

	// MaxRetries bounds BatchWriteItem retries of unprocessed items.
	// Default: 5
	MaxRetries int

	// RetryDelay is the base of the linear backoff between retries.
	// Default: 200ms
	RetryDelay time.Duration

	// Logger receives export and import logs.
	// Default: zap.NewNop()
	Logger *zap.Logger

	// Now stamps TTLs and filters expired items.
	// Default: time.Now
	Now func() time.Time
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Table:      "vitrine_snapshots",
		Retention:  30 * 24 * time.Hour,
		MaxRetries: 5,
		RetryDelay: 200 * time.Millisecond,
		Logger:     zap.NewNop(),
		Now:        time.Now,
	}
}

// validate fills unset fields with their defaults. Retention is left alone
// so that zero can mean no expiry.
func (c *Config) validate() {
	d := DefaultConfig()
	if c.Table == "" {
		c.Table = d.Table
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = d.MaxRetries
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = d.RetryDelay
	}
	if c.Logger == nil {
		c.Logger = d.Logger
	}
	if c.Now == nil {
		c.Now = d.Now
	}
}
