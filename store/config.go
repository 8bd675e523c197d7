package store

import (
	"time"

	"go.uber.org/zap"
)

// Config holds configuration for the Store.
type Config struct {
	// Logger receives mutation and lifecycle logs.
	// Default: zap.NewNop()
	Logger *zap.Logger

	// Now is the wall clock used for createdAt/updatedAt stamps. The store
	// never hands out the same instant twice, whatever Now returns.
	// Default: time.Now
	Now func() time.Time

	// Registry lists extra cascade relationships followed by deletes. The
	// edges of DefaultRegistry are always present.
	// Default: DefaultRegistry()
	Registry *Registry

	// SeedDemoData populates the sample community on construction.
	SeedDemoData bool
}

// DefaultConfig returns a configuration for an empty, silent store.
func DefaultConfig() Config {
	return Config{
		Logger:   zap.NewNop(),
		Now:      time.Now,
		Registry: DefaultRegistry(),
	}
}

// validate fills unset fields with their defaults.
func (c *Config) validate() {
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	registry := DefaultRegistry()
	if c.Registry != nil {
		for _, rel := range c.Registry.AllRelationships() {
			registry.Register(rel)
		}
	}
	c.Registry = registry
}
