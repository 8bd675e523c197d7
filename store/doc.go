// Package store provides an in-memory entity store for a social and commerce
// community: users, posts, likes, comments, follows, notifications, products,
// orders and reviews.
//
// Vitrine keeps every collection in process behind a single lock. Creation
// order, derived counters and notifications are maintained by the store itself,
// so callers never update a count or write a notification by hand.
//
// # Key Features
//
//   - Monotonic per-collection ids, never reused (also across [Store.Restore])
//   - Idempotent likes and follows, upserting reviews
//   - Derived counters (followers, following, posts, likes, comments, sales)
//     that never go below zero
//   - Cascading deletes driven by a relationship [Registry]
//   - Notifications fanned out on like, comment, follow, purchase and review,
//     never addressed to the user who triggered them
//   - Point-in-time [Snapshot] and [Store.Restore] with counter recomputation
//
// # Configuration
//
// Use [DefaultConfig] for an empty store with a no-op logger:
//
//	cfg := store.DefaultConfig()
//	cfg.Logger = logger
//	cfg.SeedDemoData = true
//	s := store.New(cfg)
//
// # Reads and absence
//
// Lookups return the row by value together with a found flag. Views that join
// a row to its owner (feed posts, notifications, product listings) drop rows
// whose owner cannot be resolved instead of failing.
//
// # Errors
//
// The package defines domain-specific errors:
//
//   - [ErrNotFound] - entity doesn't exist
//   - [ErrDuplicateUsername] - username already taken
//   - [ErrInvalidSnapshot] - snapshot has colliding ids or unique keys
//   - [ErrInconsistent] - a derived counter disagrees with its rows
//   - [ErrNotEmpty] - Seed called on a store that already issued ids
package store
