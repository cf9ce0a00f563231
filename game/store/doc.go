// Package store keeps finished simulations in memory.
//
// Simulations are keyed by a random UUID assigned on Create and expire once
// they have not been read for longer than the configured TTL. Nothing is
// written to disk; a restart starts with an empty store.
//
//	results := store.NewManager(30 * time.Minute)
//	go results.RunCleanup(ctx, time.Minute)
package store
