// Package storage persists rate limiter admission windows across restarts.
//
// The limiter itself is purely in-memory; a Backend saves a snapshot of every
// key's in-window admission timestamps at shutdown and restores it at
// startup, so a restart does not reset callers' quotas. Two backends are
// provided: an in-memory backend (the default, snapshots do not survive the
// process) and a SQLite backend for durable single-instance deployments.
//
// This is persistence, not distribution: a shared counter store for
// multi-instance rate limiting is explicitly out of scope.
package storage
