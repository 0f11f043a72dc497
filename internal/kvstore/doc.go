// Package kvstore provides durable string-keyed storage for client state,
// most importantly the persisted mutation outbox.
//
// Store is backed by SQLite in WAL mode: a single table mapping keys to
// string values, rewritten whole on every write. Memory provides the same
// contract without a file for tests and ephemeral runs.
//
// Schema versioning uses PRAGMA user_version so future layouts can migrate
// existing databases instead of discarding them.
package kvstore
