// Package outbox buffers remote database mutations while the client is
// offline and replays them once connectivity returns.
//
// The Queue accepts write intents. When the client believes it is online,
// an intent is applied to the remote service immediately; when it is
// offline, or the immediate attempt fails on a transient error, the intent
// is appended to a durable pending sequence. Draining walks the pending
// sequence in insertion order, applies each intent, and removes only the
// ones the remote service accepted, so delivery is at-least-once per
// intent.
//
// The entire pending sequence is persisted as one JSON value under one
// storage key, rewritten in full on every membership change. A single
// mutex serializes every read-modify-persist cycle, so Submit, Drain, and
// Clear never interleave.
//
// No public operation panics or surfaces a storage error. Storage
// failures are logged and reported through an optional diagnostic
// callback; a corrupt persisted sequence degrades to an empty queue.
package outbox
