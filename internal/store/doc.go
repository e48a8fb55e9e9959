// Package store provides the single authoritative store for shop data:
// user accounts, the product catalog, and the order ledger.
//
// # State document
//
// All data lives in one in-memory document with three collections:
//
//	{"users": [...], "products": [...], "orders": [...]}
//
// The document round-trips byte-faithfully through a Snapshotter backend.
// Two backends are provided:
//
//   - FileSnapshotter: a single JSON file, replaced atomically on every save
//   - SQLiteSnapshotter: a single-row table in a WAL-mode SQLite database
//
// # Concurrency
//
// A store-wide RWMutex serializes mutations while letting reads run
// concurrently. Every mutation builds a candidate document, persists it, and
// only then commits it to memory, so a failed persist never leaves memory and
// disk disagreeing and partial success is never reported as success.
//
// ReserveStock is the critical section the checkout path depends on: the
// on-hand check and the decrement happen under one lock acquisition, so
// concurrent checkouts against the same product can never drive on_hand
// negative.
//
// # IDs
//
// Product and order IDs are integers assigned from counters seeded to
// max(existing)+1 at load. Counters only increase for the store's lifetime,
// so a deleted product's ID is never reused.
//
// # Errors
//
//   - ErrNotFound: requested entity does not exist
//   - ErrDuplicateUsername: registration conflict
//   - ErrInsufficientStock: reservation exceeds on_hand
//   - ErrInvalidField: create/update failed validation (wrapped with detail)
package store
