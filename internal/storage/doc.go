// Package storage provides the dual-backend persisted key-value store.
//
// The store is the single source of truth for persisted keys. Each key
// holds one JSON document in the active medium: either the native medium
// (SQLite, written asynchronously) or the browser-local medium (one file
// per key, written synchronously under a quota).
//
// # Critical Patterns
//
// Cache-first reads: the in-memory cache is the only read path during a
// session. A key is read from the backing medium at most once; corrupt or
// missing documents degrade to defaults and are logged, never thrown.
//
// Ordered native writes: all native-medium traffic flows through a single
// writer goroutine, so the medium always converges to the cache's latest
// value even though Set returns before the write lands.
//
// Single writer per process: cross-process and cross-tab consistency are
// explicitly unsupported; the medium resolves concurrent writers as
// last-writer-wins.
//
// Initialize performs the one-time storage-medium migration (copying keys
// forward from the browser-local fallback into the native medium) and then
// hands a stale snapshot to the schema migration engine. These are
// independent migrations: one moves bytes between media, the other
// rewrites document shape.
package storage
