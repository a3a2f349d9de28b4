// Package migrate upgrades persisted snapshots across schema versions.
//
// The engine is a state machine over schema-version strings: each step is
// a pure transform from one version to the next, and Run applies the
// ordered chain from the stored version to the current one.
//
// # Critical Patterns
//
// Backup-before-mutate: a full copy of the snapshot goes into the backup
// ring, and a {from, to, timestamp} entry into the migration log, before
// the first step runs. Migrations execute once at process start and must
// be safe to re-trigger after a crash mid-migration; a failed run leaves
// the pre-migration data intact in the backup slot and reports the first
// failing step.
//
// Idempotence: running against already-current data is a no-op success
// that writes no backup.
package migrate
