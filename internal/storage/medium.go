package storage

import "context"

// Strategy selects the active backing medium. It is chosen once at
// startup by bootstrap (based on configuration, not runtime probing) and
// never changes for the life of the store.
type Strategy string

const (
	// NativeBacked persists through the host's SQLite database with
	// asynchronous writes.
	NativeBacked Strategy = "native"

	// BrowserBacked persists through the synchronous, quota-limited
	// file-per-key medium.
	BrowserBacked Strategy = "browser"
)

// Medium is a persistent key-value backend holding one serialized JSON
// document per key.
//
// Get returns (nil, false, nil) for a missing key; an error means the
// medium itself failed. Implementations must tolerate concurrent calls
// from the store's writer goroutine alongside Initialize reads.
type Medium interface {
	Get(ctx context.Context, key Key) ([]byte, bool, error)
	Set(ctx context.Context, key Key, value []byte) error
	Delete(ctx context.Context, key Key) error
	Clear(ctx context.Context) error
	Has(ctx context.Context, key Key) (bool, error)
}
