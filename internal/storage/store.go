package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/bharathvbcr/liquitask/internal/migrate"
	"github.com/bharathvbcr/liquitask/internal/model"
)

// legacyBaseVersion is assumed for installs that carry data but no
// data-version document (builds that predate schema stamping).
const legacyBaseVersion = "0.7.0"

// nativeWriteQueueDepth bounds the async writer backlog. Documents are
// small; a full queue briefly blocks Set rather than dropping writes.
const nativeWriteQueueDepth = 64

// ErrStoreClosed is returned for writes attempted after Close.
var ErrStoreClosed = errors.New("store is closed")

// Migrator upgrades a stale snapshot. Implemented by migrate.Engine.
type Migrator interface {
	NeedsMigration(storedVersion string) bool
	Run(snap *model.Snapshot, storedVersion string) migrate.Result
}

// nativeOp is one unit of native-medium traffic. value nil means delete;
// clear wipes the medium; flush is a sentinel closed when the writer
// reaches it.
type nativeOp struct {
	key   Key
	value []byte
	clear bool
	flush chan struct{}
}

// Store is the cached dual-backend key-value store. Construct with New,
// call Initialize once before trusting reads, and Close on shutdown.
type Store struct {
	mu       sync.RWMutex
	cache    map[Key]any
	strategy Strategy
	native   Medium
	local    Medium
	migrator Migrator
	log      *log.Logger

	writeCh    chan nativeOp
	writerDone chan struct{}
}

// Options configures a Store.
type Options struct {
	Strategy Strategy
	Native   Medium // required for NativeBacked; optional fallback source otherwise
	Local    Medium // required for BrowserBacked; fallback source for NativeBacked
	Migrator Migrator
	Logger   *log.Logger
}

// New creates a store. The strategy is fixed for the store's lifetime;
// capability detection belongs to bootstrap, not to each call.
func New(opts Options) (*Store, error) {
	switch opts.Strategy {
	case NativeBacked:
		if opts.Native == nil {
			return nil, fmt.Errorf("native-backed store requires a native medium")
		}
	case BrowserBacked:
		if opts.Local == nil {
			return nil, fmt.Errorf("browser-backed store requires a local medium")
		}
	default:
		return nil, fmt.Errorf("unknown storage strategy %q", opts.Strategy)
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	s := &Store{
		cache:    make(map[Key]any),
		strategy: opts.Strategy,
		native:   opts.Native,
		local:    opts.Local,
		migrator: opts.Migrator,
		log:      logger,
	}

	if s.strategy == NativeBacked {
		s.writeCh = make(chan nativeOp, nativeWriteQueueDepth)
		s.writerDone = make(chan struct{})
		go s.runWriter(s.writeCh)
	}

	return s, nil
}

// SetMigrator installs the migration engine. Separate from New because
// the engine needs the store as its backup sink; call before Initialize.
func (s *Store) SetMigrator(m Migrator) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.migrator = m
}

// runWriter drains native-medium traffic in order. A single consumer
// guarantees the medium converges to the cache's latest value per key.
func (s *Store) runWriter(ch <-chan nativeOp) {
	defer close(s.writerDone)
	ctx := context.Background()
	for op := range ch {
		switch {
		case op.flush != nil:
			close(op.flush)
		case op.clear:
			if err := s.native.Clear(ctx); err != nil {
				s.log.Error("native clear failed", "err", err)
			}
		case op.value == nil:
			if err := s.native.Delete(ctx, op.key); err != nil {
				s.log.Error("native delete failed", "key", op.key, "err", err)
			}
		default:
			if err := s.native.Set(ctx, op.key, op.value); err != nil {
				s.log.Error("native write failed", "key", op.key, "err", err)
			}
		}
	}
}

// enqueue hands an op to the writer goroutine. After Close the queue is
// gone; an error beats blocking forever on a nil channel.
func (s *Store) enqueue(op nativeOp) error {
	s.mu.RLock()
	ch := s.writeCh
	s.mu.RUnlock()
	if ch == nil {
		return ErrStoreClosed
	}
	ch <- op
	return nil
}

// active returns the medium the current strategy reads and writes.
func (s *Store) active() Medium {
	if s.strategy == NativeBacked {
		return s.native
	}
	return s.local
}

// Get returns the cached value for key, reading through to the active
// medium on first access. Missing or corrupt documents yield fallback;
// corruption is logged, never surfaced as an error.
//
// Two consecutive Gets for one key hit the backing medium exactly once.
func (s *Store) Get(key Key, fallback any) any {
	s.mu.RLock()
	if v, ok := s.cache[key]; ok {
		s.mu.RUnlock()
		return v
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.cache[key]; ok {
		return v
	}

	raw, found, err := s.active().Get(context.Background(), key)
	if err != nil {
		s.log.Warn("storage read failed; using default", "key", key, "err", err)
		s.cache[key] = fallback
		return fallback
	}
	if !found {
		s.cache[key] = fallback
		return fallback
	}

	v, warns, derr := decodeValue(key, raw)
	if derr != nil {
		perr := &ParseError{Key: key, Err: derr}
		s.log.Warn("corrupt stored document; using default", "key", key, "err", perr)
		s.cache[key] = fallback
		return fallback
	}
	for _, w := range warns {
		s.log.Warn("stored document repaired on read", "key", key, "path", w.Path, "reason", w.Reason)
	}

	s.cache[key] = v
	return v
}

// Set caches value synchronously and persists it. Native-backed stores
// persist asynchronously (failures logged); browser-backed stores persist
// synchronously and may return a *QuotaError.
func (s *Store) Set(key Key, value any) error {
	raw, err := encodeValue(value)
	if err != nil {
		return fmt.Errorf("encode key %q: %w", key, err)
	}

	s.mu.Lock()
	s.cache[key] = value
	s.mu.Unlock()

	if s.strategy == NativeBacked {
		return s.enqueue(nativeOp{key: key, value: raw})
	}

	if err := s.local.Set(context.Background(), key, raw); err != nil {
		s.log.Error("local write failed", "key", key, "err", err)
		return err
	}
	return nil
}

// Remove evicts key from the cache and all backing media.
func (s *Store) Remove(key Key) error {
	s.mu.Lock()
	delete(s.cache, key)
	s.mu.Unlock()

	var errs []error
	if s.strategy == NativeBacked {
		if err := s.enqueue(nativeOp{key: key}); err != nil {
			errs = append(errs, err)
		}
	} else if s.native != nil {
		if err := s.native.Delete(context.Background(), key); err != nil {
			errs = append(errs, err)
		}
	}
	if s.local != nil {
		if err := s.local.Delete(context.Background(), key); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Clear evicts everything from the cache and all backing media.
func (s *Store) Clear() error {
	s.mu.Lock()
	s.cache = make(map[Key]any)
	s.mu.Unlock()

	var errs []error
	if s.strategy == NativeBacked {
		if err := s.enqueue(nativeOp{clear: true}); err != nil {
			errs = append(errs, err)
		}
	} else if s.native != nil {
		if err := s.native.Clear(context.Background()); err != nil {
			errs = append(errs, err)
		}
	}
	if s.local != nil {
		if err := s.local.Clear(context.Background()); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Flush blocks until every queued native write has landed. Browser-backed
// and closed stores are always flushed.
func (s *Store) Flush() {
	done := make(chan struct{})
	if err := s.enqueue(nativeOp{flush: done}); err != nil {
		return
	}
	<-done
}

// Close stops the writer goroutine after it drains pending writes. The
// backing media remain open; bootstrap owns their lifecycle. Close is
// idempotent; later writes return ErrStoreClosed.
func (s *Store) Close() {
	s.mu.Lock()
	ch := s.writeCh
	s.writeCh = nil
	s.mu.Unlock()
	if ch == nil {
		return
	}
	close(ch)
	<-s.writerDone
}

// Initialize loads every known key into the cache, copying documents
// forward from the browser-local fallback into the native medium when
// the native medium has never seen them (the one-time medium migration).
// It then hands a stale snapshot to the migration engine.
//
// This is the only suspension point in the store's life: callers must
// await it once at startup before trusting the cache.
func (s *Store) Initialize(ctx context.Context) error {
	sawData, err := s.loadAllKeys(ctx)
	if err != nil {
		return err
	}

	stored := s.DataVersion()
	if stored == "" {
		if !sawData {
			// Fresh install: stamp the current version, nothing to migrate.
			return s.Set(KeyDataVersion, model.CurrentSchemaVersion)
		}
		// Data predating schema stamping.
		stored = legacyBaseVersion
	}

	if s.migrator == nil || !s.migrator.NeedsMigration(stored) {
		return nil
	}

	snap := s.Snapshot()
	result := s.migrator.Run(snap, stored)
	if !result.Success {
		// Process continues on un-migrated data; the backup slot keeps
		// the pre-migration snapshot.
		s.log.Error("schema migration failed; continuing on un-migrated data",
			"from", result.MigratedFrom, "err", result.Err)
		return nil
	}
	s.log.Info("schema migrated", "from", result.MigratedFrom, "to", result.MigratedTo)
	return s.ApplySnapshot(*result.Data, result.MigratedTo)
}

// loadAllKeys populates the cache from the media. Returns whether any
// application-data document was found.
func (s *Store) loadAllKeys(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sawData := false
	for _, key := range AllKeys {
		raw, found, err := s.readWithFallback(ctx, key)
		if err != nil {
			return sawData, fmt.Errorf("initialize key %q: %w", key, err)
		}
		if !found {
			continue
		}
		if dataKeys[key] {
			sawData = true
		}

		v, warns, derr := decodeValue(key, raw)
		if derr != nil {
			perr := &ParseError{Key: key, Err: derr}
			s.log.Warn("corrupt stored document; using default", "key", key, "err", perr)
			continue
		}
		for _, w := range warns {
			s.log.Warn("stored document repaired on load", "key", key, "path", w.Path, "reason", w.Reason)
		}
		s.cache[key] = v
	}
	return sawData, nil
}

// readWithFallback reads a key from the active medium and, for
// native-backed stores, falls back to the browser-local medium, copying
// the document forward so the fallback is consulted only once ever.
func (s *Store) readWithFallback(ctx context.Context, key Key) ([]byte, bool, error) {
	if s.strategy == BrowserBacked {
		return s.local.Get(ctx, key)
	}

	raw, found, err := s.native.Get(ctx, key)
	if err != nil || found {
		return raw, found, err
	}
	if s.local == nil {
		return nil, false, nil
	}

	raw, found, err = s.local.Get(ctx, key)
	if err != nil {
		s.log.Warn("fallback medium read failed", "key", key, "err", err)
		return nil, false, nil
	}
	if !found {
		return nil, false, nil
	}

	// One-time medium migration: copy forward synchronously so a crash
	// immediately after startup cannot lose the only copy.
	if err := s.native.Set(ctx, key, raw); err != nil {
		s.log.Error("medium migration write failed", "key", key, "err", err)
	} else {
		s.log.Info("migrated document to native medium", "key", key)
	}
	return raw, true, nil
}
