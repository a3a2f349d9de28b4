package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

// DefaultQuotaBytes mirrors the 5 MiB budget browsers grant local
// key-value storage.
const DefaultQuotaBytes = 5 << 20

// LocalMedium is the browser-local fallback: one pretty-named JSON file
// per key under a directory, written synchronously, bounded by a quota.
//
// When a write would exceed the quota, the medium evicts reclaimable
// documents (search history, the backup ring) and retries once; if the
// write still does not fit, it fails with a *QuotaError rather than
// silently dropping data.
type LocalMedium struct {
	mu    sync.Mutex
	dir   string
	quota int64
	log   *log.Logger
}

// OpenLocal creates or opens a file-backed medium rooted at dir.
// A quota of 0 disables the size limit.
func OpenLocal(dir string, quota int64, logger *log.Logger) (*LocalMedium, error) {
	if logger == nil {
		logger = log.Default()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &LocalMedium{dir: dir, quota: quota, log: logger}, nil
}

// filePath maps a key to its document file. The keybinding namespace
// separator is not filename-safe on every platform.
func (m *LocalMedium) filePath(key Key) string {
	name := strings.ReplaceAll(string(key), ":", "_")
	return filepath.Join(m.dir, name+".json")
}

// Get reads the document stored under key.
func (m *LocalMedium) Get(ctx context.Context, key Key) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := os.ReadFile(m.filePath(key))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read key %q: %w", key, err)
	}
	return data, true, nil
}

// Set writes the document stored under key, enforcing the quota.
func (m *LocalMedium) Set(ctx context.Context, key Key, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	need := int64(len(value))
	if m.quota > 0 {
		if !m.fitsLocked(key, need) {
			m.reclaimLocked(key)
			if !m.fitsLocked(key, need) {
				return &QuotaError{Key: key, Need: need, Quota: m.quota}
			}
		}
	}

	return m.writeFileLocked(key, value)
}

// writeFileLocked writes via a temp file and rename so a crash cannot
// leave a half-written document behind.
func (m *LocalMedium) writeFileLocked(key Key, value []byte) error {
	path := m.filePath(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, value, 0o644); err != nil {
		return fmt.Errorf("write key %q: %w", key, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write key %q: %w", key, err)
	}
	return nil
}

// fitsLocked reports whether replacing key's document with need bytes
// stays under the quota.
func (m *LocalMedium) fitsLocked(key Key, need int64) bool {
	used := m.usedBytesLocked()
	var current int64
	if info, err := os.Stat(m.filePath(key)); err == nil {
		current = info.Size()
	}
	return used-current+need <= m.quota
}

// usedBytesLocked sums the size of every stored document.
func (m *LocalMedium) usedBytesLocked() int64 {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return 0
	}
	var total int64
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		if info, err := entry.Info(); err == nil {
			total += info.Size()
		}
	}
	return total
}

// reclaimLocked evicts low-priority documents to make room. The key
// being written is never evicted, even if it is itself reclaimable.
func (m *LocalMedium) reclaimLocked(writing Key) {
	for _, key := range reclaimableKeys {
		if key == writing {
			continue
		}
		path := m.filePath(key)
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		if err := os.Remove(path); err != nil {
			m.log.Warn("quota reclamation failed", "key", key, "err", err)
			continue
		}
		m.log.Warn("evicted document to reclaim quota", "key", key, "bytes", info.Size())
	}
}

// Delete removes the document stored under key. Missing keys are a no-op.
func (m *LocalMedium) Delete(ctx context.Context, key Key) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	err := os.Remove(m.filePath(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete key %q: %w", key, err)
	}
	return nil
}

// Clear removes every document.
func (m *LocalMedium) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return fmt.Errorf("clear documents: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		if err := os.Remove(filepath.Join(m.dir, entry.Name())); err != nil {
			return fmt.Errorf("clear documents: %w", err)
		}
	}
	return nil
}

// Has reports whether a document exists under key.
func (m *LocalMedium) Has(ctx context.Context, key Key) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, err := os.Stat(m.filePath(key))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check key %q: %w", key, err)
	}
	return true, nil
}
