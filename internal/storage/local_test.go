package storage

import (
	"bytes"
	"context"
	"errors"
	"testing"
)

func openTestLocal(t *testing.T, quota int64) *LocalMedium {
	t.Helper()
	m, err := OpenLocal(t.TempDir(), quota, nil)
	if err != nil {
		t.Fatalf("OpenLocal() failed: %v", err)
	}
	return m
}

func TestLocal_RoundTrip(t *testing.T) {
	m := openTestLocal(t, 0)
	ctx := context.Background()

	if err := m.Set(ctx, KeyTasks, []byte(`[]`)); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	raw, found, err := m.Get(ctx, KeyTasks)
	if err != nil || !found {
		t.Fatalf("Get() = %v, found %v", err, found)
	}
	if !bytes.Equal(raw, []byte(`[]`)) {
		t.Errorf("got %q", raw)
	}

	if err := m.Delete(ctx, KeyTasks); err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if _, found, _ := m.Get(ctx, KeyTasks); found {
		t.Error("key survived Delete")
	}
}

func TestLocal_MissingKey(t *testing.T) {
	m := openTestLocal(t, 0)

	_, found, err := m.Get(context.Background(), KeyTasks)
	if err != nil {
		t.Fatalf("Get() on missing key errored: %v", err)
	}
	if found {
		t.Error("missing key reported as found")
	}
}

func TestLocal_NamespacedKeyIsFilenameSafe(t *testing.T) {
	m := openTestLocal(t, 0)
	ctx := context.Background()

	if err := m.Set(ctx, KeyKeybindings, []byte(`{}`)); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	if _, found, _ := m.Get(ctx, KeyKeybindings); !found {
		t.Error("namespaced key did not round-trip")
	}
}

func TestLocal_QuotaReclaimsBeforeFailing(t *testing.T) {
	m := openTestLocal(t, 300)
	ctx := context.Background()

	// Fill most of the quota with a reclaimable document.
	history := bytes.Repeat([]byte("h"), 250)
	if err := m.Set(ctx, KeySearchHistory, history); err != nil {
		t.Fatalf("Set(search history) failed: %v", err)
	}

	// This write only fits if the history is evicted.
	tasks := bytes.Repeat([]byte("t"), 200)
	if err := m.Set(ctx, KeyTasks, tasks); err != nil {
		t.Fatalf("Set(tasks) failed despite reclaimable space: %v", err)
	}

	if _, found, _ := m.Get(ctx, KeySearchHistory); found {
		t.Error("search history survived reclamation")
	}
	if _, found, _ := m.Get(ctx, KeyTasks); !found {
		t.Error("tasks document missing after reclamation")
	}
}

func TestLocal_OverQuotaFailsWithQuotaError(t *testing.T) {
	m := openTestLocal(t, 100)
	ctx := context.Background()

	err := m.Set(ctx, KeyTasks, bytes.Repeat([]byte("x"), 500))
	if err == nil {
		t.Fatal("Set() accepted a document larger than the quota")
	}
	if !IsQuotaError(err) {
		t.Errorf("error is %T, want *QuotaError", err)
	}
	var qerr *QuotaError
	if errors.As(err, &qerr) {
		if qerr.Key != KeyTasks || qerr.Need != 500 || qerr.Quota != 100 {
			t.Errorf("quota error = %+v", qerr)
		}
	}

	if _, found, _ := m.Get(ctx, KeyTasks); found {
		t.Error("a rejected write must not leave a document behind")
	}
}

func TestLocal_ReplacingOwnDocumentCountsOnce(t *testing.T) {
	m := openTestLocal(t, 100)
	ctx := context.Background()

	if err := m.Set(ctx, KeyTasks, bytes.Repeat([]byte("a"), 90)); err != nil {
		t.Fatalf("first Set() failed: %v", err)
	}
	// Replacing 90 bytes with 95 stays under quota; the old document's
	// size must not be double-counted.
	if err := m.Set(ctx, KeyTasks, bytes.Repeat([]byte("b"), 95)); err != nil {
		t.Errorf("replacement Set() failed: %v", err)
	}
}

func TestLocal_Clear(t *testing.T) {
	m := openTestLocal(t, 0)
	ctx := context.Background()

	m.Set(ctx, KeyTasks, []byte(`[]`))
	m.Set(ctx, KeyColumns, []byte(`[]`))
	if err := m.Clear(ctx); err != nil {
		t.Fatalf("Clear() failed: %v", err)
	}
	for _, key := range []Key{KeyTasks, KeyColumns} {
		if _, found, _ := m.Get(ctx, key); found {
			t.Errorf("key %q survived Clear", key)
		}
	}
}
