package storage

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/bharathvbcr/liquitask/internal/migrate"
	"github.com/bharathvbcr/liquitask/internal/model"
)

// fakeMedium is an in-memory Medium that counts reads per key.
type fakeMedium struct {
	mu    sync.Mutex
	data  map[Key][]byte
	reads map[Key]int
}

func newFakeMedium() *fakeMedium {
	return &fakeMedium{data: map[Key][]byte{}, reads: map[Key]int{}}
}

func (m *fakeMedium) Get(ctx context.Context, key Key) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reads[key]++
	raw, ok := m.data[key]
	return raw, ok, nil
}

func (m *fakeMedium) Set(ctx context.Context, key Key, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}

func (m *fakeMedium) Delete(ctx context.Context, key Key) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func (m *fakeMedium) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = map[Key][]byte{}
	return nil
}

func (m *fakeMedium) Has(ctx context.Context, key Key) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok, nil
}

func (m *fakeMedium) readCount(key Key) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reads[key]
}

func (m *fakeMedium) value(key Key) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.data[key]
	return raw, ok
}

// fakeMigrator records the version it was asked to migrate from.
type fakeMigrator struct {
	gotVersion string
	runs       int
}

func (f *fakeMigrator) NeedsMigration(v string) bool {
	return v != model.CurrentSchemaVersion
}

func (f *fakeMigrator) Run(snap *model.Snapshot, storedVersion string) migrate.Result {
	f.gotVersion = storedVersion
	f.runs++
	migrated := snap.Clone()
	migrated.SchemaVersion = model.CurrentSchemaVersion
	return migrate.Result{
		Success:      true,
		Data:         &migrated,
		MigratedFrom: storedVersion,
		MigratedTo:   model.CurrentSchemaVersion,
	}
}

func newBrowserStore(t *testing.T, local Medium) *Store {
	t.Helper()
	s, err := New(Options{Strategy: BrowserBacked, Local: local})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return s
}

func newNativeStore(t *testing.T, native, local Medium) *Store {
	t.Helper()
	s, err := New(Options{Strategy: NativeBacked, Native: native, Local: local})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	t.Cleanup(s.Close)
	return s
}

func TestNew_RejectsMissingMedium(t *testing.T) {
	if _, err := New(Options{Strategy: NativeBacked}); err == nil {
		t.Error("New() accepted a native strategy without a native medium")
	}
	if _, err := New(Options{Strategy: BrowserBacked}); err == nil {
		t.Error("New() accepted a browser strategy without a local medium")
	}
	if _, err := New(Options{Strategy: "weird", Local: newFakeMedium()}); err == nil {
		t.Error("New() accepted an unknown strategy")
	}
}

func TestGet_ReadsMediumExactlyOnce(t *testing.T) {
	local := newFakeMedium()
	local.data[KeyGrouping] = []byte(`"priority"`)
	s := newBrowserStore(t, local)

	first := s.Get(KeyGrouping, defaultValue(KeyGrouping))
	second := s.Get(KeyGrouping, defaultValue(KeyGrouping))

	if first != "priority" || second != "priority" {
		t.Errorf("got %v then %v, want priority twice", first, second)
	}
	if n := local.readCount(KeyGrouping); n != 1 {
		t.Errorf("medium read %d times, want exactly 1", n)
	}
}

func TestGet_MissingKeyCachesFallback(t *testing.T) {
	local := newFakeMedium()
	s := newBrowserStore(t, local)

	if got := s.Get(KeyGrouping, defaultValue(KeyGrouping)); got != "status" {
		t.Errorf("fallback = %v, want status", got)
	}
	s.Get(KeyGrouping, defaultValue(KeyGrouping))
	if n := local.readCount(KeyGrouping); n != 1 {
		t.Errorf("fallback was not cached: %d medium reads", n)
	}
}

func TestGet_CorruptDocumentYieldsDefault(t *testing.T) {
	local := newFakeMedium()
	local.data[KeyColumns] = []byte(`{not json`)
	s := newBrowserStore(t, local)

	cols, ok := s.Get(KeyColumns, defaultValue(KeyColumns)).([]model.BoardColumn)
	if !ok {
		t.Fatal("corrupt columns did not fall back to the typed default")
	}
	if len(cols) != len(model.DefaultColumns()) {
		t.Errorf("got %d columns, want seed defaults", len(cols))
	}
}

func TestSet_BrowserPersistsSynchronously(t *testing.T) {
	local := newFakeMedium()
	s := newBrowserStore(t, local)

	if err := s.Set(KeyGrouping, "project"); err != nil {
		t.Fatalf("Set() failed: %v", err)
	}
	raw, ok := local.value(KeyGrouping)
	if !ok || string(raw) != `"project"` {
		t.Errorf("medium holds %q, want \"project\"", raw)
	}
}

func TestSet_NativeConvergesToLatestValue(t *testing.T) {
	native := newFakeMedium()
	s := newNativeStore(t, native, nil)

	for _, v := range []string{"status", "priority", "project"} {
		if err := s.Set(KeyGrouping, v); err != nil {
			t.Fatalf("Set(%q) failed: %v", v, err)
		}
	}
	s.Flush()

	raw, ok := native.value(KeyGrouping)
	if !ok || string(raw) != `"project"` {
		t.Errorf("medium holds %q after flush, want the last value", raw)
	}
}

func TestRemove_EvictsEverywhere(t *testing.T) {
	native := newFakeMedium()
	native.data[KeyGrouping] = []byte(`"priority"`)
	s := newNativeStore(t, native, nil)

	s.Get(KeyGrouping, defaultValue(KeyGrouping))
	if err := s.Remove(KeyGrouping); err != nil {
		t.Fatalf("Remove() failed: %v", err)
	}
	s.Flush()

	if _, ok := native.value(KeyGrouping); ok {
		t.Error("key survived Remove in the native medium")
	}
	if got := s.Get(KeyGrouping, defaultValue(KeyGrouping)); got != "status" {
		t.Errorf("removed key reads %v, want the default", got)
	}
}

func TestClose_LateWritesReturnError(t *testing.T) {
	native := newFakeMedium()
	s := newNativeStore(t, native, nil)

	if err := s.Set(KeyGrouping, "priority"); err != nil {
		t.Fatalf("Set() before close failed: %v", err)
	}
	s.Close()
	s.Close() // idempotent

	if err := s.Set(KeyGrouping, "project"); !errors.Is(err, ErrStoreClosed) {
		t.Errorf("Set() after close = %v, want ErrStoreClosed", err)
	}
	if err := s.Remove(KeyGrouping); !errors.Is(err, ErrStoreClosed) {
		t.Errorf("Remove() after close = %v, want ErrStoreClosed", err)
	}
	if err := s.Clear(); !errors.Is(err, ErrStoreClosed) {
		t.Errorf("Clear() after close = %v, want ErrStoreClosed", err)
	}
	s.Flush() // must return, not hang

	// The pre-close write drained before the writer stopped.
	if raw, ok := native.value(KeyGrouping); !ok || string(raw) != `"priority"` {
		t.Errorf("medium holds %q after close, want the pre-close value", raw)
	}
}

func TestInitialize_FreshInstallStampsCurrentVersion(t *testing.T) {
	s := newBrowserStore(t, newFakeMedium())

	if err := s.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize() failed: %v", err)
	}
	if got := s.DataVersion(); got != model.CurrentSchemaVersion {
		t.Errorf("data version = %q, want %q", got, model.CurrentSchemaVersion)
	}
}

func TestInitialize_InfersLegacyVersionFromData(t *testing.T) {
	local := newFakeMedium()
	local.data[KeyTasks] = []byte(`[{"id": "t1", "title": "old", "createdAt": "2023-01-01T00:00:00Z"}]`)
	mig := &fakeMigrator{}
	s := newBrowserStore(t, local)
	s.SetMigrator(mig)

	if err := s.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize() failed: %v", err)
	}
	if mig.gotVersion != "0.7.0" {
		t.Errorf("migrator ran from %q, want the legacy base version", mig.gotVersion)
	}
	if got := s.DataVersion(); got != model.CurrentSchemaVersion {
		t.Errorf("data version = %q after migration, want %q", got, model.CurrentSchemaVersion)
	}
}

func TestInitialize_StampedCurrentSkipsMigration(t *testing.T) {
	local := newFakeMedium()
	local.data[KeyTasks] = []byte(`[]`)
	local.data[KeyDataVersion] = []byte(`"1.0.0"`)
	mig := &fakeMigrator{}
	s := newBrowserStore(t, local)
	s.SetMigrator(mig)

	if err := s.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize() failed: %v", err)
	}
	if mig.runs != 0 {
		t.Error("migrator ran against current data")
	}
}

func TestInitialize_CopiesDocumentsToNativeMedium(t *testing.T) {
	native := newFakeMedium()
	local := newFakeMedium()
	local.data[KeyTasks] = []byte(`[{"id": "t1", "title": "carried over", "createdAt": "2023-01-01T00:00:00Z"}]`)
	local.data[KeyGrouping] = []byte(`"priority"`)
	s := newNativeStore(t, native, local)

	if err := s.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize() failed: %v", err)
	}

	// The one-time medium migration copies forward synchronously.
	if _, ok := native.value(KeyTasks); !ok {
		t.Error("tasks document was not copied to the native medium")
	}
	if raw, ok := native.value(KeyGrouping); !ok || string(raw) != `"priority"` {
		t.Errorf("grouping not copied forward: %q", raw)
	}

	tasks := s.Tasks()
	if len(tasks) != 1 || tasks[0].Title != "carried over" {
		t.Errorf("tasks after medium migration = %v", tasks)
	}
}

func TestSaveBackup_RingCapsAtFive(t *testing.T) {
	s := newBrowserStore(t, newFakeMedium())

	for i := 0; i < 7; i++ {
		b := model.Backup{SchemaVersion: "0.9.0", Data: model.Snapshot{Grouping: string(rune('a' + i))}}
		if err := s.SaveBackup(b); err != nil {
			t.Fatalf("SaveBackup() failed: %v", err)
		}
	}

	backups := s.Backups()
	if len(backups) != 5 {
		t.Fatalf("ring holds %d backups, want 5", len(backups))
	}
	// Newest first; the two oldest fell off.
	if backups[0].Data.Grouping != "g" || backups[4].Data.Grouping != "c" {
		t.Errorf("ring order wrong: newest %q oldest %q", backups[0].Data.Grouping, backups[4].Data.Grouping)
	}
}

func TestAccessors_RoundTrip(t *testing.T) {
	s := newBrowserStore(t, newFakeMedium())

	tasks := []model.Task{{ID: "t1", Title: "one", Status: "Backlog", Priority: "low"}}
	if err := s.SetTasks(tasks); err != nil {
		t.Fatalf("SetTasks() failed: %v", err)
	}
	if got := s.Tasks(); len(got) != 1 || got[0].ID != "t1" {
		t.Errorf("Tasks() = %v", got)
	}

	if err := s.SetActiveProject("p1"); err != nil {
		t.Fatalf("SetActiveProject() failed: %v", err)
	}
	if got := s.ActiveProject(); got != "p1" {
		t.Errorf("ActiveProject() = %q", got)
	}

	bindings := map[string][]string{"undo": {"ctrl+u"}}
	if err := s.SetKeybindings(bindings); err != nil {
		t.Fatalf("SetKeybindings() failed: %v", err)
	}
	if got := s.Keybindings(); len(got["undo"]) != 1 || got["undo"][0] != "ctrl+u" {
		t.Errorf("Keybindings() = %v", got)
	}
}
