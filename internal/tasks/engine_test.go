package tasks

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bharathvbcr/liquitask/internal/model"
	"github.com/bharathvbcr/liquitask/internal/storage"
)

var testClock = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestStore(t *testing.T) *storage.Store {
	t.Helper()
	local, err := storage.OpenLocal(t.TempDir(), 0, nil)
	if err != nil {
		t.Fatalf("OpenLocal() failed: %v", err)
	}
	s, err := storage.New(storage.Options{Strategy: storage.BrowserBacked, Local: local})
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return s
}

func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	opts = append([]Option{WithClock(func() time.Time { return testClock })}, opts...)
	return NewEngine(newTestStore(t), nil, opts...)
}

func TestCreate_FillsDefaults(t *testing.T) {
	e := newTestEngine(t)

	task, err := e.Create(Draft{Title: "Ship report"})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if task.ID == "" || task.JobID == "" {
		t.Error("ids were not generated")
	}
	if task.Status != "Backlog" {
		t.Errorf("status = %q, want the initial column", task.Status)
	}
	if task.Priority != model.PriorityMedium {
		t.Errorf("priority = %q, want the default", task.Priority)
	}
	if !task.CreatedAt.Equal(testClock) {
		t.Errorf("createdAt = %v", task.CreatedAt)
	}
	if task.Subtasks == nil || task.Tags == nil || task.LinkedTasks == nil {
		t.Error("nested collections must be empty, not nil")
	}

	stored := e.store.Tasks()
	if len(stored) != 1 || stored[0].ID != task.ID {
		t.Errorf("store holds %v", stored)
	}
}

func TestCreate_Rejections(t *testing.T) {
	e := newTestEngine(t)

	if _, err := e.Create(Draft{}); err == nil {
		t.Error("Create() accepted an empty title")
	}
	if _, err := e.Create(Draft{Title: "x", Status: "nope"}); err == nil {
		t.Error("Create() accepted an unknown status")
	}
	if _, err := e.Create(Draft{Title: "x", Priority: "nope"}); err == nil {
		t.Error("Create() accepted an unknown priority")
	}
	if got := len(e.store.Tasks()); got != 0 {
		t.Errorf("rejected drafts were persisted: %d tasks", got)
	}
}

func TestCreate_ThenUndoRemoves(t *testing.T) {
	e := newTestEngine(t)

	task, err := e.Create(Draft{Title: "Ephemeral"})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	undone, err := e.Undo()
	if err != nil {
		t.Fatalf("Undo() failed: %v", err)
	}
	if undone.Kind != UndoCreate || undone.Task.ID != task.ID {
		t.Errorf("undone = %+v", undone)
	}
	if got := len(e.store.Tasks()); got != 0 {
		t.Errorf("store still holds %d tasks after undoing the create", got)
	}
}

func TestBulkCreate_UniqueIDsSameInstant(t *testing.T) {
	e := newTestEngine(t)

	drafts := make([]Draft, 5)
	for i := range drafts {
		drafts[i] = Draft{Title: "Same title"}
	}
	created, err := e.BulkCreate(drafts)
	if err != nil {
		t.Fatalf("BulkCreate() failed: %v", err)
	}
	if len(created) != 5 {
		t.Fatalf("created %d tasks, want 5", len(created))
	}

	ids := map[string]bool{}
	jobIDs := map[string]bool{}
	for _, task := range created {
		if ids[task.ID] || jobIDs[task.JobID] {
			t.Errorf("duplicate id in batch: %s / %s", task.ID, task.JobID)
		}
		ids[task.ID] = true
		jobIDs[task.JobID] = true
		if !task.CreatedAt.Equal(testClock) {
			t.Errorf("createdAt = %v", task.CreatedAt)
		}
	}
	if got := len(e.store.Tasks()); got != 5 {
		t.Errorf("store holds %d tasks", got)
	}
	if e.UndoDepth() != 5 {
		t.Errorf("undo depth = %d, want one entry per task", e.UndoDepth())
	}
}

func TestBulkCreate_AllOrNothing(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.BulkCreate([]Draft{{Title: "ok"}, {Title: ""}})
	if err == nil {
		t.Fatal("BulkCreate() accepted a batch with an invalid draft")
	}
	if got := len(e.store.Tasks()); got != 0 {
		t.Errorf("partial batch persisted: %d tasks", got)
	}
}

func TestUpdate_UndoRestoresPriorState(t *testing.T) {
	e := newTestEngine(t)

	task, err := e.Create(Draft{Title: "Original"})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	task.Title = "Edited"
	updated, err := e.Update(task)
	if err != nil {
		t.Fatalf("Update() failed: %v", err)
	}
	if updated.UpdatedAt == nil || !updated.UpdatedAt.Equal(testClock) {
		t.Errorf("updatedAt = %v", updated.UpdatedAt)
	}

	if _, err := e.Undo(); err != nil {
		t.Fatalf("Undo() failed: %v", err)
	}
	restored, ok := e.Find(task.ID)
	if !ok {
		t.Fatal("task vanished after undoing the update")
	}
	if restored.Title != "Original" {
		t.Errorf("title = %q, want the pre-update value", restored.Title)
	}
	if restored.UpdatedAt != nil {
		t.Errorf("updatedAt = %v, want the pre-update nil", restored.UpdatedAt)
	}
}

func TestUpdate_UnknownTask(t *testing.T) {
	e := newTestEngine(t)
	if _, err := e.Update(model.Task{ID: "ghost", Title: "x", Status: "Backlog"}); err == nil {
		t.Error("Update() accepted an unknown task id")
	}
}

func TestDelete_DeclinedWithoutConfirmer(t *testing.T) {
	e := newTestEngine(t)
	task, _ := e.Create(Draft{Title: "Keep me"})

	deleted, err := e.Delete(task.ID, false)
	if err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if deleted {
		t.Error("deletion proceeded without a confirmer")
	}
	if _, ok := e.Find(task.ID); !ok {
		t.Error("task removed despite declined confirmation")
	}
}

func TestDelete_ConfirmerDecides(t *testing.T) {
	approve := false
	e := newTestEngine(t, WithConfirmer(func(model.Task) bool { return approve }))
	task, _ := e.Create(Draft{Title: "On the bubble"})

	if deleted, _ := e.Delete(task.ID, false); deleted {
		t.Error("deletion proceeded although the confirmer declined")
	}

	approve = true
	deleted, err := e.Delete(task.ID, false)
	if err != nil {
		t.Fatalf("Delete() failed: %v", err)
	}
	if !deleted {
		t.Error("deletion did not proceed after approval")
	}
}

func TestDelete_UndoRestoresExactly(t *testing.T) {
	e := newTestEngine(t)

	due := testClock.AddDate(0, 0, 7)
	task, err := e.Create(Draft{Title: "Precious", DueDate: &due, Tags: []string{"a", "b"}})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	if deleted, _ := e.Delete(task.ID, true); !deleted {
		t.Fatal("skip-confirm delete did not proceed")
	}
	if _, ok := e.Find(task.ID); ok {
		t.Fatal("task still present after delete")
	}

	undone, err := e.Undo()
	if err != nil {
		t.Fatalf("Undo() failed: %v", err)
	}
	if undone.Kind != UndoDelete {
		t.Errorf("undone kind = %v", undone.Kind)
	}

	restored, ok := e.Find(task.ID)
	if !ok {
		t.Fatal("task not restored")
	}
	if restored.Title != "Precious" || !restored.CreatedAt.Equal(task.CreatedAt) {
		t.Errorf("restored = %+v, want the exact original", restored)
	}
	if restored.DueDate == nil || !restored.DueDate.Equal(due) {
		t.Errorf("dueDate = %v", restored.DueDate)
	}
	if len(restored.Tags) != 2 {
		t.Errorf("tags = %v", restored.Tags)
	}
}

func TestUndo_EmptyHistory(t *testing.T) {
	e := newTestEngine(t)
	if _, err := e.Undo(); !errors.Is(err, ErrNothingToUndo) {
		t.Errorf("err = %v, want ErrNothingToUndo", err)
	}
}

func TestUndo_HistoryCapsAtTwenty(t *testing.T) {
	e := newTestEngine(t)

	for i := 0; i < 25; i++ {
		if _, err := e.Create(Draft{Title: fmt.Sprintf("Task %d", i)}); err != nil {
			t.Fatalf("Create() failed: %v", err)
		}
	}
	if e.UndoDepth() != 20 {
		t.Fatalf("undo depth = %d, want 20", e.UndoDepth())
	}

	// Undo everything reversible. The five oldest creates were evicted
	// and stay in place.
	for i := 0; i < 20; i++ {
		if _, err := e.Undo(); err != nil {
			t.Fatalf("Undo() %d failed: %v", i, err)
		}
	}
	if _, err := e.Undo(); !errors.Is(err, ErrNothingToUndo) {
		t.Errorf("err = %v after draining history", err)
	}
	if got := len(e.store.Tasks()); got != 5 {
		t.Errorf("store holds %d tasks, want the 5 evicted-entry tasks", got)
	}
}

func TestTasksForProject(t *testing.T) {
	e := newTestEngine(t)
	e.Create(Draft{Title: "a", ProjectID: "p1"})
	e.Create(Draft{Title: "b", ProjectID: "p2"})
	e.Create(Draft{Title: "c", ProjectID: "p1"})

	got := e.TasksForProject("p1")
	if len(got) != 2 {
		t.Errorf("got %d tasks for p1, want 2", len(got))
	}
	if len(e.store.Tasks()) != 3 {
		t.Error("filtering mutated the store")
	}
}
