package tasks

import (
	"testing"

	"github.com/bharathvbcr/liquitask/internal/model"
)

func TestCompleteSubtask(t *testing.T) {
	e := newTestEngine(t)
	task, _ := e.Create(Draft{Title: "Parent"})

	collection := e.store.Tasks()
	collection[0].Subtasks = []model.Subtask{{ID: "s1", Title: "Step one"}}
	if err := e.store.SetTasks(collection); err != nil {
		t.Fatalf("SetTasks() failed: %v", err)
	}

	updated, err := e.CompleteSubtask(task.ID, "s1", true)
	if err != nil {
		t.Fatalf("CompleteSubtask() failed: %v", err)
	}
	if !updated.Subtasks[0].Completed {
		t.Error("subtask not marked completed")
	}

	// The toggle went through Update, so it is undoable.
	if _, err := e.Undo(); err != nil {
		t.Fatalf("Undo() failed: %v", err)
	}
	current, _ := e.Find(task.ID)
	if current.Subtasks[0].Completed {
		t.Error("undo did not revert the subtask toggle")
	}
}

func TestCompleteSubtask_Unknown(t *testing.T) {
	e := newTestEngine(t)
	task, _ := e.Create(Draft{Title: "Parent"})

	if _, err := e.CompleteSubtask("ghost", "s1", true); err == nil {
		t.Error("accepted an unknown task")
	}
	if _, err := e.CompleteSubtask(task.ID, "ghost", true); err == nil {
		t.Error("accepted an unknown subtask")
	}
}

func TestAppendErrorLog(t *testing.T) {
	e := newTestEngine(t)
	task, _ := e.Create(Draft{Title: "Flaky"})
	depth := e.UndoDepth()

	if err := e.AppendErrorLog(task.ID, "reminder delivery failed"); err != nil {
		t.Fatalf("AppendErrorLog() failed: %v", err)
	}

	current, _ := e.Find(task.ID)
	if len(current.ErrorLog) != 1 || current.ErrorLog[0].Message != "reminder delivery failed" {
		t.Errorf("errorLog = %v", current.ErrorLog)
	}
	if current.UpdatedAt != nil {
		t.Error("diagnostics must not stamp updatedAt")
	}
	if e.UndoDepth() != depth {
		t.Error("diagnostics must not enter the undo history")
	}
}
