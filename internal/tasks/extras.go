package tasks

import (
	"fmt"

	"github.com/bharathvbcr/liquitask/internal/model"
)

// CompleteSubtask toggles a subtask's completed flag. The change flows
// through Update, so it is undoable like any other mutation.
func (e *Engine) CompleteSubtask(taskID, subtaskID string, completed bool) (model.Task, error) {
	task, ok := e.Find(taskID)
	if !ok {
		return model.Task{}, fmt.Errorf("task %q not found", taskID)
	}
	for i := range task.Subtasks {
		if task.Subtasks[i].ID == subtaskID {
			task.Subtasks[i].Completed = completed
			return e.Update(task)
		}
	}
	return model.Task{}, fmt.Errorf("subtask %q not found on task %q", subtaskID, taskID)
}

// AppendErrorLog records a processing failure on a task without going
// through Update: error-log entries are diagnostics, not edits, so they
// neither stamp updatedAt nor enter the undo history.
func (e *Engine) AppendErrorLog(taskID, message string) error {
	collection := e.store.Tasks()
	idx := indexByID(collection, taskID)
	if idx < 0 {
		return fmt.Errorf("task %q not found", taskID)
	}
	collection[idx].ErrorLog = append(collection[idx].ErrorLog, model.ErrorLogEntry{
		Timestamp: e.now(),
		Message:   message,
	})
	if err := e.store.SetTasks(collection); err != nil {
		return fmt.Errorf("persist error log: %w", err)
	}
	return nil
}
