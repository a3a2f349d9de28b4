package tasks

import (
	"fmt"
	"time"

	"github.com/bharathvbcr/liquitask/internal/model"
)

// MoveResult is the structured outcome of a Move. A blocked move is a
// domain rejection, not an error: the task is unchanged and BlockedBy
// names the task holding it in place.
type MoveResult struct {
	Task      model.Task
	Blocked   bool
	BlockedBy string
}

// Move transitions a task to a new column, optionally changing its
// priority. newPriority "" keeps the current priority.
//
// The move is rejected when the target is not the initial column and the
// task holds a blocked-by link whose target has not reached a terminal
// column (or the legacy delivered status). Moving into a terminal column
// stamps completedAt and advances any recurrence rule; moving out clears
// completedAt.
func (e *Engine) Move(id, newStatus, newPriority string) (MoveResult, error) {
	task, ok := e.Find(id)
	if !ok {
		return MoveResult{}, fmt.Errorf("task %q not found", id)
	}
	// Find's pointer fields still alias the cached collection. Clone
	// before mutating so Update's pre-move snapshot stays pristine.
	task = task.Clone()

	columns := e.store.Columns()
	target, ok := model.ColumnByID(columns, newStatus)
	if !ok {
		return MoveResult{}, fmt.Errorf("unknown status %q", newStatus)
	}

	if newStatus != model.InitialColumnID(columns) {
		if blockerID, blocked := e.findBlocker(task, columns); blocked {
			e.log.Debug("move blocked by dependency", "id", id, "blockedBy", blockerID)
			return MoveResult{Task: task, Blocked: true, BlockedBy: blockerID}, nil
		}
	}

	task.Status = newStatus
	if newPriority != "" {
		if !e.priorityExists(newPriority) {
			return MoveResult{}, fmt.Errorf("unknown priority %q", newPriority)
		}
		task.Priority = newPriority
	}

	if target.Terminal {
		if task.CompletedAt == nil {
			stamp := e.now()
			task.CompletedAt = &stamp
		}
		advanceRecurrence(&task, e.now())
	} else {
		task.CompletedAt = nil
	}

	updated, err := e.Update(task)
	if err != nil {
		return MoveResult{}, err
	}
	return MoveResult{Task: updated}, nil
}

// findBlocker returns the first blocked-by target that has not reached a
// satisfying status. Links to missing tasks do not block.
func (e *Engine) findBlocker(task model.Task, columns []model.BoardColumn) (string, bool) {
	for _, blockerID := range task.LinkTargets(model.LinkBlockedBy) {
		blocker, ok := e.Find(blockerID)
		if !ok {
			continue
		}
		if !statusSatisfiesDependency(blocker.Status, columns) {
			return blocker.ID, true
		}
	}
	return "", false
}

// statusSatisfiesDependency reports whether a blocker in the given
// status releases its dependents: its column is terminal, or the status
// is the legacy delivered marker kept for pre-1.0 boards.
func statusSatisfiesDependency(status string, columns []model.BoardColumn) bool {
	if col, ok := model.ColumnByID(columns, status); ok {
		return col.Terminal
	}
	return status == model.StatusDelivered
}

// advanceRecurrence bumps a recurring task's next occurrence past the
// completion instant, clearing the rule once the end date is passed.
func advanceRecurrence(task *model.Task, completed time.Time) {
	r := task.Recurrence
	if r == nil {
		return
	}

	next := completed
	if r.NextOccurrence != nil && r.NextOccurrence.After(completed) {
		return
	}
	interval := r.Interval
	if interval <= 0 {
		interval = 1
	}
	switch r.Frequency {
	case "daily":
		next = next.AddDate(0, 0, interval)
	case "weekly":
		next = next.AddDate(0, 0, 7*interval)
	case "monthly":
		next = next.AddDate(0, interval, 0)
	default:
		return
	}

	if r.EndDate != nil && next.After(*r.EndDate) {
		task.Recurrence = nil
		return
	}
	r.NextOccurrence = &next
}
