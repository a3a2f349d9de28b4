package model

import "time"

// LinkType categorizes a directed relationship between two tasks.
type LinkType string

const (
	LinkBlocks     LinkType = "blocks"
	LinkBlockedBy  LinkType = "blocked-by"
	LinkRelatesTo  LinkType = "relates-to"
	LinkDuplicates LinkType = "duplicates"
)

// ValidLinkTypes defines the allowed link types.
var ValidLinkTypes = map[LinkType]bool{
	LinkBlocks:     true,
	LinkBlockedBy:  true,
	LinkRelatesTo:  true,
	LinkDuplicates: true,
}

// TaskLink is a typed edge from the owning task to another task.
// A "blocked-by" link gates status transitions until the target task
// reaches a terminal column.
type TaskLink struct {
	TaskID string   `json:"taskId"`
	Type   LinkType `json:"type"`
}

// Subtask is a checklist item nested inside a task.
type Subtask struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// Attachment references a file associated with a task.
type Attachment struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Path string `json:"path"`
	Size int64  `json:"size,omitempty"`
}

// RecurrenceRule describes how a completed task re-schedules itself.
type RecurrenceRule struct {
	Frequency      string     `json:"frequency"` // "daily" | "weekly" | "monthly"
	Interval       int        `json:"interval"`
	EndDate        *time.Time `json:"endDate,omitempty"`
	NextOccurrence *time.Time `json:"nextOccurrence,omitempty"`
}

// ErrorLogEntry records a failure observed while processing a task
// (e.g. a reminder that could not be delivered).
type ErrorLogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
}

// Task is the central domain record.
//
// Status references a BoardColumn id and Priority references a
// PriorityDefinition id. The domain engine enforces that Status always
// names a currently configured column; the storage layer does not.
type Task struct {
	ID          string `json:"id"`
	JobID       string `json:"jobId"`
	ProjectID   string `json:"projectId,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Status      string `json:"status"`
	Priority    string `json:"priority"`

	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   *time.Time `json:"updatedAt,omitempty"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`

	Subtasks    []Subtask    `json:"subtasks"`
	Attachments []Attachment `json:"attachments"`
	LinkedTasks []TaskLink   `json:"linkedTasks"`
	Tags        []string     `json:"tags"`

	EstimatedHours float64 `json:"estimatedHours,omitempty"`
	ActualHours    float64 `json:"actualHours,omitempty"`

	Recurrence *RecurrenceRule `json:"recurrence,omitempty"`
	ErrorLog   []ErrorLogEntry `json:"errorLog,omitempty"`

	// DependsOn carried raw task ids before schema 1.0.0. The migration
	// chain converts it into typed blocked-by links and clears it.
	DependsOn []string `json:"dependsOn,omitempty"`
}

// Clone returns a deep copy of the task. Undo entries and migration
// backups hold clones so later mutations cannot reach back into them.
func (t Task) Clone() Task {
	c := t
	c.Subtasks = append([]Subtask(nil), t.Subtasks...)
	c.Attachments = append([]Attachment(nil), t.Attachments...)
	c.LinkedTasks = append([]TaskLink(nil), t.LinkedTasks...)
	c.Tags = append([]string(nil), t.Tags...)
	c.ErrorLog = append([]ErrorLogEntry(nil), t.ErrorLog...)
	c.DependsOn = append([]string(nil), t.DependsOn...)
	c.UpdatedAt = cloneTime(t.UpdatedAt)
	c.DueDate = cloneTime(t.DueDate)
	c.CompletedAt = cloneTime(t.CompletedAt)
	if t.Recurrence != nil {
		r := *t.Recurrence
		r.EndDate = cloneTime(t.Recurrence.EndDate)
		r.NextOccurrence = cloneTime(t.Recurrence.NextOccurrence)
		c.Recurrence = &r
	}
	return c
}

// LinkTargets returns the ids of all tasks linked with the given type.
func (t Task) LinkTargets(lt LinkType) []string {
	var ids []string
	for _, l := range t.LinkedTasks {
		if l.Type == lt {
			ids = append(ids, l.TaskID)
		}
	}
	return ids
}

// CloneTasks deep-copies a task collection.
func CloneTasks(tasks []Task) []Task {
	if tasks == nil {
		return nil
	}
	out := make([]Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
