package tasks

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/bharathvbcr/liquitask/internal/model"
	"github.com/bharathvbcr/liquitask/internal/storage"
)

// Confirmer decides whether a destructive operation proceeds. The CLI
// wires an interactive prompt; a nil Confirmer declines everything that
// is not explicitly skipped.
type Confirmer func(task model.Task) bool

// Engine executes task domain operations on top of the store. Construct
// with NewEngine; one engine per process, owned by bootstrap.
type Engine struct {
	store   *storage.Store
	log     *log.Logger
	undo    undoStack
	confirm Confirmer
	now     func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithConfirmer installs the destructive-operation gate.
func WithConfirmer(c Confirmer) Option {
	return func(e *Engine) { e.confirm = c }
}

// WithClock replaces the wall clock. Tests pin it for stable timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates a domain engine persisting through store.
func NewEngine(store *storage.Store, logger *log.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = log.Default()
	}
	e := &Engine{store: store, log: logger, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Draft is the caller-supplied partial task for Create and BulkCreate.
// Zero fields take domain defaults.
type Draft struct {
	Title          string
	Description    string
	ProjectID      string
	Status         string
	Priority       string
	DueDate        *time.Time
	Tags           []string
	EstimatedHours float64
	Recurrence     *model.RecurrenceRule
}

// Create builds a full task from a draft, appends it to the collection,
// persists, and records a create undo entry.
func (e *Engine) Create(draft Draft) (model.Task, error) {
	task, err := e.buildTask(draft)
	if err != nil {
		return model.Task{}, err
	}

	collection := append(e.store.Tasks(), task)
	if err := e.store.SetTasks(collection); err != nil {
		return model.Task{}, fmt.Errorf("persist create: %w", err)
	}

	e.undo.push(undoEntry{kind: UndoCreate, task: task.Clone()})
	e.log.Debug("task created", "id", task.ID, "jobId", task.JobID)
	return task, nil
}

// BulkCreate applies Create defaulting to each draft and persists the
// batch with a single write. Generated ids are unique even within one
// batch created in the same instant: the id and job-id suffixes are
// random, not timestamp-derived.
func (e *Engine) BulkCreate(drafts []Draft) ([]model.Task, error) {
	created := make([]model.Task, 0, len(drafts))
	for i, draft := range drafts {
		task, err := e.buildTask(draft)
		if err != nil {
			return nil, fmt.Errorf("draft %d: %w", i, err)
		}
		created = append(created, task)
	}

	collection := append(e.store.Tasks(), created...)
	if err := e.store.SetTasks(collection); err != nil {
		return nil, fmt.Errorf("persist bulk create: %w", err)
	}

	for _, task := range created {
		e.undo.push(undoEntry{kind: UndoCreate, task: task.Clone()})
	}
	e.log.Debug("tasks created", "count", len(created))
	return created, nil
}

// buildTask fills in everything a draft leaves open.
func (e *Engine) buildTask(draft Draft) (model.Task, error) {
	if draft.Title == "" {
		return model.Task{}, fmt.Errorf("title must not be empty")
	}

	columns := e.store.Columns()
	status := draft.Status
	if status == "" {
		status = model.InitialColumnID(columns)
	} else if _, ok := model.ColumnByID(columns, status); !ok {
		return model.Task{}, fmt.Errorf("unknown status %q", status)
	}

	priority := draft.Priority
	if priority == "" {
		priority = model.PriorityMedium
	} else if !e.priorityExists(priority) {
		return model.Task{}, fmt.Errorf("unknown priority %q", priority)
	}

	tags := draft.Tags
	if tags == nil {
		tags = []string{}
	}

	return model.Task{
		ID:             NewTaskID(),
		JobID:          NewJobID(draft.Title),
		ProjectID:      draft.ProjectID,
		Title:          draft.Title,
		Description:    draft.Description,
		Status:         status,
		Priority:       priority,
		CreatedAt:      e.now(),
		DueDate:        draft.DueDate,
		Subtasks:       []model.Subtask{},
		Attachments:    []model.Attachment{},
		LinkedTasks:    []model.TaskLink{},
		Tags:           tags,
		EstimatedHours: draft.EstimatedHours,
		Recurrence:     draft.Recurrence,
	}, nil
}

func (e *Engine) priorityExists(id string) bool {
	for _, p := range e.store.Priorities() {
		if p.ID == id {
			return true
		}
	}
	return false
}

// Update replaces the stored record with task, stamping updatedAt and
// recording an update undo entry carrying the pre-update snapshot.
func (e *Engine) Update(task model.Task) (model.Task, error) {
	collection := e.store.Tasks()
	idx := indexByID(collection, task.ID)
	if idx < 0 {
		return model.Task{}, fmt.Errorf("task %q not found", task.ID)
	}
	if _, ok := model.ColumnByID(e.store.Columns(), task.Status); !ok {
		return model.Task{}, fmt.Errorf("unknown status %q", task.Status)
	}

	prev := collection[idx].Clone()
	stamp := e.now()
	task.UpdatedAt = &stamp
	collection[idx] = task

	if err := e.store.SetTasks(collection); err != nil {
		return model.Task{}, fmt.Errorf("persist update: %w", err)
	}

	e.undo.push(undoEntry{kind: UndoUpdate, task: task.Clone(), prev: &prev})
	return task, nil
}

// Delete removes a task. Unless skipConfirm is set, the configured
// Confirmer must approve; with no Confirmer the deletion is declined.
// The first return reports whether deletion proceeded.
func (e *Engine) Delete(id string, skipConfirm bool) (bool, error) {
	collection := e.store.Tasks()
	idx := indexByID(collection, id)
	if idx < 0 {
		return false, fmt.Errorf("task %q not found", id)
	}

	if !skipConfirm {
		if e.confirm == nil || !e.confirm(collection[idx]) {
			return false, nil
		}
	}

	removed := collection[idx].Clone()
	collection = append(collection[:idx], collection[idx+1:]...)
	if err := e.store.SetTasks(collection); err != nil {
		return false, fmt.Errorf("persist delete: %w", err)
	}

	e.undo.push(undoEntry{kind: UndoDelete, task: removed})
	e.log.Debug("task deleted", "id", id)
	return true, nil
}

// Undone reports what an Undo call reversed.
type Undone struct {
	Kind UndoKind
	Task model.Task
}

// Undo pops the most recent undo entry and reverses it: a created task
// is removed, an updated task reverts to its prior snapshot, a deleted
// task is restored exactly (timestamps included). Returns
// ErrNothingToUndo when the history is empty.
func (e *Engine) Undo() (Undone, error) {
	entry, ok := e.undo.pop()
	if !ok {
		return Undone{}, ErrNothingToUndo
	}

	collection := e.store.Tasks()
	switch entry.kind {
	case UndoCreate:
		idx := indexByID(collection, entry.task.ID)
		if idx >= 0 {
			collection = append(collection[:idx], collection[idx+1:]...)
		}
	case UndoUpdate:
		if idx := indexByID(collection, entry.task.ID); idx >= 0 && entry.prev != nil {
			collection[idx] = entry.prev.Clone()
		}
	case UndoDelete:
		collection = append(collection, entry.task.Clone())
	}

	if err := e.store.SetTasks(collection); err != nil {
		return Undone{}, fmt.Errorf("persist undo: %w", err)
	}
	e.log.Debug("undo applied", "kind", entry.kind, "id", entry.task.ID)
	return Undone{Kind: entry.kind, Task: entry.task}, nil
}

// UndoDepth returns how many mutations are currently reversible.
func (e *Engine) UndoDepth() int {
	return e.undo.len()
}

// TasksForProject returns the tasks belonging to a project. Pure filter,
// no mutation.
func (e *Engine) TasksForProject(projectID string) []model.Task {
	var out []model.Task
	for _, t := range e.store.Tasks() {
		if t.ProjectID == projectID {
			out = append(out, t)
		}
	}
	return out
}

// Find returns a task by id.
func (e *Engine) Find(id string) (model.Task, bool) {
	collection := e.store.Tasks()
	if idx := indexByID(collection, id); idx >= 0 {
		return collection[idx], true
	}
	return model.Task{}, false
}

func indexByID(tasks []model.Task, id string) int {
	for i, t := range tasks {
		if t.ID == id {
			return i
		}
	}
	return -1
}
