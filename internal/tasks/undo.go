package tasks

import (
	"errors"

	"github.com/bharathvbcr/liquitask/internal/model"
)

// undoCapacity bounds the undo history. The oldest entry is silently
// evicted once full.
const undoCapacity = 20

// ErrNothingToUndo signals an empty undo history. It is an outcome, not
// a failure: callers typically surface it as a status message.
var ErrNothingToUndo = errors.New("nothing to undo")

// UndoKind tags what a popped undo entry reversed.
type UndoKind string

const (
	UndoCreate UndoKind = "create"
	UndoUpdate UndoKind = "update"
	UndoDelete UndoKind = "delete"
)

// undoEntry snapshots one reversible mutation. Task is the record as it
// stood after the mutation; Prev is the pre-update state for updates.
type undoEntry struct {
	kind UndoKind
	task model.Task
	prev *model.Task
}

// undoStack is an explicit bounded deque owned by the engine. Entries
// are in-memory only and never persisted.
type undoStack struct {
	entries []undoEntry
}

// push appends an entry, evicting the oldest past capacity.
func (u *undoStack) push(e undoEntry) {
	u.entries = append(u.entries, e)
	if len(u.entries) > undoCapacity {
		u.entries = u.entries[1:]
	}
}

// pop removes and returns the most recent entry, LIFO.
func (u *undoStack) pop() (undoEntry, bool) {
	if len(u.entries) == 0 {
		return undoEntry{}, false
	}
	e := u.entries[len(u.entries)-1]
	u.entries = u.entries[:len(u.entries)-1]
	return e, true
}

func (u *undoStack) len() int {
	return len(u.entries)
}
