// Package tasks implements the task domain engine.
//
// The engine owns the in-memory task collection and the undo history,
// and delegates every mutation to the store for persistence. All
// operations run synchronously to completion; the store's write path
// decides whether persistence itself blocks.
//
// # Critical Patterns
//
// Dependency gating: a task holding a blocked-by link cannot leave the
// initial column until the linked task reaches a terminal column.
// Blocking is a structured rejection (MoveResult), not an error.
//
// Bounded undo: the last 20 mutations are reversible, LIFO, with the
// oldest entry silently evicted at capacity. Undo entries hold deep
// clones and are never persisted.
package tasks
