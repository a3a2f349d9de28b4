// Package model defines the persisted data model for LiquiTask.
//
// Every record that crosses a storage boundary lives here: tasks and their
// nested collections, board configuration (columns, priorities, project
// types, custom fields), projects, and the full AppDataSnapshot bundle.
//
// Records are plain structs with JSON tags matching the on-disk documents.
// Raw JSON never leaves the schema package; by the time a value is a model
// type, every field is present, defaulted, and type-correct.
package model
