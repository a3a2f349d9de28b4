package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/bharathvbcr/liquitask/internal/model"
)

// importFields are the recognized top-level fields of an import document,
// in snapshot order. "version" is the export stamp and aliases
// "schemaVersion" on the way back in.
var importFields = []string{
	"columns", "projectTypes", "priorities", "customFields", "projects",
	"tasks", "taskTemplates", "activeProjectId", "sidebarCollapsed",
	"grouping", "schemaVersion", "version",
}

// ImportResult is a fully validated import document. Present records
// which top-level fields the document actually carried, so partial
// imports only touch what they name.
type ImportResult struct {
	Snapshot  model.Snapshot
	Templates []model.TaskTemplate
	Present   map[string]bool
	Warnings  []Warning
}

// ValidateImport validates and normalizes an import document.
//
// It either returns a complete result or a *ValidationError listing every
// failing field; it never returns a partially valid document. Warnings
// (date fallbacks) accompany a successful result.
func ValidateImport(raw []byte) (*ImportResult, error) {
	return validateImportAt(raw, time.Now)
}

// validateImportAt is the clock-injectable core of ValidateImport.
func validateImportAt(raw []byte, now func() time.Time) (*ImportResult, error) {
	doc, err := decodeDocument(raw)
	if err != nil {
		return nil, err
	}

	structural, err := structuralErrors(raw)
	if err != nil {
		return nil, fmt.Errorf("structural validation: %w", err)
	}

	n := newNormalizer(now, false)
	snap := n.snapshot(doc)
	templates := n.templateList("taskTemplates", doc["taskTemplates"])

	if merged := mergeFieldErrors(n.errs, structural); len(merged) > 0 {
		return nil, &ValidationError{Fields: merged}
	}

	// Tasks without a status land in the initial column of the effective
	// board (imported columns if present, seed defaults otherwise).
	columns := snap.Columns
	if len(columns) == 0 {
		columns = model.DefaultColumns()
	}
	initial := model.InitialColumnID(columns)
	for i := range snap.Tasks {
		if snap.Tasks[i].Status == "" {
			snap.Tasks[i].Status = initial
		}
	}

	present := make(map[string]bool, len(importFields))
	for _, f := range importFields {
		if _, ok := doc[f]; ok {
			present[f] = true
		}
	}
	if present["version"] {
		present["schemaVersion"] = true
	}

	return &ImportResult{
		Snapshot:  snap,
		Templates: templates,
		Present:   present,
		Warnings:  n.warns,
	}, nil
}

// DecodeTasks normalizes a stored tasks document, reviving date fields.
//
// This is the store's read path: constraint violations degrade to
// warnings and defaults instead of errors, so one damaged record cannot
// take the whole collection down. A document that is not JSON at all, or
// not an array, is unrecoverable and returns an error.
func DecodeTasks(raw []byte) ([]model.Task, []Warning, error) {
	var doc any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, nil, fmt.Errorf("decode tasks: %w", err)
	}
	if _, ok := doc.([]any); !ok {
		return nil, nil, fmt.Errorf("decode tasks: document is not an array")
	}

	n := newNormalizer(time.Now, true)
	tasks := n.taskList("tasks", doc)
	return tasks, n.warns, nil
}

// DecodeTemplates normalizes a stored task-templates document.
func DecodeTemplates(raw []byte) ([]model.TaskTemplate, []Warning, error) {
	var doc any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, nil, fmt.Errorf("decode templates: %w", err)
	}
	if _, ok := doc.([]any); !ok {
		return nil, nil, fmt.Errorf("decode templates: document is not an array")
	}

	n := newNormalizer(time.Now, true)
	templates := n.templateList("taskTemplates", doc)
	return templates, n.warns, nil
}

func decodeDocument(raw []byte) (map[string]any, error) {
	var doc any
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, &ValidationError{Fields: []FieldError{
			{Path: "document", Reason: "invalid JSON: " + err.Error()},
		}}
	}
	m, ok := doc.(map[string]any)
	if !ok {
		return nil, &ValidationError{Fields: []FieldError{
			{Path: "document", Reason: "must be a JSON object"},
		}}
	}
	return m, nil
}

// mergeFieldErrors combines normalization and structural errors, keeping
// the first reason reported for each path. Normalization errors come
// first: their messages name the constraint rather than the CUE conflict.
func mergeFieldErrors(primary, secondary []FieldError) []FieldError {
	seen := make(map[string]bool, len(primary)+len(secondary))
	var merged []FieldError
	for _, list := range [][]FieldError{primary, secondary} {
		for _, f := range list {
			if seen[f.Path] {
				continue
			}
			seen[f.Path] = true
			merged = append(merged, f)
		}
	}
	return merged
}
