package storage

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/bharathvbcr/liquitask/internal/model"
	"github.com/bharathvbcr/liquitask/internal/schema"
)

// exportDocument is the on-disk export shape: every snapshot field plus
// a version stamp.
type exportDocument struct {
	model.Snapshot
	Version string `json:"version"`
}

// ExportData serializes the full snapshot as version-stamped,
// pretty-printed JSON.
func (s *Store) ExportData() ([]byte, error) {
	doc := exportDocument{
		Snapshot: *s.Snapshot(),
		Version:  model.CurrentSchemaVersion,
	}
	doc.SchemaVersion = model.CurrentSchemaVersion

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("export: %w", err)
	}
	return data, nil
}

// ImportData validates a serialized export and applies it.
//
// Every top-level field is optional, so partial imports only touch the
// documents they name. Validation is all-or-nothing: a malformed import
// returns a *schema.ValidationError and applies nothing. Date fallbacks
// recorded during validation are logged, not fatal.
func (s *Store) ImportData(raw []byte) error {
	result, err := schema.ValidateImport(raw)
	if err != nil {
		return err
	}
	for _, w := range result.Warnings {
		s.log.Warn("import substituted a questionable value", "path", w.Path, "reason", w.Reason)
	}

	snap := result.Snapshot
	var errs []error
	apply := func(field string, key Key, value any) {
		if result.Present[field] {
			errs = append(errs, s.Set(key, value))
		}
	}
	apply("columns", KeyColumns, snap.Columns)
	apply("projectTypes", KeyProjectTypes, snap.ProjectTypes)
	apply("priorities", KeyPriorities, snap.Priorities)
	apply("customFields", KeyCustomFields, snap.CustomFields)
	apply("projects", KeyProjects, snap.Projects)
	apply("tasks", KeyTasks, snap.Tasks)
	apply("taskTemplates", KeyTaskTemplates, result.Templates)
	apply("activeProjectId", KeyActiveProject, snap.ActiveProjectID)
	apply("sidebarCollapsed", KeySidebarCollapsed, snap.SidebarCollapsed)
	apply("grouping", KeyGrouping, snap.Grouping)
	apply("schemaVersion", KeyDataVersion, snap.SchemaVersion)
	if err := errors.Join(errs...); err != nil {
		return err
	}

	// An import of an older export may need the schema chain.
	stored := s.DataVersion()
	if s.migrator != nil && stored != "" && s.migrator.NeedsMigration(stored) {
		result := s.migrator.Run(s.Snapshot(), stored)
		if !result.Success {
			return fmt.Errorf("imported data could not be migrated: %w", result.Err)
		}
		return s.ApplySnapshot(*result.Data, result.MigratedTo)
	}
	return nil
}
