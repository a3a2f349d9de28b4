package storage

import (
	"errors"

	"github.com/bharathvbcr/liquitask/internal/model"
)

// Typed accessors over Get/Set. The cache holds decoded values, so each
// accessor is a cache lookup plus a type assertion; a failed assertion
// means a programming error upstream and degrades to the key's default.

// Tasks returns the task collection.
func (s *Store) Tasks() []model.Task {
	if v, ok := s.Get(KeyTasks, defaultValue(KeyTasks)).([]model.Task); ok {
		return v
	}
	return []model.Task{}
}

// SetTasks persists the task collection.
func (s *Store) SetTasks(tasks []model.Task) error {
	return s.Set(KeyTasks, tasks)
}

// Columns returns the configured board columns.
func (s *Store) Columns() []model.BoardColumn {
	if v, ok := s.Get(KeyColumns, defaultValue(KeyColumns)).([]model.BoardColumn); ok {
		return v
	}
	return model.DefaultColumns()
}

// SetColumns persists the board configuration.
func (s *Store) SetColumns(columns []model.BoardColumn) error {
	return s.Set(KeyColumns, columns)
}

// Priorities returns the configured priority scale.
func (s *Store) Priorities() []model.PriorityDefinition {
	if v, ok := s.Get(KeyPriorities, defaultValue(KeyPriorities)).([]model.PriorityDefinition); ok {
		return v
	}
	return model.DefaultPriorities()
}

// ProjectTypes returns the configured project categories.
func (s *Store) ProjectTypes() []model.ProjectType {
	if v, ok := s.Get(KeyProjectTypes, defaultValue(KeyProjectTypes)).([]model.ProjectType); ok {
		return v
	}
	return model.DefaultProjectTypes()
}

// CustomFields returns the declared custom fields.
func (s *Store) CustomFields() []model.CustomFieldDef {
	if v, ok := s.Get(KeyCustomFields, defaultValue(KeyCustomFields)).([]model.CustomFieldDef); ok {
		return v
	}
	return []model.CustomFieldDef{}
}

// Projects returns the project list.
func (s *Store) Projects() []model.Project {
	if v, ok := s.Get(KeyProjects, defaultValue(KeyProjects)).([]model.Project); ok {
		return v
	}
	return []model.Project{}
}

// TaskTemplates returns the quick-entry templates.
func (s *Store) TaskTemplates() []model.TaskTemplate {
	if v, ok := s.Get(KeyTaskTemplates, defaultValue(KeyTaskTemplates)).([]model.TaskTemplate); ok {
		return v
	}
	return []model.TaskTemplate{}
}

// ActiveProject returns the selected project id ("" for all).
func (s *Store) ActiveProject() string {
	v, _ := s.Get(KeyActiveProject, "").(string)
	return v
}

// SetActiveProject persists the selected project id.
func (s *Store) SetActiveProject(id string) error {
	return s.Set(KeyActiveProject, id)
}

// SidebarCollapsed returns the sidebar preference.
func (s *Store) SidebarCollapsed() bool {
	v, _ := s.Get(KeySidebarCollapsed, false).(bool)
	return v
}

// Grouping returns the board grouping preference.
func (s *Store) Grouping() string {
	v, ok := s.Get(KeyGrouping, "status").(string)
	if !ok || v == "" {
		return "status"
	}
	return v
}

// DataVersion returns the stored schema version ("" when unstamped).
func (s *Store) DataVersion() string {
	v, _ := s.Get(KeyDataVersion, "").(string)
	return v
}

// Backups returns the pre-migration backup ring, most recent first.
func (s *Store) Backups() []model.Backup {
	if v, ok := s.Get(KeyBackups, defaultValue(KeyBackups)).([]model.Backup); ok {
		return v
	}
	return []model.Backup{}
}

// MigrationLog returns the migration attempt log.
func (s *Store) MigrationLog() []model.MigrationLogEntry {
	if v, ok := s.Get(KeyMigrationLog, defaultValue(KeyMigrationLog)).([]model.MigrationLogEntry); ok {
		return v
	}
	return []model.MigrationLogEntry{}
}

// SearchHistory returns recent search queries, newest first.
func (s *Store) SearchHistory() []string {
	if v, ok := s.Get(KeySearchHistory, defaultValue(KeySearchHistory)).([]string); ok {
		return v
	}
	return []string{}
}

// SetSearchHistory persists recent search queries.
func (s *Store) SetSearchHistory(queries []string) error {
	return s.Set(KeySearchHistory, queries)
}

// Keybindings returns the action-to-chords map from the keys namespace.
func (s *Store) Keybindings() map[string][]string {
	if v, ok := s.Get(KeyKeybindings, defaultValue(KeyKeybindings)).(map[string][]string); ok {
		return v
	}
	return map[string][]string{}
}

// SetKeybindings persists the keybinding map.
func (s *Store) SetKeybindings(bindings map[string][]string) error {
	return s.Set(KeyKeybindings, bindings)
}

// backupRingSize caps the pre-migration backup ring.
const backupRingSize = 5

// SaveBackup prepends a backup to the ring, dropping the oldest entry
// past capacity. Implements migrate.BackupSink.
func (s *Store) SaveBackup(b model.Backup) error {
	ring := append([]model.Backup{b}, s.Backups()...)
	if len(ring) > backupRingSize {
		ring = ring[:backupRingSize]
	}
	return s.Set(KeyBackups, ring)
}

// AppendMigrationLog appends a migration attempt record. Implements
// migrate.BackupSink.
func (s *Store) AppendMigrationLog(e model.MigrationLogEntry) error {
	return s.Set(KeyMigrationLog, append(s.MigrationLog(), e))
}

// Snapshot assembles the full persisted bundle from the cache.
func (s *Store) Snapshot() *model.Snapshot {
	return &model.Snapshot{
		Columns:          s.Columns(),
		ProjectTypes:     s.ProjectTypes(),
		Priorities:       s.Priorities(),
		CustomFields:     s.CustomFields(),
		Projects:         s.Projects(),
		Tasks:            s.Tasks(),
		ActiveProjectID:  s.ActiveProject(),
		SidebarCollapsed: s.SidebarCollapsed(),
		Grouping:         s.Grouping(),
		SchemaVersion:    s.DataVersion(),
	}
}

// ApplySnapshot writes every snapshot field back through Set and stamps
// the given schema version.
func (s *Store) ApplySnapshot(snap model.Snapshot, version string) error {
	errs := []error{
		s.Set(KeyColumns, snap.Columns),
		s.Set(KeyProjectTypes, snap.ProjectTypes),
		s.Set(KeyPriorities, snap.Priorities),
		s.Set(KeyCustomFields, snap.CustomFields),
		s.Set(KeyProjects, snap.Projects),
		s.Set(KeyTasks, snap.Tasks),
		s.Set(KeyActiveProject, snap.ActiveProjectID),
		s.Set(KeySidebarCollapsed, snap.SidebarCollapsed),
		s.Set(KeyGrouping, snap.Grouping),
		s.Set(KeyDataVersion, version),
	}
	return errors.Join(errs...)
}
