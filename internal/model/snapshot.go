package model

import "time"

// CurrentSchemaVersion stamps the shape this codebase reads and writes.
//
// Schema version history:
//   0.7.0 - flat task list, priorities as display names, no project types
//   0.8.0 - project types introduced, createdAt required
//   0.9.0 - priority ids replace names, board grouping preference
//   1.0.0 - typed linkedTasks replace the dependsOn id list
const CurrentSchemaVersion = "1.0.0"

// Snapshot is the full persisted application bundle. It is assembled
// from the per-key documents on load, mutated field-by-field by domain
// operations, and versioned/migrated as one unit.
type Snapshot struct {
	Columns          []BoardColumn        `json:"columns"`
	ProjectTypes     []ProjectType        `json:"projectTypes"`
	Priorities       []PriorityDefinition `json:"priorities"`
	CustomFields     []CustomFieldDef     `json:"customFields"`
	Projects         []Project            `json:"projects"`
	Tasks            []Task               `json:"tasks"`
	ActiveProjectID  string               `json:"activeProjectId"`
	SidebarCollapsed bool                 `json:"sidebarCollapsed"`
	Grouping         string               `json:"grouping"`
	SchemaVersion    string               `json:"schemaVersion"`
}

// Clone returns a deep copy of the snapshot.
func (s Snapshot) Clone() Snapshot {
	c := s
	c.Columns = append([]BoardColumn(nil), s.Columns...)
	c.ProjectTypes = append([]ProjectType(nil), s.ProjectTypes...)
	c.Priorities = append([]PriorityDefinition(nil), s.Priorities...)
	c.CustomFields = cloneCustomFields(s.CustomFields)
	c.Projects = append([]Project(nil), s.Projects...)
	c.Tasks = CloneTasks(s.Tasks)
	return c
}

func cloneCustomFields(fields []CustomFieldDef) []CustomFieldDef {
	if fields == nil {
		return nil
	}
	out := make([]CustomFieldDef, len(fields))
	for i, f := range fields {
		out[i] = f
		out[i].Options = append([]string(nil), f.Options...)
	}
	return out
}

// Backup is one entry in the pre-migration backup ring.
type Backup struct {
	SchemaVersion string    `json:"schemaVersion"`
	CreatedAt     time.Time `json:"createdAt"`
	Data          Snapshot  `json:"data"`
}

// MigrationLogEntry records one migration attempt. Entries are appended
// before any mutation so a crash mid-migration leaves a trace.
type MigrationLogEntry struct {
	From      string    `json:"from"`
	To        string    `json:"to"`
	Timestamp time.Time `json:"timestamp"`
}
