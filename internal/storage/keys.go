package storage

import (
	"encoding/json"

	"github.com/bharathvbcr/liquitask/internal/model"
	"github.com/bharathvbcr/liquitask/internal/schema"
)

// Key names one persisted JSON document.
type Key string

// Persisted keys. Each holds exactly one JSON document in the active
// medium. KeyKeybindings lives in its own namespace so shortcut remapping
// tools can address it without touching application data.
const (
	KeyColumns          Key = "columns"
	KeyProjectTypes     Key = "project-types"
	KeyPriorities       Key = "priorities"
	KeyCustomFields     Key = "custom-fields"
	KeyProjects         Key = "projects"
	KeyTasks            Key = "tasks"
	KeyActiveProject    Key = "active-project"
	KeySidebarCollapsed Key = "sidebar-collapsed"
	KeyGrouping         Key = "grouping"
	KeyTaskTemplates    Key = "task-templates"
	KeySearchHistory    Key = "search-history"
	KeyCompactView      Key = "compact-view"
	KeyDataVersion      Key = "data-version"
	KeyBackups          Key = "backups"
	KeyMigrationLog     Key = "migration-log"
	KeyKeybindings      Key = "keys:bindings"
)

// AllKeys lists every key Initialize loads, in load order.
var AllKeys = []Key{
	KeyColumns,
	KeyProjectTypes,
	KeyPriorities,
	KeyCustomFields,
	KeyProjects,
	KeyTasks,
	KeyActiveProject,
	KeySidebarCollapsed,
	KeyGrouping,
	KeyTaskTemplates,
	KeySearchHistory,
	KeyCompactView,
	KeyDataVersion,
	KeyBackups,
	KeyMigrationLog,
	KeyKeybindings,
}

// reclaimableKeys are evicted from the browser-local medium, in order,
// when a write would exceed the quota. Search history is pure
// convenience; the backup ring is recoverable from the export flow.
var reclaimableKeys = []Key{KeySearchHistory, KeyBackups}

// dataKeys mark the documents whose presence means an install has real
// application state (as opposed to preferences), which drives the
// legacy-version inference when data-version is missing.
var dataKeys = map[Key]bool{
	KeyTasks:    true,
	KeyColumns:  true,
	KeyProjects: true,
}

// defaultValue returns the fallback for a key that is missing or
// corrupt. Board configuration keys fall back to the seed defaults; the
// rest to empty collections or zero scalars.
func defaultValue(k Key) any {
	switch k {
	case KeyColumns:
		return model.DefaultColumns()
	case KeyProjectTypes:
		return model.DefaultProjectTypes()
	case KeyPriorities:
		return model.DefaultPriorities()
	case KeyCustomFields:
		return []model.CustomFieldDef{}
	case KeyProjects:
		return []model.Project{}
	case KeyTasks:
		return []model.Task{}
	case KeyActiveProject:
		return ""
	case KeySidebarCollapsed:
		return false
	case KeyGrouping:
		return "status"
	case KeyTaskTemplates:
		return []model.TaskTemplate{}
	case KeySearchHistory:
		return []string{}
	case KeyCompactView:
		return false
	case KeyDataVersion:
		return ""
	case KeyBackups:
		return []model.Backup{}
	case KeyMigrationLog:
		return []model.MigrationLogEntry{}
	case KeyKeybindings:
		return map[string][]string{}
	}
	return nil
}

// decodeValue parses a stored document into its typed in-memory form.
// The tasks and template keys route through the schema package so date
// fields are revived; everything else is shaped enough for plain JSON
// decoding.
func decodeValue(k Key, raw []byte) (any, []schema.Warning, error) {
	switch k {
	case KeyTasks:
		return decodeTasks(raw)
	case KeyTaskTemplates:
		templates, warns, err := schema.DecodeTemplates(raw)
		return templates, warns, err
	case KeyColumns:
		return decodeTyped[[]model.BoardColumn](raw)
	case KeyProjectTypes:
		return decodeTyped[[]model.ProjectType](raw)
	case KeyPriorities:
		return decodeTyped[[]model.PriorityDefinition](raw)
	case KeyCustomFields:
		return decodeTyped[[]model.CustomFieldDef](raw)
	case KeyProjects:
		return decodeTyped[[]model.Project](raw)
	case KeyActiveProject, KeyGrouping, KeyDataVersion:
		return decodeTyped[string](raw)
	case KeySidebarCollapsed, KeyCompactView:
		return decodeTyped[bool](raw)
	case KeySearchHistory:
		return decodeTyped[[]string](raw)
	case KeyBackups:
		return decodeTyped[[]model.Backup](raw)
	case KeyMigrationLog:
		return decodeTyped[[]model.MigrationLogEntry](raw)
	case KeyKeybindings:
		return decodeTyped[map[string][]string](raw)
	}
	return decodeTyped[json.RawMessage](raw)
}

func decodeTasks(raw []byte) (any, []schema.Warning, error) {
	tasks, warns, err := schema.DecodeTasks(raw)
	if err != nil {
		return nil, nil, err
	}
	return tasks, warns, nil
}

func decodeTyped[T any](raw []byte) (any, []schema.Warning, error) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, nil, err
	}
	return v, nil, nil
}

// encodeValue serializes a cache value for persistence.
func encodeValue(v any) ([]byte, error) {
	return json.Marshal(v)
}
