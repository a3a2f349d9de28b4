package model

// BoardColumn is one lane of the kanban board. Task.Status stores a
// column id. Terminal marks columns whose tasks count as finished for
// dependency gating (Done, Delivered).
type BoardColumn struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Color    string `json:"color"`
	WIPLimit int    `json:"wipLimit"`
	Terminal bool   `json:"terminal"`
}

// PriorityDefinition configures one priority level. Level orders
// priorities; higher means more urgent.
type PriorityDefinition struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
	Level int    `json:"level"`
}

// ProjectType tags a project with a workflow category.
type ProjectType struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// FieldType enumerates the supported custom field kinds.
type FieldType string

const (
	FieldText     FieldType = "text"
	FieldNumber   FieldType = "number"
	FieldDropdown FieldType = "dropdown"
	FieldURL      FieldType = "url"
)

// ValidFieldTypes defines the allowed custom field types.
var ValidFieldTypes = map[FieldType]bool{
	FieldText:     true,
	FieldNumber:   true,
	FieldDropdown: true,
	FieldURL:      true,
}

// CustomFieldDef declares a user-defined task field.
type CustomFieldDef struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Type    FieldType `json:"type"`
	Options []string  `json:"options"`
}

// Project groups tasks.
type Project struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	TypeID string `json:"typeId,omitempty"`
	Color  string `json:"color,omitempty"`
}

// TaskTemplate is a reusable partial task applied on quick entry.
type TaskTemplate struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Title    string   `json:"title"`
	Priority string   `json:"priority,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

// StatusDelivered is the legacy terminal status recognized even when no
// column with that id is configured. Pre-1.0 boards used it as a free
// string rather than a column reference.
const StatusDelivered = "Delivered"

// PriorityMedium is the default priority id for new tasks.
const PriorityMedium = "medium"

// DefaultColumns returns the seed board configuration for a fresh
// install. The first column is the initial column for new tasks.
func DefaultColumns() []BoardColumn {
	return []BoardColumn{
		{ID: "Backlog", Title: "Backlog", Color: "#6e7781", WIPLimit: 0},
		{ID: "InProgress", Title: "In Progress", Color: "#bf8700", WIPLimit: 3},
		{ID: "Review", Title: "Review", Color: "#8250df", WIPLimit: 0},
		{ID: "Done", Title: "Done", Color: "#1a7f37", WIPLimit: 0, Terminal: true},
		{ID: "Delivered", Title: "Delivered", Color: "#0969da", WIPLimit: 0, Terminal: true},
	}
}

// DefaultPriorities returns the seed priority scale.
func DefaultPriorities() []PriorityDefinition {
	return []PriorityDefinition{
		{ID: "low", Name: "Low", Color: "#6e7781", Level: 1},
		{ID: "medium", Name: "Medium", Color: "#bf8700", Level: 2},
		{ID: "high", Name: "High", Color: "#d1242f", Level: 3},
		{ID: "critical", Name: "Critical", Color: "#a40e26", Level: 4},
	}
}

// DefaultProjectTypes returns the seed project categories.
func DefaultProjectTypes() []ProjectType {
	return []ProjectType{
		{ID: "work", Name: "Work", Color: "#0969da"},
		{ID: "personal", Name: "Personal", Color: "#1a7f37"},
	}
}

// ColumnByID finds a column in a configured set.
func ColumnByID(columns []BoardColumn, id string) (BoardColumn, bool) {
	for _, c := range columns {
		if c.ID == id {
			return c, true
		}
	}
	return BoardColumn{}, false
}

// InitialColumnID returns the id of the first configured column, or the
// default backlog column when the board is empty.
func InitialColumnID(columns []BoardColumn) string {
	if len(columns) == 0 {
		return DefaultColumns()[0].ID
	}
	return columns[0].ID
}
