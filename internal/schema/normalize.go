package schema

import (
	"encoding/json"
	"fmt"
	"regexp"
	"time"

	"github.com/bharathvbcr/liquitask/internal/model"
)

var colorPattern = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// normalizer walks a decoded JSON document and produces model records
// with every declared field present, defaulted, and type-correct.
//
// In strict mode constraint violations accumulate as FieldErrors. In
// lenient mode (store read path) they degrade to Warnings and defaults,
// because a corrupt stored record must never abort a session load.
type normalizer struct {
	now     func() time.Time
	lenient bool
	errs    []FieldError
	warns   []Warning
}

func newNormalizer(now func() time.Time, lenient bool) *normalizer {
	if now == nil {
		now = time.Now
	}
	return &normalizer{now: now, lenient: lenient}
}

func (n *normalizer) fail(path, reason string) {
	if n.lenient {
		n.warns = append(n.warns, Warning{Path: path, Reason: reason})
		return
	}
	n.errs = append(n.errs, FieldError{Path: path, Reason: reason})
}

func (n *normalizer) warn(path, reason string) {
	n.warns = append(n.warns, Warning{Path: path, Reason: reason})
}

// snapshot normalizes a full document. Absent collections default to
// empty; absent scalars default to their zero-config values.
func (n *normalizer) snapshot(m map[string]any) model.Snapshot {
	snap := model.Snapshot{
		Columns:      n.columnList("columns", m["columns"]),
		ProjectTypes: n.projectTypeList("projectTypes", m["projectTypes"]),
		Priorities:   n.priorityList("priorities", m["priorities"]),
		CustomFields: n.customFieldList("customFields", m["customFields"]),
		Projects:     n.projectList("projects", m["projects"]),
		Tasks:        n.taskList("tasks", m["tasks"]),
	}
	snap.ActiveProjectID = n.optString("activeProjectId", m["activeProjectId"], "")
	snap.SidebarCollapsed = n.optBool("sidebarCollapsed", m["sidebarCollapsed"], false)
	snap.Grouping = n.optString("grouping", m["grouping"], "status")

	version := n.optString("schemaVersion", m["schemaVersion"], "")
	if version == "" {
		version = n.optString("version", m["version"], model.CurrentSchemaVersion)
	}
	snap.SchemaVersion = version
	return snap
}

func (n *normalizer) taskList(path string, v any) []model.Task {
	items, ok := n.list(path, v)
	if !ok {
		return []model.Task{}
	}
	tasks := make([]model.Task, 0, len(items))
	for i, item := range items {
		if t, ok := n.task(fmt.Sprintf("%s.%d", path, i), item); ok {
			tasks = append(tasks, t)
		}
	}
	return tasks
}

func (n *normalizer) task(path string, v any) (model.Task, bool) {
	m, ok := asMap(v)
	if !ok {
		n.fail(path, "must be an object")
		return model.Task{}, false
	}

	t := model.Task{
		ID:          n.requiredString(path+".id", m["id"]),
		JobID:       n.optString(path+".jobId", m["jobId"], ""),
		ProjectID:   n.optString(path+".projectId", m["projectId"], ""),
		Title:       n.requiredString(path+".title", m["title"]),
		Description: n.optString(path+".description", m["description"], ""),
		Status:      n.optString(path+".status", m["status"], ""),
		Priority:    n.optString(path+".priority", m["priority"], model.PriorityMedium),
	}

	t.CreatedAt = n.requiredTime(path+".createdAt", m["createdAt"])
	t.UpdatedAt = n.optionalTime(path+".updatedAt", m["updatedAt"])
	t.DueDate = n.optionalTime(path+".dueDate", m["dueDate"])
	t.CompletedAt = n.optionalTime(path+".completedAt", m["completedAt"])

	t.Subtasks = n.subtaskList(path+".subtasks", m["subtasks"])
	t.Attachments = n.attachmentList(path+".attachments", m["attachments"])
	t.LinkedTasks = n.linkList(path+".linkedTasks", m["linkedTasks"])
	t.Tags = n.stringList(path+".tags", m["tags"])
	t.DependsOn = n.stringList(path+".dependsOn", m["dependsOn"])

	t.EstimatedHours = n.optFloat(path+".estimatedHours", m["estimatedHours"], 0)
	t.ActualHours = n.optFloat(path+".actualHours", m["actualHours"], 0)

	if r, ok := m["recurrence"]; ok && r != nil {
		t.Recurrence = n.recurrence(path+".recurrence", r)
	}
	t.ErrorLog = n.errorLogList(path+".errorLog", m["errorLog"])

	return t, true
}

func (n *normalizer) subtaskList(path string, v any) []model.Subtask {
	items, ok := n.list(path, v)
	if !ok {
		return []model.Subtask{}
	}
	subs := make([]model.Subtask, 0, len(items))
	for i, item := range items {
		p := fmt.Sprintf("%s.%d", path, i)
		m, ok := asMap(item)
		if !ok {
			n.fail(p, "must be an object")
			continue
		}
		subs = append(subs, model.Subtask{
			ID:        n.requiredString(p+".id", m["id"]),
			Title:     n.requiredString(p+".title", m["title"]),
			Completed: n.optBool(p+".completed", m["completed"], false),
		})
	}
	return subs
}

func (n *normalizer) attachmentList(path string, v any) []model.Attachment {
	items, ok := n.list(path, v)
	if !ok {
		return []model.Attachment{}
	}
	atts := make([]model.Attachment, 0, len(items))
	for i, item := range items {
		p := fmt.Sprintf("%s.%d", path, i)
		m, ok := asMap(item)
		if !ok {
			n.fail(p, "must be an object")
			continue
		}
		atts = append(atts, model.Attachment{
			ID:   n.requiredString(p+".id", m["id"]),
			Name: n.requiredString(p+".name", m["name"]),
			Path: n.optString(p+".path", m["path"], ""),
			Size: int64(n.optFloat(p+".size", m["size"], 0)),
		})
	}
	return atts
}

func (n *normalizer) linkList(path string, v any) []model.TaskLink {
	items, ok := n.list(path, v)
	if !ok {
		return []model.TaskLink{}
	}
	links := make([]model.TaskLink, 0, len(items))
	for i, item := range items {
		p := fmt.Sprintf("%s.%d", path, i)
		m, ok := asMap(item)
		if !ok {
			n.fail(p, "must be an object")
			continue
		}
		link := model.TaskLink{
			TaskID: n.requiredString(p+".taskId", m["taskId"]),
			Type:   model.LinkType(n.requiredString(p+".type", m["type"])),
		}
		if link.Type != "" && !model.ValidLinkTypes[link.Type] {
			n.fail(p+".type", fmt.Sprintf("unknown link type %q", link.Type))
			continue
		}
		links = append(links, link)
	}
	return links
}

func (n *normalizer) recurrence(path string, v any) *model.RecurrenceRule {
	m, ok := asMap(v)
	if !ok {
		n.fail(path, "must be an object")
		return nil
	}
	r := &model.RecurrenceRule{
		Frequency: n.requiredString(path+".frequency", m["frequency"]),
		Interval:  n.optInt(path+".interval", m["interval"], 1),
	}
	switch r.Frequency {
	case "daily", "weekly", "monthly", "":
	default:
		n.fail(path+".frequency", fmt.Sprintf("unknown frequency %q", r.Frequency))
	}
	if r.Interval <= 0 {
		n.fail(path+".interval", "must be a positive integer")
		r.Interval = 1
	}
	r.EndDate = n.optionalTime(path+".endDate", m["endDate"])
	r.NextOccurrence = n.optionalTime(path+".nextOccurrence", m["nextOccurrence"])
	return r
}

func (n *normalizer) errorLogList(path string, v any) []model.ErrorLogEntry {
	items, ok := n.list(path, v)
	if !ok || len(items) == 0 {
		return nil
	}
	entries := make([]model.ErrorLogEntry, 0, len(items))
	for i, item := range items {
		p := fmt.Sprintf("%s.%d", path, i)
		m, ok := asMap(item)
		if !ok {
			n.fail(p, "must be an object")
			continue
		}
		entries = append(entries, model.ErrorLogEntry{
			Timestamp: n.requiredTime(p+".timestamp", m["timestamp"]),
			Message:   n.optString(p+".message", m["message"], ""),
		})
	}
	return entries
}

func (n *normalizer) columnList(path string, v any) []model.BoardColumn {
	items, ok := n.list(path, v)
	if !ok {
		return []model.BoardColumn{}
	}
	cols := make([]model.BoardColumn, 0, len(items))
	for i, item := range items {
		p := fmt.Sprintf("%s.%d", path, i)
		m, ok := asMap(item)
		if !ok {
			n.fail(p, "must be an object")
			continue
		}
		col := model.BoardColumn{
			ID:       n.requiredString(p+".id", m["id"]),
			Title:    n.requiredString(p+".title", m["title"]),
			Color:    n.color(p+".color", m["color"]),
			WIPLimit: n.optInt(p+".wipLimit", m["wipLimit"], 0),
			Terminal: n.optBool(p+".terminal", m["terminal"], false),
		}
		if col.WIPLimit < 0 {
			n.fail(p+".wipLimit", "must be a non-negative integer")
			col.WIPLimit = 0
		}
		cols = append(cols, col)
	}
	return cols
}

func (n *normalizer) priorityList(path string, v any) []model.PriorityDefinition {
	items, ok := n.list(path, v)
	if !ok {
		return []model.PriorityDefinition{}
	}
	prios := make([]model.PriorityDefinition, 0, len(items))
	for i, item := range items {
		p := fmt.Sprintf("%s.%d", path, i)
		m, ok := asMap(item)
		if !ok {
			n.fail(p, "must be an object")
			continue
		}
		prio := model.PriorityDefinition{
			ID:    n.requiredString(p+".id", m["id"]),
			Name:  n.requiredString(p+".name", m["name"]),
			Color: n.color(p+".color", m["color"]),
			Level: n.optInt(p+".level", m["level"], 1),
		}
		if prio.Level <= 0 {
			n.fail(p+".level", "must be a positive integer")
			prio.Level = 1
		}
		prios = append(prios, prio)
	}
	return prios
}

func (n *normalizer) projectTypeList(path string, v any) []model.ProjectType {
	items, ok := n.list(path, v)
	if !ok {
		return []model.ProjectType{}
	}
	types := make([]model.ProjectType, 0, len(items))
	for i, item := range items {
		p := fmt.Sprintf("%s.%d", path, i)
		m, ok := asMap(item)
		if !ok {
			n.fail(p, "must be an object")
			continue
		}
		types = append(types, model.ProjectType{
			ID:    n.requiredString(p+".id", m["id"]),
			Name:  n.requiredString(p+".name", m["name"]),
			Color: n.color(p+".color", m["color"]),
		})
	}
	return types
}

func (n *normalizer) customFieldList(path string, v any) []model.CustomFieldDef {
	items, ok := n.list(path, v)
	if !ok {
		return []model.CustomFieldDef{}
	}
	fields := make([]model.CustomFieldDef, 0, len(items))
	for i, item := range items {
		p := fmt.Sprintf("%s.%d", path, i)
		m, ok := asMap(item)
		if !ok {
			n.fail(p, "must be an object")
			continue
		}
		f := model.CustomFieldDef{
			ID:      n.requiredString(p+".id", m["id"]),
			Name:    n.requiredString(p+".name", m["name"]),
			Type:    model.FieldType(n.requiredString(p+".type", m["type"])),
			Options: n.stringList(p+".options", m["options"]),
		}
		if f.Type != "" && !model.ValidFieldTypes[f.Type] {
			n.fail(p+".type", fmt.Sprintf("must be one of text, number, dropdown, url (got %q)", f.Type))
		}
		fields = append(fields, f)
	}
	return fields
}

func (n *normalizer) projectList(path string, v any) []model.Project {
	items, ok := n.list(path, v)
	if !ok {
		return []model.Project{}
	}
	projects := make([]model.Project, 0, len(items))
	for i, item := range items {
		p := fmt.Sprintf("%s.%d", path, i)
		m, ok := asMap(item)
		if !ok {
			n.fail(p, "must be an object")
			continue
		}
		projects = append(projects, model.Project{
			ID:     n.requiredString(p+".id", m["id"]),
			Name:   n.requiredString(p+".name", m["name"]),
			TypeID: n.optString(p+".typeId", m["typeId"], ""),
			Color:  n.color(p+".color", m["color"]),
		})
	}
	return projects
}

// templateList normalizes quick-entry task templates.
func (n *normalizer) templateList(path string, v any) []model.TaskTemplate {
	items, ok := n.list(path, v)
	if !ok {
		return []model.TaskTemplate{}
	}
	templates := make([]model.TaskTemplate, 0, len(items))
	for i, item := range items {
		p := fmt.Sprintf("%s.%d", path, i)
		m, ok := asMap(item)
		if !ok {
			n.fail(p, "must be an object")
			continue
		}
		templates = append(templates, model.TaskTemplate{
			ID:       n.requiredString(p+".id", m["id"]),
			Name:     n.requiredString(p+".name", m["name"]),
			Title:    n.requiredString(p+".title", m["title"]),
			Priority: n.optString(p+".priority", m["priority"], ""),
			Tags:     n.stringList(p+".tags", m["tags"]),
		})
	}
	return templates
}

// ---- field helpers ----

func asMap(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

// list returns the elements of a JSON array, tolerating absence.
func (n *normalizer) list(path string, v any) ([]any, bool) {
	if v == nil {
		return nil, true
	}
	items, ok := v.([]any)
	if !ok {
		n.fail(path, "must be an array")
		return nil, false
	}
	return items, true
}

func (n *normalizer) requiredString(path string, v any) string {
	if v == nil {
		n.fail(path, "is required")
		return ""
	}
	s, ok := v.(string)
	if !ok {
		n.fail(path, "must be a string")
		return ""
	}
	if s == "" {
		n.fail(path, "must not be empty")
	}
	return s
}

func (n *normalizer) optString(path string, v any, def string) string {
	if v == nil {
		return def
	}
	s, ok := v.(string)
	if !ok {
		n.fail(path, "must be a string")
		return def
	}
	return s
}

func (n *normalizer) optBool(path string, v any, def bool) bool {
	if v == nil {
		return def
	}
	b, ok := v.(bool)
	if !ok {
		n.fail(path, "must be a boolean")
		return def
	}
	return b
}

func (n *normalizer) optInt(path string, v any, def int) int {
	f, ok, valid := numberValue(v)
	if !valid {
		n.fail(path, "must be a number")
		return def
	}
	if !ok {
		return def
	}
	return int(f)
}

func (n *normalizer) optFloat(path string, v any, def float64) float64 {
	f, ok, valid := numberValue(v)
	if !valid {
		n.fail(path, "must be a number")
		return def
	}
	if !ok {
		return def
	}
	return f
}

// numberValue decodes a JSON number. Returns (value, present, valid).
func numberValue(v any) (float64, bool, bool) {
	switch x := v.(type) {
	case nil:
		return 0, false, true
	case float64:
		return x, true, true
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return 0, false, false
		}
		return f, true, true
	case int:
		return float64(x), true, true
	case int64:
		return float64(x), true, true
	}
	return 0, false, false
}

func (n *normalizer) stringList(path string, v any) []string {
	items, ok := n.list(path, v)
	if !ok {
		return []string{}
	}
	out := make([]string, 0, len(items))
	for i, item := range items {
		s, ok := item.(string)
		if !ok {
			n.fail(fmt.Sprintf("%s.%d", path, i), "must be a string")
			continue
		}
		out = append(out, s)
	}
	return out
}

func (n *normalizer) color(path string, v any) string {
	s := n.optString(path, v, "")
	if s == "" {
		return ""
	}
	if !colorPattern.MatchString(s) {
		n.fail(path, fmt.Sprintf("must be '#' followed by six hex digits (got %q)", s))
		return ""
	}
	return s
}

// requiredTime coerces a date-bearing field that must always carry a
// value (createdAt, error-log timestamps). Absent values silently default
// to now; present-but-unparsable values default to now WITH a warning,
// since the substitution changes the record's meaning.
func (n *normalizer) requiredTime(path string, v any) time.Time {
	if v == nil {
		return n.now()
	}
	if t, ok := CoerceTime(v); ok {
		return t
	}
	if isDateLike(v) {
		n.warn(path, fmt.Sprintf("unparsable date %v; replaced with current time", v))
	} else {
		n.fail(path, "must be a date string, epoch number, or date value")
	}
	return n.now()
}

// optionalTime coerces a nullable date field. Unparsable values fall back
// to now with a warning rather than failing validation.
func (n *normalizer) optionalTime(path string, v any) *time.Time {
	if v == nil {
		return nil
	}
	if t, ok := CoerceTime(v); ok {
		return &t
	}
	if isDateLike(v) {
		n.warn(path, fmt.Sprintf("unparsable date %v; replaced with current time", v))
	} else {
		n.fail(path, "must be a date string, epoch number, or date value")
	}
	t := n.now()
	return &t
}
