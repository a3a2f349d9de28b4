package migrate

import (
	"strings"

	"github.com/bharathvbcr/liquitask/internal/model"
)

// Step transforms a snapshot from exactly one schema version to the
// next. Apply mutates the working copy owned by Run; it never sees the
// caller's snapshot or the backup.
type Step struct {
	From  string
	To    string
	Apply func(*model.Snapshot) error
}

// defaultSteps is the ordered upgrade chain. Each entry's To must equal
// the next entry's From; the last To is model.CurrentSchemaVersion.
func defaultSteps() []Step {
	return []Step{
		{From: "0.7.0", To: "0.8.0", Apply: stepIntroduceProjectTypes},
		{From: "0.8.0", To: "0.9.0", Apply: stepPriorityNamesToIDs},
		{From: "0.9.0", To: "1.0.0", Apply: stepDependsOnToLinks},
	}
}

// stepIntroduceProjectTypes seeds the project-type catalog added in
// 0.8.0 and backfills zero createdAt values left by pre-0.8 builds that
// did not require the field.
func stepIntroduceProjectTypes(snap *model.Snapshot) error {
	if len(snap.ProjectTypes) == 0 {
		snap.ProjectTypes = model.DefaultProjectTypes()
	}
	for i := range snap.Tasks {
		if snap.Tasks[i].CreatedAt.IsZero() {
			ref := snap.Tasks[i].UpdatedAt
			if ref == nil {
				ref = snap.Tasks[i].DueDate
			}
			if ref != nil {
				snap.Tasks[i].CreatedAt = *ref
			}
		}
	}
	return nil
}

// stepPriorityNamesToIDs rewrites task priorities from display names
// ("High") to priority ids ("high") and establishes the board grouping
// preference introduced in 0.9.0.
func stepPriorityNamesToIDs(snap *model.Snapshot) error {
	prios := snap.Priorities
	if len(prios) == 0 {
		prios = model.DefaultPriorities()
		snap.Priorities = prios
	}

	byName := make(map[string]string, len(prios))
	for _, p := range prios {
		byName[strings.ToLower(p.Name)] = p.ID
	}

	for i := range snap.Tasks {
		p := snap.Tasks[i].Priority
		if p == "" {
			snap.Tasks[i].Priority = model.PriorityMedium
			continue
		}
		if id, ok := byName[strings.ToLower(p)]; ok {
			snap.Tasks[i].Priority = id
		}
	}

	if snap.Grouping == "" {
		snap.Grouping = "status"
	}
	return nil
}

// stepDependsOnToLinks converts the legacy dependsOn id list into typed
// blocked-by links and clears the legacy field. Ids already present as
// blocked-by links are skipped so a re-run after a crash cannot
// duplicate edges.
func stepDependsOnToLinks(snap *model.Snapshot) error {
	for i := range snap.Tasks {
		t := &snap.Tasks[i]
		if len(t.DependsOn) == 0 {
			continue
		}
		existing := make(map[string]bool)
		for _, l := range t.LinkedTasks {
			if l.Type == model.LinkBlockedBy {
				existing[l.TaskID] = true
			}
		}
		for _, id := range t.DependsOn {
			if id == "" || existing[id] {
				continue
			}
			t.LinkedTasks = append(t.LinkedTasks, model.TaskLink{
				TaskID: id,
				Type:   model.LinkBlockedBy,
			})
			existing[id] = true
		}
		t.DependsOn = nil
	}
	return nil
}
