package stages

import (
	"sort"

	"github.com/cleardeed/closing-service/internal/models"
)

// ApplyWorkflowOptions merges newOptions into the property, forcing
// every non-optional stage id to true regardless of input, and creates
// a fresh NotStarted progress entry for each newly-enabled stage.
// Disabling a stage does not delete its history.
//
// The returned slice lists the stage ids whose enabled flag actually
// changed, in registry order; the caller uses it to enqueue
// permission-sync work.
func (r Registry) ApplyWorkflowOptions(p *models.Property, newOptions models.WorkflowOptions) (*models.Property, []string) {
	out := p.Clone()

	merged := make(models.WorkflowOptions, len(newOptions))
	for id, enabled := range newOptions {
		if _, known := r.Find(id); !known {
			// configuration error: silently skip unknown ids
			continue
		}
		merged[id] = enabled
	}
	for _, s := range r {
		if !s.Optional {
			merged[s.ID] = true
		}
	}

	var changed []string
	for _, s := range r {
		before := out.WorkflowOptions[s.ID]
		after := merged[s.ID]
		if before != after {
			changed = append(changed, s.ID)
		}
		if after {
			if _, ok := out.ClosingProgress[s.ID]; !ok {
				out.ClosingProgress[s.ID] = models.ProgressItem{Status: models.StageStatusNotStarted}
			}
		}
	}

	out.WorkflowOptions = merged
	return out, changed
}

// ApplyVisibilitySettings replaces the property's full visibility
// structure. No cross-validation against workflow options happens here;
// the enabled-stage filter in VisibleStages is what keeps a disabled
// stage from ever showing.
func ApplyVisibilitySettings(p *models.Property, settings models.RoleVisibilitySettings) *models.Property {
	out := p.Clone()
	out.VisibilitySettings = make(models.RoleVisibilitySettings, len(settings))
	for role, flags := range settings {
		m := make(map[string]bool, len(flags))
		for k, v := range flags {
			m[k] = v
		}
		out.VisibilitySettings[role] = m
	}
	return out
}

// CanToggleStage is the single place the "can't reconfigure mid-flight
// work" rule lives, callable from any presentation boundary. The data
// layer stays permissive: ApplyWorkflowOptions accepts the write even
// when this returns false.
func CanToggleStage(stage StageDefinition, progress models.ClosingProgress) bool {
	if !stage.Optional {
		return false
	}
	switch progress[stage.ID].Status {
	case models.StageStatusCompleted, models.StageStatusInProgress:
		return false
	}
	return true
}

// EnabledIDs returns the sorted ids currently enabled on the property.
// Used by default visibility-settings construction.
func EnabledIDs(opts models.WorkflowOptions) []string {
	ids := make([]string, 0, len(opts))
	for id, on := range opts {
		if on {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}
