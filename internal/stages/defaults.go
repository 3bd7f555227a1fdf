package stages

import (
	"github.com/cleardeed/closing-service/internal/models"
)

// DefaultWorkflowOptions enables every non-optional stage plus the
// marketing-request stage, which every new closing file starts from.
func (r Registry) DefaultWorkflowOptions() models.WorkflowOptions {
	opts := make(models.WorkflowOptions)
	for _, s := range r {
		if !s.Optional || s.ID == StageMarketingRequest {
			opts[s.ID] = true
		}
	}
	return opts
}

// DefaultProgress creates a NotStarted entry for every enabled stage.
// Files created from a submitted marketing request have that stage
// pre-completed; the caller flips it.
func (r Registry) DefaultProgress(opts models.WorkflowOptions) models.ClosingProgress {
	progress := make(models.ClosingProgress)
	for _, s := range r {
		if opts[s.ID] {
			progress[s.ID] = models.ProgressItem{Status: models.StageStatusNotStarted}
		}
	}
	return progress
}

// DefaultVisibilitySettings makes every enabled stage visible to each
// configurable role group.
func DefaultVisibilitySettings(opts models.WorkflowOptions) models.RoleVisibilitySettings {
	visible := make(map[string]bool)
	for _, id := range EnabledIDs(opts) {
		visible[id] = true
	}
	settings := make(models.RoleVisibilitySettings, 3)
	for _, role := range []models.ConfigurableRole{
		models.ConfigurableRoleAgent,
		models.ConfigurableRoleBuyer,
		models.ConfigurableRoleSeller,
	} {
		m := make(map[string]bool, len(visible))
		for k, v := range visible {
			m[k] = v
		}
		settings[role] = m
	}
	return settings
}
