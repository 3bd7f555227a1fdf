package stages

import (
	"github.com/cleardeed/closing-service/internal/models"
)

// VisibleStages computes the ordered subset of stages the user may see
// on this property. Registry order is always preserved; filtering never
// reorders. An empty result is valid and callers must handle it.
//
// Rules, applied on top of the enabled-stage filter:
//   - Title Abstractor: only stages explicitly assigned to them.
//   - Roles in a configurable group (Agent/Buyer/Seller): filtered by
//     the property's visibility settings for that group, when present.
//   - Everyone else (title-company staff, unmapped roles): all enabled.
func (r Registry) VisibleStages(p *models.Property, u *models.User) []StageDefinition {
	enabled := make([]StageDefinition, 0, len(r))
	for _, s := range r {
		if p.WorkflowOptions[s.ID] {
			enabled = append(enabled, s)
		}
	}

	if u.Role == models.RoleTitleAbstractor {
		out := enabled[:0]
		for _, s := range enabled {
			if item, ok := p.ClosingProgress[s.ID]; ok && item.AssignedTo != nil && *item.AssignedTo == u.ID {
				out = append(out, s)
			}
		}
		return out
	}

	if group, ok := u.Role.VisibilityGroup(); ok {
		if flags, has := p.VisibilitySettings[group]; has {
			out := enabled[:0]
			for _, s := range enabled {
				if flags[s.ID] {
					out = append(out, s)
				}
			}
			return out
		}
	}

	return enabled
}

// IsVisible reports whether a single stage is in the user's visible set.
func (r Registry) IsVisible(p *models.Property, u *models.User, stageID string) bool {
	for _, s := range r.VisibleStages(p, u) {
		if s.ID == stageID {
			return true
		}
	}
	return false
}
