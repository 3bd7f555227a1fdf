package stages

import (
	"github.com/google/uuid"

	"github.com/cleardeed/closing-service/internal/models"
)

// StartStage moves a visible stage to InProgress. Idempotent: a stage
// already InProgress or Completed keeps its status (no regression). A
// stage the user cannot see is a silent no-op.
func (r Registry) StartStage(p *models.Property, u *models.User, stageID string) *models.Property {
	if !r.IsVisible(p, u, stageID) {
		return p
	}
	if Progress(p, stageID).Status != models.StageStatusNotStarted {
		return p
	}
	return SetStatus(p, stageID, models.StageStatusInProgress)
}

// AdvanceStage is the only mechanism that moves the workflow forward:
// it completes the current stage, starts the next visible one, applies
// the optional property mutation carried along with the step's form
// data, and returns the id of the stage that became active. When
// currentStageID is the last visible stage or is not visible at all,
// the property is returned unchanged with an empty next id. Callers
// must re-render from the returned value rather than assume a
// transition happened.
func (r Registry) AdvanceStage(
	p *models.Property,
	u *models.User,
	currentStageID string,
	apply func(*models.Property),
) (*models.Property, string) {
	visible := r.VisibleStages(p, u)

	idx := -1
	for i, s := range visible {
		if s.ID == currentStageID {
			idx = i
			break
		}
	}
	if idx == -1 || idx == len(visible)-1 {
		return p, ""
	}

	out := p.Clone()
	if apply != nil {
		apply(out)
	}

	cur := Progress(out, currentStageID)
	cur.Status = models.StageStatusCompleted
	out.ClosingProgress[currentStageID] = cur

	nextID := visible[idx+1].ID
	next := Progress(out, nextID)
	next.Status = models.StageStatusInProgress
	out.ClosingProgress[nextID] = next

	return out, nextID
}

// AssignTask sets or clears a stage's assignee. Authorization (Title
// Admin / Title User only) is enforced at the HTTP boundary, not here.
func AssignTask(p *models.Property, stageID string, userID *uuid.UUID) *models.Property {
	return Assign(p, stageID, userID)
}

// ActiveStage derives the stage that should be selected for this
// property and user. If the current selection is still visible it is
// kept; otherwise the first InProgress stage wins, then the first
// NotStarted, then the first visible. Returns "" only when nothing is
// visible.
func (r Registry) ActiveStage(p *models.Property, u *models.User, current string) string {
	visible := r.VisibleStages(p, u)
	if len(visible) == 0 {
		return ""
	}

	for _, s := range visible {
		if s.ID == current {
			return current
		}
	}
	for _, s := range visible {
		if Progress(p, s.ID).Status == models.StageStatusInProgress {
			return s.ID
		}
	}
	for _, s := range visible {
		if Progress(p, s.ID).Status == models.StageStatusNotStarted {
			return s.ID
		}
	}
	return visible[0].ID
}
