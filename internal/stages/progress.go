package stages

import (
	"github.com/google/uuid"

	"github.com/cleardeed/closing-service/internal/models"
)

// Progress returns the stage's progress entry, defaulting an absent
// entry to NotStarted/unassigned.
func Progress(p *models.Property, stageID string) models.ProgressItem {
	if item, ok := p.ClosingProgress[stageID]; ok {
		return item
	}
	return models.ProgressItem{Status: models.StageStatusNotStarted}
}

// SetStatus returns a copy of the property with the stage's status
// replaced. It does not validate the transition; that is the
// advancement protocol's job. Persistence is the caller's.
func SetStatus(p *models.Property, stageID string, status models.StageStatusType) *models.Property {
	out := p.Clone()
	item := Progress(out, stageID)
	item.Status = status
	out.ClosingProgress[stageID] = item
	return out
}

// Assign returns a copy with the stage's assignee replaced and the
// status untouched. A nil userID clears the assignment.
func Assign(p *models.Property, stageID string, userID *uuid.UUID) *models.Property {
	out := p.Clone()
	item := Progress(out, stageID)
	item.AssignedTo = userID
	out.ClosingProgress[stageID] = item
	return out
}
