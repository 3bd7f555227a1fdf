package dtos

import (
	"github.com/google/uuid"

	"github.com/cleardeed/closing-service/internal/models"
	"github.com/cleardeed/closing-service/internal/stages"
)

/*
StageStateDTO is one visible stage on the board: definition, progress,
and whether its enabled flag may currently be toggled.
*/
type StageStateDTO struct {
	ID         string                 `json:"id"`
	Title      string                 `json:"title"`
	Optional   bool                   `json:"optional"`
	Status     models.StageStatusType `json:"status"`
	AssignedTo *uuid.UUID             `json:"assigned_to,omitempty"`
	CanToggle  bool                   `json:"can_toggle"`
}

/*
StageBoardResponse is what the client renders for a property: the
user's visible stages in canonical order, the derived active stage, and
the dispatcher result for it. Stages may be empty for users with
nothing visible.
*/
type StageBoardResponse struct {
	PropertyID    uuid.UUID            `json:"property_id"`
	Stages        []StageStateDTO      `json:"stages"`
	ActiveStageID string               `json:"active_stage_id,omitempty"`
	ActiveContent *stages.StageContent `json:"active_content,omitempty"`
}

type StartStageRequest struct {
	StageID string `json:"stage_id" validate:"required"`
	// Optional client-side selection, echoed into active-stage
	// derivation.
	CurrentSelection string `json:"current_selection,omitempty"`
}

type AdvanceStageRequest struct {
	CurrentStageID string          `json:"current_stage_id" validate:"required"`
	Updates        PropertyUpdates `json:"updates"`
}

type AssignTaskRequest struct {
	StageID string `json:"stage_id" validate:"required"`
	// Null clears the assignment.
	UserID *uuid.UUID `json:"user_id"`
}

type WorkflowOptionsRequest struct {
	Options models.WorkflowOptions `json:"options" validate:"required"`
}

type VisibilitySettingsRequest struct {
	Settings models.RoleVisibilitySettings `json:"settings" validate:"required"`
}
