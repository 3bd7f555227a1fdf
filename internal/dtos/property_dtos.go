package dtos

import (
	"time"

	"github.com/google/uuid"

	"github.com/cleardeed/closing-service/internal/models"
)

/*
CreatePropertyRequest opens a new closing file. Workflow options are
optional; non-optional stages are forced on server-side regardless of
what is sent.
*/
type CreatePropertyRequest struct {
	Address string `json:"address" validate:"required"`
	City    string `json:"city" validate:"required"`
	State   string `json:"state" validate:"required,len=2"`
	ZipCode string `json:"zip_code" validate:"required"`

	WorkflowOptions models.WorkflowOptions `json:"workflow_options,omitempty"`

	// Set when the file originates from a submitted marketing request;
	// that stage is then created pre-completed.
	MarketingRequestSubmitted bool    `json:"marketing_request_submitted"`
	TitleSearchID             *string `json:"title_search_id,omitempty"`
}

/*
PropertyUpdates carries the partial-merge data a step hands over when
advancing. Only non-nil fields are applied.
*/
type PropertyUpdates struct {
	Address *string                    `json:"address,omitempty"`
	Owners  *string                    `json:"owners,omitempty"`
	APN     *string                    `json:"apn,omitempty"`
	Status  *models.PropertyStatusType `json:"status,omitempty"`

	TitleSearchID *string `json:"title_search_id,omitempty"`
}

func (u PropertyUpdates) ApplyTo(p *models.Property) {
	if u.Address != nil {
		p.Address = *u.Address
	}
	if u.Owners != nil {
		p.Owners = *u.Owners
	}
	if u.APN != nil {
		p.APN = *u.APN
	}
	if u.Status != nil {
		p.Status = *u.Status
	}
	if u.TitleSearchID != nil {
		p.TitleSearchID = u.TitleSearchID
	}
}

/*
PropertyDTO is the response shape for a closing file.
*/
type PropertyDTO struct {
	ID       uuid.UUID                 `json:"id"`
	Address  string                    `json:"address"`
	City     string                    `json:"city"`
	State    string                    `json:"state"`
	ZipCode  string                    `json:"zip_code"`
	Status   models.PropertyStatusType `json:"status"`
	Archived bool                      `json:"archived"`

	TitleSearchID *string `json:"title_search_id,omitempty"`
	Owners        string  `json:"owners,omitempty"`
	APN           string  `json:"apn,omitempty"`

	WorkflowOptions    models.WorkflowOptions        `json:"workflow_options"`
	ClosingProgress    models.ClosingProgress        `json:"closing_progress"`
	VisibilitySettings models.RoleVisibilitySettings `json:"visibility_settings"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewPropertyDTO(p *models.Property) PropertyDTO {
	return PropertyDTO{
		ID:                 p.ID,
		Address:            p.Address,
		City:               p.City,
		State:              p.State,
		ZipCode:            p.ZipCode,
		Status:             p.Status,
		Archived:           p.Archived,
		TitleSearchID:      p.TitleSearchID,
		Owners:             p.Owners,
		APN:                p.APN,
		WorkflowOptions:    p.WorkflowOptions,
		ClosingProgress:    p.ClosingProgress,
		VisibilitySettings: p.VisibilitySettings,
		CreatedAt:          p.CreatedAt,
		UpdatedAt:          p.UpdatedAt,
	}
}
