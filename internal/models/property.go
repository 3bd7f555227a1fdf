package models

import (
	"time"

	"github.com/google/uuid"
)

type StageStatusType string

const (
	StageStatusNotStarted StageStatusType = "NOT_STARTED"
	StageStatusInProgress StageStatusType = "IN_PROGRESS"
	StageStatusCompleted  StageStatusType = "COMPLETED"
)

// ProgressItem is one stage's progress entry on a closing file.
type ProgressItem struct {
	Status     StageStatusType `json:"status"`
	AssignedTo *uuid.UUID      `json:"assigned_to,omitempty"`
}

// ClosingProgress maps stage id -> progress. An entry exists for every
// stage currently enabled in WorkflowOptions; disabling a stage keeps
// its history around.
type ClosingProgress map[string]ProgressItem

// WorkflowOptions maps stage id -> enabled. Non-optional stages are
// forced true on every write path.
type WorkflowOptions map[string]bool

// RoleVisibilitySettings maps a configurable role group to its
// per-stage visibility flags. A stage absent from a group's map is not
// visible to that group.
type RoleVisibilitySettings map[ConfigurableRole]map[string]bool

type PropertyStatusType string

const (
	PropertyStatusDraft      PropertyStatusType = "DRAFT"
	PropertyStatusInProgress PropertyStatusType = "IN_PROGRESS"
	PropertyStatusClosed     PropertyStatusType = "CLOSED"
)

// Property is the closing-file aggregate. It exclusively owns its
// options/progress/visibility maps; those are only mutated through the
// stages package and persisted as JSONB.
type Property struct {
	Versioned

	ID       uuid.UUID          `json:"id"`
	Address  string             `json:"address"`
	City     string             `json:"city"`
	State    string             `json:"state"`
	ZipCode  string             `json:"zip_code"`
	Status   PropertyStatusType `json:"status"`
	Archived bool               `json:"archived"`

	// Join key into the external title-search service, set once an
	// order has been placed for this file.
	TitleSearchID *string `json:"title_search_id,omitempty"`

	Owners string `json:"owners,omitempty"`
	APN    string `json:"apn,omitempty"`

	WorkflowOptions    WorkflowOptions        `json:"workflow_options"`
	ClosingProgress    ClosingProgress        `json:"closing_progress"`
	VisibilitySettings RoleVisibilitySettings `json:"visibility_settings"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *Property) GetID() string {
	return p.ID.String()
}

// Clone deep-copies the aggregate so stage operations can return an
// updated value without aliasing the caller's maps.
func (p *Property) Clone() *Property {
	cp := *p

	cp.WorkflowOptions = make(WorkflowOptions, len(p.WorkflowOptions))
	for k, v := range p.WorkflowOptions {
		cp.WorkflowOptions[k] = v
	}
	cp.ClosingProgress = make(ClosingProgress, len(p.ClosingProgress))
	for k, v := range p.ClosingProgress {
		cp.ClosingProgress[k] = v
	}
	cp.VisibilitySettings = make(RoleVisibilitySettings, len(p.VisibilitySettings))
	for role, flags := range p.VisibilitySettings {
		m := make(map[string]bool, len(flags))
		for k, v := range flags {
			m[k] = v
		}
		cp.VisibilitySettings[role] = m
	}
	return &cp
}
