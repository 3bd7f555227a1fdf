package models

import (
	"time"

	"github.com/google/uuid"
)

type OutboxStatusType string

const (
	OutboxStatusPending OutboxStatusType = "PENDING"
	OutboxStatusDone    OutboxStatusType = "DONE"
	OutboxStatusFailed  OutboxStatusType = "FAILED"
)

// PermissionSyncTask is one enqueued grant/revoke intent produced by a
// workflow-options change. Processing is best-effort: a task that keeps
// failing is marked FAILED and left for diagnostics, never surfaced to
// the save path that created it.
type PermissionSyncTask struct {
	ID          uuid.UUID        `json:"id"`
	PropertyID  uuid.UUID        `json:"property_id"`
	StageID     string           `json:"stage_id"`
	Granted     bool             `json:"granted"`
	Status      OutboxStatusType `json:"status"`
	Attempts    int              `json:"attempts"`
	LastError   *string          `json:"last_error,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	ProcessedAt *time.Time       `json:"processed_at,omitempty"`
}
