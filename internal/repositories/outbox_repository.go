package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/cleardeed/closing-service/internal/models"
)

// OutboxRepository stores permission-sync intents. Enqueue happens in
// the same save path as the workflow-options write; a background drain
// picks pending tasks up later.
type OutboxRepository interface {
	Enqueue(ctx context.Context, task *models.PermissionSyncTask) error
	ListPending(ctx context.Context, limit int) ([]*models.PermissionSyncTask, error)
	MarkDone(ctx context.Context, id uuid.UUID) error
	MarkFailedAttempt(ctx context.Context, id uuid.UUID, attemptErr string, final bool) error
}

type outboxRepo struct {
	db DB
}

func NewOutboxRepository(db DB) OutboxRepository {
	return &outboxRepo{db: db}
}

func (r *outboxRepo) Enqueue(ctx context.Context, task *models.PermissionSyncTask) error {
	_, err := r.db.Exec(ctx, `
        INSERT INTO permission_sync_outbox (
            id, property_id, stage_id, granted, status, attempts, created_at
        ) VALUES ($1,$2,$3,$4,$5,0, NOW())
    `, task.ID, task.PropertyID, task.StageID, task.Granted, models.OutboxStatusPending)
	return err
}

func (r *outboxRepo) ListPending(ctx context.Context, limit int) ([]*models.PermissionSyncTask, error) {
	rows, err := r.db.Query(ctx, `
        SELECT id, property_id, stage_id, granted, status, attempts, last_error, created_at, processed_at
        FROM permission_sync_outbox
        WHERE status=$1
        ORDER BY created_at
        LIMIT $2
    `, models.OutboxStatusPending, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.PermissionSyncTask
	for rows.Next() {
		var t models.PermissionSyncTask
		if err := rows.Scan(
			&t.ID, &t.PropertyID, &t.StageID, &t.Granted, &t.Status,
			&t.Attempts, &t.LastError, &t.CreatedAt, &t.ProcessedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, &t)
	}
	return out, rows.Err()
}

func (r *outboxRepo) MarkDone(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.Exec(ctx, `
        UPDATE permission_sync_outbox
        SET status=$1, processed_at=$2
        WHERE id=$3
    `, models.OutboxStatusDone, time.Now().UTC(), id)
	return err
}

func (r *outboxRepo) MarkFailedAttempt(ctx context.Context, id uuid.UUID, attemptErr string, final bool) error {
	status := models.OutboxStatusPending
	if final {
		status = models.OutboxStatusFailed
	}
	_, err := r.db.Exec(ctx, `
        UPDATE permission_sync_outbox
        SET attempts=attempts+1, last_error=$1, status=$2
        WHERE id=$3
    `, attemptErr, status, id)
	return err
}
