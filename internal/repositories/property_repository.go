package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"github.com/cleardeed/closing-service/internal/models"
)

/* ------------------------------------------------------------------
   Public interface
------------------------------------------------------------------ */

type PropertyRepository interface {
	Create(ctx context.Context, p *models.Property) error

	GetByID(ctx context.Context, id uuid.UUID) (*models.Property, error)
	ListActive(ctx context.Context) ([]*models.Property, error)

	UpdateIfVersion(ctx context.Context, p *models.Property, expected int64) (pgconn.CommandTag, error)
	UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Property) error) error
	Archive(ctx context.Context, id uuid.UUID) error
}

/* ------------------------------------------------------------------
   Implementation
------------------------------------------------------------------ */

type propertyRepo struct {
	*BaseVersionedRepo[*models.Property]
	db DB
}

func NewPropertyRepository(db DB) PropertyRepository {
	r := &propertyRepo{db: db}
	selectStmt := baseSelectProperty() + " WHERE id=$1"
	r.BaseVersionedRepo = NewBaseRepo(db, selectStmt, scanProperty)
	return r
}

func baseSelectProperty() string {
	return `
        SELECT id, address, city, state, zip_code, status, archived,
               title_search_id, owners, apn,
               workflow_options, closing_progress, visibility_settings,
               created_at, updated_at, row_version
        FROM properties
    `
}

func scanProperty(row pgx.Row) (*models.Property, error) {
	var (
		p          models.Property
		optionsRaw []byte
		progRaw    []byte
		visRaw     []byte
	)
	err := row.Scan(
		&p.ID, &p.Address, &p.City, &p.State, &p.ZipCode, &p.Status, &p.Archived,
		&p.TitleSearchID, &p.Owners, &p.APN,
		&optionsRaw, &progRaw, &visRaw,
		&p.CreatedAt, &p.UpdatedAt, &p.RowVersion,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(optionsRaw, &p.WorkflowOptions); err != nil {
		return nil, fmt.Errorf("bad workflow_options json for %s: %w", p.ID, err)
	}
	if err := json.Unmarshal(progRaw, &p.ClosingProgress); err != nil {
		return nil, fmt.Errorf("bad closing_progress json for %s: %w", p.ID, err)
	}
	if err := json.Unmarshal(visRaw, &p.VisibilitySettings); err != nil {
		return nil, fmt.Errorf("bad visibility_settings json for %s: %w", p.ID, err)
	}
	return &p, nil
}

func marshalMaps(p *models.Property) (options, progress, visibility []byte, err error) {
	if options, err = json.Marshal(p.WorkflowOptions); err != nil {
		return
	}
	if progress, err = json.Marshal(p.ClosingProgress); err != nil {
		return
	}
	visibility, err = json.Marshal(p.VisibilitySettings)
	return
}

func (r *propertyRepo) Create(ctx context.Context, p *models.Property) error {
	options, progress, visibility, err := marshalMaps(p)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `
        INSERT INTO properties (
            id, address, city, state, zip_code, status, archived,
            title_search_id, owners, apn,
            workflow_options, closing_progress, visibility_settings,
            created_at, updated_at, row_version
        ) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13, NOW(), NOW(), 1)
    `,
		p.ID,
		p.Address,
		p.City,
		p.State,
		p.ZipCode,
		p.Status,
		p.Archived,
		p.TitleSearchID,
		p.Owners,
		p.APN,
		options,
		progress,
		visibility,
	)
	return err
}

func (r *propertyRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	p, err := r.BaseVersionedRepo.GetByID(ctx, id.String())
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

func (r *propertyRepo) ListActive(ctx context.Context) ([]*models.Property, error) {
	rows, err := r.db.Query(ctx, baseSelectProperty()+" WHERE archived=false ORDER BY created_at")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Property
	for rows.Next() {
		p, err := scanProperty(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *propertyRepo) UpdateIfVersion(ctx context.Context, p *models.Property, expected int64) (pgconn.CommandTag, error) {
	options, progress, visibility, err := marshalMaps(p)
	if err != nil {
		return nil, err
	}

	return r.db.Exec(ctx, `
        UPDATE properties SET
            address=$1, city=$2, state=$3, zip_code=$4, status=$5, archived=$6,
            title_search_id=$7, owners=$8, apn=$9,
            workflow_options=$10, closing_progress=$11, visibility_settings=$12,
            updated_at=NOW(), row_version=row_version+1
        WHERE id=$13 AND row_version=$14
    `,
		p.Address, p.City, p.State, p.ZipCode, p.Status, p.Archived,
		p.TitleSearchID, p.Owners, p.APN,
		options, progress, visibility,
		p.ID, expected,
	)
}

func (r *propertyRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Property) error) error {
	return r.BaseVersionedRepo.UpdateWithRetry(ctx, id.String(), mutate, r.UpdateIfVersion)
}

func (r *propertyRepo) Archive(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `UPDATE properties SET archived=true, updated_at=NOW() WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
