package services

import (
	"context"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v4"

	"github.com/cleardeed/closing-service/internal/clients"
	"github.com/cleardeed/closing-service/internal/dtos"
	"github.com/cleardeed/closing-service/internal/models"
	"github.com/cleardeed/closing-service/internal/repositories"
	"github.com/cleardeed/closing-service/internal/stages"
	"github.com/cleardeed/closing-service/internal/utils"
)

// ClosingService owns the closing-file workflow: creation with default
// stage configuration, the advancement protocol, assignment, and
// workflow/visibility configuration with best-effort permission sync.
type ClosingService struct {
	registry   stages.Registry
	propRepo   repositories.PropertyRepository
	userRepo   repositories.UserRepository
	outboxRepo repositories.OutboxRepository
	tsClient   clients.TitleSearchClient
}

func NewClosingService(
	registry stages.Registry,
	propRepo repositories.PropertyRepository,
	userRepo repositories.UserRepository,
	outboxRepo repositories.OutboxRepository,
	tsClient clients.TitleSearchClient,
) *ClosingService {
	return &ClosingService{
		registry:   registry,
		propRepo:   propRepo,
		userRepo:   userRepo,
		outboxRepo: outboxRepo,
		tsClient:   tsClient,
	}
}

func (s *ClosingService) Registry() stages.Registry {
	return s.registry
}

/* ------------------------------------------------------------------
   Closing-file lifecycle
------------------------------------------------------------------ */

// CreateClosingFile builds a new property with the default workflow:
// every non-optional stage on, marketing request enabled, and — when
// the file originates from a submitted marketing request — that stage
// pre-completed. Caller-supplied options are merged on top with
// non-optional stages forced on.
func (s *ClosingService) CreateClosingFile(ctx context.Context, req dtos.CreatePropertyRequest) (*models.Property, error) {
	opts := s.registry.DefaultWorkflowOptions()
	for id, enabled := range req.WorkflowOptions {
		if _, known := s.registry.Find(id); known {
			opts[id] = enabled
		}
	}
	for _, stage := range s.registry {
		if !stage.Optional {
			opts[stage.ID] = true
		}
	}

	progress := s.registry.DefaultProgress(opts)
	status := models.PropertyStatusDraft
	if req.MarketingRequestSubmitted {
		progress[stages.StageMarketingRequest] = models.ProgressItem{Status: models.StageStatusCompleted}
		status = models.PropertyStatusInProgress
	}

	p := &models.Property{
		ID:                 uuid.New(),
		Address:            req.Address,
		City:               req.City,
		State:              req.State,
		ZipCode:            req.ZipCode,
		Status:             status,
		TitleSearchID:      req.TitleSearchID,
		WorkflowOptions:    opts,
		ClosingProgress:    progress,
		VisibilitySettings: stages.DefaultVisibilitySettings(opts),
	}

	if err := s.propRepo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *ClosingService) GetProperty(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	p, err := s.propRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, propertyNotFound()
	}
	return p, nil
}

func propertyNotFound() error {
	return &utils.AppError{
		StatusCode: http.StatusNotFound,
		Code:       utils.ErrCodeNotFound,
		Message:    "Property not found",
		Err:        utils.ErrPropertyNotFound,
	}
}

// mapUpdateErr translates retry-loop failures into the same AppErrors
// the read paths produce: missing row means 404, exhausted optimistic
// retries mean 409.
func mapUpdateErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return propertyNotFound()
	}
	if errors.Is(err, utils.ErrRowVersionConflict) {
		return &utils.AppError{
			StatusCode: http.StatusConflict,
			Code:       utils.ErrCodeRowVersionConflict,
			Message:    "Property was modified concurrently, retry the request",
			Err:        err,
		}
	}
	return err
}

func (s *ClosingService) ListProperties(ctx context.Context) ([]*models.Property, error) {
	return s.propRepo.ListActive(ctx)
}

// ArchiveProperty flags the file archived in place. Files are never
// structurally deleted.
func (s *ClosingService) ArchiveProperty(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetProperty(ctx, id); err != nil {
		return err
	}
	return s.propRepo.Archive(ctx, id)
}

/* ------------------------------------------------------------------
   Stage board / advancement protocol
------------------------------------------------------------------ */

// StageBoard assembles what the client renders for a property: the
// user's visible stages with progress, the derived active stage, and
// the dispatcher result for it.
func (s *ClosingService) StageBoard(ctx context.Context, propID uuid.UUID, user *models.User, currentSelection string) (*dtos.StageBoardResponse, error) {
	p, err := s.GetProperty(ctx, propID)
	if err != nil {
		return nil, err
	}
	return s.buildBoard(p, user, currentSelection), nil
}

func (s *ClosingService) buildBoard(p *models.Property, user *models.User, currentSelection string) *dtos.StageBoardResponse {
	visible := s.registry.VisibleStages(p, user)
	activeID := s.registry.ActiveStage(p, user, currentSelection)

	resp := &dtos.StageBoardResponse{
		PropertyID:    p.ID,
		ActiveStageID: activeID,
	}
	for _, stage := range visible {
		item := stages.Progress(p, stage.ID)
		resp.Stages = append(resp.Stages, dtos.StageStateDTO{
			ID:         stage.ID,
			Title:      stage.Title,
			Optional:   stage.Optional,
			Status:     item.Status,
			AssignedTo: item.AssignedTo,
			CanToggle:  stages.CanToggleStage(stage, p.ClosingProgress),
		})
	}
	if activeID != "" {
		content := s.registry.ContentFor(activeID, p, user.Role)
		resp.ActiveContent = &content
	}
	return resp
}

// StartStage moves a visible NotStarted stage to InProgress and makes
// it the selection. Already-started stages are left alone (idempotent,
// no status regression). When the started stage depends on the external
// title-search order, the order is hydrated lazily and merged
// best-effort; a fetch failure never fails the start.
func (s *ClosingService) StartStage(ctx context.Context, propID uuid.UUID, user *models.User, stageID string) (*dtos.StageBoardResponse, error) {
	var out *models.Property
	err := s.propRepo.UpdateWithRetry(ctx, propID, func(p *models.Property) error {
		updated := s.registry.StartStage(p, user, stageID)
		*p = *updated
		out = p
		return nil
	})
	if err != nil {
		return nil, mapUpdateErr(err)
	}

	if stageID == stages.StagePurchaseContract && out.TitleSearchID != nil {
		s.hydrateFromTitleSearch(ctx, out, user)
	}

	return s.buildBoard(out, user, stageID), nil
}

// hydrateFromTitleSearch merges order data into the property. Failures
// are logged, never surfaced: the stage has already started locally.
func (s *ClosingService) hydrateFromTitleSearch(ctx context.Context, p *models.Property, user *models.User) {
	order, err := s.tsClient.GetTitleSearchOrder(ctx, *p.TitleSearchID)
	if err != nil {
		utils.Logger.WithError(err).Warnf("Failed to refresh title search order %s", *p.TitleSearchID)
		return
	}
	if order == nil {
		return
	}

	err = s.propRepo.UpdateWithRetry(ctx, p.ID, func(cur *models.Property) error {
		if order.Owners != "" {
			cur.Owners = order.Owners
		}
		if order.APN != "" {
			cur.APN = order.APN
		}
		*p = *cur
		return nil
	})
	if err != nil {
		utils.Logger.WithError(err).Warnf("Failed to persist title search data for property %s", p.ID)
	}
}

// AdvanceStage runs the advancement protocol: complete the current
// stage, start the next visible one, merge the step's data updates, and
// make the next stage the active selection on the returned board.
// Advancing the last visible stage (or an unknown one) leaves the
// property unchanged; the caller gets the current board back and should
// re-render from it.
func (s *ClosingService) AdvanceStage(ctx context.Context, propID uuid.UUID, user *models.User, currentStageID string, updates dtos.PropertyUpdates) (*dtos.StageBoardResponse, error) {
	var (
		out    *models.Property
		nextID string
	)
	err := s.propRepo.UpdateWithRetry(ctx, propID, func(p *models.Property) error {
		updated, next := s.registry.AdvanceStage(p, user, currentStageID, func(cur *models.Property) {
			updates.ApplyTo(cur)
		})
		*p = *updated
		out = p
		nextID = next
		return nil
	})
	if err != nil {
		return nil, mapUpdateErr(err)
	}

	selection := currentStageID
	if nextID != "" {
		selection = nextID
	}
	return s.buildBoard(out, user, selection), nil
}

// AssignTask sets or clears a stage's assignee. Role checks live at the
// HTTP boundary.
func (s *ClosingService) AssignTask(ctx context.Context, propID uuid.UUID, stageID string, userID *uuid.UUID) (*models.Property, error) {
	if userID != nil {
		assignee, err := s.userRepo.GetByID(ctx, *userID)
		if err != nil {
			return nil, err
		}
		if assignee == nil {
			return nil, &utils.AppError{
				StatusCode: http.StatusNotFound,
				Code:       utils.ErrCodeNotFound,
				Message:    "Assignee not found",
				Err:        utils.ErrUserNotFound,
			}
		}
	}

	var out *models.Property
	err := s.propRepo.UpdateWithRetry(ctx, propID, func(p *models.Property) error {
		updated := stages.AssignTask(p, stageID, userID)
		*p = *updated
		out = p
		return nil
	})
	if err != nil {
		return nil, mapUpdateErr(err)
	}
	return out, nil
}

/* ------------------------------------------------------------------
   Workflow / visibility configuration
------------------------------------------------------------------ */

// SetWorkflowOptions persists the merged options (non-optional stages
// forced on) and enqueues a permission-sync task per changed stage id.
// The local save is the source of truth: enqueue failures are logged
// and swallowed, sync runs later and is advisory only.
func (s *ClosingService) SetWorkflowOptions(ctx context.Context, propID uuid.UUID, newOptions models.WorkflowOptions) (*models.Property, error) {
	var (
		out     *models.Property
		changed []string
	)
	err := s.propRepo.UpdateWithRetry(ctx, propID, func(p *models.Property) error {
		updated, diff := s.registry.ApplyWorkflowOptions(p, newOptions)
		*p = *updated
		out = p
		changed = diff
		return nil
	})
	if err != nil {
		return nil, mapUpdateErr(err)
	}

	for _, stageID := range changed {
		task := &models.PermissionSyncTask{
			ID:         uuid.New(),
			PropertyID: propID,
			StageID:    stageID,
			Granted:    out.WorkflowOptions[stageID],
		}
		if err := s.outboxRepo.Enqueue(ctx, task); err != nil {
			utils.Logger.WithError(err).Warnf("Failed to enqueue permission sync for stage %s", stageID)
		}
	}

	return out, nil
}

// SetVisibilitySettings replaces the property's full per-role
// visibility structure. No cross-validation against workflow options:
// the resolver's enabled-filter is what keeps disabled stages hidden.
func (s *ClosingService) SetVisibilitySettings(ctx context.Context, propID uuid.UUID, settings models.RoleVisibilitySettings) (*models.Property, error) {
	var out *models.Property
	err := s.propRepo.UpdateWithRetry(ctx, propID, func(p *models.Property) error {
		updated := stages.ApplyVisibilitySettings(p, settings)
		*p = *updated
		out = p
		return nil
	})
	if err != nil {
		return nil, mapUpdateErr(err)
	}
	return out, nil
}

/* ------------------------------------------------------------------
   Stage content
------------------------------------------------------------------ */

func (s *ClosingService) StageContent(ctx context.Context, propID uuid.UUID, user *models.User, stageID string) (*stages.StageContent, error) {
	p, err := s.GetProperty(ctx, propID)
	if err != nil {
		return nil, err
	}
	content := s.registry.ContentFor(stageID, p, user.Role)
	return &content, nil
}
