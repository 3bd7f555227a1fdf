package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleardeed/closing-service/internal/dtos"
	"github.com/cleardeed/closing-service/internal/middleware"
	"github.com/cleardeed/closing-service/internal/models"
	"github.com/cleardeed/closing-service/internal/routes"
	"github.com/cleardeed/closing-service/internal/services"
	"github.com/cleardeed/closing-service/internal/stages"
)

/* ------------------------------------------------------------------
   Minimal in-memory stores for handler tests
------------------------------------------------------------------ */

type memPropertyRepo struct {
	mu    sync.Mutex
	props map[uuid.UUID]*models.Property
}

func (r *memPropertyRepo) Create(_ context.Context, p *models.Property) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.props[p.ID] = p.Clone()
	return nil
}

func (r *memPropertyRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Property, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.props[id]
	if !ok {
		return nil, nil
	}
	return p.Clone(), nil
}

func (r *memPropertyRepo) ListActive(_ context.Context) ([]*models.Property, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Property
	for _, p := range r.props {
		if !p.Archived {
			out = append(out, p.Clone())
		}
	}
	return out, nil
}

func (r *memPropertyRepo) UpdateIfVersion(_ context.Context, p *models.Property, _ int64) (pgconn.CommandTag, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.props[p.ID] = p.Clone()
	return pgconn.CommandTag("UPDATE 1"), nil
}

func (r *memPropertyRepo) UpdateWithRetry(_ context.Context, id uuid.UUID, mutate func(*models.Property) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.props[id]
	if !ok {
		return pgx.ErrNoRows
	}
	cur := p.Clone()
	if err := mutate(cur); err != nil {
		return err
	}
	r.props[id] = cur.Clone()
	return nil
}

func (r *memPropertyRepo) Archive(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.props[id]; ok {
		p.Archived = true
	}
	return nil
}

type memUserRepo struct {
	users map[uuid.UUID]*models.User
}

func (r *memUserRepo) Create(_ context.Context, u *models.User) error {
	r.users[u.ID] = u
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	return r.users[id], nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

type memOutboxRepo struct {
	tasks []*models.PermissionSyncTask
}

func (r *memOutboxRepo) Enqueue(_ context.Context, task *models.PermissionSyncTask) error {
	task.Status = models.OutboxStatusPending
	r.tasks = append(r.tasks, task)
	return nil
}

func (r *memOutboxRepo) ListPending(_ context.Context, limit int) ([]*models.PermissionSyncTask, error) {
	return nil, nil
}

func (r *memOutboxRepo) MarkDone(_ context.Context, id uuid.UUID) error { return nil }

func (r *memOutboxRepo) MarkFailedAttempt(_ context.Context, id uuid.UUID, attemptErr string, final bool) error {
	return nil
}

type noopTitleSearchClient struct{}

func (noopTitleSearchClient) GetTitleSearchOrder(_ context.Context, _ string) (*models.TitleSearchOrder, error) {
	return nil, nil
}

/* ------------------------------------------------------------------
   Fixture: router with the workflow routes and a context-injecting
   stand-in for the auth middleware
------------------------------------------------------------------ */

type handlerFixture struct {
	router   *mux.Router
	admin    *models.User
	property *models.Property
	outbox   *memOutboxRepo
}

func newHandlerFixture(t *testing.T) *handlerFixture {
	t.Helper()

	registry := stages.Registry{
		{ID: "A", Title: "Stage A", Optional: false},
		{ID: "B", Title: "Stage B", Optional: true},
	}

	adminUser := &models.User{ID: uuid.New(), Name: "admin", Role: models.RoleTitleAdmin}
	userRepo := &memUserRepo{users: map[uuid.UUID]*models.User{adminUser.ID: adminUser}}

	property := &models.Property{
		ID:     uuid.New(),
		Status: models.PropertyStatusInProgress,
		WorkflowOptions: models.WorkflowOptions{
			"A": true, "B": true,
		},
		ClosingProgress: models.ClosingProgress{
			"A": {Status: models.StageStatusNotStarted},
			"B": {Status: models.StageStatusNotStarted},
		},
		VisibilitySettings: models.RoleVisibilitySettings{},
	}
	propRepo := &memPropertyRepo{props: map[uuid.UUID]*models.Property{property.ID: property.Clone()}}

	outbox := &memOutboxRepo{}
	svc := services.NewClosingService(registry, propRepo, userRepo, outbox, noopTitleSearchClient{})
	ctrl := NewWorkflowController(svc, userRepo)

	router := mux.NewRouter()
	router.HandleFunc(routes.PropertyStages, ctrl.StageBoardHandler).Methods(http.MethodGet)
	router.HandleFunc(routes.PropertyStageStart, ctrl.StartStageHandler).Methods(http.MethodPost)
	router.HandleFunc(routes.PropertyStageAdvance, ctrl.AdvanceStageHandler).Methods(http.MethodPost)
	router.HandleFunc(routes.PropertyWorkflowOptions, ctrl.SetWorkflowOptionsHandler).Methods(http.MethodPut)

	return &handlerFixture{
		router:   router,
		admin:    adminUser,
		property: property,
		outbox:   outbox,
	}
}

// do runs a request with the subject claim pre-injected, the way the
// auth middleware would after verifying a token.
func (f *handlerFixture) do(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	ctx := context.WithValue(req.Context(), middleware.ContextKeyUserID, f.admin.ID.String())
	ctx = context.WithValue(ctx, middleware.ContextKeyRole, f.admin.Role)

	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req.WithContext(ctx))
	return rec
}

/* ------------------------------------------------------------------
   Tests
------------------------------------------------------------------ */

func TestStageBoardHandler(t *testing.T) {
	f := newHandlerFixture(t)

	rec := f.do(http.MethodGet, "/api/v1/properties/"+f.property.ID.String()+"/stages", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var board dtos.StageBoardResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &board))
	assert.Equal(t, f.property.ID, board.PropertyID)
	require.Len(t, board.Stages, 2)
	assert.Equal(t, "A", board.ActiveStageID)
}

func TestStageBoardHandlerUnknownProperty(t *testing.T) {
	f := newHandlerFixture(t)

	rec := f.do(http.MethodGet, "/api/v1/properties/"+uuid.NewString()+"/stages", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStageBoardHandlerBadPropertyID(t *testing.T) {
	f := newHandlerFixture(t)

	rec := f.do(http.MethodGet, "/api/v1/properties/not-a-uuid/stages", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStageBoardHandlerNoUserInContext(t *testing.T) {
	f := newHandlerFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/properties/"+f.property.ID.String()+"/stages", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestStartStageHandler(t *testing.T) {
	f := newHandlerFixture(t)

	rec := f.do(http.MethodPost, "/api/v1/properties/"+f.property.ID.String()+"/stages/start",
		dtos.StartStageRequest{StageID: "A"})
	require.Equal(t, http.StatusOK, rec.Code)

	var board dtos.StageBoardResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &board))
	assert.Equal(t, models.StageStatusInProgress, board.Stages[0].Status)
}

func TestStartStageHandlerValidation(t *testing.T) {
	f := newHandlerFixture(t)

	rec := f.do(http.MethodPost, "/api/v1/properties/"+f.property.ID.String()+"/stages/start",
		dtos.StartStageRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdvanceStageHandler(t *testing.T) {
	f := newHandlerFixture(t)

	owners := "Jane Roe"
	rec := f.do(http.MethodPost, "/api/v1/properties/"+f.property.ID.String()+"/stages/advance",
		dtos.AdvanceStageRequest{
			CurrentStageID: "A",
			Updates:        dtos.PropertyUpdates{Owners: &owners},
		})
	require.Equal(t, http.StatusOK, rec.Code)

	var board dtos.StageBoardResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &board))
	assert.Equal(t, "B", board.ActiveStageID)
	assert.Equal(t, models.StageStatusCompleted, board.Stages[0].Status)
	assert.Equal(t, models.StageStatusInProgress, board.Stages[1].Status)
}

func TestAdvanceStageHandlerUnknownProperty(t *testing.T) {
	f := newHandlerFixture(t)

	rec := f.do(http.MethodPost, "/api/v1/properties/"+uuid.NewString()+"/stages/advance",
		dtos.AdvanceStageRequest{CurrentStageID: "A"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSetWorkflowOptionsHandler(t *testing.T) {
	f := newHandlerFixture(t)

	rec := f.do(http.MethodPut, "/api/v1/properties/"+f.property.ID.String()+"/workflow-options",
		dtos.WorkflowOptionsRequest{Options: models.WorkflowOptions{"A": true, "B": false}})
	require.Equal(t, http.StatusOK, rec.Code)

	var dto dtos.PropertyDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dto))
	assert.False(t, dto.WorkflowOptions["B"])

	require.Len(t, f.outbox.tasks, 1)
	assert.Equal(t, "B", f.outbox.tasks[0].StageID)
	assert.False(t, f.outbox.tasks[0].Granted)
}
