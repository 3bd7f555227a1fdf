package services

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"

	"github.com/cleardeed/closing-service/internal/clients"
	"github.com/cleardeed/closing-service/internal/models"
)

/* ------------------------------------------------------------------
   In-memory fakes
------------------------------------------------------------------ */

type fakePropertyRepo struct {
	mu    sync.Mutex
	props map[uuid.UUID]*models.Property
}

func newFakePropertyRepo() *fakePropertyRepo {
	return &fakePropertyRepo{props: map[uuid.UUID]*models.Property{}}
}

func (r *fakePropertyRepo) Create(_ context.Context, p *models.Property) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.props[p.ID] = p.Clone()
	return nil
}

func (r *fakePropertyRepo) GetByID(_ context.Context, id uuid.UUID) (*models.Property, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.props[id]
	if !ok {
		return nil, nil
	}
	return p.Clone(), nil
}

func (r *fakePropertyRepo) ListActive(_ context.Context) ([]*models.Property, error) {
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

func (r *fakePropertyRepo) UpdateIfVersion(_ context.Context, p *models.Property, _ int64) (pgconn.CommandTag, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.props[p.ID] = p.Clone()
	return pgconn.CommandTag("UPDATE 1"), nil
}

func (r *fakePropertyRepo) UpdateWithRetry(ctx context.Context, id uuid.UUID, mutate func(*models.Property) error) error {
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

func (r *fakePropertyRepo) Archive(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.props[id]; ok {
		p.Archived = true
	}
	return nil
}

type fakeUserRepo struct {
	users map[uuid.UUID]*models.User
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	r := &fakeUserRepo{users: map[uuid.UUID]*models.User{}}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Create(_ context.Context, u *models.User) error {
	r.users[u.ID] = u
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	return r.users[id], nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

type fakeOutboxRepo struct {
	tasks      []*models.PermissionSyncTask
	enqueueErr error
}

func (r *fakeOutboxRepo) Enqueue(_ context.Context, task *models.PermissionSyncTask) error {
	if r.enqueueErr != nil {
		return r.enqueueErr
	}
	task.Status = models.OutboxStatusPending
	r.tasks = append(r.tasks, task)
	return nil
}

func (r *fakeOutboxRepo) ListPending(_ context.Context, limit int) ([]*models.PermissionSyncTask, error) {
	var out []*models.PermissionSyncTask
	for _, t := range r.tasks {
		if t.Status == models.OutboxStatusPending {
			out = append(out, t)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *fakeOutboxRepo) MarkDone(_ context.Context, id uuid.UUID) error {
	for _, t := range r.tasks {
		if t.ID == id {
			t.Status = models.OutboxStatusDone
		}
	}
	return nil
}

func (r *fakeOutboxRepo) MarkFailedAttempt(_ context.Context, id uuid.UUID, attemptErr string, final bool) error {
	for _, t := range r.tasks {
		if t.ID == id {
			t.Attempts++
			t.LastError = &attemptErr
			if final {
				t.Status = models.OutboxStatusFailed
			}
		}
	}
	return nil
}

func (r *fakeOutboxRepo) find(id uuid.UUID) *models.PermissionSyncTask {
	for _, t := range r.tasks {
		if t.ID == id {
			return t
		}
	}
	return nil
}

type fakeTitleSearchClient struct {
	order *models.TitleSearchOrder
	err   error
	calls int
}

func (c *fakeTitleSearchClient) GetTitleSearchOrder(_ context.Context, _ string) (*models.TitleSearchOrder, error) {
	c.calls++
	return c.order, c.err
}

type fakePermissionClient struct {
	tree      *models.PermissionTree
	listErr   error
	updateErr error

	listCalls int
	updates   []clients.UpdateUserTypePermissionRequest
}

func (c *fakePermissionClient) ListUserTypePermissions(_ context.Context, _ string) (*models.PermissionTree, error) {
	c.listCalls++
	if c.listErr != nil {
		return nil, c.listErr
	}
	return c.tree, nil
}

func (c *fakePermissionClient) UpdateUserTypePermissions(_ context.Context, req clients.UpdateUserTypePermissionRequest) error {
	if c.updateErr != nil {
		return c.updateErr
	}
	c.updates = append(c.updates, req)
	return nil
}
