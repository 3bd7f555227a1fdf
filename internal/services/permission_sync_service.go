package services

import (
	"context"
	"errors"

	"github.com/cleardeed/closing-service/internal/clients"
	"github.com/cleardeed/closing-service/internal/constants"
	"github.com/cleardeed/closing-service/internal/models"
	"github.com/cleardeed/closing-service/internal/repositories"
	"github.com/cleardeed/closing-service/internal/stages"
	"github.com/cleardeed/closing-service/internal/utils"
)

// errPermissionUnresolvable marks tree lookups that can never succeed
// (unknown stage, permission missing from the tree). Those tasks are
// completed with a log line instead of retrying forever.
var errPermissionUnresolvable = errors.New("permission_unresolvable")

// PermissionSyncService drains the permission-sync outbox: each task
// resolves its stage id to a permission in the external service's tree
// and fires grant/revoke calls for the configured user types. All of
// this is best-effort; nothing here ever propagates back to the save
// path that enqueued the work.
type PermissionSyncService struct {
	outboxRepo repositories.OutboxRepository
	permClient clients.PermissionClient
	treeCache  *PermissionTreeCache
}

func NewPermissionSyncService(
	outboxRepo repositories.OutboxRepository,
	permClient clients.PermissionClient,
	treeCache *PermissionTreeCache,
) *PermissionSyncService {
	return &PermissionSyncService{
		outboxRepo: outboxRepo,
		permClient: permClient,
		treeCache:  treeCache,
	}
}

// RunSyncPass processes one batch of pending tasks. Individual task
// failures are recorded on the task and do not stop the pass.
func (s *PermissionSyncService) RunSyncPass(ctx context.Context) error {
	tasks, err := s.outboxRepo.ListPending(ctx, constants.OutboxBatchSize)
	if err != nil {
		return err
	}

	for _, task := range tasks {
		if err := s.processTask(ctx, task); err != nil {
			if errors.Is(err, errPermissionUnresolvable) {
				// configuration gap, not a transient failure
				utils.Logger.Warnf("Permission sync skipped for stage %s: no resolvable permission", task.StageID)
				if mErr := s.outboxRepo.MarkDone(ctx, task.ID); mErr != nil {
					utils.Logger.WithError(mErr).Error("Failed to mark unresolvable sync task done")
				}
				continue
			}

			final := task.Attempts+1 >= constants.OutboxMaxAttempts
			utils.Logger.WithError(err).Warnf(
				"Permission sync attempt %d failed for stage %s (final=%v)",
				task.Attempts+1, task.StageID, final,
			)
			if mErr := s.outboxRepo.MarkFailedAttempt(ctx, task.ID, err.Error(), final); mErr != nil {
				utils.Logger.WithError(mErr).Error("Failed to record sync attempt")
			}
			continue
		}

		if err := s.outboxRepo.MarkDone(ctx, task.ID); err != nil {
			utils.Logger.WithError(err).Error("Failed to mark sync task done")
		}
	}
	return nil
}

func (s *PermissionSyncService) processTask(ctx context.Context, task *models.PermissionSyncTask) error {
	perm, err := s.resolvePermission(ctx, task.StageID)
	if err != nil {
		return err
	}

	var userTypePermID *int
	if perm.UserTypePermission != nil {
		id := perm.UserTypePermission.ID
		userTypePermID = &id
	}

	for _, userTypeID := range constants.PermissionSyncUserTypeIDs {
		req := clients.UpdateUserTypePermissionRequest{
			PermissionID:         perm.ID,
			UserTypePermissionID: userTypePermID,
			UserTypeID:           userTypeID,
			Granted:              task.Granted,
		}
		if err := s.permClient.UpdateUserTypePermissions(ctx, req); err != nil {
			// The tree we resolved against may be stale.
			s.treeCache.Clear()
			return err
		}
	}
	return nil
}

// resolvePermission walks titleUser -> space-feature group -> named
// permission through the (cached) tree.
func (s *PermissionSyncService) resolvePermission(ctx context.Context, stageID string) (*models.Permission, error) {
	name, ok := stages.PermissionName(stageID)
	if !ok {
		return nil, errPermissionUnresolvable
	}

	tree, cached := s.treeCache.Get()
	if !cached {
		fetched, err := s.permClient.ListUserTypePermissions(ctx, constants.PermissionFeatureGroupName)
		if err != nil {
			return nil, err
		}
		s.treeCache.Set(fetched)
		tree = fetched
	}

	entry := tree.FindUserType(constants.PermissionTreeUserType)
	if entry == nil {
		return nil, errPermissionUnresolvable
	}
	group := entry.FindGroup(constants.PermissionFeatureGroupID, constants.PermissionFeatureGroupName)
	if group == nil {
		return nil, errPermissionUnresolvable
	}
	perm := group.FindPermission(name)
	if perm == nil {
		return nil, errPermissionUnresolvable
	}
	return perm, nil
}
