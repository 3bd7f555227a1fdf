package stages

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleardeed/closing-service/internal/models"
)

func TestVisibleStagesTitleAdminSeesEnabled(t *testing.T) {
	p := testProperty()
	u := testUser(models.RoleTitleAdmin)

	visible := testRegistry.VisibleStages(p, u)
	assert.Equal(t, []string{"A", "B"}, stageIDs(visible))
}

func TestVisibleStagesDisabledStageNeverVisible(t *testing.T) {
	p := testProperty()
	// C stays disabled: no role may see it, even when a visibility
	// setting claims otherwise.
	p.VisibilitySettings[models.ConfigurableRoleBuyer] = map[string]bool{"A": true, "B": true, "C": true}

	for _, role := range []models.RoleType{
		models.RoleTitleAdmin, models.RoleTitleUser, models.RoleTitleCompany,
		models.RoleAgent, models.RoleBuyer, models.RoleSeller,
	} {
		visible := testRegistry.VisibleStages(p, testUser(role))
		assert.NotContains(t, stageIDs(visible), "C", "role %s saw disabled stage", role)
	}
}

func TestVisibleStagesBuyerFilteredBySettings(t *testing.T) {
	p := testProperty()
	p.VisibilitySettings[models.ConfigurableRoleBuyer] = map[string]bool{"A": true, "B": false}

	visible := testRegistry.VisibleStages(p, testUser(models.RoleBuyer))
	assert.Equal(t, []string{"A"}, stageIDs(visible))
}

func TestVisibleStagesAgentRolesShareTheAgentGroup(t *testing.T) {
	p := testProperty()
	p.VisibilitySettings[models.ConfigurableRoleAgent] = map[string]bool{"B": true}

	for _, role := range []models.RoleType{models.RoleAgent, models.RoleSellerAgent, models.RoleBuyerAgent} {
		visible := testRegistry.VisibleStages(p, testUser(role))
		assert.Equal(t, []string{"B"}, stageIDs(visible), "role %s", role)
	}
}

func TestVisibleStagesRoleWithoutSettingsSeesAll(t *testing.T) {
	// Buyer has no settings entry on this property: falls through to
	// all enabled stages.
	p := testProperty()
	visible := testRegistry.VisibleStages(p, testUser(models.RoleBuyer))
	assert.Equal(t, []string{"A", "B"}, stageIDs(visible))
}

func TestVisibleStagesAbstractorOnlyAssigned(t *testing.T) {
	p := testProperty()
	u := testUser(models.RoleTitleAbstractor)

	me := u.ID
	p.ClosingProgress["A"] = models.ProgressItem{Status: models.StageStatusNotStarted, AssignedTo: &me}
	p.ClosingProgress["B"] = models.ProgressItem{Status: models.StageStatusNotStarted}

	visible := testRegistry.VisibleStages(p, u)
	assert.Equal(t, []string{"A"}, stageIDs(visible))
}

func TestVisibleStagesAbstractorUnassignedSeesNothing(t *testing.T) {
	p := testProperty()
	visible := testRegistry.VisibleStages(p, testUser(models.RoleTitleAbstractor))
	assert.Empty(t, visible)
}

func TestVisibleStagesPreservesRegistryOrder(t *testing.T) {
	p := testProperty()
	p.WorkflowOptions["C"] = true
	p.ClosingProgress["C"] = models.ProgressItem{Status: models.StageStatusNotStarted}

	visible := testRegistry.VisibleStages(p, testUser(models.RoleTitleAdmin))
	require.Equal(t, []string{"A", "B", "C"}, stageIDs(visible))

	// and on the full registry: any visible set is a subsequence of
	// the canonical order
	reg := DefaultRegistry()
	full := &models.Property{
		WorkflowOptions:    models.WorkflowOptions{},
		ClosingProgress:    models.ClosingProgress{},
		VisibilitySettings: models.RoleVisibilitySettings{},
	}
	for _, s := range reg {
		full.WorkflowOptions[s.ID] = true
	}
	vis := reg.VisibleStages(full, testUser(models.RoleTitleUser))
	last := -1
	for _, s := range vis {
		idx := reg.IndexOf(s.ID)
		require.Greater(t, idx, last, "visible stages out of canonical order at %s", s.ID)
		last = idx
	}
}

func TestIsVisible(t *testing.T) {
	p := testProperty()
	u := testUser(models.RoleTitleAdmin)

	assert.True(t, testRegistry.IsVisible(p, u, "A"))
	assert.False(t, testRegistry.IsVisible(p, u, "C"))
	assert.False(t, testRegistry.IsVisible(p, u, "bogus"))
}
