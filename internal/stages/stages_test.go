package stages

import (
	"github.com/google/uuid"

	"github.com/cleardeed/closing-service/internal/models"
)

// Shared fixtures for the workflow-core tests: a three-stage registry
// with one required stage, as small as the rules allow.

var testRegistry = Registry{
	{ID: "A", Title: "Stage A", Optional: false},
	{ID: "B", Title: "Stage B", Optional: true},
	{ID: "C", Title: "Stage C", Optional: true},
}

func testProperty() *models.Property {
	return &models.Property{
		ID:     uuid.New(),
		Status: models.PropertyStatusInProgress,
		WorkflowOptions: models.WorkflowOptions{
			"A": true, "B": true, "C": false,
		},
		ClosingProgress: models.ClosingProgress{
			"A": {Status: models.StageStatusNotStarted},
			"B": {Status: models.StageStatusNotStarted},
		},
		VisibilitySettings: models.RoleVisibilitySettings{},
	}
}

func testUser(role models.RoleType) *models.User {
	return &models.User{ID: uuid.New(), Name: "test", Role: role}
}

func stageIDs(defs []StageDefinition) []string {
	ids := make([]string, 0, len(defs))
	for _, d := range defs {
		ids = append(ids, d.ID)
	}
	return ids
}
