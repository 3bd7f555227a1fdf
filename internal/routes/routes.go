package routes

const (
	// Health
	Health = "/health"

	// Closing files
	Properties      = "/api/v1/properties"
	PropertyByID    = "/api/v1/properties/{id}"
	PropertyArchive = "/api/v1/properties/{id}/archive"

	// Workflow
	PropertyStages       = "/api/v1/properties/{id}/stages"
	PropertyStageStart   = "/api/v1/properties/{id}/stages/start"
	PropertyStageAdvance = "/api/v1/properties/{id}/stages/advance"
	PropertyStageAssign  = "/api/v1/properties/{id}/stages/assign"
	PropertyStageContent = "/api/v1/properties/{id}/stages/{stageId}/content"

	// Configuration (Title Admin / Title User)
	PropertyWorkflowOptions    = "/api/v1/properties/{id}/workflow-options"
	PropertyVisibilitySettings = "/api/v1/properties/{id}/visibility-settings"
)
