package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/cleardeed/closing-service/internal/dtos"
	"github.com/cleardeed/closing-service/internal/repositories"
	"github.com/cleardeed/closing-service/internal/services"
	"github.com/cleardeed/closing-service/internal/utils"
)

type WorkflowController struct {
	closingService *services.ClosingService
	userRepo       repositories.UserRepository
	validate       *validator.Validate
}

func NewWorkflowController(cs *services.ClosingService, ur repositories.UserRepository) *WorkflowController {
	return &WorkflowController{
		closingService: cs,
		userRepo:       ur,
		validate:       validator.New(),
	}
}

// ----------------------------------------------------------------
// GET /api/v1/properties/{id}/stages
// ----------------------------------------------------------------
func (c *WorkflowController) StageBoardHandler(w http.ResponseWriter, r *http.Request) {
	user := currentUser(w, r, c.userRepo)
	if user == nil {
		return
	}
	id, ok := propertyID(w, r)
	if !ok {
		return
	}

	selection := r.URL.Query().Get("selected")
	board, err := c.closingService.StageBoard(r.Context(), id, user, selection)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, board)
}

// ----------------------------------------------------------------
// POST /api/v1/properties/{id}/stages/start
// ----------------------------------------------------------------
func (c *WorkflowController) StartStageHandler(w http.ResponseWriter, r *http.Request) {
	user := currentUser(w, r, c.userRepo)
	if user == nil {
		return
	}
	id, ok := propertyID(w, r)
	if !ok {
		return
	}

	var req dtos.StartStageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Malformed JSON body", nil, err,
		)
		return
	}
	if err := c.validate.Struct(req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeValidation, err.Error(), nil,
		)
		return
	}

	board, err := c.closingService.StartStage(r.Context(), id, user, req.StageID)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, board)
}

// ----------------------------------------------------------------
// POST /api/v1/properties/{id}/stages/advance
// ----------------------------------------------------------------
func (c *WorkflowController) AdvanceStageHandler(w http.ResponseWriter, r *http.Request) {
	user := currentUser(w, r, c.userRepo)
	if user == nil {
		return
	}
	id, ok := propertyID(w, r)
	if !ok {
		return
	}

	var req dtos.AdvanceStageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Malformed JSON body", nil, err,
		)
		return
	}
	if err := c.validate.Struct(req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeValidation, err.Error(), nil,
		)
		return
	}

	board, err := c.closingService.AdvanceStage(r.Context(), id, user, req.CurrentStageID, req.Updates)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, board)
}

// ----------------------------------------------------------------
// POST /api/v1/properties/{id}/stages/assign
// (route is behind RequireRoles(TitleAdmin, TitleUser))
// ----------------------------------------------------------------
func (c *WorkflowController) AssignTaskHandler(w http.ResponseWriter, r *http.Request) {
	user := currentUser(w, r, c.userRepo)
	if user == nil {
		return
	}
	id, ok := propertyID(w, r)
	if !ok {
		return
	}

	var req dtos.AssignTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Malformed JSON body", nil, err,
		)
		return
	}
	if err := c.validate.Struct(req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeValidation, err.Error(), nil,
		)
		return
	}

	p, err := c.closingService.AssignTask(r.Context(), id, req.StageID, req.UserID)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.NewPropertyDTO(p))
}

// ----------------------------------------------------------------
// GET /api/v1/properties/{id}/stages/{stageId}/content
// ----------------------------------------------------------------
func (c *WorkflowController) StageContentHandler(w http.ResponseWriter, r *http.Request) {
	user := currentUser(w, r, c.userRepo)
	if user == nil {
		return
	}
	id, ok := propertyID(w, r)
	if !ok {
		return
	}
	stageID := mux.Vars(r)["stageId"]

	content, err := c.closingService.StageContent(r.Context(), id, user, stageID)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, content)
}

// ----------------------------------------------------------------
// PUT /api/v1/properties/{id}/workflow-options
// (route is behind RequireRoles(TitleAdmin))
// ----------------------------------------------------------------
func (c *WorkflowController) SetWorkflowOptionsHandler(w http.ResponseWriter, r *http.Request) {
	user := currentUser(w, r, c.userRepo)
	if user == nil {
		return
	}
	id, ok := propertyID(w, r)
	if !ok {
		return
	}

	var req dtos.WorkflowOptionsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Malformed JSON body", nil, err,
		)
		return
	}
	if err := c.validate.Struct(req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeValidation, err.Error(), nil,
		)
		return
	}

	p, err := c.closingService.SetWorkflowOptions(r.Context(), id, req.Options)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.NewPropertyDTO(p))
}

// ----------------------------------------------------------------
// PUT /api/v1/properties/{id}/visibility-settings
// (route is behind RequireRoles(TitleAdmin, TitleUser))
// ----------------------------------------------------------------
func (c *WorkflowController) SetVisibilitySettingsHandler(w http.ResponseWriter, r *http.Request) {
	user := currentUser(w, r, c.userRepo)
	if user == nil {
		return
	}
	id, ok := propertyID(w, r)
	if !ok {
		return
	}

	var req dtos.VisibilitySettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Malformed JSON body", nil, err,
		)
		return
	}
	if err := c.validate.Struct(req); err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeValidation, err.Error(), nil,
		)
		return
	}

	p, err := c.closingService.SetVisibilitySettings(r.Context(), id, req.Settings)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.NewPropertyDTO(p))
}
