package controllers

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/cleardeed/closing-service/internal/dtos"
	"github.com/cleardeed/closing-service/internal/repositories"
	"github.com/cleardeed/closing-service/internal/services"
	"github.com/cleardeed/closing-service/internal/utils"
)

type PropertiesController struct {
	closingService *services.ClosingService
	userRepo       repositories.UserRepository
	validate       *validator.Validate
}

func NewPropertiesController(cs *services.ClosingService, ur repositories.UserRepository) *PropertiesController {
	return &PropertiesController{
		closingService: cs,
		userRepo:       ur,
		validate:       validator.New(),
	}
}

// ----------------------------------------------------------------
// GET /api/v1/properties
// ----------------------------------------------------------------
func (c *PropertiesController) ListPropertiesHandler(w http.ResponseWriter, r *http.Request) {
	if user := currentUser(w, r, c.userRepo); user == nil {
		return
	}

	props, err := c.closingService.ListProperties(r.Context())
	if err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusInternalServerError, utils.ErrCodeInternal, "Failed to list properties", nil, err,
		)
		return
	}

	out := make([]dtos.PropertyDTO, 0, len(props))
	for _, p := range props {
		out = append(out, dtos.NewPropertyDTO(p))
	}
	utils.RespondWithJSON(w, http.StatusOK, out)
}

// ----------------------------------------------------------------
// POST /api/v1/properties
// ----------------------------------------------------------------
func (c *PropertiesController) CreatePropertyHandler(w http.ResponseWriter, r *http.Request) {
	if user := currentUser(w, r, c.userRepo); user == nil {
		return
	}

	var req dtos.CreatePropertyRequest
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

	p, err := c.closingService.CreateClosingFile(r.Context(), req)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, dtos.NewPropertyDTO(p))
}

// ----------------------------------------------------------------
// GET /api/v1/properties/{id}
// ----------------------------------------------------------------
func (c *PropertiesController) GetPropertyHandler(w http.ResponseWriter, r *http.Request) {
	if user := currentUser(w, r, c.userRepo); user == nil {
		return
	}
	id, ok := propertyID(w, r)
	if !ok {
		return
	}

	p, err := c.closingService.GetProperty(r.Context(), id)
	if err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, dtos.NewPropertyDTO(p))
}

// ----------------------------------------------------------------
// POST /api/v1/properties/{id}/archive
// ----------------------------------------------------------------
func (c *PropertiesController) ArchivePropertyHandler(w http.ResponseWriter, r *http.Request) {
	if user := currentUser(w, r, c.userRepo); user == nil {
		return
	}
	id, ok := propertyID(w, r)
	if !ok {
		return
	}

	if err := c.closingService.ArchiveProperty(r.Context(), id); err != nil {
		utils.HandleAppError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, map[string]string{"status": "archived"})
}
