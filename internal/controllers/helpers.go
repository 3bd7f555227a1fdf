package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/cleardeed/closing-service/internal/middleware"
	"github.com/cleardeed/closing-service/internal/models"
	"github.com/cleardeed/closing-service/internal/repositories"
	"github.com/cleardeed/closing-service/internal/utils"
)

// currentUser loads the authenticated user from the context's subject
// claim. Writes the error response itself and returns nil on failure.
func currentUser(w http.ResponseWriter, r *http.Request, userRepo repositories.UserRepository) *models.User {
	ctxUserID := r.Context().Value(middleware.ContextKeyUserID)
	if ctxUserID == nil {
		utils.RespondErrorWithCode(
			w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "No userID in context", nil,
		)
		return nil
	}

	uid, err := uuid.Parse(ctxUserID.(string))
	if err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Malformed subject", nil, err,
		)
		return nil
	}

	user, err := userRepo.GetByID(r.Context(), uid)
	if err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusInternalServerError, utils.ErrCodeInternal, "Failed to load user", nil, err,
		)
		return nil
	}
	if user == nil {
		utils.RespondErrorWithCode(
			w, http.StatusUnauthorized, utils.ErrCodeUnauthorized, "Unknown user", nil,
		)
		return nil
	}
	return user
}

// propertyID parses the {id} path variable. Writes the error response
// itself and returns uuid.Nil,false on failure.
func propertyID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := mux.Vars(r)["id"]
	id, err := uuid.Parse(raw)
	if err != nil {
		utils.RespondErrorWithCode(
			w, http.StatusBadRequest, utils.ErrCodeInvalidPayload, "Invalid property id", nil, err,
		)
		return uuid.Nil, false
	}
	return id, true
}
