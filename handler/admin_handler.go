package handler

import (
	"encoding/json"
	"go-auth-api/common"
	"go-auth-api/logger"
	"go-auth-api/model"
	"go-auth-api/repository"
	"go-auth-api/service"
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"
)

// AdminHandler serves the staff-only user management endpoints.
type AdminHandler struct {
	userService *service.UserService
}

func NewAdminHandler(userService *service.UserService) *AdminHandler {
	return &AdminHandler{userService: userService}
}

func targetUserID(r *http.Request) (int, *common.AppError) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil {
		return 0, common.NewAppError(http.StatusBadRequest, "Invalid user ID", nil)
	}
	return id, nil
}

// ListUsers godoc
// @Summary      List all users
// @Description  returns all users newest-first, optionally filtered by substring search
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        search query string false "Match against username, email, first or last name"
// @Success      200  {object}  map[string]interface{}
// @Failure      403  {object}  common.AppError
// @Router       /admin/users [get]
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) *common.AppError {
	search := r.URL.Query().Get("search")

	users, err := h.userService.ListUsers(search)
	if err != nil {
		return common.NewAppError(http.StatusInternalServerError, "Failed to retrieve user list.", err)
	}
	if users == nil {
		users = []*model.User{}
	}

	logger.Log.WithFields(logrus.Fields{
		"count":  len(users),
		"search": search,
	}).Info("Admin listed users")

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"count": len(users),
		"users": users,
	})
	return nil
}

// GetUser godoc
// @Summary      Get a single user
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "User ID"
// @Success      200  {object}  model.User
// @Failure      404  {object}  common.AppError
// @Router       /admin/users/{id} [get]
func (h *AdminHandler) GetUser(w http.ResponseWriter, r *http.Request) *common.AppError {
	id, appErr := targetUserID(r)
	if appErr != nil {
		return appErr
	}

	user, err := h.userService.GetUser(id)
	if err != nil {
		if err == repository.ErrUserNotFound {
			return common.NewAppError(http.StatusNotFound, "User not found", nil)
		}
		return common.NewAppError(http.StatusInternalServerError, "Failed to retrieve user.", err)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(user)
	return nil
}

// UpdateUser godoc
// @Summary      Update a user
// @Description  partial update of any field except id and created_at
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "User ID"
// @Param        request body model.AdminUpdateUserRequest true "Fields to update"
// @Success      200  {object}  model.User
// @Failure      400  {object}  common.AppError
// @Failure      404  {object}  common.AppError
// @Router       /admin/users/{id} [put]
func (h *AdminHandler) UpdateUser(w http.ResponseWriter, r *http.Request) *common.AppError {
	id, appErr := targetUserID(r)
	if appErr != nil {
		return appErr
	}

	var req model.AdminUpdateUserRequest
	if !common.ValidateAndDecode(w, r, &req) {
		return nil
	}

	user, err := h.userService.UpdateUser(id, &req)
	if err != nil {
		if err == repository.ErrUserNotFound {
			return common.NewAppError(http.StatusNotFound, "User not found", nil)
		}
		if appErr := duplicateFieldError(err); appErr != nil {
			return appErr
		}
		return common.NewAppError(http.StatusInternalServerError, "Failed to update user.", err)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(user)
	return nil
}

// DeleteUser godoc
// @Summary      Delete a user
// @Description  hard delete; admins cannot delete themselves or any superuser
// @Tags         admin
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "User ID"
// @Success      200  {object}  map[string]string
// @Failure      403  {object}  common.AppError
// @Failure      404  {object}  common.AppError
// @Router       /admin/users/{id} [delete]
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) *common.AppError {
	id, appErr := targetUserID(r)
	if appErr != nil {
		return appErr
	}

	actorID, ok := r.Context().Value(UserIDKey).(int)
	if !ok {
		return common.NewAppError(http.StatusUnauthorized, "Invalid user ID in token", nil)
	}

	user, err := h.userService.DeleteUser(actorID, id)
	if err != nil {
		switch err {
		case service.ErrCannotDeleteSelf:
			return common.NewAppError(http.StatusForbidden, "You cannot delete your own account.", nil)
		case service.ErrSuperuserDelete:
			return common.NewAppError(http.StatusForbidden, "Superusers cannot be deleted.", nil)
		case repository.ErrUserNotFound:
			return common.NewAppError(http.StatusNotFound, "User not found", nil)
		}
		return common.NewAppError(http.StatusInternalServerError, "Failed to delete user.", err)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message": "User " + user.Username + " has been deleted.",
	})
	return nil
}
