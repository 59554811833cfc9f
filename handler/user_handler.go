package handler

import (
	"encoding/json"
	"go-auth-api/common"
	"go-auth-api/model"
	"go-auth-api/repository"
	"go-auth-api/service"
	"net/http"
)

type UserHandler struct {
	userService *service.UserService
	authService *service.AuthService
}

func NewUserHandler(userService *service.UserService, authService *service.AuthService) *UserHandler {
	return &UserHandler{userService: userService, authService: authService}
}

// duplicateFieldError maps the repository's uniqueness-conflict errors to a
// 400 response keyed by the offending field, or returns nil for other errors.
func duplicateFieldError(err error) *common.AppError {
	switch err {
	case repository.ErrDuplicateUsername:
		return common.NewFieldError(http.StatusBadRequest, "Validation failed",
			map[string]string{"username": "A user with that username already exists."})
	case repository.ErrDuplicateEmail:
		return common.NewFieldError(http.StatusBadRequest, "Validation failed",
			map[string]string{"email": "A user with that email already exists."})
	}
	return nil
}

// Register godoc
// @Summary      Register a new user
// @Description  create a user account with username, email and password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body model.RegisterRequest true "Registration payload"
// @Success      201  {object}  map[string]interface{}
// @Failure      400  {object}  common.AppError
// @Router       /register [post]
func (h *UserHandler) Register(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.RegisterRequest
	if !common.ValidateAndDecode(w, r, &req) {
		return nil
	}

	user, err := h.userService.Register(&req)
	if err != nil {
		if appErr := duplicateFieldError(err); appErr != nil {
			return appErr
		}
		return common.NewAppError(http.StatusInternalServerError, "Registration failed. Please try again.", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"message": "User registered successfully.",
		"user":    user,
	})
	return nil
}

// Login godoc
// @Summary      Obtain a token pair
// @Description  authenticate with username and password, returns access and refresh tokens
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body model.LoginRequest true "Login payload"
// @Success      200  {object}  model.TokenPair
// @Failure      401  {object}  common.AppError
// @Router       /login [post]
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.LoginRequest
	if !common.ValidateAndDecode(w, r, &req) {
		return nil
	}

	pair, err := h.authService.Login(req.Username, req.Password)
	if err != nil {
		if err == service.ErrInvalidCredentials {
			return common.NewAppError(http.StatusUnauthorized, "Invalid username or password", nil)
		}
		return common.NewAppError(http.StatusInternalServerError, "Login failed. Please try again.", err)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(pair)
	return nil
}

// Profile godoc
// @Summary      Get the authenticated user's profile
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  model.User
// @Failure      401  {object}  common.AppError
// @Router       /profile [get]
func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) *common.AppError {
	userID, ok := r.Context().Value(UserIDKey).(int)
	if !ok {
		return common.NewAppError(http.StatusUnauthorized, "Invalid user ID in token", nil)
	}

	user, err := h.userService.GetProfile(userID)
	if err != nil {
		if err == repository.ErrUserNotFound {
			return common.NewAppError(http.StatusUnauthorized, "Invalid or expired token", nil)
		}
		return common.NewAppError(http.StatusInternalServerError, "Failed to retrieve profile.", err)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(user)
	return nil
}

// Logout godoc
// @Summary      Log out by blacklisting the refresh token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body model.RefreshRequest true "Refresh token"
// @Success      200  {object}  map[string]string
// @Failure      400  {object}  common.AppError
// @Router       /logout [post]
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Refresh == "" {
		return common.NewAppError(http.StatusBadRequest, "Refresh token is required.", nil)
	}

	// Revocation is idempotent: an expired or already-revoked token still
	// logs out cleanly. Only unparsable input is rejected.
	if err := h.authService.Revoke(req.Refresh); err != nil {
		if err == service.ErrMalformedToken {
			return common.NewAppError(http.StatusBadRequest, "Invalid token.", nil)
		}
		return common.NewAppError(http.StatusInternalServerError, "Logout failed. Please try again.", err)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Successfully logged out."})
	return nil
}

// Refresh godoc
// @Summary      Refresh the access token
// @Description  exchange a valid refresh token for a rotated token pair
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body model.RefreshRequest true "Refresh token"
// @Success      200  {object}  model.TokenPair
// @Failure      401  {object}  common.AppError
// @Router       /token/refresh [post]
func (h *UserHandler) Refresh(w http.ResponseWriter, r *http.Request) *common.AppError {
	var req model.RefreshRequest
	if !common.ValidateAndDecode(w, r, &req) {
		return nil
	}

	pair, err := h.authService.RefreshAccessToken(req.Refresh)
	if err != nil {
		switch err {
		case service.ErrTokenExpired, service.ErrInvalidToken, service.ErrTokenRevoked:
			return common.NewAppError(http.StatusUnauthorized, "Invalid or expired token", err)
		}
		return common.NewAppError(http.StatusInternalServerError, "Token refresh failed.", err)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(pair)
	return nil
}
