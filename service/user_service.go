package service

import (
	"errors"
	"go-auth-api/logger"
	"go-auth-api/model"
	"go-auth-api/repository"
)

var (
	// ErrCannotDeleteSelf is returned when an admin targets their own account.
	ErrCannotDeleteSelf = errors.New("cannot delete own account")
	// ErrSuperuserDelete is returned when the deletion target is a superuser.
	ErrSuperuserDelete = errors.New("superuser deletion forbidden")
)

// UserService handles user-related business logic.
type UserService struct {
	userRepo    repository.IUserRepository
	authService *AuthService
}

// NewUserService creates a new UserService. The AuthService is used for
// password hashing on registration and admin password updates.
func NewUserService(userRepo repository.IUserRepository, authService *AuthService) *UserService {
	return &UserService{userRepo: userRepo, authService: authService}
}

// Register hashes the password and persists a new non-staff user. Duplicate
// usernames or emails surface as the repository's conflict errors; the
// store's uniqueness constraints are the source of truth, so concurrent
// registrations never produce two records.
func (s *UserService) Register(req *model.RegisterRequest) (*model.User, error) {
	hashedPassword, err := s.authService.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Username:    req.Username,
		Email:       req.Email,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Password:    hashedPassword,
		IsStaff:     false,
		IsSuperuser: false,
	}

	if err := s.userRepo.CreateUser(user); err != nil {
		return nil, err
	}

	logger.Log.WithField("username", user.Username).Info("User registered successfully")
	return user, nil
}

// GetProfile returns the user record for an authenticated user ID.
func (s *UserService) GetProfile(userID int) (*model.User, error) {
	return s.userRepo.GetUserByID(userID)
}

// ListUsers returns all users, newest first, optionally filtered by a
// case-insensitive substring across username, email and name fields.
func (s *UserService) ListUsers(search string) ([]*model.User, error) {
	return s.userRepo.SearchUsers(search)
}

// GetUser returns a single user by ID.
func (s *UserService) GetUser(id int) (*model.User, error) {
	return s.userRepo.GetUserByID(id)
}

// UpdateUser applies a partial admin update to the target user. Only fields
// present in the request change; ID and created_at are immutable. A supplied
// password is re-hashed before storage.
func (s *UserService) UpdateUser(id int, req *model.AdminUpdateUserRequest) (*model.User, error) {
	user, err := s.userRepo.GetUserByID(id)
	if err != nil {
		return nil, err
	}

	if req.Username != nil {
		user.Username = *req.Username
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.IsStaff != nil {
		user.IsStaff = *req.IsStaff
	}
	if req.IsSuperuser != nil {
		user.IsSuperuser = *req.IsSuperuser
	}
	if req.Password != nil {
		hashedPassword, err := s.authService.HashPassword(*req.Password)
		if err != nil {
			return nil, err
		}
		user.Password = hashedPassword
	}

	if err := s.userRepo.UpdateUser(user); err != nil {
		return nil, err
	}

	logger.Log.WithField("user_id", user.ID).Info("User updated by admin")
	return user, nil
}

// DeleteUser hard-deletes the target user. Admins can never delete their own
// account, and superusers can never be deleted through the API, regardless
// of any other state.
func (s *UserService) DeleteUser(actorID, targetID int) (*model.User, error) {
	if actorID == targetID {
		return nil, ErrCannotDeleteSelf
	}

	user, err := s.userRepo.GetUserByID(targetID)
	if err != nil {
		return nil, err
	}
	if user.IsSuperuser {
		return nil, ErrSuperuserDelete
	}

	if err := s.userRepo.DeleteUser(targetID); err != nil {
		return nil, err
	}

	logger.Log.WithField("username", user.Username).Info("User deleted by admin")
	return user, nil
}
