// file: model/request.go

package model

// RegisterRequest defines the payload for creating a new user.
// It includes validation tags to ensure data integrity at the entry point.
// The username_charset and not_all_numeric rules are registered in common.
type RegisterRequest struct {
	Username  string `json:"username" validate:"required,min=3,max=30,username_charset"`
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"first_name" validate:"max=150"`
	LastName  string `json:"last_name" validate:"max=150"`
	Password  string `json:"password" validate:"required,min=8,not_all_numeric"`
	Password2 string `json:"password2" validate:"required,eqfield=Password"`
}

// LoginRequest defines the payload for user authentication.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest carries the refresh token for logout and token refresh.
type RefreshRequest struct {
	Refresh string `json:"refresh" validate:"required"`
}

// AdminUpdateUserRequest defines the payload for an admin updating a user.
// All fields are optional so PATCH-style partial updates work; nil means
// "leave unchanged". ID and creation timestamp are never updatable.
type AdminUpdateUserRequest struct {
	Username    *string `json:"username" validate:"omitempty,min=3,max=30,username_charset"`
	Email       *string `json:"email" validate:"omitempty,email"`
	FirstName   *string `json:"first_name" validate:"omitempty,max=150"`
	LastName    *string `json:"last_name" validate:"omitempty,max=150"`
	Password    *string `json:"password" validate:"omitempty,min=8,not_all_numeric"`
	IsStaff     *bool   `json:"is_staff"`
	IsSuperuser *bool   `json:"is_superuser"`
}
