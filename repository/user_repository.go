package repository

import (
	"database/sql"
	"errors"
	"go-auth-api/logger"
	"go-auth-api/model"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

var (
	// ErrUserNotFound is returned when no user matches the lookup.
	ErrUserNotFound = errors.New("user not found")
	// ErrDuplicateUsername is returned when the username unique constraint fires.
	ErrDuplicateUsername = errors.New("username already exists")
	// ErrDuplicateEmail is returned when the email unique constraint fires.
	ErrDuplicateEmail = errors.New("email already exists")
)

// IUserRepository defines the contract for user database operations.
type IUserRepository interface {
	CreateUser(user *model.User) error
	GetUserByUsername(username string) (*model.User, error)
	GetUserByID(id int) (*model.User, error)
	SearchUsers(search string) ([]*model.User, error)
	UpdateUser(user *model.User) error
	DeleteUser(id int) error
}

// UserRepository implements IUserRepository on top of Postgres.
type UserRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{DB: db}
}

const userColumns = `id, username, email, first_name, last_name, password, is_staff, is_superuser, created_at`

func scanUser(row interface{ Scan(...interface{}) error }) (*model.User, error) {
	user := &model.User{}
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.FirstName, &user.LastName,
		&user.Password, &user.IsStaff, &user.IsSuperuser, &user.CreatedAt)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// mapUniqueViolation converts a Postgres unique-violation error into the
// matching domain error. Uniqueness is enforced by the store, not by
// application-level pre-checks, so concurrent registrations are safe.
func mapUniqueViolation(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		switch pqErr.Constraint {
		case "users_username_key":
			return ErrDuplicateUsername
		case "users_email_key":
			return ErrDuplicateEmail
		}
	}
	return err
}

// CreateUser inserts a new user record and fills in its ID and timestamp.
func (r *UserRepository) CreateUser(user *model.User) error {
	log := logger.Log.WithFields(logrus.Fields{
		"username": user.Username,
		"email":    user.Email,
	})
	log.Info("Executing query to create a new user")

	query := `INSERT INTO users (username, email, first_name, last_name, password, is_staff, is_superuser)
		VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id, created_at`
	err := r.DB.QueryRow(query, user.Username, user.Email, user.FirstName, user.LastName,
		user.Password, user.IsStaff, user.IsSuperuser).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		mapped := mapUniqueViolation(err)
		if mapped == ErrDuplicateUsername || mapped == ErrDuplicateEmail {
			return mapped
		}
		log.WithError(err).Error("Failed to execute create user query")
		return err
	}
	return nil
}

// GetUserByUsername retrieves a user by their unique username.
func (r *UserRepository) GetUserByUsername(username string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	user, err := scanUser(r.DB.QueryRow(query, username))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrUserNotFound
		}
		logger.Log.WithError(err).WithField("username", username).Error("Failed to get user by username")
		return nil, err
	}
	return user, nil
}

// GetUserByID retrieves a user by their primary key.
func (r *UserRepository) GetUserByID(id int) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(r.DB.QueryRow(query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrUserNotFound
		}
		logger.Log.WithError(err).WithField("user_id", id).Error("Failed to get user by ID")
		return nil, err
	}
	return user, nil
}

// SearchUsers returns all users ordered newest-first. When search is
// non-empty it is matched case-insensitively as a substring across
// username, email, first_name and last_name.
func (r *UserRepository) SearchUsers(search string) ([]*model.User, error) {
	log := logger.Log.WithField("search", search)
	log.Info("Executing query to list users")

	query := `SELECT ` + userColumns + ` FROM users`
	args := []interface{}{}
	if search != "" {
		query += ` WHERE username ILIKE $1 OR email ILIKE $1 OR first_name ILIKE $1 OR last_name ILIKE $1`
		args = append(args, "%"+search+"%")
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.DB.Query(query, args...)
	if err != nil {
		log.WithError(err).Error("Failed to execute list users query")
		return nil, err
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			log.WithError(err).Error("Failed to scan user row")
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// UpdateUser persists changes to every mutable field of the user.
// ID and created_at are never written.
func (r *UserRepository) UpdateUser(user *model.User) error {
	log := logger.Log.WithField("user_id", user.ID)
	log.Info("Executing query to update user")

	query := `UPDATE users SET username = $1, email = $2, first_name = $3, last_name = $4,
		password = $5, is_staff = $6, is_superuser = $7 WHERE id = $8`
	result, err := r.DB.Exec(query, user.Username, user.Email, user.FirstName, user.LastName,
		user.Password, user.IsStaff, user.IsSuperuser, user.ID)
	if err != nil {
		mapped := mapUniqueViolation(err)
		if mapped == ErrDuplicateUsername || mapped == ErrDuplicateEmail {
			return mapped
		}
		log.WithError(err).Error("Failed to execute update user query")
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// DeleteUser removes a user record permanently.
func (r *UserRepository) DeleteUser(id int) error {
	log := logger.Log.WithField("user_id", id)
	log.Info("Executing query to delete user")

	result, err := r.DB.Exec(`DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		log.WithError(err).Error("Failed to execute delete user query")
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrUserNotFound
	}
	return nil
}
