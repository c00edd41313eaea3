package user

import (
	"errors"
	"net/mail"
	"strings"
	"time"
)

// User is the domain entity corresponding to the `users` table.
type User struct {
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time

	Email        string
	PasswordHash string // empty for customers created through the dispatcher flow
	FirstName    string
	LastName     string
	Phone        string
	Role         Role
}

var (
	ErrInvalidEmail     = errors.New("invalid email address")
	ErrNameRequired     = errors.New("first and last name are required")
	ErrBadTimestamps    = errors.New("updated_at cannot be before created_at")
	ErrNotFound         = errors.New("user not found")
	ErrEmailTaken       = errors.New("email already registered")
	ErrBadCredentials   = errors.New("invalid credentials")
	ErrRoleNotPermitted = errors.New("user role not permitted for this operation")
)

// NewUser constructs a new User entity. The caller provides an already-hashed
// password; dispatcher-created customers may pass an empty hash.
func NewUser(email string, role Role, passwordHash, firstName, lastName, phone string) (*User, error) {
	now := time.Now().UTC()
	u := &User{
		CreatedAt:    now,
		UpdatedAt:    now,
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: strings.TrimSpace(passwordHash),
		FirstName:    strings.TrimSpace(firstName),
		LastName:     strings.TrimSpace(lastName),
		Phone:        strings.TrimSpace(phone),
		Role:         role,
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}
	return u, nil
}

// Validate checks invariants of the User entity.
func (u *User) Validate() error {
	if _, err := mail.ParseAddress(u.Email); err != nil {
		return ErrInvalidEmail
	}
	if !u.Role.Valid() {
		return ErrInvalidRole
	}
	if u.FirstName == "" || u.LastName == "" {
		return ErrNameRequired
	}
	if !u.CreatedAt.IsZero() && !u.UpdatedAt.IsZero() && u.UpdatedAt.Before(u.CreatedAt) {
		return ErrBadTimestamps
	}
	return nil
}

// FullName joins first and last name for display.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Convenience helpers.
func (u *User) IsCustomer() bool { return u.Role.IsCustomer() }
func (u *User) IsDriver() bool   { return u.Role.IsDriver() }
func (u *User) IsAdmin() bool    { return u.Role.IsAdmin() }
