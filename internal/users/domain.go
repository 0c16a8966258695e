package users

import (
	"errors"
	"time"
)

// Member is a user account as seen by the member-management screens.
// Password material never leaves the package.
type Member struct {
	ID         int64     `json:"id"`
	BusinessID int64     `json:"business_id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	RoleID     *int64    `json:"role_id,omitempty"`
	RoleName   *string   `json:"role_name,omitempty"`
	IsOwner    bool      `json:"is_owner"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

var (
	ErrNotFound       = errors.New("users: user not found")
	ErrEmailTaken     = errors.New("users: email already registered")
	ErrRoleNotFound   = errors.New("users: role not found")
	ErrOwnerImmutable = errors.New("users: owner account cannot be changed here")
)
