package roles

import (
	"errors"
	"time"

	"github.com/meridian-erp/meridian-erp/internal/rbac"
)

// Role is a named permission bundle assignable to users.
type Role struct {
	ID          int64              `json:"id"`
	BusinessID  int64              `json:"business_id"`
	Name        string             `json:"name"`
	Permissions rbac.PermissionSet `json:"permissions"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

var (
	ErrNotFound          = errors.New("roles: role not found")
	ErrNameRequired      = errors.New("roles: name required")
	ErrDuplicateName     = errors.New("roles: name already taken")
	ErrUnknownPermission = errors.New("roles: unknown permission key")
	ErrRoleInUse         = errors.New("roles: role is assigned to users")
)
