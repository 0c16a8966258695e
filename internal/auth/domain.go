package auth

import "time"

// Business is one tenant. Every domain row hangs off a business id.
type Business struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// User is an account within a business. RoleID is nil for users with
// no role assigned; IsOwner marks the account created at registration.
type User struct {
	ID           int64     `json:"id"`
	BusinessID   int64     `json:"business_id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	RoleID       *int64    `json:"role_id,omitempty"`
	IsOwner      bool      `json:"is_owner"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
