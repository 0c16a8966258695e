package masterdata

import (
	"errors"
	"time"
)

// Location is a business site (branch, warehouse, kitchen).
type Location struct {
	ID         int64     `json:"id"`
	BusinessID int64     `json:"business_id"`
	Name       string    `json:"name"`
	Address    *string   `json:"address,omitempty"`
	Phone      *string   `json:"phone,omitempty"`
	IsActive   bool      `json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

var (
	ErrNotFound     = errors.New("masterdata: location not found")
	ErrNameRequired = errors.New("masterdata: name required")
)
