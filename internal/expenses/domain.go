package expenses

import (
	"errors"
	"time"
)

// Expense is one spend entry.
type Expense struct {
	ID         int64     `json:"id"`
	BusinessID int64     `json:"business_id"`
	Category   string    `json:"category"`
	Amount     float64   `json:"amount"`
	Notes      *string   `json:"notes,omitempty"`
	IncurredAt time.Time `json:"incurred_at"`
	CreatedBy  int64     `json:"created_by"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// MonthlySummary aggregates spend per category for one calendar month.
type MonthlySummary struct {
	Year       int             `json:"year"`
	Month      time.Month      `json:"month"`
	Total      float64         `json:"total"`
	Categories []CategoryTotal `json:"categories"`
}

// CategoryTotal is one summary line.
type CategoryTotal struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
	Count    int64   `json:"count"`
}

// ListFilter narrows expense listings.
type ListFilter struct {
	Category string
	From     time.Time
	To       time.Time
	Limit    int
	Offset   int
}

var (
	ErrNotFound         = errors.New("expenses: expense not found")
	ErrInvalidAmount    = errors.New("expenses: amount must be positive")
	ErrCategoryRequired = errors.New("expenses: category required")
)
