package crm

import (
	"errors"
	"time"
)

// ContactKind separates active customers from prospects. A lead that
// converts keeps its row and flips to KindCustomer.
type ContactKind string

const (
	KindCustomer ContactKind = "customer"
	KindLead     ContactKind = "lead"
)

// ValidContactKind reports whether k is a known contact kind.
func ValidContactKind(k ContactKind) bool {
	return k == KindCustomer || k == KindLead
}

// Contact is a customer or lead.
type Contact struct {
	ID         int64       `json:"id"`
	BusinessID int64       `json:"business_id"`
	Kind       ContactKind `json:"kind"`
	Name       string      `json:"name"`
	Email      *string     `json:"email,omitempty"`
	Phone      *string     `json:"phone,omitempty"`
	Address    *string     `json:"address,omitempty"`
	Notes      *string     `json:"notes,omitempty"`
	CreatedBy  int64       `json:"created_by"`
	CreatedAt  time.Time   `json:"created_at"`
	UpdatedAt  time.Time   `json:"updated_at"`
}

// ListFilter narrows contact listings.
type ListFilter struct {
	Kind   ContactKind
	Search string
	Limit  int
	Offset int
}

var (
	ErrNotFound        = errors.New("crm: contact not found")
	ErrNameRequired    = errors.New("crm: name required")
	ErrAlreadyCustomer = errors.New("crm: contact is already a customer")
)
