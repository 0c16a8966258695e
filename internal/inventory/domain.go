package inventory

import (
	"errors"
	"time"
)

// ItemType enumerates the kinds of items tracked in inventory.
type ItemType string

const (
	ItemProduct    ItemType = "product"
	ItemIngredient ItemType = "ingredient"
	ItemConsumable ItemType = "consumable"
	ItemAddon      ItemType = "addon"
)

// ValidItemType reports whether t is one of the tracked kinds.
func ValidItemType(t ItemType) bool {
	switch t {
	case ItemProduct, ItemIngredient, ItemConsumable, ItemAddon:
		return true
	}
	return false
}

// Status enumerates stock transaction states.
type Status string

const (
	StatusDelivered Status = "delivered"
	StatusOrdered   Status = "ordered"
	StatusDamaged   Status = "damaged"
	StatusReturned  Status = "returned"
)

// ValidStatus reports whether s is a known transaction status.
func ValidStatus(s Status) bool {
	switch s {
	case StatusDelivered, StatusOrdered, StatusDamaged, StatusReturned:
		return true
	}
	return false
}

// PaymentStatus enumerates settlement states of a transaction.
type PaymentStatus string

const (
	PaymentPaid     PaymentStatus = "paid"
	PaymentUnpaid   PaymentStatus = "unpaid"
	PaymentPartial  PaymentStatus = "partial"
	PaymentRefunded PaymentStatus = "refunded"
)

// ValidPaymentStatus reports whether s is a known payment status.
func ValidPaymentStatus(s PaymentStatus) bool {
	switch s {
	case PaymentPaid, PaymentUnpaid, PaymentPartial, PaymentRefunded:
		return true
	}
	return false
}

// StockTransaction records a single inventory movement. TotalCost and
// UnpaidAmount are derived from the other fields and never accepted
// from clients.
type StockTransaction struct {
	ID            int64         `json:"id"`
	BusinessID    int64         `json:"business_id"`
	Code          string        `json:"code"`
	ItemType      ItemType      `json:"item_type"`
	ItemID        int64         `json:"item_id"`
	Quantity      float64       `json:"quantity"`
	CostPerUnit   float64       `json:"cost_per_unit"`
	TotalCost     float64       `json:"total_cost"`
	Discount      float64       `json:"discount"`
	Status        Status        `json:"status"`
	PaymentStatus PaymentStatus `json:"payment_status"`
	PaidAmount    float64       `json:"paid_amount"`
	UnpaidAmount  float64       `json:"unpaid_amount"`
	Note          string        `json:"note"`
	CreatedBy     int64         `json:"created_by"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// Level is the on-hand quantity record for one item, keyed by
// (business, item type, item id). Mutated only as a side effect of
// stock transactions, never overwritten directly.
type Level struct {
	BusinessID  int64     `json:"business_id"`
	ItemType    ItemType  `json:"item_type"`
	ItemID      int64     `json:"item_id"`
	Quantity    float64   `json:"quantity"`
	AverageCost float64   `json:"average_cost"`
	TotalValue  float64   `json:"total_value"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// PostInput describes a new stock transaction.
type PostInput struct {
	Code          string
	ItemType      ItemType
	ItemID        int64
	Quantity      float64
	CostPerUnit   float64
	Discount      float64
	Status        Status
	PaymentStatus PaymentStatus
	PaidAmount    float64
	Note          string
	ActorID       int64
}

// UpdateInput patches an existing transaction. Nil fields keep the
// persisted values; derived fields are always recomputed server side.
type UpdateInput struct {
	Quantity      *float64
	CostPerUnit   *float64
	Discount      *float64
	Status        *Status
	PaymentStatus *PaymentStatus
	PaidAmount    *float64
	Note          *string
}

// ListFilter narrows transaction listings.
type ListFilter struct {
	ItemType ItemType
	ItemID   int64
	Status   Status
	Limit    int
	Offset   int
}

var (
	// ErrInvalidQuantity indicates a non-positive quantity.
	ErrInvalidQuantity = errors.New("inventory: quantity must be positive")
	// ErrInvalidCost indicates a negative unit cost or discount.
	ErrInvalidCost = errors.New("inventory: cost and discount must not be negative")
	// ErrInvalidStatus indicates an unknown status value.
	ErrInvalidStatus = errors.New("inventory: unknown status")
	// ErrNegativeStock indicates the movement would drive stock below zero.
	ErrNegativeStock = errors.New("inventory: insufficient stock")
	// ErrNotFound indicates a missing transaction row.
	ErrNotFound = errors.New("inventory: transaction not found")
	// ErrLevelNotFound indicates a missing level row.
	ErrLevelNotFound = errors.New("inventory: level not found")
)
