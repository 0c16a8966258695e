package catalog

import (
	"errors"
	"time"
)

// Product is a finished good. Quantity is the direct on-hand count for
// products whose availability is not derived from components.
type Product struct {
	ID             int64     `json:"id"`
	BusinessID     int64     `json:"business_id"`
	Name           string    `json:"name"`
	HasIngredients bool      `json:"has_ingredients"`
	HasConsumables bool      `json:"has_consumables"`
	HasSizes       bool      `json:"has_sizes"`
	Quantity       float64   `json:"quantity"`
	CostPrice      float64   `json:"cost_price"`
	SellingPrice   float64   `json:"selling_price"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ProductSize is a size variant for products with HasSizes set.
type ProductSize struct {
	ID           int64   `json:"id"`
	BusinessID   int64   `json:"business_id"`
	ProductID    int64   `json:"product_id"`
	Name         string  `json:"name"`
	CostPrice    float64 `json:"cost_price"`
	SellingPrice float64 `json:"selling_price"`
}

// ProductSizeInput is one size row in a wholesale replacement.
type ProductSizeInput struct {
	Name         string
	CostPrice    float64
	SellingPrice float64
}

// ComponentKind distinguishes the component tables.
type ComponentKind string

const (
	KindIngredient ComponentKind = "ingredient"
	KindConsumable ComponentKind = "consumable"
	KindAddon      ComponentKind = "addon"
)

// ValidComponentKind reports whether k names a component table.
func ValidComponentKind(k ComponentKind) bool {
	return k == KindIngredient || k == KindConsumable || k == KindAddon
}

// Component is an ingredient, consumable or addon. Its on-hand stock
// lives in inventory_levels, not here.
type Component struct {
	ID         int64         `json:"id"`
	BusinessID int64         `json:"business_id"`
	Kind       ComponentKind `json:"kind"`
	Name       string        `json:"name"`
	UnitID     int64         `json:"unit_id"`
	Price      float64       `json:"price"`
	CreatedAt  time.Time     `json:"created_at"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

// Unit is a measurement unit (kg, litre, piece).
type Unit struct {
	ID           int64  `json:"id"`
	BusinessID   int64  `json:"business_id"`
	Name         string `json:"name"`
	Abbreviation string `json:"abbreviation"`
}

// Requirement is one recipe edge: the quantity of a component consumed
// per unit of product produced.
type Requirement struct {
	ID          int64         `json:"id"`
	BusinessID  int64         `json:"business_id"`
	ProductID   int64         `json:"product_id"`
	Kind        ComponentKind `json:"kind"`
	ComponentID int64         `json:"component_id"`
	Quantity    float64       `json:"quantity"`
	UnitID      int64         `json:"unit_id"`
}

// RequirementInput is one edge of a recipe replacement.
type RequirementInput struct {
	ComponentID int64
	Quantity    float64
	UnitID      int64
}

// ListFilter narrows catalog listings.
type ListFilter struct {
	Search string
	Limit  int
	Offset int
}

var (
	// ErrNotFound indicates the row does not exist for the business.
	ErrNotFound = errors.New("catalog: not found")
	// ErrDuplicateName indicates a unique name collision.
	ErrDuplicateName = errors.New("catalog: name already taken")
	// ErrNameRequired indicates a blank name.
	ErrNameRequired = errors.New("catalog: name required")
	// ErrSizesDisabled indicates size edits on a product without HasSizes.
	ErrSizesDisabled = errors.New("catalog: product does not use sizes")
)
