package availability

import (
	"math"
	"sort"
)

// ComponentType tags a requirement as ingredient or consumable.
type ComponentType string

const (
	ComponentIngredient ComponentType = "ingredient"
	ComponentConsumable ComponentType = "consumable"
)

// ComponentSnapshot is one recipe requirement resolved against the
// current inventory level at evaluation time. AvailableQuantity is 0
// when the component has no level row or has been deleted.
type ComponentSnapshot struct {
	ComponentID      int64
	Name             string
	Type             ComponentType
	Unit             string
	RequiredQuantity float64
	AvailableQuantity float64
}

// ComponentLimit reports how far one component stretches.
type ComponentLimit struct {
	ComponentID         int64         `json:"component_id"`
	Name                string        `json:"name"`
	Type                ComponentType `json:"type"`
	Unit                string        `json:"unit"`
	AvailableQuantity   float64       `json:"available_quantity"`
	RequiredQuantity    float64       `json:"required_quantity"`
	MaxProductsPossible float64       `json:"max_products_possible"`
	Limiting            bool          `json:"limiting"`
}

// Result is the derived availability view for one product. It is
// computed per request and never persisted.
type Result struct {
	ProductID                int64            `json:"product_id"`
	DirectQuantity           float64          `json:"direct_quantity"`
	MaxProducibleQuantity    float64          `json:"max_producible_quantity"`
	CalculatedFromComponents bool             `json:"calculated_from_components"`
	LimitingComponents       []ComponentLimit `json:"limiting_components"`
}

// ProductInput carries the product fields the calculation depends on.
type ProductInput struct {
	ID             int64
	DirectQuantity float64
	HasIngredients bool
	HasConsumables bool
}

// Calculate derives how many additional product units the on-hand
// component stock supports and which components bind that limit.
//
// Without component flags the product is available exactly to the
// extent of its direct quantity. With flags set, each requirement with
// a positive required quantity caps production at
// floor(available/required); requirements with required <= 0 impose no
// limit and are dropped from consideration. The minimum across the
// considered components wins; zero considered components means zero
// producible, not unbounded. Every component tied at the minimum is
// flagged limiting.
func Calculate(product ProductInput, components []ComponentSnapshot) Result {
	if !product.HasIngredients && !product.HasConsumables {
		return Result{
			ProductID:                product.ID,
			DirectQuantity:           product.DirectQuantity,
			MaxProducibleQuantity:    product.DirectQuantity,
			CalculatedFromComponents: false,
			LimitingComponents:       []ComponentLimit{},
		}
	}

	limits := make([]ComponentLimit, 0, len(components))
	for _, c := range components {
		if c.RequiredQuantity <= 0 {
			continue
		}
		available := c.AvailableQuantity
		if available < 0 {
			available = 0
		}
		limits = append(limits, ComponentLimit{
			ComponentID:         c.ComponentID,
			Name:                c.Name,
			Type:                c.Type,
			Unit:                c.Unit,
			AvailableQuantity:   available,
			RequiredQuantity:    c.RequiredQuantity,
			MaxProductsPossible: math.Floor(available / c.RequiredQuantity),
		})
	}

	result := Result{
		ProductID:                product.ID,
		DirectQuantity:           product.DirectQuantity,
		CalculatedFromComponents: true,
		LimitingComponents:       []ComponentLimit{},
	}
	if len(limits) == 0 {
		return result
	}

	minPossible := limits[0].MaxProductsPossible
	for _, l := range limits[1:] {
		if l.MaxProductsPossible < minPossible {
			minPossible = l.MaxProductsPossible
		}
	}
	for i := range limits {
		limits[i].Limiting = limits[i].MaxProductsPossible == minPossible
	}
	// Primary bottleneck first; input order preserved on ties.
	sort.SliceStable(limits, func(i, j int) bool {
		return limits[i].MaxProductsPossible < limits[j].MaxProductsPossible
	})

	result.MaxProducibleQuantity = minPossible
	result.LimitingComponents = limits
	return result
}
