package catalog

import (
	"context"
	"fmt"
	"strings"
)

// ViewInvalidator drops cached availability views after catalog edits
// that change what the calculator would return.
type ViewInvalidator interface {
	Invalidate(ctx context.Context, businessID int64) error
}

// Service coordinates catalog operations.
type Service struct {
	repo        Repository
	invalidator ViewInvalidator
}

// NewService builds Service. The invalidator may be nil.
func NewService(repo Repository, invalidator ViewInvalidator) *Service {
	return &Service{repo: repo, invalidator: invalidator}
}

func (s *Service) invalidate(ctx context.Context, businessID int64) {
	if s.invalidator != nil {
		_ = s.invalidator.Invalidate(ctx, businessID)
	}
}

// CreateProduct validates and inserts a product.
func (s *Service) CreateProduct(ctx context.Context, product Product) (Product, error) {
	product.Name = strings.TrimSpace(product.Name)
	if product.Name == "" {
		return Product{}, ErrNameRequired
	}
	id, err := s.repo.CreateProduct(ctx, product)
	if err != nil {
		return Product{}, fmt.Errorf("create product: %w", err)
	}
	product.ID = id
	s.invalidate(ctx, product.BusinessID)
	return product, nil
}

// GetProduct fetches one product.
func (s *Service) GetProduct(ctx context.Context, businessID, id int64) (Product, error) {
	return s.repo.GetProduct(ctx, businessID, id)
}

// ListProducts lists products with search and pagination.
func (s *Service) ListProducts(ctx context.Context, businessID int64, filter ListFilter) ([]Product, error) {
	return s.repo.ListProducts(ctx, businessID, filter)
}

// UpdateProduct rewrites a product and drops derived views.
func (s *Service) UpdateProduct(ctx context.Context, product Product) (Product, error) {
	product.Name = strings.TrimSpace(product.Name)
	if product.Name == "" {
		return Product{}, ErrNameRequired
	}
	if err := s.repo.UpdateProduct(ctx, product); err != nil {
		return Product{}, fmt.Errorf("update product: %w", err)
	}
	s.invalidate(ctx, product.BusinessID)
	return product, nil
}

// DeleteProduct removes a product, its recipe and its level row.
func (s *Service) DeleteProduct(ctx context.Context, businessID, id int64) error {
	if err := s.repo.DeleteProduct(ctx, businessID, id); err != nil {
		return err
	}
	s.invalidate(ctx, businessID)
	return nil
}

// ReplaceRecipe swaps a product's component requirements of one kind
// wholesale. The product must exist; component rows are not verified
// here because a dangling reference degrades to zero availability
// rather than failing the product view.
func (s *Service) ReplaceRecipe(ctx context.Context, businessID, productID int64, kind ComponentKind, inputs []RequirementInput) error {
	if kind != KindIngredient && kind != KindConsumable {
		return fmt.Errorf("catalog: recipes hold ingredients or consumables, got %q", kind)
	}
	if _, err := s.repo.GetProduct(ctx, businessID, productID); err != nil {
		return err
	}
	if err := s.repo.ReplaceRequirements(ctx, businessID, productID, kind, inputs); err != nil {
		return fmt.Errorf("replace recipe: %w", err)
	}
	s.invalidate(ctx, businessID)
	return nil
}

// Recipe lists the requirements of one kind for a product.
func (s *Service) Recipe(ctx context.Context, businessID, productID int64, kind ComponentKind) ([]Requirement, error) {
	return s.repo.ListRequirements(ctx, businessID, productID, kind)
}

// ReplaceSizes swaps a product's size variants wholesale. The product
// must exist and have HasSizes set; blank size names are rejected.
func (s *Service) ReplaceSizes(ctx context.Context, businessID, productID int64, inputs []ProductSizeInput) error {
	product, err := s.repo.GetProduct(ctx, businessID, productID)
	if err != nil {
		return err
	}
	if !product.HasSizes {
		return ErrSizesDisabled
	}
	for i := range inputs {
		inputs[i].Name = strings.TrimSpace(inputs[i].Name)
		if inputs[i].Name == "" {
			return ErrNameRequired
		}
	}
	if err := s.repo.ReplaceSizes(ctx, businessID, productID, inputs); err != nil {
		return fmt.Errorf("replace sizes: %w", err)
	}
	return nil
}

// Sizes lists a product's size variants.
func (s *Service) Sizes(ctx context.Context, businessID, productID int64) ([]ProductSize, error) {
	return s.repo.ListSizes(ctx, businessID, productID)
}

// CreateComponent validates and inserts a component of any kind.
func (s *Service) CreateComponent(ctx context.Context, component Component) (Component, error) {
	component.Name = strings.TrimSpace(component.Name)
	if component.Name == "" {
		return Component{}, ErrNameRequired
	}
	if !ValidComponentKind(component.Kind) {
		return Component{}, fmt.Errorf("catalog: unknown component kind %q", component.Kind)
	}
	id, err := s.repo.CreateComponent(ctx, component)
	if err != nil {
		return Component{}, fmt.Errorf("create %s: %w", component.Kind, err)
	}
	component.ID = id
	return component, nil
}

// GetComponent fetches one component.
func (s *Service) GetComponent(ctx context.Context, businessID int64, kind ComponentKind, id int64) (Component, error) {
	return s.repo.GetComponent(ctx, businessID, kind, id)
}

// ListComponents lists components of one kind.
func (s *Service) ListComponents(ctx context.Context, businessID int64, kind ComponentKind, filter ListFilter) ([]Component, error) {
	return s.repo.ListComponents(ctx, businessID, kind, filter)
}

// UpdateComponent rewrites a component.
func (s *Service) UpdateComponent(ctx context.Context, component Component) (Component, error) {
	component.Name = strings.TrimSpace(component.Name)
	if component.Name == "" {
		return Component{}, ErrNameRequired
	}
	if err := s.repo.UpdateComponent(ctx, component); err != nil {
		return Component{}, fmt.Errorf("update %s: %w", component.Kind, err)
	}
	return component, nil
}

// DeleteComponent removes a component; recipes referencing it keep
// their rows and read as zero availability.
func (s *Service) DeleteComponent(ctx context.Context, businessID int64, kind ComponentKind, id int64) error {
	if err := s.repo.DeleteComponent(ctx, businessID, kind, id); err != nil {
		return err
	}
	s.invalidate(ctx, businessID)
	return nil
}

// CreateUnit inserts a unit.
func (s *Service) CreateUnit(ctx context.Context, unit Unit) (Unit, error) {
	unit.Name = strings.TrimSpace(unit.Name)
	if unit.Name == "" {
		return Unit{}, ErrNameRequired
	}
	id, err := s.repo.CreateUnit(ctx, unit)
	if err != nil {
		return Unit{}, fmt.Errorf("create unit: %w", err)
	}
	unit.ID = id
	return unit, nil
}

// ListUnits lists units for a business.
func (s *Service) ListUnits(ctx context.Context, businessID int64) ([]Unit, error) {
	return s.repo.ListUnits(ctx, businessID)
}

// DeleteUnit removes a unit.
func (s *Service) DeleteUnit(ctx context.Context, businessID, id int64) error {
	return s.repo.DeleteUnit(ctx, businessID, id)
}
