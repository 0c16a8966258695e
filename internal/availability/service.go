package availability

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Service computes availability views on demand, serving cached copies
// when the inventory has not moved since they were built.
type Service struct {
	repo  Repository
	cache *Cache
}

// NewService builds Service.
func NewService(repo Repository, cache *Cache) *Service {
	return &Service{repo: repo, cache: cache}
}

// ForProduct returns the availability view for one product. The
// snapshot loads run in parallel; the calculation itself is pure.
func (s *Service) ForProduct(ctx context.Context, businessID, productID int64) (Result, error) {
	if cached, ok := s.cache.Get(ctx, businessID, productID); ok {
		return cached, nil
	}

	product, err := s.repo.LoadProduct(ctx, businessID, productID)
	if err != nil {
		return Result{}, err
	}

	var ingredients, consumables []ComponentSnapshot
	g, gctx := errgroup.WithContext(ctx)
	if product.HasIngredients {
		g.Go(func() error {
			var err error
			ingredients, err = s.repo.LoadComponents(gctx, businessID, productID, ComponentIngredient)
			return err
		})
	}
	if product.HasConsumables {
		g.Go(func() error {
			var err error
			consumables, err = s.repo.LoadComponents(gctx, businessID, productID, ComponentConsumable)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	result := Calculate(product, append(ingredients, consumables...))
	s.cache.Put(ctx, businessID, result)
	return result, nil
}

// ForProducts computes views for a list of products, used by the
// product-list screen and the cache warmup job.
func (s *Service) ForProducts(ctx context.Context, businessID int64, productIDs []int64) ([]Result, error) {
	results := make([]Result, 0, len(productIDs))
	for _, id := range productIDs {
		result, err := s.ForProduct(ctx, businessID, id)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, nil
}

// Invalidate drops cached views for the business after stock moved.
func (s *Service) Invalidate(ctx context.Context, businessID int64) error {
	return s.cache.InvalidateBusiness(ctx, businessID)
}
