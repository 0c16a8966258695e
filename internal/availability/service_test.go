package availability

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type memorySnapshotRepo struct {
	product    ProductInput
	productErr error
	components map[ComponentType][]ComponentSnapshot
	loads      int
}

func (r *memorySnapshotRepo) LoadProduct(ctx context.Context, businessID, productID int64) (ProductInput, error) {
	r.loads++
	if r.productErr != nil {
		return ProductInput{}, r.productErr
	}
	return r.product, nil
}

func (r *memorySnapshotRepo) LoadComponents(ctx context.Context, businessID, productID int64, kind ComponentType) ([]ComponentSnapshot, error) {
	return r.components[kind], nil
}

func newTestCache(t *testing.T) *Cache {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, time.Minute)
}

func TestForProductComputesAndCaches(t *testing.T) {
	repo := &memorySnapshotRepo{
		product: ProductInput{ID: 1, HasIngredients: true},
		components: map[ComponentType][]ComponentSnapshot{
			ComponentIngredient: {
				{ComponentID: 10, Name: "Flour", Type: ComponentIngredient, RequiredQuantity: 2, AvailableQuantity: 10},
				{ComponentID: 11, Name: "Sugar", Type: ComponentIngredient, RequiredQuantity: 1, AvailableQuantity: 3},
			},
		},
	}
	svc := NewService(repo, newTestCache(t))
	ctx := context.Background()

	result, err := svc.ForProduct(ctx, 1, 1)
	require.NoError(t, err)
	require.InDelta(t, 3, result.MaxProducibleQuantity, 0.0001)
	require.Equal(t, 1, repo.loads)

	// Second call is served from cache.
	cached, err := svc.ForProduct(ctx, 1, 1)
	require.NoError(t, err)
	require.Equal(t, result, cached)
	require.Equal(t, 1, repo.loads)
}

func TestInvalidateForcesRecompute(t *testing.T) {
	repo := &memorySnapshotRepo{
		product: ProductInput{ID: 1, DirectQuantity: 5},
	}
	svc := NewService(repo, newTestCache(t))
	ctx := context.Background()

	_, err := svc.ForProduct(ctx, 1, 1)
	require.NoError(t, err)
	require.Equal(t, 1, repo.loads)

	require.NoError(t, svc.Invalidate(ctx, 1))

	repo.product.DirectQuantity = 7
	result, err := svc.ForProduct(ctx, 1, 1)
	require.NoError(t, err)
	require.InDelta(t, 7, result.MaxProducibleQuantity, 0.0001)
	require.Equal(t, 2, repo.loads)
}

func TestInvalidateScopedToBusiness(t *testing.T) {
	repo := &memorySnapshotRepo{product: ProductInput{ID: 1, DirectQuantity: 5}}
	svc := NewService(repo, newTestCache(t))
	ctx := context.Background()

	_, err := svc.ForProduct(ctx, 1, 1)
	require.NoError(t, err)
	_, err = svc.ForProduct(ctx, 2, 1)
	require.NoError(t, err)
	require.Equal(t, 2, repo.loads)

	require.NoError(t, svc.Invalidate(ctx, 1))

	// Business 2's view is still cached; business 1 recomputes.
	_, err = svc.ForProduct(ctx, 2, 1)
	require.NoError(t, err)
	require.Equal(t, 2, repo.loads)
	_, err = svc.ForProduct(ctx, 1, 1)
	require.NoError(t, err)
	require.Equal(t, 3, repo.loads)
}

func TestForProductPropagatesLoadError(t *testing.T) {
	repo := &memorySnapshotRepo{productErr: ErrProductNotFound}
	svc := NewService(repo, newTestCache(t))

	_, err := svc.ForProduct(context.Background(), 1, 42)
	require.ErrorIs(t, err, ErrProductNotFound)
}

func TestForProductsOrdersResults(t *testing.T) {
	repo := &memorySnapshotRepo{product: ProductInput{ID: 1, DirectQuantity: 5}}
	svc := NewService(repo, NewCache(nil, 0))

	results, err := svc.ForProducts(context.Background(), 1, []int64{3, 1, 2})
	require.NoError(t, err)
	require.Len(t, results, 3)
}
