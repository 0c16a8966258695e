package availability

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrProductNotFound indicates the product row does not exist for the
// business.
var ErrProductNotFound = errors.New("availability: product not found")

// Repository loads the snapshot the calculator runs over.
type Repository interface {
	LoadProduct(ctx context.Context, businessID, productID int64) (ProductInput, error)
	LoadComponents(ctx context.Context, businessID, productID int64, kind ComponentType) ([]ComponentSnapshot, error)
}

// PGRepository reads snapshots from PostgreSQL.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs PGRepository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

// LoadProduct fetches the fields the calculation depends on.
func (r *PGRepository) LoadProduct(ctx context.Context, businessID, productID int64) (ProductInput, error) {
	var product ProductInput
	err := r.pool.QueryRow(ctx,
		`SELECT id, quantity, has_ingredients, has_consumables
FROM products WHERE id=$1 AND business_id=$2`,
		productID, businessID).
		Scan(&product.ID, &product.DirectQuantity, &product.HasIngredients, &product.HasConsumables)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ProductInput{}, ErrProductNotFound
		}
		return ProductInput{}, err
	}
	return product, nil
}

// LoadComponents resolves the product's requirements of one kind
// against current inventory levels. Dangling references and missing
// level rows come back with available quantity 0 via the LEFT JOINs.
func (r *PGRepository) LoadComponents(ctx context.Context, businessID, productID int64, kind ComponentType) ([]ComponentSnapshot, error) {
	var table, fk, componentTable string
	switch kind {
	case ComponentIngredient:
		table, fk, componentTable = "product_ingredients", "ingredient_id", "ingredients"
	case ComponentConsumable:
		table, fk, componentTable = "product_consumables", "consumable_id", "consumables"
	default:
		return nil, fmt.Errorf("availability: unknown component type %q", kind)
	}

	query := fmt.Sprintf(`SELECT pr.%s,
	COALESCE(c.name, ''),
	COALESCE(u.name, ''),
	pr.quantity,
	COALESCE(lvl.quantity, 0)
FROM %s pr
LEFT JOIN %s c ON c.id = pr.%s AND c.business_id = pr.business_id
LEFT JOIN units u ON u.id = pr.unit_id
LEFT JOIN inventory_levels lvl
	ON lvl.business_id = pr.business_id
	AND lvl.item_type = '%s'
	AND lvl.item_id = pr.%s
WHERE pr.product_id = $1 AND pr.business_id = $2
ORDER BY pr.id`, fk, table, componentTable, fk, string(kind), fk)

	rows, err := r.pool.Query(ctx, query, productID, businessID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snapshots []ComponentSnapshot
	for rows.Next() {
		snap := ComponentSnapshot{Type: kind}
		if err := rows.Scan(&snap.ComponentID, &snap.Name, &snap.Unit, &snap.RequiredQuantity, &snap.AvailableQuantity); err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return snapshots, nil
}
