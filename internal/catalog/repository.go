package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-erp/meridian-erp/internal/platform/db"
)

// Repository persists catalog data.
type Repository interface {
	CreateProduct(ctx context.Context, product Product) (int64, error)
	GetProduct(ctx context.Context, businessID, id int64) (Product, error)
	ListProducts(ctx context.Context, businessID int64, filter ListFilter) ([]Product, error)
	UpdateProduct(ctx context.Context, product Product) error
	DeleteProduct(ctx context.Context, businessID, id int64) error

	CreateComponent(ctx context.Context, component Component) (int64, error)
	GetComponent(ctx context.Context, businessID int64, kind ComponentKind, id int64) (Component, error)
	ListComponents(ctx context.Context, businessID int64, kind ComponentKind, filter ListFilter) ([]Component, error)
	UpdateComponent(ctx context.Context, component Component) error
	DeleteComponent(ctx context.Context, businessID int64, kind ComponentKind, id int64) error

	CreateUnit(ctx context.Context, unit Unit) (int64, error)
	ListUnits(ctx context.Context, businessID int64) ([]Unit, error)
	DeleteUnit(ctx context.Context, businessID, id int64) error

	ListRequirements(ctx context.Context, businessID, productID int64, kind ComponentKind) ([]Requirement, error)
	ReplaceRequirements(ctx context.Context, businessID, productID int64, kind ComponentKind, inputs []RequirementInput) error

	ListSizes(ctx context.Context, businessID, productID int64) ([]ProductSize, error)
	ReplaceSizes(ctx context.Context, businessID, productID int64, inputs []ProductSizeInput) error
}

// PGRepository is the PostgreSQL implementation of Repository.
type PGRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs PGRepository.
func NewRepository(pool *pgxpool.Pool) *PGRepository {
	return &PGRepository{pool: pool}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func componentTable(kind ComponentKind) string {
	switch kind {
	case KindIngredient:
		return "ingredients"
	case KindConsumable:
		return "consumables"
	default:
		return "addons"
	}
}

func requirementTable(kind ComponentKind) (table, fk string) {
	if kind == KindConsumable {
		return "product_consumables", "consumable_id"
	}
	return "product_ingredients", "ingredient_id"
}

// CreateProduct inserts a product row.
func (r *PGRepository) CreateProduct(ctx context.Context, product Product) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO products (business_id, name, search_name, has_ingredients, has_consumables, has_sizes, quantity, cost_price, selling_price, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,NOW(),NOW()) RETURNING id`,
		product.BusinessID, product.Name, searchKey(product.Name), product.HasIngredients,
		product.HasConsumables, product.HasSizes, product.Quantity, product.CostPrice, product.SellingPrice).Scan(&id)
	if err != nil && isUniqueViolation(err) {
		return 0, ErrDuplicateName
	}
	return id, err
}

const productColumns = `id, business_id, name, has_ingredients, has_consumables, has_sizes, quantity, cost_price, selling_price, created_at, updated_at`

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.BusinessID, &p.Name, &p.HasIngredients, &p.HasConsumables,
		&p.HasSizes, &p.Quantity, &p.CostPrice, &p.SellingPrice, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// GetProduct fetches one product scoped to its business.
func (r *PGRepository) GetProduct(ctx context.Context, businessID, id int64) (Product, error) {
	product, err := scanProduct(r.pool.QueryRow(ctx,
		`SELECT `+productColumns+` FROM products WHERE id=$1 AND business_id=$2`, id, businessID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, err
	}
	return product, nil
}

// ListProducts returns products for a business, optionally searched.
func (r *PGRepository) ListProducts(ctx context.Context, businessID int64, filter ListFilter) ([]Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE business_id=$1`
	args := []any{businessID}
	if filter.Search != "" {
		args = append(args, "%"+searchKey(filter.Search)+"%")
		query += fmt.Sprintf(" AND search_name LIKE $%d", len(args))
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY name LIMIT $%d", len(args))
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// UpdateProduct rewrites the mutable product fields.
func (r *PGRepository) UpdateProduct(ctx context.Context, product Product) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE products SET name=$3, search_name=$4, has_ingredients=$5, has_consumables=$6, has_sizes=$7, quantity=$8, cost_price=$9, selling_price=$10, updated_at=NOW()
WHERE id=$1 AND business_id=$2`,
		product.ID, product.BusinessID, product.Name, searchKey(product.Name),
		product.HasIngredients, product.HasConsumables, product.HasSizes,
		product.Quantity, product.CostPrice, product.SellingPrice)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateName
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteProduct removes a product and its recipe rows.
func (r *PGRepository) DeleteProduct(ctx context.Context, businessID, id int64) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		for _, table := range []string{"product_ingredients", "product_consumables"} {
			if _, err := tx.Exec(ctx,
				fmt.Sprintf(`DELETE FROM %s WHERE product_id=$1 AND business_id=$2`, table), id, businessID); err != nil {
				return err
			}
		}
		if _, err := tx.Exec(ctx,
			`DELETE FROM inventory_levels WHERE business_id=$1 AND item_type='product' AND item_id=$2`, businessID, id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM products WHERE id=$1 AND business_id=$2`, id, businessID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// CreateComponent inserts into the table matching the component kind.
func (r *PGRepository) CreateComponent(ctx context.Context, component Component) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		fmt.Sprintf(`INSERT INTO %s (business_id, name, search_name, unit_id, price, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,NOW(),NOW()) RETURNING id`, componentTable(component.Kind)),
		component.BusinessID, component.Name, searchKey(component.Name), component.UnitID, component.Price).Scan(&id)
	if err != nil && isUniqueViolation(err) {
		return 0, ErrDuplicateName
	}
	return id, err
}

// GetComponent fetches one component.
func (r *PGRepository) GetComponent(ctx context.Context, businessID int64, kind ComponentKind, id int64) (Component, error) {
	c := Component{Kind: kind}
	err := r.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT id, business_id, name, unit_id, price, created_at, updated_at FROM %s WHERE id=$1 AND business_id=$2`, componentTable(kind)),
		id, businessID).Scan(&c.ID, &c.BusinessID, &c.Name, &c.UnitID, &c.Price, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Component{}, ErrNotFound
		}
		return Component{}, err
	}
	return c, nil
}

// ListComponents lists one kind of component for a business.
func (r *PGRepository) ListComponents(ctx context.Context, businessID int64, kind ComponentKind, filter ListFilter) ([]Component, error) {
	query := fmt.Sprintf(`SELECT id, business_id, name, unit_id, price, created_at, updated_at FROM %s WHERE business_id=$1`, componentTable(kind))
	args := []any{businessID}
	if filter.Search != "" {
		args = append(args, "%"+searchKey(filter.Search)+"%")
		query += fmt.Sprintf(" AND search_name LIKE $%d", len(args))
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY name LIMIT $%d", len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	components := []Component{}
	for rows.Next() {
		c := Component{Kind: kind}
		if err := rows.Scan(&c.ID, &c.BusinessID, &c.Name, &c.UnitID, &c.Price, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		components = append(components, c)
	}
	return components, rows.Err()
}

// UpdateComponent rewrites a component row.
func (r *PGRepository) UpdateComponent(ctx context.Context, component Component) error {
	tag, err := r.pool.Exec(ctx,
		fmt.Sprintf(`UPDATE %s SET name=$3, search_name=$4, unit_id=$5, price=$6, updated_at=NOW() WHERE id=$1 AND business_id=$2`, componentTable(component.Kind)),
		component.ID, component.BusinessID, component.Name, searchKey(component.Name), component.UnitID, component.Price)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateName
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteComponent removes a component and its level row. Requirements
// referencing it are left in place; availability reads them as zero
// stock.
func (r *PGRepository) DeleteComponent(ctx context.Context, businessID int64, kind ComponentKind, id int64) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`DELETE FROM inventory_levels WHERE business_id=$1 AND item_type=$2 AND item_id=$3`,
			businessID, string(kind), id); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx,
			fmt.Sprintf(`DELETE FROM %s WHERE id=$1 AND business_id=$2`, componentTable(kind)), id, businessID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// CreateUnit inserts a unit row.
func (r *PGRepository) CreateUnit(ctx context.Context, unit Unit) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx,
		`INSERT INTO units (business_id, name, abbreviation) VALUES ($1,$2,$3) RETURNING id`,
		unit.BusinessID, unit.Name, unit.Abbreviation).Scan(&id)
	if err != nil && isUniqueViolation(err) {
		return 0, ErrDuplicateName
	}
	return id, err
}

// ListUnits lists units for a business.
func (r *PGRepository) ListUnits(ctx context.Context, businessID int64) ([]Unit, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, business_id, name, abbreviation FROM units WHERE business_id=$1 ORDER BY name`, businessID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	units := []Unit{}
	for rows.Next() {
		var u Unit
		if err := rows.Scan(&u.ID, &u.BusinessID, &u.Name, &u.Abbreviation); err != nil {
			return nil, err
		}
		units = append(units, u)
	}
	return units, rows.Err()
}

// DeleteUnit removes a unit row.
func (r *PGRepository) DeleteUnit(ctx context.Context, businessID, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM units WHERE id=$1 AND business_id=$2`, id, businessID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ListRequirements returns the recipe edges of one kind for a product.
func (r *PGRepository) ListRequirements(ctx context.Context, businessID, productID int64, kind ComponentKind) ([]Requirement, error) {
	table, fk := requirementTable(kind)
	rows, err := r.pool.Query(ctx,
		fmt.Sprintf(`SELECT id, business_id, product_id, %s, quantity, unit_id FROM %s WHERE product_id=$1 AND business_id=$2 ORDER BY id`, fk, table),
		productID, businessID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	requirements := []Requirement{}
	for rows.Next() {
		req := Requirement{Kind: kind}
		if err := rows.Scan(&req.ID, &req.BusinessID, &req.ProductID, &req.ComponentID, &req.Quantity, &req.UnitID); err != nil {
			return nil, err
		}
		requirements = append(requirements, req)
	}
	return requirements, rows.Err()
}

// ReplaceRequirements swaps a product's recipe edges of one kind
// wholesale: delete all, reinsert.
func (r *PGRepository) ReplaceRequirements(ctx context.Context, businessID, productID int64, kind ComponentKind, inputs []RequirementInput) error {
	table, fk := requirementTable(kind)
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			fmt.Sprintf(`DELETE FROM %s WHERE product_id=$1 AND business_id=$2`, table), productID, businessID); err != nil {
			return err
		}
		for _, input := range inputs {
			if _, err := tx.Exec(ctx,
				fmt.Sprintf(`INSERT INTO %s (business_id, product_id, %s, quantity, unit_id) VALUES ($1,$2,$3,$4,$5)`, table, fk),
				businessID, productID, input.ComponentID, input.Quantity, input.UnitID); err != nil {
				return err
			}
		}
		return nil
	})
}

// ListSizes returns the size variants for a product.
func (r *PGRepository) ListSizes(ctx context.Context, businessID, productID int64) ([]ProductSize, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, business_id, product_id, name, cost_price, selling_price FROM product_sizes WHERE product_id=$1 AND business_id=$2 ORDER BY id`,
		productID, businessID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sizes := []ProductSize{}
	for rows.Next() {
		var size ProductSize
		if err := rows.Scan(&size.ID, &size.BusinessID, &size.ProductID, &size.Name, &size.CostPrice, &size.SellingPrice); err != nil {
			return nil, err
		}
		sizes = append(sizes, size)
	}
	return sizes, rows.Err()
}

// ReplaceSizes swaps a product's size variants wholesale.
func (r *PGRepository) ReplaceSizes(ctx context.Context, businessID, productID int64, inputs []ProductSizeInput) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx,
			`DELETE FROM product_sizes WHERE product_id=$1 AND business_id=$2`, productID, businessID); err != nil {
			return err
		}
		for _, input := range inputs {
			if _, err := tx.Exec(ctx,
				`INSERT INTO product_sizes (business_id, product_id, name, cost_price, selling_price) VALUES ($1,$2,$3,$4,$5)`,
				businessID, productID, input.Name, input.CostPrice, input.SellingPrice); err != nil {
				return err
			}
		}
		return nil
	})
}

var _ Repository = (*PGRepository)(nil)
