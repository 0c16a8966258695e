package masterdata

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists locations in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

var _ RepositoryPort = (*Repository)(nil)

const locationColumns = `id, business_id, name, address, phone, is_active, created_at, updated_at`

func scanLocation(row pgx.Row) (Location, error) {
	var l Location
	err := row.Scan(&l.ID, &l.BusinessID, &l.Name, &l.Address, &l.Phone,
		&l.IsActive, &l.CreatedAt, &l.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Location{}, ErrNotFound
	}
	if err != nil {
		return Location{}, fmt.Errorf("scan location: %w", err)
	}
	return l, nil
}

func (r *Repository) Create(ctx context.Context, location Location) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO locations (business_id, name, address, phone, is_active)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		location.BusinessID, location.Name, location.Address, location.Phone, location.IsActive,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert location: %w", err)
	}
	return id, nil
}

func (r *Repository) Get(ctx context.Context, businessID, id int64) (Location, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+locationColumns+` FROM locations WHERE id = $1 AND business_id = $2`,
		id, businessID)
	return scanLocation(row)
}

func (r *Repository) List(ctx context.Context, businessID int64) ([]Location, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+locationColumns+` FROM locations WHERE business_id = $1 ORDER BY name`,
		businessID)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	defer rows.Close()

	var out []Location
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *Repository) Update(ctx context.Context, location Location) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE locations
		SET name = $1, address = $2, phone = $3, is_active = $4, updated_at = now()
		WHERE id = $5 AND business_id = $6`,
		location.Name, location.Address, location.Phone, location.IsActive,
		location.ID, location.BusinessID)
	if err != nil {
		return fmt.Errorf("update location: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, businessID, id int64) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM locations WHERE id = $1 AND business_id = $2`, id, businessID)
	if err != nil {
		return fmt.Errorf("delete location: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
