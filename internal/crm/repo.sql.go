package crm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists contacts in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

var _ RepositoryPort = (*Repository)(nil)

const contactColumns = `id, business_id, kind, name, email, phone, address, notes, created_by, created_at, updated_at`

func scanContact(row pgx.Row) (Contact, error) {
	var c Contact
	err := row.Scan(&c.ID, &c.BusinessID, &c.Kind, &c.Name, &c.Email, &c.Phone,
		&c.Address, &c.Notes, &c.CreatedBy, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Contact{}, ErrNotFound
	}
	if err != nil {
		return Contact{}, fmt.Errorf("scan contact: %w", err)
	}
	return c, nil
}

func (r *Repository) Create(ctx context.Context, contact Contact) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO contacts (business_id, kind, name, email, phone, address, notes, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		contact.BusinessID, contact.Kind, contact.Name, contact.Email,
		contact.Phone, contact.Address, contact.Notes, contact.CreatedBy,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert contact: %w", err)
	}
	return id, nil
}

func (r *Repository) Get(ctx context.Context, businessID, id int64) (Contact, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+contactColumns+` FROM contacts WHERE id = $1 AND business_id = $2`,
		id, businessID)
	return scanContact(row)
}

func (r *Repository) List(ctx context.Context, businessID int64, filter ListFilter) ([]Contact, error) {
	query := `SELECT ` + contactColumns + ` FROM contacts WHERE business_id = $1`
	args := []any{businessID}
	if filter.Kind != "" {
		args = append(args, filter.Kind)
		query += fmt.Sprintf(" AND kind = $%d", len(args))
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, "%"+search+"%")
		query += fmt.Sprintf(" AND (name ILIKE $%d OR email ILIKE $%d OR phone ILIKE $%d)",
			len(args), len(args), len(args))
	}
	query += " ORDER BY name"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	defer rows.Close()

	var out []Contact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repository) Update(ctx context.Context, contact Contact) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE contacts
		SET name = $1, email = $2, phone = $3, address = $4, notes = $5, updated_at = now()
		WHERE id = $6 AND business_id = $7`,
		contact.Name, contact.Email, contact.Phone, contact.Address, contact.Notes,
		contact.ID, contact.BusinessID)
	if err != nil {
		return fmt.Errorf("update contact: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) SetKind(ctx context.Context, businessID, id int64, kind ContactKind) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE contacts SET kind = $1, updated_at = now()
		WHERE id = $2 AND business_id = $3`,
		kind, id, businessID)
	if err != nil {
		return fmt.Errorf("set contact kind: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, businessID, id int64) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM contacts WHERE id = $1 AND business_id = $2`, id, businessID)
	if err != nil {
		return fmt.Errorf("delete contact: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
