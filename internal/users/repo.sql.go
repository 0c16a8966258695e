package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists members in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

var _ RepositoryPort = (*Repository)(nil)

const memberColumns = `u.id, u.business_id, u.email, u.name, u.role_id, r.name, u.is_owner, u.is_active, u.created_at, u.updated_at`

func scanMember(row pgx.Row) (Member, error) {
	var m Member
	err := row.Scan(&m.ID, &m.BusinessID, &m.Email, &m.Name, &m.RoleID, &m.RoleName,
		&m.IsOwner, &m.IsActive, &m.CreatedAt, &m.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Member{}, ErrNotFound
	}
	if err != nil {
		return Member{}, fmt.Errorf("scan member: %w", err)
	}
	return m, nil
}

func (r *Repository) Invite(ctx context.Context, member Member, passwordHash string) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO users (business_id, email, name, password_hash, role_id, is_owner, is_active)
		VALUES ($1, $2, $3, $4, $5, FALSE, TRUE)
		RETURNING id`,
		member.BusinessID, member.Email, member.Name, passwordHash, member.RoleID,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			switch pgErr.Code {
			case "23505":
				return 0, ErrEmailTaken
			case "23503":
				return 0, ErrRoleNotFound
			}
		}
		return 0, fmt.Errorf("insert member: %w", err)
	}
	return id, nil
}

func (r *Repository) Get(ctx context.Context, businessID, id int64) (Member, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+memberColumns+`
		FROM users u
		LEFT JOIN roles r ON r.id = u.role_id
		WHERE u.id = $1 AND u.business_id = $2`,
		id, businessID)
	return scanMember(row)
}

func (r *Repository) List(ctx context.Context, businessID int64) ([]Member, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+memberColumns+`
		FROM users u
		LEFT JOIN roles r ON r.id = u.role_id
		WHERE u.business_id = $1
		ORDER BY u.name`,
		businessID)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var out []Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *Repository) Update(ctx context.Context, member Member) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE users
		SET name = $1, role_id = $2, is_active = $3, updated_at = now()
		WHERE id = $4 AND business_id = $5 AND is_owner = FALSE`,
		member.Name, member.RoleID, member.IsActive, member.ID, member.BusinessID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return ErrRoleNotFound
		}
		return fmt.Errorf("update member: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, businessID, id int64) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM users
		WHERE id = $1 AND business_id = $2 AND is_owner = FALSE`,
		id, businessID)
	if err != nil {
		return fmt.Errorf("delete member: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
