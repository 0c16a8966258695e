package audit

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository reads the audit trail from PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

var _ RepositoryPort = (*Repository)(nil)

// Audit rows carry no tenant column; scoping goes through the actor's
// user row instead.
func timelineWhere(filter TimelineFilter, args *[]any) string {
	where := " WHERE u.business_id = $1"
	if filter.Action != "" {
		*args = append(*args, filter.Action)
		where += fmt.Sprintf(" AND a.action = $%d", len(*args))
	}
	if filter.Entity != "" {
		*args = append(*args, filter.Entity)
		where += fmt.Sprintf(" AND a.entity = $%d", len(*args))
	}
	if !filter.From.IsZero() {
		*args = append(*args, filter.From)
		where += fmt.Sprintf(" AND a.occurred_at >= $%d", len(*args))
	}
	if !filter.To.IsZero() {
		*args = append(*args, filter.To)
		where += fmt.Sprintf(" AND a.occurred_at < $%d", len(*args))
	}
	return where
}

func (r *Repository) Window(ctx context.Context, businessID int64, filter TimelineFilter, limit, offset int) ([]Entry, error) {
	args := []any{businessID}
	query := `
		SELECT a.id, a.actor_id, u.name, a.action, a.entity, a.entity_id, a.meta, a.occurred_at
		FROM audit_logs a
		JOIN users u ON u.id = a.actor_id` + timelineWhere(filter, &args)
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY a.occurred_at DESC, a.id DESC LIMIT $%d", len(args))
	args = append(args, offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("audit timeline: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.ActorID, &e.ActorName, &e.Action, &e.Entity,
			&e.EntityID, &e.Meta, &e.At); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *Repository) Count(ctx context.Context, businessID int64, filter TimelineFilter) (int, error) {
	args := []any{businessID}
	query := `
		SELECT COUNT(*)
		FROM audit_logs a
		JOIN users u ON u.id = a.actor_id` + timelineWhere(filter, &args)

	var total int
	if err := r.pool.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("count audit entries: %w", err)
	}
	return total, nil
}
