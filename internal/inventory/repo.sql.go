package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists inventory data in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// TxRepository exposes transactional operations used by the service.
type TxRepository interface {
	InsertTransaction(ctx context.Context, tx StockTransaction) (int64, error)
	GetTransactionForUpdate(ctx context.Context, businessID, id int64) (StockTransaction, error)
	UpdateTransaction(ctx context.Context, tx StockTransaction) error
	GetLevelForUpdate(ctx context.Context, businessID int64, itemType ItemType, itemID int64) (Level, error)
	UpsertLevel(ctx context.Context, level Level) error
}

type txRepository struct {
	tx pgx.Tx
}

// WithTx executes the callback inside a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	if r == nil {
		return errors.New("inventory repository not initialised")
	}
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.RepeatableRead})
	if err != nil {
		return err
	}
	wrapper := &txRepository{tx: tx}
	if err := fn(ctx, wrapper); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

const transactionColumns = `id, business_id, code, item_type, item_id, quantity, cost_per_unit, total_cost, discount, status, payment_status, paid_amount, unpaid_amount, note, created_by, created_at, updated_at`

func scanTransaction(row pgx.Row) (StockTransaction, error) {
	var tx StockTransaction
	err := row.Scan(&tx.ID, &tx.BusinessID, &tx.Code, &tx.ItemType, &tx.ItemID, &tx.Quantity,
		&tx.CostPerUnit, &tx.TotalCost, &tx.Discount, &tx.Status, &tx.PaymentStatus,
		&tx.PaidAmount, &tx.UnpaidAmount, &tx.Note, &tx.CreatedBy, &tx.CreatedAt, &tx.UpdatedAt)
	return tx, err
}

// GetTransaction fetches a transaction scoped to its business.
func (r *Repository) GetTransaction(ctx context.Context, businessID, id int64) (StockTransaction, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+transactionColumns+` FROM stock_transactions WHERE id=$1 AND business_id=$2`, id, businessID)
	tx, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return StockTransaction{}, ErrNotFound
		}
		return StockTransaction{}, err
	}
	return tx, nil
}

// ListTransactions returns transactions filtered and newest first.
func (r *Repository) ListTransactions(ctx context.Context, businessID int64, filter ListFilter) ([]StockTransaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM stock_transactions WHERE business_id=$1`
	args := []any{businessID}
	if filter.ItemType != "" {
		args = append(args, filter.ItemType)
		query += fmt.Sprintf(" AND item_type=$%d", len(args))
	}
	if filter.ItemID != 0 {
		args = append(args, filter.ItemID)
		query += fmt.Sprintf(" AND item_id=$%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		query += fmt.Sprintf(" AND status=$%d", len(args))
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC, id DESC LIMIT $%d", len(args))
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	txs := []StockTransaction{}
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}
	return txs, rows.Err()
}

// GetLevel fetches one level row.
func (r *Repository) GetLevel(ctx context.Context, businessID int64, itemType ItemType, itemID int64) (Level, error) {
	var level Level
	err := r.pool.QueryRow(ctx,
		`SELECT business_id, item_type, item_id, quantity, average_cost, total_value, updated_at
FROM inventory_levels WHERE business_id=$1 AND item_type=$2 AND item_id=$3`,
		businessID, itemType, itemID).
		Scan(&level.BusinessID, &level.ItemType, &level.ItemID, &level.Quantity, &level.AverageCost, &level.TotalValue, &level.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Level{}, ErrLevelNotFound
		}
		return Level{}, err
	}
	return level, nil
}

// ListLevels returns level rows for a business, optionally one kind.
func (r *Repository) ListLevels(ctx context.Context, businessID int64, itemType ItemType) ([]Level, error) {
	query := `SELECT business_id, item_type, item_id, quantity, average_cost, total_value, updated_at
FROM inventory_levels WHERE business_id=$1`
	args := []any{businessID}
	if itemType != "" {
		args = append(args, itemType)
		query += fmt.Sprintf(" AND item_type=$%d", len(args))
	}
	query += " ORDER BY item_type, item_id"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	levels := []Level{}
	for rows.Next() {
		var level Level
		if err := rows.Scan(&level.BusinessID, &level.ItemType, &level.ItemID, &level.Quantity, &level.AverageCost, &level.TotalValue, &level.UpdatedAt); err != nil {
			return nil, err
		}
		levels = append(levels, level)
	}
	return levels, rows.Err()
}

func (r *txRepository) InsertTransaction(ctx context.Context, tx StockTransaction) (int64, error) {
	var id int64
	err := r.tx.QueryRow(ctx,
		`INSERT INTO stock_transactions (business_id, code, item_type, item_id, quantity, cost_per_unit, total_cost, discount, status, payment_status, paid_amount, unpaid_amount, note, created_by, created_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16) RETURNING id`,
		tx.BusinessID, tx.Code, tx.ItemType, tx.ItemID, tx.Quantity, tx.CostPerUnit, tx.TotalCost,
		tx.Discount, tx.Status, tx.PaymentStatus, tx.PaidAmount, tx.UnpaidAmount, tx.Note,
		tx.CreatedBy, tx.CreatedAt, tx.UpdatedAt).Scan(&id)
	return id, err
}

func (r *txRepository) GetTransactionForUpdate(ctx context.Context, businessID, id int64) (StockTransaction, error) {
	row := r.tx.QueryRow(ctx,
		`SELECT `+transactionColumns+` FROM stock_transactions WHERE id=$1 AND business_id=$2 FOR UPDATE`, id, businessID)
	tx, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return StockTransaction{}, ErrNotFound
		}
		return StockTransaction{}, err
	}
	return tx, nil
}

func (r *txRepository) UpdateTransaction(ctx context.Context, tx StockTransaction) error {
	tag, err := r.tx.Exec(ctx,
		`UPDATE stock_transactions
SET quantity=$3, cost_per_unit=$4, total_cost=$5, discount=$6, status=$7, payment_status=$8, paid_amount=$9, unpaid_amount=$10, note=$11, updated_at=$12
WHERE id=$1 AND business_id=$2`,
		tx.ID, tx.BusinessID, tx.Quantity, tx.CostPerUnit, tx.TotalCost, tx.Discount,
		tx.Status, tx.PaymentStatus, tx.PaidAmount, tx.UnpaidAmount, tx.Note, tx.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *txRepository) GetLevelForUpdate(ctx context.Context, businessID int64, itemType ItemType, itemID int64) (Level, error) {
	var level Level
	err := r.tx.QueryRow(ctx,
		`SELECT business_id, item_type, item_id, quantity, average_cost, total_value, updated_at
FROM inventory_levels WHERE business_id=$1 AND item_type=$2 AND item_id=$3 FOR UPDATE`,
		businessID, itemType, itemID).
		Scan(&level.BusinessID, &level.ItemType, &level.ItemID, &level.Quantity, &level.AverageCost, &level.TotalValue, &level.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Level{BusinessID: businessID, ItemType: itemType, ItemID: itemID}, ErrLevelNotFound
		}
		return Level{}, err
	}
	return level, nil
}

func (r *txRepository) UpsertLevel(ctx context.Context, level Level) error {
	_, err := r.tx.Exec(ctx,
		`INSERT INTO inventory_levels (business_id, item_type, item_id, quantity, average_cost, total_value, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,NOW())
ON CONFLICT (business_id, item_type, item_id)
DO UPDATE SET quantity=EXCLUDED.quantity, average_cost=EXCLUDED.average_cost, total_value=EXCLUDED.total_value, updated_at=NOW()`,
		level.BusinessID, level.ItemType, level.ItemID, level.Quantity, level.AverageCost, level.TotalValue)
	return err
}

var _ RepositoryPort = (*Repository)(nil)
