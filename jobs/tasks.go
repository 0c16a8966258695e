package jobs

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-erp/meridian-erp/internal/availability"
	jobmetrics "github.com/meridian-erp/meridian-erp/internal/jobs"
	"github.com/meridian-erp/meridian-erp/internal/shared"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"

	// TaskLowStockScan flags inventory levels at or below the threshold.
	TaskLowStockScan = "inventory:low_stock_scan"
	// TaskIdempotencyCleanup prunes expired idempotency keys.
	TaskIdempotencyCleanup = "maintenance:idempotency_cleanup"
	// TaskAvailabilityWarmup precomputes availability for recipe products.
	TaskAvailabilityWarmup = "availability:warmup"
)

// LowStockPayload scopes a scan to one business, or all when zero.
type LowStockPayload struct {
	BusinessID int64 `json:"business_id"`
}

// NewLowStockScanTask constructs the low-stock scan task.
func NewLowStockScanTask(payload LowStockPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLowStockScan, data), nil
}

// NewIdempotencyCleanupTask constructs the cleanup task.
func NewIdempotencyCleanupTask() *asynq.Task {
	return asynq.NewTask(TaskIdempotencyCleanup, nil)
}

// NewAvailabilityWarmupTask constructs the warmup task.
func NewAvailabilityWarmupTask() *asynq.Task {
	return asynq.NewTask(TaskAvailabilityWarmup, nil)
}

// Tasks bundles the dependencies job handlers need.
type Tasks struct {
	Logger            *slog.Logger
	Pool              *pgxpool.Pool
	Availability      *availability.Service
	Idempotency       *shared.IdempotencyStore
	Metrics           *jobmetrics.Metrics
	LowStockThreshold float64
}

// HandleLowStockScan finds inventory levels at or below the threshold
// and logs one line per affected item so the back office can review
// reorder candidates.
func (t *Tasks) HandleLowStockScan(ctx context.Context, task *asynq.Task) error {
	return t.Metrics.Track(TaskLowStockScan).End(t.lowStockScan(ctx, task))
}

func (t *Tasks) lowStockScan(ctx context.Context, task *asynq.Task) error {
	var payload LowStockPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	query := `
		SELECT business_id, item_type, item_id, quantity
		FROM inventory_levels
		WHERE quantity <= $1`
	args := []any{t.LowStockThreshold}
	if payload.BusinessID != 0 {
		query += ` AND business_id = $2`
		args = append(args, payload.BusinessID)
	}

	rows, err := t.Pool.Query(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	flagged := 0
	for rows.Next() {
		var businessID, itemID int64
		var itemType string
		var quantity float64
		if err := rows.Scan(&businessID, &itemType, &itemID, &quantity); err != nil {
			return err
		}
		flagged++
		t.Logger.Warn("low stock",
			slog.Int64("business_id", businessID),
			slog.String("item_type", itemType),
			slog.Int64("item_id", itemID),
			slog.Float64("quantity", quantity))
	}
	if err := rows.Err(); err != nil {
		return err
	}
	t.Logger.Info("low stock scan finished", slog.Int("flagged", flagged))
	return nil
}

// HandleIdempotencyCleanup prunes idempotency keys older than a day.
func (t *Tasks) HandleIdempotencyCleanup(ctx context.Context, _ *asynq.Task) error {
	tracker := t.Metrics.Track(TaskIdempotencyCleanup)
	if err := t.Idempotency.Cleanup(ctx, 24*time.Hour); err != nil {
		return tracker.End(err)
	}
	t.Logger.Info("idempotency cleanup finished")
	return tracker.End(nil)
}

// HandleAvailabilityWarmup recomputes availability for every product
// whose quantity derives from components, priming the cache before
// the morning rush.
func (t *Tasks) HandleAvailabilityWarmup(ctx context.Context, _ *asynq.Task) error {
	return t.Metrics.Track(TaskAvailabilityWarmup).End(t.availabilityWarmup(ctx))
}

func (t *Tasks) availabilityWarmup(ctx context.Context) error {
	rows, err := t.Pool.Query(ctx, `
		SELECT business_id, id FROM products
		WHERE has_ingredients OR has_consumables
		ORDER BY business_id`)
	if err != nil {
		return err
	}
	defer rows.Close()

	byBusiness := make(map[int64][]int64)
	for rows.Next() {
		var businessID, productID int64
		if err := rows.Scan(&businessID, &productID); err != nil {
			return err
		}
		byBusiness[businessID] = append(byBusiness[businessID], productID)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	for businessID, productIDs := range byBusiness {
		if _, err := t.Availability.ForProducts(ctx, businessID, productIDs); err != nil {
			t.Logger.Warn("availability warmup",
				slog.Int64("business_id", businessID), slog.Any("error", err))
		}
	}
	t.Logger.Info("availability warmup finished", slog.Int("businesses", len(byBusiness)))
	return nil
}
