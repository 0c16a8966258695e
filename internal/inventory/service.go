package inventory

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/meridian-erp/meridian-erp/internal/shared"
)

// RepositoryPort abstracts repository usage for service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	GetTransaction(ctx context.Context, businessID, id int64) (StockTransaction, error)
	ListTransactions(ctx context.Context, businessID int64, filter ListFilter) ([]StockTransaction, error)
	GetLevel(ctx context.Context, businessID int64, itemType ItemType, itemID int64) (Level, error)
	ListLevels(ctx context.Context, businessID int64, itemType ItemType) ([]Level, error)
}

// AuditPort abstracts audit logging.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// ViewInvalidator drops cached quantity and availability views after
// stock moves.
type ViewInvalidator interface {
	Invalidate(ctx context.Context, businessID int64) error
}

// TaskEnqueuer schedules follow-up background work.
type TaskEnqueuer interface {
	EnqueueLowStockScan(ctx context.Context, businessID int64) error
}

// ServiceConfig groups optional settings.
type ServiceConfig struct {
	AllowNegativeStock bool
}

// Service validates and persists stock transactions, keeping level
// rows and derived payment fields consistent.
type Service struct {
	repo        RepositoryPort
	audit       AuditPort
	idempotency *shared.IdempotencyStore
	invalidator ViewInvalidator
	tasks       TaskEnqueuer
	allowNeg    bool
}

// NewService builds Service. Audit, idempotency, invalidator and tasks
// may be nil; the corresponding side effects are skipped.
func NewService(repo RepositoryPort, audit AuditPort, idem *shared.IdempotencyStore, invalidator ViewInvalidator, tasks TaskEnqueuer, cfg ServiceConfig) *Service {
	return &Service{
		repo:        repo,
		audit:       audit,
		idempotency: idem,
		invalidator: invalidator,
		tasks:       tasks,
		allowNeg:    cfg.AllowNegativeStock,
	}
}

// settle derives (paid, unpaid) from the payable amount. A paid status
// forces full settlement regardless of the supplied paid amount.
func settle(totalCost, discount, paidAmount float64, status PaymentStatus) (float64, float64) {
	payable := totalCost - discount
	if payable < 0 {
		payable = 0
	}
	if status == PaymentPaid {
		return payable, 0
	}
	return paidAmount, math.Max(0, payable-paidAmount)
}

// signedQuantity maps a transaction to its effect on the level row.
// Ordered stock has not arrived and moves nothing.
func signedQuantity(tx StockTransaction) float64 {
	switch tx.Status {
	case StatusDelivered:
		return tx.Quantity
	case StatusDamaged, StatusReturned:
		return -tx.Quantity
	default:
		return 0
	}
}

func validatePost(input PostInput) error {
	if input.ItemID == 0 || !ValidItemType(input.ItemType) {
		return fmt.Errorf("inventory: item reference required")
	}
	if input.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	if input.CostPerUnit < 0 || input.Discount < 0 || input.PaidAmount < 0 {
		return ErrInvalidCost
	}
	if !ValidStatus(input.Status) || !ValidPaymentStatus(input.PaymentStatus) {
		return ErrInvalidStatus
	}
	return nil
}

// Post validates and persists a new stock transaction, updating the
// affected level row in the same database transaction.
func (s *Service) Post(ctx context.Context, businessID int64, input PostInput) (StockTransaction, error) {
	if err := validatePost(input); err != nil {
		return StockTransaction{}, err
	}
	now := time.Now().UTC()
	code := input.Code
	if code == "" {
		code = "STX-" + uuid.NewString()
	}

	record := StockTransaction{
		BusinessID:    businessID,
		Code:          code,
		ItemType:      input.ItemType,
		ItemID:        input.ItemID,
		Quantity:      input.Quantity,
		CostPerUnit:   input.CostPerUnit,
		TotalCost:     input.Quantity * input.CostPerUnit,
		Discount:      input.Discount,
		Status:        input.Status,
		PaymentStatus: input.PaymentStatus,
		Note:          input.Note,
		CreatedBy:     input.ActorID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	record.PaidAmount, record.UnpaidAmount = settle(record.TotalCost, record.Discount, input.PaidAmount, record.PaymentStatus)

	key := fmt.Sprintf("%s:%d:%s:%d", code, businessID, input.ItemType, input.ItemID)
	insertedKey := false
	if s.idempotency != nil {
		if err := s.idempotency.CheckAndInsert(ctx, key, "inventory"); err != nil {
			return StockTransaction{}, err
		}
		insertedKey = true
	}

	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		id, err := tx.InsertTransaction(ctx, record)
		if err != nil {
			return err
		}
		record.ID = id
		return s.applyLevelChange(ctx, tx, businessID, record.ItemType, record.ItemID, signedQuantity(record), record.CostPerUnit)
	})
	if err != nil {
		if insertedKey {
			_ = s.idempotency.Delete(ctx, key)
		}
		return StockTransaction{}, err
	}

	s.afterWrite(ctx, businessID, record, "inventory:post")
	return record, nil
}

// Update patches a transaction. Derived fields are recomputed from the
// persisted row merged with the patch inside one transaction, so stale
// client figures for fields not being updated can never leak in.
func (s *Service) Update(ctx context.Context, businessID, id int64, patch UpdateInput) (StockTransaction, error) {
	var updated StockTransaction
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		current, err := tx.GetTransactionForUpdate(ctx, businessID, id)
		if err != nil {
			return err
		}
		merged := current
		if patch.Quantity != nil {
			merged.Quantity = *patch.Quantity
		}
		if patch.CostPerUnit != nil {
			merged.CostPerUnit = *patch.CostPerUnit
		}
		if patch.Discount != nil {
			merged.Discount = *patch.Discount
		}
		if patch.Status != nil {
			merged.Status = *patch.Status
		}
		if patch.PaymentStatus != nil {
			merged.PaymentStatus = *patch.PaymentStatus
		}
		if patch.Note != nil {
			merged.Note = *patch.Note
		}

		if merged.Quantity <= 0 {
			return ErrInvalidQuantity
		}
		if merged.CostPerUnit < 0 || merged.Discount < 0 {
			return ErrInvalidCost
		}
		if !ValidStatus(merged.Status) || !ValidPaymentStatus(merged.PaymentStatus) {
			return ErrInvalidStatus
		}

		merged.TotalCost = merged.Quantity * merged.CostPerUnit
		paidAmount := current.PaidAmount
		if patch.PaidAmount != nil {
			if *patch.PaidAmount < 0 {
				return ErrInvalidCost
			}
			paidAmount = *patch.PaidAmount
		}
		merged.PaidAmount, merged.UnpaidAmount = settle(merged.TotalCost, merged.Discount, paidAmount, merged.PaymentStatus)
		merged.UpdatedAt = time.Now().UTC()

		// Reverse the old stock effect and apply the new one.
		oldEffect := signedQuantity(current)
		newEffect := signedQuantity(merged)
		if oldEffect != newEffect || (newEffect > 0 && merged.CostPerUnit != current.CostPerUnit) {
			if err := s.applyLevelChange(ctx, tx, businessID, current.ItemType, current.ItemID, -oldEffect, current.CostPerUnit); err != nil {
				return err
			}
			if err := s.applyLevelChange(ctx, tx, businessID, merged.ItemType, merged.ItemID, newEffect, merged.CostPerUnit); err != nil {
				return err
			}
		}

		if err := tx.UpdateTransaction(ctx, merged); err != nil {
			return err
		}
		updated = merged
		return nil
	})
	if err != nil {
		return StockTransaction{}, err
	}

	s.afterWrite(ctx, businessID, updated, "inventory:update")
	return updated, nil
}

// applyLevelChange folds a signed quantity into the level row using a
// moving average for inbound stock.
func (s *Service) applyLevelChange(ctx context.Context, tx TxRepository, businessID int64, itemType ItemType, itemID int64, qtyChange, unitCost float64) error {
	if qtyChange == 0 {
		return nil
	}
	level, err := tx.GetLevelForUpdate(ctx, businessID, itemType, itemID)
	if err != nil {
		if !errors.Is(err, ErrLevelNotFound) {
			return err
		}
		level = Level{BusinessID: businessID, ItemType: itemType, ItemID: itemID}
	}

	newQty := level.Quantity + qtyChange
	if math.Abs(newQty) < 1e-9 {
		newQty = 0
	}
	if !s.allowNeg && newQty < -1e-9 {
		return ErrNegativeStock
	}

	var newAvg float64
	if qtyChange > 0 {
		totalCost := level.Quantity*level.AverageCost + qtyChange*unitCost
		if newQty != 0 {
			newAvg = totalCost / newQty
		}
	} else if newQty > 0 {
		newAvg = level.AverageCost
	}

	level.Quantity = newQty
	level.AverageCost = newAvg
	level.TotalValue = newQty * newAvg
	level.UpdatedAt = time.Now().UTC()
	return tx.UpsertLevel(ctx, level)
}

func (s *Service) afterWrite(ctx context.Context, businessID int64, record StockTransaction, action string) {
	if s.invalidator != nil {
		_ = s.invalidator.Invalidate(ctx, businessID)
	}
	if s.tasks != nil {
		_ = s.tasks.EnqueueLowStockScan(ctx, businessID)
	}
	if s.audit != nil {
		_ = s.audit.Record(ctx, shared.AuditLog{
			ActorID:  record.CreatedBy,
			Action:   action,
			Entity:   "stock_transaction",
			EntityID: fmt.Sprintf("%d", record.ID),
			Meta: map[string]any{
				"business_id":   businessID,
				"item_type":     string(record.ItemType),
				"item_id":       record.ItemID,
				"quantity":      record.Quantity,
				"total_cost":    record.TotalCost,
				"unpaid_amount": record.UnpaidAmount,
			},
		})
	}
}

// Get fetches one transaction.
func (s *Service) Get(ctx context.Context, businessID, id int64) (StockTransaction, error) {
	return s.repo.GetTransaction(ctx, businessID, id)
}

// List returns transactions for a business.
func (s *Service) List(ctx context.Context, businessID int64, filter ListFilter) ([]StockTransaction, error) {
	return s.repo.ListTransactions(ctx, businessID, filter)
}

// LevelFor returns the current level for an item; a missing row reads
// as zero quantity rather than an error.
func (s *Service) LevelFor(ctx context.Context, businessID int64, itemType ItemType, itemID int64) (Level, error) {
	level, err := s.repo.GetLevel(ctx, businessID, itemType, itemID)
	if errors.Is(err, ErrLevelNotFound) {
		return Level{BusinessID: businessID, ItemType: itemType, ItemID: itemID}, nil
	}
	return level, err
}

// Levels lists level rows for a business, optionally narrowed by kind.
func (s *Service) Levels(ctx context.Context, businessID int64, itemType ItemType) ([]Level, error) {
	return s.repo.ListLevels(ctx, businessID, itemType)
}
