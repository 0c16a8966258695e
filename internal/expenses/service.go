package expenses

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// RepositoryPort is what Service needs from persistence.
type RepositoryPort interface {
	Create(ctx context.Context, expense Expense) (int64, error)
	Get(ctx context.Context, businessID, id int64) (Expense, error)
	List(ctx context.Context, businessID int64, filter ListFilter) ([]Expense, error)
	Update(ctx context.Context, expense Expense) error
	Delete(ctx context.Context, businessID, id int64) error
	CategoryTotals(ctx context.Context, businessID int64, from, to time.Time) ([]CategoryTotal, error)
}

// Service owns expense rules.
type Service struct {
	repo RepositoryPort
}

// NewService constructs Service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

func validate(expense *Expense) error {
	expense.Category = strings.TrimSpace(expense.Category)
	if expense.Category == "" {
		return ErrCategoryRequired
	}
	if expense.Amount <= 0 {
		return ErrInvalidAmount
	}
	if expense.IncurredAt.IsZero() {
		expense.IncurredAt = time.Now().UTC()
	}
	return nil
}

// Create inserts an expense.
func (s *Service) Create(ctx context.Context, expense Expense) (Expense, error) {
	if err := validate(&expense); err != nil {
		return Expense{}, err
	}
	id, err := s.repo.Create(ctx, expense)
	if err != nil {
		return Expense{}, fmt.Errorf("create expense: %w", err)
	}
	expense.ID = id
	return expense, nil
}

// Get fetches one expense.
func (s *Service) Get(ctx context.Context, businessID, id int64) (Expense, error) {
	return s.repo.Get(ctx, businessID, id)
}

// List lists expenses with filters.
func (s *Service) List(ctx context.Context, businessID int64, filter ListFilter) ([]Expense, error) {
	return s.repo.List(ctx, businessID, filter)
}

// Update rewrites an expense.
func (s *Service) Update(ctx context.Context, expense Expense) (Expense, error) {
	if err := validate(&expense); err != nil {
		return Expense{}, err
	}
	if err := s.repo.Update(ctx, expense); err != nil {
		return Expense{}, err
	}
	return s.repo.Get(ctx, expense.BusinessID, expense.ID)
}

// Delete removes an expense.
func (s *Service) Delete(ctx context.Context, businessID, id int64) error {
	return s.repo.Delete(ctx, businessID, id)
}

// MonthSummary aggregates one calendar month per category. Month
// bounds are half-open [first, first+1mo) in UTC.
func (s *Service) MonthSummary(ctx context.Context, businessID int64, year int, month time.Month) (MonthlySummary, error) {
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 1, 0)
	totals, err := s.repo.CategoryTotals(ctx, businessID, from, to)
	if err != nil {
		return MonthlySummary{}, fmt.Errorf("month summary: %w", err)
	}
	summary := MonthlySummary{Year: year, Month: month, Categories: totals}
	for _, ct := range totals {
		summary.Total += ct.Total
	}
	return summary, nil
}
