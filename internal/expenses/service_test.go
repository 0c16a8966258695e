package expenses

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type memoryExpenseRepo struct {
	nextID int64
	rows   map[int64]Expense
}

func newMemoryExpenseRepo() *memoryExpenseRepo {
	return &memoryExpenseRepo{rows: make(map[int64]Expense)}
}

func (m *memoryExpenseRepo) Create(_ context.Context, expense Expense) (int64, error) {
	m.nextID++
	expense.ID = m.nextID
	m.rows[expense.ID] = expense
	return expense.ID, nil
}

func (m *memoryExpenseRepo) Get(_ context.Context, businessID, id int64) (Expense, error) {
	e, ok := m.rows[id]
	if !ok || e.BusinessID != businessID {
		return Expense{}, ErrNotFound
	}
	return e, nil
}

func (m *memoryExpenseRepo) List(_ context.Context, businessID int64, filter ListFilter) ([]Expense, error) {
	var out []Expense
	for _, e := range m.rows {
		if e.BusinessID != businessID {
			continue
		}
		if filter.Category != "" && e.Category != filter.Category {
			continue
		}
		if !filter.From.IsZero() && e.IncurredAt.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && !e.IncurredAt.Before(filter.To) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (m *memoryExpenseRepo) Update(_ context.Context, expense Expense) error {
	existing, ok := m.rows[expense.ID]
	if !ok || existing.BusinessID != expense.BusinessID {
		return ErrNotFound
	}
	expense.CreatedBy = existing.CreatedBy
	m.rows[expense.ID] = expense
	return nil
}

func (m *memoryExpenseRepo) Delete(_ context.Context, businessID, id int64) error {
	existing, ok := m.rows[id]
	if !ok || existing.BusinessID != businessID {
		return ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

func (m *memoryExpenseRepo) CategoryTotals(_ context.Context, businessID int64, from, to time.Time) ([]CategoryTotal, error) {
	byCat := make(map[string]*CategoryTotal)
	var order []string
	for _, e := range m.rows {
		if e.BusinessID != businessID || e.IncurredAt.Before(from) || !e.IncurredAt.Before(to) {
			continue
		}
		ct, ok := byCat[e.Category]
		if !ok {
			ct = &CategoryTotal{Category: e.Category}
			byCat[e.Category] = ct
			order = append(order, e.Category)
		}
		ct.Total += e.Amount
		ct.Count++
	}
	out := make([]CategoryTotal, 0, len(order))
	for _, cat := range order {
		out = append(out, *byCat[cat])
	}
	return out, nil
}

func TestCreateExpenseValidation(t *testing.T) {
	svc := NewService(newMemoryExpenseRepo())

	_, err := svc.Create(context.Background(), Expense{BusinessID: 1, Category: " ", Amount: 10})
	require.ErrorIs(t, err, ErrCategoryRequired)

	_, err = svc.Create(context.Background(), Expense{BusinessID: 1, Category: "rent", Amount: 0})
	require.ErrorIs(t, err, ErrInvalidAmount)

	_, err = svc.Create(context.Background(), Expense{BusinessID: 1, Category: "rent", Amount: -5})
	require.ErrorIs(t, err, ErrInvalidAmount)

	e, err := svc.Create(context.Background(), Expense{BusinessID: 1, Category: "rent", Amount: 1200})
	require.NoError(t, err)
	require.NotZero(t, e.ID)
	require.False(t, e.IncurredAt.IsZero(), "missing incurred_at defaults to now")
}

func TestMonthSummaryBounds(t *testing.T) {
	repo := newMemoryExpenseRepo()
	svc := NewService(repo)

	at := func(day int) time.Time {
		return time.Date(2026, time.March, day, 12, 0, 0, 0, time.UTC)
	}
	mustCreate := func(category string, amount float64, when time.Time) {
		t.Helper()
		_, err := svc.Create(context.Background(), Expense{
			BusinessID: 1, Category: category, Amount: amount, IncurredAt: when,
		})
		require.NoError(t, err)
	}
	mustCreate("rent", 1200, at(1))
	mustCreate("supplies", 80, at(15))
	mustCreate("supplies", 40, at(31))
	// Outside the month in both directions.
	mustCreate("rent", 1200, time.Date(2026, time.February, 28, 0, 0, 0, 0, time.UTC))
	mustCreate("rent", 1200, time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC))
	// Another tenant.
	_, err := svc.Create(context.Background(), Expense{BusinessID: 2, Category: "rent", Amount: 999, IncurredAt: at(2)})
	require.NoError(t, err)

	summary, err := svc.MonthSummary(context.Background(), 1, 2026, time.March)
	require.NoError(t, err)
	require.Equal(t, 2026, summary.Year)
	require.Equal(t, time.March, summary.Month)
	require.InDelta(t, 1320, summary.Total, 1e-9)

	totals := make(map[string]CategoryTotal)
	for _, ct := range summary.Categories {
		totals[ct.Category] = ct
	}
	require.InDelta(t, 1200, totals["rent"].Total, 1e-9)
	require.EqualValues(t, 1, totals["rent"].Count)
	require.InDelta(t, 120, totals["supplies"].Total, 1e-9)
	require.EqualValues(t, 2, totals["supplies"].Count)
}

func TestUpdateExpenseScopedToBusiness(t *testing.T) {
	repo := newMemoryExpenseRepo()
	svc := NewService(repo)

	e, err := svc.Create(context.Background(), Expense{BusinessID: 1, Category: "rent", Amount: 1200})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), Expense{ID: e.ID, BusinessID: 2, Category: "rent", Amount: 1})
	require.ErrorIs(t, err, ErrNotFound)

	updated, err := svc.Update(context.Background(), Expense{ID: e.ID, BusinessID: 1, Category: "rent", Amount: 1300})
	require.NoError(t, err)
	require.InDelta(t, 1300, updated.Amount, 1e-9)
}
