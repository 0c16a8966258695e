package audit

import (
	"context"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type memoryAuditRepo struct {
	entries map[int64][]Entry
}

func newMemoryAuditRepo() *memoryAuditRepo {
	return &memoryAuditRepo{entries: map[int64][]Entry{}}
}

func (m *memoryAuditRepo) add(businessID int64, e Entry) {
	e.ID = int64(len(m.entries[businessID]) + 1)
	m.entries[businessID] = append(m.entries[businessID], e)
}

func (m *memoryAuditRepo) matching(businessID int64, filter TimelineFilter) []Entry {
	var out []Entry
	for _, e := range m.entries[businessID] {
		if filter.Action != "" && e.Action != filter.Action {
			continue
		}
		if filter.Entity != "" && e.Entity != filter.Entity {
			continue
		}
		if !filter.From.IsZero() && e.At.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && !e.At.Before(filter.To) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].At.After(out[j].At) })
	return out
}

func (m *memoryAuditRepo) Window(_ context.Context, businessID int64, filter TimelineFilter, limit, offset int) ([]Entry, error) {
	out := m.matching(businessID, filter)
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (m *memoryAuditRepo) Count(_ context.Context, businessID int64, filter TimelineFilter) (int, error) {
	return len(m.matching(businessID, filter)), nil
}

func seedEntries(repo *memoryAuditRepo, businessID int64, n int, action string) {
	base := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		repo.add(businessID, Entry{
			ActorID:  1,
			Action:   action,
			Entity:   "role",
			EntityID: fmt.Sprintf("%d", i+1),
			At:       base.Add(time.Duration(i) * time.Minute),
		})
	}
}

func TestWindowDefaultsAndPagingMath(t *testing.T) {
	repo := newMemoryAuditRepo()
	seedEntries(repo, 1, 45, "role.create")
	svc := NewService(repo)

	timeline, err := svc.Window(context.Background(), 1, TimelineFilter{})
	require.NoError(t, err)
	require.Len(t, timeline.Entries, 20)
	require.Equal(t, 1, timeline.Paging.Page)
	require.Equal(t, 20, timeline.Paging.PerPage)
	require.Equal(t, 45, timeline.Paging.Total)
	require.Equal(t, 3, timeline.Paging.TotalPages)

	// Newest first.
	require.True(t, timeline.Entries[0].At.After(timeline.Entries[1].At))
}

func TestWindowClampsPerPage(t *testing.T) {
	repo := newMemoryAuditRepo()
	seedEntries(repo, 1, 120, "role.create")
	svc := NewService(repo)

	timeline, err := svc.Window(context.Background(), 1, TimelineFilter{PerPage: 500})
	require.NoError(t, err)
	require.Len(t, timeline.Entries, 50)
	require.Equal(t, 50, timeline.Paging.PerPage)
}

func TestWindowLastPageIsPartial(t *testing.T) {
	repo := newMemoryAuditRepo()
	seedEntries(repo, 1, 25, "user.invite")
	svc := NewService(repo)

	timeline, err := svc.Window(context.Background(), 1, TimelineFilter{Page: 2})
	require.NoError(t, err)
	require.Len(t, timeline.Entries, 5)
	require.Equal(t, 2, timeline.Paging.Page)
	require.Equal(t, 2, timeline.Paging.TotalPages)
}

func TestWindowFiltersByActionAndEntity(t *testing.T) {
	repo := newMemoryAuditRepo()
	seedEntries(repo, 1, 5, "role.create")
	seedEntries(repo, 1, 3, "role.delete")
	svc := NewService(repo)

	timeline, err := svc.Window(context.Background(), 1, TimelineFilter{Action: "role.delete"})
	require.NoError(t, err)
	require.Len(t, timeline.Entries, 3)
	require.Equal(t, 3, timeline.Paging.Total)
}

func TestWindowScopedToBusiness(t *testing.T) {
	repo := newMemoryAuditRepo()
	seedEntries(repo, 1, 4, "role.create")
	seedEntries(repo, 2, 9, "role.create")
	svc := NewService(repo)

	timeline, err := svc.Window(context.Background(), 1, TimelineFilter{})
	require.NoError(t, err)
	require.Len(t, timeline.Entries, 4)
	require.Equal(t, 4, timeline.Paging.Total)
}

func TestWindowTimeBoundsAreHalfOpen(t *testing.T) {
	repo := newMemoryAuditRepo()
	base := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		repo.add(1, Entry{ActorID: 1, Action: "stock.post", Entity: "transaction", EntityID: "1",
			At: base.Add(time.Duration(i) * time.Hour)})
	}
	svc := NewService(repo)

	timeline, err := svc.Window(context.Background(), 1, TimelineFilter{
		From: base,
		To:   base.Add(2 * time.Hour),
	})
	require.NoError(t, err)
	require.Len(t, timeline.Entries, 2)
}
