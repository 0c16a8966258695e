package audit

import (
	"context"

	"github.com/meridian-erp/meridian-erp/internal/shared"
)

// RepositoryPort abstracts timeline reads for testing.
type RepositoryPort interface {
	Window(ctx context.Context, businessID int64, filter TimelineFilter, limit, offset int) ([]Entry, error)
	Count(ctx context.Context, businessID int64, filter TimelineFilter) (int, error)
}

// Timeline bundles one page of the audit trail.
type Timeline struct {
	Entries []Entry           `json:"entries"`
	Paging  shared.Pagination `json:"paging"`
}

// Service reads the audit trail.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

const maxPerPage = 50

// Window returns one page of audit entries, newest first.
func (s *Service) Window(ctx context.Context, businessID int64, filter TimelineFilter) (Timeline, error) {
	perPage := filter.PerPage
	if perPage <= 0 {
		perPage = 20
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}

	total, err := s.repo.Count(ctx, businessID, filter)
	if err != nil {
		return Timeline{}, err
	}
	paging := shared.NewPagination(page, perPage, total)
	entries, err := s.repo.Window(ctx, businessID, filter, perPage, paging.Offset())
	if err != nil {
		return Timeline{}, err
	}
	return Timeline{Entries: entries, Paging: paging}, nil
}
