package masterdata

import (
	"context"
	"fmt"
	"strings"
)

// RepositoryPort is what Service needs from persistence.
type RepositoryPort interface {
	Create(ctx context.Context, location Location) (int64, error)
	Get(ctx context.Context, businessID, id int64) (Location, error)
	List(ctx context.Context, businessID int64) ([]Location, error)
	Update(ctx context.Context, location Location) error
	Delete(ctx context.Context, businessID, id int64) error
}

// Service owns location rules.
type Service struct {
	repo RepositoryPort
}

// NewService constructs Service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// Create inserts a location. New locations start active.
func (s *Service) Create(ctx context.Context, location Location) (Location, error) {
	location.Name = strings.TrimSpace(location.Name)
	if location.Name == "" {
		return Location{}, ErrNameRequired
	}
	location.IsActive = true
	id, err := s.repo.Create(ctx, location)
	if err != nil {
		return Location{}, fmt.Errorf("create location: %w", err)
	}
	location.ID = id
	return location, nil
}

// Get fetches one location.
func (s *Service) Get(ctx context.Context, businessID, id int64) (Location, error) {
	return s.repo.Get(ctx, businessID, id)
}

// List lists locations for a business.
func (s *Service) List(ctx context.Context, businessID int64) ([]Location, error) {
	return s.repo.List(ctx, businessID)
}

// Update rewrites a location.
func (s *Service) Update(ctx context.Context, location Location) (Location, error) {
	location.Name = strings.TrimSpace(location.Name)
	if location.Name == "" {
		return Location{}, ErrNameRequired
	}
	if err := s.repo.Update(ctx, location); err != nil {
		return Location{}, err
	}
	return s.repo.Get(ctx, location.BusinessID, location.ID)
}

// Delete removes a location.
func (s *Service) Delete(ctx context.Context, businessID, id int64) error {
	return s.repo.Delete(ctx, businessID, id)
}
