package crm

import (
	"context"
	"fmt"
	"strings"
)

// RepositoryPort is what Service needs from persistence.
type RepositoryPort interface {
	Create(ctx context.Context, contact Contact) (int64, error)
	Get(ctx context.Context, businessID, id int64) (Contact, error)
	List(ctx context.Context, businessID int64, filter ListFilter) ([]Contact, error)
	Update(ctx context.Context, contact Contact) error
	SetKind(ctx context.Context, businessID, id int64, kind ContactKind) error
	Delete(ctx context.Context, businessID, id int64) error
}

// Service owns contact rules.
type Service struct {
	repo RepositoryPort
}

// NewService constructs Service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// Create inserts a contact of the given kind.
func (s *Service) Create(ctx context.Context, contact Contact) (Contact, error) {
	contact.Name = strings.TrimSpace(contact.Name)
	if contact.Name == "" {
		return Contact{}, ErrNameRequired
	}
	if !ValidContactKind(contact.Kind) {
		return Contact{}, fmt.Errorf("crm: unknown contact kind %q", contact.Kind)
	}
	id, err := s.repo.Create(ctx, contact)
	if err != nil {
		return Contact{}, fmt.Errorf("create contact: %w", err)
	}
	contact.ID = id
	return contact, nil
}

// Get fetches one contact.
func (s *Service) Get(ctx context.Context, businessID, id int64) (Contact, error) {
	return s.repo.Get(ctx, businessID, id)
}

// List lists contacts with kind/search filters.
func (s *Service) List(ctx context.Context, businessID int64, filter ListFilter) ([]Contact, error) {
	if filter.Kind != "" && !ValidContactKind(filter.Kind) {
		return nil, fmt.Errorf("crm: unknown contact kind %q", filter.Kind)
	}
	return s.repo.List(ctx, businessID, filter)
}

// Update rewrites a contact's details. Kind is not editable here; use
// Convert for lead promotion.
func (s *Service) Update(ctx context.Context, contact Contact) (Contact, error) {
	contact.Name = strings.TrimSpace(contact.Name)
	if contact.Name == "" {
		return Contact{}, ErrNameRequired
	}
	if err := s.repo.Update(ctx, contact); err != nil {
		return Contact{}, err
	}
	return s.repo.Get(ctx, contact.BusinessID, contact.ID)
}

// Convert promotes a lead to a customer, keeping the row.
func (s *Service) Convert(ctx context.Context, businessID, id int64) (Contact, error) {
	contact, err := s.repo.Get(ctx, businessID, id)
	if err != nil {
		return Contact{}, err
	}
	if contact.Kind == KindCustomer {
		return Contact{}, ErrAlreadyCustomer
	}
	if err := s.repo.SetKind(ctx, businessID, id, KindCustomer); err != nil {
		return Contact{}, err
	}
	contact.Kind = KindCustomer
	return contact, nil
}

// Delete removes a contact.
func (s *Service) Delete(ctx context.Context, businessID, id int64) error {
	return s.repo.Delete(ctx, businessID, id)
}
