package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/meridian-erp/meridian-erp/internal/shared"
)

// ErrWeakPassword indicates a password below the minimum length.
var ErrWeakPassword = errors.New("auth: password must be at least 8 characters")

// Service wraps authentication business rules.
type Service struct {
	repo Repository
}

// NewService constructs a new Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Authenticate validates email/password credentials. Any failure mode
// collapses to ErrInvalidCredentials so callers cannot probe accounts.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}
	return user, nil
}

// Register bootstraps a business with its owner account. The owner is
// created with is_owner set so permission checks always allow it.
func (s *Service) Register(ctx context.Context, businessName, ownerName, email, password string) (*Business, *User, error) {
	businessName = strings.TrimSpace(businessName)
	email = strings.TrimSpace(strings.ToLower(email))
	if businessName == "" || email == "" {
		return nil, nil, fmt.Errorf("auth: business name and email required")
	}
	if len(password) < 8 {
		return nil, nil, ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, fmt.Errorf("hash password: %w", err)
	}
	return s.repo.RegisterBusiness(ctx, businessName, User{
		Email:        email,
		Name:         strings.TrimSpace(ownerName),
		PasswordHash: string(hash),
	})
}

// UserByID loads one user, used by the actor middleware.
func (s *Service) UserByID(ctx context.Context, id int64) (*User, error) {
	return s.repo.FindByID(ctx, id)
}

// RegisterSession persists the session metadata in postgres.
func (s *Service) RegisterSession(ctx context.Context, id string, userID int64, expiresAt time.Time, ip, ua string) error {
	return s.repo.CreateSession(ctx, id, userID, expiresAt, ip, ua)
}

// RemoveSession deletes a session record from postgres.
func (s *Service) RemoveSession(ctx context.Context, id string) error {
	return s.repo.DeleteSession(ctx, id)
}
