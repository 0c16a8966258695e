package users

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/meridian-erp/meridian-erp/internal/shared"
)

// RepositoryPort is what Service needs from persistence. Update and
// Delete refuse to touch the owner row; the owner account is managed
// through auth only.
type RepositoryPort interface {
	Invite(ctx context.Context, member Member, passwordHash string) (int64, error)
	Get(ctx context.Context, businessID, id int64) (Member, error)
	List(ctx context.Context, businessID int64) ([]Member, error)
	Update(ctx context.Context, member Member) error
	Delete(ctx context.Context, businessID, id int64) error
}

// AuditPort records member changes.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service owns member-management rules.
type Service struct {
	repo  RepositoryPort
	audit AuditPort
}

// NewService constructs Service.
func NewService(repo RepositoryPort, audit AuditPort) *Service {
	return &Service{repo: repo, audit: audit}
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, action string, memberID int64, email string) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "user",
		EntityID: strconv.FormatInt(memberID, 10),
		Meta:     map[string]any{"email": email},
	})
}

// Invite creates a member account with an initial password and an
// optional role. Invited members are never owners.
func (s *Service) Invite(ctx context.Context, actorID int64, member Member, password string) (Member, error) {
	member.Email = strings.TrimSpace(strings.ToLower(member.Email))
	member.Name = strings.TrimSpace(member.Name)
	if member.Email == "" || member.Name == "" {
		return Member{}, fmt.Errorf("users: name and email required")
	}
	if len(password) < 8 {
		return Member{}, fmt.Errorf("users: password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return Member{}, fmt.Errorf("hash password: %w", err)
	}
	id, err := s.repo.Invite(ctx, member, string(hash))
	if err != nil {
		return Member{}, err
	}
	s.recordAudit(ctx, actorID, "user.invite", id, member.Email)
	return s.repo.Get(ctx, member.BusinessID, id)
}

// Get fetches one member.
func (s *Service) Get(ctx context.Context, businessID, id int64) (Member, error) {
	return s.repo.Get(ctx, businessID, id)
}

// List lists members of a business.
func (s *Service) List(ctx context.Context, businessID int64) ([]Member, error) {
	return s.repo.List(ctx, businessID)
}

// Update rewrites a member's name, role and active flag. The owner
// account is rejected before touching the repository.
func (s *Service) Update(ctx context.Context, actorID int64, member Member) (Member, error) {
	member.Name = strings.TrimSpace(member.Name)
	if member.Name == "" {
		return Member{}, fmt.Errorf("users: name required")
	}
	existing, err := s.repo.Get(ctx, member.BusinessID, member.ID)
	if err != nil {
		return Member{}, err
	}
	if existing.IsOwner {
		return Member{}, ErrOwnerImmutable
	}
	if err := s.repo.Update(ctx, member); err != nil {
		return Member{}, err
	}
	s.recordAudit(ctx, actorID, "user.update", member.ID, existing.Email)
	return s.repo.Get(ctx, member.BusinessID, member.ID)
}

// Delete removes a non-owner member.
func (s *Service) Delete(ctx context.Context, actorID, businessID, id int64) error {
	existing, err := s.repo.Get(ctx, businessID, id)
	if err != nil {
		return err
	}
	if existing.IsOwner {
		return ErrOwnerImmutable
	}
	if err := s.repo.Delete(ctx, businessID, id); err != nil {
		return err
	}
	s.recordAudit(ctx, actorID, "user.delete", id, existing.Email)
	return nil
}
