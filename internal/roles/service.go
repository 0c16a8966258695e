package roles

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/meridian-erp/meridian-erp/internal/rbac"
	"github.com/meridian-erp/meridian-erp/internal/shared"
)

// RepositoryPort is what Service needs from persistence.
type RepositoryPort interface {
	Create(ctx context.Context, role Role) (int64, error)
	Get(ctx context.Context, businessID, id int64) (Role, error)
	List(ctx context.Context, businessID int64) ([]Role, error)
	Update(ctx context.Context, role Role) error
	Delete(ctx context.Context, businessID, id int64) error
}

// AuditPort records role changes.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service owns role rules. Permission maps are validated against the
// closed permission key set; unknown keys are rejected at write time
// even though the evaluator would simply treat them as absent.
type Service struct {
	repo  RepositoryPort
	audit AuditPort
}

// NewService constructs Service.
func NewService(repo RepositoryPort, audit AuditPort) *Service {
	return &Service{repo: repo, audit: audit}
}

func validatePermissions(perms rbac.PermissionSet) error {
	for key := range perms {
		if !rbac.IsKnownPermission(key) {
			return fmt.Errorf("%w: %q", ErrUnknownPermission, key)
		}
	}
	return nil
}

func (s *Service) recordAudit(ctx context.Context, actorID int64, action string, roleID int64, name string) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "role",
		EntityID: strconv.FormatInt(roleID, 10),
		Meta:     map[string]any{"name": name},
	})
}

// Create inserts a role after validating its permission keys. A nil
// permission map is stored as an empty one, which denies everything.
func (s *Service) Create(ctx context.Context, actorID int64, role Role) (Role, error) {
	role.Name = strings.TrimSpace(role.Name)
	if role.Name == "" {
		return Role{}, ErrNameRequired
	}
	if err := validatePermissions(role.Permissions); err != nil {
		return Role{}, err
	}
	if role.Permissions == nil {
		role.Permissions = rbac.PermissionSet{}
	}
	id, err := s.repo.Create(ctx, role)
	if err != nil {
		return Role{}, err
	}
	role.ID = id
	s.recordAudit(ctx, actorID, "role.create", id, role.Name)
	return role, nil
}

// Get fetches one role.
func (s *Service) Get(ctx context.Context, businessID, id int64) (Role, error) {
	return s.repo.Get(ctx, businessID, id)
}

// List lists roles for a business.
func (s *Service) List(ctx context.Context, businessID int64) ([]Role, error) {
	return s.repo.List(ctx, businessID)
}

// Update rewrites a role's name and permission map.
func (s *Service) Update(ctx context.Context, actorID int64, role Role) (Role, error) {
	role.Name = strings.TrimSpace(role.Name)
	if role.Name == "" {
		return Role{}, ErrNameRequired
	}
	if err := validatePermissions(role.Permissions); err != nil {
		return Role{}, err
	}
	if role.Permissions == nil {
		role.Permissions = rbac.PermissionSet{}
	}
	if err := s.repo.Update(ctx, role); err != nil {
		return Role{}, err
	}
	s.recordAudit(ctx, actorID, "role.update", role.ID, role.Name)
	return s.repo.Get(ctx, role.BusinessID, role.ID)
}

// Delete removes a role that no user holds.
func (s *Service) Delete(ctx context.Context, actorID, businessID, id int64) error {
	if err := s.repo.Delete(ctx, businessID, id); err != nil {
		return err
	}
	s.recordAudit(ctx, actorID, "role.delete", id, "")
	return nil
}
