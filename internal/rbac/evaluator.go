package rbac

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meridian-erp/meridian-erp/internal/shared"
)

// ErrRoleNotFound indicates the referenced role row does not exist.
var ErrRoleNotFound = errors.New("rbac: role not found")

// RoleSource loads the stored permission set for a role.
type RoleSource interface {
	RolePermissions(ctx context.Context, businessID, roleID int64) (PermissionSet, error)
}

// Evaluator answers permission checks for an actor. Decisions are
// resolved fresh on every call from the actor passed in; the evaluator
// holds no per-user state.
type Evaluator struct {
	roles RoleSource
}

// NewEvaluator constructs an Evaluator over the given role source.
func NewEvaluator(roles RoleSource) *Evaluator {
	return &Evaluator{roles: roles}
}

// HasPermission decides whether the actor may perform the named action.
//
// Owners are granted every key, including keys outside the known set.
// An actor without a role gets the baseline set (dashboard only),
// which is distinct from a role with an empty permission map (denies
// everything). Role-bound actors get the stored map lookup; an absent
// key or a missing role row means denied, never an error.
func (e *Evaluator) HasPermission(ctx context.Context, actor *shared.Actor, key PermissionKey) bool {
	if actor == nil {
		return false
	}
	if actor.IsOwner {
		return true
	}
	if actor.RoleID == nil {
		return key == PermDashboard
	}
	perms, err := e.roles.RolePermissions(ctx, actor.BusinessID, *actor.RoleID)
	if err != nil {
		return false
	}
	return perms.Allows(key)
}

// HasAny reports whether the actor holds at least one of the keys.
func (e *Evaluator) HasAny(ctx context.Context, actor *shared.Actor, keys ...PermissionKey) bool {
	for _, key := range keys {
		if e.HasPermission(ctx, actor, key) {
			return true
		}
	}
	return false
}

// HasAll reports whether the actor holds every key.
func (e *Evaluator) HasAll(ctx context.Context, actor *shared.Actor, keys ...PermissionKey) bool {
	for _, key := range keys {
		if !e.HasPermission(ctx, actor, key) {
			return false
		}
	}
	return len(keys) > 0
}

// PGRoleSource reads role permission maps from PostgreSQL.
type PGRoleSource struct {
	pool *pgxpool.Pool
}

// NewPGRoleSource constructs a PGRoleSource.
func NewPGRoleSource(pool *pgxpool.Pool) *PGRoleSource {
	return &PGRoleSource{pool: pool}
}

// RolePermissions loads the JSONB permission map for a role scoped to
// its business.
func (s *PGRoleSource) RolePermissions(ctx context.Context, businessID, roleID int64) (PermissionSet, error) {
	var perms PermissionSet
	err := s.pool.QueryRow(ctx,
		`SELECT permissions FROM roles WHERE id=$1 AND business_id=$2`,
		roleID, businessID).Scan(&perms)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRoleNotFound
		}
		return nil, err
	}
	if perms == nil {
		perms = PermissionSet{}
	}
	return perms, nil
}
