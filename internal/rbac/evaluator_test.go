package rbac

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meridian-erp/meridian-erp/internal/shared"
)

type memoryRoleSource struct {
	perms map[int64]PermissionSet
	err   error
}

func (s *memoryRoleSource) RolePermissions(ctx context.Context, businessID, roleID int64) (PermissionSet, error) {
	if s.err != nil {
		return nil, s.err
	}
	perms, ok := s.perms[roleID]
	if !ok {
		return nil, ErrRoleNotFound
	}
	return perms, nil
}

func roleID(id int64) *int64 { return &id }

func TestOwnerGrantedEverything(t *testing.T) {
	eval := NewEvaluator(&memoryRoleSource{})
	actor := &shared.Actor{UserID: 1, BusinessID: 1, IsOwner: true}

	for _, key := range KnownPermissions {
		require.True(t, eval.HasPermission(context.Background(), actor, key))
	}
	// Owners pass even for keys outside the known set.
	require.True(t, eval.HasPermission(context.Background(), actor, PermissionKey("no-such-permission")))
}

func TestRoleBoundLookups(t *testing.T) {
	source := &memoryRoleSource{perms: map[int64]PermissionSet{
		7: {PermInventoryView: true},
		8: {},
	}}
	eval := NewEvaluator(source)

	actor := &shared.Actor{UserID: 2, BusinessID: 1, RoleID: roleID(7)}
	require.True(t, eval.HasPermission(context.Background(), actor, PermInventoryView))
	require.False(t, eval.HasPermission(context.Background(), actor, PermCustomersView))
	require.False(t, eval.HasPermission(context.Background(), actor, PermissionKey("sales")))

	// Empty map denies everything, including the dashboard baseline.
	emptyActor := &shared.Actor{UserID: 3, BusinessID: 1, RoleID: roleID(8)}
	require.False(t, eval.HasPermission(context.Background(), emptyActor, PermDashboard))
	require.False(t, eval.HasPermission(context.Background(), emptyActor, PermInventoryView))
}

func TestNoRoleGetsBaselineOnly(t *testing.T) {
	eval := NewEvaluator(&memoryRoleSource{})
	actor := &shared.Actor{UserID: 4, BusinessID: 1}

	require.True(t, eval.HasPermission(context.Background(), actor, PermDashboard))
	require.False(t, eval.HasPermission(context.Background(), actor, PermInventoryView))
	require.False(t, eval.HasPermission(context.Background(), actor, PermRolesManage))
}

func TestMissingRoleRowDenies(t *testing.T) {
	eval := NewEvaluator(&memoryRoleSource{perms: map[int64]PermissionSet{}})
	actor := &shared.Actor{UserID: 5, BusinessID: 1, RoleID: roleID(99)}

	require.False(t, eval.HasPermission(context.Background(), actor, PermDashboard))
}

func TestSourceErrorDenies(t *testing.T) {
	eval := NewEvaluator(&memoryRoleSource{err: errors.New("connection refused")})
	actor := &shared.Actor{UserID: 6, BusinessID: 1, RoleID: roleID(1)}

	require.False(t, eval.HasPermission(context.Background(), actor, PermInventoryView))
}

func TestNilActorDenied(t *testing.T) {
	eval := NewEvaluator(&memoryRoleSource{})
	require.False(t, eval.HasPermission(context.Background(), nil, PermDashboard))
}

func TestHasAnyAndHasAll(t *testing.T) {
	source := &memoryRoleSource{perms: map[int64]PermissionSet{
		7: {PermInventoryView: true, PermProductsView: true},
	}}
	eval := NewEvaluator(source)
	actor := &shared.Actor{UserID: 2, BusinessID: 1, RoleID: roleID(7)}

	require.True(t, eval.HasAny(context.Background(), actor, PermCustomersView, PermInventoryView))
	require.False(t, eval.HasAny(context.Background(), actor, PermCustomersView, PermExpensesView))
	require.True(t, eval.HasAll(context.Background(), actor, PermInventoryView, PermProductsView))
	require.False(t, eval.HasAll(context.Background(), actor, PermInventoryView, PermCustomersView))
	require.False(t, eval.HasAll(context.Background(), actor))
}

func TestIsKnownPermission(t *testing.T) {
	require.True(t, IsKnownPermission(PermInventoryManage))
	require.False(t, IsKnownPermission(PermissionKey("inventry.manage")))
}
