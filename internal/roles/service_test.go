package roles

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meridian-erp/meridian-erp/internal/rbac"
	"github.com/meridian-erp/meridian-erp/internal/shared"
)

type memoryRoleRepo struct {
	nextID int64
	rows   map[int64]Role
	inUse  map[int64]bool
}

func newMemoryRoleRepo() *memoryRoleRepo {
	return &memoryRoleRepo{rows: make(map[int64]Role), inUse: make(map[int64]bool)}
}

func (m *memoryRoleRepo) Create(_ context.Context, role Role) (int64, error) {
	for _, existing := range m.rows {
		if existing.BusinessID == role.BusinessID && existing.Name == role.Name {
			return 0, ErrDuplicateName
		}
	}
	m.nextID++
	role.ID = m.nextID
	m.rows[role.ID] = role
	return role.ID, nil
}

func (m *memoryRoleRepo) Get(_ context.Context, businessID, id int64) (Role, error) {
	role, ok := m.rows[id]
	if !ok || role.BusinessID != businessID {
		return Role{}, ErrNotFound
	}
	return role, nil
}

func (m *memoryRoleRepo) List(_ context.Context, businessID int64) ([]Role, error) {
	var out []Role
	for _, role := range m.rows {
		if role.BusinessID == businessID {
			out = append(out, role)
		}
	}
	return out, nil
}

func (m *memoryRoleRepo) Update(_ context.Context, role Role) error {
	existing, ok := m.rows[role.ID]
	if !ok || existing.BusinessID != role.BusinessID {
		return ErrNotFound
	}
	m.rows[role.ID] = role
	return nil
}

func (m *memoryRoleRepo) Delete(_ context.Context, businessID, id int64) error {
	existing, ok := m.rows[id]
	if !ok || existing.BusinessID != businessID {
		return ErrNotFound
	}
	if m.inUse[id] {
		return ErrRoleInUse
	}
	delete(m.rows, id)
	return nil
}

type recordingAudit struct {
	logs []shared.AuditLog
}

func (a *recordingAudit) Record(_ context.Context, log shared.AuditLog) error {
	a.logs = append(a.logs, log)
	return nil
}

func TestCreateRoleRejectsUnknownPermission(t *testing.T) {
	svc := NewService(newMemoryRoleRepo(), nil)

	_, err := svc.Create(context.Background(), 1, Role{
		BusinessID: 1,
		Name:       "Cashier",
		Permissions: rbac.PermissionSet{
			rbac.PermInventoryView: true,
			"warp_core":            true,
		},
	})
	require.ErrorIs(t, err, ErrUnknownPermission)
}

func TestCreateRoleNilPermissionsDenyAll(t *testing.T) {
	repo := newMemoryRoleRepo()
	svc := NewService(repo, nil)

	role, err := svc.Create(context.Background(), 1, Role{BusinessID: 1, Name: "Intern"})
	require.NoError(t, err)
	require.NotNil(t, role.Permissions)
	require.Empty(t, role.Permissions)
	require.False(t, role.Permissions.Allows(rbac.PermDashboard))
}

func TestUpdateRoleValidatesAndAudits(t *testing.T) {
	repo := newMemoryRoleRepo()
	audit := &recordingAudit{}
	svc := NewService(repo, audit)

	role, err := svc.Create(context.Background(), 9, Role{
		BusinessID:  1,
		Name:        "Cashier",
		Permissions: rbac.PermissionSet{rbac.PermInventoryView: true},
	})
	require.NoError(t, err)

	role.Permissions[rbac.PermInventoryManage] = true
	updated, err := svc.Update(context.Background(), 9, role)
	require.NoError(t, err)
	require.True(t, updated.Permissions.Allows(rbac.PermInventoryManage))

	require.Len(t, audit.logs, 2)
	require.Equal(t, "role.create", audit.logs[0].Action)
	require.Equal(t, "role.update", audit.logs[1].Action)
	require.EqualValues(t, 9, audit.logs[1].ActorID)
}

func TestDeleteRoleInUse(t *testing.T) {
	repo := newMemoryRoleRepo()
	svc := NewService(repo, nil)

	role, err := svc.Create(context.Background(), 1, Role{BusinessID: 1, Name: "Cashier"})
	require.NoError(t, err)
	repo.inUse[role.ID] = true

	err = svc.Delete(context.Background(), 1, 1, role.ID)
	require.ErrorIs(t, err, ErrRoleInUse)
}

func TestRoleTenancyIsolation(t *testing.T) {
	repo := newMemoryRoleRepo()
	svc := NewService(repo, nil)

	role, err := svc.Create(context.Background(), 1, Role{BusinessID: 1, Name: "Cashier"})
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), 2, role.ID)
	require.ErrorIs(t, err, ErrNotFound)
}
