package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/meridian-erp/meridian-erp/internal/shared"
)

type memoryMemberRepo struct {
	nextID int64
	rows   map[int64]Member
	hashes map[int64]string
}

func newMemoryMemberRepo() *memoryMemberRepo {
	return &memoryMemberRepo{rows: make(map[int64]Member), hashes: make(map[int64]string)}
}

func (m *memoryMemberRepo) Invite(_ context.Context, member Member, passwordHash string) (int64, error) {
	for _, existing := range m.rows {
		if existing.Email == member.Email {
			return 0, ErrEmailTaken
		}
	}
	m.nextID++
	member.ID = m.nextID
	member.IsActive = true
	m.rows[member.ID] = member
	m.hashes[member.ID] = passwordHash
	return member.ID, nil
}

func (m *memoryMemberRepo) Get(_ context.Context, businessID, id int64) (Member, error) {
	member, ok := m.rows[id]
	if !ok || member.BusinessID != businessID {
		return Member{}, ErrNotFound
	}
	return member, nil
}

func (m *memoryMemberRepo) List(_ context.Context, businessID int64) ([]Member, error) {
	var out []Member
	for _, member := range m.rows {
		if member.BusinessID == businessID {
			out = append(out, member)
		}
	}
	return out, nil
}

func (m *memoryMemberRepo) Update(_ context.Context, member Member) error {
	existing, ok := m.rows[member.ID]
	if !ok || existing.BusinessID != member.BusinessID || existing.IsOwner {
		return ErrNotFound
	}
	member.Email = existing.Email
	m.rows[member.ID] = member
	return nil
}

func (m *memoryMemberRepo) Delete(_ context.Context, businessID, id int64) error {
	existing, ok := m.rows[id]
	if !ok || existing.BusinessID != businessID || existing.IsOwner {
		return ErrNotFound
	}
	delete(m.rows, id)
	return nil
}

func (m *memoryMemberRepo) seedOwner(businessID int64, email string) Member {
	m.nextID++
	owner := Member{
		ID:         m.nextID,
		BusinessID: businessID,
		Email:      email,
		Name:       "Owner",
		IsOwner:    true,
		IsActive:   true,
	}
	m.rows[owner.ID] = owner
	return owner
}

type recordingAudit struct {
	logs []shared.AuditLog
}

func (a *recordingAudit) Record(_ context.Context, log shared.AuditLog) error {
	a.logs = append(a.logs, log)
	return nil
}

func TestInviteHashesPasswordAndAudits(t *testing.T) {
	repo := newMemoryMemberRepo()
	audit := &recordingAudit{}
	svc := NewService(repo, audit)

	roleID := int64(3)
	member, err := svc.Invite(context.Background(), 1, Member{
		BusinessID: 1, Email: " Staff@Test.Local ", Name: "Staff", RoleID: &roleID,
	}, "longenough")
	require.NoError(t, err)
	require.Equal(t, "staff@test.local", member.Email)
	require.False(t, member.IsOwner)
	require.NotNil(t, member.RoleID)

	hash := repo.hashes[member.ID]
	require.NotEmpty(t, hash)
	require.NotEqual(t, "longenough", hash)

	require.Len(t, audit.logs, 1)
	require.Equal(t, "user.invite", audit.logs[0].Action)
}

func TestInviteRejectsShortPasswordAndDuplicate(t *testing.T) {
	repo := newMemoryMemberRepo()
	svc := NewService(repo, nil)

	_, err := svc.Invite(context.Background(), 1, Member{BusinessID: 1, Email: "a@test.local", Name: "A"}, "short")
	require.Error(t, err)

	_, err = svc.Invite(context.Background(), 1, Member{BusinessID: 1, Email: "a@test.local", Name: "A"}, "longenough")
	require.NoError(t, err)

	_, err = svc.Invite(context.Background(), 1, Member{BusinessID: 1, Email: "a@test.local", Name: "A2"}, "longenough")
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestUpdateAssignsRole(t *testing.T) {
	repo := newMemoryMemberRepo()
	svc := NewService(repo, nil)

	member, err := svc.Invite(context.Background(), 1, Member{BusinessID: 1, Email: "a@test.local", Name: "A"}, "longenough")
	require.NoError(t, err)
	require.Nil(t, member.RoleID)

	roleID := int64(5)
	updated, err := svc.Update(context.Background(), 1, Member{
		ID: member.ID, BusinessID: 1, Name: "A", RoleID: &roleID, IsActive: true,
	})
	require.NoError(t, err)
	require.NotNil(t, updated.RoleID)
	require.EqualValues(t, 5, *updated.RoleID)
}

func TestOwnerIsImmutable(t *testing.T) {
	repo := newMemoryMemberRepo()
	svc := NewService(repo, nil)
	owner := repo.seedOwner(1, "owner@test.local")

	_, err := svc.Update(context.Background(), 1, Member{
		ID: owner.ID, BusinessID: 1, Name: "Hacked", IsActive: false,
	})
	require.ErrorIs(t, err, ErrOwnerImmutable)

	err = svc.Delete(context.Background(), 1, 1, owner.ID)
	require.ErrorIs(t, err, ErrOwnerImmutable)
}
