package crm

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type memoryContactRepo struct {
	nextID   int64
	contacts map[int64]Contact
}

func newMemoryContactRepo() *memoryContactRepo {
	return &memoryContactRepo{contacts: make(map[int64]Contact)}
}

func (m *memoryContactRepo) Create(_ context.Context, contact Contact) (int64, error) {
	m.nextID++
	contact.ID = m.nextID
	m.contacts[contact.ID] = contact
	return contact.ID, nil
}

func (m *memoryContactRepo) Get(_ context.Context, businessID, id int64) (Contact, error) {
	contact, ok := m.contacts[id]
	if !ok || contact.BusinessID != businessID {
		return Contact{}, ErrNotFound
	}
	return contact, nil
}

func (m *memoryContactRepo) List(_ context.Context, businessID int64, filter ListFilter) ([]Contact, error) {
	var out []Contact
	for _, contact := range m.contacts {
		if contact.BusinessID != businessID {
			continue
		}
		if filter.Kind != "" && contact.Kind != filter.Kind {
			continue
		}
		if filter.Search != "" && !strings.Contains(strings.ToLower(contact.Name), strings.ToLower(filter.Search)) {
			continue
		}
		out = append(out, contact)
	}
	return out, nil
}

func (m *memoryContactRepo) Update(_ context.Context, contact Contact) error {
	existing, ok := m.contacts[contact.ID]
	if !ok || existing.BusinessID != contact.BusinessID {
		return ErrNotFound
	}
	contact.Kind = existing.Kind
	contact.CreatedBy = existing.CreatedBy
	m.contacts[contact.ID] = contact
	return nil
}

func (m *memoryContactRepo) SetKind(_ context.Context, businessID, id int64, kind ContactKind) error {
	existing, ok := m.contacts[id]
	if !ok || existing.BusinessID != businessID {
		return ErrNotFound
	}
	existing.Kind = kind
	m.contacts[id] = existing
	return nil
}

func (m *memoryContactRepo) Delete(_ context.Context, businessID, id int64) error {
	existing, ok := m.contacts[id]
	if !ok || existing.BusinessID != businessID {
		return ErrNotFound
	}
	delete(m.contacts, id)
	return nil
}

func strptr(s string) *string { return &s }

func TestCreateContactValidation(t *testing.T) {
	svc := NewService(newMemoryContactRepo())

	_, err := svc.Create(context.Background(), Contact{BusinessID: 1, Kind: KindLead, Name: "  "})
	require.ErrorIs(t, err, ErrNameRequired)

	_, err = svc.Create(context.Background(), Contact{BusinessID: 1, Kind: "vendor", Name: "Acme"})
	require.Error(t, err)

	contact, err := svc.Create(context.Background(), Contact{
		BusinessID: 1, Kind: KindLead, Name: " Acme Ltd ", Email: strptr("hello@acme.test"),
	})
	require.NoError(t, err)
	require.Equal(t, "Acme Ltd", contact.Name)
	require.Equal(t, KindLead, contact.Kind)
}

func TestConvertLeadKeepsRow(t *testing.T) {
	repo := newMemoryContactRepo()
	svc := NewService(repo)

	lead, err := svc.Create(context.Background(), Contact{
		BusinessID: 1, Kind: KindLead, Name: "Northwind", Notes: strptr("met at expo"),
	})
	require.NoError(t, err)

	converted, err := svc.Convert(context.Background(), 1, lead.ID)
	require.NoError(t, err)
	require.Equal(t, KindCustomer, converted.Kind)
	require.Equal(t, lead.ID, converted.ID)

	// The row survives conversion with its details intact.
	stored, err := svc.Get(context.Background(), 1, lead.ID)
	require.NoError(t, err)
	require.Equal(t, KindCustomer, stored.Kind)
	require.Equal(t, "Northwind", stored.Name)
	require.NotNil(t, stored.Notes)

	// Converting twice is rejected.
	_, err = svc.Convert(context.Background(), 1, lead.ID)
	require.ErrorIs(t, err, ErrAlreadyCustomer)
}

func TestConvertScopedToBusiness(t *testing.T) {
	repo := newMemoryContactRepo()
	svc := NewService(repo)

	lead, err := svc.Create(context.Background(), Contact{BusinessID: 1, Kind: KindLead, Name: "Northwind"})
	require.NoError(t, err)

	_, err = svc.Convert(context.Background(), 2, lead.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestListFiltersByKindAndSearch(t *testing.T) {
	repo := newMemoryContactRepo()
	svc := NewService(repo)

	mustCreate := func(kind ContactKind, name string) {
		t.Helper()
		_, err := svc.Create(context.Background(), Contact{BusinessID: 1, Kind: kind, Name: name})
		require.NoError(t, err)
	}
	mustCreate(KindCustomer, "Acme Ltd")
	mustCreate(KindLead, "Acme Prospect")
	mustCreate(KindLead, "Northwind")

	leads, err := svc.List(context.Background(), 1, ListFilter{Kind: KindLead})
	require.NoError(t, err)
	require.Len(t, leads, 2)

	acme, err := svc.List(context.Background(), 1, ListFilter{Search: "acme"})
	require.NoError(t, err)
	require.Len(t, acme, 2)

	_, err = svc.List(context.Background(), 1, ListFilter{Kind: "vendor"})
	require.Error(t, err)
}

func TestUpdateDoesNotChangeKind(t *testing.T) {
	repo := newMemoryContactRepo()
	svc := NewService(repo)

	lead, err := svc.Create(context.Background(), Contact{BusinessID: 1, Kind: KindLead, Name: "Northwind"})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), Contact{
		ID: lead.ID, BusinessID: 1, Name: "Northwind Trading", Phone: strptr("555-0100"),
	})
	require.NoError(t, err)
	require.Equal(t, "Northwind Trading", updated.Name)
	require.Equal(t, KindLead, updated.Kind)
}
