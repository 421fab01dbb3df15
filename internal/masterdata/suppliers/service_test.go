package suppliers

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockroom-ims/stockroom/internal/masterdata/shared"
	internalShared "github.com/stockroom-ims/stockroom/internal/shared"
)

type memoryRepo struct {
	rows map[string]Supplier
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{rows: make(map[string]Supplier)}
}

func (m *memoryRepo) List(ctx context.Context, filters shared.ListFilters) ([]Supplier, int, error) {
	var out []Supplier
	for _, s := range m.rows {
		if active := filters.IsActive(); active != nil && s.IsActive != *active {
			continue
		}
		out = append(out, s)
	}
	return out, len(out), nil
}

func (m *memoryRepo) ListActive(ctx context.Context) ([]Supplier, error) {
	items, _, err := m.List(ctx, shared.ListFilters{Status: shared.StatusActive})
	return items, err
}

func (m *memoryRepo) Get(ctx context.Context, id string) (Supplier, error) {
	s, ok := m.rows[id]
	if !ok {
		return Supplier{}, fmt.Errorf("supplier %s: %w", id, internalShared.ErrNotFound)
	}
	return s, nil
}

func (m *memoryRepo) NameTaken(ctx context.Context, name, excludeID string) (bool, error) {
	for id, s := range m.rows {
		if id != excludeID && strings.EqualFold(s.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryRepo) Create(ctx context.Context, s Supplier) error {
	m.rows[s.ID] = s
	return nil
}

func (m *memoryRepo) Update(ctx context.Context, s Supplier) error {
	m.rows[s.ID] = s
	return nil
}

func tickingClock(start time.Time) internalShared.Clock {
	current := start
	return func() time.Time {
		current = current.Add(time.Second)
		return current
	}
}

var (
	ana = internalShared.Actor{ID: "u1", Name: "Ana Cruz"}
	ben = internalShared.Actor{ID: "u2", Name: "Ben Reyes"}
)

func validInput() Input {
	return Input{
		Name:              "Luzon Traders",
		CompanyContactNum: "+63 2 123 4567",
		Address: Address{
			Region:        "NCR",
			City:          "Makati",
			Barangay:      "Poblacion",
			StreetAddress: "12 Jupiter St.",
			PostalCode:    "1210",
		},
		ContactPersons: []ContactPerson{
			{Name: "Liza Santos", Email: "liza@luzon.ph", Phone: "09171234567"},
		},
	}
}

func TestCreateAcceptsValidSupplier(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, func() time.Time { return time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC) })

	in := validInput()
	in.Name = "  Luzon Traders "
	sup, err := svc.Create(context.Background(), ana, in)
	require.NoError(t, err)
	assert.Equal(t, "Luzon Traders", sup.Name)
	assert.True(t, sup.IsActive)
	assert.Equal(t, "Ana Cruz", sup.CreatedBy)
	assert.Equal(t, "12 Jupiter St., Poblacion, Makati, NCR", sup.Address.Full())
	assert.Len(t, repo.rows, 1)
}

func TestCompanyPhoneFormats(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)
	ctx := context.Background()
	for i, phone := range []string{"09171234567", "+639171234567", "+63 2 123 4567", "1800 10 123 4567"} {
		in := validInput()
		in.Name = fmt.Sprintf("Supplier %d", i)
		in.CompanyContactNum = phone
		_, err := svc.Create(ctx, ana, in)
		assert.NoError(t, err, phone)
	}

	in := validInput()
	in.CompanyContactNum = "12345"
	_, err := svc.Create(ctx, ana, in)
	fields, ok := internalShared.FormErrors(err)
	require.True(t, ok)
	assert.Equal(t, "Invalid format. (e.g., 09xxxxxxxxx, +63 2 123 4567, or 1800 10 123 4567)", fields["companyContactNum"])
}

func TestInvalidContactFailsWholeSupplier(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)

	in := validInput()
	in.ContactPersons = append(in.ContactPersons, ContactPerson{Name: "Mark", Email: "mark@", Phone: "0917"})
	_, err := svc.Create(context.Background(), ana, in)
	require.ErrorIs(t, err, internalShared.ErrValidation)

	fields, ok := internalShared.FormErrors(err)
	require.True(t, ok)
	assert.Equal(t, "Invalid email address.", fields["contactPersons[1].email"])
	assert.Equal(t, "Invalid Philippine phone number. (e.g., 09xxxxxxxxx or +639xxxxxxxxx)", fields["contactPersons[1].phone"])
	assert.NotContains(t, fields, "contactPersons[0].email")
	assert.Empty(t, repo.rows)
}

func TestStreetAddressRequired(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)
	in := validInput()
	in.Address.StreetAddress = "   "
	_, err := svc.Create(context.Background(), ana, in)
	fields, ok := internalShared.FormErrors(err)
	require.True(t, ok)
	assert.Equal(t, "The Street Address field is required.", fields["address.streetAddress"])
}

func TestBlankContactRowsAreDropped(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)
	in := validInput()
	in.ContactPersons = append(in.ContactPersons, ContactPerson{Name: " ", Email: "", Phone: " "})
	sup, err := svc.Create(context.Background(), ana, in)
	require.NoError(t, err)
	assert.Len(t, sup.ContactPersons, 1)
}

func TestContactErrorsFollowSubmittedRows(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)

	in := validInput()
	in.ContactPersons = []ContactPerson{
		{Name: "Liza Santos", Email: "liza@luzon.ph", Phone: "09171234567"},
		{},
		{Name: "Mark", Email: "mark@", Phone: "09171234567"},
	}
	_, err := svc.Create(context.Background(), ana, in)
	fields, ok := internalShared.FormErrors(err)
	require.True(t, ok)
	assert.Equal(t, "Invalid email address.", fields["contactPersons[2].email"])
	assert.NotContains(t, fields, "contactPersons[1].email")
	assert.NotContains(t, fields, "contactPersons[1].name")
	assert.Empty(t, repo.rows)

	in.ContactPersons[2].Email = "mark@luzon.ph"
	sup, err := svc.Create(context.Background(), ana, in)
	require.NoError(t, err)
	require.Len(t, sup.ContactPersons, 2)
	assert.Equal(t, "Mark", sup.ContactPersons[1].Name)
}

func TestSupplierToggleTwiceAdvancesStamp(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, tickingClock(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)))
	ctx := context.Background()

	sup, err := svc.Create(ctx, ana, validInput())
	require.NoError(t, err)

	off, err := svc.ToggleActive(ctx, ben, sup.ID)
	require.NoError(t, err)
	assert.False(t, off.IsActive)
	assert.True(t, off.LastModifiedAt.After(sup.LastModifiedAt))

	on, err := svc.ToggleActive(ctx, ben, sup.ID)
	require.NoError(t, err)
	assert.True(t, on.IsActive)
	assert.True(t, on.LastModifiedAt.After(off.LastModifiedAt))
	assert.Equal(t, "Ben Reyes", on.LastModifiedBy)
	assert.Equal(t, sup.CreatedAt, on.CreatedAt)
	assert.True(t, repo.rows[sup.ID].IsActive)
}

func TestSupplierDuplicateAndToggle(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)
	ctx := context.Background()
	sup, err := svc.Create(ctx, ana, validInput())
	require.NoError(t, err)

	dup := validInput()
	dup.Name = "LUZON traders"
	_, err = svc.Create(ctx, ana, dup)
	require.ErrorIs(t, err, internalShared.ErrDuplicate)

	off, err := svc.ToggleActive(ctx, ana, sup.ID)
	require.NoError(t, err)
	assert.False(t, off.IsActive)
	active, err := svc.Active(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)
}
