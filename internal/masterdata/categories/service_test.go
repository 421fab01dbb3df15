package categories

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stockroom-ims/stockroom/internal/masterdata/shared"
	internalShared "github.com/stockroom-ims/stockroom/internal/shared"
)

type memoryRepo struct {
	rows map[string]Category
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{rows: make(map[string]Category)}
}

func (m *memoryRepo) List(ctx context.Context, filters shared.ListFilters) ([]Category, int, error) {
	var out []Category
	for _, c := range m.rows {
		if filters.Search != "" && !strings.Contains(strings.ToLower(c.Name), strings.ToLower(filters.Search)) {
			continue
		}
		if active := filters.IsActive(); active != nil && c.IsActive != *active {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, len(out), nil
}

func (m *memoryRepo) ListActive(ctx context.Context) ([]Category, error) {
	items, _, err := m.List(ctx, shared.ListFilters{Status: shared.StatusActive})
	return items, err
}

func (m *memoryRepo) Get(ctx context.Context, id string) (Category, error) {
	c, ok := m.rows[id]
	if !ok {
		return Category{}, fmt.Errorf("category %s: %w", id, internalShared.ErrNotFound)
	}
	return c, nil
}

func (m *memoryRepo) NameTaken(ctx context.Context, name, excludeID string) (bool, error) {
	for id, c := range m.rows {
		if id != excludeID && strings.EqualFold(c.Name, name) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryRepo) Create(ctx context.Context, c Category) error {
	m.rows[c.ID] = c
	return nil
}

func (m *memoryRepo) Update(ctx context.Context, c Category) error {
	if _, ok := m.rows[c.ID]; !ok {
		return internalShared.ErrNotFound
	}
	m.rows[c.ID] = c
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

func TestCreateRejectsCaseInsensitiveDuplicate(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, nil)
	ctx := context.Background()

	first, err := svc.Create(ctx, ana, Input{Name: "Beverages"})
	require.NoError(t, err)
	require.True(t, first.IsActive)

	_, err = svc.Create(ctx, ana, Input{Name: " beverages "})
	require.ErrorIs(t, err, internalShared.ErrDuplicate)
	fields, ok := internalShared.FormErrors(err)
	require.True(t, ok)
	assert.Equal(t, "A category with this name already exists.", fields["name"])
	assert.Len(t, repo.rows, 1)
}

func TestCreateTrimsAndStamps(t *testing.T) {
	repo := newMemoryRepo()
	start := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	svc := NewService(repo, tickingClock(start))

	c, err := svc.Create(context.Background(), ana, Input{Name: "  Snacks ", Description: " chips and nuts  "})
	require.NoError(t, err)
	assert.Equal(t, "Snacks", c.Name)
	assert.Equal(t, "chips and nuts", c.Description)
	assert.Equal(t, "Ana Cruz", c.CreatedBy)
	assert.Equal(t, "Ana Cruz", c.LastModifiedBy)
	assert.Equal(t, c.CreatedAt, c.LastModifiedAt)
}

func TestCreateRequiresName(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)
	_, err := svc.Create(context.Background(), ana, Input{Name: "   "})
	require.ErrorIs(t, err, internalShared.ErrValidation)
}

func TestUpdateKeepsCreatedStampAndAllowsOwnName(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, tickingClock(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)))
	ctx := context.Background()

	c, err := svc.Create(ctx, ana, Input{Name: "Dairy"})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, ben, c.ID, Input{Name: "DAIRY", Description: "milk"})
	require.NoError(t, err)
	assert.Equal(t, "DAIRY", updated.Name)
	assert.Equal(t, "Ana Cruz", updated.CreatedBy)
	assert.Equal(t, c.CreatedAt, updated.CreatedAt)
	assert.Equal(t, "Ben Reyes", updated.LastModifiedBy)
	assert.True(t, updated.LastModifiedAt.After(c.LastModifiedAt))

	_, err = svc.Create(ctx, ana, Input{Name: "Frozen"})
	require.NoError(t, err)
	_, err = svc.Update(ctx, ben, c.ID, Input{Name: "frozen"})
	require.ErrorIs(t, err, internalShared.ErrDuplicate)
}

func TestToggleActiveTwiceRestoresFlag(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewService(repo, tickingClock(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)))
	ctx := context.Background()

	c, err := svc.Create(ctx, ana, Input{Name: "Produce"})
	require.NoError(t, err)

	off, err := svc.ToggleActive(ctx, ben, c.ID)
	require.NoError(t, err)
	assert.False(t, off.IsActive)
	on, err := svc.ToggleActive(ctx, ben, c.ID)
	require.NoError(t, err)
	assert.True(t, on.IsActive)
	assert.True(t, on.LastModifiedAt.After(off.LastModifiedAt))
}

func TestGetRejectsMalformedID(t *testing.T) {
	svc := NewService(newMemoryRepo(), nil)
	_, err := svc.Get(context.Background(), "42")
	require.ErrorIs(t, err, internalShared.ErrNotFound)
}
