package memory

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/Rk346278/real-time-ambulance/internal/models"
	"github.com/Rk346278/real-time-ambulance/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

func TestDriverUpdateRepository_ListRecentNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewDriverUpdateRepository()

	require.NoError(t, repo.Create(ctx, &models.DriverUpdate{ID: "a", FromLocation: "Depot", ToLocation: "City", CreatedAt: base}))
	require.NoError(t, repo.Create(ctx, &models.DriverUpdate{ID: "b", FromLocation: "Depot", ToLocation: "City", CreatedAt: base.Add(time.Minute)}))
	require.NoError(t, repo.Create(ctx, &models.DriverUpdate{ID: "c", FromLocation: "Depot", ToLocation: "City", CreatedAt: base.Add(-time.Minute)}))

	list, err := repo.ListRecent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"b", "a", "c"}, []string{list[0].ID, list[1].ID, list[2].ID})

	list, err = repo.ListRecent(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestDriverUpdateRepository_CopiesOnWrite(t *testing.T) {
	ctx := context.Background()
	repo := NewDriverUpdateRepository()
	u := &models.DriverUpdate{ID: "a", FromLocation: "Depot", ToLocation: "City", CreatedAt: base}
	require.NoError(t, repo.Create(ctx, u))

	u.ToLocation = "Elsewhere"
	list, err := repo.ListRecent(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, "City", list[0].ToLocation)
}

func TestNurseUpdateRepository_ListRecentBySeverity(t *testing.T) {
	ctx := context.Background()
	repo := NewNurseUpdateRepository()

	require.NoError(t, repo.BulkCreate(ctx, []*models.NurseUpdate{
		{ID: "low-new", SeverityScore: 35, CreatedAt: base.Add(time.Hour)},
		{ID: "crit-old", SeverityScore: 95, CreatedAt: base},
		{ID: "crit-new", SeverityScore: 95, CreatedAt: base.Add(time.Minute)},
		{ID: "mod", SeverityScore: 60, CreatedAt: base},
	}))

	list, err := repo.ListRecent(ctx, 100)
	require.NoError(t, err)
	ids := make([]string, 0, len(list))
	for _, u := range list {
		ids = append(ids, u.ID)
	}
	assert.Equal(t, []string{"crit-new", "crit-old", "mod", "low-new"}, ids)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

func TestListRecent_DefaultLimit(t *testing.T) {
	ctx := context.Background()
	repo := NewNurseUpdateRepository()
	for i := 0; i < 150; i++ {
		require.NoError(t, repo.Create(ctx, &models.NurseUpdate{ID: fmt.Sprint(i), CreatedAt: base.Add(time.Duration(i) * time.Second)}))
	}

	list, err := repo.ListRecent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, list, repositories.DefaultListLimit)
	assert.Equal(t, "149", list[0].ID)
}

func TestClearAll(t *testing.T) {
	ctx := context.Background()
	drivers := NewDriverUpdateRepository()
	nurses := NewNurseUpdateRepository()
	require.NoError(t, drivers.Create(ctx, &models.DriverUpdate{ID: "d", CreatedAt: base}))
	require.NoError(t, nurses.Create(ctx, &models.NurseUpdate{ID: "n", CreatedAt: base}))

	require.NoError(t, repositories.ClearAll(ctx, drivers, nurses))

	dl, err := drivers.ListRecent(ctx, 100)
	require.NoError(t, err)
	nl, err := nurses.ListRecent(ctx, 100)
	require.NoError(t, err)
	assert.Empty(t, dl)
	assert.Empty(t, nl)
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewDriverUpdateRepository().ListRecent(ctx, 10)
	assert.ErrorIs(t, err, context.Canceled)
}
