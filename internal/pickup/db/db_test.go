package db

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"grosave/internal/models"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, "file::memory:?cache=shared")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())

	ctx := context.Background()
	require.NoError(t, bunDB.ResetModel(ctx, (*models.PickupLocation)(nil)))
	require.NoError(t, bunDB.ResetModel(ctx, (*models.PickupSlot)(nil)))

	t.Cleanup(func() { _ = bunDB.Close() })
	return &DB{Bun: bunDB}
}

func seedLocation(t *testing.T, d *DB, id string, active bool) {
	t.Helper()
	location := &models.PickupLocation{ID: id, Name: "Hub " + id, IsActive: active}
	_, err := d.Bun.NewInsert().Model(location).Exec(context.Background())
	require.NoError(t, err)
}

func TestGetActiveLocationsFiltersInactive(t *testing.T) {
	d := setupTestDB(t)
	seedLocation(t, d, "loc-1", true)
	seedLocation(t, d, "loc-2", false)

	locations, err := d.GetActiveLocations()
	require.NoError(t, err)
	require.Len(t, locations, 1)
	assert.Equal(t, "loc-1", locations[0].ID)
}

func TestEnsureSlotIsIdempotent(t *testing.T) {
	d := setupTestDB(t)
	seedLocation(t, d, "loc-1", true)

	day := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	ctx := context.Background()

	first, err := EnsureSlot(ctx, d.Bun, "loc-1", day, models.SlotMorning, 15)
	require.NoError(t, err)
	assert.Equal(t, 15, first.Capacity)
	assert.Equal(t, "Morning (8 AM - 12 PM)", first.Label)

	second, err := EnsureSlot(ctx, d.Bun, "loc-1", day, models.SlotMorning, 15)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	count, err := d.Bun.NewSelect().Model((*models.PickupSlot)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestEnsureSlotKeepsExistingCapacityAndCount(t *testing.T) {
	d := setupTestDB(t)
	seedLocation(t, d, "loc-1", true)

	day := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	ctx := context.Background()

	slot, err := EnsureSlot(ctx, d.Bun, "loc-1", day, models.SlotEvening, 15)
	require.NoError(t, err)

	_, err = d.Bun.NewUpdate().Model((*models.PickupSlot)(nil)).
		Set("reserved_count = ?", 7).
		Where("id = ?", slot.ID).
		Exec(ctx)
	require.NoError(t, err)

	// A later call with a different default must not reset anything.
	again, err := EnsureSlot(ctx, d.Bun, "loc-1", day, models.SlotEvening, 30)
	require.NoError(t, err)
	assert.Equal(t, 15, again.Capacity)
	assert.Equal(t, 7, again.ReservedCount)
}

func TestGetSlotsByDay(t *testing.T) {
	d := setupTestDB(t)
	seedLocation(t, d, "loc-1", true)

	today := time.Date(2026, 8, 29, 0, 0, 0, 0, time.UTC)
	tomorrow := today.AddDate(0, 0, 1)
	ctx := context.Background()

	_, err := EnsureSlot(ctx, d.Bun, "loc-1", today, models.SlotMorning, 15)
	require.NoError(t, err)
	_, err = EnsureSlot(ctx, d.Bun, "loc-1", today, models.SlotEvening, 15)
	require.NoError(t, err)
	_, err = EnsureSlot(ctx, d.Bun, "loc-1", tomorrow, models.SlotMorning, 15)
	require.NoError(t, err)

	slots, err := d.GetSlots("loc-1", today)
	require.NoError(t, err)
	assert.Len(t, slots, 2)
}
