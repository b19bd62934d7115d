package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"grosave/internal/models"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var ErrSlotNotFound = errors.New("pickup slot not found")

type DB struct {
	Bun *bun.DB
}

// GetActiveLocations returns active pickup sites with their capacity-managed
// slots loaded.
func (d *DB) GetActiveLocations() ([]models.PickupLocation, error) {
	var locations []models.PickupLocation
	err := d.Bun.NewSelect().
		Model(&locations).
		Relation("Slots").
		Where("is_active = ?", true).
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return locations, nil
}

// GetSlots returns the slots for a location on a given day, morning first.
func (d *DB) GetSlots(locationID string, day time.Time) ([]models.PickupSlot, error) {
	var slots []models.PickupSlot
	err := d.Bun.NewSelect().
		Model(&slots).
		Where("pickup_location_id = ?", locationID).
		Where("date = ?", day).
		Order("slot ASC").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	return slots, nil
}

// EnsureSlot is the idempotent provisioning policy: insert the (location,
// day, bucket) row with the default capacity unless somebody already seeded
// it, then return whichever row won. Safe to call from concurrent
// reservation transactions.
func EnsureSlot(ctx context.Context, idb bun.IDB, locationID string, day time.Time, slot models.SlotID, capacity int) (*models.PickupSlot, error) {
	row := &models.PickupSlot{
		ID:               uuid.NewString(),
		PickupLocationID: locationID,
		Date:             day,
		Slot:             slot,
		Label:            models.SlotLabel(slot),
		Capacity:         capacity,
		ReservedCount:    0,
	}

	_, err := idb.NewInsert().
		Model(row).
		On("CONFLICT (pickup_location_id, date, slot) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return nil, err
	}

	var existing models.PickupSlot
	err = idb.NewSelect().
		Model(&existing).
		Where("pickup_location_id = ?", locationID).
		Where("date = ?", day).
		Where("slot = ?", slot).
		Limit(1).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSlotNotFound
	}
	if err != nil {
		return nil, err
	}
	return &existing, nil
}
