package pickup

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"grosave/internal/models"
)

// ErrUnknownSlot is returned when a submitted slot label or id matches no
// time-of-day bucket. Unrecognizable input is rejected rather than silently
// mapped to morning.
var ErrUnknownSlot = errors.New("unrecognized pickup time slot")

type DBLayer interface {
	GetActiveLocations() ([]models.PickupLocation, error)
	GetSlots(locationID string, day time.Time) ([]models.PickupSlot, error)
}

type Service struct {
	DB DBLayer
}

func NewService(db DBLayer) *Service {
	return &Service{DB: db}
}

// NormalizeSlot maps a free-form slot label or id onto a bucket by substring
// match. "Morning (8 AM - 12 PM)", "morning", and a slot id of "morning" all
// resolve the same way.
func NormalizeSlot(input string) (models.SlotID, error) {
	low := strings.ToLower(strings.TrimSpace(input))
	switch {
	case strings.Contains(low, "morning"):
		return models.SlotMorning, nil
	case strings.Contains(low, "afternoon"):
		return models.SlotAfternoon, nil
	case strings.Contains(low, "evening"):
		return models.SlotEvening, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSlot, input)
}

// Locations lists active pickup sites. The legacy timeSlots JSON rides along
// untouched for older UI builds; the slots relation carries the
// capacity-managed rows.
func (s *Service) Locations() ([]models.PickupLocation, error) {
	locations, err := s.DB.GetActiveLocations()
	if err != nil {
		return nil, fmt.Errorf("fetch locations: %w", err)
	}
	for i := range locations {
		if locations[i].TimeSlots == nil {
			locations[i].TimeSlots = []models.LegacyTimeSlot{}
		}
		if locations[i].Slots == nil {
			locations[i].Slots = []*models.PickupSlot{}
		}
	}
	return locations, nil
}

// Slots lists the capacity-managed slots for a location and day.
func (s *Service) Slots(locationID string, day time.Time) ([]models.PickupSlot, error) {
	slots, err := s.DB.GetSlots(locationID, day)
	if err != nil {
		return nil, fmt.Errorf("fetch slots: %w", err)
	}
	if slots == nil {
		slots = []models.PickupSlot{}
	}
	return slots, nil
}
