package models

import (
	"time"

	"github.com/uptrace/bun"
)

// SlotID is the time-of-day bucket a pickup slot belongs to.
type SlotID string

const (
	SlotMorning   SlotID = "morning"
	SlotAfternoon SlotID = "afternoon"
	SlotEvening   SlotID = "evening"
)

// SlotLabel returns the canonical human label for a slot bucket.
func SlotLabel(s SlotID) string {
	switch s {
	case SlotAfternoon:
		return "Afternoon (12 PM - 4 PM)"
	case SlotEvening:
		return "Evening (4 PM - 7 PM)"
	default:
		return "Morning (8 AM - 12 PM)"
	}
}

type PickupLocation struct {
	bun.BaseModel `bun:"table:pickup_locations"`

	ID        string  `bun:"id,pk" json:"id"`
	Name      string  `bun:"name,notnull" json:"name"`
	Address   string  `bun:"address,nullzero" json:"address,omitempty"`
	City      string  `bun:"city,nullzero" json:"city,omitempty"`
	Pincode   string  `bun:"pincode,nullzero" json:"pincode,omitempty"`
	Latitude  float64 `bun:"latitude" json:"latitude,omitempty"`
	Longitude float64 `bun:"longitude" json:"longitude,omitempty"`
	IsActive  bool    `bun:"is_active" json:"is_active"`

	// TimeSlots is the legacy display-only slot list kept for older UI
	// builds. Capacity management lives in PickupSlot rows.
	TimeSlots []LegacyTimeSlot `bun:"time_slots,type:jsonb" json:"timeSlots"`

	Slots []*PickupSlot `bun:"rel:has-many,join:id=pickup_location_id" json:"slots,omitempty"`
}

// LegacyTimeSlot mirrors the embedded JSON slot descriptors older clients
// still render.
type LegacyTimeSlot struct {
	ID        string `json:"id"`
	Label     string `json:"label"`
	Time      string `json:"time"`
	Available int    `json:"available"`
}

// PickupSlot is a capacity-managed reservation window, uniquely keyed by
// (location, midnight-normalized date, bucket).
type PickupSlot struct {
	bun.BaseModel `bun:"table:pickup_slots"`

	ID               string    `bun:"id,pk" json:"id"`
	PickupLocationID string    `bun:"pickup_location_id,notnull,unique:pickup_slot_key" json:"pickupLocationId"`
	Date             time.Time `bun:"date,notnull,unique:pickup_slot_key" json:"date"`
	Slot             SlotID    `bun:"slot,notnull,unique:pickup_slot_key" json:"slot"`
	Label            string    `bun:"label,notnull" json:"label"`
	Capacity         int       `bun:"capacity,notnull" json:"capacity"`
	ReservedCount    int       `bun:"reserved_count,notnull" json:"reservedCount"`
}
