package models

import (
	"time"

	"github.com/uptrace/bun"
)

type OrderStatus string

const (
	OrderConfirmed OrderStatus = "confirmed"
	OrderReady     OrderStatus = "ready"
	OrderCompleted OrderStatus = "completed"
	OrderCancelled OrderStatus = "cancelled"
)

type OrderEventType string

const (
	EventReserved  OrderEventType = "reserved"
	EventReady     OrderEventType = "ready"
	EventScanned   OrderEventType = "scanned"
	EventCompleted OrderEventType = "completed"
	EventCancelled OrderEventType = "cancelled"
)

type Order struct {
	bun.BaseModel `bun:"table:orders"`

	ID          string `bun:"id,pk" json:"id"`
	OrderNumber string `bun:"order_number,notnull,unique" json:"orderNumber"`
	UserID      string `bun:"user_id,notnull" json:"userId"`
	ProductID   string `bun:"product_id,notnull" json:"productId"`
	Quantity    int    `bun:"quantity,notnull" json:"quantity"`
	CoinsSpent  int64  `bun:"coins_spent,notnull" json:"coinsSpent"`

	Status OrderStatus `bun:"status,notnull" json:"status"`

	PickupLocationID string    `bun:"pickup_location_id,notnull" json:"pickupLocationId"`
	PickupTimeSlot   string    `bun:"pickup_time_slot,notnull" json:"pickupTimeSlot"`
	PickupDate       time.Time `bun:"pickup_date,notnull" json:"pickupDate"`
	PickupSlotID     string    `bun:"pickup_slot_id,nullzero" json:"pickupSlotId,omitempty"`

	VerificationCode string `bun:"verification_code,notnull" json:"verificationCode"`

	// IdempotencyKey dedupes client retries of the same logical reservation.
	IdempotencyKey string `bun:"idempotency_key,nullzero,unique" json:"-"`

	ReservedAt  time.Time `bun:"reserved_at,notnull" json:"reservedAt"`
	ScannedAt   time.Time `bun:"scanned_at,nullzero" json:"scannedAt,omitempty"`
	CompletedAt time.Time `bun:"completed_at,nullzero" json:"completedAt,omitempty"`
	CancelledAt time.Time `bun:"cancelled_at,nullzero" json:"cancelledAt,omitempty"`

	Product        *Product        `bun:"rel:belongs-to,join:product_id=id" json:"product,omitempty"`
	PickupLocation *PickupLocation `bun:"rel:belongs-to,join:pickup_location_id=id" json:"pickupLocation,omitempty"`
}

// OrderEvent is the append-only audit trail. Rows are never updated or
// deleted.
type OrderEvent struct {
	bun.BaseModel `bun:"table:order_events"`

	ID      string         `bun:"id,pk" json:"id"`
	OrderID string         `bun:"order_id,notnull" json:"orderId"`
	Type    OrderEventType `bun:"type,notnull" json:"type"`
	Meta    map[string]any `bun:"meta,type:jsonb" json:"meta,omitempty"`
	At      time.Time      `bun:"at,notnull" json:"at"`
}

// ReserveRequest is the reservation payload consumed by the order API.
type ReserveRequest struct {
	ProductID        string `json:"productId"`
	Quantity         int    `json:"quantity"`
	PickupLocationID string `json:"pickupLocationId"`
	PickupTimeSlot   string `json:"pickupTimeSlot"`
	PickupDate       string `json:"pickupDate"`
}
