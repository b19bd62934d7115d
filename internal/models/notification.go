package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Notification struct {
	bun.BaseModel `bun:"table:notifications"`

	ID        string    `bun:"id,pk" json:"id"`
	UserID    string    `bun:"user_id,notnull" json:"userId"`
	Type      string    `bun:"type,notnull" json:"type"`
	Title     string    `bun:"title,notnull" json:"title"`
	Message   string    `bun:"message,notnull" json:"message"`
	OrderID   string    `bun:"order_id,nullzero" json:"orderId,omitempty"`
	IsRead    bool      `bun:"is_read" json:"isRead"`
	CreatedAt time.Time `bun:"created_at,notnull" json:"createdAt"`
}
