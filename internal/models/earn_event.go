package models

import (
	"time"

	"github.com/uptrace/bun"
)

type EarnEvent struct {
	bun.BaseModel `bun:"table:earn_events"`

	ID        string         `bun:"id,pk" json:"id"`
	UserID    string         `bun:"user_id,notnull" json:"userId"`
	Type      string         `bun:"type,notnull" json:"type"`
	Amount    int64          `bun:"amount,notnull" json:"amount"`
	Meta      map[string]any `bun:"meta,type:jsonb" json:"meta,omitempty"`
	CreatedAt time.Time      `bun:"created_at,notnull" json:"createdAt"`
}
