package models

import (
	"time"

	"github.com/uptrace/bun"
)

type User struct {
	bun.BaseModel `bun:"table:users"`

	ID                  string    `bun:"id,pk" json:"id"`
	Phone               string    `bun:"phone,notnull,unique" json:"phone"`
	Name                string    `bun:"name,nullzero" json:"name,omitempty"`
	IsVerified          bool      `bun:"is_verified" json:"is_verified"`
	EligibilityStatus   string    `bun:"eligibility_status,nullzero" json:"eligibility_status,omitempty"`
	Address             string    `bun:"address,nullzero" json:"address,omitempty"`
	City                string    `bun:"city,nullzero" json:"city,omitempty"`
	Pincode             string    `bun:"pincode,nullzero" json:"pincode,omitempty"`
	Language            string    `bun:"language,nullzero" json:"language,omitempty"`
	SchoolGoingChildren int       `bun:"school_going_children" json:"school_going_children"`
	CreatedAt           time.Time `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt           time.Time `bun:"updated_at,nullzero" json:"updated_at,omitempty"`
}

// ProfileUpdate carries the user-editable profile fields. Zero values are
// skipped on update so partial payloads don't wipe columns.
type ProfileUpdate struct {
	Name                string `json:"name"`
	Address             string `json:"address"`
	City                string `json:"city"`
	Pincode             string `json:"pincode"`
	Language            string `json:"language"`
	SchoolGoingChildren *int   `json:"school_going_children"`
}
