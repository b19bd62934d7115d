package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Product struct {
	bun.BaseModel `bun:"table:products"`

	ID          string   `bun:"id,pk" json:"id"`
	Name        string   `bun:"name,notnull" json:"name"`
	Brand       string   `bun:"brand,nullzero" json:"brand,omitempty"`
	Category    string   `bun:"category,notnull" json:"category"`
	Description string   `bun:"description,nullzero" json:"description,omitempty"`
	Image       string   `bun:"image,nullzero" json:"image,omitempty"`
	Images      []string `bun:"images,type:jsonb" json:"images,omitempty"`

	CurrentPrice  int64 `bun:"current_price,notnull" json:"current_price"`
	OriginalPrice int64 `bun:"original_price,notnull" json:"original_price"`
	Discount      int   `bun:"discount" json:"discount"`

	ExpiryStatus   string    `bun:"expiry_status,nullzero" json:"expiry_status,omitempty"`
	ExpiryDate     time.Time `bun:"expiry_date,nullzero" json:"expiry_date"`
	UnitsAvailable int       `bun:"units_available,notnull" json:"units_available"`
	IsActive       bool      `bun:"is_active" json:"is_active"`

	// ManuallyDeactivated records an operator takedown, separately from the
	// stock-driven is_active flag. A cancellation restock never reactivates a
	// product an operator pulled.
	ManuallyDeactivated bool `bun:"manually_deactivated" json:"-"`

	NutritionInfo map[string]any `bun:"nutrition_info,type:jsonb" json:"nutrition_info,omitempty"`
	StorageInfo   []string       `bun:"storage_info,type:jsonb" json:"storage_info,omitempty"`
	SafetyInfo    []string       `bun:"safety_info,type:jsonb" json:"safety_info,omitempty"`

	DynamicPricingEnabled          bool `bun:"dynamic_pricing_enabled" json:"dynamic_pricing_enabled"`
	DropToPriceAtHoursBeforeExpiry int  `bun:"drop_to_price_at_hours_before_expiry" json:"drop_to_price_at_hours_before_expiry,omitempty"`
	FreeAtHoursBeforeExpiry        int  `bun:"free_at_hours_before_expiry" json:"free_at_hours_before_expiry,omitempty"`

	CreatedAt time.Time `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt time.Time `bun:"updated_at,nullzero" json:"updated_at,omitempty"`
}

type Category struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ProductCount int    `json:"productCount"`
}
