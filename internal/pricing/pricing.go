package pricing

import (
	"errors"
	"math"
)

// Business rails: suggestions never leave the 10%–100% MRP band.
const (
	MinPercentOfMRP = 0.10
	MaxPercentOfMRP = 1.00
)

var ErrInvalidMRP = errors.New("mrp must be positive")

// Signals are the product and market inputs the heuristic is allowed to
// use. Nothing user-specific goes in here.
type Signals struct {
	ProductID     string  `json:"productId"`
	MRP           int64   `json:"mrp"`
	HoursToExpiry float64 `json:"hoursToExpiry"`
	Inventory     int     `json:"inventory"`
	DemandScore   float64 `json:"demandScore"`
	SellThrough7d float64 `json:"sellThrough7d"`
}

type Suggestion struct {
	ProductID      string `json:"productId"`
	SuggestedPrice int64  `json:"suggestedPrice"`
	MinPrice       int64  `json:"minPrice"`
	MaxPrice       int64  `json:"maxPrice"`
	Rationale      string `json:"rationale"`
}

// Suggest computes a deterministic price from the signals: 70% of MRP as
// the baseline, steeper discounts the closer expiry gets, a cut for
// overstocked low-demand items, a small premium for strong sell-through.
func Suggest(s Signals) (*Suggestion, error) {
	if s.MRP <= 0 {
		return nil, ErrInvalidMRP
	}

	mrp := float64(s.MRP)
	base := mrp * 0.7

	switch {
	case s.HoursToExpiry <= 6:
		base *= 0.6
	case s.HoursToExpiry <= 24:
		base *= 0.7
	case s.HoursToExpiry <= 72:
		base *= 0.8
	}

	if s.Inventory > 50 && s.DemandScore < 0.4 {
		base *= 0.85
	}

	if s.SellThrough7d > 0.7 {
		base *= 1.08
	}

	min := mrp * MinPercentOfMRP
	max := mrp * MaxPercentOfMRP
	base = math.Min(math.Max(base, min), max)

	return &Suggestion{
		ProductID:      s.ProductID,
		SuggestedPrice: int64(math.Round(base)),
		MinPrice:       int64(math.Round(min)),
		MaxPrice:       int64(math.Round(max)),
		Rationale:      "Baseline pricing from expiry, inventory and demand signals.",
	}, nil
}
