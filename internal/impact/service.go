package impact

import (
	"context"
	"time"
)

// Fixed conversion multipliers for the impact summary.
const (
	KgPerUnit     = 1.0
	CO2PerKg      = 2.5
	RupeesPerCoin = 1
)

const rangeDays = 30

type Summary struct {
	RangeDays       int     `json:"rangeDays"`
	OrdersCompleted int     `json:"ordersCompleted"`
	KgRescued       float64 `json:"kgRescued"`
	CO2SavedKg      float64 `json:"co2SavedKg"`
	RupeesSaved     int64   `json:"rupeesSaved"`
}

type Service struct {
	DB *DB
}

func NewService(db *DB) *Service {
	return &Service{DB: db}
}

// UserImpact converts the user's completed orders over the last 30 days
// into rescued weight, avoided CO2 and money saved.
func (s *Service) UserImpact(ctx context.Context, userID string) (*Summary, error) {
	since := time.Now().UTC().AddDate(0, 0, -rangeDays)

	totals, err := s.DB.GetCompletedTotals(ctx, userID, since)
	if err != nil {
		return nil, err
	}

	kg := float64(totals.Units) * KgPerUnit
	return &Summary{
		RangeDays:       rangeDays,
		OrdersCompleted: totals.Orders,
		KgRescued:       kg,
		CO2SavedKg:      kg * CO2PerKg,
		RupeesSaved:     totals.CoinsSpent * RupeesPerCoin,
	}, nil
}
