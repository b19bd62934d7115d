package impact

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"grosave/internal/models"
)

type DB struct {
	bun *bun.DB
}

func NewDB(db *bun.DB) *DB {
	return &DB{bun: db}
}

// CompletedTotals aggregates orders a user completed since the cutoff.
type CompletedTotals struct {
	Orders     int   `bun:"orders"`
	Units      int   `bun:"units"`
	CoinsSpent int64 `bun:"coins_spent"`
}

func (db *DB) GetCompletedTotals(ctx context.Context, userID string, since time.Time) (*CompletedTotals, error) {
	var totals CompletedTotals
	err := db.bun.NewSelect().Model((*models.Order)(nil)).
		ColumnExpr("COUNT(*) AS orders").
		ColumnExpr("COALESCE(SUM(quantity), 0) AS units").
		ColumnExpr("COALESCE(SUM(coins_spent), 0) AS coins_spent").
		Where("user_id = ?", userID).
		Where("status = ?", models.OrderCompleted).
		Where("completed_at >= ?", since).
		Scan(ctx, &totals)
	if err != nil {
		return nil, err
	}
	return &totals, nil
}
