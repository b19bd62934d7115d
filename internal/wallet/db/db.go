package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"grosave/internal/models"
	"grosave/internal/utils"
)

var ErrWalletNotFound = errors.New("wallet not found")

type DB struct {
	Bun *bun.DB
}

func (d *DB) GetWalletByUserID(userID string) (*models.Wallet, error) {
	ctx := context.Background()
	var wallet models.Wallet
	err := d.Bun.NewSelect().Model(&wallet).
		Where("user_id = ?", userID).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrWalletNotFound
	}
	if err != nil {
		return nil, err
	}
	return &wallet, nil
}

func (d *DB) ListTransactions(userID string, limit, offset int) ([]models.Transaction, int, error) {
	ctx := context.Background()
	var txns []models.Transaction
	total, err := d.Bun.NewSelect().Model(&txns).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		ScanAndCount(ctx)
	if err != nil {
		return nil, 0, err
	}
	if txns == nil {
		txns = []models.Transaction{}
	}
	return txns, total, nil
}

// bonusEarnedThisMonth sums bonus credits since the start of the current
// calendar month. The monthly bonus ceiling is enforced against this sum,
// not against the lifetime counter on the wallet row.
func bonusEarnedThisMonth(ctx context.Context, idb bun.IDB, userID string) (int64, error) {
	monthStart := utils.AtMidnight(time.Now().UTC())
	monthStart = time.Date(monthStart.Year(), monthStart.Month(), 1, 0, 0, 0, 0, time.UTC)

	var earned int64
	err := idb.NewSelect().Model((*models.Transaction)(nil)).
		ColumnExpr("COALESCE(SUM(amount), 0)").
		Where("user_id = ?", userID).
		Where("type = ?", models.TxBonus).
		Where("created_at >= ?", monthStart).
		Scan(ctx, &earned)
	if err != nil {
		return 0, err
	}
	return earned, nil
}

// CreditBonus credits a bonus clamped to the remaining monthly headroom and
// returns the amount actually credited. A fully-exhausted ceiling credits
// zero without error. Ledger row, earn event and notification land in the
// same transaction as the balance change.
func (d *DB) CreditBonus(userID string, amount int64, ceiling int64, earnType, title, message string) (int64, error) {
	var credit int64

	ctx := context.Background()
	err := d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var wallet models.Wallet
		if err := tx.NewSelect().Model(&wallet).
			Where("user_id = ?", userID).
			Scan(ctx); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrWalletNotFound
			}
			return err
		}

		// Headroom is computed in the same transaction that spends it.
		earned, err := bonusEarnedThisMonth(ctx, tx, userID)
		if err != nil {
			return err
		}
		headroom := ceiling - earned
		if headroom < 0 {
			headroom = 0
		}
		credit = amount
		if credit > headroom {
			credit = headroom
		}

		if credit > 0 {
			res, err := tx.NewUpdate().Model((*models.Wallet)(nil)).
				Set("current_balance = current_balance + ?", credit).
				Set("bonus_earned = bonus_earned + ?", credit).
				Where("user_id = ?", userID).
				Exec(ctx)
			if err != nil {
				return err
			}
			if n, _ := res.RowsAffected(); n == 0 {
				return ErrWalletNotFound
			}

			txn := &models.Transaction{
				ID:           uuid.NewString(),
				UserID:       userID,
				Type:         models.TxBonus,
				Amount:       credit,
				Description:  title,
				BalanceAfter: wallet.CurrentBalance + credit,
				CreatedAt:    time.Now().UTC(),
			}
			if _, err := tx.NewInsert().Model(txn).Exec(ctx); err != nil {
				return err
			}
		}

		event := &models.EarnEvent{
			ID:     uuid.NewString(),
			UserID: userID,
			Type:   earnType,
			Amount: credit,
			Meta: map[string]any{
				"requested": amount,
				"credited":  credit,
			},
			CreatedAt: time.Now().UTC(),
		}
		if _, err := tx.NewInsert().Model(event).Exec(ctx); err != nil {
			return err
		}

		notification := &models.Notification{
			ID:        uuid.NewString(),
			UserID:    userID,
			Type:      "earn",
			Title:     title,
			Message:   message,
			CreatedAt: time.Now().UTC(),
		}
		_, err = tx.NewInsert().Model(notification).Exec(ctx)
		return err
	})
	if err != nil {
		return 0, err
	}
	return credit, nil
}

// RefillIfDue resets the wallet to its monthly allocation when the refill
// date has passed. Spent resets, bonus history is untouched. Called lazily
// from the balance read path.
func (d *DB) RefillIfDue(userID string) (*models.Wallet, error) {
	ctx := context.Background()
	var wallet *models.Wallet
	err := d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var current models.Wallet
		if err := tx.NewSelect().Model(&current).
			Where("user_id = ?", userID).
			Scan(ctx); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrWalletNotFound
			}
			return err
		}

		now := time.Now().UTC()
		if current.RefillDate.IsZero() || now.Before(current.RefillDate) {
			wallet = &current
			return nil
		}

		nextRefill := current.RefillDate.AddDate(0, 1, 0)
		for !nextRefill.After(now) {
			nextRefill = nextRefill.AddDate(0, 1, 0)
		}

		if _, err := tx.NewUpdate().Model((*models.Wallet)(nil)).
			Set("current_balance = ?", current.MonthlyCredit).
			Set("spent = ?", 0).
			Set("refill_date = ?", nextRefill).
			Where("user_id = ?", userID).
			Exec(ctx); err != nil {
			return err
		}

		txn := &models.Transaction{
			ID:           uuid.NewString(),
			UserID:       userID,
			Type:         models.TxRefill,
			Amount:       current.MonthlyCredit,
			Description:  "Monthly GroCoin refill",
			BalanceAfter: current.MonthlyCredit,
			CreatedAt:    now,
		}
		if _, err := tx.NewInsert().Model(txn).Exec(ctx); err != nil {
			return err
		}

		current.CurrentBalance = current.MonthlyCredit
		current.Spent = 0
		current.RefillDate = nextRefill
		wallet = &current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return wallet, nil
}
