package db

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"grosave/internal/models"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// ErrUserNotFound is returned when no user matches the lookup.
var ErrUserNotFound = errors.New("user not found")

type DB struct {
	Bun *bun.DB
}

func (d *DB) GetUserByPhone(phone string) (*models.User, error) {
	var user models.User
	err := d.Bun.NewSelect().
		Model(&user).
		Where("phone = ?", phone).
		Limit(1).
		Scan(context.Background())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (d *DB) GetUserByID(id string) (*models.User, error) {
	var user models.User
	err := d.Bun.NewSelect().
		Model(&user).
		Where("id = ?", id).
		Limit(1).
		Scan(context.Background())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// UpdateProfile writes only the fields the payload actually carries, so a
// partial update never wipes columns.
func (d *DB) UpdateProfile(userID string, upd models.ProfileUpdate, verify bool) (*models.User, error) {
	q := d.Bun.NewUpdate().Model((*models.User)(nil)).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", userID)

	if upd.Name != "" {
		q = q.Set("name = ?", upd.Name)
	}
	if upd.Address != "" {
		q = q.Set("address = ?", upd.Address)
	}
	if upd.City != "" {
		q = q.Set("city = ?", upd.City)
	}
	if upd.Pincode != "" {
		q = q.Set("pincode = ?", upd.Pincode)
	}
	if upd.Language != "" {
		q = q.Set("language = ?", upd.Language)
	}
	if upd.SchoolGoingChildren != nil && *upd.SchoolGoingChildren >= 0 {
		q = q.Set("school_going_children = ?", *upd.SchoolGoingChildren)
	}
	if verify {
		q = q.Set("is_verified = ?", true).
			Set("eligibility_status = ?", "approved")
	}

	res, err := q.Exec(context.Background())
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrUserNotFound
	}
	return d.GetUserByID(userID)
}

// CreateUserWithWallet registers a first-time user and seeds their wallet
// with the monthly allocation, in one transaction.
func (d *DB) CreateUserWithWallet(phone string, allocation int64) (*models.User, error) {
	now := time.Now()
	user := &models.User{
		ID:        uuid.NewString(),
		Phone:     phone,
		CreatedAt: now,
	}
	wallet := &models.Wallet{
		ID:             uuid.NewString(),
		UserID:         user.ID,
		CurrentBalance: allocation,
		MonthlyCredit:  allocation,
		Spent:          0,
		BonusEarned:    0,
		RefillDate:     now.AddDate(0, 1, 0),
		CreatedAt:      now,
	}

	err := d.Bun.RunInTx(context.Background(), nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(user).Exec(ctx); err != nil {
			return err
		}
		_, err := tx.NewInsert().Model(wallet).Exec(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}
