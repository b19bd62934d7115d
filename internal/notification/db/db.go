package db

import (
	"context"
	"errors"

	"github.com/uptrace/bun"

	"grosave/internal/models"
)

var ErrNotificationNotFound = errors.New("notification not found")

type DB struct {
	Bun *bun.DB
}

// ListNotifications returns the user's latest notifications, capped at 100.
func (d *DB) ListNotifications(userID string) ([]models.Notification, error) {
	ctx := context.Background()
	var notifications []models.Notification
	err := d.Bun.NewSelect().Model(&notifications).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(100).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	if notifications == nil {
		notifications = []models.Notification{}
	}
	return notifications, nil
}

func (d *DB) MarkRead(id, userID string) error {
	ctx := context.Background()
	res, err := d.Bun.NewUpdate().Model((*models.Notification)(nil)).
		Set("is_read = ?", true).
		Where("id = ?", id).
		Where("user_id = ?", userID).
		Exec(ctx)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (d *DB) MarkAllRead(userID string) (int64, error) {
	ctx := context.Background()
	res, err := d.Bun.NewUpdate().Model((*models.Notification)(nil)).
		Set("is_read = ?", true).
		Where("user_id = ?", userID).
		Where("is_read = ?", false).
		Exec(ctx)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return n, nil
}
