package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"grosave/internal/models"
	pickupdb "grosave/internal/pickup/db"
	"grosave/internal/utils"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type DB struct {
	Bun *bun.DB
}

// ReserveParams is the validated input to the reservation transaction. The
// service layer has already normalized the slot bucket and pickup date.
type ReserveParams struct {
	UserID           string
	ProductID        string
	Quantity         int
	PickupLocationID string
	PickupTimeSlot   string
	PickupDate       time.Time
	Slot             models.SlotID
	SlotCapacity     int
	IdempotencyKey   string
}

// ---------------- READS ----------------

func (d *DB) GetOrderByID(id string) (*models.Order, error) {
	var order models.Order
	err := d.Bun.NewSelect().
		Model(&order).
		Relation("Product").
		Relation("PickupLocation").
		Where("\"order\".id = ?", id).
		Limit(1).
		Scan(context.Background())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (d *DB) GetOrderForUser(id, userID string) (*models.Order, error) {
	var order models.Order
	err := d.Bun.NewSelect().
		Model(&order).
		Where("id = ?", id).
		Where("user_id = ?", userID).
		Limit(1).
		Scan(context.Background())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// GetOrderByIdempotencyKey returns the order a previous attempt with the
// same key created, if any.
func (d *DB) GetOrderByIdempotencyKey(userID, key string) (*models.Order, error) {
	var order models.Order
	err := d.Bun.NewSelect().
		Model(&order).
		Relation("Product").
		Relation("PickupLocation").
		Where("\"order\".user_id = ?", userID).
		Where("\"order\".idempotency_key = ?", key).
		Limit(1).
		Scan(context.Background())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (d *DB) listOrders(userID string, statuses []models.OrderStatus) ([]models.Order, error) {
	var orders []models.Order
	err := d.Bun.NewSelect().
		Model(&orders).
		Relation("Product").
		Relation("PickupLocation").
		Where("\"order\".user_id = ?", userID).
		Where("\"order\".status IN (?)", bun.In(statuses)).
		Order("reserved_at DESC").
		Scan(context.Background())
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []models.Order{}
	}
	return orders, nil
}

// GetActiveOrders returns confirmed and ready orders, newest first.
func (d *DB) GetActiveOrders(userID string) ([]models.Order, error) {
	return d.listOrders(userID, []models.OrderStatus{models.OrderConfirmed, models.OrderReady})
}

// GetPastOrders returns completed and cancelled orders, newest first.
func (d *DB) GetPastOrders(userID string) ([]models.Order, error) {
	return d.listOrders(userID, []models.OrderStatus{models.OrderCompleted, models.OrderCancelled})
}

// ---------------- RESERVATION ----------------

// Reserve runs the whole reservation as one transaction: wallet debit,
// stock decrement, slot increment, order row, audit event, ledger entry,
// notification. Either all seven land or none do.
//
// The balance/stock/capacity checks are repeated as WHERE guards on the
// decrementing updates, so two racing reservations cannot both get past a
// ceiling regardless of isolation level.
func (d *DB) Reserve(p ReserveParams) (*models.Order, error) {
	ctx := context.Background()
	var created *models.Order

	err := d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var product models.Product
		err := tx.NewSelect().
			Model(&product).
			Where("id = ?", p.ProductID).
			Limit(1).
			Scan(ctx)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrProductNotFound
		}
		if err != nil {
			return fmt.Errorf("fetch product: %w", err)
		}
		if !product.IsActive {
			return ErrProductNotFound
		}
		if product.UnitsAvailable < p.Quantity {
			return ErrInsufficientStock
		}

		cost := product.CurrentPrice * int64(p.Quantity)

		var wallet models.Wallet
		err = tx.NewSelect().
			Model(&wallet).
			Where("user_id = ?", p.UserID).
			Limit(1).
			Scan(ctx)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrWalletNotFound
		}
		if err != nil {
			return fmt.Errorf("fetch wallet: %w", err)
		}
		if wallet.CurrentBalance < cost {
			return ErrInsufficientBalance
		}

		slot, err := pickupdb.EnsureSlot(ctx, tx, p.PickupLocationID, p.PickupDate, p.Slot, p.SlotCapacity)
		if err != nil {
			return fmt.Errorf("ensure slot: %w", err)
		}
		if slot.ReservedCount+p.Quantity > slot.Capacity {
			return ErrSlotCapacityExceeded
		}

		// Debit wallet, guarded against a concurrent debit.
		res, err := tx.NewUpdate().
			Model((*models.Wallet)(nil)).
			Set("current_balance = current_balance - ?", cost).
			Set("spent = spent + ?", cost).
			Where("id = ?", wallet.ID).
			Where("current_balance >= ?", cost).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("debit wallet: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrInsufficientBalance
		}

		// Take stock; deactivate the product when it runs out.
		res, err = tx.NewUpdate().
			Model((*models.Product)(nil)).
			Set("units_available = units_available - ?", p.Quantity).
			Set("is_active = units_available - ? > 0", p.Quantity).
			Where("id = ?", product.ID).
			Where("units_available >= ?", p.Quantity).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("decrement stock: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrInsufficientStock
		}

		// Claim slot capacity.
		res, err = tx.NewUpdate().
			Model((*models.PickupSlot)(nil)).
			Set("reserved_count = reserved_count + ?", p.Quantity).
			Where("id = ?", slot.ID).
			Where("reserved_count + ? <= capacity", p.Quantity).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("reserve slot: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrSlotCapacityExceeded
		}

		balanceAfter := wallet.CurrentBalance - cost
		orderNumber := utils.GenerateOrderNumber()

		pickupTimeSlot := p.PickupTimeSlot
		if pickupTimeSlot == "" {
			pickupTimeSlot = slot.Label
		}

		order := &models.Order{
			ID:               uuid.NewString(),
			OrderNumber:      orderNumber,
			UserID:           p.UserID,
			ProductID:        p.ProductID,
			Quantity:         p.Quantity,
			CoinsSpent:       cost,
			Status:           models.OrderConfirmed,
			PickupLocationID: p.PickupLocationID,
			PickupTimeSlot:   pickupTimeSlot,
			PickupDate:       p.PickupDate,
			PickupSlotID:     slot.ID,
			VerificationCode: utils.VerificationCode(orderNumber),
			IdempotencyKey:   p.IdempotencyKey,
			ReservedAt:       time.Now(),
		}
		if _, err := tx.NewInsert().Model(order).Exec(ctx); err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		if err := insertEvent(ctx, tx, order.ID, models.EventReserved, map[string]any{"quantity": p.Quantity}); err != nil {
			return err
		}
		if err := insertTransaction(ctx, tx, p.UserID, models.TxDebit, cost,
			fmt.Sprintf("Order %s", order.OrderNumber), order.ID, balanceAfter); err != nil {
			return err
		}
		if err := insertNotification(ctx, tx, p.UserID, "order", "Order Confirmed",
			fmt.Sprintf("Order %s reserved. Show QR at pickup.", order.OrderNumber), order.ID); err != nil {
			return err
		}

		created = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// ---------------- LIFECYCLE ----------------

// Cancel refunds the wallet, restores stock and slot capacity, and closes
// the order, atomically. Only confirmed and ready orders are cancellable.
func (d *DB) Cancel(orderID, userID string) (*models.Order, error) {
	ctx := context.Background()
	var cancelled *models.Order

	err := d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var order models.Order
		err := tx.NewSelect().
			Model(&order).
			Where("id = ?", orderID).
			Where("user_id = ?", userID).
			Where("status IN (?)", bun.In([]models.OrderStatus{models.OrderConfirmed, models.OrderReady})).
			Limit(1).
			Scan(ctx)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrOrderNotFound
		}
		if err != nil {
			return fmt.Errorf("fetch order: %w", err)
		}

		// The status predicate makes the update a no-op when a concurrent
		// cancel or complete already closed the order.
		now := time.Now()
		res, err := tx.NewUpdate().
			Model((*models.Order)(nil)).
			Set("status = ?", models.OrderCancelled).
			Set("cancelled_at = ?", now).
			Where("id = ?", order.ID).
			Where("status IN (?)", bun.In([]models.OrderStatus{models.OrderConfirmed, models.OrderReady})).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("update order: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return ErrInvalidState
		}

		var wallet models.Wallet
		err = tx.NewSelect().
			Model(&wallet).
			Where("user_id = ?", userID).
			Limit(1).
			Scan(ctx)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrWalletNotFound
		}
		if err != nil {
			return fmt.Errorf("fetch wallet: %w", err)
		}

		_, err = tx.NewUpdate().
			Model((*models.Wallet)(nil)).
			Set("current_balance = current_balance + ?", order.CoinsSpent).
			Set("spent = spent - ?", order.CoinsSpent).
			Where("id = ?", wallet.ID).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("refund wallet: %w", err)
		}

		// Restock. Reactivation is conditional: a product an operator pulled,
		// or one already past expiry, stays down.
		_, err = tx.NewUpdate().
			Model((*models.Product)(nil)).
			Set("units_available = units_available + ?", order.Quantity).
			Set("is_active = CASE WHEN manually_deactivated OR (expiry_date IS NOT NULL AND expiry_date < ?) THEN is_active ELSE ? END", now, true).
			Where("id = ?", order.ProductID).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("restore stock: %w", err)
		}

		if order.PickupSlotID != "" {
			res, err := tx.NewUpdate().
				Model((*models.PickupSlot)(nil)).
				Set("reserved_count = reserved_count - ?", order.Quantity).
				Where("id = ?", order.PickupSlotID).
				Where("reserved_count >= ?", order.Quantity).
				Exec(ctx)
			if err != nil {
				return fmt.Errorf("release slot: %w", err)
			}
			if n, _ := res.RowsAffected(); n == 0 {
				return ErrInvalidState
			}
		}

		if err := insertEvent(ctx, tx, order.ID, models.EventCancelled, nil); err != nil {
			return err
		}
		if err := insertTransaction(ctx, tx, userID, models.TxRefund, order.CoinsSpent,
			fmt.Sprintf("Refund: Order %s", order.OrderNumber), order.ID, wallet.CurrentBalance+order.CoinsSpent); err != nil {
			return err
		}
		if err := insertNotification(ctx, tx, userID, "order", "Order Cancelled",
			fmt.Sprintf("Order %s cancelled & coins refunded.", order.OrderNumber), order.ID); err != nil {
			return err
		}

		order.Status = models.OrderCancelled
		order.CancelledAt = now
		cancelled = &order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cancelled, nil
}

// MarkReady moves a confirmed order to ready.
func (d *DB) MarkReady(orderID, userID string) (*models.Order, error) {
	return d.transition(orderID, userID,
		[]models.OrderStatus{models.OrderConfirmed},
		func(ctx context.Context, tx bun.Tx, order *models.Order, now time.Time) error {
			res, err := tx.NewUpdate().
				Model((*models.Order)(nil)).
				Set("status = ?", models.OrderReady).
				Where("id = ?", order.ID).
				Where("status = ?", models.OrderConfirmed).
				Exec(ctx)
			if err != nil {
				return err
			}
			if n, _ := res.RowsAffected(); n == 0 {
				return ErrInvalidState
			}
			order.Status = models.OrderReady
			if err := insertEvent(ctx, tx, order.ID, models.EventReady, nil); err != nil {
				return err
			}
			return insertNotification(ctx, tx, userID, "order", "Order Ready",
				fmt.Sprintf("Order %s is ready for pickup.", order.OrderNumber), order.ID)
		})
}

// MarkScanned records the pickup scan timestamp without changing status.
func (d *DB) MarkScanned(orderID, userID string) (*models.Order, error) {
	return d.transition(orderID, userID,
		[]models.OrderStatus{models.OrderConfirmed, models.OrderReady},
		func(ctx context.Context, tx bun.Tx, order *models.Order, now time.Time) error {
			res, err := tx.NewUpdate().
				Model((*models.Order)(nil)).
				Set("scanned_at = ?", now).
				Where("id = ?", order.ID).
				Where("status IN (?)", bun.In([]models.OrderStatus{models.OrderConfirmed, models.OrderReady})).
				Exec(ctx)
			if err != nil {
				return err
			}
			if n, _ := res.RowsAffected(); n == 0 {
				return ErrInvalidState
			}
			order.ScannedAt = now
			return insertEvent(ctx, tx, order.ID, models.EventScanned, nil)
		})
}

// Complete closes out a confirmed or ready order.
func (d *DB) Complete(orderID, userID string) (*models.Order, error) {
	return d.transition(orderID, userID,
		[]models.OrderStatus{models.OrderConfirmed, models.OrderReady},
		func(ctx context.Context, tx bun.Tx, order *models.Order, now time.Time) error {
			res, err := tx.NewUpdate().
				Model((*models.Order)(nil)).
				Set("status = ?", models.OrderCompleted).
				Set("completed_at = ?", now).
				Where("id = ?", order.ID).
				Where("status IN (?)", bun.In([]models.OrderStatus{models.OrderConfirmed, models.OrderReady})).
				Exec(ctx)
			if err != nil {
				return err
			}
			if n, _ := res.RowsAffected(); n == 0 {
				return ErrInvalidState
			}
			order.Status = models.OrderCompleted
			order.CompletedAt = now
			if err := insertEvent(ctx, tx, order.ID, models.EventCompleted, nil); err != nil {
				return err
			}
			return insertNotification(ctx, tx, userID, "order", "Order Completed",
				fmt.Sprintf("Thanks! Order %s completed.", order.OrderNumber), order.ID)
		})
}

func (d *DB) transition(orderID, userID string, from []models.OrderStatus,
	apply func(ctx context.Context, tx bun.Tx, order *models.Order, now time.Time) error) (*models.Order, error) {

	ctx := context.Background()
	var result *models.Order

	err := d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var order models.Order
		err := tx.NewSelect().
			Model(&order).
			Where("id = ?", orderID).
			Where("user_id = ?", userID).
			Limit(1).
			Scan(ctx)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrOrderNotFound
		}
		if err != nil {
			return fmt.Errorf("fetch order: %w", err)
		}

		allowed := false
		for _, s := range from {
			if order.Status == s {
				allowed = true
				break
			}
		}
		if !allowed {
			return ErrInvalidState
		}

		if err := apply(ctx, tx, &order, time.Now()); err != nil {
			return err
		}
		result = &order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ---------------- AUDIT ROWS ----------------

func insertEvent(ctx context.Context, idb bun.IDB, orderID string, typ models.OrderEventType, meta map[string]any) error {
	event := &models.OrderEvent{
		ID:      uuid.NewString(),
		OrderID: orderID,
		Type:    typ,
		Meta:    meta,
		At:      time.Now(),
	}
	if _, err := idb.NewInsert().Model(event).Exec(ctx); err != nil {
		return fmt.Errorf("insert order event: %w", err)
	}
	return nil
}

func insertTransaction(ctx context.Context, idb bun.IDB, userID string, typ models.TransactionType,
	amount int64, description, orderID string, balanceAfter int64) error {

	txRow := &models.Transaction{
		ID:             uuid.NewString(),
		UserID:         userID,
		Type:           typ,
		Amount:         amount,
		Description:    description,
		RelatedOrderID: orderID,
		BalanceAfter:   balanceAfter,
		CreatedAt:      time.Now(),
	}
	if _, err := idb.NewInsert().Model(txRow).Exec(ctx); err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func insertNotification(ctx context.Context, idb bun.IDB, userID, typ, title, message, orderID string) error {
	note := &models.Notification{
		ID:        uuid.NewString(),
		UserID:    userID,
		Type:      typ,
		Title:     title,
		Message:   message,
		OrderID:   orderID,
		CreatedAt: time.Now(),
	}
	if _, err := idb.NewInsert().Model(note).Exec(ctx); err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	return nil
}

// ForceTransition is the demo-admin override. It skips the status gates on
// purpose and exists outside the lifecycle invariants.
func (d *DB) ForceTransition(orderID string, to models.OrderStatus, scanned bool) (*models.Order, error) {
	ctx := context.Background()
	var result *models.Order

	err := d.Bun.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var order models.Order
		err := tx.NewSelect().
			Model(&order).
			Where("id = ?", orderID).
			Limit(1).
			Scan(ctx)
		if errors.Is(err, sql.ErrNoRows) {
			return ErrOrderNotFound
		}
		if err != nil {
			return err
		}

		now := time.Now()
		q := tx.NewUpdate().Model((*models.Order)(nil)).Where("id = ?", order.ID)
		eventType := models.EventReserved

		if scanned {
			q = q.Set("scanned_at = ?", now)
			order.ScannedAt = now
			eventType = models.EventScanned
		} else {
			q = q.Set("status = ?", to)
			order.Status = to
			switch to {
			case models.OrderCompleted:
				q = q.Set("completed_at = ?", now)
				order.CompletedAt = now
				eventType = models.EventCompleted
			case models.OrderCancelled:
				q = q.Set("cancelled_at = ?", now)
				order.CancelledAt = now
				eventType = models.EventCancelled
			case models.OrderReady:
				eventType = models.EventReady
			}
		}

		if _, err := q.Exec(ctx); err != nil {
			return err
		}
		if err := insertEvent(ctx, tx, order.ID, eventType, map[string]any{"by": "admin", "forcedTo": string(to)}); err != nil {
			return err
		}
		result = &order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
