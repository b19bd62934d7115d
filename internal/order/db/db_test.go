package db

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"

	"grosave/internal/models"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, "file::memory:?cache=shared")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	bunDB := bun.NewDB(sqldb, sqlitedialect.New())

	ctx := context.Background()
	for _, m := range []interface{}{
		(*models.User)(nil),
		(*models.Wallet)(nil),
		(*models.Product)(nil),
		(*models.PickupLocation)(nil),
		(*models.PickupSlot)(nil),
		(*models.Order)(nil),
		(*models.OrderEvent)(nil),
		(*models.Transaction)(nil),
		(*models.Notification)(nil),
	} {
		require.NoError(t, bunDB.ResetModel(ctx, m))
	}

	t.Cleanup(func() { _ = bunDB.Close() })
	return &DB{Bun: bunDB}
}

func seedFixtures(t *testing.T, d *DB, balance int64, price int64, units int) {
	t.Helper()
	ctx := context.Background()

	user := &models.User{ID: "user-1", Phone: "9999900001", CreatedAt: time.Now()}
	_, err := d.Bun.NewInsert().Model(user).Exec(ctx)
	require.NoError(t, err)

	wallet := &models.Wallet{
		ID:             "wallet-1",
		UserID:         "user-1",
		CurrentBalance: balance,
		MonthlyCredit:  balance,
		CreatedAt:      time.Now(),
	}
	_, err = d.Bun.NewInsert().Model(wallet).Exec(ctx)
	require.NoError(t, err)

	product := &models.Product{
		ID:             "prod-1",
		Name:           "Organic Whole Milk",
		Category:       "Dairy",
		CurrentPrice:   price,
		OriginalPrice:  price * 4,
		UnitsAvailable: units,
		IsActive:       true,
		ExpiryDate:     time.Now().Add(96 * time.Hour),
		CreatedAt:      time.Now(),
	}
	_, err = d.Bun.NewInsert().Model(product).Exec(ctx)
	require.NoError(t, err)

	location := &models.PickupLocation{
		ID:       "loc-1",
		Name:     "Malleswaram Kirana Hub",
		IsActive: true,
	}
	_, err = d.Bun.NewInsert().Model(location).Exec(ctx)
	require.NoError(t, err)
}

func midnight() time.Time {
	now := time.Now().UTC()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func reserveParams(qty int) ReserveParams {
	return ReserveParams{
		UserID:           "user-1",
		ProductID:        "prod-1",
		Quantity:         qty,
		PickupLocationID: "loc-1",
		PickupDate:       midnight(),
		Slot:             models.SlotMorning,
		SlotCapacity:     15,
	}
}

func walletBalance(t *testing.T, d *DB) int64 {
	t.Helper()
	var wallet models.Wallet
	require.NoError(t, d.Bun.NewSelect().Model(&wallet).Where("user_id = ?", "user-1").Scan(context.Background()))
	return wallet.CurrentBalance
}

func productState(t *testing.T, d *DB) models.Product {
	t.Helper()
	var product models.Product
	require.NoError(t, d.Bun.NewSelect().Model(&product).Where("id = ?", "prod-1").Scan(context.Background()))
	return product
}

func slotState(t *testing.T, d *DB) *models.PickupSlot {
	t.Helper()
	var slot models.PickupSlot
	err := d.Bun.NewSelect().Model(&slot).Where("pickup_location_id = ?", "loc-1").Scan(context.Background())
	if err != nil {
		return nil
	}
	return &slot
}

func TestReserveHappyPath(t *testing.T) {
	d := setupTestDB(t)
	seedFixtures(t, d, 1000, 50, 23)

	order, err := d.Reserve(reserveParams(2))
	require.NoError(t, err)

	assert.Equal(t, models.OrderConfirmed, order.Status)
	assert.EqualValues(t, 100, order.CoinsSpent)
	assert.Regexp(t, `^GS24\d{11}$`, order.OrderNumber)
	assert.Regexp(t, `^\d{4}-\d{4}-\d+$`, order.VerificationCode)
	assert.Equal(t, "Morning (8 AM - 12 PM)", order.PickupTimeSlot)

	assert.EqualValues(t, 900, walletBalance(t, d))

	product := productState(t, d)
	assert.Equal(t, 21, product.UnitsAvailable)
	assert.True(t, product.IsActive)

	slot := slotState(t, d)
	require.NotNil(t, slot)
	assert.Equal(t, 2, slot.ReservedCount)

	var txn models.Transaction
	require.NoError(t, d.Bun.NewSelect().Model(&txn).Where("related_order_id = ?", order.ID).Scan(context.Background()))
	assert.Equal(t, models.TxDebit, txn.Type)
	assert.EqualValues(t, 100, txn.Amount)
	assert.EqualValues(t, 900, txn.BalanceAfter)

	var events []models.OrderEvent
	require.NoError(t, d.Bun.NewSelect().Model(&events).Where("order_id = ?", order.ID).Scan(context.Background()))
	require.Len(t, events, 1)
	assert.Equal(t, models.EventReserved, events[0].Type)

	count, err := d.Bun.NewSelect().Model((*models.Notification)(nil)).Where("order_id = ?", order.ID).Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestReserveInsufficientBalanceLeavesStateUntouched(t *testing.T) {
	d := setupTestDB(t)
	seedFixtures(t, d, 80, 50, 23)

	_, err := d.Reserve(reserveParams(2))
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	assert.EqualValues(t, 80, walletBalance(t, d))
	assert.Equal(t, 23, productState(t, d).UnitsAvailable)

	count, err := d.Bun.NewSelect().Model((*models.Order)(nil)).Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestReserveInsufficientStock(t *testing.T) {
	d := setupTestDB(t)
	seedFixtures(t, d, 1000, 50, 1)

	_, err := d.Reserve(reserveParams(2))
	assert.ErrorIs(t, err, ErrInsufficientStock)
	assert.EqualValues(t, 1000, walletBalance(t, d))
}

func TestReserveInactiveProduct(t *testing.T) {
	d := setupTestDB(t)
	seedFixtures(t, d, 1000, 50, 23)

	_, err := d.Bun.NewUpdate().Model((*models.Product)(nil)).
		Set("is_active = ?", false).
		Where("id = ?", "prod-1").
		Exec(context.Background())
	require.NoError(t, err)

	_, err = d.Reserve(reserveParams(1))
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestReserveDeactivatesProductAtZeroStock(t *testing.T) {
	d := setupTestDB(t)
	seedFixtures(t, d, 1000, 50, 2)

	_, err := d.Reserve(reserveParams(2))
	require.NoError(t, err)

	product := productState(t, d)
	assert.Equal(t, 0, product.UnitsAvailable)
	assert.False(t, product.IsActive)
}

func TestReserveSlotCapacityBound(t *testing.T) {
	d := setupTestDB(t)
	seedFixtures(t, d, 10000, 10, 100)

	// Fill the slot to 14 of 15.
	_, err := d.Reserve(reserveParams(14))
	require.NoError(t, err)

	_, err = d.Reserve(reserveParams(2))
	assert.ErrorIs(t, err, ErrSlotCapacityExceeded)

	slot := slotState(t, d)
	require.NotNil(t, slot)
	assert.Equal(t, 14, slot.ReservedCount)

	// A reservation that fits the remaining capacity still goes through.
	_, err = d.Reserve(reserveParams(1))
	require.NoError(t, err)
	assert.Equal(t, 15, slotState(t, d).ReservedCount)
}

func TestCancelRefundsAndRestores(t *testing.T) {
	d := setupTestDB(t)
	seedFixtures(t, d, 1000, 50, 23)

	order, err := d.Reserve(reserveParams(2))
	require.NoError(t, err)

	cancelled, err := d.Cancel(order.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, models.OrderCancelled, cancelled.Status)
	assert.False(t, cancelled.CancelledAt.IsZero())

	assert.EqualValues(t, 1000, walletBalance(t, d))

	product := productState(t, d)
	assert.Equal(t, 23, product.UnitsAvailable)
	assert.True(t, product.IsActive)

	assert.Equal(t, 0, slotState(t, d).ReservedCount)

	var refund models.Transaction
	require.NoError(t, d.Bun.NewSelect().Model(&refund).
		Where("related_order_id = ?", order.ID).
		Where("type = ?", models.TxRefund).
		Scan(context.Background()))
	assert.EqualValues(t, 100, refund.Amount)
	assert.EqualValues(t, 1000, refund.BalanceAfter)
}

func TestCancelTwiceRefundsOnce(t *testing.T) {
	d := setupTestDB(t)
	seedFixtures(t, d, 1000, 50, 23)

	order, err := d.Reserve(reserveParams(2))
	require.NoError(t, err)

	_, err = d.Cancel(order.ID, "user-1")
	require.NoError(t, err)
	assert.EqualValues(t, 1000, walletBalance(t, d))

	_, err = d.Cancel(order.ID, "user-1")
	assert.ErrorIs(t, err, ErrOrderNotFound)

	// No second refund, no second restock, no slot underflow.
	assert.EqualValues(t, 1000, walletBalance(t, d))
	assert.Equal(t, 23, productState(t, d).UnitsAvailable)
	assert.Equal(t, 0, slotState(t, d).ReservedCount)

	var refunds []models.Transaction
	require.NoError(t, d.Bun.NewSelect().Model(&refunds).
		Where("related_order_id = ?", order.ID).
		Where("type = ?", models.TxRefund).
		Scan(context.Background()))
	assert.Len(t, refunds, 1)
}

func TestCancelRollsBackOnSlotUnderflow(t *testing.T) {
	d := setupTestDB(t)
	seedFixtures(t, d, 1000, 50, 23)

	order, err := d.Reserve(reserveParams(2))
	require.NoError(t, err)

	// Force the slot below the order quantity so the release guard trips.
	_, err = d.Bun.NewUpdate().Model((*models.PickupSlot)(nil)).
		Set("reserved_count = ?", 1).
		Where("id = ?", order.PickupSlotID).
		Exec(context.Background())
	require.NoError(t, err)

	_, err = d.Cancel(order.ID, "user-1")
	assert.ErrorIs(t, err, ErrInvalidState)

	// The whole transaction rolled back: no refund, order still open.
	assert.EqualValues(t, 900, walletBalance(t, d))
	assert.Equal(t, 21, productState(t, d).UnitsAvailable)

	var current models.Order
	require.NoError(t, d.Bun.NewSelect().Model(&current).
		Where("id = ?", order.ID).
		Scan(context.Background()))
	assert.Equal(t, models.OrderConfirmed, current.Status)
}

func TestCancelDoesNotReactivateManuallyDeactivatedProduct(t *testing.T) {
	d := setupTestDB(t)
	seedFixtures(t, d, 1000, 50, 2)

	order, err := d.Reserve(reserveParams(2))
	require.NoError(t, err)
	require.False(t, productState(t, d).IsActive)

	_, err = d.Bun.NewUpdate().Model((*models.Product)(nil)).
		Set("manually_deactivated = ?", true).
		Where("id = ?", "prod-1").
		Exec(context.Background())
	require.NoError(t, err)

	_, err = d.Cancel(order.ID, "user-1")
	require.NoError(t, err)

	product := productState(t, d)
	assert.Equal(t, 2, product.UnitsAvailable)
	assert.False(t, product.IsActive)
}

func TestCancelWrongUser(t *testing.T) {
	d := setupTestDB(t)
	seedFixtures(t, d, 1000, 50, 23)

	order, err := d.Reserve(reserveParams(1))
	require.NoError(t, err)

	_, err = d.Cancel(order.ID, "someone-else")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestLifecycleTransitions(t *testing.T) {
	d := setupTestDB(t)
	seedFixtures(t, d, 1000, 50, 23)

	order, err := d.Reserve(reserveParams(1))
	require.NoError(t, err)

	ready, err := d.MarkReady(order.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, models.OrderReady, ready.Status)

	scanned, err := d.MarkScanned(order.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, models.OrderReady, scanned.Status)
	assert.False(t, scanned.ScannedAt.IsZero())

	completed, err := d.Complete(order.ID, "user-1")
	require.NoError(t, err)
	assert.Equal(t, models.OrderCompleted, completed.Status)
	assert.False(t, completed.CompletedAt.IsZero())
}

func TestTransitionGates(t *testing.T) {
	d := setupTestDB(t)
	seedFixtures(t, d, 1000, 50, 23)

	order, err := d.Reserve(reserveParams(1))
	require.NoError(t, err)

	_, err = d.Complete(order.ID, "user-1")
	require.NoError(t, err)

	_, err = d.Complete(order.ID, "user-1")
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = d.MarkReady(order.ID, "user-1")
	assert.ErrorIs(t, err, ErrInvalidState)

	_, err = d.Cancel(order.ID, "user-1")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestGetOrderByIdempotencyKey(t *testing.T) {
	d := setupTestDB(t)
	seedFixtures(t, d, 1000, 50, 23)

	params := reserveParams(1)
	params.IdempotencyKey = "retry-abc"
	order, err := d.Reserve(params)
	require.NoError(t, err)

	found, err := d.GetOrderByIdempotencyKey("user-1", "retry-abc")
	require.NoError(t, err)
	assert.Equal(t, order.ID, found.ID)

	_, err = d.GetOrderByIdempotencyKey("user-1", "never-used")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestActiveAndPastOrders(t *testing.T) {
	d := setupTestDB(t)
	seedFixtures(t, d, 10000, 10, 100)

	first, err := d.Reserve(reserveParams(1))
	require.NoError(t, err)
	second, err := d.Reserve(reserveParams(1))
	require.NoError(t, err)

	_, err = d.Complete(second.ID, "user-1")
	require.NoError(t, err)

	active, err := d.GetActiveOrders("user-1")
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, first.ID, active[0].ID)

	past, err := d.GetPastOrders("user-1")
	require.NoError(t, err)
	require.Len(t, past, 1)
	assert.Equal(t, second.ID, past[0].ID)
}
