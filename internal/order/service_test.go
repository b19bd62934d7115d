package order

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"grosave/internal/logger"
	"grosave/internal/models"
	"grosave/internal/order/db"
	"grosave/internal/pickup"
)

type MockDBLayer struct {
	mock.Mock
}

func (m *MockDBLayer) Reserve(p db.ReserveParams) (*models.Order, error) {
	args := m.Called(p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockDBLayer) Cancel(orderID, userID string) (*models.Order, error) {
	args := m.Called(orderID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockDBLayer) MarkReady(orderID, userID string) (*models.Order, error) {
	args := m.Called(orderID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockDBLayer) MarkScanned(orderID, userID string) (*models.Order, error) {
	args := m.Called(orderID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockDBLayer) Complete(orderID, userID string) (*models.Order, error) {
	args := m.Called(orderID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockDBLayer) GetOrderByID(id string) (*models.Order, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockDBLayer) GetOrderForUser(id, userID string) (*models.Order, error) {
	args := m.Called(id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockDBLayer) GetOrderByIdempotencyKey(userID, key string) (*models.Order, error) {
	args := m.Called(userID, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockDBLayer) GetActiveOrders(userID string) ([]models.Order, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Order), args.Error(1)
}

func (m *MockDBLayer) GetPastOrders(userID string) ([]models.Order, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Order), args.Error(1)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishOrderEvent(eventType models.OrderEventType, order models.Order) error {
	args := m.Called(eventType, order)
	return args.Error(0)
}

func newTestService(dbLayer *MockDBLayer, publisher *MockPublisher) *OrderService {
	return NewOrderService(dbLayer, publisher, logger.NewLogger(), 15)
}

func validRequest() models.ReserveRequest {
	return models.ReserveRequest{
		ProductID:        "prod-1",
		Quantity:         2,
		PickupLocationID: "loc-1",
		PickupTimeSlot:   "Morning (8 AM - 12 PM)",
		PickupDate:       time.Now().Format("2006-01-02"),
	}
}

func TestReserveValidation(t *testing.T) {
	svc := newTestService(&MockDBLayer{}, &MockPublisher{})

	cases := []struct {
		name   string
		mutate func(*models.ReserveRequest)
	}{
		{"missing product", func(r *models.ReserveRequest) { r.ProductID = "" }},
		{"missing location", func(r *models.ReserveRequest) { r.PickupLocationID = "" }},
		{"missing date", func(r *models.ReserveRequest) { r.PickupDate = "" }},
		{"zero quantity", func(r *models.ReserveRequest) { r.Quantity = 0 }},
		{"negative quantity", func(r *models.ReserveRequest) { r.Quantity = -3 }},
		{"bad date", func(r *models.ReserveRequest) { r.PickupDate = "next tuesday" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validRequest()
			tc.mutate(&req)
			_, err := svc.Reserve("user-1", req, "")
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestReserveRejectsUnknownSlot(t *testing.T) {
	svc := newTestService(&MockDBLayer{}, &MockPublisher{})

	req := validRequest()
	req.PickupTimeSlot = "Midnight (2 AM - 4 AM)"

	_, err := svc.Reserve("user-1", req, "")
	assert.ErrorIs(t, err, pickup.ErrUnknownSlot)
}

func TestReservePublishesAfterSuccess(t *testing.T) {
	dbLayer := &MockDBLayer{}
	publisher := &MockPublisher{}
	svc := newTestService(dbLayer, publisher)

	created := &models.Order{ID: "order-1", OrderNumber: "GS2412345678901", Status: models.OrderConfirmed}
	dbLayer.On("Reserve", mock.AnythingOfType("db.ReserveParams")).Return(created, nil)
	dbLayer.On("GetOrderByID", "order-1").Return(created, nil)
	publisher.On("PublishOrderEvent", models.EventReserved, *created).Return(nil)

	got, err := svc.Reserve("user-1", validRequest(), "")
	require.NoError(t, err)
	assert.Equal(t, "order-1", got.ID)

	publisher.AssertExpectations(t)
	dbLayer.AssertExpectations(t)
}

func TestReserveIdempotentReplaySkipsReservation(t *testing.T) {
	dbLayer := &MockDBLayer{}
	publisher := &MockPublisher{}
	svc := newTestService(dbLayer, publisher)

	existing := &models.Order{ID: "order-1", Status: models.OrderConfirmed}
	dbLayer.On("GetOrderByIdempotencyKey", "user-1", "retry-abc").Return(existing, nil)

	got, err := svc.Reserve("user-1", validRequest(), "retry-abc")
	require.NoError(t, err)
	assert.Equal(t, "order-1", got.ID)

	dbLayer.AssertNotCalled(t, "Reserve", mock.Anything)
	publisher.AssertNotCalled(t, "PublishOrderEvent", mock.Anything, mock.Anything)
}

func TestReserveUniqueViolationFallsBackToExistingOrder(t *testing.T) {
	dbLayer := &MockDBLayer{}
	publisher := &MockPublisher{}
	svc := newTestService(dbLayer, publisher)

	existing := &models.Order{ID: "order-1", Status: models.OrderConfirmed}
	dbLayer.On("GetOrderByIdempotencyKey", "user-1", "retry-abc").
		Return(nil, db.ErrOrderNotFound).Once()
	dbLayer.On("Reserve", mock.AnythingOfType("db.ReserveParams")).
		Return(nil, errors.New("UNIQUE constraint failed: orders.idempotency_key"))
	dbLayer.On("GetOrderByIdempotencyKey", "user-1", "retry-abc").
		Return(existing, nil).Once()

	got, err := svc.Reserve("user-1", validRequest(), "retry-abc")
	require.NoError(t, err)
	assert.Equal(t, "order-1", got.ID)
}

func TestReservePassesNormalizedParams(t *testing.T) {
	dbLayer := &MockDBLayer{}
	publisher := &MockPublisher{}
	svc := newTestService(dbLayer, publisher)

	var captured db.ReserveParams
	created := &models.Order{ID: "order-1"}
	dbLayer.On("Reserve", mock.AnythingOfType("db.ReserveParams")).
		Run(func(args mock.Arguments) { captured = args.Get(0).(db.ReserveParams) }).
		Return(created, nil)
	dbLayer.On("GetOrderByID", "order-1").Return(created, nil)
	publisher.On("PublishOrderEvent", models.EventReserved, *created).Return(nil)

	req := validRequest()
	req.PickupTimeSlot = "evening"
	_, err := svc.Reserve("user-1", req, "")
	require.NoError(t, err)

	assert.Equal(t, models.SlotEvening, captured.Slot)
	assert.Equal(t, 15, captured.SlotCapacity)
	assert.Equal(t, 0, captured.PickupDate.Hour())
	assert.Equal(t, 0, captured.PickupDate.Minute())
}

func TestCancelPublishes(t *testing.T) {
	dbLayer := &MockDBLayer{}
	publisher := &MockPublisher{}
	svc := newTestService(dbLayer, publisher)

	cancelled := &models.Order{ID: "order-1", Status: models.OrderCancelled}
	dbLayer.On("Cancel", "order-1", "user-1").Return(cancelled, nil)
	publisher.On("PublishOrderEvent", models.EventCancelled, *cancelled).Return(nil)

	require.NoError(t, svc.Cancel("order-1", "user-1"))
	publisher.AssertExpectations(t)
}

func TestCancelErrorDoesNotPublish(t *testing.T) {
	dbLayer := &MockDBLayer{}
	publisher := &MockPublisher{}
	svc := newTestService(dbLayer, publisher)

	dbLayer.On("Cancel", "order-1", "user-1").Return(nil, db.ErrInvalidState)

	err := svc.Cancel("order-1", "user-1")
	assert.ErrorIs(t, err, db.ErrInvalidState)
	publisher.AssertNotCalled(t, "PublishOrderEvent", mock.Anything, mock.Anything)
}
