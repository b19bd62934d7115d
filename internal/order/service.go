package order

import (
	"errors"
	"fmt"
	"strings"

	"grosave/internal/logger"
	"grosave/internal/models"
	"grosave/internal/order/db"
	"grosave/internal/pickup"
	"grosave/internal/utils"
)

// ErrValidation marks malformed reservation input (missing fields,
// non-positive quantity, unparseable date).
var ErrValidation = errors.New("invalid request")

type DBLayer interface {
	Reserve(p db.ReserveParams) (*models.Order, error)
	Cancel(orderID, userID string) (*models.Order, error)
	MarkReady(orderID, userID string) (*models.Order, error)
	MarkScanned(orderID, userID string) (*models.Order, error)
	Complete(orderID, userID string) (*models.Order, error)
	GetOrderByID(id string) (*models.Order, error)
	GetOrderForUser(id, userID string) (*models.Order, error)
	GetOrderByIdempotencyKey(userID, key string) (*models.Order, error)
	GetActiveOrders(userID string) ([]models.Order, error)
	GetPastOrders(userID string) ([]models.Order, error)
}

type KafkaPublisher interface {
	PublishOrderEvent(eventType models.OrderEventType, order models.Order) error
}

// OrderService is the lifecycle manager: it validates reservation input,
// runs the atomic transitions through the DB layer, and streams lifecycle
// events after commit.
type OrderService struct {
	DB           DBLayer
	Kafka        KafkaPublisher
	Logger       *logger.Logger
	SlotCapacity int
}

func NewOrderService(dbLayer DBLayer, kafka KafkaPublisher, log *logger.Logger, slotCapacity int) *OrderService {
	return &OrderService{DB: dbLayer, Kafka: kafka, Logger: log, SlotCapacity: slotCapacity}
}

// Reserve validates and places a reservation. A repeated Idempotency-Key
// returns the order the first attempt created instead of reserving twice.
func (s *OrderService) Reserve(userID string, req models.ReserveRequest, idempotencyKey string) (*models.Order, error) {
	if req.ProductID == "" || req.PickupLocationID == "" || req.PickupDate == "" {
		return nil, fmt.Errorf("%w: missing fields", ErrValidation)
	}
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be positive", ErrValidation)
	}

	pickupDate, err := utils.ParsePickupDate(req.PickupDate)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid pickup date", ErrValidation)
	}

	slot, err := pickup.NormalizeSlot(req.PickupTimeSlot)
	if err != nil {
		return nil, err
	}

	if idempotencyKey != "" {
		if existing, err := s.DB.GetOrderByIdempotencyKey(userID, idempotencyKey); err == nil {
			s.Logger.LogOrder("RESERVE", existing.ID, "idempotency key replay, returning existing order")
			return existing, nil
		}
	}

	created, err := s.DB.Reserve(db.ReserveParams{
		UserID:           userID,
		ProductID:        req.ProductID,
		Quantity:         req.Quantity,
		PickupLocationID: req.PickupLocationID,
		PickupTimeSlot:   req.PickupTimeSlot,
		PickupDate:       utils.AtMidnight(pickupDate),
		Slot:             slot,
		SlotCapacity:     s.SlotCapacity,
		IdempotencyKey:   idempotencyKey,
	})
	if err != nil {
		// Two racing requests with the same key: the loser hits the unique
		// constraint and picks up the winner's order.
		if idempotencyKey != "" && isUniqueViolation(err) {
			if existing, lookupErr := s.DB.GetOrderByIdempotencyKey(userID, idempotencyKey); lookupErr == nil {
				return existing, nil
			}
		}
		return nil, err
	}

	s.Logger.LogOrder("RESERVE", created.ID, fmt.Sprintf("order %s confirmed, %d coins", created.OrderNumber, created.CoinsSpent))
	s.publish(models.EventReserved, *created)

	return s.withDetails(created)
}

func (s *OrderService) GetOrder(id string) (*models.Order, error) {
	return s.DB.GetOrderByID(id)
}

func (s *OrderService) GetOrderForUser(id, userID string) (*models.Order, error) {
	return s.DB.GetOrderForUser(id, userID)
}

func (s *OrderService) ActiveOrders(userID string) ([]models.Order, error) {
	return s.DB.GetActiveOrders(userID)
}

func (s *OrderService) PastOrders(userID string) ([]models.Order, error) {
	return s.DB.GetPastOrders(userID)
}

// Cancel refunds and closes an order owned by userID.
func (s *OrderService) Cancel(orderID, userID string) error {
	order, err := s.DB.Cancel(orderID, userID)
	if err != nil {
		return err
	}
	s.Logger.LogOrder("CANCEL", order.ID, fmt.Sprintf("order %s cancelled, %d coins refunded", order.OrderNumber, order.CoinsSpent))
	s.publish(models.EventCancelled, *order)
	return nil
}

func (s *OrderService) MarkReady(orderID, userID string) error {
	order, err := s.DB.MarkReady(orderID, userID)
	if err != nil {
		return err
	}
	s.Logger.LogOrder("READY", order.ID, fmt.Sprintf("order %s ready for pickup", order.OrderNumber))
	s.publish(models.EventReady, *order)
	return nil
}

func (s *OrderService) MarkScanned(orderID, userID string) error {
	order, err := s.DB.MarkScanned(orderID, userID)
	if err != nil {
		return err
	}
	s.Logger.LogOrder("SCAN", order.ID, fmt.Sprintf("order %s scanned at counter", order.OrderNumber))
	s.publish(models.EventScanned, *order)
	return nil
}

func (s *OrderService) Complete(orderID, userID string) error {
	order, err := s.DB.Complete(orderID, userID)
	if err != nil {
		return err
	}
	s.Logger.LogOrder("COMPLETE", order.ID, fmt.Sprintf("order %s completed", order.OrderNumber))
	s.publish(models.EventCompleted, *order)
	return nil
}

func (s *OrderService) publish(eventType models.OrderEventType, order models.Order) {
	if s.Kafka == nil {
		return
	}
	if err := s.Kafka.PublishOrderEvent(eventType, order); err != nil {
		s.Logger.Error("KAFKA", fmt.Sprintf("publish %s for order %s: %v", eventType, order.ID, err))
	}
}

// withDetails reloads an order with its product and location joined, for
// the denormalized payload clients render.
func (s *OrderService) withDetails(order *models.Order) (*models.Order, error) {
	detailed, err := s.DB.GetOrderByID(order.ID)
	if err != nil {
		// The order exists; return it bare rather than failing the call.
		return order, nil
	}
	return detailed, nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}
