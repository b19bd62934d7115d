package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"grosave/internal/models"
)

// OrderEventMessage is the payload streamed for every order transition.
type OrderEventMessage struct {
	EventType   models.OrderEventType `json:"eventType"`
	OrderID     string                `json:"orderId"`
	OrderNumber string                `json:"orderNumber"`
	UserID      string                `json:"userId"`
	ProductID   string                `json:"productId"`
	Quantity    int                   `json:"quantity"`
	CoinsSpent  int64                 `json:"coinsSpent"`
	Status      models.OrderStatus    `json:"status"`
	At          time.Time             `json:"at"`
}

type Producer struct {
	Writer *kafka.Writer
}

func NewProducer(brokers []string, topic string) *Producer {
	writer := kafka.NewWriter(kafka.WriterConfig{
		Brokers: brokers,
		Topic:   topic,
	})
	return &Producer{Writer: writer}
}

// PublishOrderEvent streams an order transition, keyed by order ID so all
// events for one order land on the same partition in order.
func (p *Producer) PublishOrderEvent(eventType models.OrderEventType, order models.Order) error {
	msg := OrderEventMessage{
		EventType:   eventType,
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		UserID:      order.UserID,
		ProductID:   order.ProductID,
		Quantity:    order.Quantity,
		CoinsSpent:  order.CoinsSpent,
		Status:      order.Status,
		At:          time.Now().UTC(),
	}

	msgBytes, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	return p.Writer.WriteMessages(context.Background(),
		kafka.Message{
			Key:   []byte(order.ID),
			Value: msgBytes,
		},
	)
}

func (p *Producer) Close() error {
	return p.Writer.Close()
}
