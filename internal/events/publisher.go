// Package events announces placed orders to downstream consumers.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/Lixing-Zhang/kart-challenge/storefront/internal/models"
	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

// TypeOrderPlaced is the event type of OrderPlaced
const TypeOrderPlaced = "order.placed"

// OrderPlaced is published once per accepted checkout. Card data is reduced
// to the last four digits.
type OrderPlaced struct {
	Type        string          `json:"type"`
	OrderNumber int             `json:"orderNumber"`
	ItemID      int             `json:"itemId"`
	ItemName    string          `json:"itemName"`
	Amount      decimal.Decimal `json:"amount"`
	Email       string          `json:"email"`
	CardLast4   string          `json:"cardLast4"`
	PlacedAt    time.Time       `json:"placedAt"`
}

// NewOrderPlaced builds the event for an order
func NewOrderPlaced(o models.OrderRecord, at time.Time) OrderPlaced {
	return OrderPlaced{
		Type:        TypeOrderPlaced,
		OrderNumber: o.OrderNumber,
		ItemID:      o.Item.ID,
		ItemName:    o.Item.Name,
		Amount:      o.Item.ActualPrice,
		Email:       o.Email,
		CardLast4:   o.CardLast4(),
		PlacedAt:    at.UTC(),
	}
}

// Publisher delivers order events
type Publisher interface {
	PublishOrderPlaced(ctx context.Context, evt OrderPlaced) error
	Close() error
}

// MessageWriter abstracts the kafka writer for testing
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaPublisher writes events to a Kafka topic keyed by order number
type KafkaPublisher struct {
	writer MessageWriter
	logger *slog.Logger
}

// NewKafkaPublisher creates a publisher for the given brokers and topic
func NewKafkaPublisher(brokers []string, topic string, logger *slog.Logger) *KafkaPublisher {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
		MaxAttempts:            3,
		BatchTimeout:           10 * time.Millisecond,
		WriteTimeout:           5 * time.Second,
	}
	return NewKafkaPublisherWithWriter(w, logger)
}

// NewKafkaPublisherWithWriter wraps an existing writer
func NewKafkaPublisherWithWriter(w MessageWriter, logger *slog.Logger) *KafkaPublisher {
	return &KafkaPublisher{writer: w, logger: logger}
}

// PublishOrderPlaced implements Publisher
func (p *KafkaPublisher) PublishOrderPlaced(ctx context.Context, evt OrderPlaced) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(strconv.Itoa(evt.OrderNumber)),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(evt.Type)},
		},
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("failed to publish %s: %w", evt.Type, err)
	}

	p.logger.Debug("event published", "type", evt.Type, "order_number", evt.OrderNumber)
	return nil
}

// Close flushes and closes the writer
func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

// LogPublisher only logs events; used when no broker is configured
type LogPublisher struct {
	logger *slog.Logger
}

// NewLogPublisher creates a logging publisher
func NewLogPublisher(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// PublishOrderPlaced implements Publisher
func (p *LogPublisher) PublishOrderPlaced(ctx context.Context, evt OrderPlaced) error {
	p.logger.Info("order placed",
		"order_number", evt.OrderNumber,
		"item_id", evt.ItemID,
		"amount", evt.Amount.StringFixed(2),
	)
	return nil
}

// Close implements Publisher
func (p *LogPublisher) Close() error { return nil }
