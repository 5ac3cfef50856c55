package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/shaiso/templatehub/internal/catalog"
)

// MessageType — тип сообщения в очереди.
type MessageType string

// Message — сообщение для публикации.
type Message struct {
	// ID — уникальный идентификатор сообщения.
	ID string `json:"id"`

	// Type — тип сообщения.
	Type MessageType `json:"type"`

	// Payload — полезная нагрузка.
	Payload any `json:"payload"`

	// Timestamp — время создания.
	Timestamp time.Time `json:"timestamp"`
}

// publishFunc отправляет готовое сообщение в exchange.
type publishFunc func(ctx context.Context, exchange Exchange, routingKey RoutingKey, msg amqp.Publishing) error

// Publisher публикует события шаблонов в RabbitMQ.
//
// Реализует catalog.Notifier.
type Publisher struct {
	publish publishFunc
	logger  *slog.Logger
	now     func() time.Time
}

var _ catalog.Notifier = (*Publisher)(nil)

// NewPublisher создаёт новый Publisher.
func NewPublisher(conn *Connection, logger *slog.Logger) *Publisher {
	publish := func(ctx context.Context, exchange Exchange, routingKey RoutingKey, msg amqp.Publishing) error {
		return conn.WithChannel(ctx, func(ch *amqp.Channel) error {
			return ch.PublishWithContext(
				ctx,
				string(exchange),   // exchange
				string(routingKey), // routing key
				false,              // mandatory
				false,              // immediate
				msg,
			)
		})
	}
	return newPublisher(publish, logger)
}

func newPublisher(publish publishFunc, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		publish: publish,
		logger:  logger,
		now:     time.Now,
	}
}

// Publish публикует сообщение в указанный exchange с routing key.
func (p *Publisher) Publish(ctx context.Context, exchange Exchange, routingKey RoutingKey, msg *Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	err = p.publish(ctx, exchange, routingKey, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent, // сообщение переживёт рестарт RabbitMQ
		MessageId:    msg.ID,
		Timestamp:    msg.Timestamp,
		Type:         string(msg.Type),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish to %s/%s: %w", exchange, routingKey, err)
	}

	p.logger.Debug("published message",
		"exchange", exchange,
		"routing_key", routingKey,
		"message_id", msg.ID,
		"type", msg.Type,
	)
	return nil
}

// Notify публикует событие шаблона в templatehub.events.
// Routing key совпадает с типом события.
func (p *Publisher) Notify(ctx context.Context, event catalog.Event) error {
	msg := &Message{
		ID:        uuid.New().String(),
		Type:      MessageType(event.Type),
		Payload:   event,
		Timestamp: p.now().UTC(),
	}
	return p.Publish(ctx, ExchangeEvents, RoutingKey(event.Type), msg)
}
