package mq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/shaiso/templatehub/internal/catalog"
)

// ErrMalformedEvent — тело сообщения не является событием шаблона.
var ErrMalformedEvent = errors.New("malformed template event")

// EventMeta — сведения о доставке события.
type EventMeta struct {
	MessageID   string
	Timestamp   time.Time
	RoutingKey  string
	Redelivered bool
}

// EventHandler обрабатывает событие шаблона.
// Ошибка означает nack; ack и nack выполняет Consumer.
type EventHandler func(ctx context.Context, event catalog.Event, meta EventMeta) error

// envelope — входящий Message, payload разбирается после проверки.
type envelope struct {
	ID        string          `json:"id"`
	Type      MessageType     `json:"type"`
	Payload   json.RawMessage `json:"payload"`
	Timestamp time.Time       `json:"timestamp"`
}

// DecodeEvent разбирает тело сообщения, опубликованного Publisher.Notify.
// Тип в конверте должен совпадать с типом события, template_id обязателен.
func DecodeEvent(body []byte) (catalog.Event, EventMeta, error) {
	var (
		env   envelope
		event catalog.Event
	)
	if err := json.Unmarshal(body, &env); err != nil {
		return event, EventMeta{}, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	meta := EventMeta{MessageID: env.ID, Timestamp: env.Timestamp}

	if len(env.Payload) == 0 || string(env.Payload) == "null" {
		return event, meta, fmt.Errorf("%w: empty payload", ErrMalformedEvent)
	}
	if err := json.Unmarshal(env.Payload, &event); err != nil {
		return event, meta, fmt.Errorf("%w: payload: %v", ErrMalformedEvent, err)
	}
	if event.Type == "" || MessageType(event.Type) != env.Type {
		return event, meta, fmt.Errorf("%w: type %q does not match payload type %q", ErrMalformedEvent, env.Type, event.Type)
	}
	if event.TemplateID == uuid.Nil {
		return event, meta, fmt.Errorf("%w: template_id is required", ErrMalformedEvent)
	}

	return event, meta, nil
}

// ConsumerConfig — конфигурация consumer.
type ConsumerConfig struct {
	// Queue — очередь, по умолчанию QueueAudit.
	Queue Queue

	// Handler — обработчик событий.
	Handler EventHandler

	// Types — если задано, остальные события подтверждаются без обработчика.
	Types []catalog.EventType

	// Prefetch — количество неподтверждённых сообщений на канал.
	Prefetch int

	// RequeueOnError — при ошибке обработчика вернуть сообщение в очередь.
	// По умолчанию сообщение отклоняется и уходит в DLQ.
	RequeueOnError bool
}

// Consumer читает события шаблонов из очереди RabbitMQ.
//
// После переподключения Connection потребление возобновляется
// на новом канале.
type Consumer struct {
	conn     *Connection
	logger   *slog.Logger
	queue    Queue
	handler  EventHandler
	types    []catalog.EventType
	prefetch int
	requeue  bool
}

// NewConsumer создаёт новый Consumer.
func NewConsumer(conn *Connection, logger *slog.Logger, cfg ConsumerConfig) *Consumer {
	if cfg.Queue == "" {
		cfg.Queue = QueueAudit
	}
	if cfg.Prefetch <= 0 {
		cfg.Prefetch = 1
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Consumer{
		conn:     conn,
		logger:   logger,
		queue:    cfg.Queue,
		handler:  cfg.Handler,
		types:    cfg.Types,
		prefetch: cfg.Prefetch,
		requeue:  cfg.RequeueOnError,
	}
}

// Run потребляет события до отмены ctx или закрытия Connection.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		// Берём сигнал до подписки, чтобы не пропустить переподключение
		// между ошибкой канала и ожиданием.
		reconnected := c.conn.Reconnected()

		deliveries, err := c.subscribe()
		if err != nil {
			c.logger.Error("failed to subscribe", "queue", c.queue, "error", err)
		} else {
			c.logger.Info("consumer started", "queue", c.queue)
			if err := c.drain(ctx, deliveries); err != nil {
				return err
			}
			c.logger.Warn("deliveries channel closed, waiting for reconnect", "queue", c.queue)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.conn.Done():
			return ErrClosed
		case <-reconnected:
			c.logger.Info("reconnected, restarting consumer", "queue", c.queue)
		}
	}
}

// subscribe настраивает QoS и открывает поток доставок на текущем канале.
func (c *Consumer) subscribe() (<-chan amqp.Delivery, error) {
	ch := c.conn.Channel()
	if ch == nil {
		return nil, ErrNoChannel
	}

	if err := ch.Qos(c.prefetch, 0, false); err != nil {
		return nil, fmt.Errorf("set qos: %w", err)
	}

	deliveries, err := ch.Consume(
		string(c.queue), // queue
		"",              // consumer tag (auto-generated)
		false,           // auto-ack
		false,           // exclusive
		false,           // no-local
		false,           // no-wait
		nil,             // args
	)
	if err != nil {
		return nil, fmt.Errorf("consume %s: %w", c.queue, err)
	}

	return deliveries, nil
}

// drain обрабатывает доставки, пока канал открыт.
// Возвращает nil при закрытии канала и ctx.Err() при отмене.
func (c *Consumer) drain(ctx context.Context, deliveries <-chan amqp.Delivery) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return nil
			}
			c.handle(ctx, d)
		}
	}
}

// settlement — чем закончилась обработка доставки.
type settlement int

const (
	settleAck settlement = iota
	settleSkip
	settleReject
	settleRequeue
)

// handle разбирает событие, вызывает обработчик и подтверждает доставку.
func (c *Consumer) handle(ctx context.Context, d amqp.Delivery) settlement {
	event, meta, err := DecodeEvent(d.Body)
	meta.RoutingKey = d.RoutingKey
	meta.Redelivered = d.Redelivered

	var result settlement
	switch {
	case err != nil:
		c.logger.Error("dropping malformed event",
			"queue", c.queue,
			"message_id", meta.MessageID,
			"error", err,
		)
		result = settleReject
	case len(c.types) > 0 && !slices.Contains(c.types, event.Type):
		result = settleSkip
	default:
		result = c.dispatch(ctx, event, meta)
	}

	switch result {
	case settleAck, settleSkip:
		err = d.Ack(false)
	case settleReject:
		err = d.Nack(false, false)
	case settleRequeue:
		err = d.Nack(false, true)
	}
	if err != nil {
		c.logger.Warn("failed to settle delivery",
			"queue", c.queue,
			"message_id", meta.MessageID,
			"error", err,
		)
	}
	return result
}

func (c *Consumer) dispatch(ctx context.Context, event catalog.Event, meta EventMeta) settlement {
	c.logger.Debug("received event",
		"queue", c.queue,
		"message_id", meta.MessageID,
		"type", event.Type,
		"template_id", event.TemplateID,
	)

	if err := c.handler(ctx, event, meta); err != nil {
		c.logger.Error("event handler failed",
			"queue", c.queue,
			"message_id", meta.MessageID,
			"type", event.Type,
			"error", err,
		)
		if c.requeue {
			return settleRequeue
		}
		return settleReject
	}
	return settleAck
}
