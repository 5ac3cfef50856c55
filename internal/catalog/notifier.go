package catalog

import (
	"context"

	"github.com/google/uuid"
)

// EventType — тип события об изменении шаблона.
type EventType string

// Типы событий. Значение совпадает с routing key в RabbitMQ.
const (
	EventTemplateCreated   EventType = "template.created"
	EventTemplateUpdated   EventType = "template.updated"
	EventTemplateDeleted   EventType = "template.deleted"
	EventTemplatePublished EventType = "template.published"
	EventTemplateUsed      EventType = "template.used"
)

// EventTypes возвращает все типы событий.
func EventTypes() []EventType {
	return []EventType{
		EventTemplateCreated,
		EventTemplateUpdated,
		EventTemplateDeleted,
		EventTemplatePublished,
		EventTemplateUsed,
	}
}

// Event — событие об изменении шаблона.
type Event struct {
	Type           EventType  `json:"type"`
	TemplateID     uuid.UUID  `json:"template_id"`
	OrganizationID string     `json:"organization_id"`
	ActorID        string     `json:"actor_id"`
	WorkflowID     *uuid.UUID `json:"workflow_id,omitempty"`
}

// Notifier доставляет события подписчикам.
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// NopNotifier игнорирует события.
type NopNotifier struct{}

// Notify ничего не делает.
func (NopNotifier) Notify(context.Context, Event) error { return nil }
