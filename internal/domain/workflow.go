package domain

import (
	"time"

	"github.com/google/uuid"
)

// Workflow — исполняемая копия шаблона, принадлежащая tenant.
//
// Создаётся при использовании шаблона (use). После создания
// живёт независимо от шаблона: TemplateID хранится только для истории.
type Workflow struct {
	// ID — уникальный идентификатор workflow.
	ID uuid.UUID `json:"id"`

	Name        string `json:"name"`
	Description string `json:"description"`

	// Nodes — узлы с уже подставленными переменными.
	Nodes []Node `json:"nodes"`

	// Edges — рёбра, скопированные из шаблона.
	Edges []Edge `json:"edges"`

	// OrganizationID — tenant-владелец.
	OrganizationID string `json:"organization_id"`

	// CreatedBy — пользователь, создавший workflow.
	CreatedBy string `json:"created_by"`

	// IsActive — при создании всегда false. Активация — отдельный шаг.
	IsActive bool `json:"is_active"`

	// ExecutionCount — количество запусков, при создании 0.
	ExecutionCount int64 `json:"execution_count"`

	// TemplateID — шаблон, из которого создан workflow.
	TemplateID uuid.UUID `json:"template_id"`

	CreatedAt time.Time `json:"created_at"`
}
