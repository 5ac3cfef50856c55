package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/shaiso/templatehub/internal/access"
	"github.com/shaiso/templatehub/internal/domain"
	"github.com/shaiso/templatehub/internal/engine"
	"github.com/shaiso/templatehub/internal/telemetry"
)

// UseTemplateInput — параметры создания workflow из шаблона.
type UseTemplateInput struct {
	TemplateID uuid.UUID

	// Name — имя workflow. Пустое имя заменяется именем шаблона.
	Name string

	// Description — описание workflow. nil означает описание шаблона.
	Description *string

	// Variables — значения переменных, перекрывают значения шаблона.
	Variables map[string]any

	// TenantID — организация, в которой создаётся workflow.
	TenantID string
}

// NewWorkflow строит workflow из шаблона.
//
// Строковые значения в данных узлов проходят подстановку переменных:
// значения по умолчанию шаблона перекрываются переданными. Рёбра
// копируются без изменений. Workflow создаётся неактивным.
func NewWorkflow(t *domain.Template, name string, description *string, variables map[string]any, tenantID, creatorID string, now time.Time) *domain.Workflow {
	if name == "" {
		name = t.Name
	}
	desc := t.Description
	if description != nil {
		desc = *description
	}

	values := engine.MergeVariables(t.Variables, variables)

	edges := make([]domain.Edge, len(t.Edges))
	copy(edges, t.Edges)

	return &domain.Workflow{
		ID:             uuid.New(),
		Name:           name,
		Description:    desc,
		Nodes:          engine.RenderNodes(t.Nodes, values),
		Edges:          edges,
		OrganizationID: tenantID,
		CreatedBy:      creatorID,
		IsActive:       false,
		ExecutionCount: 0,
		TemplateID:     t.ID,
		CreatedAt:      now,
	}
}

// UseTemplate создаёт workflow из шаблона в tenant.
//
// Создание workflow и увеличение usage_count выполняются одной
// транзакцией хранилища: при ошибке не меняется ничего.
func (s *Service) UseTemplate(ctx context.Context, actor domain.Actor, in UseTemplateInput) (*domain.Workflow, error) {
	if !s.capability.CanManageAutomation(actor, in.TenantID) {
		return nil, ErrUnauthorized
	}
	// SUPER_ADMIN проходит проверку без tenant, но workflow без владельца не создаётся.
	if in.TenantID == "" {
		return nil, validationFailed(engine.NewFieldError("organization_id", "is required"))
	}

	t, err := s.store.GetTemplate(ctx, in.TemplateID)
	if err != nil {
		return nil, storeError(err)
	}
	if !access.IsVisible(t, in.TenantID) {
		return nil, ErrNotFound
	}

	wf := NewWorkflow(t, in.Name, in.Description, in.Variables, in.TenantID, actor.ID, s.now().UTC())

	if err := s.store.Instantiate(ctx, wf); err != nil {
		return nil, fmt.Errorf("instantiate template: %w", storeError(err))
	}

	telemetry.TemplateInstantiations.Inc()
	telemetry.WithTenantID(telemetry.WithTemplateID(s.logger, t.ID.String()), in.TenantID).Info("workflow created from template",
		"workflow_id", wf.ID,
		"actor_id", actor.ID,
	)
	s.notify(ctx, Event{
		Type:           EventTemplateUsed,
		TemplateID:     t.ID,
		OrganizationID: in.TenantID,
		ActorID:        actor.ID,
		WorkflowID:     &wf.ID,
	})

	return wf, nil
}
