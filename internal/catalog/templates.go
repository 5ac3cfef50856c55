package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/shaiso/templatehub/internal/access"
	"github.com/shaiso/templatehub/internal/domain"
	"github.com/shaiso/templatehub/internal/engine"
	"github.com/shaiso/templatehub/internal/telemetry"
)

// CreateTemplate создаёт шаблон в tenant от имени actor.
//
// Требует право на управление автоматизацией. Определение проверяется
// целиком (поля и граф), счётчики начинаются с нуля.
func (s *Service) CreateTemplate(ctx context.Context, actor domain.Actor, tenantID string, def domain.TemplateDefinition) (*domain.Template, error) {
	if !s.capability.CanManageAutomation(actor, tenantID) {
		return nil, ErrUnauthorized
	}
	if err := engine.ValidateDefinition(def); err != nil {
		return nil, validationFailed(err)
	}

	now := s.now().UTC()
	variables := def.Variables
	if variables == nil {
		variables = map[string]any{}
	}

	t := &domain.Template{
		ID:             uuid.New(),
		Name:           def.Name,
		Description:    def.Description,
		Category:       def.Category,
		Difficulty:     def.Difficulty,
		Nodes:          def.Nodes,
		Edges:          nonNilEdges(def.Edges),
		Variables:      variables,
		Tags:           domain.UniqueTags(def.Tags),
		IsPublic:       def.IsPublic,
		IsFeatured:     def.IsFeatured,
		OrganizationID: tenantID,
		CreatedBy:      actor.ID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.store.CreateTemplate(ctx, t); err != nil {
		return nil, fmt.Errorf("create template: %w", err)
	}

	telemetry.TemplatesCreated.Inc()
	telemetry.WithTenantID(telemetry.WithTemplateID(s.logger, t.ID.String()), tenantID).Info("template created",
		"name", t.Name,
		"actor_id", actor.ID,
	)
	s.notify(ctx, Event{
		Type:           EventTemplateCreated,
		TemplateID:     t.ID,
		OrganizationID: tenantID,
		ActorID:        actor.ID,
	})

	return t, nil
}

// GetTemplate возвращает шаблон, если он виден tenant.
func (s *Service) GetTemplate(ctx context.Context, id uuid.UUID, tenantID string) (*domain.Template, error) {
	t, err := s.store.GetTemplate(ctx, id)
	if err != nil {
		return nil, storeError(err)
	}
	if !access.IsVisible(t, tenantID) {
		return nil, ErrNotFound
	}
	return t, nil
}

// ownedTemplate загружает шаблон tenant, который actor может изменять.
//
// Сначала проверяется право на управление автоматизацией в tenant,
// затем авторство. Шаблон другого tenant возвращается как ErrNotFound,
// даже если он публичный.
func (s *Service) ownedTemplate(ctx context.Context, actor domain.Actor, id uuid.UUID, tenantID string) (*domain.Template, error) {
	if !s.capability.CanManageAutomation(actor, tenantID) {
		return nil, ErrUnauthorized
	}

	t, err := s.store.GetTemplate(ctx, id)
	if err != nil {
		return nil, storeError(err)
	}
	if t.OrganizationID != tenantID && !actor.IsSuperAdmin() {
		return nil, ErrNotFound
	}
	if !access.CanMutate(actor, access.ResourceOf(t)) {
		return nil, ErrUnauthorized
	}
	return t, nil
}

// UpdateTemplate применяет patch к шаблону.
//
// Изменять шаблон может автор, OWNER организации или SUPER_ADMIN.
// При изменении узлов или рёбер граф проверяется заново: недостающая
// сторона берётся из сохранённого шаблона.
func (s *Service) UpdateTemplate(ctx context.Context, actor domain.Actor, id uuid.UUID, tenantID string, patch domain.TemplatePatch) (*domain.Template, error) {
	t, err := s.ownedTemplate(ctx, actor, id, tenantID)
	if err != nil {
		return nil, err
	}

	patch.Apply(t)

	if err := engine.ValidateFields(t.Name, t.Description, t.Category, t.Difficulty, t.Tags); err != nil {
		return nil, validationFailed(err)
	}
	if patch.ChangesGraph() {
		if err := engine.ValidateNodes(t.Nodes, t.Edges); err != nil {
			return nil, validationFailed(err)
		}
	}
	t.Edges = nonNilEdges(t.Edges)
	if t.Variables == nil {
		t.Variables = map[string]any{}
	}
	t.UpdatedAt = s.now().UTC()

	updated, err := s.store.UpdateTemplate(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("update template: %w", storeError(err))
	}

	telemetry.WithTemplateID(s.logger, id.String()).Info("template updated", "actor_id", actor.ID)
	s.notify(ctx, Event{
		Type:           EventTemplateUpdated,
		TemplateID:     id,
		OrganizationID: updated.OrganizationID,
		ActorID:        actor.ID,
	})

	return updated, nil
}

// DeleteTemplate удаляет шаблон.
//
// Созданные из шаблона workflow не затрагиваются.
func (s *Service) DeleteTemplate(ctx context.Context, actor domain.Actor, id uuid.UUID, tenantID string) error {
	t, err := s.ownedTemplate(ctx, actor, id, tenantID)
	if err != nil {
		return err
	}

	if err := s.store.DeleteTemplate(ctx, id); err != nil {
		return fmt.Errorf("delete template: %w", storeError(err))
	}

	telemetry.WithTemplateID(s.logger, id.String()).Info("template deleted", "actor_id", actor.ID)
	s.notify(ctx, Event{
		Type:           EventTemplateDeleted,
		TemplateID:     id,
		OrganizationID: t.OrganizationID,
		ActorID:        actor.ID,
	})

	return nil
}

// PublishTemplate делает шаблон публичным. Обратного действия нет.
func (s *Service) PublishTemplate(ctx context.Context, actor domain.Actor, id uuid.UUID, tenantID string) (*domain.Template, error) {
	t, err := s.ownedTemplate(ctx, actor, id, tenantID)
	if err != nil {
		return nil, err
	}
	if t.IsPublic {
		return t, nil
	}

	published, err := s.store.PublishTemplate(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("publish template: %w", storeError(err))
	}

	telemetry.WithTemplateID(s.logger, id.String()).Info("template published", "actor_id", actor.ID)
	s.notify(ctx, Event{
		Type:           EventTemplatePublished,
		TemplateID:     id,
		OrganizationID: published.OrganizationID,
		ActorID:        actor.ID,
	})

	return published, nil
}

func nonNilEdges(edges []domain.Edge) []domain.Edge {
	if edges == nil {
		return []domain.Edge{}
	}
	return edges
}

