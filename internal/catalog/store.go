package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/shaiso/templatehub/internal/domain"
)

// Store — хранилище шаблонов и workflow.
//
// Реализации: repo.TemplateRepo (PostgreSQL) и repo.MemoryStore.
// Отсутствующая запись возвращается как repo.ErrNotFound.
type Store interface {
	// CreateTemplate сохраняет новый шаблон.
	CreateTemplate(ctx context.Context, t *domain.Template) error

	// GetTemplate возвращает шаблон по ID.
	GetTemplate(ctx context.Context, id uuid.UUID) (*domain.Template, error)

	// UpdateTemplate сохраняет поля определения шаблона.
	// Счётчики, is_public и created_* не перезаписываются.
	UpdateTemplate(ctx context.Context, t *domain.Template) (*domain.Template, error)

	// DeleteTemplate удаляет шаблон.
	DeleteTemplate(ctx context.Context, id uuid.UUID) error

	// PublishTemplate делает шаблон публичным.
	PublishTemplate(ctx context.Context, id uuid.UUID) (*domain.Template, error)

	// Instantiate сохраняет workflow и увеличивает usage_count шаблона
	// wf.TemplateID на 1. Обе записи выполняются атомарно.
	Instantiate(ctx context.Context, wf *domain.Workflow) error

	// ApplyReview атомарно учитывает оценку в review_count и average_rating.
	ApplyReview(ctx context.Context, id uuid.UUID, rating float64) (*domain.Template, error)

	// ListTemplates возвращает шаблоны по фильтру.
	ListTemplates(ctx context.Context, filter domain.TemplateFilter) ([]domain.Template, error)

	// Stats возвращает агрегаты по публичным шаблонам.
	Stats(ctx context.Context) (*domain.Stats, error)
}
